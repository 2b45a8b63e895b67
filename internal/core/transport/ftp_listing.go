package transport

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var listingMonths = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// ParseUnixListing parses one line of Unix-style `ls -l` output as emitted
// by a file-transfer LIST command: perms, links, owner, group, size, month,
// day, year-or-HH:MM, name. When the final date column is HH:MM (no year),
// the entry is interpreted as within the last 12 months: year = now's year,
// rolled back one year if that would put the date in the future
func ParseUnixListing(line string, now time.Time) (name string, size int64, mtime time.Time, isDir bool, err error) {
	fields := strings.Fields(line)
	if len(fields) < 9 {
		return "", 0, time.Time{}, false, fmt.Errorf("transport: malformed listing line %q", line)
	}

	perms := fields[0]
	isDir = strings.HasPrefix(perms, "d")

	size, err = strconv.ParseInt(fields[4], 10, 64)
	if err != nil {
		return "", 0, time.Time{}, false, fmt.Errorf("transport: bad size in %q: %w", line, err)
	}

	month, ok := listingMonths[strings.ToLower(fields[5])]
	if !ok {
		return "", 0, time.Time{}, false, fmt.Errorf("transport: bad month in %q", line)
	}
	day, err := strconv.Atoi(fields[6])
	if err != nil {
		return "", 0, time.Time{}, false, fmt.Errorf("transport: bad day in %q: %w", line, err)
	}

	mtime, err = parseYearOrClock(fields[7], month, day, now)
	if err != nil {
		return "", 0, time.Time{}, false, err
	}

	// the name is everything after the 8 fixed columns, rejoined in case it
	// contains embedded spaces
	nameIdx := strings.Index(line, fields[7]) + len(fields[7])
	name = strings.TrimSpace(line[nameIdx:])
	return name, size, mtime, isDir, nil
}

func parseYearOrClock(col string, month time.Month, day int, now time.Time) (time.Time, error) {
	if year, err := strconv.Atoi(col); err == nil && len(col) == 4 {
		return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), nil
	}

	hm := strings.SplitN(col, ":", 2)
	if len(hm) != 2 {
		return time.Time{}, fmt.Errorf("transport: bad year/time column %q", col)
	}
	hour, err := strconv.Atoi(hm[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("transport: bad hour in %q: %w", col, err)
	}
	minute, err := strconv.Atoi(hm[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("transport: bad minute in %q: %w", col, err)
	}

	candidate := time.Date(now.Year(), month, day, hour, minute, 0, 0, time.UTC)
	return rollbackIfFuture(candidate, now), nil
}

// rollbackIfFuture applies the "within the last 12 months" rule: a listing
// date with no year column is attributed to the current year, rolled back one
// year when that would place it in the future
func rollbackIfFuture(t, now time.Time) time.Time {
	if t.After(now) {
		return t.AddDate(-1, 0, 0)
	}
	return t
}
