// Package time contains time related helpers
package time

import "time"

// Ptr returns a pointer to t or nil if t is zero
func Ptr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// ToSecond truncates t to whole-second precision. Remote protocols report
// file mtimes at second granularity, so local stamps are truncated the same
// way before comparison
func ToSecond(t time.Time) time.Time {
	return t.Truncate(time.Second)
}
