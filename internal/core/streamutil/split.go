package streamutil

import "strings"

// Split tokenizes s on delim, treating escape as an escape character when
// non-nil (the character immediately following escape is taken literally,
// even if it is delim or escape itself). If limit > 0 and splitting would
// produce more than limit tokens, the surplus tokens are re-joined (with
// delim) into a single token: on the right when reverse is false (the
// conventional "split with a max count" behavior, trailing content stays
// together), on the left when reverse is true (trailing content splits out
// cleanly, leading content stays together)
func Split(s string, delim byte, escape *byte, limit int, reverse bool) []string {
	tokens := splitAll(s, delim, escape)
	if limit <= 0 || len(tokens) <= limit {
		return tokens
	}

	sep := string(delim)
	if reverse {
		head := strings.Join(tokens[:len(tokens)-limit+1], sep)
		return append([]string{head}, tokens[len(tokens)-limit+1:]...)
	}
	tail := strings.Join(tokens[limit-1:], sep)
	return append(tokens[:limit-1], tail)
}

// splitAll performs the unbounded escape-aware tokenization
func splitAll(s string, delim byte, escape *byte) []string {
	var tokens []string
	var cur strings.Builder

	for i := 0; i < len(s); i++ {
		c := s[i]
		if escape != nil && c == *escape && i+1 < len(s) {
			i++
			cur.WriteByte(s[i])
			continue
		}
		if c == delim {
			tokens = append(tokens, cur.String())
			cur.Reset()
			continue
		}
		cur.WriteByte(c)
	}
	tokens = append(tokens, cur.String())
	return tokens
}
