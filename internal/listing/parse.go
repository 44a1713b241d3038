package listing

import (
	"strings"
	"unicode"
)

// parseLeadingInt reads an optional sign and the leading decimal digits of s after
// skipping leading white space, ignoring whatever follows ("1500 DZD" is 1500).
// ok is false when no digit is found; such a value never satisfies a numeric bound.
func parseLeadingInt(s string) (n int64, ok bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}

	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		// saturate instead of wrapping on absurdly long inputs
		if n < 1<<62 {
			n = n*10 + int64(s[i]-'0')
		}
		i++
	}
	if i == 0 {
		return 0, false
	}

	if neg {
		n = -n
	}
	return n, true
}
