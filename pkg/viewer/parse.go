package viewer

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseRowCount reads the row count typed into the bulk selection box. Like
// a browser's parseInt it skips leading white space and reads the longest
// run of digits after an optional sign, ignoring anything that follows, so
// "25 rows" is 25 and "2.9" is 2. It reports false when no digits are found,
// the value does not fit in an int, or the value is not positive.
func ParseRowCount(input string) (int, bool) {
	s := strings.TrimLeftFunc(input, unicode.IsSpace)

	sign := ""
	if s != "" && (s[0] == '+' || s[0] == '-') {
		sign, s = s[:1], s[1:]
	}

	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}

	n, err := strconv.Atoi(sign + s[:end])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
