package youtube

import (
	"strconv"
	"strings"
)

// ParseCount converts human-readable abbreviated counts like "1.2K", "3M" or
// "1,234" into integers. A "k"/"m"/"b" suffix multiplies a parsed floating
// value by 1e3/1e6/1e9, truncating to integer; no suffix parses as a plain
// integer. Any parse failure yields (0, false); callers default to 0.
func ParseCount(text string) (uint64, bool) {
	s := strings.ToLower(text)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0, false
	}

	var multiplier float64
	switch s[len(s)-1] {
	case 'k':
		multiplier = 1e3
	case 'm':
		multiplier = 1e6
	case 'b':
		multiplier = 1e9
	}

	if multiplier > 0 {
		n, err := strconv.ParseFloat(s[:len(s)-1], 64)
		if err != nil || n < 0 {
			return 0, false
		}
		return uint64(n * multiplier), true
	}

	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
