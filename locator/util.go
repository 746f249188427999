package locator

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	complexNthRegexp = regexp.MustCompile(`^\s*([+-]?\d*)?n\s*([+-]?\s*\d+)?s*$`)
	simpleNthRegexp  = regexp.MustCompile(`^\s*([+-]?\d+)\s*$`)
	whitespaceRegexp = regexp.MustCompile(`\s`)
	bareRegexp       = regexp.MustCompile(`^[\pL\pN_$.-]+$`)
)

func parseNthArgs(args string) (int, int, error) {
	if args = strings.TrimSpace(args); args == "odd" {
		return 2, 1, nil
	} else if args == "even" {
		return 2, 0, nil
	} else if m := simpleNthRegexp.FindStringSubmatch(args); m != nil {
		b, err := atoi(m[1], "0")
		return 0, b, err
	} else if m := complexNthRegexp.FindStringSubmatch(args); m != nil {
		a, err := atoi(m[1], "1")
		if err != nil {
			return 0, 0, err
		}
		b, err := atoi(m[2], "0")
		if err != nil {
			return 0, 0, err
		}
		return a, b, nil
	}
	return 0, 0, fmt.Errorf("bad nth arguments: %q", args)
}

func atoi(s, fallback string) (int, error) {
	s = whitespaceRegexp.ReplaceAllString(s, "")
	if s == "" || s == "+" || s == "-" {
		s = s + fallback
	}
	return strconv.Atoi(s)
}

// isNth checks whether y is a valid result for the given a and b.
// The formula is y = (a*n+b) with n being any positive integer, starting with 1.
func isNth(a, b, y int) bool {
	an := (y - b)
	return (a == 0 && b == y) || (a != 0 && an/a >= 0 && an%a == 0)
}

// quote renders s as a single quoted literal.
func quote(s string) string {
	var out strings.Builder
	out.WriteByte('\'')
	for _, r := range s {
		if r == '\'' || r == '\\' {
			out.WriteByte('\\')
		}
		out.WriteRune(r)
	}
	out.WriteByte('\'')
	return out.String()
}

// quoteIfNeeded leaves values consisting only of name characters bare.
func quoteIfNeeded(s string) string {
	if bareRegexp.MatchString(s) {
		return s
	}
	return quote(s)
}

// unquote strips the quotes of a literal and resolves backslash escapes.
func unquote(s string) (string, error) {
	if len(s) < 2 || !isQuote(rune(s[0])) || s[len(s)-1] != s[0] {
		return "", fmt.Errorf("bad quoted string: %s", s)
	}
	var out strings.Builder
	for i := 1; i < len(s)-1; i++ {
		if s[i] == '\\' && i+1 < len(s)-1 {
			i++
		} else if s[i] == s[0] {
			return "", fmt.Errorf("bad quoted string: %s", s)
		}
		out.WriteByte(s[i])
	}
	return out.String(), nil
}

// isCaptureMarker reports whether a segment starting with '*' marks a capture rather
// than starting with a wildcard type: the star has to be followed by something that
// can start a selector.
func isCaptureMarker(s string) bool {
	if len(s) < 2 || s[0] != '*' {
		return false
	}
	c := rune(s[1])
	return isNameStart(c) || isQuote(c) || strings.ContainsRune("*[#:.", c)
}
