package locator

import (
	"strings"
)

const cascade = ">>"

type span struct {
	text   string
	offset int
}

// split cuts a locator into trimmed segments on ">>". Separators inside quotes or
// inside [] and () are literal text. Offsets are byte positions in the locator.
func split(locator string) ([]span, error) {
	var spans []span
	var openers []int
	quote, quoteAt, start, sep := byte(0), 0, 0, -1
	for i := 0; i < len(locator); i++ {
		switch c := locator[i]; {
		case quote != 0 && c == '\\':
			i++
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote, quoteAt = c, i
		case c == '[' || c == '(':
			openers = append(openers, i)
		case c == ']' || c == ')':
			if len(openers) != 0 {
				openers = openers[:len(openers)-1]
			}
		case c == '>' && len(openers) == 0 && strings.HasPrefix(locator[i:], cascade):
			s, err := segmentSpan(locator, start, i, sep)
			if err != nil {
				return nil, err
			}
			spans, sep, start = append(spans, s), i, i+len(cascade)
			i++
		}
	}
	if quote != 0 {
		return nil, &LexError{InvalidSeparator, locator, quoteAt, "unterminated quoted string"}
	} else if n := len(openers); n != 0 {
		return nil, &LexError{InvalidSeparator, locator, openers[n-1], "unclosed " + string(locator[openers[n-1]])}
	}
	s, err := segmentSpan(locator, start, len(locator), sep)
	if err != nil {
		return nil, err
	}
	return append(spans, s), nil
}

func segmentSpan(locator string, start, end, sep int) (span, error) {
	raw := locator[start:end]
	text := strings.TrimSpace(raw)
	if text != "" {
		return span{text, start + strings.Index(raw, text)}, nil
	}
	switch {
	case sep == -1 && end == len(locator):
		return span{}, &SegmentParseError{locator, 0, locator, "empty locator"}
	case sep == -1:
		return span{}, &LexError{InvalidSeparator, locator, end, "separator at start of locator"}
	case end == len(locator):
		return span{}, &LexError{InvalidSeparator, locator, sep, "separator at end of locator"}
	default:
		return span{}, &LexError{InvalidSeparator, locator, end, "empty segment between separators"}
	}
}
