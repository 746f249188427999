package locator

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

type LexErrorKind int

// InvalidSeparator covers misplaced ">>" separators and quotes or brackets left
// open at the end of the locator.
const InvalidSeparator LexErrorKind = iota

// LexError is returned when a locator cannot be split into segments.
type LexError struct {
	Kind     LexErrorKind
	Locator  string
	Position int
	Reason   string
}

type UnknownEngineError struct {
	Locator  string
	Token    string
	Position int
}

// SegmentParseError is returned for malformed syntax inside a correctly separated
// segment. Snippet is the raw segment text.
type SegmentParseError struct {
	Locator  string
	Position int
	Snippet  string
	Reason   string
}

// MatchError is returned when the search of a segment yields no nodes.
// Later segments are never evaluated.
type MatchError struct {
	Locator  string
	Position int
	Segment  int
	Raw      string
	Contexts int
}

var ErrNoMatch = errors.New("no match")

func (k LexErrorKind) String() string {
	switch k {
	case InvalidSeparator:
		return "invalid separator"
	default:
		panic(fmt.Errorf("bad lex error kind: %d", int(k)))
	}
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%s at %d: %s", e.Kind, e.Position, e.Reason)
}

func (e *UnknownEngineError) Error() string {
	return fmt.Sprintf("unknown selector engine %q at %d", e.Token, e.Position)
}

func (e *SegmentParseError) Error() string {
	return fmt.Sprintf("bad segment %q at %d: %s", e.Snippet, e.Position, e.Reason)
}

func (e *MatchError) Error() string {
	return fmt.Sprintf("no match for segment %d %q (%d context nodes)", e.Segment, e.Raw, e.Contexts)
}

func (e *MatchError) Is(target error) bool { return target == ErrNoMatch }

// Caret renders err as the offending locator with a caret below the position of
// the failure. Errors without position information are rendered as is.
func Caret(err error) string {
	locator, pos := "", -1
	var lexErr *LexError
	var engineErr *UnknownEngineError
	var parseErr *SegmentParseError
	var matchErr *MatchError
	switch {
	case errors.As(err, &lexErr):
		locator, pos = lexErr.Locator, lexErr.Position
	case errors.As(err, &engineErr):
		locator, pos = engineErr.Locator, engineErr.Position
	case errors.As(err, &parseErr):
		locator, pos = parseErr.Locator, parseErr.Position
	case errors.As(err, &matchErr):
		locator, pos = matchErr.Locator, matchErr.Position
	}
	if pos == -1 {
		return err.Error()
	}
	pos = min(max(pos, 0), len(locator))
	col := utf8.RuneCountInString(locator[:pos])
	return fmt.Sprintf("%s\n%s\n%s^", err, locator, strings.Repeat(" ", col))
}
