package locator

import (
	"fmt"
	"strings"

	"github.com/niklasfasching/locate/tree"
)

// Matcher is a compiled predicate over a node of a snapshot.
type Matcher func(*tree.Tree, tree.ID) bool

// Selector is a compiled cascaded locator. It is immutable and may be shared and
// evaluated concurrently against any number of snapshots.
type Selector struct {
	Raw      string
	Segments []*Segment
}

type Segment struct {
	Capture bool
	Engine  Engine
	Raw     string
	// Offset is the byte position of Raw in the locator.
	Offset int

	fallback string
}

type Combinator string

const (
	Descendant Combinator = " "
	Child      Combinator = ">"
)

// Compound is a type + id + attribute + pseudo class conjunction. Combinator relates
// it to the next compound of the same segment and is empty for the last one.
type Compound struct {
	Type       *TypePattern
	ID         string
	Attributes []*AttributeSelector
	Pseudos    []*PseudoSelector
	Combinator Combinator

	identity   string
	vocabulary *Vocabulary
}

// TypePattern matches type names. A single run of leading, trailing or inner '*'
// turns it into a prefix, suffix, substring or prefix+suffix test.
type TypePattern struct {
	Pattern string

	prefix, suffix, infix string
	any, exact            bool
}

type AttributeSelector struct {
	Name  string
	Op    string
	Value string
	match Matcher
}

type PseudoSelector struct {
	Name   string
	Args   string
	IsFunc bool
	match  Matcher
}

var Matchers = map[string]func(string, string) bool{
	"~=": includeMatch,
	"^=": func(av, sv string) bool { return sv != "" && strings.HasPrefix(av, sv) },
	"$=": func(av, sv string) bool { return sv != "" && strings.HasSuffix(av, sv) },
	"*=": func(av, sv string) bool { return strings.Contains(av, sv) },
	"=":  func(av, sv string) bool { return av == sv },
	"":   func(string, string) bool { return true },
}

func includeMatch(value, sValue string) bool {
	for _, f := range strings.Fields(value) {
		if f == sValue {
			return true
		}
	}
	return false
}

func compileTypePattern(p string) (*TypePattern, error) {
	tp := &TypePattern{Pattern: p}
	switch stars, core := strings.Count(p, "*"), strings.Trim(p, "*"); {
	case p == "*":
		tp.any = true
	case stars == 0:
		tp.exact = true
	case strings.Contains(core, "*") || core == "" || strings.HasPrefix(p, "**") || strings.HasSuffix(p, "**"):
		if i := strings.Index(core, "*"); stars == 1 && i != -1 {
			tp.prefix, tp.suffix = core[:i], core[i+1:]
			return tp, nil
		}
		return nil, fmt.Errorf("unsupported wildcard pattern %q", p)
	case p[0] == '*' && p[len(p)-1] == '*':
		tp.infix = core
	case p[0] == '*':
		tp.suffix = core
	default:
		tp.prefix = core
	}
	return tp, nil
}

func (tp *TypePattern) MatchString(s string) bool {
	switch {
	case tp.any:
		return true
	case tp.exact:
		return s == tp.Pattern
	case tp.infix != "":
		return strings.Contains(s, tp.infix)
	default:
		return len(s) >= len(tp.prefix)+len(tp.suffix) &&
			strings.HasPrefix(s, tp.prefix) && strings.HasSuffix(s, tp.suffix)
	}
}

// Match tests both the full and the simple (package stripped) type of id.
func (tp *TypePattern) Match(t *tree.Tree, id tree.ID) bool {
	return tp.MatchString(t.Type(id)) || tp.MatchString(t.SimpleType(id))
}

func (c *Compound) Match(t *tree.Tree, id tree.ID) bool {
	if c.vocabulary != nil {
		if !c.vocabulary.Kind(t, id) {
			return false
		}
	} else if c.Type != nil && !c.Type.Match(t, id) {
		return false
	}
	if c.ID != "" {
		if v, ok := t.Attr(id, c.identity); !ok || v != c.ID {
			return false
		}
	}
	for _, a := range c.Attributes {
		if !a.match(t, id) {
			return false
		}
	}
	for _, p := range c.Pseudos {
		if !p.match(t, id) {
			return false
		}
	}
	return true
}

func (s *AttributeSelector) Match(t *tree.Tree, id tree.ID) bool { return s.match(t, id) }
func (s *PseudoSelector) Match(t *tree.Tree, id tree.ID) bool    { return s.match(t, id) }

func attributeMatcher(name, op, value string) Matcher {
	f := Matchers[op]
	return func(t *tree.Tree, id tree.ID) bool {
		v, ok := t.Attr(id, name)
		return ok && f(v, value)
	}
}

// CaptureIndex returns the index of the segment whose matches are returned, i.e.
// the first segment marked for capture, or -1.
func (s *Selector) CaptureIndex() int {
	for i, seg := range s.Segments {
		if seg.Capture {
			return i
		}
	}
	return -1
}

func (s *Selector) String() string {
	parts := make([]string, len(s.Segments))
	for i, seg := range s.Segments {
		parts[i] = seg.String()
	}
	return strings.Join(parts, " "+cascade+" ")
}

func (s *Segment) String() string {
	body := s.Engine.String()
	if _, ok := s.Engine.(*CSSEngine); ok && !s.Capture && isCaptureMarker(body) {
		body = "css=" + body
	}
	if s.Capture {
		return "*" + body
	}
	return body
}

func (c *Compound) String() string {
	out := ""
	if c.Type != nil {
		out = c.Type.Pattern
	}
	if c.ID != "" {
		if bareRegexp.MatchString(c.ID) {
			out += "#" + c.ID
		} else {
			out += "#" + quote(c.ID)
		}
	}
	for _, a := range c.Attributes {
		out += a.String()
	}
	for _, p := range c.Pseudos {
		out += p.String()
	}
	return out
}

func (s *AttributeSelector) String() string {
	if s.Op == "" {
		return fmt.Sprintf("[%s]", s.Name)
	}
	return fmt.Sprintf("[%s%s%s]", s.Name, s.Op, quoteIfNeeded(s.Value))
}

func (s *PseudoSelector) String() string {
	if s.IsFunc {
		return fmt.Sprintf(":%s(%s)", s.Name, s.Args)
	}
	return ":" + s.Name
}

func (tp *TypePattern) String() string { return tp.Pattern }
