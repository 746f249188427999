package locator

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

var enginePrefixRegexp = regexp.MustCompile(`^([A-Za-z][\w-]*)\s*=\s*`)

type parser struct {
	tokens []token
	index  int
	o      Options
}

// Compile compiles locator with DefaultOptions.
func Compile(locator string) (*Selector, error) {
	return CompileOptions(locator, DefaultOptions)
}

// CompileOptions compiles locator into a Selector. Errors are *LexError,
// *UnknownEngineError or *SegmentParseError; no partial Selector is returned.
func CompileOptions(locator string, o Options) (*Selector, error) {
	o, err := o.withDefaults()
	if err != nil {
		return nil, err
	}
	spans, err := split(locator)
	if err != nil {
		return nil, err
	}
	s := &Selector{Raw: locator}
	for _, sp := range spans {
		seg, err := compileSegment(locator, sp, o)
		if err != nil {
			return nil, err
		}
		s.Segments = append(s.Segments, seg)
	}
	return s, nil
}

func MustCompile(locator string) *Selector {
	s, err := Compile(locator)
	if err != nil {
		panic(err)
	}
	return s
}

func compileSegment(locator string, sp span, o Options) (*Segment, error) {
	seg := &Segment{Raw: sp.text, Offset: sp.offset}
	body, offset := sp.text, sp.offset
	parseError := func(pos int, format string, args ...any) error {
		return &SegmentParseError{locator, pos, sp.text, fmt.Sprintf(format, args...)}
	}
	if isCaptureMarker(body) {
		seg.Capture, body, offset = true, body[1:], offset+1
	}
	engine := "css"
	if m := enginePrefixRegexp.FindStringSubmatch(body); m != nil {
		if !slices.Contains(engineNames, m[1]) {
			if o.UnknownEngine == Strict {
				return nil, &UnknownEngineError{locator, m[1], offset}
			}
			seg.fallback = m[1]
		} else {
			engine = m[1]
		}
		body, offset = body[len(m[0]):], offset+len(m[0])
	}
	if body == "" {
		return nil, parseError(offset, "empty %s selector", engine)
	}
	switch engine {
	case "css":
		cs, err := compileCompounds(body, o)
		if err != nil {
			return nil, parseError(offset+err.index, "%s", err.reason)
		}
		seg.Engine = &CSSEngine{cs}
	case "class", "name", "id":
		v, err := value(body)
		if err != nil {
			return nil, parseError(offset, "%s", err)
		}
		switch engine {
		case "class":
			seg.Engine = &ClassEngine{v, o.ClassPrefixes}
		case "name":
			seg.Engine = &NameEngine{v}
		default:
			seg.Engine = &IDEngine{v, o.IdentityAttribute}
		}
	case "text":
		v, err := value(body)
		if err != nil {
			return nil, parseError(offset, "%s", err)
		}
		seg.Engine = &TextEngine{v, isQuote(rune(body[0])), o.TextAttributes}
	case "index":
		i, err := strconv.ParseInt(body, 10, 32)
		if err != nil {
			return nil, parseError(offset, "bad index %q: expected an integer", body)
		}
		seg.Engine = &IndexEngine{int(i)}
	case "xpath":
		e, err := compileXPath(body, o)
		if err != nil {
			return nil, parseError(offset, "%s", err)
		}
		seg.Engine = e
	default:
		panic(fmt.Sprintf("unhandled engine %q", engine))
	}
	return seg, nil
}

// value returns the string body of the class, name, id and text engines: either a
// quoted literal or the bare text.
func value(body string) (string, error) {
	if isQuote(rune(body[0])) {
		return unquote(body)
	}
	return body, nil
}

func compileCompounds(body string, o Options) ([]*Compound, *syntaxError) {
	tokens, err := lex(body)
	if err != nil {
		return nil, err
	}
	return parse(tokens, o)
}

// compileCompound compiles the argument of :not().
func compileCompound(s string, o Options) (*Compound, error) {
	cs, err := compileCompounds(strings.TrimSpace(s), o)
	if err != nil {
		return nil, errors.New(err.reason)
	} else if len(cs) != 1 {
		return nil, errors.New("expected a single compound selector")
	}
	return cs[0], nil
}

func (p *parser) next() token {
	if p.index == len(p.tokens) {
		return token{category: tokenEOF}
	}
	t := p.tokens[p.index]
	p.index++
	return t
}

func (p *parser) peek() token {
	t := p.next()
	p.index--
	return t
}

func (p *parser) backup() {
	if p.index == 0 {
		panic("cannot backup at start")
	}
	p.index--
}

func (p *parser) acceptRun(c tokenCategory) {
	for p.next().category == c {
	}
	p.backup()
}

func (p *parser) errorf(t token, format string, args ...any) *syntaxError {
	return &syntaxError{t.index, fmt.Sprintf(format, args...)}
}

func parse(tokens []token, o Options) ([]*Compound, *syntaxError) {
	p := &parser{tokens: tokens, o: o}
	p.acceptRun(tokenSpace)
	c, err := p.parseCompound()
	if err != nil {
		return nil, err
	}
	cs := []*Compound{c}
	for p.peek().category != tokenEOF {
		combinator, t := p.parseCombinator()
		if p.peek().category == tokenEOF && combinator == Child {
			return nil, p.errorf(t, "missing selector after '>'")
		} else if p.peek().category == tokenEOF {
			break
		} else if combinator == "" {
			return nil, p.errorf(t, "unexpected %q", t.string)
		}
		c.Combinator = combinator
		if c, err = p.parseCompound(); err != nil {
			return nil, err
		}
		cs = append(cs, c)
	}
	return cs, nil
}

func (p *parser) parseCompound() (*Compound, *syntaxError) {
	c, start := &Compound{identity: p.o.IdentityAttribute}, p.peek()
	if t := p.peek(); t.category == tokenType {
		p.next()
		tp, err := compileTypePattern(t.string)
		if err != nil {
			return nil, p.errorf(t, "%s", err)
		}
		c.Type = tp
		if v, ok := LookupVocabulary(t.string); ok {
			c.vocabulary = v
		}
	}
loop:
	for {
		switch t := p.peek(); t.category {
		case tokenID, tokenString:
			p.next()
			id := t.string
			if t.category == tokenString {
				v, err := unquote(t.string)
				if err != nil {
					return nil, p.errorf(t, "%s", err)
				}
				id = v
			}
			if id == "" {
				return nil, p.errorf(t, "empty id")
			} else if c.ID != "" {
				return nil, p.errorf(t, "duplicate id %q", id)
			}
			c.ID = id
		case tokenBracketOpen:
			as, err := p.parseBracket(c.vocabulary)
			if err != nil {
				return nil, err
			}
			c.Attributes = append(c.Attributes, as...)
		case tokenPseudoClass:
			p.next()
			f := PseudoClasses[t.string]
			if f == nil {
				return nil, p.errorf(t, "unknown pseudo class :%s", t.string)
			}
			c.Pseudos = append(c.Pseudos, &PseudoSelector{Name: t.string, match: f(p.o)})
		case tokenPseudoFunction:
			ps, err := p.parsePseudoFunction()
			if err != nil {
				return nil, err
			}
			c.Pseudos = append(c.Pseudos, ps)
		default:
			break loop
		}
	}
	if c.Type == nil && c.ID == "" && len(c.Attributes) == 0 && len(c.Pseudos) == 0 {
		if start.category == tokenEOF {
			return nil, p.errorf(start, "expected selector")
		}
		return nil, p.errorf(start, "expected selector but got %q", start.string)
	}
	return c, nil
}

// parseBracket parses a comma separated predicate list. Predicates of vocabulary
// compounds are compiled by the vocabulary rather than as attribute comparisons.
func (p *parser) parseBracket(v *Vocabulary) ([]*AttributeSelector, *syntaxError) {
	if t := p.next(); t.category != tokenBracketOpen {
		return nil, p.errorf(t, "expected [")
	}
	var as []*AttributeSelector
	for {
		name := p.next()
		if name.category != tokenValue {
			return nil, p.errorf(name, "expected predicate name")
		}
		s := &AttributeSelector{Name: name.string}
		if p.peek().category == tokenMatcher {
			s.Op = p.next().string
			switch t := p.next(); t.category {
			case tokenString:
				value, err := unquote(t.string)
				if err != nil {
					return nil, p.errorf(t, "%s", err)
				}
				s.Value = value
			case tokenValue:
				s.Value = t.string
			default:
				return nil, p.errorf(t, "expected value")
			}
		}
		if v != nil {
			m, err := v.compileArg(s.Name, s.Op, s.Value)
			if err != nil {
				return nil, p.errorf(name, "%s", err)
			}
			s.match = m
		} else if Matchers[s.Op] == nil {
			return nil, p.errorf(name, "bad operator %q", s.Op)
		} else {
			s.match = attributeMatcher(s.Name, s.Op, s.Value)
		}
		as = append(as, s)
		switch t := p.next(); t.category {
		case tokenComma:
		case tokenBracketClose:
			return as, nil
		default:
			return nil, p.errorf(t, "expected ',' or ']'")
		}
	}
}

func (p *parser) parsePseudoFunction() (*PseudoSelector, *syntaxError) {
	t := p.next()
	f := PseudoFunctions[t.string]
	if f == nil {
		return nil, p.errorf(t, "unknown pseudo function :%s()", t.string)
	}
	if p.peek().category != tokenFunctionArguments {
		return nil, p.errorf(t, "expected pseudo function arguments")
	}
	args := p.next().string
	args = args[1 : len(args)-1] // strip ()
	m, err := f(args, p.o)
	if err != nil {
		return nil, p.errorf(t, ":%s(%s): %s", t.string, args, err)
	}
	return &PseudoSelector{t.string, args, true, m}, nil
}

// parseCombinator returns the combinator and its token: the '>' or the first
// whitespace token.
func (p *parser) parseCombinator() (Combinator, token) {
	combinator, t := Combinator(""), p.peek()
	p.acceptRun(tokenSpace)
	if p.peek().category == tokenCombinator {
		combinator, t = Child, p.next()
	} else if t.category == tokenSpace {
		combinator = Descendant
	}
	p.acceptRun(tokenSpace)
	return combinator, t
}
