package locator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/antchfx/xpath"
	"github.com/niklasfasching/locate/tree"
)

// Engine is the matching strategy of a segment. The set is closed: CSSEngine,
// ClassEngine, NameEngine, TextEngine, IndexEngine, XPathEngine and IDEngine.
type Engine interface {
	Name() string
	String() string
	sealed()
}

type CSSEngine struct {
	Compounds []*Compound
}

// ClassEngine compares the simple type name case-insensitively, ignoring the
// configured conventional prefixes (Button matches JButton).
type ClassEngine struct {
	Class    string
	prefixes []string
}

type NameEngine struct {
	Value string
}

// IDEngine compares the id attribute, falling back to the identity attribute for
// nodes without one.
type IDEngine struct {
	Value    string
	identity string
}

// TextEngine compares text bearing properties; Exact (quoted body) requires equality,
// otherwise a substring suffices.
type TextEngine struct {
	Value string
	Exact bool
	attrs []string
}

// IndexEngine selects from the current contexts by position; negative positions
// count from the end.
type IndexEngine struct {
	Index int
}

type XPathEngine struct {
	Expr  string
	expr  *xpath.Expr
	attrs []string
}

var engineNames = []string{"css", "class", "name", "text", "index", "xpath", "id"}

func (*CSSEngine) Name() string   { return "css" }
func (*ClassEngine) Name() string { return "class" }
func (*NameEngine) Name() string  { return "name" }
func (*TextEngine) Name() string  { return "text" }
func (*IndexEngine) Name() string { return "index" }
func (*XPathEngine) Name() string { return "xpath" }
func (*IDEngine) Name() string    { return "id" }

func (*CSSEngine) sealed()   {}
func (*ClassEngine) sealed() {}
func (*NameEngine) sealed()  {}
func (*TextEngine) sealed()  {}
func (*IndexEngine) sealed() {}
func (*XPathEngine) sealed() {}
func (*IDEngine) sealed()    {}

func (e *CSSEngine) String() string {
	out := ""
	for _, c := range e.Compounds {
		out += c.String()
		switch c.Combinator {
		case Child:
			out += " > "
		case Descendant:
			out += " "
		}
	}
	return out
}

func (e *ClassEngine) String() string { return "class=" + quoteIfNeeded(e.Class) }
func (e *NameEngine) String() string  { return "name=" + quoteIfNeeded(e.Value) }
func (e *IDEngine) String() string    { return "id=" + quoteIfNeeded(e.Value) }
func (e *IndexEngine) String() string { return "index=" + strconv.Itoa(e.Index) }
func (e *XPathEngine) String() string { return "xpath=" + e.Expr }
func (e *TextEngine) String() string {
	if e.Exact {
		return "text=" + quote(e.Value)
	}
	return "text=" + e.Value
}

// search returns the nodes below ctx (ctx excluded) the engine matches, in document
// order. It is not defined for IndexEngine, which selects from the contexts instead.
func search(e Engine, t *tree.Tree, ctx tree.ID) []tree.ID {
	switch e := e.(type) {
	case *CSSEngine:
		return filter(t, ctx, func(id tree.ID) bool { return e.match(t, ctx, id) })
	case *ClassEngine:
		return filter(t, ctx, func(id tree.ID) bool { return e.match(t, id) })
	case *NameEngine:
		return filter(t, ctx, func(id tree.ID) bool {
			v, ok := t.Attr(id, "name")
			return ok && v == e.Value
		})
	case *IDEngine:
		return filter(t, ctx, func(id tree.ID) bool {
			v, ok := t.Attr(id, "id")
			if !ok {
				v, ok = t.Attr(id, e.identity)
			}
			return ok && v == e.Value
		})
	case *TextEngine:
		return filter(t, ctx, func(id tree.ID) bool { return e.match(t, id) })
	case *XPathEngine:
		return e.search(t, ctx)
	case *IndexEngine:
		panic("index engine does not search descendants")
	default:
		panic(fmt.Sprintf("unhandled engine %T", e))
	}
}

func filter(t *tree.Tree, ctx tree.ID, f func(tree.ID) bool) (out []tree.ID) {
	for id := range t.Descendants(ctx) {
		if f(id) {
			out = append(out, id)
		}
	}
	return out
}

// match checks the last compound against id and the preceding ones against the
// ancestors of id strictly below ctx.
func (e *CSSEngine) match(t *tree.Tree, ctx, id tree.ID) bool {
	last := len(e.Compounds) - 1
	return e.Compounds[last].Match(t, id) && matchAncestors(t, ctx, e.Compounds[:last], id)
}

func matchAncestors(t *tree.Tree, ctx tree.ID, cs []*Compound, id tree.ID) bool {
	if len(cs) == 0 {
		return true
	}
	c, rest := cs[len(cs)-1], cs[:len(cs)-1]
	switch c.Combinator {
	case Child:
		p := t.Parent(id)
		return p != tree.None && t.IsAncestor(ctx, p) && c.Match(t, p) && matchAncestors(t, ctx, rest, p)
	case Descendant:
		for p := t.Parent(id); p != tree.None && t.IsAncestor(ctx, p); p = t.Parent(p) {
			if c.Match(t, p) && matchAncestors(t, ctx, rest, p) {
				return true
			}
		}
		return false
	default:
		panic(fmt.Sprintf("bad combinator %q", c.Combinator))
	}
}

func (e *ClassEngine) match(t *tree.Tree, id tree.ID) bool {
	class, typ := e.Class, t.SimpleType(id)
	if strings.Contains(class, ".") {
		if strings.EqualFold(class, t.Type(id)) {
			return true
		}
		class = class[strings.LastIndexByte(class, '.')+1:]
	}
	if strings.EqualFold(class, typ) {
		return true
	}
	for _, p := range e.prefixes {
		if strings.EqualFold(p+class, typ) || strings.EqualFold(class, p+typ) {
			return true
		}
	}
	return false
}

func (e *TextEngine) match(t *tree.Tree, id tree.ID) bool {
	for _, v := range t.Text(id, e.attrs) {
		if e.Exact && v == e.Value || !e.Exact && strings.Contains(v, e.Value) {
			return true
		}
	}
	return false
}

// selectIndex picks the i-th context, counting from the end for negative i.
func (e *IndexEngine) selectIndex(contexts []tree.ID) []tree.ID {
	i := e.Index
	if i < 0 {
		i += len(contexts)
	}
	if i < 0 || i >= len(contexts) {
		return nil
	}
	return []tree.ID{contexts[i]}
}
