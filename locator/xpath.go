package locator

import (
	"errors"

	"github.com/antchfx/xpath"
	"github.com/niklasfasching/locate/tree"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// navigator exposes a tree to xpath. Above the tree's root sits a virtual document
// node (cur == tree.None). Elements are named by their simple type, attributes are
// visited in sorted order.
type navigator struct {
	t     *tree.Tree
	attrs []string
	cur   tree.ID
	keys  []string
	attr  int
}

func compileXPath(body string, o Options) (*XPathEngine, error) {
	expr, err := xpath.Compile(body)
	if err != nil {
		return nil, err
	}
	empty := tree.New(nil)
	if _, err := evaluate(expr, newNavigator(empty, empty.Root(), nil)); err != nil {
		return nil, err
	}
	return &XPathEngine{body, expr, o.TextAttributes}, nil
}

var errNotNodeSet = errors.New("expression does not select nodes")

// evaluate returns the nodes selected by expr. Expressions yielding a boolean,
// number or string are rejected, as are expressions the library fails on.
func evaluate(expr *xpath.Expr, nav xpath.NodeNavigator) (it *xpath.NodeIterator, err error) {
	defer func() {
		if r := recover(); r != nil {
			it, err = nil, errors.New("expression cannot be evaluated")
		}
	}()
	it, ok := expr.Evaluate(nav).(*xpath.NodeIterator)
	if !ok {
		return nil, errNotNodeSet
	}
	return it, nil
}

// search evaluates the expression with ctx as context node and keeps the elements
// strictly inside ctx in document order. Failures inside the library are no match.
func (e *XPathEngine) search(t *tree.Tree, ctx tree.ID) (out []tree.ID) {
	defer func() {
		if recover() != nil {
			out = nil
		}
	}()
	it, err := evaluate(e.expr, newNavigator(t, ctx, e.attrs))
	if err != nil {
		return nil
	}
	seen := map[tree.ID]bool{}
	for it.MoveNext() {
		n, ok := it.Current().(*navigator)
		if !ok || n.attr != -1 || n.cur == tree.None || seen[n.cur] || !t.IsAncestor(ctx, n.cur) {
			continue
		}
		seen[n.cur] = true
		out = append(out, n.cur)
	}
	slices.Sort(out)
	return out
}

func newNavigator(t *tree.Tree, id tree.ID, attrs []string) *navigator {
	n := &navigator{t: t, attrs: attrs}
	n.moveTo(id)
	return n
}

func (n *navigator) moveTo(id tree.ID) {
	n.cur, n.attr, n.keys = id, -1, nil
	if id != tree.None {
		n.keys = maps.Keys(n.t.Node(id).Attrs)
		slices.Sort(n.keys)
	}
}

func (n *navigator) NodeType() xpath.NodeType {
	switch {
	case n.cur == tree.None:
		return xpath.RootNode
	case n.attr != -1:
		return xpath.AttributeNode
	default:
		return xpath.ElementNode
	}
}

func (n *navigator) LocalName() string {
	switch {
	case n.cur == tree.None:
		return ""
	case n.attr != -1:
		return n.keys[n.attr]
	default:
		return n.t.SimpleType(n.cur)
	}
}

func (n *navigator) Prefix() string { return "" }

// Value of an element is its first text bearing value.
func (n *navigator) Value() string {
	switch {
	case n.cur == tree.None:
		return ""
	case n.attr != -1:
		v, _ := n.t.Attr(n.cur, n.keys[n.attr])
		return v
	}
	if vs := n.t.Text(n.cur, n.attrs); len(vs) != 0 {
		return vs[0]
	}
	return ""
}

func (n *navigator) Copy() xpath.NodeNavigator {
	c := *n
	return &c
}

func (n *navigator) MoveToRoot() { n.moveTo(tree.None) }

func (n *navigator) MoveToParent() bool {
	switch {
	case n.attr != -1:
		n.attr = -1
	case n.cur == tree.None:
		return false
	default:
		n.moveTo(n.t.Parent(n.cur))
	}
	return true
}

func (n *navigator) MoveToNextAttribute() bool {
	if n.cur == tree.None || n.attr+1 >= len(n.keys) {
		return false
	}
	n.attr++
	return true
}

func (n *navigator) MoveToChild() bool {
	switch {
	case n.attr != -1:
		return false
	case n.cur == tree.None:
		n.moveTo(n.t.Root())
	case len(n.t.Children(n.cur)) == 0:
		return false
	default:
		n.moveTo(n.t.Children(n.cur)[0])
	}
	return true
}

func (n *navigator) MoveToFirst() bool {
	if n.attr != -1 || n.cur == tree.None || n.t.Parent(n.cur) == tree.None {
		return false
	}
	n.moveTo(n.t.Siblings(n.cur)[0])
	return true
}

func (n *navigator) MoveToNext() bool {
	if n.attr != -1 || n.cur == tree.None || n.t.Parent(n.cur) == tree.None {
		return false
	}
	ss, i := n.t.Siblings(n.cur), n.t.Index(n.cur)
	if i+1 >= len(ss) {
		return false
	}
	n.moveTo(ss[i+1])
	return true
}

func (n *navigator) MoveToPrevious() bool {
	if n.attr != -1 || n.cur == tree.None || n.t.Index(n.cur) == 0 {
		return false
	}
	n.moveTo(n.t.Siblings(n.cur)[n.t.Index(n.cur)-1])
	return true
}

func (n *navigator) MoveTo(other xpath.NodeNavigator) bool {
	o, ok := other.(*navigator)
	if !ok || o.t != n.t {
		return false
	}
	n.cur, n.attr, n.keys = o.cur, o.attr, o.keys
	return true
}
