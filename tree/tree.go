// tree implements the arena the locator engine matches against.
//
// Callers describe a point-in-time snapshot of a component hierarchy as a graph of
// *Node values; New copies it into a Tree with stable integer handles in pre-order,
// so a node's descendants are the contiguous id range (id, End(id)).
package tree

import (
	"iter"
	"strconv"
	"strings"
)

type ID int

const None ID = -1

type Node struct {
	Type     string            `json:"type" yaml:"type"`
	Attrs    map[string]string `json:"attrs,omitempty" yaml:"attrs,omitempty"`
	States   []string          `json:"states,omitempty" yaml:"states,omitempty"`
	Children []*Node           `json:"children,omitempty" yaml:"children,omitempty"`

	Cell   *Cell   `json:"cell,omitempty" yaml:"cell,omitempty"`
	Row    *Row    `json:"row,omitempty" yaml:"row,omitempty"`
	Column *Column `json:"column,omitempty" yaml:"column,omitempty"`
	Item   *Item   `json:"item,omitempty" yaml:"item,omitempty"`
	Tab    *Tab    `json:"tab,omitempty" yaml:"tab,omitempty"`
}

// Cell is a table cell. Column is the header name of Col, if known.
type Cell struct {
	Row    int    `json:"row" yaml:"row"`
	Col    int    `json:"col" yaml:"col"`
	Column string `json:"column,omitempty" yaml:"column,omitempty"`
	Value  string `json:"value,omitempty" yaml:"value,omitempty"`
}

type Row struct {
	Index  int      `json:"index" yaml:"index"`
	Values []string `json:"values,omitempty" yaml:"values,omitempty"`
}

type Column struct {
	Index int    `json:"index" yaml:"index"`
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
}

// Item is a tree (JTree-like) node. Path starts at the tree's root item.
type Item struct {
	Path []string `json:"path" yaml:"path"`
	Leaf bool     `json:"leaf,omitempty" yaml:"leaf,omitempty"`
}

type Tab struct {
	Index int    `json:"index" yaml:"index"`
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
}

type Tree struct {
	entries []entry
}

type entry struct {
	node     *Node
	parent   ID
	children []ID
	index    int
	depth    int
	end      ID
	states   map[string]bool
}

// New copies root into an arena. Nodes reachable more than once are only copied at
// their first occurrence. A nil root yields a tree with a single empty node.
func New(root *Node) *Tree {
	if root == nil {
		root = &Node{}
	}
	t := &Tree{}
	t.add(root, None, 0, 0, map[*Node]bool{})
	return t
}

func (t *Tree) add(n *Node, parent ID, index, depth int, seen map[*Node]bool) ID {
	seen[n] = true
	id := ID(len(t.entries))
	e := entry{node: n, parent: parent, index: index, depth: depth, states: map[string]bool{}}
	for _, s := range n.States {
		e.states[s] = true
	}
	t.entries = append(t.entries, e)
	i := 0
	for _, c := range n.Children {
		if c == nil || seen[c] {
			continue
		}
		cid := t.add(c, id, i, depth+1, seen)
		t.entries[id].children = append(t.entries[id].children, cid)
		i++
	}
	t.entries[id].end = ID(len(t.entries))
	return id
}

func (t *Tree) Root() ID { return 0 }
func (t *Tree) Len() int { return len(t.entries) }

// Node returns the caller's node behind id.
func (t *Tree) Node(id ID) *Node         { return t.entries[id].node }
func (t *Tree) Type(id ID) string        { return t.entries[id].node.Type }
func (t *Tree) Parent(id ID) ID          { return t.entries[id].parent }
func (t *Tree) Children(id ID) []ID      { return t.entries[id].children }
func (t *Tree) Index(id ID) int          { return t.entries[id].index }
func (t *Tree) Depth(id ID) int          { return t.entries[id].depth }
func (t *Tree) End(id ID) ID             { return t.entries[id].end }
func (t *Tree) Has(id ID, s string) bool { return t.entries[id].states[s] }

func (t *Tree) SimpleType(id ID) string {
	s := t.Type(id)
	if i := strings.LastIndexByte(s, '.'); i != -1 {
		return s[i+1:]
	}
	return s
}

func (t *Tree) Attr(id ID, k string) (string, bool) {
	v, ok := t.entries[id].node.Attrs[k]
	return v, ok
}

func (t *Tree) Siblings(id ID) []ID {
	if p := t.Parent(id); p != None {
		return t.Children(p)
	}
	return []ID{id}
}

// IsAncestor reports whether a is a proper ancestor of d.
func (t *Tree) IsAncestor(a, d ID) bool {
	return a < d && d < t.entries[a].end
}

// Descendants yields the descendants of id in document order, excluding id itself.
func (t *Tree) Descendants(id ID) iter.Seq[ID] {
	return func(yield func(ID) bool) {
		for d := id + 1; d < t.entries[id].end; d++ {
			if !yield(d) {
				return
			}
		}
	}
}

func (t *Tree) Cell(id ID) *Cell     { return t.entries[id].node.Cell }
func (t *Tree) Row(id ID) *Row       { return t.entries[id].node.Row }
func (t *Tree) Column(id ID) *Column { return t.entries[id].node.Column }
func (t *Tree) Item(id ID) *Item     { return t.entries[id].node.Item }
func (t *Tree) Tab(id ID) *Tab       { return t.entries[id].node.Tab }

// Text returns the text bearing values of id: the given attributes in order, then
// the cell value, tab title and tree item label where present.
func (t *Tree) Text(id ID, attrs []string) []string {
	n, out := t.entries[id].node, []string(nil)
	for _, k := range attrs {
		if v, ok := n.Attrs[k]; ok {
			out = append(out, v)
		}
	}
	if n.Cell != nil {
		out = append(out, n.Cell.Value)
	}
	if n.Tab != nil {
		out = append(out, n.Tab.Title)
	}
	if n.Item != nil && len(n.Item.Path) != 0 {
		out = append(out, n.Item.Path[len(n.Item.Path)-1])
	}
	return out
}

// Path renders id as slash separated simple types with sibling indexes, e.g.
// /JFrame[0]/JPanel[1]/JButton[0].
func (t *Tree) Path(id ID) string {
	var parts []string
	for ; id != None; id = t.Parent(id) {
		parts = append(parts, t.SimpleType(id)+"["+strconv.Itoa(t.Index(id))+"]")
	}
	out := ""
	for i := len(parts) - 1; i >= 0; i-- {
		out += "/" + parts[i]
	}
	return out
}

func (i *Item) Level() int { return len(i.Path) - 1 }

func (i *Item) String() string { return strings.Join(i.Path, "/") }
