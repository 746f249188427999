package locator

import (
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/niklasfasching/locate/tree"
)

func node(typ, name string, states []string, children ...*tree.Node) *tree.Node {
	return &tree.Node{Type: typ, Attrs: map[string]string{"name": name}, States: states, Children: children}
}

func with(n *tree.Node, f func(*tree.Node)) *tree.Node {
	f(n)
	return n
}

func text(n *tree.Node, text string) *tree.Node {
	return with(n, func(n *tree.Node) { n.Attrs["text"] = text })
}

var enabled = []string{"enabled", "visible", "showing"}

// fixture builds
//
//	Root
//	  JFrame main
//	    JPanel form: JLabel userLabel, JTextField user, JButton ok, JButton cancel, JToggleButton bold
//	    JTabbedPane tabs: JPanel general (tab 0), JPanel advanced (tab 1) > JRadioButton r1
//	    JTable users: JTableHeader header (colName, colRole), Row row0 (c00, c01), Row row1 (c10, c11)
//	    JTree files: nRoot > (nSrc > nMain), nReadme
func fixture() *tree.Node {
	cell := func(name string, row, col int, column, value string) *tree.Node {
		return with(node("Cell", name, nil), func(n *tree.Node) { n.Cell = &tree.Cell{Row: row, Col: col, Column: column, Value: value} })
	}
	item := func(name string, states []string, leaf bool, path []string, children ...*tree.Node) *tree.Node {
		return with(node("TreeNode", name, states, children...), func(n *tree.Node) { n.Item = &tree.Item{Path: path, Leaf: leaf} })
	}
	return node("Root", "root", nil,
		node("javax.swing.JFrame", "main", enabled,
			node("javax.swing.JPanel", "form", enabled,
				text(node("javax.swing.JLabel", "userLabel", enabled), "User name"),
				text(node("javax.swing.JTextField", "user", []string{"enabled", "visible", "editable", "focused"}), "alice"),
				with(text(node("javax.swing.JButton", "ok", enabled), "OK"), func(n *tree.Node) { n.Attrs["id"] = "okButton" }),
				text(node("javax.swing.JButton", "cancel", []string{"visible"}), "Cancel"),
				text(node("javax.swing.JToggleButton", "bold", []string{"enabled", "visible", "selected"}), "Bold"),
			),
			node("javax.swing.JTabbedPane", "tabs", enabled,
				with(node("javax.swing.JPanel", "general", nil), func(n *tree.Node) { n.Tab = &tree.Tab{Index: 0, Title: "General"} }),
				with(node("javax.swing.JPanel", "advanced", nil,
					text(node("javax.swing.JRadioButton", "r1", enabled), "Fast"),
				), func(n *tree.Node) { n.Tab = &tree.Tab{Index: 1, Title: "Advanced"} }),
			),
			node("javax.swing.JTable", "users", enabled,
				node("javax.swing.table.JTableHeader", "header", nil,
					with(node("Column", "colName", nil), func(n *tree.Node) { n.Column = &tree.Column{Index: 0, Name: "Name"} }),
					with(node("Column", "colRole", nil), func(n *tree.Node) { n.Column = &tree.Column{Index: 1, Name: "Role"} }),
				),
				with(node("Row", "row0", nil,
					cell("c00", 0, 0, "Name", "alice"),
					cell("c01", 0, 1, "Role", "admin"),
				), func(n *tree.Node) { n.Row = &tree.Row{Index: 0} }),
				with(node("Row", "row1", []string{"selected"},
					cell("c10", 1, 0, "Name", "bob"),
					cell("c11", 1, 1, "Role", "user"),
				), func(n *tree.Node) { n.Row = &tree.Row{Index: 1} }),
			),
			node("javax.swing.JTree", "files", enabled,
				item("nRoot", []string{"expanded"}, false, []string{"root"},
					item("nSrc", nil, false, []string{"root", "src"},
						item("nMain", nil, true, []string{"root", "src", "main.go"}),
					),
					item("nReadme", []string{"selected"}, true, []string{"root", "README"}),
				),
			),
		),
	)
}

func names(t *tree.Tree, ids []tree.ID) []string {
	out := []string{}
	for _, id := range ids {
		v, _ := t.Attr(id, "name")
		out = append(out, v)
	}
	return out
}

// astOptions compares selectors structurally, ignoring raw text, positions and
// compiled matchers.
var astOptions = cmp.Options{
	cmpopts.IgnoreUnexported(Segment{}, Compound{}, TypePattern{}, AttributeSelector{}, PseudoSelector{},
		ClassEngine{}, IDEngine{}, TextEngine{}, XPathEngine{}),
	cmpopts.IgnoreFields(Selector{}, "Raw"),
	cmpopts.IgnoreFields(Segment{}, "Raw", "Offset"),
}
