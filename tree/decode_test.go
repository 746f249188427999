package tree

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func snapshot() *Node {
	return &Node{Type: "javax.swing.JFrame", Attrs: map[string]string{"name": "main"}, States: []string{"enabled", "visible"}, Children: []*Node{
		{Type: "javax.swing.JButton", Attrs: map[string]string{"name": "ok", "text": "OK"}, States: []string{"enabled"}},
		{Type: "javax.swing.JTable", Children: []*Node{
			{Type: "Column", Column: &Column{Index: 1, Name: "Role"}},
			{Type: "Row", Row: &Row{Index: 0, Values: []string{"bob, jr", "admin"}}, Children: []*Node{
				{Type: "Cell", Cell: &Cell{Row: 0, Col: 1, Column: "Role", Value: "admin"}},
			}},
		}},
		{Type: "javax.swing.JTree", Children: []*Node{
			{Type: "TreeNode", Item: &Item{Path: []string{"root"}}, Children: []*Node{
				{Type: "TreeNode", Item: &Item{Path: []string{"root", "README"}, Leaf: true}, States: []string{"selected"}},
			}},
		}},
		{Type: "javax.swing.JPanel", Tab: &Tab{Index: 2, Title: "Advanced"}},
	}}
}

var snapshotJSON = `{
  "type": "javax.swing.JFrame", "attrs": {"name": "main"}, "states": ["enabled", "visible"],
  "children": [
    {"type": "javax.swing.JButton", "attrs": {"name": "ok", "text": "OK"}, "states": ["enabled"]},
    {"type": "javax.swing.JTable", "children": [
      {"type": "Column", "column": {"index": 1, "name": "Role"}},
      {"type": "Row", "row": {"index": 0, "values": ["bob, jr", "admin"]}, "children": [
        {"type": "Cell", "cell": {"row": 0, "col": 1, "column": "Role", "value": "admin"}}
      ]}
    ]},
    {"type": "javax.swing.JTree", "children": [
      {"type": "TreeNode", "item": {"path": ["root"]}, "children": [
        {"type": "TreeNode", "item": {"path": ["root", "README"], "leaf": true}, "states": ["selected"]}
      ]}
    ]},
    {"type": "javax.swing.JPanel", "tab": {"index": 2, "title": "Advanced"}}
  ]
}`

var snapshotYAML = `
type: javax.swing.JFrame
attrs: {name: main}
states: [enabled, visible]
children:
  - type: javax.swing.JButton
    attrs: {name: ok, text: OK}
    states: [enabled]
  - type: javax.swing.JTable
    children:
      - type: Column
        column: {index: 1, name: Role}
      - type: Row
        row: {index: 0, values: ["bob, jr", admin]}
        children:
          - type: Cell
            cell: {row: 0, col: 1, column: Role, value: admin}
  - type: javax.swing.JTree
    children:
      - type: TreeNode
        item: {path: [root]}
        children:
          - type: TreeNode
            item: {path: [root, README], leaf: true}
            states: [selected]
  - type: javax.swing.JPanel
    tab: {index: 2, title: Advanced}
`

var snapshotHTML = `<!DOCTYPE html>
<html><body>
<jframe data-type="javax.swing.JFrame" name="main" data-states="enabled visible">
  <jbutton data-type="javax.swing.JButton" name="ok" text="OK" data-states="enabled"></jbutton>
  <jtable data-type="javax.swing.JTable">
    <column data-type="Column" data-column="1,Role"></column>
    <row data-type="Row" data-values='["bob, jr","admin"]' data-row="0">
      <cell data-type="Cell" data-cell="0,1,Role" data-value="admin"></cell>
    </row>
  </jtable>
  <jtree data-type="javax.swing.JTree">
    <treenode data-type="TreeNode" data-item="root">
      <treenode data-type="TreeNode" data-item="root/README/" data-states="selected"></treenode>
    </treenode>
  </jtree>
  <jpanel data-type="javax.swing.JPanel" data-tab="2,Advanced"></jpanel>
</jframe>
</body></html>`

func TestDecode(t *testing.T) {
	tests := map[string]string{"json": snapshotJSON, "yaml": snapshotYAML, "html": snapshotHTML}
	for format, input := range tests {
		n, err := Decode(strings.NewReader(input), format)
		if err != nil {
			t.Errorf("%s: %s", format, err)
			continue
		}
		if diff := cmp.Diff(snapshot(), n); diff != "" {
			t.Errorf("%s: (-expected +got):\n%s", format, diff)
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct{ input, format string }{
		{`{"type": "A", "kind": "B"}`, "json"},
		{"type: A\nkind: B\n", "yaml"},
		{`<html><body><a data-cell="x"></a></body></html>`, "html"},
		{`<html><body><a data-tab="first"></a></body></html>`, "html"},
		{`<html><body><a data-row="1" data-values="a,b"></a></body></html>`, "html"},
		{"", "xml"},
	}
	for _, test := range tests {
		if _, err := Decode(strings.NewReader(test.input), test.format); err == nil {
			t.Errorf("%s %q: expected error", test.format, test.input)
		}
	}
}

func TestDecodeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.yml")
	if err := os.WriteFile(path, []byte(snapshotYAML), 0644); err != nil {
		t.Fatal(err)
	}
	n, err := DecodeFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(snapshot(), n); diff != "" {
		t.Errorf("(-expected +got):\n%s", diff)
	}
}

func TestHTMLRoundTrip(t *testing.T) {
	n, err := FromHTML(ToHTML(New(snapshot())))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(snapshot(), n); diff != "" {
		t.Errorf("(-expected +got):\n%s", diff)
	}
}

func TestHTMLCellText(t *testing.T) {
	n, err := Decode(strings.NewReader(`<html><body><cell data-cell="2,3" text="x"></cell></body></html>`), "html")
	if err != nil {
		t.Fatal(err)
	}
	expected := &Node{Type: "cell", Attrs: map[string]string{"text": "x"}, Cell: &Cell{Row: 2, Col: 3, Value: "x"}}
	if diff := cmp.Diff(expected, n); diff != "" {
		t.Errorf("(-expected +got):\n%s", diff)
	}
}
