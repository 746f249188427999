package locator

import (
	"fmt"
	"strings"
	"testing"

	"github.com/andybalholm/cascadia"
	"github.com/ericchiang/css"
	"github.com/google/go-cmp/cmp"
	"github.com/niklasfasching/locate/tree"
	"golang.org/x/net/html"
)

var cssSelectors = []string{
	"jbutton",
	"jpanel > jbutton",
	"jframe jbutton",
	"jtabbedpane jpanel > jradiobutton",
	"jtable > row > cell",
	"[name=ok]",
	"[text^=B]",
	"[text$=l]",
	"[text*=lic]",
	"[text~=name]",
	"[id]",
	"jbutton:not([name=ok])",
	"jpanel > :nth-child(2)",
	"jpanel > :nth-child(odd)",
	"jpanel > :nth-last-child(-n+2)",
	"jpanel > :first-child",
	"jpanel > :last-child",
	"jpanel > :only-child",
	"treenode:empty",
	"jframe > * > *",
}

// lowered returns the fixture with lower cased simple types, as used as tag names by
// tree.ToHTML.
func lowered() *tree.Node {
	var f func(*tree.Node)
	f = func(n *tree.Node) {
		n.Type = strings.ToLower(n.Type[strings.LastIndexByte(n.Type, '.')+1:])
		for _, c := range n.Children {
			f(c)
		}
	}
	root := fixture()
	f(root)
	return root
}

// htmlNodes returns the element nodes below n in document order; the index of a node
// is its tree.ID.
func htmlNodes(n *html.Node) (out []*html.Node) {
	out = append(out, n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, htmlNodes(c)...)
		}
	}
	return out
}

func TestCSSAgainstCascadia(t *testing.T) {
	tr := tree.New(lowered())
	document := tree.ToHTML(tr)
	nodes := htmlNodes(document)
	if len(nodes) != tr.Len() {
		t.Fatalf("bad html conversion: %d nodes, expected %d", len(nodes), tr.Len())
	}
	ids := map[*html.Node]tree.ID{}
	for i, n := range nodes {
		ids[n] = tree.ID(i)
	}
	for _, selector := range cssSelectors {
		expected := []tree.ID{}
		for _, n := range cascadia.MustCompile(selector).MatchAll(document) {
			if n != document {
				expected = append(expected, ids[n])
			}
		}
		actual, err := All(MustCompile("css="+selector), tr)
		if err != nil {
			t.Errorf("%s: %s", selector, err)
			continue
		}
		if !cmp.Equal(actual, expected) {
			t.Errorf("%s\ngot:\n\t%q\n\nexpected:\n\t%q", selector, names(tr, actual), names(tr, expected))
		}
	}
}

// benchmarkTree builds a form of n panels holding a label, a text field and two
// buttons each.
func benchmarkTree(n int) *tree.Node {
	root := &tree.Node{Type: "root"}
	frame := &tree.Node{Type: "jframe"}
	root.Children = []*tree.Node{frame}
	for i := range n {
		name := func(s string) map[string]string { return map[string]string{"name": fmt.Sprintf("%s%d", s, i)} }
		frame.Children = append(frame.Children, &tree.Node{Type: "jpanel", Attrs: name("panel"), Children: []*tree.Node{
			{Type: "jlabel", Attrs: name("label")},
			{Type: "jtextfield", Attrs: name("field")},
			{Type: "jbutton", Attrs: name("ok")},
			{Type: "jbutton", Attrs: name("cancel")},
		}})
	}
	return root
}

var benchmarkSelectors = []string{
	"jbutton",
	"jpanel > jbutton[name^=ok]",
	"jframe jpanel :nth-child(2)",
	"jbutton:not([name^=cancel])",
}

func BenchmarkLocator(b *testing.B) {
	tr := tree.New(benchmarkTree(500))
	for _, selector := range benchmarkSelectors {
		s := MustCompile("css=" + selector)
		b.Run(selector, func(b *testing.B) {
			for range b.N {
				All(s, tr)
			}
		})
	}
}

func BenchmarkAndyBalholmCSS(b *testing.B) {
	document := tree.ToHTML(tree.New(benchmarkTree(500)))
	for _, selector := range benchmarkSelectors {
		s := cascadia.MustCompile(selector)
		b.Run(selector, func(b *testing.B) {
			for range b.N {
				s.MatchAll(document)
			}
		})
	}
}

func BenchmarkEricChiangCSS(b *testing.B) {
	document := tree.ToHTML(tree.New(benchmarkTree(500)))
	for _, selector := range benchmarkSelectors {
		s := css.MustParse(selector)
		b.Run(selector, func(b *testing.B) {
			for range b.N {
				s.Select(document)
			}
		})
	}
}
