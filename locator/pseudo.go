package locator

import (
	"fmt"
	"strings"

	"github.com/niklasfasching/locate/tree"
)

// PseudoClasses maps the names of argument-less pseudo classes to their matchers.
var PseudoClasses = map[string]func(Options) Matcher{
	"enabled":     state("enabled"),
	"disabled":    not(state("enabled")),
	"visible":     state("visible"),
	"hidden":      not(state("visible")),
	"focused":     state("focused"),
	"showing":     state("showing"),
	"selected":    state("selected"),
	"editable":    state("editable"),
	"expanded":    state("expanded"),
	"collapsed":   func(Options) Matcher { return isCollapsed },
	"root":        func(Options) Matcher { return isRoot },
	"leaf":        func(Options) Matcher { return isLeaf },
	"first":       func(Options) Matcher { return isFirstOfKind },
	"last":        func(Options) Matcher { return isLastOfKind },
	"first-child": func(Options) Matcher { return isFirstChild },
	"last-child":  func(Options) Matcher { return isLastChild },
	"only-child":  func(Options) Matcher { return isOnlyChild },
	"empty":       func(Options) Matcher { return isEmpty },
}

// PseudoFunctions maps the names of pseudo functions to matcher factories. args is
// the raw text between the parentheses.
var PseudoFunctions = map[string]func(args string, o Options) (Matcher, error){
	"nth-child":      nthChild(false),
	"nth-last-child": nthChild(true),
	"contains":       contains,
}

func init() {
	PseudoFunctions["not"] = negation
}

func state(s string) func(Options) Matcher {
	return func(Options) Matcher {
		return func(t *tree.Tree, id tree.ID) bool { return t.Has(id, s) }
	}
}

func not(f func(Options) Matcher) func(Options) Matcher {
	return func(o Options) Matcher {
		m := f(o)
		return func(t *tree.Tree, id tree.ID) bool { return !m(t, id) }
	}
}

func isFirstChild(t *tree.Tree, id tree.ID) bool {
	return t.Parent(id) != tree.None && t.Index(id) == 0
}

func isLastChild(t *tree.Tree, id tree.ID) bool {
	p := t.Parent(id)
	return p != tree.None && t.Index(id) == len(t.Children(p))-1
}

func isOnlyChild(t *tree.Tree, id tree.ID) bool {
	p := t.Parent(id)
	return p != tree.None && len(t.Children(p)) == 1
}

func isEmpty(t *tree.Tree, id tree.ID) bool { return len(t.Children(id)) == 0 }

// isRoot matches top level tree items, or the snapshot root for other nodes.
func isRoot(t *tree.Tree, id tree.ID) bool {
	if item := t.Item(id); item != nil {
		return item.Level() == 0
	}
	return id == t.Root()
}

// isLeaf matches tree items flagged as leaves or without child items, and other
// nodes without children.
func isLeaf(t *tree.Tree, id tree.ID) bool {
	if item := t.Item(id); item != nil {
		if item.Leaf {
			return true
		}
		for _, c := range t.Children(id) {
			if t.Item(c) != nil {
				return false
			}
		}
		return true
	}
	return isEmpty(t, id)
}

func isCollapsed(t *tree.Tree, id tree.ID) bool {
	return !t.Has(id, "expanded") && !isLeaf(t, id)
}

// kind groups siblings for :first and :last: rows with rows, tabs with tabs and so
// on; nodes without side channel are grouped by type.
func kind(t *tree.Tree, id tree.ID) string {
	switch {
	case t.Cell(id) != nil:
		return "cell"
	case t.Row(id) != nil:
		return "row"
	case t.Column(id) != nil:
		return "column"
	case t.Item(id) != nil:
		return "node"
	case t.Tab(id) != nil:
		return "tab"
	default:
		return "type:" + t.Type(id)
	}
}

func siblingsOfKind(t *tree.Tree, id tree.ID) []tree.ID {
	k, out := kind(t, id), []tree.ID(nil)
	for _, s := range t.Siblings(id) {
		if kind(t, s) == k {
			out = append(out, s)
		}
	}
	return out
}

func isFirstOfKind(t *tree.Tree, id tree.ID) bool {
	ss := siblingsOfKind(t, id)
	return len(ss) != 0 && ss[0] == id
}

func isLastOfKind(t *tree.Tree, id tree.ID) bool {
	ss := siblingsOfKind(t, id)
	return len(ss) != 0 && ss[len(ss)-1] == id
}

func nthChild(last bool) func(string, Options) (Matcher, error) {
	return func(args string, _ Options) (Matcher, error) {
		a, b, err := parseNthArgs(args)
		if err != nil {
			return nil, err
		}
		return func(t *tree.Tree, id tree.ID) bool {
			p := t.Parent(id)
			if p == tree.None {
				return false
			}
			i := t.Index(id) + 1
			if last {
				i = len(t.Children(p)) - t.Index(id)
			}
			return isNth(a, b, i)
		}, nil
	}
}

func contains(args string, o Options) (Matcher, error) {
	text, err := argument(args)
	if err != nil {
		return nil, err
	}
	attrs := o.TextAttributes
	return func(t *tree.Tree, id tree.ID) bool {
		for _, v := range t.Text(id, attrs) {
			if strings.Contains(v, text) {
				return true
			}
		}
		return false
	}, nil
}

// negation matches nodes not matched by the single compound in args.
func negation(args string, o Options) (Matcher, error) {
	c, err := compileCompound(args, o)
	if err != nil {
		return nil, err
	}
	return func(t *tree.Tree, id tree.ID) bool { return !c.Match(t, id) }, nil
}

// argument returns the trimmed, unquoted argument of a pseudo function.
func argument(args string) (string, error) {
	args = strings.TrimSpace(args)
	if args == "" {
		return "", fmt.Errorf("missing argument")
	} else if isQuote(rune(args[0])) {
		return unquote(args)
	}
	return args, nil
}
