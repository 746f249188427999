package locator

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/niklasfasching/locate/tree"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Vocabulary is a keyword shaped compound such as cell[row=1, col=2]. Kind decides
// which nodes the keyword refers to; bracket predicates are compiled by Args
// instead of being compared against attributes. Arg matchers only run on nodes
// matched by Kind.
type Vocabulary struct {
	Keyword string
	Kind    Matcher
	Args    map[string]ArgFunc
}

// ArgFunc compiles one `name op value` predicate of a vocabulary.
type ArgFunc func(op, value string) (Matcher, error)

var vocabularies = struct {
	sync.RWMutex
	m map[string]*Vocabulary
}{m: map[string]*Vocabulary{}}

// RegisterVocabulary adds v to the vocabularies known to the parser. Compounds
// whose type is exactly v.Keyword are compiled against it from then on.
func RegisterVocabulary(v Vocabulary) error {
	if v.Keyword == "" || !bareRegexp.MatchString(v.Keyword) || strings.Contains(v.Keyword, "*") {
		return fmt.Errorf("bad vocabulary keyword: %q", v.Keyword)
	} else if v.Kind == nil {
		return fmt.Errorf("vocabulary %q: missing kind", v.Keyword)
	}
	vocabularies.Lock()
	defer vocabularies.Unlock()
	vocabularies.m[v.Keyword] = &v
	return nil
}

func LookupVocabulary(keyword string) (*Vocabulary, bool) {
	vocabularies.RLock()
	defer vocabularies.RUnlock()
	v, ok := vocabularies.m[keyword]
	return v, ok
}

// Vocabularies returns the registered keywords in sorted order.
func Vocabularies() []string {
	vocabularies.RLock()
	defer vocabularies.RUnlock()
	ks := maps.Keys(vocabularies.m)
	slices.Sort(ks)
	return ks
}

func (v *Vocabulary) compileArg(name, op, value string) (Matcher, error) {
	f, ok := v.Args[name]
	if !ok {
		args := maps.Keys(v.Args)
		slices.Sort(args)
		return nil, fmt.Errorf("%s: unknown argument %q (expected one of %s)", v.Keyword, name, strings.Join(args, ", "))
	} else if op == "" {
		return nil, fmt.Errorf("%s: argument %q requires a value", v.Keyword, name)
	}
	m, err := f(op, value)
	if err != nil {
		return nil, fmt.Errorf("%s[%s]: %w", v.Keyword, name, err)
	}
	return m, nil
}

func intArg(get func(*tree.Tree, tree.ID) int) ArgFunc {
	return func(op, value string) (Matcher, error) {
		if op != "=" {
			return nil, fmt.Errorf("operator %q not supported for integers", op)
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("bad integer %q", value)
		}
		return func(t *tree.Tree, id tree.ID) bool { return get(t, id) == n }, nil
	}
}

func stringArg(get func(*tree.Tree, tree.ID) []string) ArgFunc {
	return func(op, value string) (Matcher, error) {
		f := Matchers[op]
		if f == nil {
			return nil, fmt.Errorf("bad operator %q", op)
		}
		return func(t *tree.Tree, id tree.ID) bool {
			for _, v := range get(t, id) {
				if f(v, value) {
					return true
				}
			}
			return false
		}, nil
	}
}

// intOrStringArg compiles integer values with i and anything else with s.
func intOrStringArg(i, s ArgFunc) ArgFunc {
	return func(op, value string) (Matcher, error) {
		if _, err := strconv.Atoi(value); err == nil && op == "=" {
			return i(op, value)
		}
		return s(op, value)
	}
}

var cellVocabulary = Vocabulary{
	Keyword: "cell",
	Kind:    func(t *tree.Tree, id tree.ID) bool { return t.Cell(id) != nil },
	Args: map[string]ArgFunc{
		"row": intArg(func(t *tree.Tree, id tree.ID) int {
			return t.Cell(id).Row
		}),
		"col": intOrStringArg(
			intArg(func(t *tree.Tree, id tree.ID) int {
				return t.Cell(id).Col
			}),
			stringArg(func(t *tree.Tree, id tree.ID) []string {
				if c := t.Cell(id); c.Column != "" {
					return []string{c.Column}
				}
				return nil
			})),
		"value": stringArg(func(t *tree.Tree, id tree.ID) []string {
			return []string{t.Cell(id).Value}
		}),
	},
}

var rowVocabulary = Vocabulary{
	Keyword: "row",
	Kind:    func(t *tree.Tree, id tree.ID) bool { return t.Row(id) != nil },
	Args: map[string]ArgFunc{
		"index": intArg(func(t *tree.Tree, id tree.ID) int {
			return t.Row(id).Index
		}),
		"contains": stringArg(rowValues),
	},
}

var columnVocabulary = Vocabulary{
	Keyword: "column",
	Kind:    func(t *tree.Tree, id tree.ID) bool { return t.Column(id) != nil },
	Args: map[string]ArgFunc{
		"index": intArg(func(t *tree.Tree, id tree.ID) int {
			return t.Column(id).Index
		}),
		"name": stringArg(func(t *tree.Tree, id tree.ID) []string {
			return []string{t.Column(id).Name}
		}),
	},
}

var nodeVocabulary = Vocabulary{
	Keyword: "node",
	Kind:    func(t *tree.Tree, id tree.ID) bool { return t.Item(id) != nil },
	Args: map[string]ArgFunc{
		"path": stringArg(func(t *tree.Tree, id tree.ID) []string {
			return []string{t.Item(id).String()}
		}),
		"text": stringArg(func(t *tree.Tree, id tree.ID) []string {
			if p := t.Item(id).Path; len(p) != 0 {
				return p[len(p)-1:]
			}
			return nil
		}),
		"level": intArg(func(t *tree.Tree, id tree.ID) int {
			return t.Item(id).Level()
		}),
	},
}

var tabVocabulary = Vocabulary{
	Keyword: "tab",
	Kind:    func(t *tree.Tree, id tree.ID) bool { return t.Tab(id) != nil },
	Args: map[string]ArgFunc{
		"index": intArg(func(t *tree.Tree, id tree.ID) int {
			return t.Tab(id).Index
		}),
		"title": stringArg(func(t *tree.Tree, id tree.ID) []string {
			return []string{t.Tab(id).Title}
		}),
	},
}

// rowValues are the values of a row: its own and those of its child cells.
func rowValues(t *tree.Tree, id tree.ID) []string {
	r := t.Row(id)
	if r == nil {
		return nil
	}
	vs := append([]string(nil), r.Values...)
	for _, c := range t.Children(id) {
		if cell := t.Cell(c); cell != nil {
			vs = append(vs, cell.Value)
		}
	}
	return vs
}

func init() {
	for _, v := range []Vocabulary{cellVocabulary, rowVocabulary, columnVocabulary, nodeVocabulary, tabVocabulary} {
		if err := RegisterVocabulary(v); err != nil {
			panic(err)
		}
	}
}
