// Package locator compiles cascaded locators such as
//
//	JFrame >> *JPanel[name='form'] >> text='Save'
//
// into Selectors and evaluates them against snapshots of a component tree.
//
// A locator is a list of segments separated by ">>". Each segment is searched for
// below the matches of the previous one, starting at the root. A segment is a css
// like compound selector chain unless prefixed with one of the engines class=,
// name=, text=, index=, xpath= or id=. A leading '*' marks the segment whose
// matches are returned instead of those of the last segment.
package locator

import (
	"context"

	"github.com/niklasfasching/locate/tree"
	"github.com/niklasfasching/locate/util"
)

// Finder compiles locators with a fixed set of Options and caches the results. It
// is safe for concurrent use.
type Finder struct {
	Options Options
	cache   *util.Cache[*Selector]
}

func New(o Options) (*Finder, error) {
	o, err := o.withDefaults()
	if err != nil {
		return nil, err
	}
	return &Finder{o, util.NewCache[*Selector](o.CacheSize)}, nil
}

func (f *Finder) Compile(ctx context.Context, locator string) (*Selector, error) {
	s, hit, err := f.cache.Get(locator, func() (*Selector, error) { return CompileOptions(locator, f.Options) })
	if err != nil {
		util.Debugf(ctx, "compile %q: %s", locator, err)
		return nil, err
	} else if hit {
		util.Debugf(ctx, "compile %q: cached", locator)
		return s, nil
	}
	for i, seg := range s.Segments {
		if seg.fallback != "" {
			util.Warnf(ctx, "compile %q: segment %d: unknown engine %q, using css", locator, i, seg.fallback)
		}
	}
	return s, nil
}

// Find returns the first node matched by locator.
func (f *Finder) Find(ctx context.Context, t *tree.Tree, locator string) (tree.ID, error) {
	s, err := f.Compile(ctx, locator)
	if err != nil {
		return tree.None, err
	}
	ids, err := s.match(t, f.trace(ctx, s))
	if err != nil {
		return tree.None, err
	}
	return ids[0], nil
}

// FindAll returns all nodes matched by locator. It only returns an empty result if
// the last segment matches nothing.
func (f *Finder) FindAll(ctx context.Context, t *tree.Tree, locator string) ([]tree.ID, error) {
	s, err := f.Compile(ctx, locator)
	if err != nil {
		return nil, err
	}
	return all(s, t, f.trace(ctx, s))
}

// Locate copies root into a Tree and returns the caller's nodes matched by locator.
func (f *Finder) Locate(ctx context.Context, root *tree.Node, locator string) ([]*tree.Node, error) {
	t := tree.New(root)
	ids, err := f.FindAll(ctx, t, locator)
	if err != nil {
		return nil, err
	}
	nodes := make([]*tree.Node, len(ids))
	for i, id := range ids {
		nodes[i] = t.Node(id)
	}
	return nodes, nil
}

func (f *Finder) trace(ctx context.Context, s *Selector) func(i, contexts, matches int) {
	if _, ok := util.GetLogger(ctx); !ok {
		return nil
	}
	return func(i, contexts, matches int) {
		util.Debugf(ctx, "%q: segment %d %q: %d contexts, %d matches", s.Raw, i, s.Segments[i].Raw, contexts, matches)
	}
}
