package locator

import (
	"errors"

	"github.com/niklasfasching/locate/tree"
)

// Match evaluates s against t starting from the root. The result is the match list
// of the first capturing segment, or of the last segment if none captures. A
// segment without matches aborts the evaluation with a *MatchError.
func (s *Selector) Match(t *tree.Tree) ([]tree.ID, error) {
	return s.match(t, nil)
}

// match is Match reporting the context and match counts of each evaluated segment
// to trace.
func (s *Selector) match(t *tree.Tree, trace func(i, contexts, matches int)) ([]tree.ID, error) {
	contexts, captured := []tree.ID{t.Root()}, []tree.ID(nil)
	for i, seg := range s.Segments {
		matches := seg.search(t, contexts)
		if trace != nil {
			trace(i, len(contexts), len(matches))
		}
		if seg.Capture && captured == nil {
			captured = matches
		}
		if len(matches) == 0 {
			return nil, &MatchError{s.Raw, seg.Offset, i, seg.Raw, len(contexts)}
		}
		contexts = matches
	}
	if captured != nil {
		return captured, nil
	}
	return contexts, nil
}

// search returns the union of the matches below each context, deduplicated in first
// seen order.
func (s *Segment) search(t *tree.Tree, contexts []tree.ID) []tree.ID {
	if e, ok := s.Engine.(*IndexEngine); ok {
		return e.selectIndex(contexts)
	}
	seen, out := map[tree.ID]bool{}, []tree.ID{}
	for _, ctx := range contexts {
		for _, id := range search(s.Engine, t, ctx) {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}

// First returns the first node matched by s in t.
func First(s *Selector, t *tree.Tree) (tree.ID, error) {
	ids, err := s.Match(t)
	if err != nil {
		return tree.None, err
	}
	return ids[0], nil
}

// All returns all nodes matched by s in t. Unlike Match, a last segment without
// matches yields an empty result; failures of earlier segments are still errors.
func All(s *Selector, t *tree.Tree) ([]tree.ID, error) {
	return all(s, t, nil)
}

func all(s *Selector, t *tree.Tree, trace func(i, contexts, matches int)) ([]tree.ID, error) {
	ids, err := s.match(t, trace)
	if me := (*MatchError)(nil); errors.As(err, &me) && me.Segment == len(s.Segments)-1 {
		return []tree.ID{}, nil
	}
	return ids, err
}
