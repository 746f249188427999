package locator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/niklasfasching/locate/tree"
	"github.com/niklasfasching/locate/util"
)

type logs struct {
	lines []string
	sync.Mutex
}

func (l *logs) log(lvl util.Lvl, msg string) {
	l.Lock()
	defer l.Unlock()
	l.lines = append(l.lines, lvl.String()+" "+msg)
}

func (l *logs) contains(s string) bool {
	l.Lock()
	defer l.Unlock()
	for _, line := range l.lines {
		if strings.Contains(line, s) {
			return true
		}
	}
	return false
}

func TestFinder(t *testing.T) {
	f, err := New(Options{})
	if err != nil {
		t.Fatal(err)
	}
	l := &logs{}
	ctx := util.WithLogger(context.Background(), l.log)
	tr := tree.New(fixture())
	id, err := f.Find(ctx, tr, "JPanel >> JButton")
	if err != nil || names(tr, []tree.ID{id})[0] != "ok" {
		t.Fatalf("Find: got %v %v", id, err)
	}
	ids, err := f.FindAll(ctx, tr, "JPanel >> JButton")
	if err != nil || !cmp.Equal(names(tr, ids), []string{"ok", "cancel"}) {
		t.Errorf("FindAll: got %v %v", names(tr, ids), err)
	}
	if !l.contains(`DEBUG compile "JPanel >> JButton": cached`) {
		t.Errorf("expected second compile to be cached: %q", l.lines)
	}
	if !l.contains(`segment 1 "JButton": 3 contexts, 2 matches`) {
		t.Errorf("expected segment trace: %q", l.lines)
	}
	if ids, err := f.FindAll(ctx, tr, "JPanel >> JSlider"); err != nil || len(ids) != 0 {
		t.Errorf("FindAll: expected empty result, got %v %v", ids, err)
	}
	if _, err := f.Find(ctx, tr, "JPanel >> JSlider"); !errors.Is(err, ErrNoMatch) {
		t.Errorf("Find: expected no match, got %v", err)
	}
	if _, err := f.Find(ctx, tr, "JPanel >>"); err == nil {
		t.Errorf("Find: expected compile error")
	}
	if _, err := New(Options{CacheSize: -1}); err == nil {
		t.Errorf("New: expected error for negative cache size")
	}
}

func TestFinderFallback(t *testing.T) {
	f, err := New(Options{UnknownEngine: Fallback})
	if err != nil {
		t.Fatal(err)
	}
	l := &logs{}
	ctx := util.WithLogger(context.Background(), l.log)
	tr := tree.New(fixture())
	ids, err := f.FindAll(ctx, tr, "widget=JButton")
	if err != nil || !cmp.Equal(names(tr, ids), []string{"ok", "cancel"}) {
		t.Errorf("got %v %v", names(tr, ids), err)
	}
	if !l.contains(`WARN compile "widget=JButton": segment 0: unknown engine "widget", using css`) {
		t.Errorf("expected warning: %q", l.lines)
	}
}

func TestFinderConcurrent(t *testing.T) {
	f, err := New(Options{CacheSize: 2})
	if err != nil {
		t.Fatal(err)
	}
	tr := tree.New(fixture())
	locators := []string{"JButton", "J*Button >> index=-1", "row[index=1]", "JButton:enabled"}
	expected := [][]string{{"ok", "cancel"}, {"r1"}, {"row1"}, {"ok"}}
	wg := sync.WaitGroup{}
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			j := i % len(locators)
			ids, err := f.FindAll(context.Background(), tr, locators[j])
			if err != nil || !cmp.Equal(names(tr, ids), expected[j]) {
				t.Errorf("%q: got %v %v", locators[j], names(tr, ids), err)
			}
		}()
	}
	wg.Wait()
	if n := f.cache.Len(); n > 2 {
		t.Errorf("cache exceeds its size: %d", n)
	}
}

func TestLocate(t *testing.T) {
	f, err := New(DefaultOptions)
	if err != nil {
		t.Fatal(err)
	}
	root := fixture()
	nodes, err := f.Locate(context.Background(), root, "JPanel[name=form] >> text='OK'")
	if err != nil {
		t.Fatal(err)
	}
	if ok := root.Children[0].Children[0].Children[2]; len(nodes) != 1 || nodes[0] != ok {
		t.Errorf("expected the caller's node, got %#v", nodes)
	}
}
