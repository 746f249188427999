package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/niklasfasching/locate/tree"
)

func open(t *testing.T, path string) *Store {
	t.Helper()
	s, err := Open(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func snapshot(text string) *tree.Node {
	return &tree.Node{Type: "Root", Children: []*tree.Node{
		{Type: "javax.swing.JFrame", Children: []*tree.Node{
			{Type: "javax.swing.JButton", Attrs: map[string]string{"name": "ok", "text": text}, States: []string{"enabled"}},
		}},
	}}
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	s := open(t, filepath.Join(t.TempDir(), "locate.db"))
	now := time.Unix(1700000000, 0)
	s.now = func() time.Time { return now }
	if err := s.Save(ctx, "b", snapshot("OK")); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, "a", &tree.Node{Type: "Root"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, "b", snapshot("Save")); err != nil {
		t.Fatal(err)
	}
	n, err := s.Load(ctx, "b")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(snapshot("Save"), n); diff != "" {
		t.Errorf("(-expected +got):\n%s", diff)
	}
	infos, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	expected := []Info{{"a", 1, now}, {"b", 3, now}}
	if !cmp.Equal(infos, expected) {
		t.Errorf("got %v, expected %v", infos, expected)
	}
	if err := s.Delete(ctx, "b"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Load(ctx, "b"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load: expected not found, got %v", err)
	}
	if err := s.Delete(ctx, "b"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete: expected not found, got %v", err)
	}
	if err := s.Save(ctx, "", snapshot("OK")); err == nil {
		t.Errorf("Save: expected error for empty name")
	}
}

func TestMigrate(t *testing.T) {
	ctx, path := context.Background(), filepath.Join(t.TempDir(), "locate.db")
	s := open(t, path)
	if err := s.Save(ctx, "a", snapshot("OK")); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s = open(t, path)
	if _, err := s.Load(ctx, "a"); err != nil {
		t.Errorf("expected snapshot to survive reopening: %s", err)
	}
	if err := s.migrate(ctx, Migrations[:1]); !isMigrateError(err) {
		t.Errorf("expected error for removed migration, got %v", err)
	}
	if err := s.migrate(ctx, []string{Migrations[0], "CREATE INDEX x ON snapshots (name)"}); !isMigrateError(err) {
		t.Errorf("expected error for changed migration, got %v", err)
	}
	if err := s.migrate(ctx, append(Migrations, "ALTER TABLE snapshots ADD COLUMN note TEXT")); err != nil {
		t.Errorf("expected new migration to be applied: %s", err)
	}
}

func isMigrateError(err error) bool {
	var me *MigrateError
	return errors.As(err, &me)
}

func TestTreeSize(t *testing.T) {
	if n, err := treeSize(`{"type": "A", "children": [{"type": "B"}, {"type": "C"}]}`); n != 3 || err != nil {
		t.Errorf("got %d %v", n, err)
	}
	if _, err := treeSize("nope"); err == nil {
		t.Errorf("expected error")
	}
}
