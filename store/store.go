// Package store keeps named tree snapshots in sqlite so locators can be replayed
// against recorded component trees.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/niklasfasching/locate/tree"
)

const driver = "sqlite3-locate"

type Store struct {
	stmts map[string]*sql.Stmt
	now   func() time.Time
	*sql.DB
}

type Info struct {
	Name  string
	Nodes int
	Saved time.Time
}

// MigrateError is returned by Open if the database was created with migrations
// that differ from the ones known to this version.
type MigrateError struct {
	Reason string
}

var ErrNotFound = errors.New("snapshot not found")

var Migrations = []string{
	`CREATE TABLE snapshots (name TEXT PRIMARY KEY, body TEXT NOT NULL, saved INTEGER NOT NULL)`,
	`CREATE INDEX snapshots_saved ON snapshots (saved)`,
}

var queries = map[string]string{
	"save":   `INSERT OR REPLACE INTO snapshots (name, body, saved) VALUES (?, ?, ?)`,
	"load":   `SELECT body FROM snapshots WHERE name = ?`,
	"list":   `SELECT name, tree_size(body), saved FROM snapshots ORDER BY name`,
	"delete": `DELETE FROM snapshots WHERE name = ?`,
}

func init() {
	sql.Register(driver, &sqlite3.SQLiteDriver{ConnectHook: func(c *sqlite3.SQLiteConn) error {
		return c.RegisterFunc("tree_size", treeSize, true)
	}})
}

func (e *MigrateError) Error() string { return "failed to migrate: " + e.Reason }

// Open opens (and creates or migrates) the snapshot database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open(driver, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open: %w", err)
	}
	s := &Store{map[string]*sql.Stmt{}, time.Now, db}
	if err := s.migrate(ctx, Migrations); err != nil {
		db.Close()
		return nil, err
	}
	for k, q := range queries {
		stmt, err := db.PrepareContext(ctx, q)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to prepare %q: %w", k, err)
		}
		s.stmts[k] = stmt
	}
	return s, nil
}

func (s *Store) Save(ctx context.Context, name string, n *tree.Node) error {
	if name == "" {
		return errors.New("empty snapshot name")
	}
	bs, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal %q: %w", name, err)
	}
	if _, err := s.stmts["save"].ExecContext(ctx, name, string(bs), s.now().UnixNano()); err != nil {
		return fmt.Errorf("failed to save %q: %w", name, err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context, name string) (*tree.Node, error) {
	body := ""
	if err := s.stmts["load"].QueryRowContext(ctx, name).Scan(&body); errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%q: %w", name, ErrNotFound)
	} else if err != nil {
		return nil, fmt.Errorf("failed to load %q: %w", name, err)
	}
	n := &tree.Node{}
	if err := json.Unmarshal([]byte(body), n); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %q: %w", name, err)
	}
	return n, nil
}

func (s *Store) List(ctx context.Context) ([]Info, error) {
	rows, err := s.stmts["list"].QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list: %w", err)
	}
	defer rows.Close()
	var out []Info
	for rows.Next() {
		i, saved := Info{}, int64(0)
		if err := rows.Scan(&i.Name, &i.Nodes, &saved); err != nil {
			return nil, fmt.Errorf("failed to scan: %w", err)
		}
		i.Saved = time.Unix(0, saved)
		out = append(out, i)
	}
	return out, rows.Err()
}

func (s *Store) Delete(ctx context.Context, name string) error {
	r, err := s.stmts["delete"].ExecContext(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to delete %q: %w", name, err)
	} else if n, err := r.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	return nil
}

func (s *Store) Close() error {
	for _, stmt := range s.stmts {
		stmt.Close()
	}
	return s.DB.Close()
}

func (s *Store) migrate(ctx context.Context, migrations []string) error {
	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS _migrations (sql TEXT)`); err != nil {
		return fmt.Errorf("failed to create _migrations table: %w", err)
	}
	rows, err := tx.QueryContext(ctx, `SELECT sql FROM _migrations ORDER BY rowid`)
	if err != nil {
		return fmt.Errorf("failed to query _migrations: %w", err)
	}
	var applied []string
	for rows.Next() {
		stmt := ""
		if err := rows.Scan(&stmt); err != nil {
			rows.Close()
			return err
		}
		applied = append(applied, stmt)
	}
	if err := errors.Join(rows.Err(), rows.Close()); err != nil {
		return err
	}
	if len(applied) > len(migrations) {
		return &MigrateError{fmt.Sprintf("database has %d migrations, expected at most %d", len(applied), len(migrations))}
	}
	for i := range applied {
		if applied[i] != migrations[i] {
			return &MigrateError{fmt.Sprintf("migration %d differs: %q", i, applied[i])}
		}
	}
	for _, stmt := range migrations[len(applied):] {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply migration %q: %w", stmt, err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO _migrations (sql) VALUES (?)", stmt); err != nil {
			return fmt.Errorf("failed to record migration %q: %w", stmt, err)
		}
	}
	return tx.Commit()
}

// treeSize is the sql function tree_size(body): the number of nodes of a snapshot.
func treeSize(body string) (int, error) {
	n := &tree.Node{}
	if err := json.Unmarshal([]byte(body), n); err != nil {
		return 0, err
	}
	return tree.New(n).Len(), nil
}
