package main

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/niklasfasching/locate/locator"
	"github.com/niklasfasching/locate/store"
	"github.com/niklasfasching/locate/tree"
	"github.com/niklasfasching/locate/util"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type findFlags struct {
	snapshot string
	name     string
	all      bool
	retries  int
	interval time.Duration
}

type result struct {
	ids []tree.ID
	err error
}

func newFindCmd(a *app) *cobra.Command {
	ff := &findFlags{}
	cmd := &cobra.Command{
		Use:   "find (--snapshot <file> | --name <name>) <locator>...",
		Short: "Evaluate locators against a snapshot",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (ff.snapshot == "") == (ff.name == "") {
				return errors.New("exactly one of --snapshot and --name is required")
			}
			t, results, err := a.find(ff, args)
			if err != nil {
				return err
			}
			failed, w := 0, cmd.OutOrStdout()
			for i, r := range results {
				if r.err != nil {
					failed++
					fmt.Fprintf(w, "%s\n\n", locator.Caret(r.err))
					continue
				}
				fmt.Fprintf(w, "%s: %d matches\n", args[i], len(r.ids))
				for _, id := range r.ids {
					v, _ := t.Attr(id, a.options.IdentityAttribute)
					fmt.Fprintf(w, "  %s\t%s\t%s\n", t.Path(id), t.Type(id), v)
				}
			}
			if failed != 0 {
				return fmt.Errorf("%d of %d locators failed", failed, len(args))
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&ff.snapshot, "snapshot", "s", "", "snapshot file (.json, .yaml or .html)")
	f.StringVarP(&ff.name, "name", "n", "", "name of a snapshot in the database")
	f.BoolVarP(&ff.all, "all", "a", false, "return all matches; an empty last segment is not an error")
	f.IntVar(&ff.retries, "retries", 0, "reload the snapshot and retry while a locator does not match")
	f.DurationVar(&ff.interval, "interval", time.Second, "delay between retries")
	return cmd
}

// find loads the snapshot and evaluates the locators. Locators that do not match are
// retried with a freshly loaded snapshot, since it may be rewritten by a recorder.
func (a *app) find(ff *findFlags, locators []string) (*tree.Tree, []result, error) {
	var t *tree.Tree
	var results []result
	_, err := util.Retry(a.ctx, func(ctx context.Context) (struct{}, error) {
		root, err := a.load(ctx, ff)
		if results = nil; err != nil {
			return struct{}{}, err
		}
		t = tree.New(root)
		results = a.evaluate(ctx, t, locators, ff.all)
		for _, r := range results {
			if r.err != nil {
				return struct{}{}, r.err
			}
		}
		return struct{}{}, nil
	}, func(err error) bool { return errors.Is(err, locator.ErrNoMatch) }, ff.retries, ff.interval)
	if err != nil && results == nil {
		return nil, nil, err
	}
	return t, results, nil
}

func (a *app) evaluate(ctx context.Context, t *tree.Tree, locators []string, all bool) []result {
	results := make([]result, len(locators))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, l := range locators {
		g.Go(func() error {
			if all {
				results[i].ids, results[i].err = a.finder.FindAll(ctx, t, l)
			} else if id, err := a.finder.Find(ctx, t, l); err != nil {
				results[i].err = err
			} else {
				results[i].ids = []tree.ID{id}
			}
			return nil
		})
	}
	g.Wait()
	return results
}

func (a *app) load(ctx context.Context, ff *findFlags) (*tree.Node, error) {
	if ff.snapshot != "" {
		return tree.DecodeFile(ff.snapshot)
	}
	s, err := store.Open(ctx, a.flags.db)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return s.Load(ctx, ff.name)
}
