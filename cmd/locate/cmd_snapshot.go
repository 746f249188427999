package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/niklasfasching/locate/store"
	"github.com/niklasfasching/locate/tree"
	"github.com/spf13/cobra"
	"golang.org/x/net/html"
	"gopkg.in/yaml.v3"
)

func newSnapshotCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Manage recorded snapshots",
	}
	format := ""
	show := &cobra.Command{
		Use:   "show <name>",
		Short: "Print a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(s *store.Store) error {
				n, err := s.Load(a.ctx, args[0])
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				switch format {
				case "yaml":
					e := yaml.NewEncoder(w)
					e.SetIndent(2)
					return e.Encode(n)
				case "json":
					e := json.NewEncoder(w)
					e.SetIndent("", "  ")
					return e.Encode(n)
				case "html":
					if err := html.Render(w, tree.ToHTML(tree.New(n))); err != nil {
						return err
					}
					_, err := fmt.Fprintln(w)
					return err
				default:
					return fmt.Errorf("bad format: %q", format)
				}
			})
		},
	}
	show.Flags().StringVarP(&format, "format", "f", "yaml", "yaml, json or html")
	cmd.AddCommand(&cobra.Command{
		Use:   "save <name> <file>",
		Short: "Store the snapshot in file (.json, .yaml or .html) under name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := tree.DecodeFile(args[1])
			if err != nil {
				return err
			}
			return a.withStore(func(s *store.Store) error {
				if err := s.Save(a.ctx, args[0], n); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "saved %s (%d nodes)\n", args[0], tree.New(n).Len())
				return nil
			})
		},
	}, &cobra.Command{
		Use:   "list",
		Short: "List stored snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(s *store.Store) error {
				infos, err := s.List(a.ctx)
				if err != nil {
					return err
				}
				for _, i := range infos {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\t%s\n", i.Name, i.Nodes, i.Saved.Format(time.RFC3339))
				}
				return nil
			})
		},
	}, show, &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a stored snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(s *store.Store) error { return s.Delete(a.ctx, args[0]) })
		},
	})
	return cmd
}

func (a *app) withStore(f func(*store.Store) error) error {
	s, err := store.Open(a.ctx, a.flags.db)
	if err != nil {
		return err
	}
	defer s.Close()
	return f(s)
}
