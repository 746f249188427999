// locate compiles cascaded locators and evaluates them against recorded component
// trees.
//
// Usage:
//
//	locate parse <locator>...
//	locate check <locator>...
//	locate find (--snapshot <file> | --name <name>) [--all] [--retries n] <locator>...
//	locate snapshot save <name> <file>
//	locate snapshot list
//	locate snapshot show [--format yaml|json|html] <name>
//	locate snapshot delete <name>
//
// Options are read from LOCATE_* environment variables (LOCATE_UnknownEngine,
// LOCATE_IdentityAttribute, LOCATE_TextAttributes, ...) and may be overridden by flags.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/niklasfasching/locate/locator"
	"github.com/niklasfasching/locate/util"
	"github.com/spf13/cobra"
)

const envPrefix = "LOCATE_"

type app struct {
	ctx     context.Context
	options locator.Options
	finder  *locator.Finder
	flags   struct {
		logLevel      string
		unknownEngine string
		identity      string
		db            string
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:           "locate",
		Short:         "Compile and evaluate cascaded UI locators",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: a.setup,
	}
	f := cmd.PersistentFlags()
	f.StringVar(&a.flags.logLevel, "log-level", "WARN", "DEBUG, INFO, WARN or ERROR")
	f.StringVar(&a.flags.unknownEngine, "unknown-engine", "", "strict or fallback")
	f.StringVar(&a.flags.identity, "identity", "", "attribute referred to by #id")
	f.StringVar(&a.flags.db, "db", "locate.db", "snapshot database path")
	cmd.AddCommand(newParseCmd(a), newCheckCmd(a), newFindCmd(a), newSnapshotCmd(a))
	return cmd
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	lvl, err := util.ParseLvl(a.flags.logLevel)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a.ctx = util.WithLogger(ctx, util.WithLvl(lvl, util.Writer(cmd.ErrOrStderr())))
	a.options = locator.DefaultOptions
	if err := util.LoadConfig(envPrefix, &a.options); err != nil {
		return fmt.Errorf("failed to load options: %w", err)
	}
	if a.flags.unknownEngine != "" {
		a.options.UnknownEngine = locator.Policy(a.flags.unknownEngine)
	}
	if a.flags.identity != "" {
		a.options.IdentityAttribute = a.flags.identity
	}
	a.finder, err = locator.New(a.options)
	return err
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
