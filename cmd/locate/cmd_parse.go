package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/niklasfasching/locate/locator"
	"github.com/spf13/cobra"
)

func newParseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <locator>...",
		Short: "Print the canonical form and segments of locators",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, l := range args {
				s, err := a.finder.Compile(a.ctx, l)
				if err != nil {
					return fmt.Errorf("%s", locator.Caret(err))
				}
				printSelector(cmd.OutOrStdout(), s)
			}
			return nil
		},
	}
}

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check <locator>...",
		Short: "Validate locators and print diagnostics for invalid ones",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			invalid := 0
			for _, l := range args {
				if _, err := a.finder.Compile(a.ctx, l); err != nil {
					invalid++
					fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n", locator.Caret(err))
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "ok %s\n", l)
				}
			}
			if invalid != 0 {
				return fmt.Errorf("%d of %d locators invalid", invalid, len(args))
			}
			return nil
		},
	}
}

func printSelector(w io.Writer, s *locator.Selector) {
	fmt.Fprintln(w, s)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	capture := s.CaptureIndex()
	for i, seg := range s.Segments {
		mark := ""
		if i == capture {
			mark = "*"
		} else if seg.Capture {
			mark = "(*)"
		}
		fmt.Fprintf(tw, "  %d\t%s\t%s\t%s\n", i, mark, seg.Engine.Name(), strconv.Quote(seg.Raw))
	}
	tw.Flush()
}
