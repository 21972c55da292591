// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/invowk/docnose/internal/issue"
)

func newExplainCommand(app *App) *cobra.Command {
	var style string
	c := &cobra.Command{
		Use:   "explain [issue]",
		Short: "Explain a docnose problem and how to fix it",
		Long: `Explain a docnose problem and how to fix it.

Without an argument, the known issue names are listed.`,
		Args: cobra.MaximumNArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			var names []string
			for _, i := range issue.Values() {
				names = append(names, i.Name())
			}
			return names, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(_ *cobra.Command, args []string) error {
			if len(args) == 0 {
				for _, i := range issue.Values() {
					fmt.Fprintln(app.stdout, CmdStyle.Render(i.Name()))
				}
				return nil
			}
			i := issue.Lookup(args[0])
			if i == nil {
				return fmt.Errorf("unknown issue %q; run 'docnose explain' to list them", args[0])
			}
			out, err := i.Render(style)
			if err != nil {
				return fmt.Errorf("render issue: %w", err)
			}
			_, err = io.WriteString(app.stdout, out)
			return err
		},
	}
	c.Flags().StringVar(&style, "style", "auto", "glamour style")
	return c
}
