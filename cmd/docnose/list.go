// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/invowk/docnose/internal/discovery"
	"github.com/invowk/docnose/internal/harness"
)

const defaultRenderWidth = 120

type listFlagValues struct {
	render bool
	style  string
	width  int
}

func newListCommand(app *App) *cobra.Command {
	flags := &listFlagValues{}
	c := &cobra.Command{
		Use:   "list [paths...]",
		Short: "List the cases of every documentation tree found under paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listCases(cmd, app, flags, args)
		},
	}
	c.Flags().BoolVar(&flags.render, "render", false, "render the listing as a markdown table")
	c.Flags().StringVar(&flags.style, "style", "auto", "glamour style used with --render")
	c.Flags().IntVar(&flags.width, "width", defaultRenderWidth, "wrap width used with --render")
	return c
}

func listCases(cmd *cobra.Command, app *App, flags *listFlagValues, args []string) error {
	ctx := cmd.Context()
	d := app.discovery(false)
	trees, err := locate(ctx, d, args)
	if err != nil {
		fmt.Fprintln(app.stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, false))
		return &ExitError{Code: 2, Err: err}
	}

	var md strings.Builder
	for _, dirs := range trees {
		tree, err := d.Load(ctx, dirs)
		if err != nil {
			fmt.Fprintln(app.stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, false))
			return &ExitError{Code: 2, Err: err}
		}
		printDiagnostics(app, tree.Diagnostics)
		writeCaseTable(&md, tree)
		tree.Close()
	}

	if !flags.render {
		_, err := io.WriteString(app.stdout, md.String())
		return err
	}
	out, err := renderMarkdown(md.String(), flags.style, flags.width)
	if err != nil {
		return fmt.Errorf("render listing: %w", err)
	}
	_, err = io.WriteString(app.stdout, out)
	return err
}

// renderMarkdown renders md with the given glamour style. Tables shrink their
// columns to fit width, so it must be wide enough for the case IDs.
func renderMarkdown(md, style string, width int) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithStylePath(style)}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	renderer, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", err
	}
	return renderer.Render(md)
}

// writeCaseTable appends one markdown table per tree, one row per case.
func writeCaseTable(b *strings.Builder, tree *discovery.Tree) {
	fmt.Fprintf(b, "## %s\n\n", tree.Dirs.DocRoot)
	if tree.CaseCount() == 0 {
		b.WriteString("No cases.\n\n")
		return
	}
	b.WriteString("| case | mode | examples | source |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, s := range tree.Suites {
		for _, c := range s.AdaptedCases() {
			id := harness.TestID{Suite: s.Name(), Case: c.ID.String()}
			line := 0
			if len(c.Examples) > 0 {
				line = c.Examples[0].Line
			}
			fmt.Fprintf(b, "| `%s` | %s | %d | %s:%d |\n", id, c.Mode, len(c.Examples), relSource(tree.Dirs.DocRoot, c.Filename), line)
		}
	}
	b.WriteString("\n")
}

// relSource shortens a document path to its doc-root relative form.
func relSource(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}
