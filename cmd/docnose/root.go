// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/invowk/docnose/internal/discovery"
	"github.com/invowk/docnose/internal/issue"
)

const envPrefix = "DOCNOSE"

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

type (
	// App holds what every command shares: output streams, the viper
	// instance flags are bound to and the process environment.
	App struct {
		stdout  io.Writer
		stderr  io.Writer
		v       *viper.Viper
		environ []string
	}

	rootFlagValues struct {
		verbose  bool
		docDir   string
		confDir  string
		buildDir string
	}
)

// NewApp returns an App writing to the given streams. A nil environ means
// os.Environ().
func NewApp(stdout, stderr io.Writer, environ []string) *App {
	if environ == nil {
		environ = os.Environ()
	}
	return &App{stdout: stdout, stderr: stderr, v: viper.New(), environ: environ}
}

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlagValues{}
	root := &cobra.Command{
		Use:   "docnose",
		Short: "Run the shell examples embedded in documentation",
		Long: TitleStyle.Render("docnose") + SubtitleStyle.Render(" - doctests for shell documentation") + `

docnose finds documentation trees (a doc directory with a build directory
inside it), collects the shell examples in their markdown files and runs
them, one suite per document and group.

` + SubtitleStyle.Render("Examples:") + `
  docnose run                   Run every tree below the current directory
  docnose run --run 'install'   Run only cases whose ID matches
  docnose run --watch docs      Rerun when a document changes
  docnose list --render         Show the collected cases`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	pf.StringVar(&flags.docDir, "doc-dir", discovery.DefaultDocDir, "documentation directory, relative to each searched path")
	pf.StringVar(&flags.confDir, "conf-dir", "", "directory holding conf.cue (default is the doc dir)")
	pf.StringVar(&flags.buildDir, "build-dir", discovery.DefaultBuildDir, "build output directory, relative to the doc dir")

	app.v.SetEnvPrefix(envPrefix)
	app.v.AutomaticEnv()
	for key, env := range map[string]string{
		"doc_dir":   discovery.EnvDocDir,
		"conf_dir":  discovery.EnvConfDir,
		"build_dir": discovery.EnvBuildDir,
	} {
		_ = app.v.BindEnv(key, env)
	}
	_ = app.v.BindPFlag("doc_dir", pf.Lookup("doc-dir"))
	_ = app.v.BindPFlag("conf_dir", pf.Lookup("conf-dir"))
	_ = app.v.BindPFlag("build_dir", pf.Lookup("build-dir"))
	_ = app.v.BindPFlag("verbose", pf.Lookup("verbose"))

	root.SetOut(app.stdout)
	root.SetErr(app.stderr)
	root.AddCommand(
		newRunCommand(app),
		newListCommand(app),
		newExplainCommand(app),
	)
	return root
}

// discoveryOptions reads the doc tree descriptor, flags winning over the
// environment.
func (a *App) discoveryOptions() discovery.Options {
	return discovery.Options{
		DocDir:   a.v.GetString("doc_dir"),
		ConfDir:  a.v.GetString("conf_dir"),
		BuildDir: a.v.GetString("build_dir"),
	}
}

// logger returns a slog logger backed by charm log on stderr.
func (a *App) logger(debug bool) *slog.Logger {
	level := log.WarnLevel
	if debug || a.v.GetBool("verbose") {
		level = log.DebugLevel
	}
	handler := log.NewWithOptions(a.stderr, log.Options{
		Prefix: "docnose",
		Level:  level,
	})
	return slog.New(handler)
}

func (a *App) discovery(debug bool) *discovery.Discovery {
	return discovery.New(a.discoveryOptions(),
		discovery.WithEnviron(a.environ),
		discovery.WithLogger(a.logger(debug)),
	)
}

func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI and exits the process with its status.
func Execute() {
	app := NewApp(os.Stdout, os.Stderr, nil)
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// formatErrorForDisplay uses ActionableError's own formatting when present.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}
