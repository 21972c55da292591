// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"maps"
	"slices"

	"github.com/charmbracelet/glamour"
)

const (
	DocRootNotFoundId Id = iota + 1
	ConfigLoadFailedId
	BuildDirUnwritableId
	NoExamplesFoundId
	ExamplesFailedId
	SetupFailedId
	InvalidDirectiveId
	WatchFailedId
)

type (
	Id int

	MarkdownMsg string

	HttpLink string

	// Issue is a Markdown help page explaining a class of failure.
	Issue struct {
		id       Id
		name     string // slug used on the command line
		mdMsg    MarkdownMsg
		docLinks []HttpLink
	}
)

func (i *Issue) Id() Id {
	return i.id
}

// Name returns the slug the issue is looked up by.
func (i *Issue) Name() string {
	return i.name
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

// Render formats the page for a terminal with the given glamour style
// ("dark", "light", "notty" or a path to a JSON style).
func (i *Issue) Render(stylePath string) (string, error) {
	md := string(i.mdMsg)
	if len(i.docLinks) > 0 {
		md += "\n\n## See also\n"
		for _, link := range i.docLinks {
			md += "- <" + string(link) + ">\n"
		}
	}
	return render(md, stylePath)
}

var (
	render = glamour.Render

	docRootNotFoundIssue = &Issue{
		id:   DocRootNotFoundId,
		name: "doc-root-not-found",
		mdMsg: `
# No documentation tree found

docnose looks for a directory holding your Markdown sources. By default it
uses ` + "`docs`" + ` below the current directory.

## Things you can try
- Point docnose at the tree explicitly:
~~~
$ docnose run --doc-dir path/to/docs
~~~
- Or export ` + "`DOCNOSE_DOC_DIR`" + ` in your shell profile.`,
		docLinks: []HttpLink{"https://github.com/invowk/docnose#layout"},
	}

	configLoadFailedIssue = &Issue{
		id:   ConfigLoadFailedId,
		name: "config-load-failed",
		mdMsg: `
# The doc-tree configuration could not be loaded

` + "`conf.cue`" + ` is validated against a schema before any example runs.

## Recognised keys
~~~cue
global_setup:    "export PATH=$PWD/bin:$PATH"
global_cleanup:  "rm -rf tmp"
default_flags:   ["+ELLIPSIS"]
source_suffixes: [".md", ".markdown"]
exclude:         ["drafts/**"]
default_group:   "default"
env_file:        ".env"
shell:           "bash"
~~~

## Things you can try
- Run ` + "`cue vet conf.cue`" + ` to see syntax errors with positions
- Remove keys docnose does not know about`,
		docLinks: []HttpLink{"https://github.com/invowk/docnose#configuration"},
	}

	buildDirUnwritableIssue = &Issue{
		id:   BuildDirUnwritableId,
		name: "build-dir-unwritable",
		mdMsg: `
# The build directory could not be prepared

Before collecting documents docnose creates ` + "`doctest`" + ` and
` + "`doctrees`" + ` below the build directory. If either cannot be created the
run is aborted.

## Things you can try
- Check that no plain file is in the way of those directories
- Choose another location with ` + "`--build-dir`" + ``,
	}

	noExamplesFoundIssue = &Issue{
		id:   NoExamplesFoundId,
		name: "no-examples-found",
		mdMsg: `
# No examples were collected

Only fenced blocks tagged ` + "`doctest`" + `, ` + "`testcode`" + ` or
` + "`testoutput`" + ` are collected.

## Example
~~~~markdown
~~~doctest
$ echo hello
hello
~~~
~~~~

## Things you can try
- Run ` + "`docnose list --verbose`" + ` to see skipped blocks and why`,
	}

	examplesFailedIssue = &Issue{
		id:   ExamplesFailedId,
		name: "examples-failed",
		mdMsg: `
# Some documented examples did not behave as written

Each failure shows the example, the expected output and what the shell
actually printed.

## Things you can try
- Rerun a single case with the printed ` + "`--run`" + ` pattern
- Relax the comparison with a flag, e.g. ` + "`# doctest: +ELLIPSIS`" + `
- Use ` + "`+NORMALIZE_WHITESPACE`" + ` for output whose spacing varies`,
	}

	setupFailedIssue = &Issue{
		id:   SetupFailedId,
		name: "setup-failed",
		mdMsg: `
# A setup snippet failed

Setup snippets (` + "`testsetup`" + ` blocks and ` + "`global_setup`" + `) run before
every case of their group. When one fails, the case is reported as failed
and its cleanup still runs.

## Things you can try
- Make setup idempotent; it runs once per case, not once per group`,
	}

	invalidDirectiveIssue = &Issue{
		id:   InvalidDirectiveId,
		name: "invalid-directive",
		mdMsg: `
# A block directive could not be understood

Directives live in the fence info string:

~~~~markdown
~~~doctest group=install options=+ELLIPSIS,-NORMALIZE_WHITESPACE
~~~~

Every option needs a leading ` + "`+`" + ` or ` + "`-`" + `.`,
	}

	watchFailedIssue = &Issue{
		id:   WatchFailedId,
		name: "watch-failed",
		mdMsg: `
# Watching the documentation tree failed

## Things you can try
- Raise the inotify watch limit (` + "`fs.inotify.max_user_watches`" + `)
- Exclude large generated directories in ` + "`conf.cue`" + ``,
	}

	issues = map[Id]*Issue{
		docRootNotFoundIssue.Id():    docRootNotFoundIssue,
		configLoadFailedIssue.Id():   configLoadFailedIssue,
		buildDirUnwritableIssue.Id(): buildDirUnwritableIssue,
		noExamplesFoundIssue.Id():    noExamplesFoundIssue,
		examplesFailedIssue.Id():     examplesFailedIssue,
		setupFailedIssue.Id():        setupFailedIssue,
		invalidDirectiveIssue.Id():   invalidDirectiveIssue,
		watchFailedIssue.Id():        watchFailedIssue,
	}
)

// Values returns every issue ordered by Id.
func Values() []*Issue {
	return slices.SortedFunc(maps.Values(issues), func(a, b *Issue) int {
		return int(a.id) - int(b.id)
	})
}

func Get(id Id) *Issue {
	return issues[id]
}

// Lookup finds an issue by its slug.
func Lookup(name string) *Issue {
	for _, i := range issues {
		if i.name == name {
			return i
		}
	}
	return nil
}
