// SPDX-License-Identifier: MPL-2.0

package collect

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/invowk/docnose/internal/diagnostic"
)

type (
	// Options configures a Collector.
	Options struct {
		// DocRoot is the directory documents are searched in.
		DocRoot string
		// BuildDir enables the doctree cache under BuildDir/doctrees when set.
		BuildDir string
		// SourceSuffixes lists the document extensions; defaults to ".md".
		SourceSuffixes []string
		// Exclude holds doublestar patterns, relative to DocRoot, of paths to skip.
		Exclude []string
		// DefaultGroup names the group of fences that name none; defaults to "default".
		DefaultGroup string
		// GlobalSetup runs before every group's own setup snippets.
		GlobalSetup string
		// GlobalCleanup runs after every group's own cleanup snippets.
		GlobalCleanup string
		// Logger receives debug output; defaults to slog.Default().
		Logger *slog.Logger
	}

	// Result is the outcome of collecting a documentation tree.
	Result struct {
		// Documents are sorted by name. Documents without groups are omitted.
		Documents   []*Document
		Diagnostics []diagnostic.Diagnostic
	}

	// Collector extracts test groups from a documentation tree.
	Collector struct {
		opts  Options
		root  string
		cache *doctreeCache
	}
)

// New returns a collector for opts.
func New(opts Options) (*Collector, error) {
	if len(opts.SourceSuffixes) == 0 {
		opts.SourceSuffixes = []string{".md"}
	}
	if opts.DefaultGroup == "" {
		opts.DefaultGroup = DefaultGroup
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	root, err := filepath.Abs(opts.DocRoot)
	if err != nil {
		return nil, fmt.Errorf("resolve doc root: %w", err)
	}
	c := &Collector{opts: opts, root: root}
	if opts.BuildDir != "" {
		c.cache = &doctreeCache{dir: filepath.Join(opts.BuildDir, DoctreeDir)}
	}
	return c, nil
}

// Collect walks the doc root. Unreadable or malformed documents become
// diagnostics; only a failure to walk the tree is returned as an error.
func (c *Collector) Collect(ctx context.Context) (*Result, error) {
	paths, err := listDocuments(c.root, c.opts.BuildDir, c.opts.SourceSuffixes, c.opts.Exclude)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, diags := c.CollectFile(path)
		res.Diagnostics = append(res.Diagnostics, diags...)
		if doc != nil && len(doc.Groups) > 0 {
			res.Documents = append(res.Documents, doc)
		}
	}
	return res, nil
}

// CollectFile extracts the groups of a single document. The returned document
// is nil when the file could not be read or opts out through front matter.
func (c *Collector) CollectFile(path string) (*Document, []diagnostic.Diagnostic) {
	name := documentName(c.root, path)
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, []diagnostic.Diagnostic{
			diagnostic.New(diagnostic.CodeDocumentUnreadable, path, 0, "cannot read document").WithCause(err),
		}
	}

	raw, diags := c.parse(name, path, src)
	if raw.Meta.Skip {
		c.opts.Logger.Debug("document skipped by front matter", "document", name)
		return nil, diags
	}
	for _, p := range raw.Problems {
		diags = append(diags, diagnostic.New(diagnostic.CodeDirectiveInvalid, path, p.Line, "%s", p.Message))
	}

	defaultGroup := c.opts.DefaultGroup
	if raw.Meta.Group != "" {
		defaultGroup = raw.Meta.Group
	}
	groups, groupDiags := assembleGroups(path, defaultGroup, raw.Blocks, c.opts.GlobalSetup, c.opts.GlobalCleanup)
	diags = append(diags, groupDiags...)

	return &Document{Name: name, Path: path, Groups: groups}, diags
}

// parse returns the raw form of a document, from the cache when possible.
func (c *Collector) parse(name, path string, src []byte) (*rawDocument, []diagnostic.Diagnostic) {
	var diags []diagnostic.Diagnostic
	hash := contentHash(src)

	if c.cache != nil {
		cached, err := c.cache.load(name, hash)
		if err != nil {
			diags = append(diags, diagnostic.New(diagnostic.CodeCacheDiscarded, path, 0,
				"doctree cache entry discarded").WithCause(err))
		}
		if cached != nil {
			c.opts.Logger.Debug("doctree cache hit", "document", name)
			return cached, diags
		}
	}

	meta, body, err := splitFrontMatter(src)
	if err != nil {
		diags = append(diags, diagnostic.New(diagnostic.CodeFrontMatterInvalid, path, 1,
			"front matter ignored").WithCause(err))
	}
	blocks, problems := extractBlocks(body)
	raw := &rawDocument{
		Version:  doctreeVersion,
		Hash:     hash,
		Name:     name,
		Meta:     meta,
		Blocks:   blocks,
		Problems: problems,
	}
	if raw.Blocks == nil {
		raw.Blocks = []rawBlock{}
	}

	if c.cache != nil {
		if err := c.cache.store(raw); err != nil {
			c.opts.Logger.Warn("cannot write doctree cache", "document", name, "error", err)
		}
	}
	return raw, diags
}
