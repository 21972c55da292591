// SPDX-License-Identifier: MPL-2.0

package collect

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

type (
	// rawBlock is one directive fence as found in the source, before groups
	// are assembled. It is what the doctree cache stores.
	rawBlock struct {
		Kind    string   `json:"kind"`
		Groups  []string `json:"groups,omitempty"`
		Options string   `json:"options,omitempty"`
		Skip    bool     `json:"skip,omitempty"`
		Code    string   `json:"code"`
		Line    int      `json:"line"`
	}

	// rawProblem is a fence that looked like a directive but was malformed.
	rawProblem struct {
		Line    int    `json:"line"`
		Message string `json:"message"`
	}
)

var markdown = goldmark.New()

// extractBlocks returns the directive fences of a Markdown body in document order.
func extractBlocks(src []byte) ([]rawBlock, []rawProblem) {
	root := markdown.Parser().Parse(text.NewReader(src))

	var blocks []rawBlock
	var problems []rawProblem
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fence, ok := n.(*ast.FencedCodeBlock)
		if !ok || fence.Info == nil {
			return ast.WalkContinue, nil
		}

		info := string(fence.Info.Segment.Value(src))
		d, isDirective, err := parseDirective(info)
		if !isDirective {
			return ast.WalkSkipChildren, nil
		}
		line := fenceContentLine(src, fence)
		if err != nil {
			problems = append(problems, rawProblem{Line: line, Message: err.Error()})
			return ast.WalkSkipChildren, nil
		}

		blocks = append(blocks, rawBlock{
			Kind:    d.Kind,
			Groups:  d.Groups,
			Options: d.Options,
			Skip:    d.Skip,
			Code:    fenceContent(src, fence),
			Line:    line,
		})
		return ast.WalkSkipChildren, nil
	})
	return blocks, problems
}

func fenceContent(src []byte, fence *ast.FencedCodeBlock) string {
	var b strings.Builder
	lines := fence.Lines()
	for i := range lines.Len() {
		seg := lines.At(i)
		b.Write(seg.Value(src))
	}
	return b.String()
}

// fenceContentLine returns the document line of the first content line.
func fenceContentLine(src []byte, fence *ast.FencedCodeBlock) int {
	if lines := fence.Lines(); lines.Len() > 0 {
		return lineAt(src, lines.At(0).Start)
	}
	return lineAt(src, fence.Info.Segment.Start) + 1
}

func lineAt(src []byte, offset int) int {
	return bytes.Count(src[:offset], []byte("\n")) + 1
}
