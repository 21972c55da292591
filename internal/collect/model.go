// SPDX-License-Identifier: MPL-2.0

package collect

import "github.com/invowk/docnose/pkg/doctest"

// DefaultGroup is the group blocks belong to when their fence names none.
const DefaultGroup = "default"

// AllGroups addresses every group of a document.
const AllGroups = "*"

type (
	// Snippet is the text of one fenced block and where it came from.
	Snippet struct {
		Code string
		// Filename is the document path the snippet was read from.
		Filename string
		// Line is the 1-based document line of the first line of Code.
		Line int
		// Options are the block-level flags from the fence's options attribute.
		Options doctest.OptionFlags
	}

	// Block is one test unit of a group. It is either an *InterleavedBlock or
	// a *SplitBlock; the variant is fixed when the block is collected.
	Block interface {
		// FirstLine is the document line the block starts on.
		FirstLine() int
		sealed()
	}

	// InterleavedBlock is a transcript mixing prompts and expected output.
	InterleavedBlock struct {
		Snippet
	}

	// SplitBlock is a code fence with an optional, separate output fence.
	// Both fences may carry options; the output fence wins on conflicts.
	SplitBlock struct {
		Code   Snippet
		Output *Snippet
	}

	// Group is a named set of blocks from one document that share state.
	Group struct {
		Name    string
		Blocks  []Block
		Setup   []Snippet
		Cleanup []Snippet
	}

	// Document is one collected source file.
	Document struct {
		// Name is the slash-separated path relative to the doc root, without
		// its suffix (for example "guide/install").
		Name string
		// Path is the file's absolute path.
		Path string
		// Groups are sorted by name.
		Groups []*Group
	}
)

// FirstLine implements Block.
func (b *InterleavedBlock) FirstLine() int { return b.Line }

func (b *InterleavedBlock) sealed() {}

// FirstLine implements Block.
func (b *SplitBlock) FirstLine() int { return b.Code.Line }

func (b *SplitBlock) sealed() {}

// Group returns the named group, or nil.
func (d *Document) Group(name string) *Group {
	for _, g := range d.Groups {
		if g.Name == name {
			return g
		}
	}
	return nil
}
