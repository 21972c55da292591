// SPDX-License-Identifier: MPL-2.0

package collect

import (
	"bytes"
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	yamlFence = "---"
	tomlFence = "+++"
)

type (
	// frontMatter holds the docnose keys a document may set in its header.
	frontMatter struct {
		// Skip excludes the whole document.
		Skip bool `json:"skip,omitempty" yaml:"skip" toml:"skip"`
		// Group replaces DefaultGroup for fences that name no group.
		Group string `json:"group,omitempty" yaml:"group" toml:"group"`
	}

	frontMatterDoc struct {
		Docnose frontMatter `yaml:"docnose" toml:"docnose"`
	}
)

// splitFrontMatter decodes a leading YAML (---) or TOML (+++) header and
// returns the source with the header blanked out, so line numbers in the
// remaining text are unchanged.
func splitFrontMatter(src []byte) (frontMatter, []byte, error) {
	lines := bytes.SplitAfter(src, []byte("\n"))
	if len(lines) == 0 {
		return frontMatter{}, src, nil
	}
	fence := string(bytes.TrimSpace(lines[0]))
	if fence != yamlFence && fence != tomlFence {
		return frontMatter{}, src, nil
	}

	end := -1
	for i := 1; i < len(lines); i++ {
		if string(bytes.TrimSpace(lines[i])) == fence {
			end = i
			break
		}
	}
	if end < 0 {
		return frontMatter{}, src, nil
	}

	header := bytes.Join(lines[1:end], nil)
	var doc frontMatterDoc
	var err error
	if fence == yamlFence {
		err = yaml.Unmarshal(header, &doc)
	} else {
		err = toml.Unmarshal(header, &doc)
	}

	body := make([]byte, 0, len(src))
	for i, line := range lines {
		if i <= end {
			if bytes.HasSuffix(line, []byte("\n")) {
				body = append(body, '\n')
			}
			continue
		}
		body = append(body, line...)
	}
	if err != nil {
		return frontMatter{}, body, fmt.Errorf("decode front matter: %w", err)
	}
	return doc.Docnose, body, nil
}
