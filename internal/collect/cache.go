// SPDX-License-Identifier: MPL-2.0

package collect

import (
	"bytes"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const (
	doctreeVersion    = 1
	doctreeSchemaName = "doctree.schema.json"
)

var (
	//go:embed doctree.schema.json
	doctreeSchemaData []byte

	doctreeSchema     *jsonschema.Schema
	doctreeSchemaOnce sync.Once
	doctreeSchemaErr  error
)

type (
	// rawDocument is the cached, pre-assembly form of one document.
	rawDocument struct {
		Version  int          `json:"version"`
		Hash     string       `json:"hash"`
		Name     string       `json:"name"`
		Meta     frontMatter  `json:"meta"`
		Blocks   []rawBlock   `json:"blocks"`
		Problems []rawProblem `json:"problems,omitempty"`
	}

	// doctreeCache stores parsed documents under <build>/doctrees.
	doctreeCache struct {
		dir string
	}
)

func compileDoctreeSchema() error {
	doctreeSchemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(doctreeSchemaData))
		if err != nil {
			doctreeSchemaErr = fmt.Errorf("unmarshal doctree schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(doctreeSchemaName, doc); err != nil {
			doctreeSchemaErr = fmt.Errorf("add doctree schema resource: %w", err)
			return
		}
		doctreeSchema, err = compiler.Compile(doctreeSchemaName)
		if err != nil {
			doctreeSchemaErr = fmt.Errorf("compile doctree schema: %w", err)
		}
	})
	return doctreeSchemaErr
}

func contentHash(src []byte) string {
	sum := sha256.Sum256(src)
	return hex.EncodeToString(sum[:])
}

func (c *doctreeCache) path(name string) string {
	sum := sha256.Sum256([]byte(name))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:8])+".json")
}

// load returns the cached document when it exists, is valid, and matches
// hash. A nil document with a nil error is a cache miss; an error means the
// entry existed but was unusable.
func (c *doctreeCache) load(name, hash string) (*rawDocument, error) {
	data, err := os.ReadFile(c.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read doctree cache: %w", err)
	}
	if err := validateDoctree(data); err != nil {
		return nil, err
	}
	var doc rawDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode doctree cache: %w", err)
	}
	if doc.Name != name || doc.Hash != hash {
		return nil, nil
	}
	return &doc, nil
}

func (c *doctreeCache) store(doc *rawDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode doctree cache: %w", err)
	}
	if err := os.WriteFile(c.path(doc.Name), data, 0o644); err != nil {
		return fmt.Errorf("write doctree cache: %w", err)
	}
	return nil
}

func validateDoctree(data []byte) error {
	if err := compileDoctreeSchema(); err != nil {
		return err
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("invalid doctree JSON: %w", err)
	}
	if err := doctreeSchema.Validate(inst); err != nil {
		return fmt.Errorf("doctree validation failed: %w", err)
	}
	return nil
}
