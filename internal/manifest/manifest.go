// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package manifest reads the $meta.json manifest of an extracted lakebook
// and decodes its doubly-encoded table of contents.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/lakebook2md/pkg/types"
)

// FileName is the fixed manifest name at the root of an extracted lakebook.
const FileName = "$meta.json"

// ErrMissing reports an extracted archive without a manifest file.
var ErrMissing = errors.New("missing manifest " + FileName)

// metaFile is the outer manifest document. Its meta field is itself a
// JSON-encoded string.
type metaFile struct {
	Meta string `json:"meta"`
}

// metaPayload is the decoded meta field; the table of contents lives at
// book.tocYml as a YAML-encoded string.
type metaPayload struct {
	Book struct {
		TocYML string `json:"tocYml"`
	} `json:"book"`
}

// Load reads the manifest at the root of an extracted lakebook and returns
// its table of contents in listed order.
//
// The lakebook format nests three encodings: a JSON file whose meta field
// holds a JSON-encoded string, which in turn holds the YAML-encoded TOC at
// book.tocYml. The triple parse is fixed by the format; each stage fails
// independently and fails only the archive it belongs to.
func Load(bookDir string) ([]types.TOCEntry, error) {
	data, err := os.ReadFile(filepath.Join(bookDir, FileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrMissing
		}
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var outer metaFile
	if err := json.Unmarshal(data, &outer); err != nil {
		return nil, fmt.Errorf("parsing manifest JSON: %w", err)
	}

	var payload metaPayload
	if err := json.Unmarshal([]byte(outer.Meta), &payload); err != nil {
		return nil, fmt.Errorf("parsing embedded meta JSON: %w", err)
	}

	var toc []types.TOCEntry
	if err := yaml.Unmarshal([]byte(payload.Book.TocYML), &toc); err != nil {
		return nil, fmt.Errorf("parsing tocYml: %w", err)
	}

	return toc, nil
}
