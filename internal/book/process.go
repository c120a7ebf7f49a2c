// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package book drives lakebook conversion: per-document processing and
// archive/batch orchestration.
package book

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"github.com/pdiddy/lakebook2md/internal/markdown"
	"github.com/pdiddy/lakebook2md/pkg/types"
)

// unsafeTitleChars are the characters that cannot appear in output filenames.
var unsafeTitleChars = regexp.MustCompile(`[\\/*?:"<>|]`)

// SafeTitle replaces filesystem-unsafe characters in a title with
// underscores.
func SafeTitle(title string) string {
	return unsafeTitleChars.ReplaceAllString(title, "_")
}

// DocResult holds the outcome of processing one TOC entry.
type DocResult struct {
	// Identity is the de-duplication key: the entry UUID, or the payload
	// filename when no UUID is present.
	Identity string

	// Title is the display title used for the output file and reporting.
	Title string

	// Status is converted, skipped, or failed.
	Status types.DocStatus

	// Path is the written Markdown file, set when Status is converted.
	Path string

	// Err is the failure cause, set when Status is failed.
	Err error
}

// docPayload is the per-document JSON file; the HTML body lives at doc.body.
// Pointers distinguish a missing field from an empty body.
type docPayload struct {
	Doc *struct {
		Body *string `json:"body"`
	} `json:"doc"`
}

// ProcessDoc converts one document entry: it loads the payload JSON at
// <bookDir>/<url>.json, transcodes the HTML body, and writes
// <outDir>/<sanitized title>.md containing a level-1 heading with the raw
// title followed by the Markdown body. An existing file of the same name is
// replaced; colliding sanitized titles silently overwrite one another.
//
// Entries whose identity is already in seen are reported as skipped without
// touching the payload. A missing payload or a payload without doc.body
// fails this document only; the caller continues with its siblings.
func ProcessDoc(entry types.TOCEntry, bookDir, outDir string, seen map[string]bool, w io.Writer) DocResult {
	payloadName := entry.URL + ".json"
	res := DocResult{
		Identity: entry.UUID,
		Title:    entry.DisplayTitle(),
	}
	if res.Identity == "" {
		res.Identity = payloadName
	}

	if seen[res.Identity] {
		res.Status = types.DocSkipped
		fmt.Fprintf(w, "skipped:   %s (already converted)\n", res.Title)
		return res
	}
	seen[res.Identity] = true

	fail := func(err error) DocResult {
		res.Status = types.DocFailed
		res.Err = err
		fmt.Fprintf(w, "failed:    %s (%v)\n", res.Title, err)
		return res
	}

	data, err := os.ReadFile(filepath.Join(bookDir, payloadName))
	if err != nil {
		return fail(fmt.Errorf("reading payload %s: %w", payloadName, err))
	}

	var payload docPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fail(fmt.Errorf("parsing payload %s: %w", payloadName, err))
	}
	if payload.Doc == nil || payload.Doc.Body == nil {
		return fail(fmt.Errorf("payload %s has no doc.body field", payloadName))
	}

	body, err := markdown.Transcode(*payload.Doc.Body)
	if err != nil {
		return fail(fmt.Errorf("transcoding %s: %w", payloadName, err))
	}

	outPath := filepath.Join(outDir, SafeTitle(res.Title)+".md")
	content := fmt.Sprintf("# %s\n\n%s", res.Title, body)
	if err := os.WriteFile(outPath, []byte(content), 0o644); err != nil {
		return fail(fmt.Errorf("writing %s: %w", outPath, err))
	}

	res.Status = types.DocConverted
	res.Path = outPath
	fmt.Fprintf(w, "converted: %s\n", res.Title)
	return res
}
