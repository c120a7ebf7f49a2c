// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package book

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/pdiddy/lakebook2md/pkg/types"
)

// writePayload writes a document payload JSON with the given HTML body.
func writePayload(t *testing.T, bookDir, url, html string) {
	t.Helper()
	content := fmt.Sprintf(`{"doc":{"body":%s}}`, strconv.Quote(html))
	if err := os.WriteFile(filepath.Join(bookDir, url+".json"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestSafeTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`Getting Started`, `Getting Started`},
		{`a\b/c*d?e:f"g<h>i|j`, `a_b_c_d_e_f_g_h_i_j`},
		{`FAQ: how?`, `FAQ_ how_`},
	}
	for _, tt := range tests {
		if got := SafeTitle(tt.in); got != tt.want {
			t.Errorf("SafeTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestProcessDoc(t *testing.T) {
	bookDir := t.TempDir()
	outDir := t.TempDir()
	writePayload(t, bookDir, "getting-started",
		`<p>Hello <strong>world</strong></p><a href="http://x">link</a><img src="http://y/z.png">`)

	entry := types.TOCEntry{Type: "DOC", Title: "Getting Started", URL: "getting-started", UUID: "abc-123"}
	var log bytes.Buffer

	res := ProcessDoc(entry, bookDir, outDir, map[string]bool{}, &log)
	if res.Status != types.DocConverted {
		t.Fatalf("status = %q, want %q (err: %v)", res.Status, types.DocConverted, res.Err)
	}
	if res.Identity != "abc-123" {
		t.Errorf("identity = %q, want uuid", res.Identity)
	}
	if !strings.Contains(log.String(), "converted:") {
		t.Errorf("log %q missing converted line", log.String())
	}

	data, err := os.ReadFile(filepath.Join(outDir, "Getting Started.md"))
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	want := "# Getting Started\n\nHello **world**\n\n[link](http://x)![image](http://y/z.png)"
	if string(data) != want {
		t.Errorf("output = %q, want %q", string(data), want)
	}
}

func TestProcessDocUntitled(t *testing.T) {
	bookDir := t.TempDir()
	outDir := t.TempDir()
	writePayload(t, bookDir, "anon", "<p>text</p>")

	entry := types.TOCEntry{Type: "DOC", URL: "anon"}
	res := ProcessDoc(entry, bookDir, outDir, map[string]bool{}, &bytes.Buffer{})
	if res.Status != types.DocConverted {
		t.Fatalf("status = %q, want converted (err: %v)", res.Status, res.Err)
	}
	if filepath.Base(res.Path) != types.DefaultTitle+".md" {
		t.Errorf("output file = %q, want placeholder title", filepath.Base(res.Path))
	}
	// Without a UUID the identity falls back to the payload filename.
	if res.Identity != "anon.json" {
		t.Errorf("identity = %q, want anon.json", res.Identity)
	}
}

func TestProcessDocSanitizesFilename(t *testing.T) {
	bookDir := t.TempDir()
	outDir := t.TempDir()
	writePayload(t, bookDir, "faq", "<p>answers</p>")

	entry := types.TOCEntry{Type: "DOC", Title: `FAQ: what/why?`, URL: "faq"}
	res := ProcessDoc(entry, bookDir, outDir, map[string]bool{}, &bytes.Buffer{})
	if res.Status != types.DocConverted {
		t.Fatalf("status = %q, want converted (err: %v)", res.Status, res.Err)
	}

	if got := filepath.Base(res.Path); got != "FAQ_ what_why_.md" {
		t.Errorf("output file = %q, want sanitized name", got)
	}
	if strings.ContainsAny(filepath.Base(res.Path), `\/*?:"<>|`) {
		t.Errorf("output file %q still contains unsafe characters", res.Path)
	}

	// The heading keeps the raw title.
	data, err := os.ReadFile(res.Path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# FAQ: what/why?\n\n") {
		t.Errorf("output %q does not start with raw title heading", string(data))
	}
}

func TestProcessDocDeduplicates(t *testing.T) {
	bookDir := t.TempDir()
	outDir := t.TempDir()
	writePayload(t, bookDir, "dup", "<p>once</p>")

	entry := types.TOCEntry{Type: "DOC", Title: "Dup", URL: "dup", UUID: "same-uuid"}
	seen := map[string]bool{}
	var log bytes.Buffer

	first := ProcessDoc(entry, bookDir, outDir, seen, &log)
	second := ProcessDoc(entry, bookDir, outDir, seen, &log)

	if first.Status != types.DocConverted {
		t.Fatalf("first status = %q, want converted", first.Status)
	}
	if second.Status != types.DocSkipped {
		t.Errorf("second status = %q, want skipped", second.Status)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("output files = %d, want 1", len(entries))
	}
}

func TestProcessDocFailures(t *testing.T) {
	tests := []struct {
		name    string
		payload string // raw payload content; empty means no file at all
	}{
		{name: "missing payload file"},
		{name: "payload is not JSON", payload: "not json"},
		{name: "payload without doc field", payload: `{"note":"no doc here"}`},
		{name: "payload without body field", payload: `{"doc":{"title":"x"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bookDir := t.TempDir()
			outDir := t.TempDir()
			if tt.payload != "" {
				if err := os.WriteFile(filepath.Join(bookDir, "doc.json"), []byte(tt.payload), 0o644); err != nil {
					t.Fatal(err)
				}
			}

			entry := types.TOCEntry{Type: "DOC", Title: "Doc", URL: "doc"}
			var log bytes.Buffer
			res := ProcessDoc(entry, bookDir, outDir, map[string]bool{}, &log)

			if res.Status != types.DocFailed {
				t.Fatalf("status = %q, want failed", res.Status)
			}
			if res.Err == nil {
				t.Error("Err = nil, want failure cause")
			}
			if !strings.Contains(log.String(), "failed:") {
				t.Errorf("log %q missing failed line", log.String())
			}
		})
	}
}

func TestProcessDocOverwritesExisting(t *testing.T) {
	bookDir := t.TempDir()
	outDir := t.TempDir()
	writePayload(t, bookDir, "doc", "<p>fresh</p>")

	stale := filepath.Join(outDir, "Doc.md")
	if err := os.WriteFile(stale, []byte("stale content that should vanish"), 0o644); err != nil {
		t.Fatal(err)
	}

	entry := types.TOCEntry{Type: "DOC", Title: "Doc", URL: "doc"}
	res := ProcessDoc(entry, bookDir, outDir, map[string]bool{}, &bytes.Buffer{})
	if res.Status != types.DocConverted {
		t.Fatalf("status = %q, want converted (err: %v)", res.Status, res.Err)
	}

	data, err := os.ReadFile(stale)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "# Doc\n\nfresh" {
		t.Errorf("output = %q, want replaced content", string(data))
	}
}
