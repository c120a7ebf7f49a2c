// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

const (
	// EntryTypeDoc is the TOC entry type tag that marks a document.
	// Other types (folders, separators) carry no payload and are skipped.
	EntryTypeDoc = "DOC"

	// DefaultTitle is used when a TOC entry carries no title.
	DefaultTitle = "Untitled document"
)

// TOCEntry is one record of a lakebook's table of contents, decoded from the
// YAML embedded in the archive manifest.
type TOCEntry struct {
	// Type distinguishes document entries from structural ones.
	Type string `json:"type" yaml:"type"`

	// Title is the display title, empty when the entry is untitled.
	Title string `json:"title" yaml:"title"`

	// URL is the relative locator of the document payload; the payload file
	// lives at <book root>/<url>.json.
	URL string `json:"url" yaml:"url"`

	// UUID is the stable document identity, when present. De-duplication
	// prefers it over the payload filename.
	UUID string `json:"uuid" yaml:"uuid"`
}

// IsDoc reports whether the entry names a convertible document.
func (e TOCEntry) IsDoc() bool {
	return e.Type == EntryTypeDoc
}

// DisplayTitle returns the entry title, or DefaultTitle when it is empty.
func (e TOCEntry) DisplayTitle() string {
	if e.Title == "" {
		return DefaultTitle
	}
	return e.Title
}

// DocStatus indicates the outcome of converting one document.
type DocStatus string

const (
	DocConverted DocStatus = "converted"
	DocSkipped   DocStatus = "skipped"
	DocFailed    DocStatus = "failed"
)
