// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package book

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/lakebook2md/internal/archive"
	"github.com/pdiddy/lakebook2md/internal/manifest"
	"github.com/pdiddy/lakebook2md/internal/store"
	"github.com/pdiddy/lakebook2md/pkg/types"
)

// Session holds the run-wide state of a conversion run: where output goes,
// where archives are unpacked, and the optional conversion ledger. The
// per-archive de-duplication set is created fresh for each archive, so
// independent archives never share state.
type Session struct {
	// OutputBase is the base output directory; each archive writes into
	// OutputBase/<archive basename>/.
	OutputBase string

	// ScratchDir is the extraction directory, reset before every archive.
	ScratchDir string

	// ArchiveExt is the recognized archive extension, e.g. ".lakeb".
	ArchiveExt string

	// Ledger records run outcomes; nil disables history recording.
	Ledger *store.Store

	// Out receives per-document, per-archive, and per-batch progress lines.
	Out io.Writer

	// Errout receives warnings that do not affect conversion outcomes.
	Errout io.Writer
}

// ArchiveResult holds the outcome of converting one archive.
type ArchiveResult struct {
	// Archive is the input archive path.
	Archive string

	// Docs lists per-document outcomes, in TOC order.
	Docs []DocResult

	Converted int
	Skipped   int
	Failed    int

	// Err is set when the archive failed before any documents were
	// processed (unreadable archive, missing or malformed manifest).
	Err error
}

// Total returns the number of document entries processed.
func (r ArchiveResult) Total() int {
	return r.Converted + r.Skipped + r.Failed
}

// BatchResult aggregates archive outcomes across one run.
type BatchResult struct {
	ArchivesOK     int
	ArchivesFailed int
	Converted      int
	Skipped        int
	Failed         int
}

// Archives returns the number of archives attempted.
func (b BatchResult) Archives() int {
	return b.ArchivesOK + b.ArchivesFailed
}

// HasFailures reports whether any archive or document failed.
func (b BatchResult) HasFailures() bool {
	return b.ArchivesFailed > 0 || b.Failed > 0
}

func (b *BatchResult) add(r ArchiveResult) {
	if r.Err != nil {
		b.ArchivesFailed++
		return
	}
	b.ArchivesOK++
	b.Converted += r.Converted
	b.Skipped += r.Skipped
	b.Failed += r.Failed
}

// Convert resolves path as a single archive or a directory of archives and
// runs the conversion. The scratch directory is removed when the run ends,
// whether or not any archive succeeded. Per-archive failures are contained:
// a batch keeps going past a broken archive and only an empty batch is an
// error.
func (s *Session) Convert(path string) (BatchResult, error) {
	defer func() {
		if err := archive.Cleanup(s.ScratchDir); err != nil {
			fmt.Fprintf(s.errout(), "warning: could not remove scratch directory: %v\n", err)
		}
	}()

	runID := s.startRun(path)

	info, err := os.Stat(path)
	if err != nil {
		return BatchResult{}, fmt.Errorf("reading input path: %w", err)
	}

	var batch BatchResult
	if info.IsDir() {
		batch, err = s.convertDir(path, runID)
		if err != nil {
			return batch, err
		}
	} else {
		batch.add(s.convertArchive(path, runID))
	}

	fmt.Fprintf(s.Out, "\nrun summary: %d/%d archives converted, %d documents converted, %d skipped, %d failed\n",
		batch.ArchivesOK, batch.Archives(), batch.Converted, batch.Skipped, batch.Failed)
	return batch, nil
}

// convertDir processes every archive in dir (non-recursive) in name order.
// A directory with no matching archives fails the whole batch before any
// output is written.
func (s *Session) convertDir(dir string, runID int64) (BatchResult, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*"+s.ArchiveExt))
	if err != nil {
		return BatchResult{}, fmt.Errorf("scanning %s: %w", dir, err)
	}
	if len(matches) == 0 {
		return BatchResult{}, fmt.Errorf("no %s archives found in %s", s.ArchiveExt, dir)
	}

	var batch BatchResult
	for _, m := range matches {
		batch.add(s.convertArchive(m, runID))
	}
	return batch, nil
}

// convertArchive runs one lakebook through unpack, manifest parse, and
// per-document conversion. Failures before the TOC is available fail the
// whole archive; per-document failures are contained and counted.
func (s *Session) convertArchive(archivePath string, runID int64) ArchiveResult {
	res := ArchiveResult{Archive: archivePath}

	bookDir, err := archive.Unpack(archivePath, s.ScratchDir)
	if err != nil {
		return s.failArchive(res, runID, err)
	}

	toc, err := manifest.Load(bookDir)
	if err != nil {
		return s.failArchive(res, runID, err)
	}

	base := strings.TrimSuffix(filepath.Base(archivePath), filepath.Ext(archivePath))
	outDir := filepath.Join(s.OutputBase, base)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return s.failArchive(res, runID, fmt.Errorf("creating output directory: %w", err))
	}

	fmt.Fprintf(s.Out, "converting %s -> %s\n", filepath.Base(archivePath), outDir)

	seen := make(map[string]bool)
	for _, entry := range toc {
		if !entry.IsDoc() {
			continue
		}
		dr := ProcessDoc(entry, bookDir, outDir, seen, s.Out)
		res.Docs = append(res.Docs, dr)
		switch dr.Status {
		case types.DocConverted:
			res.Converted++
		case types.DocSkipped:
			res.Skipped++
		case types.DocFailed:
			res.Failed++
		}
	}

	fmt.Fprintf(s.Out, "book summary: %d converted, %d skipped, %d failed (total: %d)\n",
		res.Converted, res.Skipped, res.Failed, res.Total())

	s.record(runID, res)
	return res
}

// failArchive reports and records an archive-level failure.
func (s *Session) failArchive(res ArchiveResult, runID int64, err error) ArchiveResult {
	res.Err = err
	fmt.Fprintf(s.Out, "failed: %s (%v)\n", filepath.Base(res.Archive), err)
	s.record(runID, res)
	return res
}

// startRun opens a ledger run. Ledger trouble is a warning, never a
// conversion failure; a zero run ID disables recording for the rest of the
// run.
func (s *Session) startRun(input string) int64 {
	if s.Ledger == nil {
		return 0
	}
	runID, err := s.Ledger.StartRun(input)
	if err != nil {
		fmt.Fprintf(s.errout(), "warning: could not record run: %v\n", err)
		return 0
	}
	return runID
}

// record writes one archive outcome and its documents to the ledger.
func (s *Session) record(runID int64, res ArchiveResult) {
	if s.Ledger == nil || runID == 0 {
		return
	}

	status := "converted"
	if res.Err != nil {
		status = "failed"
	}
	archiveID, err := s.Ledger.RecordArchive(runID, store.ArchiveRecord{
		Path:      res.Archive,
		Status:    status,
		Converted: res.Converted,
		Skipped:   res.Skipped,
		Failed:    res.Failed,
		Error:     errString(res.Err),
	})
	if err != nil {
		fmt.Fprintf(s.errout(), "warning: could not record archive outcome: %v\n", err)
		return
	}

	for _, d := range res.Docs {
		rec := store.DocumentRecord{
			Identity:   d.Identity,
			Title:      d.Title,
			Status:     string(d.Status),
			OutputPath: d.Path,
			Error:      errString(d.Err),
		}
		if err := s.Ledger.RecordDocument(archiveID, rec); err != nil {
			fmt.Fprintf(s.errout(), "warning: could not record document outcome: %v\n", err)
			return
		}
	}
}

func (s *Session) errout() io.Writer {
	if s.Errout != nil {
		return s.Errout
	}
	return os.Stderr
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
