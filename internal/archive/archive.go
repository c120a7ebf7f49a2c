// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive unpacks lakebook tar bundles into a scratch directory.
package archive

import (
	"archive/tar"
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// gzipMagic is the two-byte signature of a gzip stream.
var gzipMagic = []byte{0x1f, 0x8b}

// Unpack resets scratchDir and extracts the tar archive at archivePath into
// it, then returns the first non-hidden top-level directory of the extracted
// tree. The scratch directory is removed and recreated on every call so
// entries from a previous archive cannot leak into this one. Gzip-compressed
// archives are detected by their magic bytes; anything that is not plain or
// gzipped tar fails as unreadable.
func Unpack(archivePath, scratchDir string) (string, error) {
	if err := Reset(scratchDir); err != nil {
		return "", err
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return "", fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	if err := extract(f, scratchDir); err != nil {
		return "", fmt.Errorf("extracting %s: %w", filepath.Base(archivePath), err)
	}

	return contentRoot(scratchDir)
}

// Reset removes scratchDir and recreates it empty.
func Reset(scratchDir string) error {
	if err := os.RemoveAll(scratchDir); err != nil {
		return fmt.Errorf("clearing scratch directory %s: %w", scratchDir, err)
	}
	if err := os.MkdirAll(scratchDir, 0o755); err != nil {
		return fmt.Errorf("creating scratch directory %s: %w", scratchDir, err)
	}
	return nil
}

// Cleanup removes the scratch directory. Callers run it unconditionally at
// the end of a run.
func Cleanup(scratchDir string) error {
	return os.RemoveAll(scratchDir)
}

// extract reads a tar stream (optionally gzip-compressed) from r and writes
// its entries under dest.
func extract(r io.Reader, dest string) error {
	br := bufio.NewReader(r)
	var stream io.Reader = br
	if magic, err := br.Peek(2); err == nil && magic[0] == gzipMagic[0] && magic[1] == gzipMagic[1] {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return fmt.Errorf("reading gzip stream: %w", err)
		}
		defer gz.Close()
		stream = gz
	}

	tr := tar.NewReader(stream)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading tar entry: %w", err)
		}

		name := filepath.Clean(hdr.Name)
		if name == "." || name == "/" {
			continue
		}
		target, err := securePath(dest, name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("creating directory %s: %w", name, err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("creating directory for %s: %w", name, err)
			}
			if err := writeEntry(target, tr); err != nil {
				return fmt.Errorf("writing %s: %w", name, err)
			}
		default:
			// Symlinks and device nodes are not part of the bundle format.
			continue
		}
	}
	return nil
}

func writeEntry(target string, r io.Reader) error {
	out, err := os.Create(target)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// securePath joins name under dest, rejecting entries that would escape it.
func securePath(dest, name string) (string, error) {
	target := filepath.Join(dest, name)
	if !strings.HasPrefix(target, filepath.Clean(dest)+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry %q escapes extraction directory", name)
	}
	return target, nil
}

// contentRoot returns the first non-hidden top-level directory under dir.
func contentRoot(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("reading scratch directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", fmt.Errorf("no content directory found in archive")
}
