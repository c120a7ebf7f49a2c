// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// promptForInput reads paths from r until one names an existing archive or
// directory. Shells that expand drag-and-drop paths wrap them in quotes, so
// quotes and surrounding whitespace are stripped before validation.
func promptForInput(r io.Reader, w io.Writer, ext string) (string, error) {
	fmt.Fprintf(w, "Drop a %s file (or a directory of them) here, or type its path:\n", ext)

	scanner := bufio.NewScanner(r)
	for {
		fmt.Fprint(w, "> ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", fmt.Errorf("reading input: %w", err)
			}
			return "", fmt.Errorf("no input path given")
		}

		path := strings.Trim(scanner.Text(), "\"' \t")
		if path == "" {
			continue
		}
		if err := validateInput(path, ext); err != nil {
			fmt.Fprintf(w, "invalid path (%v), try again\n", err)
			continue
		}
		return path, nil
	}
}

// validateInput checks that path names a directory or an archive file with
// the recognized extension.
func validateInput(path, ext string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("reading input path: %w", err)
	}
	if info.IsDir() {
		return nil
	}
	if !strings.EqualFold(filepath.Ext(path), ext) {
		return fmt.Errorf("%s is not a %s archive", path, ext)
	}
	return nil
}
