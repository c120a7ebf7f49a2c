// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "ledger", "lakebook2md.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStartRunAndRecentRuns(t *testing.T) {
	s := openTestStore(t)

	id1, err := s.StartRun("books/alpha.lakeb")
	require.NoError(t, err)
	id2, err := s.StartRun("books/")
	require.NoError(t, err)
	require.Greater(t, id2, id1)

	_, err = s.RecordArchive(id2, ArchiveRecord{
		Path: "books/alpha.lakeb", Status: "converted", Converted: 3, Skipped: 1,
	})
	require.NoError(t, err)
	_, err = s.RecordArchive(id2, ArchiveRecord{
		Path: "books/beta.lakeb", Status: "failed", Error: "missing manifest $meta.json",
	})
	require.NoError(t, err)

	runs, err := s.RecentRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// Newest first.
	assert.Equal(t, id2, runs[0].ID)
	assert.Equal(t, "books/", runs[0].Input)
	assert.Equal(t, 2, runs[0].Archives)
	assert.Equal(t, 3, runs[0].Converted)
	assert.False(t, runs[0].StartedAt.IsZero())

	assert.Equal(t, id1, runs[1].ID)
	assert.Equal(t, 0, runs[1].Archives)
}

func TestRecentRunsLimit(t *testing.T) {
	s := openTestStore(t)
	for i := 0; i < 5; i++ {
		_, err := s.StartRun("books/")
		require.NoError(t, err)
	}

	runs, err := s.RecentRuns(2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestRunArchivesAndDocuments(t *testing.T) {
	s := openTestStore(t)

	runID, err := s.StartRun("alpha.lakeb")
	require.NoError(t, err)

	archiveID, err := s.RecordArchive(runID, ArchiveRecord{
		Path: "alpha.lakeb", Status: "converted", Converted: 1, Failed: 1,
	})
	require.NoError(t, err)

	require.NoError(t, s.RecordDocument(archiveID, DocumentRecord{
		Identity:   "abc-123",
		Title:      "Getting Started",
		Status:     "converted",
		OutputPath: "output/alpha/Getting Started.md",
	}))
	require.NoError(t, s.RecordDocument(archiveID, DocumentRecord{
		Identity: "missing.json",
		Title:    "Broken",
		Status:   "failed",
		Error:    "payload missing.json has no doc.body field",
	}))

	archives, err := s.RunArchives(runID)
	require.NoError(t, err)
	require.Len(t, archives, 1)
	assert.Equal(t, "alpha.lakeb", archives[0].Path)
	assert.Equal(t, 1, archives[0].Converted)
	assert.Equal(t, 1, archives[0].Failed)
	assert.Empty(t, archives[0].Error)
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lakebook2md.db")

	s1, err := Open(path)
	require.NoError(t, err)
	_, err = s1.StartRun("alpha.lakeb")
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	// Reopening an existing database keeps its rows.
	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	runs, err := s2.RecentRuns(10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
