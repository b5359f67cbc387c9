package sync_test

import (
	"testing"

	"github.com/ZM-Kimu/Blue-Archive-Asset-Downloader/feature/catalog"
	"github.com/ZM-Kimu/Blue-Archive-Asset-Downloader/feature/state"
	syncpipe "github.com/ZM-Kimu/Blue-Archive-Asset-Downloader/feature/sync"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func manifestOf(paths ...string) *catalog.Manifest {
	m := &catalog.Manifest{Region: catalog.RegionJP, Version: "r75"}
	for _, p := range paths {
		m.Entries = append(m.Entries, catalog.Entry{
			Path:        p,
			ContentHash: "hash-" + p,
			Hash:        catalog.HashCRC32,
			Type:        catalog.TypeBundle,
		})
	}
	return m
}

func TestDiffEmptyState(t *testing.T) {
	// First run: everything is a download, ordered by path.
	plan := syncpipe.Diff(manifestOf("c", "a", "b"), state.Snapshot{})

	require.Len(t, plan.Items, 3)
	assert.Equal(t, "a", plan.Items[0].Entry.Path)
	assert.Equal(t, "b", plan.Items[1].Entry.Path)
	assert.Equal(t, "c", plan.Items[2].Entry.Path)
	for _, item := range plan.Items {
		assert.Equal(t, syncpipe.ActionDownload, item.Action)
	}
	assert.Empty(t, plan.Stale)
	assert.Len(t, plan.Downloads(), 3)
}

func TestDiffAllSynced(t *testing.T) {
	m := manifestOf("a", "b")
	snap := state.Snapshot{
		"a": {Path: "a", ContentHash: "hash-a", ExtractionStatus: state.Extracted},
		"b": {Path: "b", ContentHash: "hash-b", ExtractionStatus: state.Extracted},
	}

	plan := syncpipe.Diff(m, snap)
	require.Len(t, plan.Items, 2)
	for _, item := range plan.Items {
		assert.Equal(t, syncpipe.ActionSkipUnchanged, item.Action)
	}
	assert.Empty(t, plan.Downloads())
	assert.Empty(t, plan.Stale)
}

func TestDiffChangedHash(t *testing.T) {
	m := manifestOf("a")
	snap := state.Snapshot{
		"a": {Path: "a", ContentHash: "old", ExtractionStatus: state.Extracted},
	}

	plan := syncpipe.Diff(m, snap)
	require.Len(t, plan.Items, 1)
	assert.Equal(t, syncpipe.ActionDownload, plan.Items[0].Action)
}

func TestDiffReExtractOnly(t *testing.T) {
	m := manifestOf("a", "b")
	snap := state.Snapshot{
		"a": {Path: "a", ContentHash: "hash-a", ExtractionStatus: state.ExtractionFailed},
		"b": {Path: "b", ContentHash: "hash-b", ExtractionStatus: state.NotAttempted},
	}

	plan := syncpipe.Diff(m, snap)
	require.Len(t, plan.Items, 2)
	assert.Equal(t, syncpipe.ActionReExtractOnly, plan.Items[0].Action)
	assert.Equal(t, syncpipe.ActionReExtractOnly, plan.Items[1].Action)
	assert.Equal(t, 2, len(plan.ReExtractOnly()))
	assert.Empty(t, plan.Downloads())
}

func TestDiffStale(t *testing.T) {
	m := manifestOf("b")
	snap := state.Snapshot{
		"b": {Path: "b", ContentHash: "hash-b", ExtractionStatus: state.Extracted},
		"z": {Path: "z", ContentHash: "zzz"},
		"a": {Path: "a", ContentHash: "aaa"},
	}

	plan := syncpipe.Diff(m, snap)
	assert.Equal(t, []string{"a", "z"}, plan.Stale, "stale sorted ascending")
	require.Len(t, plan.Items, 1, "stale paths never become plan items")
	assert.Equal(t, syncpipe.ActionSkipUnchanged, plan.Items[0].Action)
}
