package sync

import (
	"sort"

	"github.com/ZM-Kimu/Blue-Archive-Asset-Downloader/feature/catalog"
	"github.com/ZM-Kimu/Blue-Archive-Asset-Downloader/feature/state"
)

// ActionType is the per-run decision for one catalog entry.
type ActionType string

const (
	// ActionDownload fetches the entry because no valid local copy exists.
	ActionDownload ActionType = "download"
	// ActionSkipUnchanged leaves the entry alone: local copy and extraction are current.
	ActionSkipUnchanged ActionType = "skip_unchanged"
	// ActionReExtractOnly re-runs extraction for an up-to-date local copy whose
	// extraction never succeeded.
	ActionReExtractOnly ActionType = "re_extract_only"
)

// PlannedEntry pairs a catalog entry with the action decided for it.
type PlannedEntry struct {
	Entry  catalog.Entry
	Action ActionType
}

// Plan is the ordered output of the diff engine.
type Plan struct {
	// Items holds one decision per manifest entry, ascending by path.
	Items []PlannedEntry

	// Stale lists recorded paths absent from the manifest, ascending. Their
	// records are retained; deletion is a separate explicit operation.
	Stale []string
}

// Downloads returns the entries planned for download, in plan order.
func (p Plan) Downloads() []catalog.Entry {
	var out []catalog.Entry
	for _, item := range p.Items {
		if item.Action == ActionDownload {
			out = append(out, item.Entry)
		}
	}
	return out
}

// ReExtractOnly returns the entries planned for extraction without download.
func (p Plan) ReExtractOnly() []catalog.Entry {
	var out []catalog.Entry
	for _, item := range p.Items {
		if item.Action == ActionReExtractOnly {
			out = append(out, item.Entry)
		}
	}
	return out
}

// Diff compares a manifest against a state snapshot and produces the run plan.
// The snapshot must be taken before any worker starts so the whole plan is
// computed from one consistent view.
func Diff(m *catalog.Manifest, snap state.Snapshot) Plan {
	items := make([]PlannedEntry, 0, len(m.Entries))
	inManifest := make(map[string]struct{}, len(m.Entries))

	for _, entry := range m.Entries {
		inManifest[entry.Path] = struct{}{}
		items = append(items, PlannedEntry{Entry: entry, Action: decide(entry, snap)})
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Entry.Path < items[j].Entry.Path
	})

	var stale []string
	for p := range snap {
		if _, ok := inManifest[p]; !ok {
			stale = append(stale, p)
		}
	}
	sort.Strings(stale)

	return Plan{Items: items, Stale: stale}
}

func decide(entry catalog.Entry, snap state.Snapshot) ActionType {
	rec, ok := snap[entry.Path]
	if !ok {
		return ActionDownload
	}
	if rec.ContentHash != entry.ContentHash {
		return ActionDownload
	}
	if rec.ExtractionStatus == state.Extracted {
		return ActionSkipUnchanged
	}
	return ActionReExtractOnly
}
