package catalog

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"
)

// jpIndex is the JP notice index document carrying the current client version
// and the root URL of the versioned addressable catalogs.
type jpIndex struct {
	LatestClientVersion    string `json:"LatestClientVersion"`
	AddressablesCatalogURL string `json:"AddressablesCatalogUrlRoot"`
}

// jpBundleCatalog is the bundle download info document.
type jpBundleCatalog struct {
	BundleFiles []struct {
		Name string `json:"Name"`
		Size int64  `json:"Size"`
		Crc  uint32 `json:"Crc"`
	} `json:"BundleFiles"`
}

// jpTableItem is one media or table catalog row. Media rows carry a path,
// table rows only a file name.
type jpTableItem struct {
	Path     string `json:"path"`
	FileName string `json:"file_name"`
	Bytes    int64  `json:"bytes"`
	Crc      uint32 `json:"crc"`
}

// jpCatalog is the media/table catalog document shape.
type jpCatalog struct {
	Table map[string]jpTableItem `json:"Table"`
}

// resolveJP resolves the JP manifest: latest version from the notice index, then
// the three catalog documents (bundles, media, tables) under the versioned root.
func (r *Resolver) resolveJP(ctx context.Context) (*Manifest, error) {
	r.logger.Info("fetching latest JP version")

	var index jpIndex
	if err := r.fetchJSON(ctx, r.endpoints.jpInfoURL, &index); err != nil {
		return nil, err
	}
	if index.LatestClientVersion == "" || index.AddressablesCatalogURL == "" {
		return nil, fmt.Errorf("%w: JP index is missing version or catalog root", ErrCatalogParse)
	}
	base := joinURL(index.AddressablesCatalogURL, index.LatestClientVersion)
	r.logger.Info("resolving JP catalog", zap.String("version", index.LatestClientVersion))

	var entries []Entry

	var bundles jpBundleCatalog
	if err := r.fetchJSON(ctx, joinURL(base, "Android", "bundleDownloadInfo.json"), &bundles); err != nil {
		return nil, err
	}
	for _, b := range bundles.BundleFiles {
		if b.Name == "" {
			return nil, fmt.Errorf("%w: JP bundle with empty name", ErrCatalogParse)
		}
		entries = append(entries, Entry{
			Path:        b.Name,
			URL:         joinURL(base, "Android", b.Name),
			ContentHash: strconv.FormatUint(uint64(b.Crc), 10),
			Hash:        HashCRC32,
			Size:        b.Size,
			Type:        TypeBundle,
		})
	}

	var media jpCatalog
	if err := r.fetchJSON(ctx, joinURL(base, "MediaResources", "MediaCatalog.json"), &media); err != nil {
		return nil, err
	}
	for _, item := range media.Table {
		p := item.Path
		if p == "" {
			p = item.FileName
		}
		if p == "" {
			return nil, fmt.Errorf("%w: JP media row with empty path", ErrCatalogParse)
		}
		entries = append(entries, Entry{
			Path:        p,
			URL:         joinURL(base, "MediaResources", p),
			ContentHash: strconv.FormatUint(uint64(item.Crc), 10),
			Hash:        HashCRC32,
			Size:        item.Bytes,
			Type:        TypeMedia,
		})
	}

	var tables jpCatalog
	if err := r.fetchJSON(ctx, joinURL(base, "TableBundles", "TableCatalog.json"), &tables); err != nil {
		return nil, err
	}
	for _, item := range tables.Table {
		p := item.FileName
		if p == "" {
			p = item.Path
		}
		if p == "" {
			return nil, fmt.Errorf("%w: JP table row with empty file name", ErrCatalogParse)
		}
		entries = append(entries, Entry{
			Path:        p,
			URL:         joinURL(base, "TableBundles", p),
			ContentHash: strconv.FormatUint(uint64(item.Crc), 10),
			Hash:        HashCRC32,
			Size:        item.Bytes,
			Type:        TypeTable,
		})
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: JP catalogs contain no entries", ErrCatalogParse)
	}

	return &Manifest{Region: RegionJP, Version: index.LatestClientVersion, Entries: entries}, nil
}
