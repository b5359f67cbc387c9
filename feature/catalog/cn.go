package catalog

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// cnServerInfo is the CN state API response with the manifest base URL.
type cnServerInfo struct {
	AddressablesCatalogURL string `json:"AddressablesCatalogUrlRoot"`
	LatestClientVersion    string `json:"LatestClientVersion"`
}

// cnManifestItem is one row of a CN manifest group.
type cnManifestItem struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	MD5  string `json:"md5"`
}

// cnManifest is the CN manifest document listing the bundle, media and table groups.
type cnManifest struct {
	Bundles []cnManifestItem `json:"bundles"`
	Medias  []cnManifestItem `json:"medias"`
	Tables  []cnManifestItem `json:"tables"`
}

// resolveCN resolves the CN manifest from the state API and the manifest document
// under the returned catalog root.
func (r *Resolver) resolveCN(ctx context.Context) (*Manifest, error) {
	r.logger.Info("fetching CN server info")

	var info cnServerInfo
	if err := r.fetchJSON(ctx, r.endpoints.cnInfoURL, &info); err != nil {
		return nil, err
	}
	if info.AddressablesCatalogURL == "" {
		return nil, fmt.Errorf("%w: CN server info is missing the catalog root", ErrCatalogParse)
	}
	r.logger.Info("resolving CN catalog", zap.String("version", info.LatestClientVersion))

	var manifest cnManifest
	if err := r.fetchJSON(ctx, joinURL(info.AddressablesCatalogURL, "Manifest", "Catalog.json"), &manifest); err != nil {
		return nil, err
	}

	groups := []struct {
		items  []cnManifestItem
		folder string
		typ    ResourceType
	}{
		{manifest.Bundles, "AssetBundles", TypeBundle},
		{manifest.Medias, "MediaResources", TypeMedia},
		{manifest.Tables, "TableBundles", TypeTable},
	}

	var entries []Entry
	for _, g := range groups {
		for _, item := range g.items {
			if item.Name == "" {
				return nil, fmt.Errorf("%w: CN %s item with empty name", ErrCatalogParse, g.folder)
			}
			entries = append(entries, Entry{
				Path:        item.Name,
				URL:         joinURL(info.AddressablesCatalogURL, g.folder, item.Name),
				ContentHash: item.MD5,
				Hash:        HashMD5,
				Size:        item.Size,
				Type:        g.typ,
			})
		}
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: CN manifest contains no entries", ErrCatalogParse)
	}

	return &Manifest{Region: RegionCN, Version: info.LatestClientVersion, Entries: entries}, nil
}
