package catalog

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// glVersionPattern matches the release version string on the GL version page.
var glVersionPattern = regexp.MustCompile(`(\d+\.\d+\.\d+)`)

// glVersionCheck is the request body of the GL patch API.
type glVersionCheck struct {
	MarketGameID     string `json:"market_game_id"`
	MarketCode       string `json:"market_code"`
	CurrBuildVersion string `json:"curr_build_version"`
	CurrBuildNumber  string `json:"curr_build_number"`
}

// glVersionCheckResponse is the patch API response; ResourcePath points at the
// version's resource catalog document.
type glVersionCheckResponse struct {
	Patch struct {
		ResourcePath string `json:"resource_path"`
	} `json:"patch"`
}

// glResourceList is the GL resource catalog document.
type glResourceList struct {
	Resources []struct {
		Group        string `json:"group"`
		ResourcePath string `json:"resource_path"`
		ResourceSize int64  `json:"resource_size"`
		ResourceHash string `json:"resource_hash"`
	} `json:"resources"`
}

// resolveGL resolves the GL manifest. An explicit version is used verbatim;
// otherwise the latest published version is scraped from the version page.
func (r *Resolver) resolveGL(ctx context.Context, version string) (*Manifest, error) {
	if version == "" {
		r.logger.Info("version not specified, fetching latest")
		v, err := r.glLatestVersion(ctx)
		if err != nil {
			return nil, err
		}
		version = v
	}
	r.logger.Info("resolving GL catalog", zap.String("version", version))

	serverURL, err := r.glServerURL(ctx, version)
	if err != nil {
		return nil, err
	}

	var list glResourceList
	if err := r.fetchJSON(ctx, serverURL, &list); err != nil {
		return nil, err
	}
	if len(list.Resources) == 0 {
		return nil, fmt.Errorf("%w: GL catalog for %s contains no resources", ErrCatalogParse, version)
	}

	base := serverURL
	if idx := strings.LastIndexByte(serverURL, '/'); idx >= 0 {
		base = serverURL[:idx]
	}

	entries := make([]Entry, 0, len(list.Resources))
	for _, res := range list.Resources {
		if res.ResourcePath == "" {
			return nil, fmt.Errorf("%w: GL resource with empty path", ErrCatalogParse)
		}
		entries = append(entries, Entry{
			Path:        res.ResourcePath,
			URL:         joinURL(base, res.ResourcePath),
			ContentHash: res.ResourceHash,
			Hash:        HashMD5,
			Size:        res.ResourceSize,
			Type:        glResourceType(res.Group),
		})
	}

	return &Manifest{Region: RegionGL, Version: version, Entries: entries}, nil
}

// glLatestVersion scrapes the current release version from the version page.
func (r *Resolver) glLatestVersion(ctx context.Context) (string, error) {
	body, err := r.fetch(ctx, r.endpoints.glVersionURL)
	if err != nil {
		return "", err
	}
	match := glVersionPattern.FindSubmatch(body)
	if match == nil {
		return "", fmt.Errorf("%w: no version found on %s", ErrCatalogParse, r.endpoints.glVersionURL)
	}
	return string(match[1]), nil
}

// glServerURL asks the patch API for the catalog URL of the given build version.
func (r *Resolver) glServerURL(ctx context.Context, version string) (string, error) {
	buildNumber := version
	if idx := strings.LastIndexByte(version, '.'); idx >= 0 {
		buildNumber = version[idx+1:]
	}
	req := glVersionCheck{
		MarketGameID:     "com.nexon.bluearchive",
		MarketCode:       "playstore",
		CurrBuildVersion: version,
		CurrBuildNumber:  buildNumber,
	}
	var resp glVersionCheckResponse
	if err := r.postJSON(ctx, r.endpoints.glServerURL, req, &resp); err != nil {
		return "", err
	}
	if resp.Patch.ResourcePath == "" {
		return "", fmt.Errorf("%w: patch API returned no resource path for %s", ErrCatalogParse, version)
	}
	return resp.Patch.ResourcePath, nil
}

// glResourceType maps a GL resource group to a resource type.
func glResourceType(group string) ResourceType {
	switch group {
	case "table", "tablebundles":
		return TypeTable
	case "media", "mediaresources":
		return TypeMedia
	default:
		return TypeBundle
	}
}
