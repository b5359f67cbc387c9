package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

var (
	// ErrCatalogUnavailable indicates the remote catalog endpoint was unreachable
	// or answered with a non-success status (e.g. server under maintenance).
	// Fatal for the run: nothing downstream can proceed without a manifest.
	ErrCatalogUnavailable = errors.New("catalog unavailable")

	// ErrCatalogParse indicates the catalog body could not be decoded into
	// entries. Fatal as well: acting on a partially parsed manifest risks
	// skipping or pruning valid assets.
	ErrCatalogParse = errors.New("catalog parse failed")
)

// endpoints collects the remote URLs each region resolver talks to.
// Tests point these at a local httptest server.
type endpoints struct {
	glVersionURL string
	glServerURL  string
	jpInfoURL    string
	cnInfoURL    string
}

func defaultEndpoints() endpoints {
	return endpoints{
		glVersionURL: "https://blue-archive-global.en.uptodown.com/android",
		glServerURL:  "https://api-pub.nexon.com/patch/v1.1/version-check",
		jpInfoURL:    "https://prod-noticeindex.bluearchiveyostar.com/prod/index.json",
		cnInfoURL:    "https://gs-api.bluearchive-cn.com/api/state",
	}
}

// Resolver fetches and decodes the remote manifest for a region.
type Resolver struct {
	client    *http.Client
	logger    *zap.Logger
	endpoints endpoints
}

// NewResolver creates a resolver using the given HTTP client for all remote calls.
func NewResolver(client *http.Client, logger *zap.Logger) *Resolver {
	return &Resolver{
		client:    client,
		logger:    logger,
		endpoints: defaultEndpoints(),
	}
}

// Resolve fetches the manifest for region. For GL an explicit version is used
// verbatim; everywhere else (and for GL without a version) the region's current
// published version is resolved first.
func (r *Resolver) Resolve(ctx context.Context, region Region, explicitVersion string) (*Manifest, error) {
	if !region.Valid() {
		return nil, fmt.Errorf("unknown region %q", region)
	}

	if explicitVersion != "" && region != RegionGL {
		r.logger.Warn("explicit version is only honored for GL; resolving latest instead",
			zap.String("region", string(region)),
			zap.String("version", explicitVersion))
		explicitVersion = ""
	}

	var (
		m   *Manifest
		err error
	)
	switch region {
	case RegionGL:
		m, err = r.resolveGL(ctx, explicitVersion)
	case RegionJP:
		m, err = r.resolveJP(ctx)
	case RegionCN:
		m, err = r.resolveCN(ctx)
	}
	if err != nil {
		return nil, err
	}

	r.logger.Info("catalog resolved",
		zap.String("region", string(region)),
		zap.String("version", m.Version),
		zap.Int("entries", m.Len()),
		zap.Int64("total_size", m.TotalSize()))
	return m, nil
}

// fetch issues a GET and returns the response body. Non-2xx statuses and
// transport errors both map to ErrCatalogUnavailable.
func (r *Resolver) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %v", ErrCatalogUnavailable, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: GET %s: status %d", ErrCatalogUnavailable, url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %v", ErrCatalogUnavailable, url, err)
	}
	return body, nil
}

// fetchJSON issues a GET and decodes the body into v. Undecodable bodies map
// to ErrCatalogParse.
func (r *Resolver) fetchJSON(ctx context.Context, url string, v any) error {
	body, err := r.fetch(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCatalogParse, url, err)
	}
	return nil
}

// postJSON issues a POST with a JSON body and decodes the JSON response into out.
func (r *Resolver) postJSON(ctx context.Context, url string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCatalogParse, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(payload)))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: POST %s: %v", ErrCatalogUnavailable, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: POST %s: status %d", ErrCatalogUnavailable, url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: POST %s: %v", ErrCatalogUnavailable, url, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCatalogParse, url, err)
	}
	return nil
}

// joinURL appends path segments to a base URL without doubling slashes.
func joinURL(base string, parts ...string) string {
	u := strings.TrimRight(base, "/")
	for _, p := range parts {
		u += "/" + strings.Trim(p, "/")
	}
	return u
}
