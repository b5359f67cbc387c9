package search

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ZM-Kimu/Blue-Archive-Asset-Downloader/feature/catalog"

	"go.uber.org/zap"
)

// ErrSearchCapabilityUnavailable indicates attribute-mode search was requested
// but the metadata capability is not available (character tables never
// extracted, or the provider is not installed).
var ErrSearchCapabilityUnavailable = errors.New("search metadata capability unavailable")

// Criteria selects one of the two search modes. At most one of Keywords and
// Attributes may be set; both empty means no filtering.
type Criteria struct {
	// Keywords are matched case-insensitively against entry paths and display
	// names. Any match keeps the entry.
	Keywords []string

	// Attributes are bare tokens (matched against display names) or key=value
	// pairs (matched against entry metadata). All must match to keep an entry.
	Attributes []string
}

// Empty reports whether no criteria were supplied.
func (c Criteria) Empty() bool {
	return len(c.Keywords) == 0 && len(c.Attributes) == 0
}

// Engine filters manifests against search criteria.
type Engine struct {
	provider MetadataProvider
	logger   *zap.Logger
}

// NewEngine creates a filter engine. provider may be nil, which disables
// attribute mode and display-name matching.
func NewEngine(provider MetadataProvider, logger *zap.Logger) *Engine {
	return &Engine{provider: provider, logger: logger}
}

// Filter returns the subset of m matching the criteria. The returned manifest
// shares region and version with m. No criteria returns m unchanged.
func (e *Engine) Filter(m *catalog.Manifest, c Criteria) (*catalog.Manifest, error) {
	if c.Empty() {
		return m, nil
	}
	if len(c.Keywords) > 0 && len(c.Attributes) > 0 {
		return nil, fmt.Errorf("keyword and attribute search are mutually exclusive")
	}

	if len(c.Attributes) > 0 {
		return e.filterAttributes(m, c.Attributes)
	}
	return e.filterKeywords(m, c.Keywords), nil
}

// filterKeywords keeps entries whose path or display name contains any keyword.
// Keywords are expanded through the provider's alias mapping first.
func (e *Engine) filterKeywords(m *catalog.Manifest, keywords []string) *catalog.Manifest {
	expanded := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		expanded = append(expanded, kw)
		if e.provider != nil {
			for _, alias := range e.provider.Aliases(kw) {
				expanded = append(expanded, strings.ToLower(alias))
			}
		}
	}

	var kept []catalog.Entry
	for _, entry := range m.Entries {
		if e.entryMatchesAny(entry, expanded) {
			kept = append(kept, entry)
		}
	}

	e.logger.Info("keyword filter applied",
		zap.Int("keywords", len(keywords)),
		zap.Int("matched", len(kept)),
		zap.Int("total", m.Len()))
	return m.Subset(kept)
}

func (e *Engine) entryMatchesAny(entry catalog.Entry, keywords []string) bool {
	path := strings.ToLower(entry.Path)
	name := ""
	if e.provider != nil {
		if n, ok := e.provider.DisplayName(entry.Path); ok {
			name = strings.ToLower(n)
		}
	}
	for _, kw := range keywords {
		if strings.Contains(path, kw) {
			return true
		}
		if name != "" && strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

// filterAttributes keeps entries matching every criterion. Criteria are bare
// tokens (display-name match) or key=value pairs (metadata equality).
func (e *Engine) filterAttributes(m *catalog.Manifest, criteria []string) (*catalog.Manifest, error) {
	if m.Region != catalog.RegionJP {
		return nil, fmt.Errorf("attribute search is only supported for the jp region")
	}
	if e.provider == nil {
		return nil, ErrSearchCapabilityUnavailable
	}

	var kept []catalog.Entry
	for _, entry := range m.Entries {
		if e.entryMatchesAll(entry, criteria) {
			kept = append(kept, entry)
		}
	}

	e.logger.Info("attribute filter applied",
		zap.Int("criteria", len(criteria)),
		zap.Int("matched", len(kept)),
		zap.Int("total", m.Len()))
	return m.Subset(kept), nil
}

func (e *Engine) entryMatchesAll(entry catalog.Entry, criteria []string) bool {
	for _, crit := range criteria {
		crit = strings.TrimSpace(crit)
		if crit == "" {
			continue
		}
		key, value, isPair := strings.Cut(crit, "=")
		if isPair {
			attr, ok := e.attribute(entry, key)
			if !ok || !strings.EqualFold(attr, value) {
				return false
			}
			continue
		}
		name, ok := e.provider.DisplayName(entry.Path)
		if !ok || !strings.Contains(strings.ToLower(name), strings.ToLower(crit)) {
			return false
		}
	}
	return true
}

// attribute resolves one metadata key for an entry. Manifest-carried metadata
// wins over provider metadata; unknown keys never match.
func (e *Engine) attribute(entry catalog.Entry, key string) (string, bool) {
	if v, ok := entry.Metadata[key]; ok {
		return v, true
	}
	if attrs, ok := e.provider.Attributes(entry.Path); ok {
		v, ok := attrs[key]
		return v, ok
	}
	return "", false
}
