package search

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// RelationFile is the character relation document produced by the table
// extraction capability. It associates catalog file-name fragments with
// character display names, alias spellings and profile attributes.
type RelationFile struct {
	Version    string          `json:"version"`
	Characters []CharacterInfo `json:"characters"`
}

// CharacterInfo describes one character known to advanced search.
type CharacterInfo struct {
	// DisplayName is the human-readable character name.
	DisplayName string `json:"display_name"`

	// Aliases are alternative spellings (romanized, kana, developer names).
	Aliases []string `json:"aliases"`

	// Attributes is the profile attribute map (cv, age, height, birthday,
	// illustrator, school, club, ...).
	Attributes map[string]string `json:"attributes"`

	// Files are the catalog path fragments this character's assets use.
	Files []string `json:"files"`
}

// FileProvider implements MetadataProvider over a relation file.
type FileProvider struct {
	version    string
	characters []CharacterInfo
}

// LoadFileProvider reads a relation file from disk. A missing file is not an
// error for the caller to branch on specially; it simply means the capability
// is unavailable and the provider is nil.
func LoadFileProvider(path string) (*FileProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read relation file %q: %w", path, err)
	}

	var rel RelationFile
	if err := json.Unmarshal(data, &rel); err != nil {
		return nil, fmt.Errorf("decode relation file %q: %w", path, err)
	}
	return NewFileProvider(rel), nil
}

// NewFileProvider builds a provider from an in-memory relation document.
func NewFileProvider(rel RelationFile) *FileProvider {
	return &FileProvider{version: rel.Version, characters: rel.Characters}
}

// Version returns the game version the relation data was extracted from.
func (p *FileProvider) Version() string {
	return p.version
}

// DisplayName returns the display name of the character whose file fragments
// match the given catalog path.
func (p *FileProvider) DisplayName(path string) (string, bool) {
	if c := p.match(path); c != nil {
		return c.DisplayName, true
	}
	return "", false
}

// Attributes returns the profile attributes of the character whose file
// fragments match the given catalog path.
func (p *FileProvider) Attributes(path string) (map[string]string, bool) {
	if c := p.match(path); c != nil {
		return c.Attributes, true
	}
	return nil, false
}

// Aliases expands a keyword into the alias spellings and file fragments of
// every character it names.
func (p *FileProvider) Aliases(keyword string) []string {
	keyword = strings.ToLower(keyword)
	var out []string
	for i := range p.characters {
		c := &p.characters[i]
		if !p.nameMatches(c, keyword) {
			continue
		}
		out = append(out, c.Aliases...)
		out = append(out, c.Files...)
	}
	return out
}

func (p *FileProvider) nameMatches(c *CharacterInfo, keyword string) bool {
	if strings.Contains(strings.ToLower(c.DisplayName), keyword) {
		return true
	}
	for _, alias := range c.Aliases {
		if strings.Contains(strings.ToLower(alias), keyword) {
			return true
		}
	}
	return false
}

func (p *FileProvider) match(path string) *CharacterInfo {
	lower := strings.ToLower(path)
	for i := range p.characters {
		c := &p.characters[i]
		for _, fragment := range c.Files {
			if fragment != "" && strings.Contains(lower, strings.ToLower(fragment)) {
				return c
			}
		}
	}
	return nil
}
