package search

// MetadataProvider supplies the character metadata backing advanced search.
// It is an external capability: implementations are built from extracted game
// tables and may be unavailable when those tables were never extracted.
type MetadataProvider interface {
	// DisplayName returns the human-readable name associated with a catalog
	// path, if one is known.
	DisplayName(path string) (string, bool)

	// Attributes returns the attribute map (cv, school, club, ...) associated
	// with a catalog path, if one is known.
	Attributes(path string) (map[string]string, bool)

	// Aliases returns alternative spellings for a keyword (e.g. romanized and
	// kana forms of a character name). May return nil.
	Aliases(keyword string) []string
}
