package catalog

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"hash/crc32"
	"sort"
	"strings"
)

// Region identifies one of the three independently versioned game deployments.
type Region string

const (
	RegionCN Region = "cn"
	RegionGL Region = "gl"
	RegionJP Region = "jp"
)

// Regions lists the known deployments.
func Regions() []Region {
	return []Region{RegionCN, RegionGL, RegionJP}
}

// ParseRegion converts a user-supplied region string into a Region.
func ParseRegion(s string) (Region, error) {
	switch Region(strings.ToLower(strings.TrimSpace(s))) {
	case RegionCN:
		return RegionCN, nil
	case RegionGL:
		return RegionGL, nil
	case RegionJP:
		return RegionJP, nil
	default:
		return "", fmt.Errorf("unknown region %q (expected cn, gl or jp)", s)
	}
}

// Valid reports whether the region is one of the known deployments.
func (r Region) Valid() bool {
	return r == RegionCN || r == RegionGL || r == RegionJP
}

// HashKind returns the digest scheme the region's catalog uses for change detection.
func (r Region) HashKind() HashKind {
	if r == RegionJP {
		return HashCRC32
	}
	return HashMD5
}

// SupportsExtraction reports whether the region supports end-to-end extraction for
// the given resource type. Bundle and table extraction is only documented for JP;
// media extraction is a plain copy and works everywhere.
func (r Region) SupportsExtraction(t ResourceType) bool {
	switch t {
	case TypeMedia:
		return true
	case TypeBundle, TypeTable:
		return r == RegionJP
	default:
		return false
	}
}

// ResourceType classifies a catalog entry's payload format.
type ResourceType string

const (
	TypeBundle ResourceType = "bundle"
	TypeMedia  ResourceType = "media"
	TypeTable  ResourceType = "table"
)

// HashKind identifies the digest scheme used for a catalog entry's content hash.
type HashKind string

const (
	// HashMD5 is a lowercase hex MD5 digest (CN and GL catalogs).
	HashMD5 HashKind = "md5"
	// HashCRC32 is an IEEE CRC32 checksum formatted as a decimal string (JP catalogs).
	HashCRC32 HashKind = "crc32"
)

// Digest computes the content hash of data under the given scheme, in the textual
// form the catalogs publish it.
func Digest(kind HashKind, data []byte) string {
	switch kind {
	case HashCRC32:
		return fmt.Sprintf("%d", crc32.ChecksumIEEE(data))
	default:
		sum := md5.Sum(data)
		return hex.EncodeToString(sum[:])
	}
}

// VerifyDigest reports whether data hashes to want under the given scheme.
// Comparison is case-insensitive because some catalogs publish uppercase hex.
func VerifyDigest(kind HashKind, data []byte, want string) bool {
	return strings.EqualFold(Digest(kind, data), want)
}

// Entry is one remote asset declared by a manifest.
type Entry struct {
	// Path uniquely identifies the entry within one (region, version) manifest.
	Path string

	// URL is the absolute content URL resolved from the region's content endpoint.
	URL string

	// ContentHash is the opaque digest used for change detection. Its scheme is
	// given by Hash and is not necessarily cryptographically strong.
	ContentHash string

	// Hash is the digest scheme of ContentHash.
	Hash HashKind

	// Size is the declared payload size in bytes.
	Size int64

	// Type classifies the payload format for extraction dispatch.
	Type ResourceType

	// Metadata carries optional free-form attributes used by advanced search
	// (cv, age, height, birthday, illustrator, school, club, ...).
	Metadata map[string]string
}

// Manifest is the immutable snapshot of one region catalog at one version.
type Manifest struct {
	Region  Region
	Version string
	Entries []Entry
}

// Len returns the number of entries in the manifest.
func (m *Manifest) Len() int {
	return len(m.Entries)
}

// TotalSize returns the sum of all declared entry sizes.
func (m *Manifest) TotalSize() int64 {
	var total int64
	for _, e := range m.Entries {
		total += e.Size
	}
	return total
}

// SortByPath orders entries by ascending path for deterministic processing.
func (m *Manifest) SortByPath() {
	sort.Slice(m.Entries, func(i, j int) bool {
		return m.Entries[i].Path < m.Entries[j].Path
	})
}

// Subset returns a manifest with the same region and version but only the given
// entries. The receiver is not modified.
func (m *Manifest) Subset(entries []Entry) *Manifest {
	return &Manifest{Region: m.Region, Version: m.Version, Entries: entries}
}
