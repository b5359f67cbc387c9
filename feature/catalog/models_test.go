package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRegion(t *testing.T) {
	cases := []struct {
		input   string
		want    Region
		wantErr bool
	}{
		{"jp", RegionJP, false},
		{"GL", RegionGL, false},
		{" cn ", RegionCN, false},
		{"kr", "", true},
		{"", "", true},
	}

	for _, tc := range cases {
		got, err := ParseRegion(tc.input)
		if tc.wantErr {
			assert.Error(t, err, "input %q", tc.input)
		} else {
			assert.NoError(t, err, "input %q", tc.input)
			assert.Equal(t, tc.want, got)
		}
	}
}

func TestRegionHashKind(t *testing.T) {
	assert.Equal(t, HashMD5, RegionCN.HashKind())
	assert.Equal(t, HashMD5, RegionGL.HashKind())
	assert.Equal(t, HashCRC32, RegionJP.HashKind())
}

func TestRegionSupportsExtraction(t *testing.T) {
	// Media extraction works everywhere.
	for _, region := range Regions() {
		assert.True(t, region.SupportsExtraction(TypeMedia), "region %s", region)
	}

	// Bundle and table extraction are JP only.
	assert.True(t, RegionJP.SupportsExtraction(TypeBundle))
	assert.True(t, RegionJP.SupportsExtraction(TypeTable))
	assert.False(t, RegionGL.SupportsExtraction(TypeBundle))
	assert.False(t, RegionCN.SupportsExtraction(TypeTable))
}

func TestDigest(t *testing.T) {
	data := []byte("hello world")

	t.Run("MD5", func(t *testing.T) {
		assert.Equal(t, "5eb63bbbe01eeed093cb22bb8f5acdc3", Digest(HashMD5, data))
	})

	t.Run("CRC32", func(t *testing.T) {
		assert.Equal(t, "222957957", Digest(HashCRC32, data))
	})

	t.Run("VerifyCaseInsensitive", func(t *testing.T) {
		assert.True(t, VerifyDigest(HashMD5, data, "5EB63BBBE01EEED093CB22BB8F5ACDC3"))
		assert.False(t, VerifyDigest(HashMD5, data, "deadbeef"))
		assert.True(t, VerifyDigest(HashCRC32, data, "222957957"))
		assert.False(t, VerifyDigest(HashCRC32, data, "0"))
	})
}

func TestManifestHelpers(t *testing.T) {
	m := &Manifest{
		Region:  RegionJP,
		Version: "r75",
		Entries: []Entry{
			{Path: "b", Size: 2},
			{Path: "a", Size: 1},
			{Path: "c", Size: 4},
		},
	}

	assert.Equal(t, 3, m.Len())
	assert.Equal(t, int64(7), m.TotalSize())

	m.SortByPath()
	assert.Equal(t, "a", m.Entries[0].Path)
	assert.Equal(t, "c", m.Entries[2].Path)

	sub := m.Subset(m.Entries[:1])
	assert.Equal(t, RegionJP, sub.Region)
	assert.Equal(t, "r75", sub.Version)
	assert.Equal(t, 1, sub.Len())
	assert.Equal(t, 3, m.Len(), "subset must not modify the receiver")
}
