package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestResolver(srv *httptest.Server) *Resolver {
	r := NewResolver(srv.Client(), zap.NewNop())
	r.endpoints = endpoints{
		glVersionURL: srv.URL + "/gl/android",
		glServerURL:  srv.URL + "/gl/version-check",
		jpInfoURL:    srv.URL + "/jp/index.json",
		cnInfoURL:    srv.URL + "/cn/state",
	}
	return r
}

func TestResolveJP(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/jp/index.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"LatestClientVersion":"r75","AddressablesCatalogUrlRoot":%q}`, srv.URL+"/jp/catalog")
	})
	mux.HandleFunc("/jp/catalog/r75/Android/bundleDownloadInfo.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"BundleFiles":[{"Name":"academy-_mxload-2018_assets_all.bundle","Size":1024,"Crc":3735928559}]}`)
	})
	mux.HandleFunc("/jp/catalog/r75/MediaResources/MediaCatalog.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Table":{"a":{"path":"Audio/VOC_JP/Aru.mp3","bytes":512,"crc":17}}}`)
	})
	mux.HandleFunc("/jp/catalog/r75/TableBundles/TableCatalog.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Table":{"b":{"file_name":"Excel.zip","bytes":2048,"crc":99}}}`)
	})

	r := newTestResolver(srv)
	m, err := r.Resolve(context.Background(), RegionJP, "")
	require.NoError(t, err)

	assert.Equal(t, RegionJP, m.Region)
	assert.Equal(t, "r75", m.Version)
	require.Equal(t, 3, m.Len())
	assert.Equal(t, int64(3584), m.TotalSize())

	byPath := make(map[string]Entry, m.Len())
	for _, e := range m.Entries {
		byPath[e.Path] = e
	}

	bundle := byPath["academy-_mxload-2018_assets_all.bundle"]
	assert.Equal(t, TypeBundle, bundle.Type)
	assert.Equal(t, HashCRC32, bundle.Hash)
	assert.Equal(t, "3735928559", bundle.ContentHash)
	assert.Equal(t, srv.URL+"/jp/catalog/r75/Android/academy-_mxload-2018_assets_all.bundle", bundle.URL)

	media := byPath["Audio/VOC_JP/Aru.mp3"]
	assert.Equal(t, TypeMedia, media.Type)
	assert.Equal(t, srv.URL+"/jp/catalog/r75/MediaResources/Audio/VOC_JP/Aru.mp3", media.URL)

	table := byPath["Excel.zip"]
	assert.Equal(t, TypeTable, table.Type)
	assert.Equal(t, int64(2048), table.Size)
}

func TestResolveGL(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/gl/android", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html>Blue Archive 1.38.123456 APK</html>`)
	})
	mux.HandleFunc("/gl/version-check", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		fmt.Fprintf(w, `{"patch":{"resource_path":%q}}`, srv.URL+"/gl/resources/resource-data.json")
	})
	mux.HandleFunc("/gl/resources/resource-data.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"resources":[
			{"group":"bundle","resource_path":"Android/bundle1","resource_size":10,"resource_hash":"AABBCC"},
			{"group":"mediaresources","resource_path":"Media/clip.mp4","resource_size":20,"resource_hash":"ddeeff"}
		]}`)
	})

	t.Run("LatestVersion", func(t *testing.T) {
		r := newTestResolver(srv)
		m, err := r.Resolve(context.Background(), RegionGL, "")
		require.NoError(t, err)

		assert.Equal(t, "1.38.123456", m.Version)
		require.Equal(t, 2, m.Len())
		assert.Equal(t, HashMD5, m.Entries[0].Hash)
		assert.Equal(t, TypeBundle, m.Entries[0].Type)
		assert.Equal(t, TypeMedia, m.Entries[1].Type)
		assert.Equal(t, srv.URL+"/gl/resources/Android/bundle1", m.Entries[0].URL)
	})

	t.Run("ExplicitVersion", func(t *testing.T) {
		r := newTestResolver(srv)
		m, err := r.Resolve(context.Background(), RegionGL, "1.37.999999")
		require.NoError(t, err)
		assert.Equal(t, "1.37.999999", m.Version)
	})
}

func TestResolveCN(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/cn/state", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"AddressablesCatalogUrlRoot":%q,"LatestClientVersion":"1.5.0"}`, srv.URL+"/cn/root")
	})
	mux.HandleFunc("/cn/root/Manifest/Catalog.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"bundles":[{"name":"b1.bundle","size":1,"md5":"aa"}],
			"medias":[{"name":"m1.mp3","size":2,"md5":"bb"}],
			"tables":[{"name":"t1.zip","size":3,"md5":"cc"}]
		}`)
	})

	r := newTestResolver(srv)
	m, err := r.Resolve(context.Background(), RegionCN, "")
	require.NoError(t, err)

	assert.Equal(t, "1.5.0", m.Version)
	require.Equal(t, 3, m.Len())
	assert.Equal(t, srv.URL+"/cn/root/AssetBundles/b1.bundle", m.Entries[0].URL)
	assert.Equal(t, srv.URL+"/cn/root/MediaResources/m1.mp3", m.Entries[1].URL)
	assert.Equal(t, srv.URL+"/cn/root/TableBundles/t1.zip", m.Entries[2].URL)
	for _, e := range m.Entries {
		assert.Equal(t, HashMD5, e.Hash)
	}
}

func TestResolveExplicitVersionIgnoredOutsideGL(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/cn/state", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"AddressablesCatalogUrlRoot":%q,"LatestClientVersion":"2.0.0"}`, srv.URL+"/cn/root")
	})
	mux.HandleFunc("/cn/root/Manifest/Catalog.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"bundles":[{"name":"b1.bundle","size":1,"md5":"aa"}]}`)
	})

	r := newTestResolver(srv)
	m, err := r.Resolve(context.Background(), RegionCN, "9.9.9")
	require.NoError(t, err)
	// Pinning is a GL capability; other regions resolve the latest version.
	assert.Equal(t, "2.0.0", m.Version)
}

func TestResolveErrors(t *testing.T) {
	t.Run("Unavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		r := newTestResolver(srv)
		_, err := r.Resolve(context.Background(), RegionJP, "")
		assert.ErrorIs(t, err, ErrCatalogUnavailable)
	})

	t.Run("ParseFailure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `<html>maintenance page</html>`)
		}))
		defer srv.Close()

		r := newTestResolver(srv)
		_, err := r.Resolve(context.Background(), RegionJP, "")
		assert.ErrorIs(t, err, ErrCatalogParse)
	})

	t.Run("EmptyCatalog", func(t *testing.T) {
		mux := http.NewServeMux()
		srv := httptest.NewServer(mux)
		defer srv.Close()

		mux.HandleFunc("/cn/state", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, `{"AddressablesCatalogUrlRoot":%q}`, srv.URL+"/cn/root")
		})
		mux.HandleFunc("/cn/root/Manifest/Catalog.json", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{}`)
		})

		r := newTestResolver(srv)
		_, err := r.Resolve(context.Background(), RegionCN, "")
		assert.ErrorIs(t, err, ErrCatalogParse)
	})

	t.Run("JPRowWithoutName", func(t *testing.T) {
		mux := http.NewServeMux()
		srv := httptest.NewServer(mux)
		defer srv.Close()

		mux.HandleFunc("/jp/index.json", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, `{"LatestClientVersion":"r75","AddressablesCatalogUrlRoot":%q}`, srv.URL+"/jp/catalog")
		})
		mux.HandleFunc("/jp/catalog/r75/Android/bundleDownloadInfo.json", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"BundleFiles":[]}`)
		})
		mux.HandleFunc("/jp/catalog/r75/MediaResources/MediaCatalog.json", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"Table":{"a":{"bytes":512,"crc":17}}}`)
		})
		mux.HandleFunc("/jp/catalog/r75/TableBundles/TableCatalog.json", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"Table":{}}`)
		})

		r := newTestResolver(srv)
		_, err := r.Resolve(context.Background(), RegionJP, "")
		assert.ErrorIs(t, err, ErrCatalogParse)
	})

	t.Run("UnknownRegion", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()

		r := newTestResolver(srv)
		_, err := r.Resolve(context.Background(), Region("kr"), "")
		assert.Error(t, err)
	})
}
