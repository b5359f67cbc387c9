package netclient_test

import (
	"net/http"
	"testing"

	"github.com/ZM-Kimu/Blue-Archive-Asset-Downloader/core/netclient"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		client, err := netclient.New(netclient.Config{})
		require.NoError(t, err)
		require.NotNil(t, client)

		transport, ok := client.Transport.(*http.Transport)
		require.True(t, ok)
		assert.NotNil(t, transport.Proxy)
		// Deadlines are applied per request via context, not on the client.
		assert.Zero(t, client.Timeout)
	})

	t.Run("ExplicitProxy", func(t *testing.T) {
		client, err := netclient.New(netclient.Config{ProxyURL: "http://127.0.0.1:8888"})
		require.NoError(t, err)

		transport := client.Transport.(*http.Transport)
		proxy, err := transport.Proxy(&http.Request{})
		require.NoError(t, err)
		require.NotNil(t, proxy)
		assert.Equal(t, "http://127.0.0.1:8888", proxy.String())
	})

	t.Run("InvalidProxy", func(t *testing.T) {
		client, err := netclient.New(netclient.Config{ProxyURL: "://bad"})
		assert.Error(t, err)
		assert.Nil(t, client)
	})
}
