package cloudflare

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := New(Credentials{
		APIBase:  srv.URL,
		APIToken: "test-token",
	}, Config{}, zap.NewNop())
	return client, srv
}

func TestListZonesPagination(t *testing.T) {
	var pagesServed []string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		pagesServed = append(pagesServed, page)

		assert.Equal(t, "acc1", r.URL.Query().Get("account.id"))
		assert.Equal(t, "50", r.URL.Query().Get("per_page"))

		fmt.Fprintf(w, `{
			"success": true,
			"result": [{"id": "zone-%s", "name": "z%s.example"}],
			"result_info": {"page": %s, "total_pages": 3}
		}`, page, page, page)
	}))

	zones, err := client.ListZones(context.Background(), "acc1")
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "2", "3"}, pagesServed)
	require.Len(t, zones, 3)
	assert.Equal(t, "zone-1", zones[0].ID)
	assert.Equal(t, "zone-3", zones[2].ID)
	assert.NotEmpty(t, zones[0].Raw)
}

func TestListZonesSinglePageWithoutResultInfo(t *testing.T) {
	requests := 0
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		fmt.Fprint(w, `{"success": true, "result": [{"id": "z1"}]}`)
	}))

	zones, err := client.ListZones(context.Background(), "acc1")
	require.NoError(t, err)
	assert.Equal(t, 1, requests)
	assert.Len(t, zones, 1)
}

func TestAuthHeadersToken(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Empty(t, r.Header.Get("X-Auth-Email"))
		fmt.Fprint(w, `{"success": true, "result": []}`)
	}))

	_, err := client.ListZones(context.Background(), "acc1")
	require.NoError(t, err)
}

func TestAuthHeadersEmailKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.Equal(t, "ops@example.com", r.Header.Get("X-Auth-Email"))
		assert.Equal(t, "legacy-key", r.Header.Get("X-Auth-Key"))
		fmt.Fprint(w, `{"success": true, "result": []}`)
	}))
	defer srv.Close()

	client := New(Credentials{
		APIBase: srv.URL,
		Email:   "ops@example.com",
		APIKey:  "legacy-key",
	}, Config{}, zap.NewNop())

	_, err := client.ListZones(context.Background(), "acc1")
	require.NoError(t, err)
}

func TestListRecordsErrorClassification(t *testing.T) {
	t.Run("http error status", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `{"success": false, "errors": [{"code": 9109, "message": "Invalid access token"}]}`)
		}))

		_, err := client.ListRecords(context.Background(), "zone-1")
		require.Error(t, err)
		assert.True(t, IsAPIError(err))

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
		assert.Contains(t, apiErr.Message, "Invalid access token")
	})

	t.Run("success false with 200", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"success": false, "errors": [{"message": "quota exceeded"}]}`)
		}))

		_, err := client.ListRecords(context.Background(), "zone-1")
		require.Error(t, err)
		assert.True(t, IsAPIError(err))
		assert.Contains(t, err.Error(), "quota exceeded")
	})

	t.Run("unparsable body", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "<html>gateway timeout</html>")
		}))

		_, err := client.ListRecords(context.Background(), "zone-1")
		require.Error(t, err)
		assert.True(t, IsAPIError(err))
	})

	t.Run("transport failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close() // connection refused from here on

		client := New(Credentials{APIBase: srv.URL, APIToken: "x"}, Config{}, zap.NewNop())
		_, err := client.ListRecords(context.Background(), "zone-1")
		require.Error(t, err)

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, 0, apiErr.StatusCode)
	})
}

func TestErrorMessageTruncated(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		for i := 0; i < 100; i++ {
			fmt.Fprint(w, "<html>very long upstream error page</html>")
		}
	}))

	_, err := client.ListRecords(context.Background(), "zone-1")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.LessOrEqual(t, len(apiErr.Message), maxErrorMessage)
}

func TestListLoadBalancersSoftFailure(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"success": false, "errors": [{"message": "load balancing not enabled"}]}`)
	}))

	balancers := client.ListLoadBalancers(context.Background(), "zone-1")
	assert.Empty(t, balancers)
}

func TestGetPool(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/accounts/acc1/load_balancers/pools/pool-1", r.URL.Path)
		fmt.Fprint(w, `{
			"success": true,
			"result": {
				"id": "pool-1",
				"name": "eu-pool",
				"enabled": true,
				"minimum_origins": 2,
				"notification_filter": {"pool": {"healthy": true}},
				"origins": [
					{"name": "web-1", "address": "192.0.2.10", "weight": 0.5,
					 "header": {"Host": ["web.example.com"]}}
				]
			}
		}`)
	}))

	pool, err := client.GetPool(context.Background(), "acc1", "pool-1")
	require.NoError(t, err)

	assert.Equal(t, "eu-pool", pool.Name)
	assert.Equal(t, 2, pool.MinimumOrigins)
	assert.True(t, pool.NotifiesPoolEvents())
	require.Len(t, pool.Origins, 1)
	assert.Equal(t, "web.example.com", pool.Origins[0].HostHeader())
}

func TestNotifiesPoolEvents(t *testing.T) {
	var pool Pool
	assert.False(t, pool.NotifiesPoolEvents())

	require.NoError(t, json.Unmarshal([]byte(`{"notification_filter": {"origin": {}}}`), &pool))
	assert.False(t, pool.NotifiesPoolEvents())

	require.NoError(t, json.Unmarshal([]byte(`{"notification_filter": {"pool": {}}}`), &pool))
	assert.True(t, pool.NotifiesPoolEvents())
}
