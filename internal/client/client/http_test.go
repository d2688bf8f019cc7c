package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/kakeibo/internal/client/config"
	"github.com/dmitrijs2005/kakeibo/internal/client/models"
	"github.com/dmitrijs2005/kakeibo/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expense(id string, op models.Op) models.Expense {
	return models.Expense{
		ClientUUID: id,
		Date:       "2025-03-01",
		Amount:     1500,
		Category:   "食費",
		PaidBy:     models.PaidByHer,
		Op:         op,
		Status:     models.StatusPending,
		UpdatedAt:  "2025-03-01T10:00:00.000Z",
	}
}

func TestPushExpenses_SendsWireItemsAndParsesResult(t *testing.T) {
	var gotHeaders http.Header
	var gotBody map[string][]map[string]any
	var gotPath string

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		gotHeaders = r.Header.Clone()
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &gotBody)
		_, _ = w.Write([]byte(`{"ok_uuids":["a"],"ng_uuids":["b"]}`))
	}))
	defer ts.Close()

	withNote := expense("a", models.OpUpsert)
	withNote.Note = "ランチ"
	c := NewHTTPClient(config.NewStaticProvider(ts.URL+"///", "secret"))

	res, err := c.PushExpenses(context.Background(), []models.Expense{withNote, expense("b", models.OpDelete)})
	require.NoError(t, err)

	assert.Equal(t, models.SyncResult{OkUUIDs: []string{"a"}, NgUUIDs: []string{"b"}}, res)
	assert.Equal(t, "POST /sync/expenses", gotPath)
	assert.Equal(t, "application/json", gotHeaders.Get("Content-Type"))
	assert.Equal(t, "secret", gotHeaders.Get("X-API-Key"))

	require.Len(t, gotBody["items"], 2)
	first := gotBody["items"][0]
	assert.Equal(t, "a", first["client_uuid"])
	assert.Equal(t, "ランチ", first["note"])
	assert.EqualValues(t, 1500, first["amount"])
	assert.Equal(t, "upsert", first["op"])
	assert.NotContains(t, first, "status")
	assert.NotContains(t, first, "updated_at")

	second := gotBody["items"][1]
	assert.Equal(t, "delete", second["op"])
	assert.NotContains(t, second, "note")
}

func TestFetchExpenses_QueryAndDecode(t *testing.T) {
	var gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/summary/expenses", r.URL.Path)
		require.Equal(t, "k", r.Header.Get(common.AccessKeyHeaderName))
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`[
			{"id":7,"client_uuid":"u1","date":"2025-03-02","amount":800,"category":"外食","note":"x","paid_by":"me"},
			{"id":8,"date":"2025-03-01","amount":100,"category":"その他"}
		]`))
	}))
	defer ts.Close()

	c := NewHTTPClient(config.NewStaticProvider(ts.URL+"/api/", "k"))
	rows, err := c.FetchExpenses(context.Background(), "2025-02-01", "2025-03-14", 200, 400)
	require.NoError(t, err)

	assert.Equal(t, "end=2025-03-14&limit=200&offset=400&start=2025-02-01", gotQuery)
	require.Len(t, rows, 2)
	require.NotNil(t, rows[0].ClientUUID)
	assert.Equal(t, "u1", *rows[0].ClientUUID)
	assert.Equal(t, models.PaidByMe, *rows[0].PaidBy)
	assert.Nil(t, rows[1].ClientUUID)
	assert.Nil(t, rows[1].PaidBy)
}

func TestPing(t *testing.T) {
	status := "ok"
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/health", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
	}))
	defer ts.Close()

	c := NewHTTPClient(config.NewStaticProvider(ts.URL, "k"))
	require.NoError(t, c.Ping(context.Background()))

	status = "degraded"
	require.ErrorContains(t, c.Ping(context.Background()), "server unhealthy")
}

func TestConfigurationErrors_NoRequestIsMade(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer ts.Close()

	tests := map[string]config.Provider{
		"empty url":     config.NewStaticProvider("   ", "k"),
		"relative url":  config.NewStaticProvider("example.com/api", "k"),
		"bad scheme":    config.NewStaticProvider("ftp://example.com", "k"),
		"unparseable":   config.NewStaticProvider("http://[::1", "k"),
		"no access key": config.NewStaticProvider(ts.URL, " "),
	}

	for name, p := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewHTTPClient(p).PushExpenses(context.Background(), []models.Expense{expense("a", models.OpUpsert)})
			require.ErrorIs(t, err, common.ErrConfiguration)
		})
	}
	assert.Zero(t, hits.Load())
}

func TestUnauthorized_MapsToAuthentication(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid api key", http.StatusUnauthorized)
	}))
	defer ts.Close()

	_, err := NewHTTPClient(config.NewStaticProvider(ts.URL, "bad")).
		PushExpenses(context.Background(), []models.Expense{expense("a", models.OpUpsert)})
	require.ErrorIs(t, err, common.ErrAuthentication)
	require.False(t, errors.Is(err, common.ErrNetwork))
	require.False(t, errors.Is(err, common.ErrTimeout))
}

func TestOtherStatus_ReturnsStatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many items", http.StatusBadRequest)
	}))
	defer ts.Close()

	_, err := NewHTTPClient(config.NewStaticProvider(ts.URL, "k")).
		FetchExpenses(context.Background(), "2025-01-01", "2025-01-31", 200, 0)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadRequest, se.Code)
	assert.Equal(t, "HTTP 400: too many items", se.Error())
	assert.False(t, errors.Is(err, common.ErrAuthentication))
}

func TestTimeout_MapsToTimeoutError(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()
	defer close(release)

	c := NewHTTPClient(config.NewStaticProvider(ts.URL, "k"), WithTimeout(50*time.Millisecond))

	start := time.Now()
	_, err := c.PushExpenses(context.Background(), []models.Expense{expense("a", models.OpUpsert)})
	require.ErrorIs(t, err, common.ErrTimeout)
	assert.False(t, errors.Is(err, common.ErrNetwork))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestConnectionRefused_MapsToNetworkError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	addr := ts.URL
	ts.Close()

	err := NewHTTPClient(config.NewStaticProvider(addr, "k")).Ping(context.Background())
	require.ErrorIs(t, err, common.ErrNetwork)
	assert.False(t, errors.Is(err, common.ErrTimeout))
}

func TestCanceledContext_IsNeitherTimeoutNorNetwork(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewHTTPClient(config.NewStaticProvider(ts.URL, "k")).Ping(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, errors.Is(err, common.ErrTimeout))
	assert.False(t, errors.Is(err, common.ErrNetwork))
}

func TestMalformedJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok_uuids":`))
	}))
	defer ts.Close()

	_, err := NewHTTPClient(config.NewStaticProvider(ts.URL, "k")).
		PushExpenses(context.Background(), nil)
	require.ErrorContains(t, err, "failed to decode response")
}
