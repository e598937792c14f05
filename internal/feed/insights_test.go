package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/radiusdt/vector-etl/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testMetaConfig(baseURL string) config.MetaConfig {
	return config.MetaConfig{
		BaseURL:     baseURL,
		APIVersion:  "v19.0",
		AdAccountID: "act_123",
		AccessToken: "token",
		RPS:         1000,
		Burst:       1000,
	}
}

func TestInsightsFetchDay(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, `{"data":[
			{"date_start":"2024-03-10","ad_id":"a1","ad_name":"NK_1","impressions":"100","clicks":"2","spend":"5.0"},
			{"date_start":"2024-03-10","ad_id":"a2","ad_name":"NK_2","impressions":"200","clicks":"4","spend":"9.0"}
		]}`)
	}))
	defer srv.Close()

	c := NewInsightsClient(testMetaConfig(srv.URL), zap.NewNop())

	rows, err := c.FetchDay(context.Background(), "2024-03-10")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "/v19.0/act_123/insights", gotPath)
	assert.Contains(t, gotQuery, "level=ad")
	assert.Contains(t, gotQuery, "access_token=token")
	assert.Equal(t, "a1", rows[0].AdID)
	assert.Equal(t, "100", rows[0].Impressions)
}

func TestInsightsFetchDayFollowsPaging(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("after") == "" {
			fmt.Fprintf(w, `{"data":[{"ad_id":"a1"}],"paging":{"next":"%s/v19.0/act_123/insights?after=c1"}}`, srv.URL)
			return
		}
		fmt.Fprint(w, `{"data":[{"ad_id":"a2"}]}`)
	}))
	defer srv.Close()

	c := NewInsightsClient(testMetaConfig(srv.URL), zap.NewNop())

	rows, err := c.FetchDay(context.Background(), "2024-03-10")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "a2", rows[1].AdID)
}

func TestInsightsFetchDayGraphError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"message":"Invalid OAuth access token","type":"OAuthException","code":190}}`)
	}))
	defer srv.Close()

	c := NewInsightsClient(testMetaConfig(srv.URL), zap.NewNop())

	_, err := c.FetchDay(context.Background(), "2024-03-10")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid OAuth access token")
	assert.Contains(t, err.Error(), "code 190")
}

func TestInsightsFetchDayMissingPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	c := NewInsightsClient(testMetaConfig(srv.URL), zap.NewNop())

	_, err := c.FetchDay(context.Background(), "2024-03-10")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no data payload")
}

func TestInsightsFetchDayEmptyDay(t *testing.T) {
	// an empty-but-present data array is a valid zero-row day
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[]}`)
	}))
	defer srv.Close()

	c := NewInsightsClient(testMetaConfig(srv.URL), zap.NewNop())

	rows, err := c.FetchDay(context.Background(), "2024-03-10")
	require.NoError(t, err)
	assert.Empty(t, rows)
}
