package mastodon_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postlinehq/postline/internal/platform"
	"github.com/postlinehq/postline/internal/platform/mastodon"
)

func newTestClient(t *testing.T, handler http.Handler) *mastodon.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := mastodon.New(mastodon.Config{
		Server:       server.URL,
		ClientID:     "client-id",
		ClientSecret: "client-secret",
	})
	require.NoError(t, err)
	return client
}

func TestNewMissingConfig(t *testing.T) {
	_, err := mastodon.New(mastodon.Config{Server: "https://mas.example"})

	var cerr platform.ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "mastodon", cerr.Provider)
	assert.Len(t, cerr.Missing, 2)
}

func TestAuthURLUsesSpaceSeparatedScopes(t *testing.T) {
	client := newTestClient(t, http.NotFoundHandler())

	authURL, err := client.AuthURL("user-3", "https://app.example/cb")
	require.NoError(t, err)

	parsed, err := url.Parse(authURL.URL)
	require.NoError(t, err)
	assert.Equal(t, "/oauth/authorize", parsed.Path)
	assert.Equal(t, "read write", parsed.Query().Get("scope"))
	assert.Equal(t, "code", parsed.Query().Get("response_type"))

	userID, err := platform.UserIDFromState(parsed.Query().Get("state"))
	require.NoError(t, err)
	assert.Equal(t, "user-3", userID)
}

func TestHandleCallbackStampsDefaultWindow(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/oauth/token", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"masto-token","token_type":"bearer","scope":"read write","created_at":1700000000}`))
	}))

	before := time.Now()
	pair, err := client.HandleCallback(context.Background(), "auth-code", "https://app.example/cb")
	require.NoError(t, err)

	assert.Equal(t, "masto-token", pair.AccessToken)
	assert.WithinDuration(t, before.Add(platform.DefaultTokenTTL), pair.ExpiresAt, time.Minute)
}

func TestPublishAppendsMediaURL(t *testing.T) {
	var form url.Values
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/statuses", r.URL.Path)
		require.NoError(t, r.ParseForm())
		form = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"109", "url":"https://mas.example/@brand/109"}`))
	}))

	result, err := client.Publish(context.Background(), "tok", platform.Content{
		Caption:   "Hello",
		Hashtags:  []string{"launch"},
		MediaURL:  "http://x/img.png",
		MediaType: platform.MediaImage,
	})
	require.NoError(t, err)

	status := form.Get("status")
	assert.Contains(t, status, "#launch")
	assert.Contains(t, status, "http://x/img.png")
	assert.Equal(t, "109", result.PostID)
	assert.Equal(t, "https://mas.example/@brand/109", result.PostURL)
}

func TestPostMetricsFromStatusCounters(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/statuses/109", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"109","replies_count":4,"reblogs_count":6,"favourites_count":10}`))
	}))

	m, err := client.PostMetrics(context.Background(), "tok", "109")
	require.NoError(t, err)

	assert.Equal(t, int64(10), m.Likes)
	assert.Equal(t, int64(4), m.Comments)
	assert.Equal(t, int64(6), m.Shares)
	assert.Equal(t, int64(20), m.Impressions)
	assert.Zero(t, m.EngagementRate)
}

func TestPostMetricsDegradesOnFailure(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))

	m, err := client.PostMetrics(context.Background(), "tok", "gone")
	require.NoError(t, err, "metrics collection is best-effort")
	assert.Zero(t, m.Likes)
	require.Len(t, m.Diagnostics, 1)
	assert.Equal(t, "status_counters", m.Diagnostics[0].Metric)
}

func TestAccountMetricsFollowers(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/accounts/verify_credentials", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"55","username":"brand","followers_count":321,"avatar":"https://cdn/a.png"}`))
	}))

	m, err := client.AccountMetrics(context.Background(), "tok", "")
	require.NoError(t, err)
	assert.Equal(t, int64(321), m.Followers)
}
