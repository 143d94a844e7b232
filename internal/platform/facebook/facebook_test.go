package facebook_test

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
	"github.com/postlinehq/postline/internal/platform/facebook"
)

func newTestClient(t *testing.T, handler http.Handler) *facebook.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := facebook.New(facebook.Config{
		AppID:     "app-id",
		AppSecret: "app-secret",
		GraphURL:  server.URL,
		DialogURL: server.URL + "/dialog/oauth",
	})
	require.NoError(t, err)
	return client
}

func TestNewMissingCredentials(t *testing.T) {
	_, err := facebook.New(facebook.Config{})

	var cerr platform.ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "facebook", cerr.Provider)
	assert.Len(t, cerr.Missing, 2)
}

func TestAuthURLEmbedsUserInState(t *testing.T) {
	client := newTestClient(t, http.NotFoundHandler())

	authURL, err := client.AuthURL("user-42", "https://app.example/cb")
	require.NoError(t, err)

	parsed, err := url.Parse(authURL.URL)
	require.NoError(t, err)
	query := parsed.Query()

	assert.Equal(t, "app-id", query.Get("client_id"))
	assert.Equal(t, "https://app.example/cb", query.Get("redirect_uri"))
	assert.Equal(t, "code", query.Get("response_type"))
	assert.Contains(t, query.Get("scope"), "pages_manage_posts,")
	assert.Equal(t, authURL.State, query.Get("state"))

	userID, err := platform.UserIDFromState(query.Get("state"))
	require.NoError(t, err)
	assert.Equal(t, "user-42", userID)
}

func TestHandleCallbackChainsExchangesAndDefaultsExpiry(t *testing.T) {
	var calls []string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/oauth/access_token", r.URL.Path)
		q := r.URL.Query()
		if q.Get("grant_type") == "fb_exchange_token" {
			calls = append(calls, "long")
			assert.Equal(t, "short-token", q.Get("fb_exchange_token"))
			// no expires_in: the 60-day default window applies
			w.Write([]byte(`{"access_token":"long-token"}`))
			return
		}
		calls = append(calls, "short")
		assert.Equal(t, "auth-code", q.Get("code"))
		assert.Equal(t, "https://app.example/cb", q.Get("redirect_uri"))
		w.Write([]byte(`{"access_token":"short-token","expires_in":3600}`))
	}))

	before := time.Now()
	pair, err := client.HandleCallback(context.Background(), "auth-code", "https://app.example/cb")
	require.NoError(t, err)

	assert.Equal(t, []string{"short", "long"}, calls)
	assert.Equal(t, "long-token", pair.AccessToken)
	assert.True(t, pair.ExpiresAt.After(before))
	assert.WithinDuration(t, before.Add(platform.DefaultTokenTTL), pair.ExpiresAt, time.Minute)
}

func TestHandleCallbackSurfacesProviderError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":{"message":"Invalid verification code format.","code":100}}`))
	}))

	_, err := client.HandleCallback(context.Background(), "bad-code", "https://app.example/cb")

	var perr *platform.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "facebook", perr.Provider)
	assert.Contains(t, perr.Message, "Invalid verification code")
}

func TestRefreshTokenRerunsLongLivedExchange(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		require.Equal(t, "fb_exchange_token", q.Get("grant_type"))
		require.Equal(t, "old-token", q.Get("fb_exchange_token"))
		w.Write([]byte(`{"access_token":"new-token","expires_in":5184000}`))
	}))

	pair, err := client.RefreshToken(context.Background(), "old-token")
	require.NoError(t, err)
	assert.Equal(t, "new-token", pair.AccessToken)
	assert.True(t, pair.ExpiresAt.After(time.Now()))
}

func TestAccountPrefersPageOverProfile(t *testing.T) {
	var profileFetched bool
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/me/accounts":
			w.Write([]byte(`{"data":[
				{"id":"page-1","name":"First Page","access_token":"page-token","picture":{"data":{"url":"https://cdn/p.png"}}},
				{"id":"page-2","name":"Second Page","access_token":"other-token"}
			]}`))
		case "/me":
			profileFetched = true
			w.Write([]byte(`{"id":"user-1","name":"Personal"}`))
		default:
			http.NotFound(w, r)
		}
	}))

	account, err := client.Account(context.Background(), "user-token")
	require.NoError(t, err)

	assert.False(t, profileFetched, "profile must not be consulted when a page exists")
	assert.Equal(t, "page-1", account.ID)
	assert.Equal(t, platform.AccountPage, account.Type)
	assert.Equal(t, "page-token", account.PageAccessToken)
	assert.Equal(t, "page-token", account.AccessTokenFor("user-token"))
}

func TestAccountFallsBackToProfile(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/me/accounts":
			w.Write([]byte(`{"data":[]}`))
		case "/me":
			w.Write([]byte(`{"id":"user-1","name":"Personal","picture":{"data":{"url":"https://cdn/a.png"}}}`))
		default:
			http.NotFound(w, r)
		}
	}))

	account, err := client.Account(context.Background(), "user-token")
	require.NoError(t, err)
	assert.Equal(t, "user-1", account.ID)
	assert.Equal(t, platform.AccountProfile, account.Type)
	assert.Empty(t, account.PageAccessToken)
}

func TestPublishImageBuildsPermalink(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/me/photos", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "http://x/img.png", r.PostForm.Get("url"))
		assert.Contains(t, r.PostForm.Get("caption"), "Hello")
		assert.Contains(t, r.PostForm.Get("caption"), "#launch")
		w.Write([]byte(`{"id":"789","post_id":"123_456"}`))
	}))

	result, err := client.Publish(context.Background(), "tok", platform.Content{
		Caption:   "Hello",
		Hashtags:  []string{"launch"},
		MediaURL:  "http://x/img.png",
		MediaType: platform.MediaImage,
	})
	require.NoError(t, err)
	assert.Equal(t, "123_456", result.PostID)
	assert.Equal(t, "https://www.facebook.com/123_456", result.PostURL)
}

func TestPublishTextRequiresCaption(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no network call expected")
	}))

	_, err := client.Publish(context.Background(), "tok", platform.Content{})

	var verr platform.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "facebook", verr.Provider)
}

func TestPublishTargetsAccountID(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/page-9/feed", r.URL.Path)
		w.Write([]byte(`{"id":"page-9_100"}`))
	}))

	result, err := client.Publish(context.Background(), "tok", platform.Content{
		Caption:   "status",
		AccountID: "page-9",
	})
	require.NoError(t, err)
	assert.Equal(t, "page-9_100", result.PostID)
}
