package platform

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderCaptionHashtags(t *testing.T) {
	content := Content{
		Caption:  "Launch day",
		Hashtags: []string{"foo", "#bar"},
	}

	rendered := content.RenderCaption()
	assert.Contains(t, rendered, "#foo")
	assert.Contains(t, rendered, "#bar")
	assert.NotContains(t, rendered, "##")
	assert.True(t, strings.HasPrefix(rendered, "Launch day"))
}

func TestRenderCaptionNoHashtags(t *testing.T) {
	content := Content{Caption: "plain"}
	assert.Equal(t, "plain", content.RenderCaption())
}

func TestRenderCaptionSkipsEmptyTags(t *testing.T) {
	content := Content{Hashtags: []string{"", "  ", "go"}}
	assert.Equal(t, "#go", content.RenderCaption())
}

func TestNewTokenPairDefaultsTo60Days(t *testing.T) {
	before := time.Now()
	pair := NewTokenPair("tok", 0, []string{"read"})

	require.True(t, pair.ExpiresAt.After(before))
	assert.WithinDuration(t, before.Add(DefaultTokenTTL), pair.ExpiresAt, time.Minute)
	assert.False(t, pair.Expired(time.Now()))
	assert.True(t, pair.Expired(pair.ExpiresAt))
}

func TestNewTokenPairHonorsProviderExpiry(t *testing.T) {
	pair := NewTokenPair("tok", time.Hour, nil)
	assert.WithinDuration(t, time.Now().Add(time.Hour), pair.ExpiresAt, time.Minute)
}

func TestAccessTokenForPrefersPageToken(t *testing.T) {
	account := Account{ID: "1", PageAccessToken: "page-token"}
	assert.Equal(t, "page-token", account.AccessTokenFor("user-token"))

	account.PageAccessToken = ""
	assert.Equal(t, "user-token", account.AccessTokenFor("user-token"))
}

func TestEngagementRateZeroReach(t *testing.T) {
	assert.Zero(t, EngagementRate(500, 0))
	assert.Zero(t, EngagementRate(0, 0))
	assert.InDelta(t, 25.0, EngagementRate(25, 100), 0.001)
}
