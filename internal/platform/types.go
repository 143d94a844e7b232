package platform

import (
	"strings"
	"time"
)

// DefaultTokenTTL is the validity window applied when a provider omits an
// expiry hint from a token exchange response.
const DefaultTokenTTL = 60 * 24 * time.Hour

// MediaType identifies the kind of media attached to a content unit.
type MediaType string

const (
	MediaNone  MediaType = ""
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// AccountType identifies what kind of identity an adapter resolved.
type AccountType string

const (
	AccountPage     AccountType = "page"
	AccountProfile  AccountType = "profile"
	AccountBusiness AccountType = "business"
)

// OAuthURL is a provider authorize URL plus the anti-forgery state embedded
// in it. The state carries the initiating user's identity (see NewState).
type OAuthURL struct {
	URL   string
	State string
}

// TokenPair is an access token with its absolute expiry and granted scopes.
type TokenPair struct {
	AccessToken string
	ExpiresAt   time.Time
	Scopes      []string
}

// NewTokenPair stamps an access token with an absolute expiry. A
// non-positive expiresIn means the provider gave no hint and the 60-day
// default window applies.
func NewTokenPair(accessToken string, expiresIn time.Duration, scopes []string) TokenPair {
	if expiresIn <= 0 {
		expiresIn = DefaultTokenTTL
	}
	return TokenPair{
		AccessToken: accessToken,
		ExpiresAt:   time.Now().Add(expiresIn),
		Scopes:      scopes,
	}
}

// Expired reports whether the token is no longer valid at the given time.
func (t TokenPair) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// Account is the identity an adapter resolved to operate as.
type Account struct {
	ID        string
	Name      string
	Type      AccountType
	AvatarURL string

	// PageAccessToken is a narrower-scoped token returned alongside page
	// and business accounts. When present it must be preferred over the
	// user-level token for publish and metrics calls on that account.
	PageAccessToken string
}

// AccessTokenFor returns the page-scoped token when the account carries one,
// otherwise the supplied user-level token.
func (a Account) AccessTokenFor(userToken string) string {
	if a.PageAccessToken != "" {
		return a.PageAccessToken
	}
	return userToken
}

// Content is a canonical content unit to publish.
type Content struct {
	Caption   string
	Hashtags  []string
	MediaURL  string
	MediaType MediaType

	// AccountID selects the target entity; empty means the caller's own
	// identity.
	AccountID string
}

// RenderCaption returns the caption with hashtags appended, each carrying
// exactly one leading '#' regardless of what the caller supplied.
func (c Content) RenderCaption() string {
	tags := make([]string, 0, len(c.Hashtags))
	for _, tag := range c.Hashtags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		tags = append(tags, "#"+strings.TrimPrefix(tag, "#"))
	}
	if len(tags) == 0 {
		return c.Caption
	}
	if c.Caption == "" {
		return strings.Join(tags, " ")
	}
	return c.Caption + "\n\n" + strings.Join(tags, " ")
}

// PublishResult identifies a published post on its provider.
type PublishResult struct {
	PostID  string
	PostURL string
}

// Diagnostic records a metrics sub-query that degraded to its zero value
// instead of failing the whole call.
type Diagnostic struct {
	Metric string
	Reason string
}

// PostMetrics is the canonical per-post metrics record. Fields a provider
// does not expose, or whose fetch failed, default to zero; failures are
// recorded in Diagnostics.
type PostMetrics struct {
	Views            int64
	Likes            int64
	Comments         int64
	Shares           int64
	Saves            int64
	WatchTimeSeconds int64
	AvgWatchPercent  float64
	ReachUnique      int64
	Impressions      int64
	EngagementRate   float64

	Diagnostics []Diagnostic
}

// Degrade records a sub-query failure; the corresponding fields keep their
// zero values.
func (m *PostMetrics) Degrade(metric string, err error) {
	m.Diagnostics = append(m.Diagnostics, Diagnostic{Metric: metric, Reason: err.Error()})
}

// AccountMetrics is the canonical per-account metrics record, with the same
// zero-default policy as PostMetrics.
type AccountMetrics struct {
	Followers         int64
	FollowersGrowth   int64
	TotalViews        int64
	TotalWatchMinutes int64
	AvgEngagementRate float64

	Diagnostics []Diagnostic
}

// Degrade records a sub-query failure; the corresponding fields keep their
// zero values.
func (m *AccountMetrics) Degrade(metric string, err error) {
	m.Diagnostics = append(m.Diagnostics, Diagnostic{Metric: metric, Reason: err.Error()})
}

// EngagementRate computes engaged users over reach as a percentage. A zero
// reach yields exactly zero, never a division error.
func EngagementRate(engaged, reach int64) float64 {
	if reach <= 0 {
		return 0
	}
	return float64(engaged) / float64(reach) * 100
}
