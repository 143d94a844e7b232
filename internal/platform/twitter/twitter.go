// Package twitter implements the platform contract for X (Twitter) using
// OAuth 1.0a user-context credentials. Those credentials are static app
// configuration, so the code-grant lifecycle operations are unsupported and
// the per-call access token is ignored.
package twitter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/michimani/gotwi"
	"github.com/michimani/gotwi/fields"
	"github.com/michimani/gotwi/tweet/managetweet"
	managetweettypes "github.com/michimani/gotwi/tweet/managetweet/types"
	"github.com/michimani/gotwi/tweet/tweetlookup"
	tweetlookuptypes "github.com/michimani/gotwi/tweet/tweetlookup/types"
	"github.com/michimani/gotwi/user/userlookup"
	userlookuptypes "github.com/michimani/gotwi/user/userlookup/types"

	"github.com/postlinehq/postline/internal/logutil"
	"github.com/postlinehq/postline/internal/platform"
)

const (
	envAPIKey       = "POSTLINE_TWITTER_CONSUMER_KEY"
	envAPISecret    = "POSTLINE_TWITTER_CONSUMER_SECRET"
	envAccessToken  = "POSTLINE_TWITTER_ACCESS_TOKEN"
	envAccessSecret = "POSTLINE_TWITTER_ACCESS_TOKEN_SECRET"

	providerName = "twitter"

	permalinkTemplate = "https://x.com/i/web/status/%s"
)

var httpTimeout = 30 * time.Second

// Config captures the credentials required for OAuth 1.0a user-context
// requests.
type Config struct {
	APIKey       string
	APISecret    string
	AccessToken  string
	AccessSecret string
}

// FromEnv reads the OAuth 1.0a credentials from the environment.
func FromEnv() Config {
	return Config{
		APIKey:       strings.TrimSpace(os.Getenv(envAPIKey)),
		APISecret:    strings.TrimSpace(os.Getenv(envAPISecret)),
		AccessToken:  strings.TrimSpace(os.Getenv(envAccessToken)),
		AccessSecret: strings.TrimSpace(os.Getenv(envAccessSecret)),
	}
}

// Client implements platform.Platform for X (Twitter).
type Client struct {
	api *gotwi.Client
}

// New validates the configuration and builds the adapter.
func New(cfg Config) (*Client, error) {
	var missing []string
	if cfg.APIKey == "" {
		missing = append(missing, envAPIKey)
	}
	if cfg.APISecret == "" {
		missing = append(missing, envAPISecret)
	}
	if cfg.AccessToken == "" {
		missing = append(missing, envAccessToken)
	}
	if cfg.AccessSecret == "" {
		missing = append(missing, envAccessSecret)
	}
	if len(missing) > 0 {
		return nil, platform.ConfigError{Provider: providerName, Missing: missing}
	}

	api, err := gotwi.NewClient(&gotwi.NewClientInput{
		HTTPClient:           &http.Client{Timeout: httpTimeout},
		AuthenticationMethod: gotwi.AuthenMethodOAuth1UserContext,
		OAuthToken:           cfg.AccessToken,
		OAuthTokenSecret:     cfg.AccessSecret,
		APIKey:               cfg.APIKey,
		APIKeySecret:         cfg.APISecret,
	})
	if err != nil {
		return nil, fmt.Errorf("create X client: %w", err)
	}
	if !api.IsReady() {
		return nil, fmt.Errorf("twitter client not ready")
	}
	return &Client{api: api}, nil
}

// Name returns the provider identifier.
func (c *Client) Name() string { return providerName }

// AuthURL is unsupported: OAuth 1.0a credentials are static configuration.
func (c *Client) AuthURL(userID, redirectURI string) (platform.OAuthURL, error) {
	return platform.OAuthURL{}, platform.UnsupportedError{Provider: providerName, Op: "authorization-code flow"}
}

// HandleCallback is unsupported for the same reason as AuthURL.
func (c *Client) HandleCallback(ctx context.Context, code, redirectURI string) (platform.TokenPair, error) {
	return platform.TokenPair{}, platform.UnsupportedError{Provider: providerName, Op: "authorization-code flow"}
}

// RefreshToken is unsupported: OAuth 1.0a tokens do not expire.
func (c *Client) RefreshToken(ctx context.Context, accessToken string) (platform.TokenPair, error) {
	return platform.TokenPair{}, platform.UnsupportedError{Provider: providerName, Op: "token refresh"}
}

// Account resolves the authenticated user; there is no page tier on X.
func (c *Client) Account(ctx context.Context, accessToken string) (platform.Account, error) {
	res, err := userlookup.GetMe(ctx, c.api, &userlookuptypes.GetMeInput{
		UserFields: fields.UserFieldList{fields.UserFieldProfileImageUrl},
	})
	if err != nil {
		return platform.Account{}, providerError(err)
	}
	return platform.Account{
		ID:        strValue(res.Data.ID),
		Name:      strValue(res.Data.Username),
		Type:      platform.AccountProfile,
		AvatarURL: strValue(res.Data.ProfileImageURL),
	}, nil
}

// Publish creates a tweet from the rendered caption; remote media is
// referenced by URL in the tweet text.
func (c *Client) Publish(ctx context.Context, accessToken string, content platform.Content) (platform.PublishResult, error) {
	text := content.RenderCaption()
	if content.MediaURL != "" {
		if text != "" {
			text += "\n\n"
		}
		text += content.MediaURL
	}
	if text == "" {
		return platform.PublishResult{}, platform.ValidationError{Provider: providerName, Reason: "tweet requires a caption or media url"}
	}

	res, err := managetweet.Create(ctx, c.api, &managetweettypes.CreateInput{
		Text: gotwi.String(text),
	})
	if err != nil {
		return platform.PublishResult{}, fmt.Errorf("post tweet: %w", providerError(err))
	}

	tweetID := strValue(res.Data.ID)
	return platform.PublishResult{
		PostID:  tweetID,
		PostURL: fmt.Sprintf(permalinkTemplate, tweetID),
	}, nil
}

// PostMetrics reads the tweet's public metrics. X exposes no watch-time or
// save counters; those fields keep their zero defaults.
func (c *Client) PostMetrics(ctx context.Context, accessToken, postID string) (platform.PostMetrics, error) {
	var m platform.PostMetrics

	res, err := tweetlookup.Get(ctx, c.api, &tweetlookuptypes.GetInput{
		ID:          postID,
		TweetFields: fields.TweetFieldList{fields.TweetFieldPublicMetrics},
	})
	if err != nil {
		logutil.Warnf("twitter public metrics degraded: post=%s err=%v", postID, err)
		m.Degrade("public_metrics", providerError(err))
		return m, nil
	}

	pm := res.Data.PublicMetrics
	if pm == nil {
		m.Degrade("public_metrics", errors.New("tweet carried no public_metrics field"))
		return m, nil
	}
	m.Likes = int64(intValue(pm.LikeCount))
	m.Comments = int64(intValue(pm.ReplyCount))
	m.Shares = int64(intValue(pm.RetweetCount) + intValue(pm.QuoteCount))
	m.Impressions = m.Likes + m.Comments + m.Shares
	return m, nil
}

// AccountMetrics reports zero values; follower counts require elevated API
// access this credential tier does not carry.
func (c *Client) AccountMetrics(ctx context.Context, accessToken, accountID string) (platform.AccountMetrics, error) {
	var m platform.AccountMetrics
	m.Degrade("account_metrics", errors.New("not exposed at this API access tier"))
	return m, nil
}

func intValue(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func strValue(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

// providerError flattens a gotwi error into the provider-tagged taxonomy,
// keeping the API's own messages.
func providerError(err error) error {
	var gwErr *gotwi.GotwiError
	if !errors.As(err, &gwErr) || gwErr == nil {
		return err
	}

	parts := make([]string, 0, 4)
	if gwErr.Title != "" {
		parts = append(parts, gwErr.Title)
	}
	if gwErr.Detail != "" {
		parts = append(parts, gwErr.Detail)
	}
	for _, apiErr := range gwErr.APIErrors {
		if apiErr.Message != "" {
			parts = append(parts, apiErr.Message)
		}
	}
	if len(parts) == 0 {
		if msg := gwErr.Error(); msg != "" {
			parts = append(parts, msg)
		} else {
			parts = append(parts, "X API request failed")
		}
	}
	return &platform.ProviderError{Provider: providerName, Message: strings.Join(parts, "; ")}
}
