// Package mastodon implements the platform contract for a Mastodon
// instance. The code flow exists but has no long-lived exchange step, so
// tokens carry the default validity window; media is referenced by URL in
// the status text since the API takes uploads, not remote URLs.
package mastodon

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	mastodonapi "github.com/mattn/go-mastodon"

	"github.com/postlinehq/postline/internal/logutil"
	"github.com/postlinehq/postline/internal/platform"
)

const (
	envServer       = "POSTLINE_MASTODON_SERVER"
	envClientID     = "POSTLINE_MASTODON_CLIENT_ID"
	envClientSecret = "POSTLINE_MASTODON_CLIENT_SECRET"

	providerName   = "mastodon"
	requestTimeout = 30 * time.Second
)

var scopes = []string{"read", "write"}

// Config contains the settings needed to reach a Mastodon server.
type Config struct {
	Server       string
	ClientID     string
	ClientSecret string
}

// FromEnv reads the server and app credentials from the environment.
func FromEnv() Config {
	return Config{
		Server:       strings.TrimSpace(os.Getenv(envServer)),
		ClientID:     strings.TrimSpace(os.Getenv(envClientID)),
		ClientSecret: strings.TrimSpace(os.Getenv(envClientSecret)),
	}
}

// Client implements platform.Platform for Mastodon.
type Client struct {
	cfg Config
}

// New validates the configuration and builds the adapter.
func New(cfg Config) (*Client, error) {
	var missing []string
	if cfg.Server == "" {
		missing = append(missing, envServer)
	}
	if cfg.ClientID == "" {
		missing = append(missing, envClientID)
	}
	if cfg.ClientSecret == "" {
		missing = append(missing, envClientSecret)
	}
	if len(missing) > 0 {
		return nil, platform.ConfigError{Provider: providerName, Missing: missing}
	}
	return &Client{cfg: Config{
		Server:       strings.TrimRight(cfg.Server, "/"),
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
	}}, nil
}

// Name identifies the provider.
func (c *Client) Name() string { return providerName }

// api builds a per-call API client; the adapter itself stays stateless.
func (c *Client) api(accessToken string) *mastodonapi.Client {
	client := mastodonapi.NewClient(&mastodonapi.Config{
		Server:       c.cfg.Server,
		ClientID:     c.cfg.ClientID,
		ClientSecret: c.cfg.ClientSecret,
		AccessToken:  accessToken,
	})
	client.Timeout = requestTimeout
	return client
}

func apiError(err error) error {
	return &platform.ProviderError{Provider: providerName, Message: err.Error()}
}

// AuthURL builds the instance's authorize URL. Mastodon separates scopes
// with spaces, not commas.
func (c *Client) AuthURL(userID, redirectURI string) (platform.OAuthURL, error) {
	state, err := platform.NewState(userID)
	if err != nil {
		return platform.OAuthURL{}, err
	}

	params := url.Values{
		"client_id":     {c.cfg.ClientID},
		"redirect_uri":  {redirectURI},
		"state":         {state},
		"scope":         {strings.Join(scopes, " ")},
		"response_type": {"code"},
	}
	return platform.OAuthURL{URL: c.cfg.Server + "/oauth/authorize?" + params.Encode(), State: state}, nil
}

// HandleCallback exchanges the authorization code for a token. There is no
// long-lived step; the default validity window applies.
func (c *Client) HandleCallback(ctx context.Context, code, redirectURI string) (platform.TokenPair, error) {
	client := c.api("")
	if err := client.AuthenticateToken(ctx, code, redirectURI); err != nil {
		return platform.TokenPair{}, apiError(err)
	}
	return platform.NewTokenPair(client.Config.AccessToken, 0, scopes), nil
}

// RefreshToken revalidates the token against the instance and re-stamps the
// default validity window; Mastodon tokens do not expire server-side.
func (c *Client) RefreshToken(ctx context.Context, accessToken string) (platform.TokenPair, error) {
	if _, err := c.api(accessToken).GetAccountCurrentUser(ctx); err != nil {
		return platform.TokenPair{}, apiError(err)
	}
	return platform.NewTokenPair(accessToken, 0, scopes), nil
}

// Account resolves the authenticated user. Mastodon has no page or business
// tier; the personal profile is always the identity.
func (c *Client) Account(ctx context.Context, accessToken string) (platform.Account, error) {
	account, err := c.api(accessToken).GetAccountCurrentUser(ctx)
	if err != nil {
		return platform.Account{}, apiError(err)
	}
	return platform.Account{
		ID:        string(account.ID),
		Name:      account.Username,
		Type:      platform.AccountProfile,
		AvatarURL: account.Avatar,
	}, nil
}

// Publish posts a status. Remote media is appended to the status text by
// URL.
func (c *Client) Publish(ctx context.Context, accessToken string, content platform.Content) (platform.PublishResult, error) {
	status := content.RenderCaption()
	if content.MediaURL != "" {
		if status != "" {
			status += "\n\n"
		}
		status += content.MediaURL
	}
	if status == "" {
		return platform.PublishResult{}, platform.ValidationError{Provider: providerName, Reason: "status requires a caption or media url"}
	}

	posted, err := c.api(accessToken).PostStatus(ctx, &mastodonapi.Toot{Status: status})
	if err != nil {
		return platform.PublishResult{}, fmt.Errorf("post status: %w", apiError(err))
	}
	return platform.PublishResult{PostID: string(posted.ID), PostURL: posted.URL}, nil
}

// PostMetrics reads the status counters. Mastodon reports no reach or
// impressions; fallback impressions are the interaction sum.
func (c *Client) PostMetrics(ctx context.Context, accessToken, postID string) (platform.PostMetrics, error) {
	var m platform.PostMetrics

	status, err := c.api(accessToken).GetStatus(ctx, mastodonapi.ID(postID))
	if err != nil {
		logutil.Warnf("mastodon status counters degraded: post=%s err=%v", postID, err)
		m.Degrade("status_counters", apiError(err))
		return m, nil
	}

	m.Likes = status.FavouritesCount
	m.Comments = status.RepliesCount
	m.Shares = status.ReblogsCount
	m.Impressions = m.Likes + m.Comments + m.Shares
	return m, nil
}

// AccountMetrics reads follower counts from the account node.
func (c *Client) AccountMetrics(ctx context.Context, accessToken, accountID string) (platform.AccountMetrics, error) {
	var m platform.AccountMetrics

	api := c.api(accessToken)
	var (
		account *mastodonapi.Account
		err     error
	)
	if accountID == "" {
		account, err = api.GetAccountCurrentUser(ctx)
	} else {
		account, err = api.GetAccount(ctx, mastodonapi.ID(accountID))
	}
	if err != nil {
		logutil.Warnf("mastodon account counters degraded: account=%s err=%v", accountID, err)
		m.Degrade("account_counters", apiError(err))
		return m, nil
	}

	m.Followers = account.FollowersCount
	return m, nil
}
