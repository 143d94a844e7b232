// Package facebook implements the platform contract for Facebook pages via
// the Graph API: code-grant OAuth with the fb_exchange_token long-lived
// upgrade, single-call feed/photo/video publishing, and post insights with a
// social-count fallback.
package facebook

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/postlinehq/postline/internal/platform"
	"github.com/postlinehq/postline/internal/platform/graph"
)

const (
	envAppID     = "POSTLINE_FACEBOOK_APP_ID"
	envAppSecret = "POSTLINE_FACEBOOK_APP_SECRET"

	providerName = "facebook"

	defaultDialogURL  = "https://www.facebook.com/v19.0/dialog/oauth"
	permalinkTemplate = "https://www.facebook.com/%s"
)

var scopes = []string{
	"public_profile",
	"pages_show_list",
	"pages_read_engagement",
	"pages_manage_posts",
	"read_insights",
}

// Config carries the app credentials and optional endpoint overrides.
type Config struct {
	AppID     string
	AppSecret string

	// GraphURL and DialogURL override the production endpoints; tests
	// point them at local servers.
	GraphURL  string
	DialogURL string
}

// FromEnv reads the app credentials from the environment.
func FromEnv() Config {
	return Config{
		AppID:     strings.TrimSpace(os.Getenv(envAppID)),
		AppSecret: strings.TrimSpace(os.Getenv(envAppSecret)),
	}
}

// Client implements platform.Platform for Facebook.
type Client struct {
	cfg   Config
	api   *graph.Client
	oauth graph.OAuth
}

// New validates the configuration and builds the adapter. Missing
// credentials fail here, before any network call.
func New(cfg Config) (*Client, error) {
	var missing []string
	if cfg.AppID == "" {
		missing = append(missing, envAppID)
	}
	if cfg.AppSecret == "" {
		missing = append(missing, envAppSecret)
	}
	if len(missing) > 0 {
		return nil, platform.ConfigError{Provider: providerName, Missing: missing}
	}

	if cfg.DialogURL == "" {
		cfg.DialogURL = defaultDialogURL
	}
	api := graph.New(providerName, cfg.GraphURL)

	return &Client{
		cfg:   cfg,
		api:   api,
		oauth: graph.OAuth{API: api, ClientID: cfg.AppID, ClientSecret: cfg.AppSecret},
	}, nil
}

// Name returns the provider identifier.
func (c *Client) Name() string { return providerName }

// AuthURL builds the authorize dialog URL with an anti-forgery state
// embedding the user's identity.
func (c *Client) AuthURL(userID, redirectURI string) (platform.OAuthURL, error) {
	state, err := platform.NewState(userID)
	if err != nil {
		return platform.OAuthURL{}, err
	}

	params := url.Values{
		"client_id":     {c.cfg.AppID},
		"redirect_uri":  {redirectURI},
		"state":         {state},
		"scope":         {strings.Join(scopes, ",")},
		"response_type": {"code"},
	}
	return platform.OAuthURL{URL: c.cfg.DialogURL + "?" + params.Encode(), State: state}, nil
}

// HandleCallback exchanges the authorization code for a short-lived token,
// then upgrades it to a long-lived one. Two sequential round trips.
func (c *Client) HandleCallback(ctx context.Context, code, redirectURI string) (platform.TokenPair, error) {
	short, _, err := c.oauth.ExchangeCode(ctx, code, redirectURI)
	if err != nil {
		return platform.TokenPair{}, err
	}
	long, expiresIn, err := c.oauth.ExchangeLongLived(ctx, short)
	if err != nil {
		return platform.TokenPair{}, err
	}
	return platform.NewTokenPair(long, expiresIn, scopes), nil
}

// RefreshToken re-runs the long-lived exchange with the existing token.
func (c *Client) RefreshToken(ctx context.Context, accessToken string) (platform.TokenPair, error) {
	long, expiresIn, err := c.oauth.ExchangeLongLived(ctx, accessToken)
	if err != nil {
		return platform.TokenPair{}, err
	}
	return platform.NewTokenPair(long, expiresIn, scopes), nil
}

type pageList struct {
	Data []struct {
		ID          string  `json:"id"`
		Name        string  `json:"name"`
		AccessToken string  `json:"access_token"`
		Picture     picture `json:"picture"`
	} `json:"data"`
}

type picture struct {
	Data struct {
		URL string `json:"url"`
	} `json:"data"`
}

// Account resolves the identity to operate as: the first manageable page
// with its page-scoped token, falling back to the personal profile.
func (c *Client) Account(ctx context.Context, accessToken string) (platform.Account, error) {
	var pages pageList
	params := url.Values{
		"fields":       {"id,name,access_token,picture{url}"},
		"access_token": {accessToken},
	}
	if err := c.api.Get(ctx, "me/accounts", params, &pages); err != nil {
		return platform.Account{}, fmt.Errorf("list pages: %w", err)
	}
	if len(pages.Data) > 0 {
		page := pages.Data[0]
		return platform.Account{
			ID:              page.ID,
			Name:            page.Name,
			Type:            platform.AccountPage,
			AvatarURL:       page.Picture.Data.URL,
			PageAccessToken: page.AccessToken,
		}, nil
	}

	var profile struct {
		ID      string  `json:"id"`
		Name    string  `json:"name"`
		Picture picture `json:"picture"`
	}
	params = url.Values{
		"fields":       {"id,name,picture{url}"},
		"access_token": {accessToken},
	}
	if err := c.api.Get(ctx, "me", params, &profile); err != nil {
		return platform.Account{}, fmt.Errorf("fetch profile: %w", err)
	}
	if profile.ID == "" {
		return platform.Account{}, platform.NoAccountError{Provider: providerName, Reason: "no manageable page and no profile"}
	}
	return platform.Account{
		ID:        profile.ID,
		Name:      profile.Name,
		Type:      platform.AccountProfile,
		AvatarURL: profile.Picture.Data.URL,
	}, nil
}
