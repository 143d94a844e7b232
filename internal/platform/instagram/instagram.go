// Package instagram implements the platform contract for Instagram business
// accounts. Authorization rides the Facebook login dialog; publishing is the
// two-phase media-container protocol; accounts resolve through the linked
// Facebook page, with no personal-profile fallback.
package instagram

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
	envAppID     = "POSTLINE_INSTAGRAM_APP_ID"
	envAppSecret = "POSTLINE_INSTAGRAM_APP_SECRET"

	providerName = "instagram"

	defaultDialogURL  = "https://www.facebook.com/v19.0/dialog/oauth"
	permalinkTemplate = "https://www.instagram.com/p/%s/"
)

var scopes = []string{
	"instagram_basic",
	"instagram_content_publish",
	"instagram_manage_insights",
	"pages_show_list",
	"business_management",
}

// Config carries the app credentials and optional endpoint overrides.
type Config struct {
	AppID     string
	AppSecret string

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

// Client implements platform.Platform for Instagram.
type Client struct {
	cfg   Config
	api   *graph.Client
	oauth graph.OAuth
}

// New validates the configuration and builds the adapter.
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

// AuthURL builds the authorize dialog URL with the Instagram scope set.
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

// HandleCallback runs the code exchange followed by the long-lived upgrade.
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

// Account resolves the first Facebook page with a linked Instagram business
// account. Instagram has no personal-profile fallback: a user without a
// linked business account has no eligible account.
func (c *Client) Account(ctx context.Context, accessToken string) (platform.Account, error) {
	var pages struct {
		Data []struct {
			ID          string `json:"id"`
			AccessToken string `json:"access_token"`
			IGAccount   *struct {
				ID                string `json:"id"`
				Username          string `json:"username"`
				ProfilePictureURL string `json:"profile_picture_url"`
			} `json:"instagram_business_account"`
		} `json:"data"`
	}
	params := url.Values{
		"fields":       {"id,access_token,instagram_business_account{id,username,profile_picture_url}"},
		"access_token": {accessToken},
	}
	if err := c.api.Get(ctx, "me/accounts", params, &pages); err != nil {
		return platform.Account{}, fmt.Errorf("list pages: %w", err)
	}

	for _, page := range pages.Data {
		if page.IGAccount == nil {
			continue
		}
		return platform.Account{
			ID:              page.IGAccount.ID,
			Name:            page.IGAccount.Username,
			Type:            platform.AccountBusiness,
			AvatarURL:       page.IGAccount.ProfilePictureURL,
			PageAccessToken: page.AccessToken,
		}, nil
	}
	return platform.Account{}, platform.NoAccountError{Provider: providerName, Reason: "no page with a linked instagram business account"}
}
