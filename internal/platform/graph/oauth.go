package graph

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// OAuth runs the two token exchanges of the Graph API code flow. Both steps
// hit the same oauth/access_token node with different grant parameters.
type OAuth struct {
	API          *Client
	ClientID     string
	ClientSecret string
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// ExchangeCode trades an authorization code for a short-lived access token.
func (o OAuth) ExchangeCode(ctx context.Context, code, redirectURI string) (string, time.Duration, error) {
	params := url.Values{
		"client_id":     {o.ClientID},
		"client_secret": {o.ClientSecret},
		"redirect_uri":  {redirectURI},
		"code":          {code},
	}
	var res tokenResponse
	if err := o.API.Get(ctx, "oauth/access_token", params, &res); err != nil {
		return "", 0, fmt.Errorf("exchange code: %w", err)
	}
	return res.AccessToken, time.Duration(res.ExpiresIn) * time.Second, nil
}

// ExchangeLongLived upgrades an access token to a long-lived one. Refresh
// re-runs this exchange with the current token; there is no separate
// refresh credential in this provider family.
func (o OAuth) ExchangeLongLived(ctx context.Context, accessToken string) (string, time.Duration, error) {
	params := url.Values{
		"grant_type":        {"fb_exchange_token"},
		"client_id":         {o.ClientID},
		"client_secret":     {o.ClientSecret},
		"fb_exchange_token": {accessToken},
	}
	var res tokenResponse
	if err := o.API.Get(ctx, "oauth/access_token", params, &res); err != nil {
		return "", 0, fmt.Errorf("exchange long-lived token: %w", err)
	}
	return res.AccessToken, time.Duration(res.ExpiresIn) * time.Second, nil
}
