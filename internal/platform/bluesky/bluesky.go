// Package bluesky implements the platform contract for Bluesky over an
// app-password session. Session credentials are static configuration, so the
// code-grant lifecycle operations are unsupported; image media is fetched
// from its URL and re-uploaded as a blob.
package bluesky

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/bluesky-social/indigo/api/atproto"
	"github.com/bluesky-social/indigo/api/bsky"
	"github.com/bluesky-social/indigo/lex/util"
	"github.com/bluesky-social/indigo/xrpc"

	"github.com/postlinehq/postline/internal/logutil"
	"github.com/postlinehq/postline/internal/platform"
)

const (
	envHandle      = "POSTLINE_BLUESKY_HANDLE"
	envAppPassword = "POSTLINE_BLUESKY_APP_PASSWORD"
	envPDSURL      = "POSTLINE_BLUESKY_PDS_URL"

	providerName   = "bluesky"
	requestTimeout = 30 * time.Second

	defaultPDSURL     = "https://bsky.social"
	permalinkTemplate = "https://bsky.app/profile/%s/post/%s"
)

// Config identifies the account and PDS to operate against.
type Config struct {
	Handle      string
	AppPassword string
	PDSURL      string
}

// FromEnv reads the session credentials from the environment.
func FromEnv() Config {
	return Config{
		Handle:      strings.TrimSpace(os.Getenv(envHandle)),
		AppPassword: strings.TrimSpace(os.Getenv(envAppPassword)),
		PDSURL:      strings.TrimSpace(os.Getenv(envPDSURL)),
	}
}

// Client implements platform.Platform for Bluesky.
type Client struct {
	cfg Config
}

// New validates the configuration and builds the adapter. The session login
// happens per call, keeping the adapter stateless.
func New(cfg Config) (*Client, error) {
	var missing []string
	if cfg.Handle == "" {
		missing = append(missing, envHandle)
	}
	if cfg.AppPassword == "" {
		missing = append(missing, envAppPassword)
	}
	if len(missing) > 0 {
		return nil, platform.ConfigError{Provider: providerName, Missing: missing}
	}
	if cfg.PDSURL == "" {
		cfg.PDSURL = defaultPDSURL
	}
	return &Client{cfg: cfg}, nil
}

// Name identifies the provider.
func (c *Client) Name() string { return providerName }

// session logs in with the app password and returns an authenticated xrpc
// client.
func (c *Client) session(ctx context.Context) (*xrpc.Client, error) {
	userAgent := "postline/1"
	client := &xrpc.Client{
		Client:    &http.Client{Timeout: requestTimeout},
		Host:      c.cfg.PDSURL,
		UserAgent: &userAgent,
	}

	session, err := atproto.ServerCreateSession(ctx, client, &atproto.ServerCreateSession_Input{
		Identifier: c.cfg.Handle,
		Password:   c.cfg.AppPassword,
	})
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	client.Auth = &xrpc.AuthInfo{
		AccessJwt:  session.AccessJwt,
		RefreshJwt: session.RefreshJwt,
		Handle:     session.Handle,
		Did:        session.Did,
	}
	return client, nil
}

// AuthURL is unsupported: app-password sessions have no authorize dialog.
func (c *Client) AuthURL(userID, redirectURI string) (platform.OAuthURL, error) {
	return platform.OAuthURL{}, platform.UnsupportedError{Provider: providerName, Op: "authorization-code flow"}
}

// HandleCallback is unsupported for the same reason as AuthURL.
func (c *Client) HandleCallback(ctx context.Context, code, redirectURI string) (platform.TokenPair, error) {
	return platform.TokenPair{}, platform.UnsupportedError{Provider: providerName, Op: "authorization-code flow"}
}

// RefreshToken is unsupported; the session refresh JWT is managed per call.
func (c *Client) RefreshToken(ctx context.Context, accessToken string) (platform.TokenPair, error) {
	return platform.TokenPair{}, platform.UnsupportedError{Provider: providerName, Op: "token refresh"}
}

// Account resolves the configured handle's profile.
func (c *Client) Account(ctx context.Context, accessToken string) (platform.Account, error) {
	client, err := c.session(ctx)
	if err != nil {
		return platform.Account{}, err
	}
	profile, err := bsky.ActorGetProfile(ctx, client, c.cfg.Handle)
	if err != nil {
		return platform.Account{}, fmt.Errorf("get profile: %w", err)
	}

	name := profile.Handle
	if profile.DisplayName != nil && *profile.DisplayName != "" {
		name = *profile.DisplayName
	}
	account := platform.Account{
		ID:   profile.Did,
		Name: name,
		Type: platform.AccountProfile,
	}
	if profile.Avatar != nil {
		account.AvatarURL = *profile.Avatar
	}
	return account, nil
}

// Publish creates a feed post record, embedding image media as an uploaded
// blob. Video publishing goes through a processing pipeline this adapter
// does not drive; video URLs ride along in the post text.
func (c *Client) Publish(ctx context.Context, accessToken string, content platform.Content) (platform.PublishResult, error) {
	client, err := c.session(ctx)
	if err != nil {
		return platform.PublishResult{}, err
	}

	text := content.RenderCaption()
	post := &bsky.FeedPost{
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Text:      text,
	}

	switch {
	case content.MediaURL != "" && content.MediaType == platform.MediaImage:
		blob, err := c.uploadImage(ctx, client, content.MediaURL)
		if err != nil {
			return platform.PublishResult{}, err
		}
		post.Embed = &bsky.FeedPost_Embed{
			EmbedImages: &bsky.EmbedImages{
				Images: []*bsky.EmbedImages_Image{
					{Alt: content.Caption, Image: blob},
				},
			},
		}
	case content.MediaURL != "":
		if post.Text != "" {
			post.Text += "\n\n"
		}
		post.Text += content.MediaURL
	}
	if post.Text == "" && post.Embed == nil {
		return platform.PublishResult{}, platform.ValidationError{Provider: providerName, Reason: "post requires a caption or media"}
	}

	res, err := atproto.RepoCreateRecord(ctx, client, &atproto.RepoCreateRecord_Input{
		Collection: "app.bsky.feed.post",
		Repo:       client.Auth.Did,
		Record:     &util.LexiconTypeDecoder{Val: post},
	})
	if err != nil {
		return platform.PublishResult{}, fmt.Errorf("create record: %w", err)
	}

	// The record key at the end of the at:// URI names the post on the
	// public web frontend.
	return platform.PublishResult{
		PostID:  res.Uri,
		PostURL: fmt.Sprintf(permalinkTemplate, c.cfg.Handle, path.Base(res.Uri)),
	}, nil
}

func (c *Client) uploadImage(ctx context.Context, client *xrpc.Client, mediaURL string) (*util.LexBlob, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build media fetch: %w", err)
	}
	resp, err := (&http.Client{Timeout: requestTimeout}).Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch media: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, platform.ValidationError{Provider: providerName, Reason: fmt.Sprintf("media url returned status %d", resp.StatusCode)}
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("read media: %w", err)
	}

	uploaded, err := atproto.RepoUploadBlob(ctx, client, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("upload blob: %w", err)
	}
	if uploaded.Blob == nil {
		return nil, errors.New("upload blob: empty response")
	}
	return uploaded.Blob, nil
}

// PostMetrics reads the post's interaction counters from its thread view.
func (c *Client) PostMetrics(ctx context.Context, accessToken, postID string) (platform.PostMetrics, error) {
	var m platform.PostMetrics

	client, err := c.session(ctx)
	if err != nil {
		logutil.Warnf("bluesky thread counters degraded: post=%s err=%v", postID, err)
		m.Degrade("thread_counters", err)
		return m, nil
	}

	thread, err := bsky.FeedGetPostThread(ctx, client, 0, 0, postID)
	if err != nil {
		logutil.Warnf("bluesky thread counters degraded: post=%s err=%v", postID, err)
		m.Degrade("thread_counters", err)
		return m, nil
	}
	if thread.Thread == nil || thread.Thread.FeedDefs_ThreadViewPost == nil || thread.Thread.FeedDefs_ThreadViewPost.Post == nil {
		m.Degrade("thread_counters", errors.New("thread view carried no post"))
		return m, nil
	}

	post := thread.Thread.FeedDefs_ThreadViewPost.Post
	m.Likes = int64Value(post.LikeCount)
	m.Comments = int64Value(post.ReplyCount)
	m.Shares = int64Value(post.RepostCount) + int64Value(post.QuoteCount)
	m.Impressions = m.Likes + m.Comments + m.Shares
	return m, nil
}

// AccountMetrics reads follower counts from the profile.
func (c *Client) AccountMetrics(ctx context.Context, accessToken, accountID string) (platform.AccountMetrics, error) {
	var m platform.AccountMetrics

	client, err := c.session(ctx)
	if err != nil {
		logutil.Warnf("bluesky profile counters degraded: account=%s err=%v", accountID, err)
		m.Degrade("profile_counters", err)
		return m, nil
	}

	actor := accountID
	if actor == "" {
		actor = c.cfg.Handle
	}
	profile, err := bsky.ActorGetProfile(ctx, client, actor)
	if err != nil {
		logutil.Warnf("bluesky profile counters degraded: account=%s err=%v", accountID, err)
		m.Degrade("profile_counters", err)
		return m, nil
	}

	m.Followers = int64Value(profile.FollowersCount)
	return m, nil
}

func int64Value(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
