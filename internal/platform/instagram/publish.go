package instagram

import (
	"context"
	"fmt"
	"net/url"

	"github.com/postlinehq/postline/internal/logutil"
	"github.com/postlinehq/postline/internal/platform"
)

// Publish runs the two-phase container protocol: create a media container
// carrying caption and media URL, then publish the returned container id in
// a second call. A text-only post is not a valid content unit here; the
// validation fails before any network round trip.
func (c *Client) Publish(ctx context.Context, accessToken string, content platform.Content) (platform.PublishResult, error) {
	if content.MediaURL == "" {
		return platform.PublishResult{}, platform.ValidationError{Provider: providerName, Reason: "instagram requires image or video media"}
	}
	if content.MediaType != platform.MediaImage && content.MediaType != platform.MediaVideo {
		return platform.PublishResult{}, platform.ValidationError{Provider: providerName, Reason: fmt.Sprintf("unsupported media type %q", content.MediaType)}
	}

	igUserID := content.AccountID
	token := accessToken
	if igUserID == "" {
		account, err := c.Account(ctx, accessToken)
		if err != nil {
			return platform.PublishResult{}, err
		}
		igUserID = account.ID
		token = account.AccessTokenFor(accessToken)
	}

	containerID, err := c.createContainer(ctx, token, igUserID, content)
	if err != nil {
		return platform.PublishResult{}, err
	}
	logutil.Debugf("instagram container created: id=%s", containerID)

	mediaID, err := c.publishContainer(ctx, token, igUserID, containerID)
	if err != nil {
		return platform.PublishResult{}, err
	}

	return platform.PublishResult{
		PostID:  mediaID,
		PostURL: fmt.Sprintf(permalinkTemplate, mediaID),
	}, nil
}

func (c *Client) createContainer(ctx context.Context, accessToken, igUserID string, content platform.Content) (string, error) {
	params := url.Values{
		"caption":      {content.RenderCaption()},
		"access_token": {accessToken},
	}
	if content.MediaType == platform.MediaVideo {
		params.Set("video_url", content.MediaURL)
		params.Set("media_type", "REELS")
	} else {
		params.Set("image_url", content.MediaURL)
	}

	var res struct {
		ID string `json:"id"`
	}
	if err := c.api.Post(ctx, igUserID+"/media", params, &res); err != nil {
		return "", fmt.Errorf("create media container: %w", err)
	}
	return res.ID, nil
}

func (c *Client) publishContainer(ctx context.Context, accessToken, igUserID, containerID string) (string, error) {
	params := url.Values{
		"creation_id":  {containerID},
		"access_token": {accessToken},
	}
	var res struct {
		ID string `json:"id"`
	}
	if err := c.api.Post(ctx, igUserID+"/media_publish", params, &res); err != nil {
		return "", fmt.Errorf("publish media container: %w", err)
	}
	return res.ID, nil
}
