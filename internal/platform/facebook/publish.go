package facebook

import (
	"context"
	"fmt"
	"net/url"

	"github.com/postlinehq/postline/internal/platform"
)

// Publish submits one request against the endpoint keyed by media kind:
// /feed for text, /photos for an image, /videos for a video. The target
// entity defaults to the caller's own identity.
func (c *Client) Publish(ctx context.Context, accessToken string, content platform.Content) (platform.PublishResult, error) {
	target := content.AccountID
	if target == "" {
		target = "me"
	}
	caption := content.RenderCaption()

	var res struct {
		ID     string `json:"id"`
		PostID string `json:"post_id"`
	}

	switch content.MediaType {
	case platform.MediaNone:
		if caption == "" {
			return platform.PublishResult{}, platform.ValidationError{Provider: providerName, Reason: "text post requires a caption"}
		}
		params := url.Values{
			"message":      {caption},
			"access_token": {accessToken},
		}
		if err := c.api.Post(ctx, target+"/feed", params, &res); err != nil {
			return platform.PublishResult{}, fmt.Errorf("publish feed post: %w", err)
		}

	case platform.MediaImage:
		if content.MediaURL == "" {
			return platform.PublishResult{}, platform.ValidationError{Provider: providerName, Reason: "image post requires a media url"}
		}
		params := url.Values{
			"url":          {content.MediaURL},
			"caption":      {caption},
			"access_token": {accessToken},
		}
		if err := c.api.Post(ctx, target+"/photos", params, &res); err != nil {
			return platform.PublishResult{}, fmt.Errorf("publish photo: %w", err)
		}

	case platform.MediaVideo:
		if content.MediaURL == "" {
			return platform.PublishResult{}, platform.ValidationError{Provider: providerName, Reason: "video post requires a media url"}
		}
		params := url.Values{
			"file_url":     {content.MediaURL},
			"description":  {caption},
			"access_token": {accessToken},
		}
		if err := c.api.Post(ctx, target+"/videos", params, &res); err != nil {
			return platform.PublishResult{}, fmt.Errorf("publish video: %w", err)
		}

	default:
		return platform.PublishResult{}, platform.ValidationError{Provider: providerName, Reason: fmt.Sprintf("unsupported media type %q", content.MediaType)}
	}

	// Photo uploads return the photo id plus the page-scoped post id; the
	// post id is the one the permalink and insights accept.
	postID := res.PostID
	if postID == "" {
		postID = res.ID
	}
	return platform.PublishResult{
		PostID:  postID,
		PostURL: fmt.Sprintf(permalinkTemplate, postID),
	}, nil
}
