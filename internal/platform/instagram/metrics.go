package instagram

import (
	"context"
	"net/url"
	"strings"

	"github.com/postlinehq/postline/internal/logutil"
	"github.com/postlinehq/postline/internal/platform"
	"github.com/postlinehq/postline/internal/platform/graph"
)

var mediaInsightMetrics = strings.Join([]string{
	"impressions",
	"reach",
	"video_views",
	"likes",
	"comments",
	"saved",
	"shares",
}, ",")

// PostMetrics collects best-effort media insights. Media subtypes reject
// metrics they do not support (shares on older media, video_views on
// images); a "nonexisting field" style rejection is retried once without
// the offending metric, any other failure degrades the sub-query to zero.
func (c *Client) PostMetrics(ctx context.Context, accessToken, mediaID string) (platform.PostMetrics, error) {
	var m platform.PostMetrics

	res, err := c.fetchMediaInsights(ctx, accessToken, mediaID, mediaInsightMetrics)
	if graph.IsNonexistingField(err) {
		logutil.Debugf("instagram shares metric unsupported for %s, retrying without it", mediaID)
		trimmed := strings.ReplaceAll(mediaInsightMetrics, ",shares", "")
		res, err = c.fetchMediaInsights(ctx, accessToken, mediaID, trimmed)
	}
	if err != nil {
		logutil.Warnf("instagram media insights degraded: media=%s err=%v", mediaID, err)
		m.Degrade("media_insights", err)
		return m, nil
	}

	if v, ok := res.Value("impressions"); ok {
		m.Impressions = int64(v)
	}
	if v, ok := res.Value("reach"); ok {
		m.ReachUnique = int64(v)
	}
	if v, ok := res.Value("video_views"); ok {
		m.Views = int64(v)
	}
	if v, ok := res.Value("likes"); ok {
		m.Likes = int64(v)
	}
	if v, ok := res.Value("comments"); ok {
		m.Comments = int64(v)
	}
	if v, ok := res.Value("saved"); ok {
		m.Saves = int64(v)
	}
	if v, ok := res.Value("shares"); ok {
		m.Shares = int64(v)
	}

	// Instagram has no engaged-users metric; interactions stand in.
	engaged := m.Likes + m.Comments + m.Saves + m.Shares
	if m.Impressions == 0 {
		m.Impressions = engaged
	}
	m.EngagementRate = platform.EngagementRate(engaged, m.ReachUnique)

	return m, nil
}

func (c *Client) fetchMediaInsights(ctx context.Context, accessToken, mediaID, metrics string) (graph.Insights, error) {
	var res graph.Insights
	params := url.Values{
		"metric":       {metrics},
		"access_token": {accessToken},
	}
	err := c.api.Get(ctx, mediaID+"/insights", params, &res)
	return res, err
}

// AccountMetrics collects account-level metrics: follower counts from the
// user node, views and growth from the daily insights series.
func (c *Client) AccountMetrics(ctx context.Context, accessToken, accountID string) (platform.AccountMetrics, error) {
	var m platform.AccountMetrics

	var counts struct {
		FollowersCount int64 `json:"followers_count"`
	}
	params := url.Values{
		"fields":       {"followers_count"},
		"access_token": {accessToken},
	}
	if err := c.api.Get(ctx, accountID, params, &counts); err != nil {
		logutil.Warnf("instagram follower counts degraded: account=%s err=%v", accountID, err)
		m.Degrade("follower_counts", err)
	} else {
		m.Followers = counts.FollowersCount
	}

	var res graph.Insights
	params = url.Values{
		"metric":       {"impressions,follower_count"},
		"period":       {"day"},
		"access_token": {accessToken},
	}
	if err := c.api.Get(ctx, accountID+"/insights", params, &res); err != nil {
		logutil.Warnf("instagram account insights degraded: account=%s err=%v", accountID, err)
		m.Degrade("account_insights", err)
		return m, nil
	}

	if v, ok := res.Sum("impressions"); ok {
		m.TotalViews = int64(v)
	}
	if v, ok := res.Sum("follower_count"); ok {
		m.FollowersGrowth = int64(v)
	}
	// Instagram exposes no account-level engaged-user series; the
	// canonical rate stays at its zero default.

	return m, nil
}
