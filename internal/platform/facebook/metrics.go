package facebook

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/postlinehq/postline/internal/logutil"
	"github.com/postlinehq/postline/internal/platform"
	"github.com/postlinehq/postline/internal/platform/graph"
)

var postInsightMetrics = strings.Join([]string{
	"post_impressions",
	"post_impressions_unique",
	"post_engaged_users",
	"post_video_views",
	"post_video_view_time",
	"post_reactions_by_type_total",
}, ",")

var pageInsightMetrics = strings.Join([]string{
	"page_impressions",
	"page_post_engagements",
	"page_video_views",
	"page_video_view_time",
	"page_fan_adds_unique",
}, ",")

// PostMetrics collects best-effort metrics for a post. Insights are only
// available for page-scoped compound ids (<pageID>_<postID>); bare ids skip
// straight to the social-count fallback. Every failing sub-query degrades
// to zero and is recorded as a diagnostic.
func (c *Client) PostMetrics(ctx context.Context, accessToken, postID string) (platform.PostMetrics, error) {
	var m platform.PostMetrics

	var engaged int64
	haveImpressions := false
	if strings.Contains(postID, "_") {
		engaged, haveImpressions = c.collectPostInsights(ctx, accessToken, postID, &m)
	} else {
		m.Degrade("post_insights", fmt.Errorf("post id %q is not page-scoped, insights unavailable", postID))
	}

	c.collectSocialCounts(ctx, accessToken, postID, &m)

	// Fallback impressions only when the provider reported none natively.
	if !haveImpressions {
		m.Impressions = m.Likes + m.Comments + m.Shares
	}
	m.EngagementRate = platform.EngagementRate(engaged, m.ReachUnique)

	return m, nil
}

// collectPostInsights fills the insight-backed fields and returns the
// engaged-user count plus whether native impressions were reported.
func (c *Client) collectPostInsights(ctx context.Context, accessToken, postID string, m *platform.PostMetrics) (engaged int64, haveImpressions bool) {
	var res graph.Insights
	params := url.Values{
		"metric":       {postInsightMetrics},
		"access_token": {accessToken},
	}
	if err := c.api.Get(ctx, postID+"/insights", params, &res); err != nil {
		logutil.Warnf("facebook post insights degraded: post=%s err=%v", postID, err)
		m.Degrade("post_insights", err)
		return 0, false
	}

	if v, ok := res.Value("post_impressions"); ok {
		m.Impressions = int64(v)
		haveImpressions = true
	}
	if v, ok := res.Value("post_impressions_unique"); ok {
		m.ReachUnique = int64(v)
	}
	if v, ok := res.Value("post_engaged_users"); ok {
		engaged = int64(v)
	}
	if v, ok := res.Value("post_video_views"); ok {
		m.Views = int64(v)
	}
	if v, ok := res.Value("post_video_view_time"); ok {
		// reported in milliseconds
		m.WatchTimeSeconds = int64(v / 1000)
	}
	return engaged, haveImpressions
}

// collectSocialCounts fills likes/comments/shares from the node-fields
// endpoint. Some post subtypes reject the shares field with a "nonexisting
// field" error; retry once without it.
func (c *Client) collectSocialCounts(ctx context.Context, accessToken, postID string, m *platform.PostMetrics) {
	counts, err := c.fetchSocialCounts(ctx, accessToken, postID, true)
	if graph.IsNonexistingField(err) {
		logutil.Debugf("facebook shares field unsupported for %s, retrying without it", postID)
		counts, err = c.fetchSocialCounts(ctx, accessToken, postID, false)
	}
	if err != nil {
		logutil.Warnf("facebook social counts degraded: post=%s err=%v", postID, err)
		m.Degrade("social_counts", err)
		return
	}
	m.Likes = counts.Likes.Summary.TotalCount
	m.Comments = counts.Comments.Summary.TotalCount
	m.Shares = counts.Shares.Count
}

type socialCounts struct {
	Likes struct {
		Summary struct {
			TotalCount int64 `json:"total_count"`
		} `json:"summary"`
	} `json:"likes"`
	Comments struct {
		Summary struct {
			TotalCount int64 `json:"total_count"`
		} `json:"summary"`
	} `json:"comments"`
	Shares struct {
		Count int64 `json:"count"`
	} `json:"shares"`
}

func (c *Client) fetchSocialCounts(ctx context.Context, accessToken, postID string, withShares bool) (socialCounts, error) {
	fields := "likes.summary(true),comments.summary(true)"
	if withShares {
		fields += ",shares"
	}
	var res socialCounts
	params := url.Values{
		"fields":       {fields},
		"access_token": {accessToken},
	}
	err := c.api.Get(ctx, postID, params, &res)
	return res, err
}

// AccountMetrics collects page-level metrics over the trailing 28 days.
func (c *Client) AccountMetrics(ctx context.Context, accessToken, accountID string) (platform.AccountMetrics, error) {
	var m platform.AccountMetrics

	var counts struct {
		FanCount       int64 `json:"fan_count"`
		FollowersCount int64 `json:"followers_count"`
	}
	params := url.Values{
		"fields":       {"fan_count,followers_count"},
		"access_token": {accessToken},
	}
	if err := c.api.Get(ctx, accountID, params, &counts); err != nil {
		logutil.Warnf("facebook follower counts degraded: account=%s err=%v", accountID, err)
		m.Degrade("follower_counts", err)
	} else {
		m.Followers = counts.FollowersCount
		if m.Followers == 0 {
			m.Followers = counts.FanCount
		}
	}

	var res graph.Insights
	params = url.Values{
		"metric":       {pageInsightMetrics},
		"period":       {"days_28"},
		"access_token": {accessToken},
	}
	if err := c.api.Get(ctx, accountID+"/insights", params, &res); err != nil {
		logutil.Warnf("facebook page insights degraded: account=%s err=%v", accountID, err)
		m.Degrade("page_insights", err)
		return m, nil
	}

	if v, ok := res.Value("page_video_views"); ok {
		m.TotalViews = int64(v)
	}
	if v, ok := res.Value("page_video_view_time"); ok {
		// reported in milliseconds
		m.TotalWatchMinutes = int64(v / 1000 / 60)
	}
	if v, ok := res.Sum("page_fan_adds_unique"); ok {
		m.FollowersGrowth = int64(v)
	}
	engagements, _ := res.Value("page_post_engagements")
	impressions, _ := res.Value("page_impressions")
	m.AvgEngagementRate = platform.EngagementRate(int64(engagements), int64(impressions))

	return m, nil
}
