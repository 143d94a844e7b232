package facebook_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostMetricsNormalizesInsights(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/123_456/insights":
			w.Write([]byte(`{"data":[
				{"name":"post_impressions","period":"lifetime","values":[{"value":1000}]},
				{"name":"post_impressions_unique","period":"lifetime","values":[{"value":400}]},
				{"name":"post_engaged_users","period":"lifetime","values":[{"value":100}]},
				{"name":"post_video_views","period":"lifetime","values":[{"value":250}]},
				{"name":"post_video_view_time","period":"lifetime","values":[{"value":90000}]},
				{"name":"post_reactions_by_type_total","period":"lifetime","values":[{"value":{"like":30,"love":12}}]}
			]}`))
		case "/123_456":
			w.Write([]byte(`{
				"likes":{"summary":{"total_count":42}},
				"comments":{"summary":{"total_count":7}},
				"shares":{"count":3}
			}`))
		default:
			http.NotFound(w, r)
		}
	}))

	m, err := client.PostMetrics(context.Background(), "tok", "123_456")
	require.NoError(t, err)

	assert.Equal(t, int64(1000), m.Impressions)
	assert.Equal(t, int64(400), m.ReachUnique)
	assert.Equal(t, int64(250), m.Views)
	assert.Equal(t, int64(90), m.WatchTimeSeconds)
	assert.Equal(t, int64(42), m.Likes)
	assert.Equal(t, int64(7), m.Comments)
	assert.Equal(t, int64(3), m.Shares)
	assert.InDelta(t, 25.0, m.EngagementRate, 0.001) // 100 engaged / 400 reach
	assert.Empty(t, m.Diagnostics)
}

func TestPostMetricsBareIDSkipsInsights(t *testing.T) {
	var insightsHit bool
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/insights") {
			insightsHit = true
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{
			"likes":{"summary":{"total_count":10}},
			"comments":{"summary":{"total_count":5}},
			"shares":{"count":2}
		}`))
	}))

	m, err := client.PostMetrics(context.Background(), "tok", "98765")
	require.NoError(t, err)

	assert.False(t, insightsHit, "bare ids must skip the insights attempt")
	// fallback impressions: likes + comments + shares
	assert.Equal(t, int64(17), m.Impressions)
	assert.Zero(t, m.EngagementRate)
	require.NotEmpty(t, m.Diagnostics)
	assert.Equal(t, "post_insights", m.Diagnostics[0].Metric)
}

func TestPostMetricsRetriesWithoutSharesField(t *testing.T) {
	var fieldsSeen []string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/insights") {
			w.Write([]byte(`{"data":[]}`))
			return
		}
		fields := r.URL.Query().Get("fields")
		fieldsSeen = append(fieldsSeen, fields)
		if strings.Contains(fields, "shares") {
			w.Write([]byte(`{"error":{"message":"(#100) Tried accessing nonexisting field (shares)","code":100}}`))
			return
		}
		w.Write([]byte(`{
			"likes":{"summary":{"total_count":11}},
			"comments":{"summary":{"total_count":4}}
		}`))
	}))

	m, err := client.PostMetrics(context.Background(), "tok", "123_456")
	require.NoError(t, err)

	require.Len(t, fieldsSeen, 2)
	assert.Contains(t, fieldsSeen[0], "shares")
	assert.NotContains(t, fieldsSeen[1], "shares")
	assert.Equal(t, int64(11), m.Likes)
	assert.Equal(t, int64(4), m.Comments)
	assert.Zero(t, m.Shares)
	for _, d := range m.Diagnostics {
		assert.NotContains(t, d.Reason, "nonexisting field")
	}
}

func TestPostMetricsDegradesOnInsightsFailure(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/insights") {
			w.Write([]byte(`{"error":{"message":"insights unavailable","code":10}}`))
			return
		}
		w.Write([]byte(`{
			"likes":{"summary":{"total_count":1}},
			"comments":{"summary":{"total_count":1}},
			"shares":{"count":1}
		}`))
	}))

	m, err := client.PostMetrics(context.Background(), "tok", "123_456")
	require.NoError(t, err, "metrics collection is best-effort")

	assert.Equal(t, int64(3), m.Impressions)
	require.NotEmpty(t, m.Diagnostics)
	assert.Equal(t, "post_insights", m.Diagnostics[0].Metric)
}

func TestAccountMetrics(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/page-1":
			w.Write([]byte(`{"fan_count":1200,"followers_count":1500}`))
		case "/page-1/insights":
			w.Write([]byte(`{"data":[
				{"name":"page_impressions","period":"days_28","values":[{"value":5000}]},
				{"name":"page_post_engagements","period":"days_28","values":[{"value":500}]},
				{"name":"page_video_views","period":"days_28","values":[{"value":800}]},
				{"name":"page_video_view_time","period":"days_28","values":[{"value":7200000}]},
				{"name":"page_fan_adds_unique","period":"day","values":[{"value":3},{"value":4}]}
			]}`))
		default:
			http.NotFound(w, r)
		}
	}))

	m, err := client.AccountMetrics(context.Background(), "tok", "page-1")
	require.NoError(t, err)

	assert.Equal(t, int64(1500), m.Followers)
	assert.Equal(t, int64(7), m.FollowersGrowth)
	assert.Equal(t, int64(800), m.TotalViews)
	assert.Equal(t, int64(2), m.TotalWatchMinutes)
	assert.InDelta(t, 10.0, m.AvgEngagementRate, 0.001)
	assert.Empty(t, m.Diagnostics)
}
