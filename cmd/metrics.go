package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/postlinehq/postline/internal/platform"
)

func newPostMetricsCommand() *cobra.Command {
	var (
		token  string
		postID string
	)

	cmd := &cobra.Command{
		Use:   "post-metrics",
		Short: "Collect best-effort metrics for a published post",
		RunE: func(cmd *cobra.Command, args []string) error {
			adapter, err := openPlatform(platformFlag)
			if err != nil {
				return err
			}
			m, err := adapter.PostMetrics(cmd.Context(), token, postID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "views:              %d\n", m.Views)
			fmt.Fprintf(out, "likes:              %d\n", m.Likes)
			fmt.Fprintf(out, "comments:           %d\n", m.Comments)
			fmt.Fprintf(out, "shares:             %d\n", m.Shares)
			fmt.Fprintf(out, "saves:              %d\n", m.Saves)
			fmt.Fprintf(out, "watch_time_seconds: %d\n", m.WatchTimeSeconds)
			fmt.Fprintf(out, "avg_watch_percent:  %.2f\n", m.AvgWatchPercent)
			fmt.Fprintf(out, "reach_unique:       %d\n", m.ReachUnique)
			fmt.Fprintf(out, "impressions:        %d\n", m.Impressions)
			fmt.Fprintf(out, "engagement_rate:    %.2f\n", m.EngagementRate)
			printDiagnostics(out, m.Diagnostics)
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Access token")
	cmd.Flags().StringVar(&postID, "post-id", "", "Provider post identifier")
	cmd.MarkFlagRequired("token")
	cmd.MarkFlagRequired("post-id")

	return cmd
}

func newAccountMetricsCommand() *cobra.Command {
	var (
		token     string
		accountID string
	)

	cmd := &cobra.Command{
		Use:   "account-metrics",
		Short: "Collect best-effort account-level metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			adapter, err := openPlatform(platformFlag)
			if err != nil {
				return err
			}
			m, err := adapter.AccountMetrics(cmd.Context(), token, accountID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "followers:           %d\n", m.Followers)
			fmt.Fprintf(out, "followers_growth:    %d\n", m.FollowersGrowth)
			fmt.Fprintf(out, "total_views:         %d\n", m.TotalViews)
			fmt.Fprintf(out, "total_watch_minutes: %d\n", m.TotalWatchMinutes)
			fmt.Fprintf(out, "avg_engagement_rate: %.2f\n", m.AvgEngagementRate)
			printDiagnostics(out, m.Diagnostics)
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Access token")
	cmd.Flags().StringVar(&accountID, "account-id", "", "Provider account identifier")
	cmd.MarkFlagRequired("token")

	return cmd
}

func printDiagnostics(out io.Writer, diags []platform.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintf(out, "degraded: %s (%s)\n", d.Metric, d.Reason)
	}
}
