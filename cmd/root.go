/*
Copyright © 2025 postlinehq

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/postlinehq/postline/internal/logutil"
)

var (
	platformFlag string
	verboseFlag  bool
)

// Execute runs the root command.
func Execute() error {
	return newRootCommand().Execute()
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "postline",
		Short: "Publish and measure content across social platforms",
		Long: "postline drives social platforms through one adapter contract: " +
			"OAuth lifecycle, content publishing, and metrics collection for " +
			"Facebook, Instagram, Mastodon, Twitter/X, and Bluesky.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logutil.SetVerbose(verboseFlag)
		},
		Example: `  postline auth-url -p facebook --user-id 42 --redirect-uri https://app.example/cb
  postline publish -p instagram --token $TOKEN --caption "Hello" --media-url https://cdn.example/img.png --media-type image
  postline post-metrics -p facebook --token $TOKEN --post-id 1234_5678`,
	}

	cmd.PersistentFlags().StringVarP(&platformFlag, "platform", "p", "", "Target platform (facebook, instagram, mastodon, twitter, bluesky)")
	cmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "V", false, "Enable debug logging")

	cmd.AddCommand(
		newAuthURLCommand(),
		newExchangeCommand(),
		newRefreshCommand(),
		newAccountCommand(),
		newPublishCommand(),
		newPostMetricsCommand(),
		newAccountMetricsCommand(),
		newCompletionCommand(),
	)

	return cmd
}
