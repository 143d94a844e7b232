package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/postlinehq/postline/internal/platform"
)

func newPublishCommand() *cobra.Command {
	var (
		token     string
		caption   string
		hashtags  []string
		mediaURL  string
		mediaType string
		accountID string
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish a content unit to a platform",
		Long: "publish translates the canonical content unit into the target " +
			"platform's publish protocol. The caption comes from --caption or " +
			"from stdin when piped.",
		RunE: func(cmd *cobra.Command, args []string) error {
			adapter, err := openPlatform(platformFlag)
			if err != nil {
				return err
			}

			resolved, err := resolveCaption(cmd, caption)
			if err != nil {
				return err
			}

			content := platform.Content{
				Caption:   resolved,
				Hashtags:  hashtags,
				MediaURL:  mediaURL,
				MediaType: platform.MediaType(strings.ToLower(strings.TrimSpace(mediaType))),
				AccountID: accountID,
			}
			result, err := adapter.Publish(cmd.Context(), token, content)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "post_id:  %s\n", result.PostID)
			fmt.Fprintf(cmd.OutOrStdout(), "post_url: %s\n", result.PostURL)
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Access token")
	cmd.Flags().StringVar(&caption, "caption", "", "Caption text (stdin when piped)")
	cmd.Flags().StringSliceVar(&hashtags, "hashtag", nil, "Hashtag to append (repeatable, leading # optional)")
	cmd.Flags().StringVar(&mediaURL, "media-url", "", "URL of the image or video to attach")
	cmd.Flags().StringVar(&mediaType, "media-type", "", "Kind of media (image or video)")
	cmd.Flags().StringVar(&accountID, "account", "", "Target account id (defaults to the caller's own identity)")
	cmd.Flags().SortFlags = false
	cmd.MarkFlagRequired("token")

	return cmd
}

func resolveCaption(cmd *cobra.Command, caption string) (string, error) {
	if caption != "" {
		return strings.TrimSpace(caption), nil
	}

	stdin := cmd.InOrStdin()
	if file, ok := stdin.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		return "", nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
