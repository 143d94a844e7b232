package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newAuthURLCommand() *cobra.Command {
	var (
		userID      string
		redirectURI string
	)

	cmd := &cobra.Command{
		Use:   "auth-url",
		Short: "Build the provider's authorize URL for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			adapter, err := openPlatform(platformFlag)
			if err != nil {
				return err
			}
			authURL, err := adapter.AuthURL(userID, redirectURI)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "url:   %s\n", authURL.URL)
			fmt.Fprintf(cmd.OutOrStdout(), "state: %s\n", authURL.State)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user-id", "", "Identity embedded in the anti-forgery state")
	cmd.Flags().StringVar(&redirectURI, "redirect-uri", "", "Callback URL registered with the provider")
	cmd.MarkFlagRequired("user-id")
	cmd.MarkFlagRequired("redirect-uri")

	return cmd
}

func newExchangeCommand() *cobra.Command {
	var (
		code        string
		redirectURI string
	)

	cmd := &cobra.Command{
		Use:   "exchange",
		Short: "Exchange an authorization code for a long-lived token",
		RunE: func(cmd *cobra.Command, args []string) error {
			adapter, err := openPlatform(platformFlag)
			if err != nil {
				return err
			}
			pair, err := adapter.HandleCallback(cmd.Context(), code, redirectURI)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "access_token: %s\n", pair.AccessToken)
			fmt.Fprintf(cmd.OutOrStdout(), "expires_at:   %s\n", pair.ExpiresAt.Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&code, "code", "", "Authorization code from the provider callback")
	cmd.Flags().StringVar(&redirectURI, "redirect-uri", "", "Callback URL used in the authorize step")
	cmd.MarkFlagRequired("code")
	cmd.MarkFlagRequired("redirect-uri")

	return cmd
}

func newRefreshCommand() *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Extend the validity of an existing access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			adapter, err := openPlatform(platformFlag)
			if err != nil {
				return err
			}
			pair, err := adapter.RefreshToken(cmd.Context(), token)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "access_token: %s\n", pair.AccessToken)
			fmt.Fprintf(cmd.OutOrStdout(), "expires_at:   %s\n", pair.ExpiresAt.Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Current access token")
	cmd.MarkFlagRequired("token")

	return cmd
}
