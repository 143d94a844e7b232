package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAccountCommand() *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "account",
		Short: "Resolve the identity to operate as",
		RunE: func(cmd *cobra.Command, args []string) error {
			adapter, err := openPlatform(platformFlag)
			if err != nil {
				return err
			}
			account, err := adapter.Account(cmd.Context(), token)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "id:    %s\n", account.ID)
			fmt.Fprintf(out, "name:  %s\n", account.Name)
			fmt.Fprintf(out, "type:  %s\n", account.Type)
			if account.AvatarURL != "" {
				fmt.Fprintf(out, "avatar: %s\n", account.AvatarURL)
			}
			if account.PageAccessToken != "" {
				fmt.Fprintln(out, "page access token attached (preferred for publish and metrics)")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Access token")
	cmd.MarkFlagRequired("token")

	return cmd
}
