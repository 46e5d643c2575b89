package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yourusername/webblog/internal/auth"
)

func newDigestCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "digest",
		Short: "ブラウザが送るパスワードダイジェストを表示します",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			if email == "" || password == "" {
				return errors.New("--email and --password are required")
			}
			fmt.Fprintln(cmd.OutOrStdout(), auth.ClientDigest(email, password))
			return nil
		},
	}
	cmd.Flags().StringP("email", "e", "", "Email")
	cmd.Flags().StringP("password", "p", "", "Password")
	return cmd
}
