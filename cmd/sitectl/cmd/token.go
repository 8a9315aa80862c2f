package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an API token for an owner",
	Long: `Check an owner's credentials and print a bearer token for the
site API. The token lifetime is auth.token_ttl.`,
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().String("email", "", "owner email (required)")
	tokenCmd.Flags().String("password", "", "owner password (required)")
	tokenCmd.MarkFlagRequired("email")
	tokenCmd.MarkFlagRequired("password")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, args []string) error {
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")

	e, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	token, user, err := e.accounts().Login(cmd.Context(), email, password)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"token":      token,
			"user_id":    user.ID,
			"role":       user.Role,
			"expires_in": e.cfg.Auth.TokenTTL.String(),
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
