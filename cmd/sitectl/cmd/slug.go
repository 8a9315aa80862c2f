package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aryan0dhankhar/storefront/internal/subdomain"
)

var slugCmd = &cobra.Command{
	Use:   "slug <name>",
	Short: "Print the subdomain base derived from a site name",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		slug := subdomain.Slugify(strings.Join(args, " "))
		if jsonOut {
			return printJSON(cmd.OutOrStdout(), map[string]string{"slug": slug})
		}
		fmt.Fprintln(cmd.OutOrStdout(), slug)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(slugCmd)
}
