package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aryan0dhankhar/storefront/internal/app"
	"github.com/aryan0dhankhar/storefront/internal/domain"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Manage the template catalogue",
}

var templatesSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert or refresh the starter templates",
	RunE:  runTemplatesSeed,
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active templates",
	RunE:  runTemplatesList,
}

func init() {
	templatesCmd.AddCommand(templatesSeedCmd)
	templatesCmd.AddCommand(templatesListCmd)
	rootCmd.AddCommand(templatesCmd)
}

func runTemplatesSeed(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	seeded, err := app.SeedTemplates(cmd.Context(), e.store.Templates, e.log)
	if err != nil {
		return err
	}
	return printTemplates(cmd.OutOrStdout(), seeded)
}

func runTemplatesList(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	templates, err := e.store.Templates.ListActive(cmd.Context())
	if err != nil {
		return err
	}
	return printTemplates(cmd.OutOrStdout(), templates)
}

func printTemplates(out io.Writer, templates []*domain.Template) error {
	if jsonOut {
		return printJSON(out, map[string]any{"templates": templates, "count": len(templates)})
	}
	if len(templates) == 0 {
		fmt.Fprintln(out, "No templates found")
		return nil
	}

	w := newTable(out)
	printTableHeader(w, "ID", "NAME", "CATEGORY", "ACTIVE")
	for _, t := range templates {
		fmt.Fprintf(w, "%d\t%s\t%s\t%t\n", t.ID, t.Name, t.Category, t.IsActive)
	}
	return w.Flush()
}
