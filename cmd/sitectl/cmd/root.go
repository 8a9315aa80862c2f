// Package cmd implements the sitectl operator commands.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aryan0dhankhar/storefront/internal/app"
	"github.com/aryan0dhankhar/storefront/internal/infrastructure/logger"
	"github.com/aryan0dhankhar/storefront/pkg/config"
)

var jsonOut bool

var rootCmd = &cobra.Command{
	Use:   "sitectl",
	Short: "Operate a storefront deployment",
	Long: `sitectl runs maintenance tasks against the storefront database.

It reads the same configuration as the server (config.yaml or
STOREFRONT_* environment variables).

Examples:
  sitectl migrate up
  sitectl templates seed
  sitectl user create --email ama@example.com --username ama --password s3cretpass
  sitectl token --email ama@example.com --password s3cretpass
  sitectl slug "Ma Boutique"`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "print machine-readable JSON")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// env is what commands touching storage need
type env struct {
	cfg   *config.Config
	log   *slog.Logger
	store *app.Store
}

func openEnv(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	// logs go to stderr so stdout stays scriptable
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logger.ParseLevel(cfg.LogLevel)}))

	store, err := app.OpenStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: log, store: store}, nil
}

func (e *env) Close() {
	e.store.Close()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printTableHeader(w io.Writer, cols ...string) {
	fmt.Fprintln(w, strings.Join(cols, "\t"))
}
