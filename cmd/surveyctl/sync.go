package main

import (
	"context"
	"encoding/json"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"surveyhub/internal/app"
)

var syncForce bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch the three feeds and populate the collection",
	Long: `Fetch the three survey feeds, reconcile them into one document per
respondent and insert the result. An already populated collection is left
alone unless --force is given, in which case it is replaced.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().BoolVar(&syncForce, "force", false, "Replace an existing collection")
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log, nil)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	result, err := a.SyncService.EnsureInitialized(ctx, syncForce)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
