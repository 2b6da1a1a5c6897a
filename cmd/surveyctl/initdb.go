package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"surveyhub/internal/repository"
)

var initDBCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Create the application database user",
	Long: `Connect with the root credentials (MONGO_ROOT_USER /
MONGO_ROOT_PASSWORD) and create a readWrite user from MONGO_USER /
MONGO_PASSWORD on the configured database. An existing user is left as is.`,
	Args: cobra.NoArgs,
	RunE: runInitDB,
}

func init() {
	rootCmd.AddCommand(initDBCmd)
}

func runInitDB(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	client, err := repository.Connect(ctx, cfg.MongoURI(), cfg.Mongo.MaxPoolSize)
	if err != nil {
		return err
	}
	defer client.Disconnect(context.Background())

	created, err := repository.CreateAppUser(ctx, client.Database(cfg.Mongo.Database), cfg.Mongo.AppUser, cfg.Mongo.AppPassword)
	if err != nil {
		return err
	}
	if created {
		log.Info("application user created", zap.String("user", cfg.Mongo.AppUser), zap.String("database", cfg.Mongo.Database))
	} else {
		log.Info("application user already exists", zap.String("user", cfg.Mongo.AppUser))
	}
	fmt.Fprintln(cmd.OutOrStdout(), "ok")
	return nil
}
