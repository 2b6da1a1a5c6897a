package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"surveyhub/internal/config"
	"surveyhub/internal/logger"
	"surveyhub/internal/reconcile"
	"surveyhub/internal/repository"
	"surveyhub/internal/source"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	dir := flag.String("dir", "internal/source/testdata", "directory holding source1.json, source2.json and source3.xml")
	force := flag.Bool("force", false, "replace an existing collection")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to build logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := seed(cfg, log, *dir, *force); err != nil {
		log.Fatal("seed failed", zap.Error(err))
	}
}

func seed(cfg *config.Config, log *zap.Logger, dir string, force bool) error {
	payloads, err := source.LoadDir(dir)
	if err != nil {
		return err
	}
	res, err := reconcile.NewEngine(log).Reconcile(payloads)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	client, err := repository.Connect(ctx, cfg.MongoURI(), cfg.Mongo.MaxPoolSize)
	if err != nil {
		return err
	}
	defer client.Disconnect(context.Background())

	repo := repository.NewResponseRepo(client.Database(cfg.Mongo.Database), cfg.Mongo.Collection, log)

	exists, err := repo.CollectionExists(ctx)
	if err != nil {
		return err
	}
	if exists && !force {
		log.Info("collection already populated, use -force to replace it",
			zap.String("collection", cfg.Mongo.Collection))
		return nil
	}

	inserted, err := repo.ReplaceAll(ctx, res.Documents)
	if err != nil {
		return err
	}
	if err := repo.EnsureIndexes(ctx); err != nil {
		log.Warn("failed to create indexes", zap.Error(err))
	}

	log.Info("seeded collection",
		zap.String("collection", cfg.Mongo.Collection),
		zap.Int("inserted", inserted),
		zap.Int("skipped_entries", res.Skipped))
	return nil
}
