package main

import (
	"context"
	"flag"
	"sort"
	"time"

	mongoMigration "lodge/internal/migrations/mongo"
	"lodge/pkg/config"
)

const JobName = "mongo-migration"

func main() {
	timeout := flag.Duration("timeout", 2*time.Minute, "overall deadline for the migration")
	dryRun := flag.Bool("dry-run", false, "list the collections and index counts without touching the database")
	flag.Parse()

	cfg := config.Load(JobName)
	if *dryRun {
		describe(cfg)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	cfg.SetMongo()
	cfg.Log.Info("Starting Mongo migration job", "database", cfg.MongoDatabaseName, "timeout", *timeout)
	defer cfg.GracefulShutdown()
	migrateMongo(ctx, cfg)
	cfg.Log.Info("Migration completed successfully")
}

func describe(cfg *config.Config) {
	defs := mongoMigration.Collections()
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		cfg.Log.Info("Planned collection",
			"database", cfg.MongoDatabaseName,
			"collection", name,
			"indexes", len(defs[name].Indexes),
			"has_validator", defs[name].Validator != nil,
		)
	}
}

func migrateMongo(ctx context.Context, cfg *config.Config) {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	if err := mongoMigration.RunMigration(ctx, db, cfg.Log); err != nil {
		cfg.Log.Error("Migration failed", "error", err)
		cfg.GracefulShutdown()
		cfg.Log.Fatal("Migration job aborted")
	}
}
