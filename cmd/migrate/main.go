package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/pdv-backend/internal/catalog"
	"github.com/angelmondragon/pdv-backend/pkg/config"
	"github.com/angelmondragon/pdv-backend/pkg/db"
	"github.com/angelmondragon/pdv-backend/pkg/logger"
	"github.com/angelmondragon/pdv-backend/pkg/migrate"
)

type options struct {
	dir     string
	name    string
	version string
}

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "migrate"})

	_ = godotenv.Load()

	cmd := flag.String("cmd", "up", "migration command: up|down|status|version|create|validate|seed")
	var opts options
	flag.StringVar(&opts.dir, "dir", migrate.DefaultDir, "goose migrations directory")
	flag.StringVar(&opts.name, "name", "", "migration name (for create)")
	flag.StringVar(&opts.version, "version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	flag.Parse()

	// create and validate only touch the migrations directory.
	switch *cmd {
	case "create":
		if opts.name == "" {
			fail("missing -name for create", nil)
		}
		path, err := migrate.CreateSQLMigration(opts.dir, opts.name)
		if err != nil {
			fail("failed to create migration", err)
		}
		fmt.Println("created migration:", path)
		return
	case "validate":
		if err := migrate.ValidateDir(opts.dir); err != nil {
			fail("migration validation failed", err)
		}
		fmt.Println("migration validation passed")
		return
	}

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx = logg.WithFields(ctx, map[string]any{
		"env":    cfg.App.Env,
		"cmd":    *cmd,
		"dir":    opts.dir,
		"driver": cfg.DB.Driver,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	if *cmd == "seed" {
		seedCatalog(ctx, logg, dbClient)
		return
	}

	sqlDB, err := dbClient.SQL()
	requireResource(ctx, logg, "sql database", err)

	run, ok := commands[*cmd]
	if !ok {
		fail("unknown -cmd value: "+*cmd, nil)
	}
	logg.Info(ctx, "migrate ready")
	if err := run(ctx, sqlDB, opts); err != nil {
		fail("goose "+*cmd+" failed", err)
	}
}

var commands = map[string]func(context.Context, *sql.DB, options) error{
	"up": func(ctx context.Context, db *sql.DB, o options) error {
		return migrate.Run(ctx, db, o.dir, "up")
	},
	"down": func(ctx context.Context, db *sql.DB, o options) error {
		return migrate.Run(ctx, db, o.dir, "down")
	},
	"status": func(ctx context.Context, db *sql.DB, o options) error {
		return migrate.Run(ctx, db, o.dir, "status")
	},
	"version": func(ctx context.Context, db *sql.DB, o options) error {
		if o.version == "" {
			return fmt.Errorf("missing -version")
		}
		return migrate.MigrateToVersion(ctx, db, o.dir, o.version)
	},
}

// seedCatalog loads the demo products so a fresh database can ring up sales.
func seedCatalog(ctx context.Context, logg *logger.Logger, dbClient *db.Client) {
	repo, err := catalog.NewRepository(dbClient.DB())
	requireResource(ctx, logg, "catalog repository", err)

	added, err := catalog.Seed(ctx, repo, catalog.DemoItems())
	if err != nil {
		fail("catalog seed failed", err)
	}
	logg.Info(logg.WithField(ctx, "added", added), "catalog seeded")
}

func fail(msg string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	} else {
		fmt.Fprintln(os.Stderr, msg)
	}
	os.Exit(1)
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
