package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pratik-mahalle/sitevoice/internal/config"
	"github.com/pratik-mahalle/sitevoice/internal/repository/postgres"
	"github.com/pratik-mahalle/sitevoice/migrations"
)

const usage = `usage: migrate <command>

commands:
  up          apply all pending migrations
  down [n]    revert the last n migrations (default 1)
  version     print the current schema version`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	cfg := config.LoadDatabase()
	db, err := postgres.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	fs := migrations.GetFS()

	switch os.Args[1] {
	case "up":
		err = postgres.RunMigrations(db, fs)
	case "down":
		steps := 1
		if len(os.Args) > 2 {
			steps, err = strconv.Atoi(os.Args[2])
			if err != nil {
				fmt.Fprintf(os.Stderr, "Invalid step count %q\n", os.Args[2])
				os.Exit(2)
			}
		}
		err = postgres.RollbackMigrations(db, fs, steps)
	case "version":
		// handled below
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
		os.Exit(1)
	}

	status, err := postgres.GetMigrationStatus(db, fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read migration status: %v\n", err)
		os.Exit(1)
	}

	dirty := ""
	if status.Dirty {
		dirty = " (dirty)"
	}
	fmt.Printf("%s database at version %d%s\n", cfg.Driver, status.Version, dirty)
}
