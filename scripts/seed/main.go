// Seed adds the tasks listed in a YAML fixture to the configured slot.
// Run from project root: go run ./scripts/seed --fixture scripts/seed/tasks.yaml
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"task-tracker/internal/config"
	"task-tracker/internal/envfile"
	"task-tracker/internal/storage"
	"task-tracker/internal/tasks"

	"github.com/spf13/pflag"
)

func main() {
	_ = envfile.Load(".env")
	fixture := pflag.String("fixture", "scripts/seed/tasks.yaml", "YAML file with the tasks to add")
	pflag.Parse()

	ctx := context.Background()
	cfg := config.Get()

	f, err := os.Open(*fixture)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Open fixture failed:", err)
		os.Exit(1)
	}
	defer f.Close()
	entries, err := readFixture(f)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Fixture invalid:", err)
		os.Exit(1)
	}

	backend, err := storage.Open(ctx, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Storage not available:", err)
		os.Exit(1)
	}
	store := tasks.NewStore(backend, tasks.WithTimestampLayout(cfg.TimestampLayout))
	if err := store.Load(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Load tasks failed:", err)
		os.Exit(1)
	}

	start := time.Now()
	added, err := seed(ctx, store, entries)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Seed failed:", err)
		os.Exit(1)
	}
	fmt.Printf("Done: %d tasks added (%d total) in %v\n", added, len(store.List()), time.Since(start))
}
