package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"go.uber.org/multierr"

	"github.com/lifehub/lifehub/internal/catalog"
	"github.com/lifehub/lifehub/internal/config"
	"github.com/lifehub/lifehub/internal/ingest"
	"github.com/lifehub/lifehub/internal/ingest/alpha"
	"github.com/lifehub/lifehub/internal/logging"
	"github.com/lifehub/lifehub/internal/progression"
	"github.com/lifehub/lifehub/internal/replication"
	"github.com/lifehub/lifehub/internal/state"
	"github.com/lifehub/lifehub/internal/storage"
	"github.com/lifehub/lifehub/internal/tracker"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	csvPath := flag.String("file", "", "path to Alpha Progression CSV export (required)")
	catalogPath := flag.String("catalog", "", "optional exercise catalog YAML, overrides saved templates")
	dryRun := flag.Bool("dry-run", false, "report counts without scoring or saving")
	flag.Parse()

	if *csvPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: lifehub-import -config config.yaml -file export.csv [-catalog catalog.yaml] [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	log, logCloser := logging.New(cfg.Log, os.Stdout)
	defer logCloser.Close()

	f, err := os.Open(*csvPath)
	if err != nil {
		log.Error("failed to open export", "path", *csvPath, "error", err)
		os.Exit(1)
	}
	defer f.Close()

	ctx := context.Background()

	kv, err := storage.Open(ctx, cfg.Storage.StorageOptions())
	if err != nil {
		log.Error("failed to open storage", "error", err)
		os.Exit(1)
	}

	// Replayed sessions are credited at their own dates, not at wall time.
	clock := time.Now()
	now := func() time.Time { return clock }

	vaultOpts := []state.Option{
		state.WithClock(now),
		state.WithHeight(cfg.Rules.HeightM),
	}

	var dispatcher *replication.Dispatcher
	if cfg.Replication.Enabled && !*dryRun {
		client := replication.NewClient(cfg.Replication.URL, cfg.Replication.APIKey, cfg.Replication.Document, cfg.Replication.Timeout)
		dispatcher = replication.NewDispatcher(client, log, nil, cfg.Replication.Timeout)
		dispatcher.Start(ctx)
		vaultOpts = append(vaultOpts, state.WithNotifier(dispatcher))
	}

	vault, err := state.Open(ctx, kv, log, vaultOpts...)
	if err != nil {
		log.Error("failed to load state", "error", err)
		os.Exit(1)
	}

	cat := catalog.New(vault.Templates...)
	if *catalogPath != "" {
		fileCat, err := catalog.LoadFile(*catalogPath)
		if err != nil {
			log.Error("failed to load catalog", "error", err)
			os.Exit(1)
		}
		cat.Add(fileCat.Templates()...)
	}
	log.Info("catalog loaded", "exercises", cat.Len())

	target := alpha.Target{Pin: func(t time.Time) { clock = t }}
	if last := vault.Profile.LastWorkout; last != nil {
		target.After = *last
	}
	if *dryRun {
		log.Info("DRY RUN mode: nothing will be scored or saved")
	} else {
		engine := progression.New(vault.Profile, vault, log,
			progression.WithRules(cfg.Rules.Progression()),
			progression.WithClock(now),
		)
		target.Logger = tracker.New(engine, vault, log, nil)
	}

	result, err := alpha.NewProvider(cat, log).Ingest(ctx, f, target)
	if result != nil {
		printStats(log, result)
	}

	var closeErr error
	if dispatcher != nil {
		closeErr = multierr.Append(closeErr, dispatcher.Close())
	}
	closeErr = multierr.Combine(closeErr, kv.Close())
	if closeErr != nil {
		log.Warn("close error", "error", closeErr)
	}

	if err != nil {
		log.Error("import failed", "error", err)
		os.Exit(1)
	}
	log.Info("import complete", "result", result.Message)
}

func printStats(log *slog.Logger, r *ingest.Result) {
	log.Info("import stats",
		"sessions_received", r.SessionsReceived,
		"sessions_imported", r.SessionsImported,
		"sessions_skipped", r.SessionsSkipped,
		"exercises_scored", r.ExercisesScored,
		"sets_imported", r.SetsImported,
		"warmups_skipped", r.WarmupsSkipped,
		"total_fp", r.TotalFP,
		"new_prs", r.NewPRs,
		"level_ups", r.LevelUps,
	)
	if len(r.UnknownExercises) > 0 {
		log.Info("exercises not in catalog (scored without muscle targets)", "exercises", r.UnknownExercises)
	}
}
