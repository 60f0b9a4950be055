//go:build !lambda

package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

const usage = `Usage: factory-optimizer [flags] <recipe.json> [entities.json]

Positional arguments:
  recipe.json     Recipe dump produced by the data extraction script
  entities.json   Names of recipes that are placeable entities (no productivity)

Flags:
`

type cliFlags struct {
	configPath string
	objective  string
	iterations int
	deviations int
	workers    int
	seed       uint64
	jsonOut    bool
	verbose    bool
	store      string
	dbPath     string
	resume     string
	listRuns   bool
}

func parseFlags() cliFlags {
	var f cliFlags
	flag.StringVar(&f.configPath, "config", "", "YAML config file (defaults apply when empty)")
	flag.StringVar(&f.objective, "objective", "", "Objective: pollution or footprint")
	flag.IntVar(&f.iterations, "iterations", -1, "Iterations per worker")
	flag.IntVar(&f.deviations, "deviations", -1, "Non-improving moves tolerated before reverting")
	flag.IntVar(&f.workers, "workers", -1, "Worker goroutines (0 = GOMAXPROCS)")
	flag.Uint64Var(&f.seed, "seed", 0, "PRNG seed (0 = from clock)")
	flag.BoolVar(&f.jsonOut, "json", false, "Output the result as JSON")
	flag.BoolVar(&f.verbose, "verbose", false, "Log debug-level search progress to stderr")
	flag.StringVar(&f.store, "store", "", "Run store: memory or sqlite")
	flag.StringVar(&f.dbPath, "db", "", "SQLite path for -store sqlite")
	flag.StringVar(&f.resume, "resume", "", "Start from the best layout of a stored run id")
	flag.BoolVar(&f.listRuns, "list-runs", false, "List stored runs and exit")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()
	return f
}

// apply overrides cfg with every flag that was set.
func (f cliFlags) apply(cfg *Config) {
	if f.objective != "" {
		cfg.Objective = f.objective
	}
	if f.iterations >= 0 {
		cfg.Search.Iterations = f.iterations
	}
	if f.deviations >= 0 {
		cfg.Search.Deviations = f.deviations
	}
	if f.workers >= 0 {
		cfg.Search.Workers = f.workers
	}
	if f.seed != 0 {
		cfg.Search.Seed = f.seed
	}
	if f.verbose {
		cfg.Log.Level = "debug"
	}
	if f.store != "" {
		cfg.Store.Kind = f.store
	}
	if f.dbPath != "" {
		cfg.Store.Path = f.dbPath
	}
}

// checkPersistence rejects flags that read runs from earlier processes when
// the store only lives as long as this one.
func (f cliFlags) checkPersistence(storeKind string) error {
	if storeKind != "" && storeKind != "memory" {
		return nil
	}
	switch {
	case f.resume != "":
		return errors.New("-resume needs a persistent store (-store sqlite)")
	case f.listRuns:
		return errors.New("-list-runs needs a persistent store (-store sqlite)")
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	f := parseFlags()

	cfg := DefaultConfig()
	if f.configPath != "" {
		var err error
		if cfg, err = LoadConfig(f.configPath); err != nil {
			return err
		}
	}
	f.apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config:\n%w", err)
	}
	if err := f.checkPersistence(cfg.Store.Kind); err != nil {
		return err
	}

	logger, err := newLogger(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := NewStore(cfg.Store.Kind, cfg.Store.Path)
	if err != nil {
		return err
	}
	if err := store.Init(ctx); err != nil {
		return fmt.Errorf("init %s store: %w", cfg.Store.Kind, err)
	}
	defer CloseIfSupported(store)

	if f.listRuns {
		return listRuns(ctx, store)
	}

	args := flag.Args()
	if len(args) < 1 {
		flag.Usage()
		return errors.New("missing recipe.json")
	}
	var entitiesPath string
	if len(args) >= 2 {
		entitiesPath = args[1]
	}

	net, err := LoadNetwork(args[0], entitiesPath, cfg.BeaconSlots)
	if err != nil {
		return err
	}
	logger.Info("network loaded", "recipes", len(net.Recipes)-1, "missing", len(net.Missing))
	for _, name := range net.Missing {
		logger.Warn("missing recipe", "name", name)
	}

	p, err := NewProblem(net, cfg)
	if err != nil {
		return err
	}

	var resume Assignment
	if f.resume != "" {
		prev, ok, err := store.GetRun(ctx, f.resume)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("run %s not found", f.resume)
		}
		resume = prev.Assignment
		logger.Info("resuming", "run", prev.ID, "metric", prev.Metric)
	}

	out, err := runOptimization(ctx, p, cfg, logger, resume)
	if err != nil {
		return err
	}
	// the search context may already be cancelled; saving must still happen
	if err := store.SaveRun(context.WithoutCancel(ctx), out.Run); err != nil {
		logger.Error("save run", "run", out.Run.ID, "err", err)
	} else {
		logger.Info("run saved", "run", out.Run.ID, "store", cfg.Store.Kind)
	}

	best := out.Result.Best
	if f.jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Run    string `json:"run"`
			Report Report `json:"report"`
		}{out.Run.ID, BuildReport(best)})
	}
	fmt.Println(FormatResult(best))
	return nil
}

func listRuns(ctx context.Context, store Store) error {
	runs, err := store.ListRuns(ctx, 0)
	if err != nil {
		return err
	}
	fmt.Printf("%-36s %-10s %20s %12s %s\n", "Run", "Objective", "Started", "Metric", "Iterations")
	for _, r := range runs {
		fmt.Printf("%-36s %-10s %20s %12s %d\n",
			r.ID, r.Objective, r.StartedAt.Format("2006-01-02 15:04:05"), formatNumber(r.Metric), r.Iterations)
	}
	return nil
}
