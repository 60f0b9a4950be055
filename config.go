package main

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is everything a run needs besides the network itself.
type Config struct {
	Objective   string       `yaml:"objective"`
	Search      SearchConfig `yaml:"search"`
	BeaconSlots int          `yaml:"beacon_slots"`
	Demand      []Target     `yaml:"demand"`
	Joint       JointConfig  `yaml:"joint"`
	Log         LogConfig    `yaml:"log"`
	Store       StoreConfig  `yaml:"store"`
}

// SearchConfig tunes the hill climber. Adjust these to trade speed for
// solution quality.
type SearchConfig struct {
	// Iterations is the per-worker iteration budget.
	Iterations int `yaml:"iterations"`
	// Deviations is how many non-improving moves in a row a worker keeps
	// before snapping back to its best.
	Deviations int `yaml:"deviations"`
	// Workers is the number of search goroutines; 0 means GOMAXPROCS.
	Workers int `yaml:"workers"`
	// SyncInterval is how many iterations pass between reconciliations with
	// the shared best.
	SyncInterval int `yaml:"sync_interval"`
	// Seed makes worker trajectories reproducible; 0 picks one from the clock.
	Seed uint64 `yaml:"seed"`
}

// Target is one top-level demand: Quantity units of Name per minute.
type Target struct {
	Name     string  `yaml:"name"`
	Quantity float64 `yaml:"quantity"`
}

// JointConfig names the oil cluster resolved in closed form.
type JointConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Refinery      string `yaml:"refinery"`
	HeavyCracking string `yaml:"heavy_cracking"`
	LightCracking string `yaml:"light_cracking"`
	Heavy         string `yaml:"heavy"`
	Light         string `yaml:"light"`
	Gas           string `yaml:"gas"`
	Yields        Yields `yaml:"yields"`
}

// Yields are the base fluid amounts of the cluster before productivity.
// Refinery: C2 gas, C3 light, C4 heavy. Light cracking: C5 in, C6 gas out.
// Heavy cracking: C7 in, C8 light out.
type Yields struct {
	C2 float64 `yaml:"c2"`
	C3 float64 `yaml:"c3"`
	C4 float64 `yaml:"c4"`
	C5 float64 `yaml:"c5"`
	C6 float64 `yaml:"c6"`
	C7 float64 `yaml:"c7"`
	C8 float64 `yaml:"c8"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

type StoreConfig struct {
	Kind string `yaml:"kind"` // memory or sqlite
	Path string `yaml:"path"`
}

const sciencePerMinute = 50

// DefaultConfig returns the all-science pollution run at 50 SPM.
func DefaultConfig() Config {
	return Config{
		Objective: PollutionObjective.Name,
		Search: SearchConfig{
			Iterations:   1_000_000,
			Deviations:   10,
			SyncInterval: 1000,
		},
		BeaconSlots: 12,
		Demand: []Target{
			{Name: "rocket-part", Quantity: sciencePerMinute / 10.0},
			{Name: "satellite", Quantity: sciencePerMinute / 1000.0},
			{Name: "automation-science-pack", Quantity: sciencePerMinute},
			{Name: "logistic-science-pack", Quantity: sciencePerMinute},
			{Name: "chemical-science-pack", Quantity: sciencePerMinute},
			{Name: "military-science-pack", Quantity: sciencePerMinute},
			{Name: "production-science-pack", Quantity: sciencePerMinute},
			{Name: "utility-science-pack", Quantity: sciencePerMinute},
		},
		Joint: JointConfig{
			Enabled:       true,
			Refinery:      "advanced-oil-processing",
			HeavyCracking: "heavy-oil-cracking",
			LightCracking: "light-oil-cracking",
			Heavy:         "heavy-oil",
			Light:         "light-oil",
			Gas:           "petroleum-gas",
			Yields:        Yields{C2: 55, C3: 45, C4: 25, C5: 30, C6: 20, C7: 40, C8: 30},
		},
		Log:   LogConfig{Level: "info", Format: "text"},
		Store: StoreConfig{Kind: "sqlite", Path: "runs.db"},
	}
}

// LoadConfig overlays the YAML file at path onto DefaultConfig. A demand
// list in the file replaces the default one.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	if _, err := objectiveByName(c.Objective); err != nil {
		errs = append(errs, err)
	}
	if c.Search.Iterations < 0 {
		errs = append(errs, fmt.Errorf("search.iterations must be >= 0, got %d", c.Search.Iterations))
	}
	if c.Search.Deviations < 0 {
		errs = append(errs, fmt.Errorf("search.deviations must be >= 0, got %d", c.Search.Deviations))
	}
	if c.Search.Workers < 0 {
		errs = append(errs, fmt.Errorf("search.workers must be >= 0, got %d", c.Search.Workers))
	}
	if c.Search.SyncInterval <= 0 {
		errs = append(errs, fmt.Errorf("search.sync_interval must be > 0, got %d", c.Search.SyncInterval))
	}
	if c.BeaconSlots < 0 {
		errs = append(errs, fmt.Errorf("beacon_slots must be >= 0, got %d", c.BeaconSlots))
	}
	for i, t := range c.Demand {
		if t.Name == "" {
			errs = append(errs, fmt.Errorf("demand[%d]: empty name", i))
		}
		if t.Quantity <= 0 {
			errs = append(errs, fmt.Errorf("demand[%d] %s: quantity must be > 0, got %g", i, t.Name, t.Quantity))
		}
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if f := c.Log.Format; f != "" && f != "text" && f != "json" {
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	switch c.Store.Kind {
	case "", "memory", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("unsupported store backend: %s", c.Store.Kind))
	}
	return errors.Join(errs...)
}
