package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Run is a persisted optimization: its totals and the best layout found.
type Run struct {
	ID         string     `json:"id"`
	Objective  string     `json:"objective"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt time.Time  `json:"finishedAt"`
	Iterations int64      `json:"iterations"`
	Workers    int        `json:"workers"`
	Metric     float64    `json:"metric"`
	ModuleCost float64    `json:"moduleCost"`
	Buildings  float64    `json:"buildings"`
	Pollution  float64    `json:"pollution"`
	Cancelled  bool       `json:"cancelled"`
	Assignment Assignment `json:"assignment"`
}

func newRunID() string {
	return uuid.NewString()
}

// Store persists runs so a later search can resume from a stored layout.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run Run) error
	GetRun(ctx context.Context, id string) (Run, bool, error)
	// ListRuns returns the most recent runs first; limit <= 0 means all.
	ListRuns(ctx context.Context, limit int) ([]Run, error)
}

func NewStore(kind, sqlitePath string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(sqlitePath), nil
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", kind)
	}
}

func CloseIfSupported(store Store) error {
	closer, ok := store.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}

// ── Codec ───────────────────────────────────────────────────────────

const runCodecVersion = 1

var ErrVersionMismatch = errors.New("record version mismatch")

type runRecord struct {
	Version int `json:"version"`
	Run
}

func encodeRun(r Run) ([]byte, error) {
	return json.Marshal(runRecord{Version: runCodecVersion, Run: r})
}

func decodeRun(data []byte) (Run, error) {
	var rec runRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return Run{}, err
	}
	if rec.Version != runCodecVersion {
		return Run{}, fmt.Errorf("%w: got %d, want %d", ErrVersionMismatch, rec.Version, runCodecVersion)
	}
	return rec.Run, nil
}

// ── Memory ──────────────────────────────────────────────────────────

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	runs        map[string]Run
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.runs = make(map[string]Run)
	return nil
}

func (s *MemoryStore) SaveRun(_ context.Context, run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errors.New("store is not initialized")
	}
	if run.ID == "" {
		return errors.New("run id is required")
	}
	s.runs[run.ID] = run
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, id string) (Run, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	return run, ok, nil
}

func (s *MemoryStore) ListRuns(_ context.Context, limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]Run, 0, len(s.runs))
	for _, r := range s.runs {
		runs = append(runs, r)
	}
	slices.SortFunc(runs, func(a, b Run) int {
		return b.StartedAt.Compare(a.StartedAt)
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}
