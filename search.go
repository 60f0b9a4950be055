package main

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// ── Shared best ─────────────────────────────────────────────────────

// Publish records one improvement of the shared best.
type Publish struct {
	Worker     int       `json:"worker"`
	Iteration  int       `json:"iteration"`
	Metric     float64   `json:"metric"`
	ModuleCost float64   `json:"moduleCost"`
	At         time.Time `json:"at"`
}

// bestSolution is the only state workers share. It is touched only during
// reconciliation, never while mutating or evaluating.
type bestSolution struct {
	mu        sync.Mutex
	sol       *Solution
	publishes []Publish
}

func (b *bestSolution) snapshot() *Solution {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sol.Clone()
}

// reconcile publishes local if it beats the shared best, or returns a copy
// of the shared best if that beats local. It returns nil when local should
// be kept as is.
func (b *bestSolution) reconcile(worker, iter int, local *Solution, log *slog.Logger) *Solution {
	b.mu.Lock()
	defer b.mu.Unlock()

	if local.Less(b.sol) {
		b.sol = local.Clone()
		b.publishes = append(b.publishes, Publish{
			Worker:     worker,
			Iteration:  iter,
			Metric:     local.Metric(),
			ModuleCost: local.ModuleCost,
			At:         time.Now(),
		})
		log.Info("new best", "worker", worker, "iteration", iter,
			"metric", local.Metric(), "module_cost", local.ModuleCost)
		return nil
	}
	if b.sol.Less(local) {
		log.Debug("worker follows shared best", "worker", worker, "iteration", iter)
		return b.sol.Clone()
	}
	return nil
}

// ── Optimizer ───────────────────────────────────────────────────────

// Optimizer runs independent hill climbers that periodically converge on
// whichever of them currently leads.
type Optimizer struct {
	cfg  SearchConfig
	log  *slog.Logger
	best *bestSolution

	iterations atomic.Int64
}

// NewOptimizer evaluates initial and uses it as the starting shared best.
// initial is not modified afterwards.
func NewOptimizer(initial *Solution, cfg SearchConfig, logger *slog.Logger) *Optimizer {
	if logger == nil {
		logger = discardLogger()
	}
	if cfg.SyncInterval <= 0 {
		cfg.SyncInterval = DefaultConfig().Search.SyncInterval
	}
	start := initial.Clone()
	start.Compute()
	return &Optimizer{
		cfg:  cfg,
		log:  logger,
		best: &bestSolution{sol: start},
	}
}

// Result is the outcome of one Optimize call.
type Result struct {
	Best       *Solution
	Publishes  []Publish
	Iterations int64 // completed across all workers
	Workers    int
	Elapsed    time.Duration
	Cancelled  bool
}

// Optimize blocks until every worker has spent its iteration budget or ctx
// is done. The returned best is never worse than the initial solution.
func (o *Optimizer) Optimize(ctx context.Context) Result {
	start := time.Now()

	workers := o.cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	seed := o.cfg.Seed
	if seed == 0 {
		seed = uint64(start.UnixNano())
	}

	initial := o.best.snapshot()
	o.log.Info("search started",
		"objective", initial.problem.Objective.Name,
		"workers", workers,
		"iterations", o.cfg.Iterations,
		"deviations", o.cfg.Deviations,
		"initial_metric", initial.Metric())

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			rng := rand.New(rand.NewPCG(seed, uint64(id)))
			o.work(ctx, id, rng)
		}(w)
	}
	wg.Wait()

	o.best.mu.Lock()
	res := Result{
		Best:       o.best.sol.Clone(),
		Publishes:  append([]Publish(nil), o.best.publishes...),
		Iterations: o.iterations.Load(),
		Workers:    workers,
		Elapsed:    time.Since(start),
		Cancelled:  ctx.Err() != nil,
	}
	o.best.mu.Unlock()

	o.log.Info("search done",
		"metric", res.Best.Metric(),
		"module_cost", res.Best.ModuleCost,
		"iterations", res.Iterations,
		"publishes", len(res.Publishes),
		"elapsed", res.Elapsed,
		"cancelled", res.Cancelled)
	return res
}

func (o *Optimizer) work(ctx context.Context, id int, rng *rand.Rand) {
	local := o.best.snapshot()
	localBest := local.Clone()
	deviations := o.cfg.Deviations

	i := 0
	for ; i < o.cfg.Iterations; i++ {
		if ctx.Err() != nil {
			break
		}

		local.Mutate(rng)
		local.Compute()

		switch {
		case local.Less(localBest):
			localBest = local.Clone()
			deviations = o.cfg.Deviations
		case deviations == 0:
			// wandered too far without improving: back to our best
			local = localBest.Clone()
			deviations = o.cfg.Deviations
		default:
			deviations--
		}

		if i%o.cfg.SyncInterval == 0 {
			if follow := o.best.reconcile(id, i, localBest, o.log); follow != nil {
				localBest = follow
			}
		}
	}

	// i is the number of completed iterations whether the budget ran out
	// or ctx stopped us
	o.iterations.Add(int64(i))

	// final sync so an improvement found after the last interval is not lost
	o.best.reconcile(id, i, localBest, o.log)
}
