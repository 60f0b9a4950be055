package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
)

type demandTarget struct {
	ID       int
	Name     string
	Quantity float64
}

type jointIDs struct {
	enabled       bool
	refinery      int
	heavyCracking int
	lightCracking int
	heavy         int
	light         int
	gas           int
	yields        Yields
}

// Problem is the immutable part of a search: the network, what to build and
// how to rank layouts. Every Solution of one run shares it.
type Problem struct {
	Network   *Network
	Objective Objective

	demand  []demandTarget
	joint   jointIDs
	mutable []int // ids of sections with at least one slot

	// Unresolved lists demand and joint-production names with no recipe.
	Unresolved []string
}

// NewProblem resolves cfg against net. Names that do not resolve are kept
// as diagnostics and demand on them lands on the sentinel recipe.
func NewProblem(net *Network, cfg Config) (*Problem, error) {
	obj, err := objectiveByName(cfg.Objective)
	if err != nil {
		return nil, err
	}
	p := &Problem{Network: net, Objective: obj}

	resolve := func(name string) int {
		id := net.Lookup(name)
		if id == 0 {
			p.Unresolved = append(p.Unresolved, name)
		}
		return id
	}

	for _, t := range cfg.Demand {
		p.demand = append(p.demand, demandTarget{ID: resolve(t.Name), Name: t.Name, Quantity: t.Quantity})
	}

	if j := cfg.Joint; j.Enabled {
		p.joint = jointIDs{
			refinery:      resolve(j.Refinery),
			heavyCracking: resolve(j.HeavyCracking),
			lightCracking: resolve(j.LightCracking),
			heavy:         resolve(j.Heavy),
			light:         resolve(j.Light),
			gas:           resolve(j.Gas),
			yields:        j.Yields,
		}
		// a network without any of the processes has no cluster to solve
		p.joint.enabled = p.joint.refinery != 0 || p.joint.heavyCracking != 0 || p.joint.lightCracking != 0
		if p.joint.enabled {
			if err := validateJointYields(j.Yields); err != nil {
				return nil, err
			}
		}
	}

	for id, r := range net.Recipes {
		if r.ModuleSlots+r.BeaconSlots > 0 && id != 0 {
			p.mutable = append(p.mutable, id)
		}
	}
	return p, nil
}

// validateJointYields rejects yields for which the closed-form solution
// divides by zero or the balance system is singular.
func validateJointYields(y Yields) error {
	const eps = 1e-9

	var errs []error
	for _, c := range []struct {
		name string
		v    float64
	}{
		{"c4", y.C4},
		{"c5", y.C5},
		{"c7", y.C7},
		{"c3*c7+c4*c8", y.C3*y.C7 + y.C4*y.C8},
		{"c2*c5*c7+c3*c6*c7+c4*c8*c6", y.C2*y.C5*y.C7 + y.C3*y.C6*y.C7 + y.C4*y.C8*y.C6},
	} {
		if math.Abs(c.v) < eps {
			errs = append(errs, fmt.Errorf("joint yields: %s is zero", c.name))
		}
	}

	// refinery, heavy cracking and light cracking crafts against the net
	// heavy, light and gas output
	balance := jointBalance(y)
	if det := mat.Det(balance); math.Abs(det) < eps {
		errs = append(errs, fmt.Errorf("joint yields: balance matrix is singular (det=%g)", det))
	}
	return errors.Join(errs...)
}

func jointBalance(y Yields) *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		y.C4, -y.C7, 0,
		y.C3, y.C8, -y.C5,
		y.C2, 0, y.C6,
	})
}

// ── Run driver ──────────────────────────────────────────────────────

// RunOutcome is a finished optimization together with what it was run on.
type RunOutcome struct {
	Run    Run
	Result Result
}

// runOptimization is the driver shared by the CLI and the Lambda handler.
// resume, when non-nil, seeds the search with a stored layout.
func runOptimization(ctx context.Context, p *Problem, cfg Config, logger *slog.Logger, resume Assignment) (RunOutcome, error) {
	if logger == nil {
		logger = discardLogger()
	}
	for _, name := range p.Unresolved {
		logger.Warn("no recipe for configured name", "name", name)
	}

	initial := NewSolution(p)
	if resume != nil {
		if err := initial.ApplyAssignment(resume); err != nil {
			return RunOutcome{}, fmt.Errorf("resume: %w", err)
		}
	}

	started := time.Now()
	opt := NewOptimizer(initial, cfg.Search, logger)
	res := opt.Optimize(ctx)

	best := res.Best
	if reversed := best.reversedJoint(); len(reversed) > 0 {
		logger.Warn("joint production runs in reverse; pollution of these sections is negative",
			"recipes", reversed, "pollution", best.Pollution)
	}
	run := Run{
		ID:         newRunID(),
		Objective:  p.Objective.Name,
		StartedAt:  started.UTC(),
		FinishedAt: time.Now().UTC(),
		Iterations: res.Iterations,
		Workers:    res.Workers,
		Metric:     best.Metric(),
		ModuleCost: best.ModuleCost,
		Buildings:  best.Buildings,
		Pollution:  best.Pollution,
		Cancelled:  res.Cancelled,
		Assignment: best.Assignment(),
	}
	return RunOutcome{Run: run, Result: res}, nil
}
