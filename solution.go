package main

import (
	"fmt"
	"math/rand/v2"
)

// Solution is one candidate module layout over the whole network together
// with the totals of its last evaluation. A Solution owns its sections;
// only the Problem behind it is shared.
type Solution struct {
	problem  *Problem
	sections []Section

	ModuleCost float64
	Buildings  float64
	Crafts     float64
	Pollution  float64
	UnitsBuilt float64
}

// NewSolution returns the empty layout (no modules anywhere) for p. It is not
// evaluated yet.
func NewSolution(p *Problem) *Solution {
	recipes := p.Network.Recipes
	sol := &Solution{
		problem:  p,
		sections: make([]Section, len(recipes)),
	}
	for i, r := range recipes {
		sol.sections[i] = newSection(r)
	}
	return sol
}

func (sol *Solution) Clone() *Solution {
	c := *sol
	c.sections = make([]Section, len(sol.sections))
	for i := range sol.sections {
		c.sections[i] = sol.sections[i].clone()
	}
	return &c
}

func (sol *Solution) Problem() *Problem { return sol.problem }

// Sections exposes the per-recipe state in id order. Callers must not
// resize the slot slices.
func (sol *Solution) Sections() []Section { return sol.sections }

// Section returns the section for the named recipe, or nil.
func (sol *Solution) Section(name string) *Section {
	id := sol.problem.Network.Lookup(name)
	if id == 0 && name != sentinelName {
		return nil
	}
	return &sol.sections[id]
}

// Metric is the value of the problem's objective for this solution.
func (sol *Solution) Metric() float64 {
	return sol.problem.Objective.Metric(sol)
}

// Less reports whether sol is strictly better than other under the problem's
// objective.
func (sol *Solution) Less(other *Solution) bool {
	return sol.problem.Objective.Less(sol, other)
}

// ── Mutation ────────────────────────────────────────────────────────

// Mutate reassigns exactly one module or beacon slot, chosen uniformly among
// sections that have slots. Beacons never carry productivity modules.
func (sol *Solution) Mutate(rng *rand.Rand) {
	mutable := sol.problem.mutable
	if len(mutable) == 0 {
		return
	}
	s := &sol.sections[mutable[rng.IntN(len(mutable))]]

	slot := rng.IntN(s.slots())
	if beacon := slot - len(s.Modules); beacon >= 0 {
		s.Beacons[beacon] = randomModule(rng, false)
		return
	}
	s.Modules[slot] = randomModule(rng, s.Recipe.AllowProd)
}

// ── Objectives ──────────────────────────────────────────────────────

// Objective orders solutions by Metric, ascending, with module cost as the
// tie-break.
type Objective struct {
	Name   string
	Metric func(*Solution) float64
}

func (o Objective) Less(a, b *Solution) bool {
	ma, mb := o.Metric(a), o.Metric(b)
	if ma != mb {
		return ma < mb
	}
	return a.ModuleCost < b.ModuleCost
}

var (
	PollutionObjective = Objective{
		Name:   "pollution",
		Metric: func(s *Solution) float64 { return s.Pollution },
	}
	FootprintObjective = Objective{
		Name:   "footprint",
		Metric: func(s *Solution) float64 { return s.Buildings },
	}
)

var objectives = map[string]Objective{
	PollutionObjective.Name: PollutionObjective,
	FootprintObjective.Name: FootprintObjective,
}

func objectiveByName(name string) (Objective, error) {
	o, ok := objectives[name]
	if !ok {
		return Objective{}, fmt.Errorf("unknown objective %q", name)
	}
	return o, nil
}

// ── Assignment ──────────────────────────────────────────────────────

// SectionAssignment is the module tags of one section, in slot order.
type SectionAssignment struct {
	Modules []string `json:"modules,omitempty"`
	Beacons []string `json:"beacons,omitempty"`
}

// Assignment is a portable form of a layout keyed by recipe name. Sections
// with every slot empty are left out.
type Assignment map[string]SectionAssignment

func (sol *Solution) Assignment() Assignment {
	a := make(Assignment)
	for i := range sol.sections {
		s := &sol.sections[i]
		if !hasModules(s.Modules) && !hasModules(s.Beacons) {
			continue
		}
		a[s.Recipe.Name] = SectionAssignment{
			Modules: moduleTags(s.Modules),
			Beacons: moduleTags(s.Beacons),
		}
	}
	return a
}

// ApplyAssignment loads a onto sol. Recipes unknown to the network and
// unknown tags are skipped; a slot count that differs from the network is an
// error. Sections absent from a are left as they are.
func (sol *Solution) ApplyAssignment(a Assignment) error {
	for name, sa := range a {
		s := sol.Section(name)
		if s == nil {
			continue
		}
		if err := applyTags(s.Modules, sa.Modules); err != nil {
			return fmt.Errorf("%s modules: %w", name, err)
		}
		if err := applyTags(s.Beacons, sa.Beacons); err != nil {
			return fmt.Errorf("%s beacons: %w", name, err)
		}
		if !s.Recipe.AllowProd {
			for i, m := range s.Modules {
				if m.Effect().Productivity != 0 {
					s.Modules[i] = NoModule
				}
			}
		}
		for i, b := range s.Beacons {
			if b.Effect().Productivity != 0 {
				s.Beacons[i] = NoModule
			}
		}
	}
	return nil
}

func applyTags(dst []Module, tags []string) error {
	if len(tags) == 0 {
		return nil
	}
	if len(tags) != len(dst) {
		return fmt.Errorf("got %d slots, want %d", len(tags), len(dst))
	}
	for i, tag := range tags {
		if m, ok := parseModule(tag); ok {
			dst[i] = m
		}
	}
	return nil
}

func hasModules(ms []Module) bool {
	for _, m := range ms {
		if m != NoModule {
			return true
		}
	}
	return false
}

func moduleTags(ms []Module) []string {
	if !hasModules(ms) {
		return nil
	}
	tags := make([]string, len(ms))
	for i, m := range ms {
		tags[i] = m.String()
	}
	return tags
}
