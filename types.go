package main

import "math/rand/v2"

// Module is one entry of the fixed module catalog. The zero value is NoModule.
type Module uint8

const (
	NoModule Module = iota
	Efficiency1
	Efficiency2
	Efficiency3
	Speed1
	Speed2
	Speed3
	// Productivity variants stay at the end so sampling can cut them off by count.
	Productivity1
	Productivity2
	Productivity3
	numModules
)

// numNonProdModules is the size of the catalog prefix without productivity variants.
const numNonProdModules = int(Productivity1)

// ModuleEffect holds the deltas a module applies to its section.
// Cost is arbitrary; it only steers the search towards lower tiers when the
// objective is otherwise tied.
type ModuleEffect struct {
	Energy       float64
	Speed        float64
	Pollution    float64
	Productivity float64
	Cost         int
	Tag          string
}

const noModuleTag = "__"

var moduleTable = [numModules]ModuleEffect{
	NoModule:      {Tag: noModuleTag},
	Efficiency1:   {Energy: -0.3, Cost: 1, Tag: "E1"},
	Efficiency2:   {Energy: -0.4, Cost: 100, Tag: "E2"},
	Efficiency3:   {Energy: -0.5, Cost: 10000, Tag: "E3"},
	Speed1:        {Energy: 0.5, Speed: 0.2, Cost: 1, Tag: "S1"},
	Speed2:        {Energy: 0.6, Speed: 0.3, Cost: 100, Tag: "S2"},
	Speed3:        {Energy: 0.7, Speed: 0.5, Cost: 10000, Tag: "S3"},
	Productivity1: {Energy: 0.4, Speed: -0.05, Productivity: 0.04, Pollution: 0.05, Cost: 1, Tag: "P1"},
	Productivity2: {Energy: 0.6, Speed: -0.1, Productivity: 0.06, Pollution: 0.07, Cost: 100, Tag: "P2"},
	Productivity3: {Energy: 0.8, Speed: -0.15, Productivity: 0.1, Pollution: 0.1, Cost: 10000, Tag: "P3"},
}

// Effect returns the catalog entry for m.
func (m Module) Effect() *ModuleEffect {
	return &moduleTable[m]
}

func (m Module) String() string {
	return moduleTable[m].Tag
}

func randomModule(rng *rand.Rand, allowProd bool) Module {
	n := int(numModules)
	if !allowProd {
		n = numNonProdModules
	}
	return Module(rng.IntN(n))
}

func parseModule(tag string) (Module, bool) {
	for m := range moduleTable {
		if moduleTable[m].Tag == tag {
			return Module(m), true
		}
	}
	return NoModule, false
}

// moduleBefore is the display order: real modules first, then by tag descending.
func moduleBefore(a, b Module) bool {
	if a == NoModule {
		return false
	}
	if b == NoModule {
		return true
	}
	return moduleTable[a].Tag > moduleTable[b].Tag
}

// ── Network ─────────────────────────────────────────────────────────

type Ingredient struct {
	Amount float64
	ID     int // 0 when the ingredient has no recipe
}

// Recipe is the static description of one production step. Recipes are
// shared read-only by every Solution.
type Recipe struct {
	ID            int
	Name          string
	Time          float64 // energy_required, seconds per craft at speed 1
	Yield         float64 // units per craft
	CraftingSpeed float64
	Emissions     float64 // per minute
	ModuleSlots   int
	BeaconSlots   int
	Ingredients   []Ingredient
	AllowProd     bool
}

const sentinelName = "not-found"

// Network is the loaded production graph. Recipes[0] is always the sentinel.
type Network struct {
	Recipes []*Recipe
	Missing []string // ingredient names with no recipe, sorted

	index map[string]int
}

// Lookup returns the id for name, or 0 when name has no recipe.
func (n *Network) Lookup(name string) int {
	return n.index[name]
}

// ── Section ─────────────────────────────────────────────────────────

// Section is one recipe's mutable state inside a Solution: its module and
// beacon assignment, the factors derived from it, and the build-order
// accumulators.
type Section struct {
	Recipe  *Recipe
	Modules []Module
	Beacons []Module

	energy       float64
	speed        float64
	pollution    float64
	productivity float64
	moduleCost   float64

	Buildings  float64
	Crafts     float64
	Pollution  float64
	UnitsBuilt float64
}

func newSection(r *Recipe) Section {
	return Section{
		Recipe:       r,
		Modules:      make([]Module, r.ModuleSlots),
		Beacons:      make([]Module, r.BeaconSlots),
		energy:       1,
		speed:        1,
		pollution:    1,
		productivity: 1,
	}
}

func (s *Section) slots() int {
	return len(s.Modules) + len(s.Beacons)
}

func (s *Section) clone() Section {
	c := *s
	c.Modules = append([]Module(nil), s.Modules...)
	c.Beacons = append([]Module(nil), s.Beacons...)
	return c
}

// EnergyFactor and friends expose the factors computed by the last evaluation.
func (s *Section) EnergyFactor() float64       { return s.energy }
func (s *Section) SpeedFactor() float64        { return s.speed }
func (s *Section) PollutionFactor() float64    { return s.pollution }
func (s *Section) ProductivityFactor() float64 { return s.productivity }
func (s *Section) ModuleCost() float64         { return s.moduleCost }
