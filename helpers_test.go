package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// chainRecipes is the two-step network A -> B: A yields 2 per craft with no
// emissions and B takes 3 A per craft.
const chainRecipes = `[
	{"name": "A", "energy_required": 1, "result_count": 2, "crafting_speed": 1, "emissions_per_minute": 0, "module_slots": 2, "ingredients": []},
	{"name": "B", "energy_required": 1, "result_count": 1, "crafting_speed": 1, "emissions_per_minute": 0, "module_slots": 2, "ingredients": [{"name": "A", "amount": 3}]}
]`

// smelterRecipes has one polluting recipe that takes a minute per craft.
const smelterRecipes = `[
	{"name": "ore", "energy_required": 60, "result_count": 1, "crafting_speed": 1, "emissions_per_minute": 10, "module_slots": 2, "ingredients": []},
	{"name": "plate", "energy_required": 60, "result_count": 1, "crafting_speed": 1, "emissions_per_minute": 4, "module_slots": 2, "ingredients": [{"name": "ore", "amount": 1}]}
]`

// oilRecipes is a small network with the refinery cluster and consumers of
// all three co-products.
const oilRecipes = `[
	{"name": "crude-oil", "energy_required": 0.5, "result_count": 1, "crafting_speed": 1, "emissions_per_minute": 10, "module_slots": 2, "ingredients": []},
	{"name": "water", "energy_required": 0.1, "result_count": 120, "crafting_speed": 1, "emissions_per_minute": 0, "module_slots": 0, "ingredients": []},
	{"name": "coal", "energy_required": 2, "result_count": 1, "crafting_speed": 1, "emissions_per_minute": 12, "module_slots": 2, "ingredients": []},
	{"name": "advanced-oil-processing", "energy_required": 5, "result_count": 1, "crafting_speed": 1, "emissions_per_minute": 6, "module_slots": 3,
	 "ingredients": [{"name": "crude-oil", "amount": 100}, {"name": "water", "amount": 50}]},
	{"name": "heavy-oil-cracking", "energy_required": 2, "result_count": 1, "crafting_speed": 1, "emissions_per_minute": 4, "module_slots": 3,
	 "ingredients": [{"name": "heavy-oil", "amount": 40}, {"name": "water", "amount": 30}]},
	{"name": "light-oil-cracking", "energy_required": 2, "result_count": 1, "crafting_speed": 1, "emissions_per_minute": 4, "module_slots": 3,
	 "ingredients": [{"name": "light-oil", "amount": 30}, {"name": "water", "amount": 30}]},
	{"name": "heavy-oil", "energy_required": 0, "result_count": 1, "crafting_speed": 1, "emissions_per_minute": 0, "module_slots": 0, "ingredients": []},
	{"name": "light-oil", "energy_required": 0, "result_count": 1, "crafting_speed": 1, "emissions_per_minute": 0, "module_slots": 0, "ingredients": []},
	{"name": "petroleum-gas", "energy_required": 0, "result_count": 1, "crafting_speed": 1, "emissions_per_minute": 0, "module_slots": 0, "ingredients": []},
	{"name": "plastic-bar", "energy_required": 1, "result_count": 2, "crafting_speed": 1, "emissions_per_minute": 4, "module_slots": 3,
	 "ingredients": [{"name": "petroleum-gas", "amount": 20}, {"name": "coal", "amount": 1}]},
	{"name": "lubricant", "energy_required": 1, "result_count": 10, "crafting_speed": 1, "emissions_per_minute": 4, "module_slots": 3,
	 "ingredients": [{"name": "heavy-oil", "amount": 10}]},
	{"name": "solid-fuel", "energy_required": 2, "result_count": 1, "crafting_speed": 1, "emissions_per_minute": 4, "module_slots": 3,
	 "ingredients": [{"name": "light-oil", "amount": 10}]}
]`

// testConfig is DefaultConfig without the science demand or the oil cluster.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Demand = nil
	cfg.Joint.Enabled = false
	cfg.BeaconSlots = 0
	cfg.Search.Iterations = 2000
	cfg.Search.SyncInterval = 100
	cfg.Search.Seed = 7
	return cfg
}

func testProblem(t *testing.T, recipes string, cfg Config) *Problem {
	t.Helper()
	net, err := loadNetworkFromStrings(recipes, "", cfg.BeaconSlots)
	require.NoError(t, err)
	p, err := NewProblem(net, cfg)
	require.NoError(t, err)
	return p
}

func section(t *testing.T, sol *Solution, name string) *Section {
	t.Helper()
	s := sol.Section(name)
	require.NotNil(t, s, "no section %s", name)
	return s
}
