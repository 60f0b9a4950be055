package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModuleNames(t *testing.T) {
	const recipes = `[
		{"name": "assembler", "energy_required": 1, "module_slots": 4, "ingredients": []},
		{"name": "furnace", "energy_required": 1, "module_slots": 2, "ingredients": []}
	]`
	cfg := testConfig()
	cfg.BeaconSlots = 3
	p := testProblem(t, recipes, cfg)
	sol := NewSolution(p)

	a := section(t, sol, "assembler")
	copy(a.Modules, []Module{NoModule, Efficiency1, Speed3, Productivity2})
	copy(a.Beacons, []Module{Efficiency2, NoModule, Speed1})

	assert.Equal(t, "S3P2E1__", a.ModuleNames())
	assert.Equal(t, "S1E2__", a.BeaconNames())
	assert.Equal(t, []Module{NoModule, Efficiency1, Speed3, Productivity2}, a.Modules, "display order leaves slots alone")

	f := section(t, sol, "furnace")
	f.Modules[1] = Efficiency1
	assert.Equal(t, "E1__    ", f.ModuleNames())
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "1,234.5000", formatNumber(1234.5))
}

func TestBuildReport(t *testing.T) {
	const recipes = `[
		{"name": "ore", "energy_required": 60, "emissions_per_minute": 10, "module_slots": 2, "ingredients": []},
		{"name": "plate", "energy_required": 60, "emissions_per_minute": 4, "module_slots": 2, "ingredients": [["ore", 1], ["flux", 1]]},
		{"name": "unused", "energy_required": 1, "module_slots": 2, "ingredients": []}
	]`
	cfg := testConfig()
	cfg.Demand = []Target{{Name: "plate", Quantity: 3}}
	p := testProblem(t, recipes, cfg)
	sol := NewSolution(p)
	section(t, sol, "ore").Modules[0] = Efficiency1
	sol.Compute()

	r := BuildReport(sol)
	assert.Equal(t, "pollution", r.Objective)
	assert.Equal(t, sol.Pollution, r.Metric)
	assert.Equal(t, 1.0, r.ModuleCost)
	assert.Equal(t, []string{"flux"}, r.Missing)

	var names []string
	for _, s := range r.Sections {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{sentinelName, "ore", "plate"}, names, "sections with nothing built are left out")
	assert.Equal(t, "E1__    ", r.Sections[1].Modules)

	out := FormatResult(sol)
	lines := strings.Split(out, "\n")
	require.NotEmpty(t, lines)
	assert.True(t, strings.HasPrefix(lines[0], "Factory Section"))
	assert.Contains(t, out, "objective:    pollution\n")
	assert.Contains(t, out, "module_costs: 1.0000\n")
	assert.Contains(t, out, "missing recipe for flux\n")
	assert.NotContains(t, out, "unused")
}
