package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
)

const numberFormat = "#,###.####"

func formatNumber(v float64) string {
	return humanize.FormatFloat(numberFormat, v)
}

// displayModules returns the tags of ms in display order without touching
// the live assignment.
func displayModules(ms []Module) string {
	sorted := slices.Clone(ms)
	slices.SortStableFunc(sorted, func(a, b Module) int {
		switch {
		case moduleBefore(a, b):
			return -1
		case moduleBefore(b, a):
			return 1
		}
		return 0
	})
	var b strings.Builder
	for _, m := range sorted {
		b.WriteString(m.String())
	}
	return b.String()
}

// maxModuleSlots is the widest module column; narrower sections are padded.
const maxModuleSlots = 4

func (s *Section) ModuleNames() string {
	names := displayModules(s.Modules)
	if pad := maxModuleSlots - len(s.Modules); pad > 0 {
		names += strings.Repeat("  ", pad)
	}
	return names
}

func (s *Section) BeaconNames() string {
	return displayModules(s.Beacons)
}

// ── Report ──────────────────────────────────────────────────────────

// SectionReport is one built section of a solution.
type SectionReport struct {
	Name       string  `json:"name"`
	UnitsBuilt float64 `json:"unitsBuilt"`
	Crafts     float64 `json:"crafts"`
	Pollution  float64 `json:"pollution"`
	Buildings  float64 `json:"buildings"`
	Modules    string  `json:"modules"`
	Beacons    string  `json:"beacons"`
}

// Report is the JSON form of a solution.
type Report struct {
	Objective  string          `json:"objective"`
	Metric     float64         `json:"metric"`
	ModuleCost float64         `json:"moduleCost"`
	Buildings  float64         `json:"buildings"`
	Crafts     float64         `json:"crafts"`
	Pollution  float64         `json:"pollution"`
	UnitsBuilt float64         `json:"unitsBuilt"`
	Missing    []string        `json:"missing,omitempty"`
	Sections   []SectionReport `json:"sections"`
}

// BuildReport lists every section that produced something, in network order.
func BuildReport(sol *Solution) Report {
	p := sol.problem
	r := Report{
		Objective:  p.Objective.Name,
		Metric:     sol.Metric(),
		ModuleCost: sol.ModuleCost,
		Buildings:  sol.Buildings,
		Crafts:     sol.Crafts,
		Pollution:  sol.Pollution,
		UnitsBuilt: sol.UnitsBuilt,
		Missing:    p.Network.Missing,
	}
	for i := range sol.sections {
		s := &sol.sections[i]
		if s.UnitsBuilt <= 0 {
			continue
		}
		r.Sections = append(r.Sections, SectionReport{
			Name:       s.Recipe.Name,
			UnitsBuilt: s.UnitsBuilt,
			Crafts:     s.Crafts,
			Pollution:  s.Pollution,
			Buildings:  s.Buildings,
			Modules:    s.ModuleNames(),
			Beacons:    s.BeaconNames(),
		})
	}
	return r
}

// FormatResult renders the solution as a table followed by its totals.
func FormatResult(sol *Solution) string {
	r := BuildReport(sol)
	var b strings.Builder

	fmt.Fprintf(&b, "%-32s %16s %16s %16s %16s  %-10s %s\n",
		"Factory Section", "Units Built", "Recipes", "Pollution", "Buildings", "Modules", "Beacons")
	for _, s := range r.Sections {
		fmt.Fprintf(&b, "%-32s %16s %16s %16s %16s  %-10s %s\n",
			s.Name,
			formatNumber(s.UnitsBuilt),
			formatNumber(s.Crafts),
			formatNumber(s.Pollution),
			formatNumber(s.Buildings),
			s.Modules,
			s.Beacons)
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "objective:    %s\n", r.Objective)
	fmt.Fprintf(&b, "module_costs: %s\n", formatNumber(r.ModuleCost))
	fmt.Fprintf(&b, "buildings:    %s\n", formatNumber(r.Buildings))
	fmt.Fprintf(&b, "recipes:      %s\n", formatNumber(r.Crafts))
	fmt.Fprintf(&b, "pollution:    %s\n", formatNumber(r.Pollution))
	fmt.Fprintf(&b, "units_built:  %s\n", formatNumber(r.UnitsBuilt))
	for _, m := range r.Missing {
		fmt.Fprintf(&b, "missing recipe for %s\n", m)
	}
	return b.String()
}
