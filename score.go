package main

// minEnergyFactor is the consumption floor no amount of efficiency modules can go below.
const minEnergyFactor = 0.2

// ── Factors ─────────────────────────────────────────────────────────

func (s *Section) computeFactors() {
	s.energy = 1
	s.speed = 1
	s.pollution = 1
	s.productivity = 1
	s.moduleCost = 0

	for _, m := range s.Modules {
		e := m.Effect()
		s.energy += e.Energy
		s.speed += e.Speed
		s.pollution += e.Pollution
		s.productivity += e.Productivity
		s.moduleCost += float64(e.Cost)
	}
	// beacons transmit half their effect but cost the full module
	for _, b := range s.Beacons {
		e := b.Effect()
		s.energy += e.Energy / 2
		s.speed += e.Speed / 2
		s.pollution += e.Pollution / 2
		s.productivity += e.Productivity / 2
		s.moduleCost += float64(e.Cost)
	}

	if s.energy < minEnergyFactor {
		s.energy = minEnergyFactor
	}
}

// craftTime is the building-minutes one craft takes.
func (s *Section) craftTime() float64 {
	r := s.Recipe
	return r.Time / s.speed / 60 / r.CraftingSpeed
}

func (s *Section) pollute(crafts float64) float64 {
	return crafts * s.craftTime() * s.Recipe.Emissions * s.energy * s.pollution
}

func (s *Section) craftsFor(qty float64) float64 {
	return qty / s.Recipe.Yield / s.productivity
}

// buildingMultiplier grows by one per occupied beacon slot: every beacon
// is an extra physical entity next to the buildings it covers.
func (s *Section) buildingMultiplier() float64 {
	n := 1
	for _, b := range s.Beacons {
		if b != NoModule {
			n++
		}
	}
	return float64(n)
}

// ── Build order ─────────────────────────────────────────────────────

func (sol *Solution) startBuildOrder() {
	for i := range sol.sections {
		s := &sol.sections[i]
		s.Buildings = 0
		s.Crafts = 0
		s.Pollution = 0
		s.UnitsBuilt = 0
		s.computeFactors()
	}
	sol.ModuleCost = 0
	sol.Buildings = 0
	sol.Crafts = 0
	sol.Pollution = 0
	sol.UnitsBuilt = 0
}

// addBuild expands qty units of recipe id into crafts of it and of every
// ingredient below it. Factors must already be current.
func (sol *Solution) addBuild(id int, qty float64) {
	s := &sol.sections[id]
	n := s.craftsFor(qty)

	for _, ing := range s.Recipe.Ingredients {
		sol.addBuild(ing.ID, ing.Amount*n)
	}

	s.Buildings += n * s.craftTime() * s.buildingMultiplier()
	s.Crafts += n
	s.Pollution += s.pollute(n)
	s.UnitsBuilt += qty
}

func (sol *Solution) endBuildOrder() {
	sol.resolveJointProduction()

	for i := range sol.sections {
		s := &sol.sections[i]
		sol.ModuleCost += s.moduleCost
		sol.Buildings += s.Buildings
		sol.Crafts += s.Crafts
		sol.Pollution += s.Pollution
		sol.UnitsBuilt += s.UnitsBuilt
	}
}

// Compute re-evaluates every derived quantity of the solution from its
// current module assignment.
func (sol *Solution) Compute() {
	sol.startBuildOrder()
	for _, d := range sol.problem.demand {
		sol.addBuild(d.ID, d.Quantity)
	}
	sol.endBuildOrder()
}

// ── Joint production ────────────────────────────────────────────────

// jointPlan is the number of crafts each process of the oil cluster needs.
type jointPlan struct {
	Refinery      float64
	HeavyCracking float64
	LightCracking float64
}

// solveJoint balances refinery output and both cracking steps against the
// net heavy/light/gas demand. c2..c4 are refinery gas/light/heavy yields,
// c5/c6 light cracking in/out and c7/c8 heavy cracking in/out, all already
// scaled by productivity where it applies.
func solveJoint(reqHO, reqLO, reqPG float64, y Yields) jointPlan {
	c2, c3, c4 := y.C2, y.C3, y.C4
	c5, c6 := y.C5, y.C6
	c7, c8 := y.C7, y.C8

	ratioHO := 1 / c4
	ratioLO := c7 / (c3*c7 + c4*c8)
	ratioPG := (c5 * c7) / (c2*c5*c7 + c3*c6*c7 + c4*c8*c6)

	recipesHO := reqHO * ratioHO
	recipesLO := (reqLO - c3*recipesHO) * ratioLO
	recipesPG := (reqPG - c2*(recipesHO+recipesLO)) * ratioPG
	refinery := recipesHO + recipesLO + recipesPG

	convertedHOtoLO := refinery*c4 - reqHO
	convertedLOtoPG := refinery*c3 + convertedHOtoLO*c8/c7 - reqLO

	return jointPlan{
		Refinery:      refinery,
		HeavyCracking: convertedHOtoLO / c7,
		LightCracking: convertedLOtoPG / c5,
	}
}

// resolveJointProduction does not clamp the plan. When heavy oil dominates
// the demand a cracking step comes out negative, and so do its crafts and
// pollution; reversedJoint reports when that happened.
func (sol *Solution) resolveJointProduction() {
	j := &sol.problem.joint
	if !j.enabled {
		return
	}

	// co-products without a recipe never accumulate demand
	demand := func(id int) float64 {
		if id == 0 {
			return 0
		}
		return sol.sections[id].UnitsBuilt
	}
	reqHO := demand(j.heavy)
	reqLO := demand(j.light)
	reqPG := demand(j.gas)

	aop := &sol.sections[j.refinery]
	hoc := &sol.sections[j.heavyCracking]
	loc := &sol.sections[j.lightCracking]

	y := j.yields
	y.C2 *= aop.productivity
	y.C3 *= aop.productivity
	y.C4 *= aop.productivity
	y.C6 *= loc.productivity
	y.C8 *= hoc.productivity

	plan := solveJoint(reqHO, reqLO, reqPG, y)

	// addBuild divides by productivity again; feed it units, not crafts
	sol.addBuild(j.refinery, plan.Refinery*aop.productivity)
	sol.addBuild(j.heavyCracking, plan.HeavyCracking*hoc.productivity)
	sol.addBuild(j.lightCracking, plan.LightCracking*loc.productivity)
}

// reversedJoint names the cluster processes whose last evaluation planned a
// negative number of crafts.
func (sol *Solution) reversedJoint() []string {
	j := &sol.problem.joint
	if !j.enabled {
		return nil
	}
	var names []string
	for _, id := range []int{j.refinery, j.heavyCracking, j.lightCracking} {
		if id != 0 && sol.sections[id].Crafts < 0 {
			names = append(names, sol.sections[id].Recipe.Name)
		}
	}
	return names
}
