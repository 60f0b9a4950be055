package main

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/tidwall/gjson"
)

var errInvalidJSON = errors.New("invalid JSON")

// LoadNetwork reads the recipe and entity dumps produced by the data
// extraction script. entitiesPath may be empty.
func LoadNetwork(recipePath, entitiesPath string, beaconSlots int) (*Network, error) {
	recipeBytes, err := os.ReadFile(recipePath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", recipePath, err)
	}
	var entities string
	if entitiesPath != "" {
		entityBytes, err := os.ReadFile(entitiesPath)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", entitiesPath, err)
		}
		entities = string(entityBytes)
	}
	net, err := loadNetworkFromStrings(string(recipeBytes), entities, beaconSlots)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", recipePath, err)
	}
	return net, nil
}

func loadNetworkFromStrings(recipeJSON, entitiesJSON string, beaconSlots int) (*Network, error) {
	if !gjson.Valid(recipeJSON) {
		return nil, fmt.Errorf("recipes: %w", errInvalidJSON)
	}
	doc := gjson.Parse(recipeJSON)
	if !doc.IsArray() {
		return nil, errors.New("recipes: want a JSON array")
	}

	net := &Network{
		Recipes: []*Recipe{{
			ID:            0,
			Name:          sentinelName,
			Yield:         1,
			CraftingSpeed: 1,
		}},
		index: map[string]int{sentinelName: 0},
	}

	// first pass: ids, so ingredients can refer forward
	items := doc.Array()
	kept := make([]gjson.Result, 0, len(items))
	for i, v := range items {
		name := v.Get("name").String()
		if name == "" {
			return nil, fmt.Errorf("recipe #%d: missing name", i)
		}
		if _, dup := net.index[name]; dup {
			continue
		}
		r, err := parseRecipe(v, len(net.Recipes), beaconSlots)
		if err != nil {
			return nil, err
		}
		net.index[name] = r.ID
		net.Recipes = append(net.Recipes, r)
		kept = append(kept, v)
	}

	missing := make(map[string]bool)
	for i, v := range kept {
		r := net.Recipes[i+1]
		var err error
		v.Get("ingredients").ForEach(func(_, ing gjson.Result) bool {
			name, amount := ingredientFields(ing)
			if name == "" {
				err = fmt.Errorf("recipe %s: malformed ingredient %s", r.Name, ing.Raw)
				return false
			}
			id := net.Lookup(name)
			if id == 0 {
				missing[name] = true
			}
			r.Ingredients = append(r.Ingredients, Ingredient{Amount: amount, ID: id})
			return true
		})
		if err != nil {
			return nil, err
		}
	}
	for name := range missing {
		net.Missing = append(net.Missing, name)
	}
	slices.Sort(net.Missing)

	if entitiesJSON != "" {
		if err := applyEntities(net, entitiesJSON); err != nil {
			return nil, err
		}
	}
	return net, nil
}

func parseRecipe(v gjson.Result, id, beaconSlots int) (*Recipe, error) {
	r := &Recipe{
		ID:            id,
		Name:          v.Get("name").String(),
		Time:          v.Get("energy_required").Float(),
		Yield:         floatOr(v.Get("result_count"), 1),
		CraftingSpeed: floatOr(v.Get("crafting_speed"), 1),
		Emissions:     v.Get("emissions_per_minute").Float(),
		ModuleSlots:   int(v.Get("module_slots").Int()),
		BeaconSlots:   beaconSlots,
		AllowProd:     true,
	}
	if r.Yield <= 0 {
		return nil, fmt.Errorf("recipe %s: result_count must be > 0, got %g", r.Name, r.Yield)
	}
	if r.CraftingSpeed <= 0 {
		return nil, fmt.Errorf("recipe %s: crafting_speed must be > 0, got %g", r.Name, r.CraftingSpeed)
	}
	if r.ModuleSlots < 0 {
		return nil, fmt.Errorf("recipe %s: module_slots must be >= 0, got %d", r.Name, r.ModuleSlots)
	}
	return r, nil
}

// ingredientFields accepts both {"name":..,"amount":..} and the short
// ["name", amount] form.
func ingredientFields(ing gjson.Result) (string, float64) {
	if ing.IsArray() {
		parts := ing.Array()
		if len(parts) < 2 {
			return "", 0
		}
		return parts[0].String(), parts[1].Float()
	}
	return ing.Get("name").String(), ing.Get("amount").Float()
}

// applyEntities marks every listed recipe as an entity, which cannot take
// productivity modules.
func applyEntities(net *Network, entitiesJSON string) error {
	if !gjson.Valid(entitiesJSON) {
		return fmt.Errorf("entities: %w", errInvalidJSON)
	}
	gjson.Parse(entitiesJSON).ForEach(func(_, v gjson.Result) bool {
		if id := net.Lookup(v.String()); id != 0 {
			net.Recipes[id].AllowProd = false
		}
		return true
	})
	return nil
}

func floatOr(v gjson.Result, def float64) float64 {
	if !v.Exists() {
		return def
	}
	return v.Float()
}
