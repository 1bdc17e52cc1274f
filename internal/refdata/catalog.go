// Package refdata owns the static agronomic reference catalog: crop
// profiles, adjustment factor tables, fertilizer products, lime rules, and
// nutrient prices. The numbers live in one embedded JSON document so each
// crop's values appear in exactly one place. No canonical table exists in the
// field; this one is an internally consistent set. Bump the version field
// when replacing it.
package refdata

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/agrodose/fertilizer-bot/internal/domain"
)

//go:embed data/catalog.json
var catalogJSON []byte

// Load parses and validates the embedded reference catalog. An invalid
// catalog is a build artifact problem, not a runtime condition, so callers
// should treat an error as fatal at startup.
func Load() (*domain.Catalog, error) {
	return Parse(catalogJSON)
}

// Parse decodes a catalog from JSON and validates it.
func Parse(data []byte) (*domain.Catalog, error) {
	var c domain.Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := Validate(&c); err != nil {
		return nil, fmt.Errorf("validate catalog: %w", err)
	}
	return &c, nil
}

// Validate checks the structural invariants of a catalog: positive base
// requirements, positive factors, product fractions in (0, 1], known
// nutrient kinds, ascending lime bounds, and non-negative prices.
func Validate(c *domain.Catalog) error {
	if c.Version == "" {
		return fmt.Errorf("catalog version is empty")
	}
	if len(c.Crops) == 0 {
		return fmt.Errorf("catalog has no crops")
	}
	for name, crop := range c.Crops {
		if err := checkPositive(crop.PerTonne); err != nil {
			return fmt.Errorf("crop %q: %w", name, err)
		}
	}

	factorTables := map[string]map[string]domain.NPK{
		"previous_crops": c.PreviousCrops,
		"moisture_zones": c.MoistureZones,
		"soil_types":     c.SoilTypes,
		"regions":        c.Regions,
	}
	for table, entries := range factorTables {
		for key, f := range entries {
			if err := checkPositive(f); err != nil {
				return fmt.Errorf("%s %q: %w", table, key, err)
			}
		}
	}

	for _, p := range c.Products {
		if p.ID == "" || p.Name == "" {
			return fmt.Errorf("product with empty id or name")
		}
		switch p.Kind {
		case domain.NutrientN, domain.NutrientP, domain.NutrientK:
		default:
			return fmt.Errorf("product %q: unknown nutrient kind %q", p.ID, p.Kind)
		}
		if p.ContentFraction <= 0 || p.ContentFraction > 1 {
			return fmt.Errorf("product %q: content fraction %g outside (0, 1]", p.ID, p.ContentFraction)
		}
	}

	prev := 0.0
	for i, r := range c.LimeRules {
		if r.BelowPH <= prev {
			return fmt.Errorf("lime rule %d: bound %g not ascending", i, r.BelowPH)
		}
		if r.Message == "" {
			return fmt.Errorf("lime rule %d: empty message", i)
		}
		prev = r.BelowPH
	}
	if len(c.LimeRules) > 0 && c.LimeDefault == "" {
		return fmt.Errorf("lime rules present but lime_default is empty")
	}

	if c.Prices != nil {
		if c.Prices.Currency == "" {
			return fmt.Errorf("price table has no currency")
		}
		for kind, price := range c.Prices.PerKg {
			if price < 0 {
				return fmt.Errorf("price for %s is negative", kind)
			}
		}
	}

	return nil
}

func checkPositive(v domain.NPK) error {
	if v.N <= 0 || v.P <= 0 || v.K <= 0 {
		return fmt.Errorf("values must be positive, got {%g, %g, %g}", v.N, v.P, v.K)
	}
	return nil
}
