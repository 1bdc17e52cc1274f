// Command validate performs integrity checks on a fertilizer catalog: the
// embedded one by default, or an external JSON file given with -catalog. It
// verifies structure, factor-table plausibility, product coverage, and that
// every crop produces a sane recommendation end to end.
//
// Usage:
//
//	go run ./cmd/validate
//	go run ./cmd/validate -catalog path/to/catalog.json
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/agrodose/fertilizer-bot/internal/domain"
	"github.com/agrodose/fertilizer-bot/internal/refdata"
)

// referenceYield is the planned yield used for end-to-end calculation checks,
// in tonnes per hectare. High enough that rounding never hides a zero dose.
const referenceYield = 5.0

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	path := flag.String("catalog", "", "path to an external catalog JSON file (default: embedded)")
	flag.Parse()

	if code := run(*path); code != 0 {
		os.Exit(code)
	}
}

func run(path string) int {
	// Fix the clock so repeated runs stamp identical results.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2026, time.April, 12, 6, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	fmt.Println("=== Fertilizer Catalog Validation ===")
	fmt.Println()

	catalog, err := loadCatalog(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load catalog: %v\n", err)
		return 1
	}
	fmt.Printf("Catalog version %s: %d crops, %d products\n", catalog.Version, len(catalog.Crops), len(catalog.Products))

	phases := []*phase{
		validateStructure(catalog),
		validateFactorTables(catalog),
		validateProductCoverage(catalog),
		validateCalculations(catalog),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func loadCatalog(path string) (*domain.Catalog, error) {
	if path == "" {
		return refdata.Load()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return refdata.Parse(data)
}

// ── Phase 1: Structure ──
// Re-runs the load-time structural validation. Redundant for the embedded
// catalog, essential for external files.

func validateStructure(c *domain.Catalog) *phase {
	p := &phase{name: "Phase 1: Structure"}
	if err := refdata.Validate(c); err != nil {
		p.errorf("%v", err)
	}
	return p
}

// ── Phase 2: Factor Tables ──
// Adjustment factors are corrections, not rewrites: anything outside
// [0.5, 1.5] almost certainly is a data-entry mistake.

func validateFactorTables(c *domain.Catalog) *phase {
	p := &phase{name: "Phase 2: Factor Plausibility"}

	tables := map[string]map[string]domain.NPK{
		"previous_crops": c.PreviousCrops,
		"moisture_zones": c.MoistureZones,
		"soil_types":     c.SoilTypes,
		"regions":        c.Regions,
	}
	for tableName, table := range tables {
		for key, factor := range table {
			for _, n := range []domain.Nutrient{domain.NutrientN, domain.NutrientP, domain.NutrientK} {
				v := factor.Get(n)
				if v < 0.5 || v > 1.5 {
					p.errorf("%s[%q].%s = %g outside plausible range [0.5, 1.5]", tableName, key, n, v)
				}
			}
		}
	}
	return p
}

// ── Phase 3: Product Coverage ──
// Every nutrient must be convertible into at least one physical product,
// and priced when a price table is present.

func validateProductCoverage(c *domain.Catalog) *phase {
	p := &phase{name: "Phase 3: Product Coverage"}

	covered := map[domain.Nutrient]int{}
	for _, product := range c.Products {
		covered[product.Kind]++
	}
	for _, n := range []domain.Nutrient{domain.NutrientN, domain.NutrientP, domain.NutrientK} {
		if covered[n] == 0 {
			p.errorf("no product covers nutrient %s", n)
		}
		if c.Prices != nil {
			if _, ok := c.Prices.PerKg[n]; !ok {
				p.errorf("price table has no entry for nutrient %s", n)
			}
		}
	}
	return p
}

// ── Phase 4: End-to-End Calculations ──
// Runs a neutral calculation for every crop and checks the output against
// the crop profile directly.

func validateCalculations(c *domain.Catalog) *phase {
	p := &phase{name: "Phase 4: End-to-End Calculations"}
	calc := domain.NewCalculator(c)

	for name, profile := range c.Crops {
		result, err := calc.Compute(domain.CalculationInput{
			Crop:         name,
			SoilType:     "-",
			PreviousCrop: "-",
			MoistureZone: "-",
			PlannedYield: referenceYield,
		})
		if err != nil {
			p.errorf("%s: compute failed: %v", name, err)
			continue
		}

		// Unrecognized categorical answers fall back to the neutral factor,
		// so the per-hectare dose must equal profile × yield exactly.
		for _, n := range []domain.Nutrient{domain.NutrientN, domain.NutrientP, domain.NutrientK} {
			want := profile.PerTonne.Get(n) * referenceYield
			if got := result.PerHa.Get(n); got != want {
				p.errorf("%s: neutral %s dose: expected %g, got %g", name, n, want, got)
			}
		}
		for _, dose := range result.Products {
			if dose.KgPerHa < 0 {
				p.errorf("%s: product %s has negative dose %g", name, dose.Product.ID, dose.KgPerHa)
			}
		}
	}
	return p
}
