package domain

// Calculator computes fertilizer dosages against a fixed reference catalog.
// It is stateless apart from the immutable catalog, so a single Calculator
// is safe for concurrent use by any number of sessions.
type Calculator struct {
	catalog *Catalog
}

// NewCalculator creates a Calculator over a loaded catalog.
func NewCalculator(catalog *Catalog) *Calculator {
	return &Calculator{catalog: catalog}
}

// Catalog returns the reference catalog the calculator runs against.
func (c *Calculator) Catalog() *Catalog { return c.catalog }

// Compute runs the dosage pipeline for one complete input:
// base requirement lookup, multiplicative adjustment for the growing
// conditions, scaling to the planned yield, product mass conversion, and the
// optional area totals, cost estimate, and lime advice.
//
// It fails with *UnknownCropError when the crop has no profile, and with
// *InvalidInputError when the yield is not positive or the area is negative.
// Unrecognized soil/previous-crop/moisture/region answers are not errors:
// they resolve to the neutral factor.
func (c *Calculator) Compute(in CalculationInput) (DosageResult, error) {
	profile, ok := c.catalog.Crops[in.Crop]
	if !ok {
		return DosageResult{}, &UnknownCropError{Crop: in.Crop}
	}
	if in.PlannedYield <= 0 {
		return DosageResult{}, &InvalidInputError{Field: "planned_yield", Reason: "must be positive"}
	}
	if in.Area < 0 {
		return DosageResult{}, &InvalidInputError{Field: "area", Reason: "must be positive when given"}
	}

	factors := NeutralFactor.
		Mul(factorFor(c.catalog.PreviousCrops, in.PreviousCrop)).
		Mul(factorFor(c.catalog.MoistureZones, in.MoistureZone)).
		Mul(factorFor(c.catalog.SoilTypes, in.SoilType)).
		Mul(factorFor(c.catalog.Regions, in.Region))

	perHa := profile.PerTonne.Mul(factors).Scale(in.PlannedYield)

	result := DosageResult{
		Input:          in,
		Factors:        factors,
		PerHa:          perHa,
		Products:       c.productDoses(perHa, in.Area),
		CatalogVersion: c.catalog.Version,
		GeneratedAt:    clock.Now(),
	}

	if in.Area > 0 {
		result.Total = perHa.Scale(in.Area)
	}

	if in.SoilPH > 0 {
		result.Lime = c.catalog.LimeAdvice(in.SoilPH)
	}

	if p := c.catalog.Prices; p != nil {
		for _, n := range []Nutrient{NutrientN, NutrientP, NutrientK} {
			result.CostPerHa += perHa.Get(n) * p.PerKg[n]
		}
		if in.Area > 0 {
			result.TotalCost = result.CostPerHa * in.Area
		}
		result.Currency = p.Currency
	}

	return result, nil
}

// productDoses converts per-hectare nutrient mass into physical product mass
// for every configured product.
func (c *Calculator) productDoses(perHa NPK, area float64) []ProductDose {
	doses := make([]ProductDose, 0, len(c.catalog.Products))
	for _, p := range c.catalog.Products {
		kg := perHa.Get(p.Kind) / p.ContentFraction
		dose := ProductDose{Product: p, KgPerHa: kg}
		if area > 0 {
			dose.TotalKg = kg * area
		}
		doses = append(doses, dose)
	}
	return doses
}
