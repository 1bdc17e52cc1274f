package domain

// Nutrient identifies one of the tracked macro-nutrients.
type Nutrient string

const (
	NutrientN Nutrient = "N" // nitrogen
	NutrientP Nutrient = "P" // phosphorus as P₂O₅
	NutrientK Nutrient = "K" // potassium as K₂O
)

// NPK holds one value per macro-nutrient (a requirement in kg, or a
// dimensionless factor, depending on context).
type NPK struct {
	N float64 `json:"n"`
	P float64 `json:"p"`
	K float64 `json:"k"`
}

// NeutralFactor is the identity adjustment: no correction for any nutrient.
var NeutralFactor = NPK{N: 1, P: 1, K: 1}

// Mul multiplies component-wise. Used to compose adjustment factors.
func (a NPK) Mul(b NPK) NPK {
	return NPK{N: a.N * b.N, P: a.P * b.P, K: a.K * b.K}
}

// Scale multiplies every component by f.
func (a NPK) Scale(f float64) NPK {
	return NPK{N: a.N * f, P: a.P * f, K: a.K * f}
}

// Get returns the component for the given nutrient, or 0 for an unknown kind.
func (a NPK) Get(n Nutrient) float64 {
	switch n {
	case NutrientN:
		return a.N
	case NutrientP:
		return a.P
	case NutrientK:
		return a.K
	}
	return 0
}

// CropProfile is the base nutrient demand of one crop, in kg of nutrient per
// tonne of planned yield.
type CropProfile struct {
	PerTonne NPK `json:"per_tonne"`
}

// Product is a commercial fertilizer product used to convert pure-nutrient
// mass into physical product mass.
type Product struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Kind            Nutrient `json:"kind"`
	ContentFraction float64  `json:"content_fraction"` // active nutrient share, (0, 1]
}

// LimeRule recommends liming below an upper pH bound. Rules are evaluated
// top-down in catalog order; the first match wins.
type LimeRule struct {
	BelowPH float64 `json:"below_ph"` // upper bound, exclusive
	Message string  `json:"message"`
}

// PriceTable holds optional per-kg nutrient prices for cost estimation.
type PriceTable struct {
	Currency string               `json:"currency"`
	PerKg    map[Nutrient]float64 `json:"per_kg"`
}

// Catalog is the static reference data the calculator runs against: crop
// profiles, adjustment factor tables, products, lime rules, and prices.
// It is loaded once at process start and never mutated afterwards, so it is
// safe to share across sessions without locking.
type Catalog struct {
	Version string `json:"version"`

	Crops map[string]CropProfile `json:"crops"`

	// Adjustment factor tables, keyed by the user-facing answer.
	PreviousCrops map[string]NPK `json:"previous_crops"`
	MoistureZones map[string]NPK `json:"moisture_zones"`
	SoilTypes     map[string]NPK `json:"soil_types"`
	Regions       map[string]NPK `json:"regions"`

	Products []Product `json:"products"`

	LimeRules   []LimeRule `json:"lime_rules"`
	LimeDefault string     `json:"lime_default"` // message when no rule matches

	Prices *PriceTable `json:"prices,omitempty"`
}

// factorFor resolves a key in a factor table, falling back to the neutral
// factor for empty or unrecognized keys.
func factorFor(table map[string]NPK, key string) NPK {
	if key == "" {
		return NeutralFactor
	}
	if f, ok := table[key]; ok {
		return f
	}
	return NeutralFactor
}

// LimeAdvice evaluates the ordered lime rules for a measured soil pH.
func (c *Catalog) LimeAdvice(ph float64) string {
	for _, r := range c.LimeRules {
		if ph < r.BelowPH {
			return r.Message
		}
	}
	return c.LimeDefault
}
