package domain

import (
	"fmt"
	"time"
)

// CalculationInput is one complete set of answers collected by the
// conversational front end. Crop, SoilType, PreviousCrop, MoistureZone, and
// PlannedYield are required; the rest are optional refinements. Optional
// numeric fields use the zero value for "not provided", since neither 0 pH
// nor a 0 ha field occurs in practice.
type CalculationInput struct {
	Crop         string  `json:"crop"`
	SoilType     string  `json:"soil_type"`
	PreviousCrop string  `json:"previous_crop"`
	MoistureZone string  `json:"moisture_zone"`
	Region       string  `json:"region,omitempty"`
	SoilPH       float64 `json:"soil_ph,omitempty"`
	PlannedYield float64 `json:"planned_yield_t_per_ha"` // tonnes per hectare, > 0
	Area         float64 `json:"area_ha,omitempty"`      // hectares, > 0 when present
}

// ProductDose is the physical amount of one fertilizer product.
type ProductDose struct {
	Product Product `json:"product"`
	KgPerHa float64 `json:"kg_per_ha"`
	TotalKg float64 `json:"total_kg,omitempty"` // only when area was given
}

// DosageResult is the outcome of one dosage calculation. It is created fresh
// per invocation and never mutated afterwards.
type DosageResult struct {
	Input CalculationInput `json:"input"`

	// Combined multiplicative adjustment applied to the base requirement.
	Factors NPK `json:"factors"`

	PerHa NPK `json:"per_ha"` // nutrient kg per hectare

	// Totals are populated only when the input carried a field area.
	Total NPK `json:"total,omitempty"`

	Products []ProductDose `json:"products"`

	// Cost fields are populated only when the catalog has a price table.
	CostPerHa float64 `json:"cost_per_ha,omitempty"`
	TotalCost float64 `json:"total_cost,omitempty"`
	Currency  string  `json:"currency,omitempty"`

	// Lime advice, populated only when the input carried a soil pH.
	Lime string `json:"lime,omitempty"`

	CatalogVersion string    `json:"catalog_version"`
	GeneratedAt    time.Time `json:"generated_at"`
}

// HasArea reports whether field totals were computed.
func (r DosageResult) HasArea() bool { return r.Input.Area > 0 }

// HasCost reports whether a price table was configured.
func (r DosageResult) HasCost() bool { return r.Currency != "" }

// UnknownCropError is returned when the requested crop has no profile in the
// catalog. It is the only hard failure of the calculator: the front end must
// re-ask the crop selection.
type UnknownCropError struct {
	Crop string
}

func (e *UnknownCropError) Error() string {
	return fmt.Sprintf("unknown crop %q", e.Crop)
}

// InvalidInputError is returned when a numeric precondition is violated
// (non-positive yield, negative area). Recovery is the same as for an
// unknown crop: re-ask the offending answer.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input %s: %s", e.Field, e.Reason)
}
