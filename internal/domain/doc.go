// Package domain implements the fertilizer dosage calculation core.
//
// # Units and conventions
//
// Nutrient amounts are tracked for the three macro-nutrients:
//
//	N: nitrogen
//	P: phosphorus, expressed as P₂O₅
//	K: potassium, expressed as K₂O
//
// A crop profile states the base requirement in kilograms of nutrient per
// tonne of planned yield. Multiplying by the planned yield (t/ha) gives the
// per-hectare requirement before corrections.
//
// # Adjustment factors
//
// Growing conditions (previous crop, moisture zone, soil type, region) each
// contribute a multiplicative correction around 1.0 per nutrient. Factors
// compose multiplicatively and commute, so the order of application never
// changes the result. A category key missing from the catalog resolves to
// the neutral factor {1, 1, 1}; the calculator is deliberately lenient
// about unrecognized answers.
//
// # Products
//
// Commercial fertilizer products carry only a fraction of active nutrient
// (urea is ~46% N), so physical product mass is derived as
//
//	product_kg = nutrient_kg / content_fraction
//
// # Rounding
//
// All arithmetic is full-precision float64. Rounding to one decimal place
// happens only in the report formatter; DosageResult always holds the exact
// values, so re-formatting the same result yields identical text.
package domain
