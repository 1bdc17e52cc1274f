package domain

import (
	"fmt"
	"strings"
)

// Labels hold the user-facing strings of the report so the formatter itself
// stays locale-free. The bot ships Ukrainian labels; tests may substitute
// their own.
type Labels struct {
	Title        string
	Crop         string
	SoilType     string
	PreviousCrop string
	MoistureZone string
	Region       string
	PlannedYield string
	Area         string
	NeedPerHa    string
	NeedTotal    string
	Products     string
	CostPerHa    string
	TotalCost    string
	Liming       string
	YieldUnit    string // e.g. "т/га"
	AreaUnit     string // e.g. "га"
	MassUnit     string // e.g. "кг"
	Nitrogen     string
	Phosphorus   string
	Potassium    string
}

// DefaultLabels is the Ukrainian wording used by the Telegram bot.
var DefaultLabels = Labels{
	Title:        "Рекомендація з удобрення",
	Crop:         "Культура",
	SoilType:     "Тип ґрунту",
	PreviousCrop: "Попередник",
	MoistureZone: "Зона зволоження",
	Region:       "Регіон",
	PlannedYield: "Планова врожайність",
	Area:         "Площа поля",
	NeedPerHa:    "Потреба в поживних речовинах, кг/га",
	NeedTotal:    "Потреба на все поле, кг",
	Products:     "Норми внесення добрив",
	CostPerHa:    "Орієнтовна вартість, на 1 га",
	TotalCost:    "Орієнтовна вартість, на поле",
	Liming:       "Вапнування",
	YieldUnit:    "т/га",
	AreaUnit:     "га",
	MassUnit:     "кг",
	Nitrogen:     "N",
	Phosphorus:   "P₂O₅",
	Potassium:    "K₂O",
}

// FormatReport renders a DosageResult into the human-readable report sent to
// the user and exported to documents. It is pure: the same result always
// produces the same text. Numbers are rounded to one decimal place here and
// nowhere else.
func FormatReport(r DosageResult, l Labels) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n\n", l.Title)
	fmt.Fprintf(&b, "%s: %s\n", l.Crop, r.Input.Crop)
	fmt.Fprintf(&b, "%s: %s\n", l.SoilType, r.Input.SoilType)
	fmt.Fprintf(&b, "%s: %s\n", l.PreviousCrop, r.Input.PreviousCrop)
	fmt.Fprintf(&b, "%s: %s\n", l.MoistureZone, r.Input.MoistureZone)
	if r.Input.Region != "" {
		fmt.Fprintf(&b, "%s: %s\n", l.Region, r.Input.Region)
	}
	fmt.Fprintf(&b, "%s: %s %s\n", l.PlannedYield, trim(r.Input.PlannedYield), l.YieldUnit)
	if r.HasArea() {
		fmt.Fprintf(&b, "%s: %s %s\n", l.Area, trim(r.Input.Area), l.AreaUnit)
	}

	fmt.Fprintf(&b, "\n%s:\n", l.NeedPerHa)
	writeNPK(&b, l, r.PerHa)

	if r.HasArea() {
		fmt.Fprintf(&b, "\n%s:\n", l.NeedTotal)
		writeNPK(&b, l, r.Total)
	}

	if len(r.Products) > 0 {
		fmt.Fprintf(&b, "\n%s:\n", l.Products)
		for _, d := range r.Products {
			line := fmt.Sprintf("  %s (%s %.0f%%): %s %s/%s",
				d.Product.Name, nutrientLabel(l, d.Product.Kind),
				d.Product.ContentFraction*100, trim(d.KgPerHa), l.MassUnit, l.AreaUnit)
			if r.HasArea() {
				line += fmt.Sprintf(", разом %s %s", trim(d.TotalKg), l.MassUnit)
			}
			b.WriteString(line + "\n")
		}
	}

	if r.HasCost() {
		fmt.Fprintf(&b, "\n%s: %s %s\n", l.CostPerHa, trim(r.CostPerHa), r.Currency)
		if r.HasArea() {
			fmt.Fprintf(&b, "%s: %s %s\n", l.TotalCost, trim(r.TotalCost), r.Currency)
		}
	}

	if r.Lime != "" {
		fmt.Fprintf(&b, "\n%s: %s\n", l.Liming, r.Lime)
	}

	return b.String()
}

func writeNPK(b *strings.Builder, l Labels, v NPK) {
	fmt.Fprintf(b, "  %s: %s\n", l.Nitrogen, trim(v.N))
	fmt.Fprintf(b, "  %s: %s\n", l.Phosphorus, trim(v.P))
	fmt.Fprintf(b, "  %s: %s\n", l.Potassium, trim(v.K))
}

func nutrientLabel(l Labels, n Nutrient) string {
	switch n {
	case NutrientN:
		return l.Nitrogen
	case NutrientP:
		return l.Phosphorus
	case NutrientK:
		return l.Potassium
	}
	return string(n)
}

// trim formats a value with one decimal place, dropping a trailing ".0" so
// whole numbers read naturally ("150" rather than "150.0").
func trim(v float64) string {
	s := fmt.Sprintf("%.1f", v)
	return strings.TrimSuffix(s, ".0")
}
