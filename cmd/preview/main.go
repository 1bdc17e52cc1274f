// Command preview renders a sample recommendation for every crop in the
// catalog. It uses the actual calculator and report formatter, so the output
// is exactly what the bot would send. Useful for reviewing catalog edits
// before a release.
//
// Usage:
//
//	go run ./cmd/preview
//	go run ./cmd/preview -yield 6.5 -out samples.txt
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/agrodose/fertilizer-bot/internal/domain"
	"github.com/agrodose/fertilizer-bot/internal/refdata"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	yield := flag.Float64("yield", 5.0, "planned yield in t/ha for the samples")
	area := flag.Float64("area", 100, "field area in ha for the samples, 0 to omit")
	out := flag.String("out", "", "output file (default: stdout)")
	flag.Parse()

	// Fix the clock so regenerating samples does not churn the timestamps.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2026, time.April, 12, 6, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	catalog, err := refdata.Load()
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	calc := domain.NewCalculator(catalog)

	crops := make([]string, 0, len(catalog.Crops))
	for name := range catalog.Crops {
		crops = append(crops, name)
	}
	sort.Strings(crops)

	var b strings.Builder
	fmt.Fprintf(&b, "Catalog %s: %d sample recommendations (yield %g t/ha)\n\n", catalog.Version, len(crops), *yield)

	for _, crop := range crops {
		result, err := calc.Compute(domain.CalculationInput{
			Crop:         crop,
			SoilType:     firstKey(catalog.SoilTypes),
			PreviousCrop: firstKey(catalog.PreviousCrops),
			MoistureZone: firstKey(catalog.MoistureZones),
			Region:       firstKey(catalog.Regions),
			SoilPH:       5.4,
			PlannedYield: *yield,
			Area:         *area,
		})
		if err != nil {
			return fmt.Errorf("compute %s: %w", crop, err)
		}

		b.WriteString(domain.FormatReport(result, domain.DefaultLabels))
		b.WriteString("\n----------------------------------------\n\n")
	}

	if *out == "" {
		fmt.Print(b.String())
		return nil
	}
	if err := os.WriteFile(*out, []byte(b.String()), 0o600); err != nil {
		return fmt.Errorf("write samples: %w", err)
	}
	log.Printf("wrote %d samples: %s", len(crops), *out)
	return nil
}

// firstKey returns the alphabetically first key so samples are deterministic.
func firstKey(table map[string]domain.NPK) string {
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) == 0 {
		return ""
	}
	return keys[0]
}
