// Package session implements the conversational front end core: a fixed
// sequence of wizard steps that collects a complete CalculationInput one
// answer at a time, and a per-user store that serializes access so a
// double-submitting user cannot race their own session.
package session

// Step names one question of the wizard. The sequence is linear; optional
// steps can be skipped, and /back returns exactly one step.
type Step int

const (
	StepCrop Step = iota
	StepSoil
	StepPreviousCrop
	StepMoisture
	StepRegion // optional
	StepPH     // optional
	StepYield
	StepArea // optional
	StepDone
)

func (s Step) String() string {
	switch s {
	case StepCrop:
		return "crop"
	case StepSoil:
		return "soil"
	case StepPreviousCrop:
		return "previous_crop"
	case StepMoisture:
		return "moisture"
	case StepRegion:
		return "region"
	case StepPH:
		return "ph"
	case StepYield:
		return "yield"
	case StepArea:
		return "area"
	case StepDone:
		return "done"
	}
	return "unknown"
}

// Skippable reports whether the step accepts the skip answer.
func (s Step) Skippable() bool {
	return s == StepRegion || s == StepPH || s == StepArea
}
