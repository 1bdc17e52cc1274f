package session

import (
	"sort"
	"strconv"
	"strings"

	"github.com/agrodose/fertilizer-bot/internal/domain"
)

// SkipAnswer is the reply-keyboard button that skips an optional step.
const SkipAnswer = "Пропустити"

// AnswerError rejects an answer with a user-facing explanation. The bot
// sends the message and re-presents the same step.
type AnswerError struct {
	UserMessage string
}

func (e *AnswerError) Error() string { return e.UserMessage }

func answerErr(msg string) error { return &AnswerError{UserMessage: msg} }

// Prompt is what the front end should present for the current step.
type Prompt struct {
	Text      string
	Options   []string // keyboard buttons; empty means free-text input
	Skippable bool
}

// Wizard walks one user through the question sequence, building a
// CalculationInput incrementally. It is not safe for concurrent use on its
// own; the Store serializes access per user.
type Wizard struct {
	catalog *domain.Catalog
	step    Step
	input   domain.CalculationInput
}

// NewWizard starts a fresh wizard at the crop question.
func NewWizard(catalog *domain.Catalog) *Wizard {
	return &Wizard{catalog: catalog}
}

// Step returns the current step.
func (w *Wizard) Step() Step { return w.step }

// Done reports whether every required answer has been collected.
func (w *Wizard) Done() bool { return w.step == StepDone }

// Input returns the collected answers. Only meaningful once Done reports true.
func (w *Wizard) Input() domain.CalculationInput { return w.input }

// Reset discards all answers and returns to the crop question.
func (w *Wizard) Reset() {
	w.step = StepCrop
	w.input = domain.CalculationInput{}
}

// Back returns to the previous step, discarding its answer. Reports false
// when already at the first step.
func (w *Wizard) Back() bool {
	if w.step == StepCrop {
		return false
	}
	w.step--
	w.clearAnswer(w.step)
	return true
}

// Prompt describes the question for the current step.
func (w *Wizard) Prompt() Prompt {
	switch w.step {
	case StepCrop:
		return Prompt{Text: "Оберіть культуру:", Options: sortedKeys(w.catalog.Crops)}
	case StepSoil:
		return Prompt{Text: "Оберіть тип ґрунту:", Options: sortedKeys(w.catalog.SoilTypes)}
	case StepPreviousCrop:
		return Prompt{Text: "Що було попередником на цьому полі?", Options: sortedKeys(w.catalog.PreviousCrops)}
	case StepMoisture:
		return Prompt{Text: "Оберіть зону зволоження:", Options: sortedKeys(w.catalog.MoistureZones)}
	case StepRegion:
		return Prompt{Text: "Оберіть регіон:", Options: sortedKeys(w.catalog.Regions), Skippable: true}
	case StepPH:
		return Prompt{Text: "Введіть pH ґрунту (наприклад 6,5):", Skippable: true}
	case StepYield:
		return Prompt{Text: "Введіть планову врожайність, т/га (наприклад 5 або 4,5):"}
	case StepArea:
		return Prompt{Text: "Введіть площу поля в гектарах:", Skippable: true}
	}
	return Prompt{}
}

// Answer validates the reply for the current step, stores it, and advances.
// A rejected answer leaves the step unchanged and returns an *AnswerError.
func (w *Wizard) Answer(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return answerErr("Порожня відповідь. Спробуйте ще раз.")
	}

	if text == SkipAnswer {
		if !w.step.Skippable() {
			return answerErr("Цей крок пропустити не можна.")
		}
		w.step++
		return nil
	}

	switch w.step {
	case StepCrop:
		// Unknown crops are rejected here, not at calculation time: the
		// calculator has no profile to fall back on.
		if _, ok := w.catalog.Crops[text]; !ok {
			return answerErr("Не знаю такої культури. Оберіть варіант із клавіатури.")
		}
		w.input.Crop = text
	case StepSoil:
		// Categorical answers outside the keyboard are accepted: the
		// calculator treats them as the neutral adjustment.
		w.input.SoilType = text
	case StepPreviousCrop:
		w.input.PreviousCrop = text
	case StepMoisture:
		w.input.MoistureZone = text
	case StepRegion:
		w.input.Region = text
	case StepPH:
		ph, err := ParseDecimal(text)
		if err != nil {
			return answerErr("Не вдалося розпізнати число. Введіть pH, наприклад 6,5.")
		}
		if ph < 3 || ph > 10 {
			return answerErr("pH має бути в межах від 3 до 10.")
		}
		w.input.SoilPH = ph
	case StepYield:
		y, err := ParseDecimal(text)
		if err != nil {
			return answerErr("Не вдалося розпізнати число. Введіть врожайність, наприклад 4,5.")
		}
		if y <= 0 {
			return answerErr("Врожайність має бути більшою за нуль.")
		}
		w.input.PlannedYield = y
	case StepArea:
		a, err := ParseDecimal(text)
		if err != nil {
			return answerErr("Не вдалося розпізнати число. Введіть площу в гектарах.")
		}
		if a <= 0 {
			return answerErr("Площа має бути більшою за нуль.")
		}
		w.input.Area = a
	case StepDone:
		return answerErr("Усі відповіді вже зібрано. Надішліть /start для нового розрахунку.")
	}

	w.step++
	return nil
}

// clearAnswer drops the stored answer for a step so /back re-asks it cleanly.
func (w *Wizard) clearAnswer(s Step) {
	switch s {
	case StepCrop:
		w.input.Crop = ""
	case StepSoil:
		w.input.SoilType = ""
	case StepPreviousCrop:
		w.input.PreviousCrop = ""
	case StepMoisture:
		w.input.MoistureZone = ""
	case StepRegion:
		w.input.Region = ""
	case StepPH:
		w.input.SoilPH = 0
	case StepYield:
		w.input.PlannedYield = 0
	case StepArea:
		w.input.Area = 0
	}
}

// ParseDecimal parses a user-typed number, accepting both "." and "," as
// the decimal separator.
func ParseDecimal(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	return strconv.ParseFloat(s, 64)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
