package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/agrodose/fertilizer-bot/internal/domain"
	"github.com/agrodose/fertilizer-bot/internal/observability"
	"github.com/agrodose/fertilizer-bot/internal/payment"
	"github.com/agrodose/fertilizer-bot/internal/session"
)

// Sender is the slice of the Bot API client the conversation logic needs.
// Tests substitute a recorder.
type Sender interface {
	GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error)
	SendMessage(ctx context.Context, chatID int64, text string, replyMarkup any) error
}

// Exporter delivers a rendered report to a chat as a document.
type Exporter interface {
	Export(ctx context.Context, chatID int64, report string, generatedAt time.Time) error
}

// Publisher forwards completed recommendations to an event stream.
type Publisher interface {
	PublishRecommendation(ctx context.Context, chatID int64, result domain.DosageResult) error
}

// Bot drives the conversation: it polls for updates, advances each user's
// wizard, runs the dosage calculation when all answers are in, and replies
// with the formatted report.
type Bot struct {
	api       Sender
	calc      *domain.Calculator
	store     *session.Store
	gate      *payment.Gate
	exporter  Exporter               // nil disables /export
	weather   domain.WeatherProvider // nil disables /weather
	publisher Publisher              // nil disables event publishing

	labels      domain.Labels
	pollTimeout time.Duration
	logger      *slog.Logger
	metrics     *observability.Metrics
	ready       atomic.Bool
}

// NewBot wires the conversation loop. exporter, weather, and publisher may
// be nil; the corresponding commands degrade gracefully.
func NewBot(
	api Sender,
	calc *domain.Calculator,
	store *session.Store,
	gate *payment.Gate,
	exporter Exporter,
	weather domain.WeatherProvider,
	publisher Publisher,
	pollTimeout time.Duration,
	logger *slog.Logger,
	metrics *observability.Metrics,
) *Bot {
	return &Bot{
		api:         api,
		calc:        calc,
		store:       store,
		gate:        gate,
		exporter:    exporter,
		weather:     weather,
		publisher:   publisher,
		labels:      domain.DefaultLabels,
		pollTimeout: pollTimeout,
		logger:      logger,
		metrics:     metrics,
	}
}

// CheckReadiness returns nil once the bot has completed at least one poll,
// or an error describing why the service is not yet ready.
func (b *Bot) CheckReadiness(_ context.Context) error {
	if !b.ready.Load() {
		return errors.New("bot has not completed a poll cycle yet")
	}
	return nil
}

// Run executes the long-poll loop until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("bot started", "poll_timeout", b.pollTimeout)

	// Exponential backoff: start at 200ms, double each retry, cap at 5s.
	// Keeps retry storms short while avoiding tight loops during API outages.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	var offset int64
	for {
		select {
		case <-ctx.Done():
			b.logger.Info("bot stopping", "reason", ctx.Err())
			return nil
		default:
		}

		updates, err := b.api.GetUpdates(ctx, offset, b.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			b.logger.Error("poll failed", "error", err)
			if !sleepWithContext(ctx, backoff) {
				return nil
			}
			backoff = nextBackoff(backoff, maxBackoff)
			continue
		}
		backoff = 200 * time.Millisecond
		b.ready.Store(true)

		for _, update := range updates {
			offset = update.UpdateID + 1
			b.handleUpdate(ctx, update)
		}
	}
}

// handleUpdate routes one update: commands first, then wizard answers.
func (b *Bot) handleUpdate(ctx context.Context, update Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}
	b.metrics.UpdatesReceived.Inc()

	chatID := update.Message.Chat.ID
	text := strings.TrimSpace(update.Message.Text)

	switch {
	case text == "/start":
		b.handleStart(ctx, chatID)
	case text == "/help":
		b.send(ctx, chatID, helpText, nil)
	case text == "/cancel":
		b.handleCancel(ctx, chatID)
	case text == "/back":
		b.handleBack(ctx, chatID)
	case text == "/export":
		b.handleExport(ctx, chatID)
	case text == "/buy":
		b.handleBuy(ctx, chatID)
	case strings.HasPrefix(text, "/weather"):
		b.handleWeather(ctx, chatID, strings.TrimSpace(strings.TrimPrefix(text, "/weather")))
	default:
		b.handleAnswer(ctx, chatID, text)
	}

	b.metrics.ActiveSessions.Set(float64(b.store.Len()))
}

func (b *Bot) handleStart(ctx context.Context, chatID int64) {
	b.store.WithUser(chatID, func(u *session.User) {
		u.Wizard.Reset()
		b.send(ctx, chatID, "Привіт! Я допоможу розрахувати норми добрив під вашу культуру.", nil)
		b.sendPrompt(ctx, chatID, u.Wizard.Prompt())
	})
}

func (b *Bot) handleCancel(ctx context.Context, chatID int64) {
	b.store.WithUser(chatID, func(u *session.User) {
		u.Wizard.Reset()
		b.send(ctx, chatID, "Розрахунок скасовано. Надішліть /start, щоб почати заново.", ReplyKeyboardRemove{RemoveKeyboard: true})
	})
}

func (b *Bot) handleBack(ctx context.Context, chatID int64) {
	b.store.WithUser(chatID, func(u *session.User) {
		if !u.Wizard.Back() {
			b.send(ctx, chatID, "Це перший крок, повертатися нікуди.", nil)
		}
		b.sendPrompt(ctx, chatID, u.Wizard.Prompt())
	})
}

func (b *Bot) handleExport(ctx context.Context, chatID int64) {
	b.store.WithUser(chatID, func(u *session.User) {
		result, ok := u.LastResult()
		if !ok {
			b.send(ctx, chatID, "Ще немає збереженого розрахунку. Надішліть /start.", nil)
			return
		}
		if b.exporter == nil {
			b.send(ctx, chatID, "Експорт наразі недоступний.", nil)
			return
		}

		report := domain.FormatReport(result, b.labels)
		if err := b.exporter.Export(ctx, chatID, report, result.GeneratedAt); err != nil {
			b.logger.Error("export failed", "chat_id", chatID, "error", err)
			b.metrics.ReportsExported.WithLabelValues("failed").Inc()
			b.send(ctx, chatID, "Не вдалося сформувати документ. Спробуйте пізніше.", nil)
			return
		}
		b.metrics.ReportsExported.WithLabelValues("delivered").Inc()
	})
}

func (b *Bot) handleBuy(ctx context.Context, chatID int64) {
	b.gate.MarkPaid(chatID)
	b.send(ctx, chatID, "Оплату отримано (демо-режим). Обмеження на розрахунки знято.", nil)
}

func (b *Bot) handleWeather(ctx context.Context, chatID int64, place string) {
	if b.weather == nil {
		b.send(ctx, chatID, "Прогноз погоди не налаштовано.", nil)
		return
	}
	if place == "" {
		b.store.WithUser(chatID, func(u *session.User) {
			if result, ok := u.LastResult(); ok {
				place = result.Input.Region
			}
		})
	}
	if place == "" {
		b.send(ctx, chatID, "Вкажіть місце: /weather Київ", nil)
		return
	}

	report, err := b.weather.Current(ctx, place)
	if err != nil {
		b.logger.Warn("weather lookup failed", "place", place, "error", err)
		b.send(ctx, chatID, "Прогноз погоди зараз недоступний.", nil)
		return
	}
	b.send(ctx, chatID, fmt.Sprintf("Погода, %s: %s, %.1f°C, вологість %d%%, вітер %.1f м/с",
		report.Place, report.Description, report.TempC, report.Humidity, report.WindSpeed), nil)
}

// handleAnswer feeds a plain-text reply into the user's wizard and runs the
// calculation once the sequence completes.
func (b *Bot) handleAnswer(ctx context.Context, chatID int64, text string) {
	b.store.WithUser(chatID, func(u *session.User) {
		if err := u.Wizard.Answer(text); err != nil {
			var answerErr *session.AnswerError
			if errors.As(err, &answerErr) {
				b.send(ctx, chatID, answerErr.UserMessage, nil)
			}
			b.sendPrompt(ctx, chatID, u.Wizard.Prompt())
			return
		}

		if u.Wizard.Done() {
			b.finishCalculation(ctx, chatID, u)
			return
		}
		b.sendPrompt(ctx, chatID, u.Wizard.Prompt())
	})
}

// finishCalculation runs the payment gate and the calculator for a completed
// wizard, replies with the report, and resets the wizard for the next run.
func (b *Bot) finishCalculation(ctx context.Context, chatID int64, u *session.User) {
	defer u.Wizard.Reset()

	if !b.gate.Allow(chatID) {
		b.metrics.PaymentsBlocked.Inc()
		b.send(ctx, chatID, "Безкоштовний ліміт розрахунків вичерпано. Надішліть /buy, щоб зняти обмеження (демо-оплата).",
			ReplyKeyboardRemove{RemoveKeyboard: true})
		return
	}

	result, err := b.calc.Compute(u.Wizard.Input())
	if err != nil {
		b.handleComputeError(ctx, chatID, err)
		return
	}

	b.gate.Record(chatID)
	u.SetLastResult(result)
	b.metrics.Calculations.Inc()

	report := domain.FormatReport(result, b.labels)
	b.send(ctx, chatID, report, ReplyKeyboardRemove{RemoveKeyboard: true})
	if remaining := b.gate.Remaining(chatID); remaining > 0 {
		b.send(ctx, chatID, fmt.Sprintf("Залишилося безкоштовних розрахунків: %d.", remaining), nil)
	}
	b.send(ctx, chatID, "Надішліть /export, щоб отримати документ, або /start для нового розрахунку.", nil)

	if b.publisher != nil {
		if err := b.publisher.PublishRecommendation(ctx, chatID, result); err != nil {
			// Publishing is best-effort analytics; the user already has the report.
			b.logger.Warn("publish recommendation failed", "chat_id", chatID, "error", err)
			b.metrics.PublishErrors.Inc()
		} else {
			b.metrics.EventsPublished.Inc()
		}
	}
}

func (b *Bot) handleComputeError(ctx context.Context, chatID int64, err error) {
	var unknownCrop *domain.UnknownCropError
	var invalidInput *domain.InvalidInputError
	switch {
	case errors.As(err, &unknownCrop):
		b.metrics.CalculationErrors.WithLabelValues("unknown_crop").Inc()
		b.send(ctx, chatID, "Цієї культури немає в довіднику. Надішліть /start і оберіть іншу.", nil)
	case errors.As(err, &invalidInput):
		b.metrics.CalculationErrors.WithLabelValues("invalid_input").Inc()
		b.send(ctx, chatID, "У відповідях є некоректне число. Надішліть /start і спробуйте ще раз.", nil)
	default:
		b.logger.Error("calculation failed", "chat_id", chatID, "error", err)
		b.send(ctx, chatID, "Сталася помилка розрахунку. Спробуйте пізніше.", nil)
	}
}

// sendPrompt renders the current step's question with its reply keyboard.
func (b *Bot) sendPrompt(ctx context.Context, chatID int64, p session.Prompt) {
	b.send(ctx, chatID, p.Text, buildKeyboard(p))
}

func (b *Bot) send(ctx context.Context, chatID int64, text string, replyMarkup any) {
	if err := b.api.SendMessage(ctx, chatID, text, replyMarkup); err != nil {
		b.logger.Error("send message failed", "chat_id", chatID, "error", err)
		return
	}
	b.metrics.MessagesSent.Inc()
}

// buildKeyboard turns a prompt into a reply keyboard: one option per row,
// with a skip button appended for optional steps. Free-text steps without a
// skip option drop the keyboard entirely.
func buildKeyboard(p session.Prompt) any {
	rows := make([][]KeyboardButton, 0, len(p.Options)+1)
	for _, opt := range p.Options {
		rows = append(rows, []KeyboardButton{{Text: opt}})
	}
	if p.Skippable {
		rows = append(rows, []KeyboardButton{{Text: session.SkipAnswer}})
	}
	if len(rows) == 0 {
		return ReplyKeyboardRemove{RemoveKeyboard: true}
	}
	return ReplyKeyboardMarkup{Keyboard: rows, ResizeKeyboard: true}
}

const helpText = `Я розраховую норми внесення добрив.

/start — почати розрахунок
/back — повернутися на крок назад
/cancel — скасувати поточний розрахунок
/export — отримати останній розрахунок документом
/weather <місце> — поточна погода
/buy — зняти ліміт розрахунків (демо)
/help — ця довідка`

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
