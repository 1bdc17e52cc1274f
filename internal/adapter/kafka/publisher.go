package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/agrodose/fertilizer-bot/internal/config"
	"github.com/agrodose/fertilizer-bot/internal/domain"
)

// Publisher produces recommendation events to a Kafka topic.
// It implements telegram.Publisher.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the recommendation topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// PublishRecommendation serializes a completed dosage result and publishes it
// keyed by chat id, so one user's recommendations stay in order.
func (p *Publisher) PublishRecommendation(ctx context.Context, chatID int64, result domain.DosageResult) error {
	msg, err := serializeToMessage(chatID, result)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a DosageResult into a Kafka message.
func serializeToMessage(chatID int64, result domain.DosageResult) (kafkago.Message, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize recommendation: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(strconv.FormatInt(chatID, 10)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "crop", Value: []byte(result.Input.Crop)},
			{Key: "generated_at", Value: []byte(result.GeneratedAt.Format(time.RFC3339))},
		},
	}, nil
}
