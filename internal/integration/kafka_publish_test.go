//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	kafkaadapter "github.com/agrodose/fertilizer-bot/internal/adapter/kafka"
	"github.com/agrodose/fertilizer-bot/internal/config"
	"github.com/agrodose/fertilizer-bot/internal/domain"
	"github.com/agrodose/fertilizer-bot/internal/refdata"
)

const testTopic = "test-recommendations"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka launches a single-broker Kafka container and returns its address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate kafka container: %v", err)
		}
	})

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err, "resolve broker addresses")
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err, "dial broker")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "resolve controller")

	controllerConn, err := kafkago.Dial("tcp", fmt.Sprintf("%s:%d", controller.Host, controller.Port))
	require.NoError(t, err, "dial controller")
	defer controllerConn.Close()

	require.NoError(t, controllerConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// TestPublishRecommendation round-trips a dosage result through a real broker
// and verifies the key, headers, and payload survive intact.
func TestPublishRecommendation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	cfg := &config.Config{
		KafkaBrokers: []string{broker},
		KafkaTopic:   testTopic,
	}

	catalog, err := refdata.Load()
	require.NoError(t, err)
	calc := domain.NewCalculator(catalog)

	result, err := calc.Compute(domain.CalculationInput{
		Crop:         "Пшениця",
		SoilType:     "Чорнозем",
		PreviousCrop: "Бобові",
		MoistureZone: "Низька",
		PlannedYield: 5,
		Area:         100,
	})
	require.NoError(t, err)

	publisher := kafkaadapter.NewPublisher(cfg, discardLogger())
	t.Cleanup(func() { _ = publisher.Close() })

	require.NoError(t, publisher.PublishRecommendation(ctx, 42, result))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
	defer readCancel()
	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from recommendation topic")

	assert.Equal(t, []byte("42"), msg.Key)

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "Пшениця", headers["crop"])
	_, err = time.Parse(time.RFC3339, headers["generated_at"])
	assert.NoError(t, err, "generated_at should be valid RFC3339")

	var decoded domain.DosageResult
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, result.Input, decoded.Input)
	assert.InDelta(t, result.PerHa.N, decoded.PerHa.N, 1e-9)
	assert.Equal(t, result.CatalogVersion, decoded.CatalogVersion)
}

// TestPublishOrderingPerChat publishes several results for one chat and checks
// they arrive in publish order, which the chat-id key guarantees on a single
// partition.
func TestPublishOrderingPerChat(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	cfg := &config.Config{
		KafkaBrokers: []string{broker},
		KafkaTopic:   testTopic,
	}

	catalog, err := refdata.Load()
	require.NoError(t, err)
	calc := domain.NewCalculator(catalog)

	publisher := kafkaadapter.NewPublisher(cfg, discardLogger())
	t.Cleanup(func() { _ = publisher.Close() })

	yields := []float64{3, 5, 7}
	for _, y := range yields {
		result, err := calc.Compute(domain.CalculationInput{
			Crop:         "Ячмінь",
			SoilType:     "Чорнозем",
			PreviousCrop: "Зернові",
			MoistureZone: "Достатня",
			PlannedYield: y,
		})
		require.NoError(t, err)
		require.NoError(t, publisher.PublishRecommendation(ctx, 7, result))
	}

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testTopic,
		GroupID:     fmt.Sprintf("test-order-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	for _, want := range yields {
		readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
		msg, err := consumer.ReadMessage(readCtx)
		readCancel()
		require.NoError(t, err)

		var decoded domain.DosageResult
		require.NoError(t, json.Unmarshal(msg.Value, &decoded))
		assert.Equal(t, want, decoded.Input.PlannedYield)
		assert.Equal(t, []byte("7"), msg.Key)
	}
}
