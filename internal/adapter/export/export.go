// Package export turns a rendered recommendation into a downloadable
// plain-text document and delivers it over the chat transport.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// DocumentSender is the slice of the chat client needed to deliver files.
type DocumentSender interface {
	SendDocument(ctx context.Context, chatID int64, filename string, content []byte) error
}

// Exporter renders reports into text documents and sends them to a chat.
type Exporter struct {
	sender DocumentSender
	logger *slog.Logger
}

// NewExporter creates a document exporter.
func NewExporter(sender DocumentSender, logger *slog.Logger) *Exporter {
	return &Exporter{sender: sender, logger: logger}
}

// Export wraps the report in a document frame and sends it as a .txt file.
// The filename carries the chat id and the calculation date so repeated
// exports do not collide in the user's downloads.
func (e *Exporter) Export(ctx context.Context, chatID int64, report string, generatedAt time.Time) error {
	filename := fmt.Sprintf("recommendation_%d_%s.txt", chatID, generatedAt.Format("2006-01-02"))
	content := buildDocument(report, generatedAt)

	if err := e.sender.SendDocument(ctx, chatID, filename, content); err != nil {
		return fmt.Errorf("send document: %w", err)
	}
	e.logger.Info("report exported", "chat_id", chatID, "filename", filename)
	return nil
}

func buildDocument(report string, generatedAt time.Time) []byte {
	const rule = "============================================"
	doc := fmt.Sprintf("%s\n%s\n%s\n\nСформовано: %s\n",
		rule, report, rule, generatedAt.Format("02.01.2006 15:04"))
	return []byte(doc)
}
