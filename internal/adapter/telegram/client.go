package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"
)

// Client is a minimal Telegram Bot API client covering the methods the bot
// needs: long-poll updates, text replies with keyboards, and document upload.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Bot API client. pollTimeout is the long-poll duration
// requested from getUpdates; the HTTP timeout is derived from it so a quiet
// poll is not mistaken for a transport failure.
func NewClient(token, baseURL string, pollTimeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		token:   token,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: pollTimeout + 10*time.Second,
		},
		logger: logger,
	}
}

// apiResponse is the Bot API envelope around every method result.
type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
}

// GetUpdates long-polls for updates with ids >= offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error) {
	params := map[string]any{
		"offset":  offset,
		"timeout": int(timeout.Seconds()),
	}
	raw, err := c.call(ctx, "getUpdates", params)
	if err != nil {
		return nil, err
	}

	var updates []Update
	if err := json.Unmarshal(raw, &updates); err != nil {
		return nil, fmt.Errorf("decode updates: %w", err)
	}
	return updates, nil
}

// SendMessage sends text to a chat. replyMarkup may be a ReplyKeyboardMarkup,
// a ReplyKeyboardRemove, or nil.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, replyMarkup any) error {
	params := map[string]any{
		"chat_id": chatID,
		"text":    text,
	}
	if replyMarkup != nil {
		params["reply_markup"] = replyMarkup
	}
	_, err := c.call(ctx, "sendMessage", params)
	return err
}

// SendDocument uploads a named file to a chat via multipart/form-data.
func (c *Client) SendDocument(ctx context.Context, chatID int64, filename string, content []byte) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField("chat_id", fmt.Sprintf("%d", chatID)); err != nil {
		return fmt.Errorf("write chat_id field: %w", err)
	}
	part, err := writer.CreateFormFile("document", filename)
	if err != nil {
		return fmt.Errorf("create document part: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close multipart body: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendDocument", c.baseURL, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sendDocument request: %w", err)
	}
	defer resp.Body.Close()

	return decodeEnvelope(resp, nil)
}

// call invokes a JSON Bot API method and returns the raw result payload.
func (c *Client) call(ctx context.Context, method string, params map[string]any) (json.RawMessage, error) {
	payload, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("encode %s params: %w", method, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", method, err)
	}
	defer resp.Body.Close()

	var result json.RawMessage
	if err := decodeEnvelope(resp, &result); err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	return result, nil
}

// decodeEnvelope checks HTTP status and the Bot API "ok" envelope, storing
// the result payload into out when non-nil.
func decodeEnvelope(resp *http.Response, out *json.RawMessage) error {
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("telegram API error: status %d: %s", resp.StatusCode, body)
	}

	var envelope apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if !envelope.OK {
		return fmt.Errorf("telegram API error: %s", envelope.Description)
	}
	if out != nil {
		*out = envelope.Result
	}
	return nil
}
