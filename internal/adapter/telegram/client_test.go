package telegram

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBotToken = "123456:test-token"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testClient(baseURL string) *Client {
	return &Client{
		token:      testBotToken,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		logger:     discardLogger(),
	}
}

func TestClient_GetUpdates_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bot"+testBotToken+"/getUpdates", r.URL.Path)

		var params map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&params))
		assert.Equal(t, float64(42), params["offset"])
		assert.Equal(t, float64(30), params["timeout"])

		w.Header().Set("Content-Type", "application/json")
		_, err := w.Write([]byte(`{"ok":true,"result":[
			{"update_id":42,"message":{"message_id":1,"chat":{"id":7},"text":"Пшениця"}},
			{"update_id":43,"message":{"message_id":2,"chat":{"id":7},"text":"/start"}}
		]}`))
		require.NoError(t, err)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	updates, err := c.GetUpdates(context.Background(), 42, 30*time.Second)
	require.NoError(t, err)

	require.Len(t, updates, 2)
	assert.Equal(t, int64(42), updates[0].UpdateID)
	assert.Equal(t, int64(7), updates[0].Message.Chat.ID)
	assert.Equal(t, "Пшениця", updates[0].Message.Text)
	assert.Equal(t, "/start", updates[1].Message.Text)
}

func TestClient_SendMessage_WithKeyboard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bot"+testBotToken+"/sendMessage", r.URL.Path)

		var params struct {
			ChatID      int64               `json:"chat_id"`
			Text        string              `json:"text"`
			ReplyMarkup ReplyKeyboardMarkup `json:"reply_markup"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&params))
		assert.Equal(t, int64(7), params.ChatID)
		assert.Equal(t, "Оберіть культуру:", params.Text)
		require.Len(t, params.ReplyMarkup.Keyboard, 1)
		assert.Equal(t, "Пшениця", params.ReplyMarkup.Keyboard[0][0].Text)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"result":{}}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	markup := ReplyKeyboardMarkup{
		Keyboard:       [][]KeyboardButton{{{Text: "Пшениця"}}},
		ResizeKeyboard: true,
	}
	err := c.SendMessage(context.Background(), 7, "Оберіть культуру:", markup)
	require.NoError(t, err)
}

func TestClient_SendDocument_Multipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bot"+testBotToken+"/sendDocument", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "7", r.FormValue("chat_id"))

		file, header, err := r.FormFile("document")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "report.txt", header.Filename)

		content, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "звіт", string(content))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"result":{}}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	err := c.SendDocument(context.Background(), 7, "report.txt", []byte("звіт"))
	require.NoError(t, err)
}

func TestClient_APIErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":false,"description":"Unauthorized"}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.GetUpdates(context.Background(), 0, time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unauthorized")
}

func TestClient_HTTPStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	err := c.SendMessage(context.Background(), 7, "hi", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}
