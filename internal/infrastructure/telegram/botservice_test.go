package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sharedConfig "tessera/internal/shared/config"
)

// newTestBot wires a BotService to an httptest server speaking the Bot API
// response envelope.
func newTestBot(t *testing.T, handler http.HandlerFunc) *BotService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewBotServiceWithBaseURL(sharedConfig.TelegramConfig{BotToken: "test-token"}, srv.URL)
}

func okEnvelope(result any) map[string]any {
	return map[string]any{"ok": true, "result": result}
}

func TestSendMessage_ReturnsMessageID(t *testing.T) {
	var gotBody map[string]any
	bot := newTestBot(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(okEnvelope(map[string]any{"message_id": 1234}))
	})

	id, err := bot.SendMessage(context.Background(), 42, "hello", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1234), id)
	assert.Equal(t, float64(42), gotBody["chat_id"])
	assert.Equal(t, "hello", gotBody["text"])
	assert.NotContains(t, gotBody, "reply_parameters")
}

func TestSendMessage_ThreadsReply(t *testing.T) {
	var gotBody map[string]any
	bot := newTestBot(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(okEnvelope(map[string]any{"message_id": 7}))
	})

	_, err := bot.SendMessage(context.Background(), 42, "hi", 99)
	require.NoError(t, err)

	reply, ok := gotBody["reply_parameters"].(map[string]any)
	require.True(t, ok, "reply_parameters must be present")
	assert.Equal(t, float64(99), reply["message_id"])
	assert.Equal(t, true, reply["allow_sending_without_reply"])
}

func TestSendPhoto_PreservesCaption(t *testing.T) {
	var gotBody map[string]any
	bot := newTestBot(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sendPhoto", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(okEnvelope(map[string]any{"message_id": 55}))
	})

	id, err := bot.SendPhoto(context.Background(), 1, "file-abc", "look", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(55), id)
	assert.Equal(t, "file-abc", gotBody["photo"])
	assert.Equal(t, "look", gotBody["caption"])
}

func TestCopyMessage_ReturnsMessageID(t *testing.T) {
	bot := newTestBot(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/copyMessage", r.URL.Path)
		json.NewEncoder(w).Encode(okEnvelope(map[string]any{"message_id": 301}))
	})

	id, err := bot.CopyMessage(context.Background(), -100, 42, 17, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(301), id)
}

func TestMakeRequest_APIErrorMapping(t *testing.T) {
	bot := newTestBot(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"ok":          false,
			"error_code":  400,
			"description": "Bad Request: there is no caption in the message to edit",
		})
	})

	err := bot.EditMessageCaption(context.Background(), -100, 17, "🎫 Ticket #1")
	require.Error(t, err)
	assert.True(t, IsBadRequest(err))
	assert.False(t, IsBotBlocked(err))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.ErrorCode)
	assert.Contains(t, apiErr.Description, "no caption")
}

func TestMakeRequest_RetryAfter(t *testing.T) {
	bot := newTestBot(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"ok":          false,
			"error_code":  429,
			"description": "Too Many Requests: retry after 14",
			"parameters":  map[string]any{"retry_after": 14},
		})
	})

	_, err := bot.SendMessage(context.Background(), 1, "x", 0)
	require.Error(t, err)
	assert.True(t, IsRetryAfter(err))
	assert.Equal(t, 14, GetRetryAfter(err))
}

func TestGetUpdates_DecodesMessages(t *testing.T) {
	bot := newTestBot(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/getUpdates", r.URL.Path)
		json.NewEncoder(w).Encode(okEnvelope([]map[string]any{
			{
				"update_id": 100,
				"message": map[string]any{
					"message_id": 5,
					"chat":       map[string]any{"id": 42, "type": "private"},
					"from":       map[string]any{"id": 42, "first_name": "A"},
					"text":       "Hello",
				},
			},
		}))
	})

	updates, err := bot.GetUpdates(context.Background(), 0, 1)
	require.NoError(t, err)
	require.Len(t, updates, 1)
	assert.Equal(t, int64(100), updates[0].UpdateID)
	require.NotNil(t, updates[0].Message)
	assert.Equal(t, "Hello", updates[0].Message.Text)
	assert.Equal(t, ChatTypePrivate, updates[0].Message.Chat.Type)
}

func TestLargestPhoto(t *testing.T) {
	m := &Message{Photo: []PhotoSize{
		{FileID: "small", Width: 90, Height: 60},
		{FileID: "big", Width: 1280, Height: 960},
		{FileID: "mid", Width: 320, Height: 240},
	}}
	require.NotNil(t, m.LargestPhoto())
	assert.Equal(t, "big", m.LargestPhoto().FileID)

	empty := &Message{}
	assert.Nil(t, empty.LargestPhoto())
}
