package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	sharedConfig "tessera/internal/shared/config"
)

// BotService provides Telegram Bot API operations. It is the only component
// that talks to the platform; everything above it works with opaque chat and
// message identifiers.
type BotService struct {
	config     sharedConfig.TelegramConfig
	httpClient *http.Client
	baseURL    string
}

// NewBotService creates a new Telegram bot service.
func NewBotService(config sharedConfig.TelegramConfig) *BotService {
	return &BotService{
		config: config,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: fmt.Sprintf("https://api.telegram.org/bot%s", config.BotToken),
	}
}

// NewBotServiceWithBaseURL creates a bot service pointed at a custom API base
// URL. Used by tests to target an httptest server.
func NewBotServiceWithBaseURL(config sharedConfig.TelegramConfig, baseURL string) *BotService {
	s := NewBotService(config)
	s.baseURL = baseURL
	return s
}

// DeleteWebhook removes the webhook. Polling cannot start while a webhook is set.
func (s *BotService) DeleteWebhook(ctx context.Context) error {
	_, err := s.makeRequest(ctx, "deleteWebhook", nil)
	return err
}

// GetUpdates retrieves updates using long polling with context support.
// The context can be used to cancel the long polling request for graceful shutdown.
func (s *BotService) GetUpdates(ctx context.Context, offset int64, timeout int) ([]Update, error) {
	body := map[string]any{
		"timeout":         timeout,
		"allowed_updates": []string{"message"},
	}
	if offset > 0 {
		body["offset"] = offset
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	// Extended timeout so the long poll is not cut short by the default client.
	client := &http.Client{
		Timeout: time.Duration(timeout+10) * time.Second,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.methodURL("getUpdates"), bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	var result apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if !result.OK {
		return nil, result.apiError()
	}

	var updates []Update
	if err := json.Unmarshal(result.Result, &updates); err != nil {
		return nil, fmt.Errorf("failed to decode updates: %w", err)
	}

	return updates, nil
}

// SendMessage sends a text message and returns the sent message id.
// replyTo threads the message as a reply when non-zero.
func (s *BotService) SendMessage(ctx context.Context, chatID int64, text string, replyTo int64) (int64, error) {
	body := map[string]any{
		"chat_id": chatID,
		"text":    text,
	}
	addReplyParameters(body, replyTo)
	return s.sendForMessageID(ctx, "sendMessage", body)
}

// SendPhoto sends a photo by file id, preserving its caption.
func (s *BotService) SendPhoto(ctx context.Context, chatID int64, fileID, caption string, replyTo int64) (int64, error) {
	body := map[string]any{
		"chat_id": chatID,
		"photo":   fileID,
	}
	if caption != "" {
		body["caption"] = caption
	}
	addReplyParameters(body, replyTo)
	return s.sendForMessageID(ctx, "sendPhoto", body)
}

// SendVideo sends a video by file id, preserving its caption.
func (s *BotService) SendVideo(ctx context.Context, chatID int64, fileID, caption string, replyTo int64) (int64, error) {
	body := map[string]any{
		"chat_id": chatID,
		"video":   fileID,
	}
	if caption != "" {
		body["caption"] = caption
	}
	addReplyParameters(body, replyTo)
	return s.sendForMessageID(ctx, "sendVideo", body)
}

// SendDocument sends a document by file id, preserving its caption.
func (s *BotService) SendDocument(ctx context.Context, chatID int64, fileID, caption string, replyTo int64) (int64, error) {
	body := map[string]any{
		"chat_id":  chatID,
		"document": fileID,
	}
	if caption != "" {
		body["caption"] = caption
	}
	addReplyParameters(body, replyTo)
	return s.sendForMessageID(ctx, "sendDocument", body)
}

// SendVoice sends a voice note by file id, preserving its caption.
func (s *BotService) SendVoice(ctx context.Context, chatID int64, fileID, caption string, replyTo int64) (int64, error) {
	body := map[string]any{
		"chat_id": chatID,
		"voice":   fileID,
	}
	if caption != "" {
		body["caption"] = caption
	}
	addReplyParameters(body, replyTo)
	return s.sendForMessageID(ctx, "sendVoice", body)
}

// CopyMessage copies a message of any type without the "forwarded from"
// header. Used as the generic fallback for unrecognized content kinds.
func (s *BotService) CopyMessage(ctx context.Context, chatID, fromChatID, messageID int64, replyTo int64) (int64, error) {
	body := map[string]any{
		"chat_id":      chatID,
		"from_chat_id": fromChatID,
		"message_id":   messageID,
	}
	addReplyParameters(body, replyTo)

	result, err := s.makeRequest(ctx, "copyMessage", body)
	if err != nil {
		return 0, err
	}

	// copyMessage returns MessageId, not a full Message.
	var copied struct {
		MessageID int64 `json:"message_id"`
	}
	if err := json.Unmarshal(result, &copied); err != nil {
		return 0, fmt.Errorf("failed to decode copied message id: %w", err)
	}
	return copied.MessageID, nil
}

// EditMessageCaption replaces the caption of a media message.
func (s *BotService) EditMessageCaption(ctx context.Context, chatID, messageID int64, caption string) error {
	body := map[string]any{
		"chat_id":    chatID,
		"message_id": messageID,
		"caption":    caption,
	}
	_, err := s.makeRequest(ctx, "editMessageCaption", body)
	return err
}

// EditMessageText replaces the text of a text message.
func (s *BotService) EditMessageText(ctx context.Context, chatID, messageID int64, text string) error {
	body := map[string]any{
		"chat_id":    chatID,
		"message_id": messageID,
		"text":       text,
	}
	_, err := s.makeRequest(ctx, "editMessageText", body)
	return err
}

// addReplyParameters threads an outbound message as a reply. A deleted
// original must not block delivery, hence allow_sending_without_reply.
func addReplyParameters(body map[string]any, replyTo int64) {
	if replyTo > 0 {
		body["reply_parameters"] = map[string]any{
			"message_id":                  replyTo,
			"allow_sending_without_reply": true,
		}
	}
}

// apiResponse represents a Telegram API response envelope.
type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result,omitempty"`
	ErrorCode   int             `json:"error_code,omitempty"`
	Description string          `json:"description,omitempty"`
	Parameters  *struct {
		RetryAfter int `json:"retry_after,omitempty"`
	} `json:"parameters,omitempty"`
}

func (r *apiResponse) apiError() error {
	apiErr := &APIError{
		ErrorCode:   r.ErrorCode,
		Description: r.Description,
	}
	if r.Parameters != nil {
		apiErr.RetryAfter = r.Parameters.RetryAfter
	}
	return apiErr
}

func (s *BotService) methodURL(method string) string {
	return fmt.Sprintf("%s/%s", s.baseURL, method)
}

// sendForMessageID performs a send call and returns the resulting message id.
func (s *BotService) sendForMessageID(ctx context.Context, method string, body map[string]any) (int64, error) {
	result, err := s.makeRequest(ctx, method, body)
	if err != nil {
		return 0, err
	}

	var msg Message
	if err := json.Unmarshal(result, &msg); err != nil {
		return 0, fmt.Errorf("failed to decode sent message: %w", err)
	}
	return msg.MessageID, nil
}

func (s *BotService) makeRequest(ctx context.Context, method string, body map[string]any) (json.RawMessage, error) {
	var req *http.Request
	var err error

	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, s.methodURL(method), bytes.NewBuffer(jsonBody))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, s.methodURL(method), nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	var result apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if !result.OK {
		return nil, result.apiError()
	}

	return result.Result, nil
}
