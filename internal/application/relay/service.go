// Package relay routes messages between private chats and the staff group.
package relay

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tessera/internal/domain/ticket"
	"tessera/internal/infrastructure/crypto"
	"tessera/internal/infrastructure/ratelimit"
	"tessera/internal/infrastructure/telegram"
	"tessera/internal/shared/logger"
)

// Gateway is the outbound messaging surface the relay needs. Satisfied by
// *telegram.BotService.
type Gateway interface {
	SendMessage(ctx context.Context, chatID int64, text string, replyTo int64) (int64, error)
	SendPhoto(ctx context.Context, chatID int64, fileID, caption string, replyTo int64) (int64, error)
	SendVideo(ctx context.Context, chatID int64, fileID, caption string, replyTo int64) (int64, error)
	SendDocument(ctx context.Context, chatID int64, fileID, caption string, replyTo int64) (int64, error)
	SendVoice(ctx context.Context, chatID int64, fileID, caption string, replyTo int64) (int64, error)
	CopyMessage(ctx context.Context, chatID, fromChatID, messageID int64, replyTo int64) (int64, error)
	EditMessageCaption(ctx context.Context, chatID, messageID int64, caption string) error
	EditMessageText(ctx context.Context, chatID, messageID int64, text string) error
}

// Cipher protects user identities at rest. Satisfied by *crypto.UserIDCipher.
type Cipher interface {
	EncryptUserID(userID int64) (string, error)
	DecryptUserID(token string) (int64, error)
}

const defaultSendTimeout = 10 * time.Second

// Service is the routing engine. It is stateless per update: every decision
// is derived from the update itself, the ticket store, and the rate limiter.
type Service struct {
	gateway     Gateway
	tickets     ticket.Repository
	cipher      Cipher
	limiter     ratelimit.Limiter
	logger      logger.Interface
	groupID     int64
	sendTimeout time.Duration
}

// NewService creates the relay service. groupID is the staff group every
// private message is forwarded into.
func NewService(
	gateway Gateway,
	tickets ticket.Repository,
	cipher Cipher,
	limiter ratelimit.Limiter,
	log logger.Interface,
	groupID int64,
) *Service {
	return &Service{
		gateway:     gateway,
		tickets:     tickets,
		cipher:      cipher,
		limiter:     limiter,
		logger:      log,
		groupID:     groupID,
		sendTimeout: defaultSendTimeout,
	}
}

// HandleUpdate implements telegram.UpdateHandler.
func (s *Service) HandleUpdate(ctx context.Context, update *telegram.Update) error {
	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return nil
	}

	switch msg.Chat.Type {
	case telegram.ChatTypePrivate:
		return s.handlePrivateMessage(ctx, msg)
	case telegram.ChatTypeGroup, telegram.ChatTypeSupergroup:
		return s.handleGroupMessage(ctx, msg)
	default:
		return nil
	}
}

func (s *Service) handlePrivateMessage(ctx context.Context, msg *telegram.Message) error {
	if msg.From == nil {
		return nil
	}
	userID := msg.From.ID

	if isStartCommand(msg.Text) {
		sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
		defer cancel()
		if _, err := s.gateway.SendMessage(sendCtx, msg.Chat.ID, greetingText, 0); err != nil {
			s.logger.Warnw("failed to send greeting", "user_id", userID, "error", err)
		}
		return nil
	}

	if !s.limiter.Allow(userID) {
		s.logger.Debugw("message dropped by cooldown", "user_id", userID)
		return nil
	}

	groupMessageID, err := s.forwardToGroup(ctx, msg)
	if err != nil {
		s.logger.Errorw("failed to forward message to staff group",
			"user_id", userID,
			"message_id", msg.MessageID,
			"error", err,
		)
		return err
	}

	encryptedID, err := s.cipher.EncryptUserID(userID)
	if err != nil {
		s.logger.Errorw("failed to encrypt user id", "error", err)
		return fmt.Errorf("failed to encrypt user id: %w", err)
	}

	t, err := ticket.NewTicket(encryptedID, msg.MessageID, groupMessageID)
	if err != nil {
		return fmt.Errorf("failed to build ticket: %w", err)
	}
	if err := s.tickets.Create(ctx, t); err != nil {
		s.logger.Errorw("failed to create ticket",
			"group_message_id", groupMessageID,
			"error", err,
		)
		return err
	}

	s.labelForwardedMessage(ctx, groupMessageID, t.Number())

	ackCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()
	if _, err := s.gateway.SendMessage(ackCtx, msg.Chat.ID, ackText, 0); err != nil {
		s.logger.Warnw("failed to send acknowledgment",
			"user_id", userID,
			"ticket", t.Number(),
			"error", err,
		)
	}

	s.logger.Infow("ticket created",
		"ticket", t.Number(),
		"group_message_id", groupMessageID,
	)
	return nil
}

// forwardToGroup relays the message content into the staff group preserving
// its kind. Unrecognized kinds fall back to copyMessage.
func (s *Service) forwardToGroup(ctx context.Context, msg *telegram.Message) (int64, error) {
	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()

	switch {
	case msg.Text != "":
		return s.gateway.SendMessage(sendCtx, s.groupID, msg.Text, 0)
	case len(msg.Photo) > 0:
		return s.gateway.SendPhoto(sendCtx, s.groupID, msg.LargestPhoto().FileID, msg.Caption, 0)
	case msg.Video != nil:
		return s.gateway.SendVideo(sendCtx, s.groupID, msg.Video.FileID, msg.Caption, 0)
	case msg.Document != nil:
		return s.gateway.SendDocument(sendCtx, s.groupID, msg.Document.FileID, msg.Caption, 0)
	case msg.Voice != nil:
		return s.gateway.SendVoice(sendCtx, s.groupID, msg.Voice.FileID, msg.Caption, 0)
	default:
		return s.gateway.CopyMessage(sendCtx, s.groupID, msg.Chat.ID, msg.MessageID, 0)
	}
}

// labelForwardedMessage stamps the ticket number onto the forwarded message.
// Media messages take a caption edit; a 400 means the target has no caption
// (plain text), so retry as a text edit. Labeling is best effort and never
// fails the relay.
func (s *Service) labelForwardedMessage(ctx context.Context, groupMessageID int64, number uint) {
	label := fmt.Sprintf(ticketCaptionFormat, number)

	editCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()

	err := s.gateway.EditMessageCaption(editCtx, s.groupID, groupMessageID, label)
	if err == nil {
		return
	}
	if !telegram.IsBadRequest(err) {
		s.logger.Warnw("failed to label forwarded message",
			"group_message_id", groupMessageID,
			"error", err,
		)
		return
	}

	if err := s.gateway.EditMessageText(editCtx, s.groupID, groupMessageID, label); err != nil {
		s.logger.Warnw("failed to label forwarded message",
			"group_message_id", groupMessageID,
			"error", err,
		)
	}
}

func (s *Service) handleGroupMessage(ctx context.Context, msg *telegram.Message) error {
	if msg.Chat.ID != s.groupID {
		return nil
	}
	if msg.ReplyToMessage == nil {
		return nil
	}

	t, err := s.tickets.FindByGroupMessageID(ctx, msg.ReplyToMessage.MessageID)
	if err != nil {
		if errors.Is(err, ticket.ErrNotFound) {
			// Staff replied to something that is not a forwarded ticket.
			return nil
		}
		s.logger.Errorw("ticket lookup failed",
			"group_message_id", msg.ReplyToMessage.MessageID,
			"error", err,
		)
		return err
	}

	userID, err := s.cipher.DecryptUserID(t.EncryptedUserID())
	if err != nil {
		// A corrupt token must never route a reply to the wrong user.
		s.logger.Errorw("failed to decrypt ticket user id",
			"ticket", t.Number(),
			"invalid_token", errors.Is(err, crypto.ErrInvalidToken),
			"error", err,
		)
		return err
	}

	if err := s.relayReplyToUser(ctx, msg, userID, t.UserMessageID()); err != nil {
		s.logger.Errorw("failed to relay staff reply",
			"ticket", t.Number(),
			"error", err,
		)
		return err
	}

	s.logger.Infow("staff reply relayed", "ticket", t.Number())
	return nil
}

// relayReplyToUser delivers a staff reply threaded under the user's original
// message.
func (s *Service) relayReplyToUser(ctx context.Context, msg *telegram.Message, userID, userMessageID int64) error {
	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()

	switch {
	case msg.Text != "":
		_, err := s.gateway.SendMessage(sendCtx, userID, msg.Text, userMessageID)
		return err
	case len(msg.Photo) > 0:
		_, err := s.gateway.SendPhoto(sendCtx, userID, msg.LargestPhoto().FileID, msg.Caption, userMessageID)
		return err
	case msg.Video != nil:
		_, err := s.gateway.SendVideo(sendCtx, userID, msg.Video.FileID, msg.Caption, userMessageID)
		return err
	case msg.Document != nil:
		_, err := s.gateway.SendDocument(sendCtx, userID, msg.Document.FileID, msg.Caption, userMessageID)
		return err
	case msg.Voice != nil:
		_, err := s.gateway.SendVoice(sendCtx, userID, msg.Voice.FileID, msg.Caption, userMessageID)
		return err
	default:
		_, err := s.gateway.CopyMessage(sendCtx, userID, msg.Chat.ID, msg.MessageID, userMessageID)
		return err
	}
}

func isStartCommand(text string) bool {
	return text == "/start" || strings.HasPrefix(text, "/start ") || strings.HasPrefix(text, "/start@")
}
