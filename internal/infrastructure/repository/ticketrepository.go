package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"tessera/internal/domain/ticket"
	"tessera/internal/infrastructure/persistence/models"
)

// TicketRepository implements ticket.Repository using GORM.
type TicketRepository struct {
	db *gorm.DB
}

// NewTicketRepository creates a new TicketRepository instance.
func NewTicketRepository(db *gorm.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

// Create persists a new ticket and assigns the auto-incremented id back to
// the domain entity.
func (r *TicketRepository) Create(ctx context.Context, t *ticket.Ticket) error {
	model := r.toModel(t)

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create ticket: %w", err)
	}

	if err := t.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to assign ticket id: %w", err)
	}

	return nil
}

// FindByGroupMessageID resolves the ticket for a staff reply target.
func (r *TicketRepository) FindByGroupMessageID(ctx context.Context, groupMessageID int64) (*ticket.Ticket, error) {
	var model models.TicketModel

	err := r.db.WithContext(ctx).
		Where("group_message_id = ?", groupMessageID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ticket.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find ticket by group message id: %w", err)
	}

	return r.toDomain(&model)
}

func (r *TicketRepository) toModel(t *ticket.Ticket) *models.TicketModel {
	return &models.TicketModel{
		ID:              t.ID(),
		EncryptedUserID: t.EncryptedUserID(),
		UserMessageID:   t.UserMessageID(),
		GroupMessageID:  t.GroupMessageID(),
		CreatedAt:       t.CreatedAt(),
	}
}

func (r *TicketRepository) toDomain(m *models.TicketModel) (*ticket.Ticket, error) {
	return ticket.ReconstructTicket(
		m.ID,
		m.EncryptedUserID,
		m.UserMessageID,
		m.GroupMessageID,
		m.CreatedAt,
	)
}
