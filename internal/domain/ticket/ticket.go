// Package ticket holds the correlation record linking a message forwarded
// into the staff group back to the private-chat user who sent it.
package ticket

import (
	"fmt"
	"time"
)

// Ticket is immutable after creation: it is written exactly once when an
// inbound message is forwarded, and only read afterwards when staff reply.
type Ticket struct {
	id              uint
	encryptedUserID string
	userMessageID   int64
	groupMessageID  int64
	createdAt       time.Time
}

// NewTicket creates a ticket for a freshly forwarded message. The id is
// assigned by the repository on save.
func NewTicket(encryptedUserID string, userMessageID, groupMessageID int64) (*Ticket, error) {
	if encryptedUserID == "" {
		return nil, fmt.Errorf("encrypted user id is required")
	}
	if userMessageID <= 0 {
		return nil, fmt.Errorf("user message id must be positive")
	}
	if groupMessageID <= 0 {
		return nil, fmt.Errorf("group message id must be positive")
	}

	return &Ticket{
		encryptedUserID: encryptedUserID,
		userMessageID:   userMessageID,
		groupMessageID:  groupMessageID,
		createdAt:       time.Now(),
	}, nil
}

// ReconstructTicket rebuilds a ticket from its persisted state.
func ReconstructTicket(
	id uint,
	encryptedUserID string,
	userMessageID int64,
	groupMessageID int64,
	createdAt time.Time,
) (*Ticket, error) {
	if id == 0 {
		return nil, fmt.Errorf("ticket ID cannot be zero")
	}
	if encryptedUserID == "" {
		return nil, fmt.Errorf("encrypted user id is required")
	}
	if groupMessageID <= 0 {
		return nil, fmt.Errorf("group message id must be positive")
	}

	return &Ticket{
		id:              id,
		encryptedUserID: encryptedUserID,
		userMessageID:   userMessageID,
		groupMessageID:  groupMessageID,
		createdAt:       createdAt,
	}, nil
}

// SetID assigns the repository-generated id after the first save.
func (t *Ticket) SetID(id uint) error {
	if t.id != 0 {
		return fmt.Errorf("ticket ID already set")
	}
	if id == 0 {
		return fmt.Errorf("ticket ID cannot be zero")
	}
	t.id = id
	return nil
}

// Number is the human-facing ticket number shown in the staff group.
func (t *Ticket) Number() uint {
	return t.id
}

func (t *Ticket) ID() uint {
	return t.id
}

func (t *Ticket) EncryptedUserID() string {
	return t.encryptedUserID
}

func (t *Ticket) UserMessageID() int64 {
	return t.userMessageID
}

func (t *Ticket) GroupMessageID() int64 {
	return t.groupMessageID
}

func (t *Ticket) CreatedAt() time.Time {
	return t.createdAt
}
