package ticket

import (
	"context"
	"errors"
)

// ErrNotFound is the normal miss outcome of a lookup: staff replied to a
// message no ticket points at. It is distinguishable from I/O failures, which
// surface as other errors.
var ErrNotFound = errors.New("ticket not found")

// Repository is the durable ticket store. Creation is append-only; tickets
// are never updated or deleted.
type Repository interface {
	// Create persists a new ticket and assigns its number. The row is
	// durable before Create returns.
	Create(ctx context.Context, t *Ticket) error

	// FindByGroupMessageID resolves the ticket whose forwarded group message
	// has the given id. Returns ErrNotFound on a miss.
	FindByGroupMessageID(ctx context.Context, groupMessageID int64) (*Ticket, error)
}
