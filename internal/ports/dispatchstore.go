package ports

import (
	"context"

	"github.com/localbite-davis/localbite/internal/domain"
)

// Broadcaster publishes dispatch messages onto the per-pool queues that
// agent apps consume.
type Broadcaster interface {
	// Publish appends the message to the queue for its candidate pool.
	Publish(ctx context.Context, msg domain.DispatchMessage) error
}

// DispatchStore is the ephemeral per-order dispatch state: auction progress
// for the agent feed plus the assigned flag the engine polls. It is a cache;
// any divergence from the order store is resolved by re-reading the orders.
type DispatchStore interface {
	Broadcaster

	// SetState merges the state over the existing entry for the order.
	// Zero-valued optional fields keep their previous values.
	SetState(ctx context.Context, state domain.DispatchState) error

	// GetState loads the state for an order; found is false when no
	// dispatch has touched the order yet.
	GetState(ctx context.Context, orderID int64) (state domain.DispatchState, found bool, err error)

	// MarkAssigned sets the assigned flag and moves the state to
	// (assigned, completed). Called only after the order store commit.
	MarkAssigned(ctx context.Context, orderID int64, agentID string) error

	// ClearAssigned removes the assigned flag, used when a dispatch starts.
	ClearAssigned(ctx context.Context, orderID int64) error

	// IsAssigned reads the assigned flag.
	IsAssigned(ctx context.Context, orderID int64) (bool, error)

	// Close releases the underlying connection.
	Close() error
}
