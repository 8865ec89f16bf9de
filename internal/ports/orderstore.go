package ports

import (
	"context"

	"github.com/localbite-davis/localbite/internal/domain"
)

// OrderStore persists the durable records: orders, bids and agents.
// It is the single source of truth for assignment; the award and
// fulfillment transitions are transactional.
type OrderStore interface {
	// CreateOrder inserts a new order and fills in its generated id.
	CreateOrder(ctx context.Context, order *domain.Order) error

	// GetOrder loads one order, KindNotFound when missing.
	GetOrder(ctx context.Context, orderID int64) (domain.Order, error)

	// ListOpenOrders returns unassigned, non-terminal orders, newest first.
	ListOpenOrders(ctx context.Context, limit int) ([]domain.Order, error)

	// ListActiveOrdersByAgent returns the agent's assigned/on_the_way orders,
	// newest first.
	ListActiveOrdersByAgent(ctx context.Context, agentID string) ([]domain.Order, error)

	// CreateAgent registers a delivery agent.
	CreateAgent(ctx context.Context, agent *domain.DeliveryAgent) error

	// GetAgent loads one agent, KindNotFound when missing.
	GetAgent(ctx context.Context, agentID string) (domain.DeliveryAgent, error)

	// CreateBid inserts a bid and fills in its generated id and timestamps.
	CreateBid(ctx context.Context, bid *domain.DeliveryBid) error

	// GetBid loads one bid, KindNotFound when missing.
	GetBid(ctx context.Context, bidID int64) (domain.DeliveryBid, error)

	// ListBidsByOrder returns every bid for the order, newest first
	// (created_at desc, bid_id desc).
	ListBidsByOrder(ctx context.Context, orderID int64) ([]domain.DeliveryBid, error)

	// ListBidsByAgent returns every bid by the agent, newest first.
	ListBidsByAgent(ctx context.Context, agentID string) ([]domain.DeliveryBid, error)

	// PlacedBidMarker returns (count of placed bids, max placed bid id)
	// for the order.
	PlacedBidMarker(ctx context.Context, orderID int64) (domain.BidMarker, error)

	// AwardBid atomically accepts the bid, assigns the order, copies the bid
	// amount into delivery_fee and rejects every other placed bid for the
	// order. The assignment update is gated on the order being unassigned
	// (or already assigned to the same agent); KindConflict otherwise.
	AwardBid(ctx context.Context, bidID int64) (domain.DeliveryBid, error)

	// FulfillDelivery atomically marks the order delivered, records the
	// delivery proof and credits the agent payout exactly once. Repeat calls
	// return the existing ledger unchanged.
	FulfillDelivery(ctx context.Context, agentID string, orderID int64, proofRef, proofFilename string) (domain.FulfillmentLedger, error)

	// Close releases the underlying database.
	Close() error
}
