package domain

import "time"

// OrderStatus is the durable lifecycle of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusAssigned  OrderStatus = "assigned"
	OrderStatusOnTheWay  OrderStatus = "on_the_way"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// PayoutStatus tracks whether the agent payout for an order was credited.
type PayoutStatus string

const (
	PayoutStatusPending PayoutStatus = "pending"
	PayoutStatusPaid    PayoutStatus = "paid"
)

// OrderItem is one line of an order. The dispatch core treats items as
// opaque cargo; only the count matters for the agent feed.
type OrderItem struct {
	MenuItemID int64   `json:"menu_item_id"`
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"`
}

// Order is the authoritative record for a placed order. The order row is the
// linearization point for assignment: AssignedPartnerID is set exactly once,
// inside the award transaction, and never changes afterwards.
type Order struct {
	OrderID               int64        `json:"order_id"`
	UserID                int64        `json:"user_id"`
	RestaurantID          int64        `json:"restaurant_id"`
	AssignedPartnerID     *string      `json:"assigned_partner_id,omitempty"`
	OrderItems            []OrderItem  `json:"order_items"`
	BaseFare              float64      `json:"base_fare"`
	DeliveryFee           float64      `json:"delivery_fee"`
	CommissionAmount      float64      `json:"commission_amount"`
	OrderStatus           OrderStatus  `json:"order_status"`
	CreatedAt             time.Time    `json:"created_at"`
	DeliveredAt           *time.Time   `json:"delivered_at,omitempty"`
	DeliveryProofRef      string       `json:"delivery_proof_ref,omitempty"`
	DeliveryProofFilename string       `json:"delivery_proof_filename,omitempty"`
	AgentPayoutAmount     float64      `json:"agent_payout_amount"`
	AgentPayoutStatus     PayoutStatus `json:"agent_payout_status"`
}

// IsAssigned reports whether an agent holds this order.
func (o Order) IsAssigned() bool {
	return o.AssignedPartnerID != nil && *o.AssignedPartnerID != ""
}

// AssignedTo reports whether the order is held by the given agent.
func (o Order) AssignedTo(agentID string) bool {
	return o.AssignedPartnerID != nil && *o.AssignedPartnerID == agentID
}

// FulfillmentLedger is the post-fulfillment snapshot returned to the agent:
// the delivered order plus the payout and the agent's updated totals.
type FulfillmentLedger struct {
	AgentID         string      `json:"agent_id"`
	OrderID         int64       `json:"order_id"`
	OrderStatus     OrderStatus `json:"order_status"`
	PayoutAmount    float64     `json:"payout_amount"`
	PayoutStatus    string      `json:"payout_status"`
	TotalEarnings   float64     `json:"total_earnings"`
	TotalDeliveries int         `json:"total_deliveries"`
	DeliveredAt     time.Time   `json:"delivered_at"`
	ProofPhotoRef   string      `json:"proof_photo_ref"`
}
