package domain

import "time"

// BidStatus is the lifecycle of a delivery bid. Bids are insert-only: they
// transition between statuses but are never deleted.
type BidStatus string

const (
	BidStatusPlaced    BidStatus = "placed"
	BidStatusAccepted  BidStatus = "accepted"
	BidStatusRejected  BidStatus = "rejected"
	BidStatusExpired   BidStatus = "expired"
	BidStatusWithdrawn BidStatus = "withdrawn"
)

// PoolPhase identifies which auction phase a bid was placed in.
type PoolPhase string

const (
	PhaseStudentPool PoolPhase = "student_pool"
	PhaseAllAgents   PoolPhase = "all_agents"
)

// DeliveryBid is an agent's offer to deliver an order for a price. The fare
// window is snapshotted at placement so later fare changes cannot invalidate
// an existing bid.
type DeliveryBid struct {
	BidID          int64     `json:"bid_id"`
	OrderID        int64     `json:"order_id"`
	AgentID        string    `json:"agent_id"`
	BidAmount      float64   `json:"bid_amount"`
	MinAllowedFare float64   `json:"min_allowed_fare"`
	MaxAllowedFare float64   `json:"max_allowed_fare"`
	PoolPhase      PoolPhase `json:"pool_phase"`
	BidStatus      BidStatus `json:"bid_status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// RanksBefore is the deterministic award order: lowest rounded amount first,
// then earliest placement, then lowest bid id. Strictly lexicographic so the
// same multiset of bids always produces the same winner.
func (b DeliveryBid) RanksBefore(other DeliveryBid) bool {
	ba, oa := Round2(b.BidAmount), Round2(other.BidAmount)
	if ba != oa {
		return ba < oa
	}
	if !b.CreatedAt.Equal(other.CreatedAt) {
		return b.CreatedAt.Before(other.CreatedAt)
	}
	return b.BidID < other.BidID
}

// PlacedBids filters bids down to the ones still in play.
func PlacedBids(bids []DeliveryBid) []DeliveryBid {
	var placed []DeliveryBid
	for _, b := range bids {
		if b.BidStatus == BidStatusPlaced {
			placed = append(placed, b)
		}
	}
	return placed
}

// BestPlacedBid returns the placed bid that wins under RanksBefore,
// or nil when no placed bid exists.
func BestPlacedBid(bids []DeliveryBid) *DeliveryBid {
	var best *DeliveryBid
	for i := range bids {
		b := &bids[i]
		if b.BidStatus != BidStatusPlaced {
			continue
		}
		if best == nil || b.RanksBefore(*best) {
			best = b
		}
	}
	return best
}

// BidMarker is a cheap monotonic summary of the placed bids for an order.
// The dispatch engine compares markers between polls to detect new bids
// without diffing full rows.
type BidMarker struct {
	Placed   int
	MaxBidID int64
}

// IsZero reports the no-placed-bids marker.
func (m BidMarker) IsZero() bool { return m.Placed == 0 && m.MaxBidID == 0 }
