// Package feed builds the per-agent view of biddable orders: open orders
// with a live dispatch state the agent's pool is allowed to see, enriched
// with the fare window, the leading bid and the remaining bid time.
package feed

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/localbite-davis/localbite/internal/domain"
	"github.com/localbite-davis/localbite/internal/ports"
)

// DefaultLimit caps how many open orders one feed request scans.
const DefaultLimit = 50

// Service assembles agent feeds.
type Service struct {
	store    ports.OrderStore
	dispatch ports.DispatchStore
	log      *slog.Logger
}

// NewService wires a feed service.
func NewService(store ports.OrderStore, dispatch ports.DispatchStore, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, dispatch: dispatch, log: log}
}

// Item is one biddable order in an agent's feed.
type Item struct {
	OrderID                int64      `json:"order_id"`
	RestaurantID           int64      `json:"restaurant_id"`
	DeliveryAddress        string     `json:"delivery_address"`
	OrderItemsCount        int        `json:"order_items_count"`
	BaseFare               float64    `json:"base_fare"`
	MinAllowedFare         float64    `json:"min_allowed_fare"`
	MaxAllowedFare         float64    `json:"max_allowed_fare"`
	DispatchStatus         string     `json:"dispatch_status"`
	PoolPhase              string     `json:"pool_phase"`
	StudentOnly            bool       `json:"student_only"`
	BiddingTimeLeftSeconds int        `json:"bidding_time_left_seconds"`
	DispatchUpdatedAt      time.Time  `json:"dispatch_updated_at"`
	LeadingBidAmount       *float64   `json:"leading_bid_amount,omitempty"`
	LeadingBidCreatedAt    *time.Time `json:"leading_bid_created_at,omitempty"`
	TotalPlacedBids        int        `json:"total_placed_bids"`
	OrderCreatedAt         time.Time  `json:"order_created_at"`
}

// Response is the feed returned to one agent.
type Response struct {
	AgentID   string           `json:"agent_id"`
	AgentType domain.AgentType `json:"agent_type"`
	Items     []Item           `json:"available_orders"`
}

// AvailableForAgent returns the orders the agent may bid on right now.
// Visibility follows the dispatch phase: student_pool broadcasts only reach
// student agents, all_agents broadcasts reach everyone active.
func (s *Service) AvailableForAgent(ctx context.Context, agentID string, limit int) (Response, error) {
	agent, err := s.store.GetAgent(ctx, agentID)
	if err != nil {
		return Response{}, err
	}
	if !agent.IsActive {
		return Response{}, domain.Forbiddenf("agent %s is not active", agent.AgentID)
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	orders, err := s.store.ListOpenOrders(ctx, limit)
	if err != nil {
		return Response{}, err
	}

	now := time.Now()
	items := make([]Item, 0, len(orders))
	for _, order := range orders {
		state, found, err := s.dispatch.GetState(ctx, order.OrderID)
		if err != nil {
			s.log.Warn("dispatch state read failed, skipping order", "order_id", order.OrderID, "err", err)
			continue
		}
		if !found || !state.VisibleTo(agent.AgentType) {
			continue
		}

		minFare, maxFare := domain.BidWindow(order.BaseFare)
		item := Item{
			OrderID:                order.OrderID,
			RestaurantID:           order.RestaurantID,
			DeliveryAddress:        state.DeliveryAddress,
			OrderItemsCount:        len(order.OrderItems),
			BaseFare:               order.BaseFare,
			MinAllowedFare:         minFare,
			MaxAllowedFare:         maxFare,
			DispatchStatus:         string(state.Status),
			PoolPhase:              string(state.Phase),
			StudentOnly:            state.Phase == domain.DispatchPhaseStudentPool,
			BiddingTimeLeftSeconds: state.SecondsRemaining(now),
			DispatchUpdatedAt:      state.UpdatedAt,
			OrderCreatedAt:         order.CreatedAt,
		}

		bids, err := s.store.ListBidsByOrder(ctx, order.OrderID)
		if err != nil {
			return Response{}, err
		}
		item.TotalPlacedBids = len(domain.PlacedBids(bids))
		if leading := domain.BestPlacedBid(bids); leading != nil {
			amount := domain.Round2(leading.BidAmount)
			created := leading.CreatedAt
			item.LeadingBidAmount = &amount
			item.LeadingBidCreatedAt = &created
		}

		items = append(items, item)
	}

	// Student-only auctions surface first, then freshest orders.
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].StudentOnly != items[j].StudentOnly {
			return items[i].StudentOnly
		}
		if !items[i].OrderCreatedAt.Equal(items[j].OrderCreatedAt) {
			return items[i].OrderCreatedAt.After(items[j].OrderCreatedAt)
		}
		return items[i].OrderID > items[j].OrderID
	})

	return Response{AgentID: agent.AgentID, AgentType: agent.AgentType, Items: items}, nil
}
