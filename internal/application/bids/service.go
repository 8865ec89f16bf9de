// Package bids implements the delivery-bid lifecycle: placement against the
// fare window, listing, and the award transition that assigns the order.
package bids

import (
	"context"
	"log/slog"

	"github.com/localbite-davis/localbite/internal/domain"
	"github.com/localbite-davis/localbite/internal/ports"
)

// Service coordinates bid placement and awards between the durable order
// store and the ephemeral dispatch state.
type Service struct {
	store    ports.OrderStore
	dispatch ports.DispatchStore
	log      *slog.Logger
}

// NewService wires a bid service.
func NewService(store ports.OrderStore, dispatch ports.DispatchStore, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, dispatch: dispatch, log: log}
}

// PlaceRequest is one agent offer for one order.
type PlaceRequest struct {
	OrderID   int64   `json:"order_id"`
	AgentID   string  `json:"agent_id"`
	BidAmount float64 `json:"bid_amount"`
}

// Place validates and records a bid. The fare window is derived from the
// order's base fare and snapshotted onto the bid row. During the student_pool
// phase only student agents may bid.
func (s *Service) Place(ctx context.Context, req PlaceRequest) (domain.DeliveryBid, error) {
	order, err := s.store.GetOrder(ctx, req.OrderID)
	if err != nil {
		return domain.DeliveryBid{}, err
	}
	if order.IsAssigned() {
		return domain.DeliveryBid{}, domain.Conflictf("order %d is already assigned", order.OrderID)
	}

	agent, err := s.store.GetAgent(ctx, req.AgentID)
	if err != nil {
		return domain.DeliveryBid{}, err
	}
	if !agent.IsActive {
		return domain.DeliveryBid{}, domain.Forbiddenf("agent %s is not active", agent.AgentID)
	}

	phase := s.currentPhase(ctx, order.OrderID)
	if phase == domain.PhaseStudentPool && agent.AgentType != domain.AgentTypeStudent {
		return domain.DeliveryBid{}, domain.Forbiddenf("order %d is in the student pool phase", order.OrderID)
	}

	minFare, maxFare := domain.BidWindow(order.BaseFare)
	amount := domain.Round2(req.BidAmount)
	if amount < minFare || amount > maxFare {
		return domain.DeliveryBid{}, &domain.BidWindowError{
			MinAllowedFare:     minFare,
			MaxAllowedFare:     maxFare,
			SubmittedBidAmount: amount,
		}
	}

	bid := domain.DeliveryBid{
		OrderID:        order.OrderID,
		AgentID:        agent.AgentID,
		BidAmount:      amount,
		MinAllowedFare: minFare,
		MaxAllowedFare: maxFare,
		PoolPhase:      phase,
		BidStatus:      domain.BidStatusPlaced,
	}
	if err := s.store.CreateBid(ctx, &bid); err != nil {
		return domain.DeliveryBid{}, err
	}

	s.log.Info("bid placed",
		"order_id", bid.OrderID,
		"agent_id", bid.AgentID,
		"bid_id", bid.BidID,
		"amount", bid.BidAmount,
		"phase", bid.PoolPhase)
	return bid, nil
}

// currentPhase reads the auction phase for the order. Orders with no live
// dispatch state accept bids under all_agents rules.
func (s *Service) currentPhase(ctx context.Context, orderID int64) domain.PoolPhase {
	state, found, err := s.dispatch.GetState(ctx, orderID)
	if err != nil {
		s.log.Warn("dispatch state read failed, assuming all_agents", "order_id", orderID, "err", err)
		return domain.PhaseAllAgents
	}
	if found && state.Phase == domain.DispatchPhaseStudentPool {
		return domain.PhaseStudentPool
	}
	return domain.PhaseAllAgents
}

// ListByOrder returns every bid on the order, newest first.
func (s *Service) ListByOrder(ctx context.Context, orderID int64) ([]domain.DeliveryBid, error) {
	if _, err := s.store.GetOrder(ctx, orderID); err != nil {
		return nil, err
	}
	return s.store.ListBidsByOrder(ctx, orderID)
}

// ListByAgent returns every bid by the agent, newest first.
func (s *Service) ListByAgent(ctx context.Context, agentID string) ([]domain.DeliveryBid, error) {
	if _, err := s.store.GetAgent(ctx, agentID); err != nil {
		return nil, err
	}
	return s.store.ListBidsByAgent(ctx, agentID)
}

// Award accepts the bid and assigns its order. Accepting an already-accepted
// bid is idempotent; everything else races through the store's gated update,
// so of two concurrent awards exactly one wins. The dispatch flag is set only
// after the commit; a flag write failure is logged, not returned, because the
// order row already holds the truth.
func (s *Service) Award(ctx context.Context, bidID int64) (domain.DeliveryBid, error) {
	bid, err := s.store.GetBid(ctx, bidID)
	if err != nil {
		return domain.DeliveryBid{}, err
	}
	if bid.BidStatus == domain.BidStatusAccepted {
		return bid, nil
	}
	if bid.BidStatus != domain.BidStatusPlaced {
		return domain.DeliveryBid{}, domain.Conflictf("bid %d is %s, only placed bids can be accepted", bid.BidID, bid.BidStatus)
	}

	order, err := s.store.GetOrder(ctx, bid.OrderID)
	if err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			return domain.DeliveryBid{}, domain.NotFoundf("order not found for bid %d", bid.BidID)
		}
		return domain.DeliveryBid{}, err
	}
	if order.IsAssigned() && !order.AssignedTo(bid.AgentID) {
		return domain.DeliveryBid{}, domain.Conflictf("order %d is already assigned to another agent", order.OrderID)
	}

	agent, err := s.store.GetAgent(ctx, bid.AgentID)
	if err != nil {
		return domain.DeliveryBid{}, err
	}
	if !agent.IsActive {
		return domain.DeliveryBid{}, domain.Forbiddenf("agent %s is not active", agent.AgentID)
	}

	accepted, err := s.store.AwardBid(ctx, bid.BidID)
	if err != nil {
		return domain.DeliveryBid{}, err
	}

	if err := s.dispatch.MarkAssigned(ctx, accepted.OrderID, accepted.AgentID); err != nil {
		s.log.Warn("assigned flag write failed after award",
			"order_id", accepted.OrderID, "bid_id", accepted.BidID, "err", err)
	}

	s.log.Info("bid accepted",
		"order_id", accepted.OrderID,
		"bid_id", accepted.BidID,
		"agent_id", accepted.AgentID,
		"amount", accepted.BidAmount)
	return accepted, nil
}

// AutoAward picks the winning placed bid for the order deterministically
// (lowest amount, then earliest, then lowest id) and awards it. The dispatch
// engine calls this when an auction phase closes.
func (s *Service) AutoAward(ctx context.Context, orderID int64) (domain.DeliveryBid, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return domain.DeliveryBid{}, err
	}
	if order.IsAssigned() {
		return domain.DeliveryBid{}, domain.Conflictf("order %d is already assigned", order.OrderID)
	}

	all, err := s.store.ListBidsByOrder(ctx, orderID)
	if err != nil {
		return domain.DeliveryBid{}, err
	}
	winner := domain.BestPlacedBid(all)
	if winner == nil {
		return domain.DeliveryBid{}, domain.NotFoundf("no active placed bids found for order %d", orderID)
	}
	return s.Award(ctx, winner.BidID)
}
