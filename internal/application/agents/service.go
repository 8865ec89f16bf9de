// Package agents covers the courier-facing operations after assignment:
// registration, delivery fulfillment with its exactly-once payout, and the
// active-orders view.
package agents

import (
	"context"
	"log/slog"
	"time"

	"github.com/localbite-davis/localbite/internal/domain"
	"github.com/localbite-davis/localbite/internal/ports"
)

// Service handles agent registration and fulfillment.
type Service struct {
	store    ports.OrderStore
	dispatch ports.DispatchStore
	log      *slog.Logger
}

// NewService wires an agent service.
func NewService(store ports.OrderStore, dispatch ports.DispatchStore, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, dispatch: dispatch, log: log}
}

// Register validates and persists a new delivery agent. The agent type is
// normalized so legacy "normal" registrations land as third_party.
func (s *Service) Register(ctx context.Context, agent domain.DeliveryAgent) (domain.DeliveryAgent, error) {
	agent.AgentType = domain.NormalizeAgentType(string(agent.AgentType))
	if agent.Rating == 0 {
		agent.Rating = 5.0
	}
	if err := agent.Validate(); err != nil {
		return domain.DeliveryAgent{}, err
	}
	if err := s.store.CreateAgent(ctx, &agent); err != nil {
		return domain.DeliveryAgent{}, err
	}
	s.log.Info("agent registered", "agent_id", agent.AgentID, "agent_type", agent.AgentType)
	return agent, nil
}

// Get loads one agent.
func (s *Service) Get(ctx context.Context, agentID string) (domain.DeliveryAgent, error) {
	return s.store.GetAgent(ctx, agentID)
}

// Fulfill marks the agent's assigned order as delivered with the uploaded
// proof and credits the payout. The store transition is idempotent: repeat
// calls return the same ledger without paying twice.
func (s *Service) Fulfill(ctx context.Context, agentID string, orderID int64, proofRef, proofFilename string) (domain.FulfillmentLedger, error) {
	agent, err := s.store.GetAgent(ctx, agentID)
	if err != nil {
		return domain.FulfillmentLedger{}, err
	}
	if !agent.IsActive {
		return domain.FulfillmentLedger{}, domain.Forbiddenf("agent %s is not active", agent.AgentID)
	}

	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return domain.FulfillmentLedger{}, err
	}
	if !order.AssignedTo(agentID) {
		return domain.FulfillmentLedger{}, domain.Forbiddenf("order is not assigned to this agent")
	}

	ledger, err := s.store.FulfillDelivery(ctx, agentID, orderID, proofRef, proofFilename)
	if err != nil {
		return domain.FulfillmentLedger{}, err
	}

	s.log.Info("delivery fulfilled",
		"order_id", ledger.OrderID,
		"agent_id", ledger.AgentID,
		"payout", ledger.PayoutAmount,
		"total_deliveries", ledger.TotalDeliveries)
	return ledger, nil
}

// ActiveOrder is one in-flight delivery in the agent's list.
type ActiveOrder struct {
	OrderID         int64              `json:"order_id"`
	RestaurantID    int64              `json:"restaurant_id"`
	OrderStatus     domain.OrderStatus `json:"order_status"`
	DeliveryFee     float64            `json:"delivery_fee"`
	DeliveryAddress string             `json:"delivery_address,omitempty"`
	AssignedAt      *time.Time         `json:"assigned_at,omitempty"`
	OrderCreatedAt  time.Time          `json:"order_created_at"`
}

// ActiveOrdersResponse is the agent's current workload.
type ActiveOrdersResponse struct {
	AgentID       string        `json:"agent_id"`
	ActiveOrders  []ActiveOrder `json:"active_orders"`
	TotalActive   int           `json:"total_active"`
	TotalFeesOwed float64       `json:"total_fees_owed"`
}

// ActiveOrders lists the agent's assigned and on_the_way orders, newest
// first, with the delivery address pulled from the dispatch state when it is
// still around.
func (s *Service) ActiveOrders(ctx context.Context, agentID string) (ActiveOrdersResponse, error) {
	if _, err := s.store.GetAgent(ctx, agentID); err != nil {
		return ActiveOrdersResponse{}, err
	}

	orders, err := s.store.ListActiveOrdersByAgent(ctx, agentID)
	if err != nil {
		return ActiveOrdersResponse{}, err
	}

	resp := ActiveOrdersResponse{AgentID: agentID, ActiveOrders: make([]ActiveOrder, 0, len(orders))}
	for _, order := range orders {
		item := ActiveOrder{
			OrderID:        order.OrderID,
			RestaurantID:   order.RestaurantID,
			OrderStatus:    order.OrderStatus,
			DeliveryFee:    order.DeliveryFee,
			OrderCreatedAt: order.CreatedAt,
		}
		if state, found, err := s.dispatch.GetState(ctx, order.OrderID); err == nil && found {
			item.DeliveryAddress = state.DeliveryAddress
			if !state.UpdatedAt.IsZero() {
				at := state.UpdatedAt
				item.AssignedAt = &at
			}
		}
		resp.ActiveOrders = append(resp.ActiveOrders, item)
		resp.TotalFeesOwed += order.DeliveryFee
	}
	resp.TotalActive = len(resp.ActiveOrders)
	resp.TotalFeesOwed = domain.Round2(resp.TotalFeesOwed)
	return resp, nil
}
