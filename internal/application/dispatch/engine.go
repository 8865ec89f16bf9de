// Package dispatch runs the two-phase delivery auction.
//
// Phase 1 broadcasts the order to the student pool and waits a randomized
// 3-4 minute window. Phase 2 escalates to all agents; once bids arrive a
// rolling close window starts, resetting on every new bid, and the best bid
// is awarded when it expires. Orders with no bids at all end in
// needs_fee_increase.
package dispatch

import (
	"context"
	"log/slog"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/localbite-davis/localbite/internal/application/bids"
	"github.com/localbite-davis/localbite/internal/domain"
	"github.com/localbite-davis/localbite/internal/ports"
)

// DefaultRollingBidClose is how long the all-agents phase stays open after
// the last bid before the best one is awarded.
const DefaultRollingBidClose = 60 * time.Second

// Params are the auction timings. Zero values take the defaults; the
// user-facing waits are floored at one second.
type Params struct {
	Phase1WaitMin time.Duration
	Phase1WaitMax time.Duration
	Phase2Wait    time.Duration
	PollInterval  time.Duration
	RollingClose  time.Duration
}

// DefaultParams returns the production auction timings.
func DefaultParams() Params {
	return Params{
		Phase1WaitMin: 180 * time.Second,
		Phase1WaitMax: 240 * time.Second,
		Phase2Wait:    180 * time.Second,
		PollInterval:  5 * time.Second,
		RollingClose:  DefaultRollingBidClose,
	}
}

func (p Params) normalize() Params {
	def := DefaultParams()
	if p.Phase1WaitMin <= 0 {
		p.Phase1WaitMin = def.Phase1WaitMin
	}
	if p.Phase1WaitMin < time.Second {
		p.Phase1WaitMin = time.Second
	}
	if p.Phase1WaitMax < p.Phase1WaitMin {
		p.Phase1WaitMax = p.Phase1WaitMin
	}
	if p.Phase2Wait <= 0 {
		p.Phase2Wait = def.Phase2Wait
	}
	if p.Phase2Wait < time.Second {
		p.Phase2Wait = time.Second
	}
	if p.PollInterval <= 0 {
		p.PollInterval = def.PollInterval
	}
	if p.RollingClose <= 0 {
		p.RollingClose = def.RollingClose
	}
	return p
}

// Engine owns the background dispatch tasks. Tasks run on the engine's own
// context, not the caller's, so an HTTP request finishing never cancels a
// live auction; Stop cancels everything and waits.
type Engine struct {
	orders   ports.OrderStore
	state    ports.DispatchStore
	bids     *bids.Service
	registry *registry
	log      *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds an engine over the given stores and bid service.
func New(orders ports.OrderStore, state ports.DispatchStore, bidSvc *bids.Service, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		orders:   orders,
		state:    state,
		bids:     bidSvc,
		registry: newRegistry(),
		log:      log,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Running reports whether a dispatch task is live for the order.
func (e *Engine) Running(orderID int64) bool {
	return e.registry.isRunning(orderID)
}

// Start launches a background dispatch task for the order. Returns false
// when a task for this order is already running.
func (e *Engine) Start(order domain.Order, deliveryAddress string, params Params) bool {
	if !e.registry.acquire(order.OrderID) {
		return false
	}
	params = params.normalize()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer e.registry.release(order.OrderID)
		defer func() {
			if r := recover(); r != nil {
				e.log.Error("dispatch task panicked", "order_id", order.OrderID, "panic", r)
				e.persistFailure(order, deliveryAddress)
			}
		}()

		if err := e.run(e.ctx, order, deliveryAddress, params); err != nil {
			e.log.Error("dispatch task failed", "order_id", order.OrderID, "err", err)
			e.persistFailure(order, deliveryAddress)
		}
	}()
	return true
}

// persistFailure writes the terminal (failed, error) state. The engine
// context may already be gone, so it runs on a fresh one; the status
// endpoint must still see the failure.
func (e *Engine) persistFailure(order domain.Order, deliveryAddress string) {
	failed := domain.DispatchState{
		OrderID:         order.OrderID,
		Status:          domain.DispatchFailed,
		Phase:           domain.DispatchPhaseError,
		RestaurantID:    order.RestaurantID,
		DeliveryAddress: deliveryAddress,
		Note:            "dispatch task failed",
	}
	if err := e.state.SetState(context.Background(), failed); err != nil {
		e.log.Error("failed to persist dispatch error state", "order_id", order.OrderID, "err", err)
	}
}

// Stop cancels every running task and waits for them to exit.
func (e *Engine) Stop() {
	e.cancel()
	e.wg.Wait()
}

// run is one full auction for one order.
func (e *Engine) run(ctx context.Context, order domain.Order, deliveryAddress string, p Params) error {
	orderID := order.OrderID
	if err := e.state.ClearAssigned(ctx, orderID); err != nil {
		return err
	}
	phase2Secs := int(p.Phase2Wait.Seconds())
	if err := e.state.SetState(ctx, domain.DispatchState{
		OrderID:           orderID,
		Status:            domain.DispatchStarting,
		Phase:             domain.DispatchPhaseStudentPool,
		RestaurantID:      order.RestaurantID,
		DeliveryAddress:   deliveryAddress,
		Phase2WaitSeconds: phase2Secs,
	}); err != nil {
		return err
	}

	// Phase 1: students only.
	e.log.Info("dispatching order, phase 1 (students only)", "order_id", orderID)
	if err := e.state.Publish(ctx, domain.DispatchMessage{
		MessageID:          uuid.NewString(),
		OrderID:            orderID,
		RestaurantID:       order.RestaurantID,
		DeliveryAddress:    deliveryAddress,
		CandidateAgentType: domain.CandidateStudent,
	}); err != nil {
		return err
	}
	if err := e.state.SetState(ctx, domain.DispatchState{
		OrderID: orderID,
		Status:  domain.DispatchBroadcasted,
		Phase:   domain.DispatchPhaseStudentPool,
		Note:    "student pool broadcast sent",
	}); err != nil {
		return err
	}

	spread := p.Phase1WaitMax - p.Phase1WaitMin
	wait := p.Phase1WaitMin + time.Duration(rand.Int63n(int64(spread)+1))
	waitSecs := int(wait.Seconds())
	if err := e.state.SetState(ctx, domain.DispatchState{
		OrderID:           orderID,
		Status:            domain.DispatchWaitingForBids,
		Phase:             domain.DispatchPhaseStudentPool,
		Phase1WaitSeconds: waitSecs,
		Phase2WaitSeconds: phase2Secs,
		Note:              "student pool timer active",
	}); err != nil {
		return err
	}

	var elapsed time.Duration
	for elapsed < wait {
		if err := sleepCtx(ctx, p.PollInterval); err != nil {
			return err
		}
		elapsed += p.PollInterval

		assigned, err := e.state.IsAssigned(ctx, orderID)
		if err != nil {
			return err
		}
		if assigned {
			e.log.Info("order assigned during phase 1", "order_id", orderID, "elapsed", elapsed)
			return e.state.SetState(ctx, domain.DispatchState{
				OrderID: orderID,
				Status:  domain.DispatchAssigned,
				Phase:   domain.DispatchPhaseCompleted,
				Note:    "assigned during student_pool after " + secsNote(elapsed),
			})
		}
	}

	// Student pool closed: award the best student bid if any exist.
	marker, err := e.orders.PlacedBidMarker(ctx, orderID)
	if err != nil {
		return err
	}
	if !marker.IsZero() {
		winner, err := e.bids.AutoAward(ctx, orderID)
		switch {
		case err == nil:
			e.log.Info("order auto-awarded from student pool",
				"order_id", orderID, "agent_id", winner.AgentID, "bid_id", winner.BidID)
			return nil
		case domain.KindOf(err) == domain.KindConflict:
			// A concurrent accept won the race between the marker read and
			// the award. The order is assigned; nothing left to dispatch.
			e.log.Info("order assigned concurrently at student pool close", "order_id", orderID)
			return nil
		case domain.KindOf(err) == domain.KindInternal || domain.KindOf(err) == domain.KindUnknown:
			e.log.Warn("student pool auto-award failed, escalating", "order_id", orderID, "err", err)
		}
	}

	// Phase 2: everyone.
	e.log.Info("order unclaimed after phase 1, escalating", "order_id", orderID, "elapsed", elapsed)
	if err := e.state.SetState(ctx, domain.DispatchState{
		OrderID: orderID,
		Status:  domain.DispatchEscalating,
		Phase:   domain.DispatchPhaseAllAgents,
		Note:    "moving from student pool to all agents",
	}); err != nil {
		return err
	}
	if err := e.state.Publish(ctx, domain.DispatchMessage{
		MessageID:          uuid.NewString(),
		OrderID:            orderID,
		RestaurantID:       order.RestaurantID,
		DeliveryAddress:    deliveryAddress,
		CandidateAgentType: domain.CandidateAll,
	}); err != nil {
		return err
	}
	if err := e.state.SetState(ctx, domain.DispatchState{
		OrderID:           orderID,
		Status:            domain.DispatchWaitingForBids,
		Phase:             domain.DispatchPhaseAllAgents,
		Phase2WaitSeconds: phase2Secs,
		Note:              "all agents broadcast sent",
	}); err != nil {
		return err
	}

	return e.allAgentsWait(ctx, orderID, p)
}

// allAgentsWait is the phase-2 loop: a rolling close window that resets on
// every new bid, with a needs_fee_increase fallback when no bid ever lands.
func (e *Engine) allAgentsWait(ctx context.Context, orderID int64, p Params) error {
	var (
		elapsed  time.Duration
		deadline time.Time
	)
	lastMarker, err := e.orders.PlacedBidMarker(ctx, orderID)
	if err != nil {
		return err
	}

	for {
		if err := sleepCtx(ctx, p.PollInterval); err != nil {
			return err
		}
		elapsed += p.PollInterval

		assigned, err := e.state.IsAssigned(ctx, orderID)
		if err != nil {
			return err
		}
		if assigned {
			e.log.Info("order assigned during phase 2", "order_id", orderID, "elapsed", elapsed)
			return e.state.SetState(ctx, domain.DispatchState{
				OrderID: orderID,
				Status:  domain.DispatchAssigned,
				Phase:   domain.DispatchPhaseCompleted,
				Note:    "assigned during all_agents after " + secsNote(elapsed),
			})
		}

		marker, err := e.orders.PlacedBidMarker(ctx, orderID)
		if err != nil {
			return err
		}
		now := time.Now()

		if !marker.IsZero() {
			if marker != lastMarker || deadline.IsZero() {
				lastMarker = marker
				deadline = now.Add(p.RollingClose)
				if err := e.state.SetState(ctx, domain.DispatchState{
					OrderID:           orderID,
					Status:            domain.DispatchWaitingForBids,
					Phase:             domain.DispatchPhaseAllAgents,
					Phase2WaitSeconds: int(p.RollingClose.Seconds()),
					Note:              "bids received; rolling 60s close window reset",
				}); err != nil {
					return err
				}
			}

			if !deadline.IsZero() && !now.Before(deadline) {
				winner, err := e.bids.AutoAward(ctx, orderID)
				if err == nil {
					e.log.Info("order auto-awarded after rolling close",
						"order_id", orderID, "agent_id", winner.AgentID, "bid_id", winner.BidID)
					return nil
				}
				if domain.KindOf(err) == domain.KindConflict {
					// Same race as at the student pool close: a concurrent
					// accept already assigned the order.
					e.log.Info("order assigned concurrently at rolling close", "order_id", orderID)
					return nil
				}
				// Bids can vanish between the marker read and the award
				// (a race with accept); fall back to the phase-2 timeout.
				deadline = time.Time{}
				if lastMarker, err = e.orders.PlacedBidMarker(ctx, orderID); err != nil {
					return err
				}
				if err := e.state.SetState(ctx, domain.DispatchState{
					OrderID:           orderID,
					Status:            domain.DispatchWaitingForBids,
					Phase:             domain.DispatchPhaseAllAgents,
					Phase2WaitSeconds: int(p.Phase2Wait.Seconds()),
					Note:              "rolling close ended without award; continuing all-agents wait",
				}); err != nil {
					return err
				}
				continue
			}
		}

		if elapsed >= p.Phase2Wait && marker.IsZero() {
			e.log.Info("phase 2 window closed without bids", "order_id", orderID)
			return e.state.SetState(ctx, domain.DispatchState{
				OrderID: orderID,
				Status:  domain.DispatchNeedsFeeIncrease,
				Phase:   domain.DispatchPhaseAllAgents,
				Note:    "no assignment after all_agents phase; prompt user to increase fee",
			})
		}
	}
}

// sleepCtx waits d or returns the context error early.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func secsNote(d time.Duration) string {
	return strconv.Itoa(int(d.Seconds())) + "s"
}
