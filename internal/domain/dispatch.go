package domain

import "time"

// DispatchStatus is the ephemeral per-order auction progress. It lives in
// the dispatch state store, not the order row; the order row stays
// authoritative for assignment.
type DispatchStatus string

const (
	DispatchStarting         DispatchStatus = "starting"
	DispatchBroadcasted      DispatchStatus = "broadcasted"
	DispatchWaitingForBids   DispatchStatus = "waiting_for_bids"
	DispatchEscalating       DispatchStatus = "escalating"
	DispatchAssigned         DispatchStatus = "assigned"
	DispatchNeedsFeeIncrease DispatchStatus = "needs_fee_increase"
	DispatchFailed           DispatchStatus = "failed"
	DispatchNotStarted       DispatchStatus = "not_started"
)

// DispatchPhase tracks which auction phase the engine is in.
type DispatchPhase string

const (
	DispatchPhaseStudentPool DispatchPhase = "student_pool"
	DispatchPhaseAllAgents   DispatchPhase = "all_agents"
	DispatchPhaseCompleted   DispatchPhase = "completed"
	DispatchPhaseError       DispatchPhase = "error"
	DispatchPhaseNone        DispatchPhase = "none"
)

// DispatchState is the ephemeral auction snapshot for one order, keyed by
// order id in the dispatch state store. Zero-valued optional fields are
// merged over the existing entry (hash-update semantics), so partial writes
// never erase the restaurant or timer fields.
type DispatchState struct {
	OrderID           int64          `json:"order_id"`
	Status            DispatchStatus `json:"status"`
	Phase             DispatchPhase  `json:"phase"`
	RestaurantID      int64          `json:"restaurant_id,omitempty"`
	DeliveryAddress   string         `json:"delivery_address,omitempty"`
	Phase1WaitSeconds int            `json:"phase1_wait_seconds,omitempty"`
	Phase2WaitSeconds int            `json:"phase2_wait_seconds,omitempty"`
	Note              string         `json:"note,omitempty"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// VisibleTo applies the phase-gating rule for the agent feed: all_agents
// broadcasts are visible to every active agent, student_pool only to
// students, and terminal states to nobody.
func (s DispatchState) VisibleTo(t AgentType) bool {
	switch s.Status {
	case DispatchStarting, DispatchBroadcasted, DispatchWaitingForBids, DispatchEscalating:
	default:
		return false
	}
	switch s.Phase {
	case DispatchPhaseAllAgents:
		return true
	case DispatchPhaseStudentPool:
		return t == AgentTypeStudent
	default:
		return false
	}
}

// SecondsRemaining is the bid time left in the current wait window:
// max(0, phase_wait_seconds − elapsed since last update). Zero outside
// waiting_for_bids.
func (s DispatchState) SecondsRemaining(now time.Time) int {
	if s.Status != DispatchWaitingForBids {
		return 0
	}
	var total int
	switch s.Phase {
	case DispatchPhaseStudentPool:
		total = s.Phase1WaitSeconds
	case DispatchPhaseAllAgents:
		total = s.Phase2WaitSeconds
	default:
		return 0
	}
	if total <= 0 || s.UpdatedAt.IsZero() {
		return 0
	}
	elapsed := int(now.Sub(s.UpdatedAt).Seconds())
	return max(total-max(elapsed, 0), 0)
}

// Candidate agent pools for dispatch broadcasts.
const (
	CandidateStudent = "student"
	CandidateAll     = "all"
)

// DispatchMessage is the broadcast pushed onto the per-pool queue when an
// auction opens or escalates. MessageID deduplicates redeliveries on the
// consumer side.
type DispatchMessage struct {
	MessageID          string `json:"message_id"`
	OrderID            int64  `json:"order_id"`
	RestaurantID       int64  `json:"restaurant_id"`
	DeliveryAddress    string `json:"delivery_address"`
	CandidateAgentType string `json:"candidate_agent_type"`
}
