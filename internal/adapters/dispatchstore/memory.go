package dispatchstore

// memory.go — implementación en proceso del estado de dispatch, con la misma
// semántica de merge que la variante Redis. Se usa cuando no hay REDIS_URL
// configurada y en los tests.

import (
	"context"
	"sync"
	"time"

	"github.com/localbite-davis/localbite/internal/domain"
)

// Memory implementa ports.DispatchStore en memoria.
type Memory struct {
	mu       sync.Mutex
	states   map[int64]domain.DispatchState
	assigned map[int64]bool
	queues   map[string][]domain.DispatchMessage
}

// NewMemory crea un store vacío.
func NewMemory() *Memory {
	return &Memory{
		states:   make(map[int64]domain.DispatchState),
		assigned: make(map[int64]bool),
		queues:   make(map[string][]domain.DispatchMessage),
	}
}

// Close no libera nada; existe para cumplir el puerto.
func (m *Memory) Close() error {
	return nil
}

// SetState hace merge del estado sobre la entrada existente: los campos
// opcionales a cero conservan el valor previo.
func (m *Memory) SetState(_ context.Context, state domain.DispatchState) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev := m.states[state.OrderID]
	next := domain.DispatchState{
		OrderID:   state.OrderID,
		Status:    state.Status,
		Phase:     state.Phase,
		UpdatedAt: time.Now().UTC(),
	}
	next.RestaurantID = prev.RestaurantID
	if state.RestaurantID != 0 {
		next.RestaurantID = state.RestaurantID
	}
	next.DeliveryAddress = prev.DeliveryAddress
	if state.DeliveryAddress != "" {
		next.DeliveryAddress = state.DeliveryAddress
	}
	next.Phase1WaitSeconds = prev.Phase1WaitSeconds
	if state.Phase1WaitSeconds != 0 {
		next.Phase1WaitSeconds = state.Phase1WaitSeconds
	}
	next.Phase2WaitSeconds = prev.Phase2WaitSeconds
	if state.Phase2WaitSeconds != 0 {
		next.Phase2WaitSeconds = state.Phase2WaitSeconds
	}
	next.Note = prev.Note
	if state.Note != "" {
		next.Note = state.Note
	}

	m.states[state.OrderID] = next
	return nil
}

// GetState devuelve el estado del pedido si existe.
func (m *Memory) GetState(_ context.Context, orderID int64) (domain.DispatchState, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.states[orderID]
	return state, ok, nil
}

// MarkAssigned fija el flag y deja el estado en (assigned, completed).
func (m *Memory) MarkAssigned(ctx context.Context, orderID int64, agentID string) error {
	m.mu.Lock()
	m.assigned[orderID] = true
	m.mu.Unlock()

	note := "assigned"
	if agentID != "" {
		note = "accepted_by=" + agentID
	}
	return m.SetState(ctx, domain.DispatchState{
		OrderID: orderID,
		Status:  domain.DispatchAssigned,
		Phase:   domain.DispatchPhaseCompleted,
		Note:    note,
	})
}

// ClearAssigned borra el flag de asignación.
func (m *Memory) ClearAssigned(_ context.Context, orderID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.assigned, orderID)
	return nil
}

// IsAssigned lee el flag de asignación.
func (m *Memory) IsAssigned(_ context.Context, orderID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.assigned[orderID], nil
}

// Publish encola el mensaje en la cola de su pool.
func (m *Memory) Publish(_ context.Context, msg domain.DispatchMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queues[msg.CandidateAgentType] = append(m.queues[msg.CandidateAgentType], msg)
	return nil
}

// Messages devuelve una copia de los mensajes publicados en la cola del pool.
func (m *Memory) Messages(candidate string) []domain.DispatchMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	msgs := m.queues[candidate]
	out := make([]domain.DispatchMessage, len(msgs))
	copy(out, msgs)
	return out
}
