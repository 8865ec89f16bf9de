package dispatchstore

import (
	"context"
	"testing"

	"github.com/localbite-davis/localbite/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SetStateMergesOverPrevious(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.SetState(ctx, domain.DispatchState{
		OrderID:         1,
		Status:          domain.DispatchStarting,
		Phase:           domain.DispatchPhaseStudentPool,
		RestaurantID:    42,
		DeliveryAddress: "123 B St",
	}))

	// Una actualización parcial no borra restaurante ni dirección.
	require.NoError(t, m.SetState(ctx, domain.DispatchState{
		OrderID:           1,
		Status:            domain.DispatchWaitingForBids,
		Phase:             domain.DispatchPhaseStudentPool,
		Phase1WaitSeconds: 200,
		Note:              "student pool timer active",
	}))

	state, found, err := m.GetState(ctx, 1)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, domain.DispatchWaitingForBids, state.Status)
	assert.Equal(t, int64(42), state.RestaurantID)
	assert.Equal(t, "123 B St", state.DeliveryAddress)
	assert.Equal(t, 200, state.Phase1WaitSeconds)
	assert.Equal(t, "student pool timer active", state.Note)
	assert.False(t, state.UpdatedAt.IsZero())
}

func TestMemory_GetStateMissing(t *testing.T) {
	m := NewMemory()
	_, found, err := m.GetState(context.Background(), 99)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemory_AssignedFlagLifecycle(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	assigned, err := m.IsAssigned(ctx, 1)
	require.NoError(t, err)
	assert.False(t, assigned)

	require.NoError(t, m.MarkAssigned(ctx, 1, "agent-7"))

	assigned, err = m.IsAssigned(ctx, 1)
	require.NoError(t, err)
	assert.True(t, assigned)

	state, found, err := m.GetState(ctx, 1)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, domain.DispatchAssigned, state.Status)
	assert.Equal(t, domain.DispatchPhaseCompleted, state.Phase)
	assert.Equal(t, "accepted_by=agent-7", state.Note)

	require.NoError(t, m.ClearAssigned(ctx, 1))
	assigned, err = m.IsAssigned(ctx, 1)
	require.NoError(t, err)
	assert.False(t, assigned)
}

func TestMemory_PublishRoutesByPool(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Publish(ctx, domain.DispatchMessage{
		MessageID: "m1", OrderID: 1, CandidateAgentType: domain.CandidateStudent,
	}))
	require.NoError(t, m.Publish(ctx, domain.DispatchMessage{
		MessageID: "m2", OrderID: 1, CandidateAgentType: domain.CandidateAll,
	}))

	students := m.Messages(domain.CandidateStudent)
	require.Len(t, students, 1)
	assert.Equal(t, "m1", students[0].MessageID)

	all := m.Messages(domain.CandidateAll)
	require.Len(t, all, 1)
	assert.Equal(t, "m2", all[0].MessageID)
}
