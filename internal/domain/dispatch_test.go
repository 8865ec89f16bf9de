package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDispatchState_VisibleTo(t *testing.T) {
	studentPool := DispatchState{Status: DispatchWaitingForBids, Phase: DispatchPhaseStudentPool}
	assert.True(t, studentPool.VisibleTo(AgentTypeStudent))
	assert.False(t, studentPool.VisibleTo(AgentTypeThirdParty))

	allAgents := DispatchState{Status: DispatchEscalating, Phase: DispatchPhaseAllAgents}
	assert.True(t, allAgents.VisibleTo(AgentTypeStudent))
	assert.True(t, allAgents.VisibleTo(AgentTypeThirdParty))

	// Estados terminales no son visibles para nadie.
	done := DispatchState{Status: DispatchAssigned, Phase: DispatchPhaseCompleted}
	assert.False(t, done.VisibleTo(AgentTypeStudent))
	failed := DispatchState{Status: DispatchFailed, Phase: DispatchPhaseError}
	assert.False(t, failed.VisibleTo(AgentTypeThirdParty))
}

func TestDispatchState_SecondsRemaining(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	waiting := DispatchState{
		Status:            DispatchWaitingForBids,
		Phase:             DispatchPhaseStudentPool,
		Phase1WaitSeconds: 200,
		UpdatedAt:         now.Add(-30 * time.Second),
	}
	assert.Equal(t, 170, waiting.SecondsRemaining(now))

	// La fase 2 usa su propio contador.
	phase2 := DispatchState{
		Status:            DispatchWaitingForBids,
		Phase:             DispatchPhaseAllAgents,
		Phase2WaitSeconds: 60,
		UpdatedAt:         now.Add(-10 * time.Second),
	}
	assert.Equal(t, 50, phase2.SecondsRemaining(now))

	// Nunca negativo, y cero fuera de waiting_for_bids.
	expired := waiting
	expired.UpdatedAt = now.Add(-500 * time.Second)
	assert.Equal(t, 0, expired.SecondsRemaining(now))

	broadcasted := DispatchState{Status: DispatchBroadcasted, Phase: DispatchPhaseStudentPool, Phase1WaitSeconds: 200, UpdatedAt: now}
	assert.Equal(t, 0, broadcasted.SecondsRemaining(now))
}
