package agents_test

import (
	"context"
	"testing"

	"github.com/localbite-davis/localbite/internal/adapters/dispatchstore"
	"github.com/localbite-davis/localbite/internal/adapters/storage"
	"github.com/localbite-davis/localbite/internal/application/agents"
	"github.com/localbite-davis/localbite/internal/application/bids"
	"github.com/localbite-davis/localbite/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store    *storage.SQLiteStore
	dispatch *dispatchstore.Memory
	bids     *bids.Service
	svc      *agents.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := storage.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	mem := dispatchstore.NewMemory()
	return &fixture{
		store:    store,
		dispatch: mem,
		bids:     bids.NewService(store, mem, nil),
		svc:      agents.NewService(store, mem, nil),
	}
}

func (f *fixture) assignedOrder(t *testing.T, agentID string, amount float64) domain.Order {
	t.Helper()
	ctx := context.Background()
	order := domain.Order{UserID: 1, RestaurantID: 9, BaseFare: 10.0}
	require.NoError(t, f.store.CreateOrder(ctx, &order))
	bid, err := f.bids.Place(ctx, bids.PlaceRequest{OrderID: order.OrderID, AgentID: agentID, BidAmount: amount})
	require.NoError(t, err)
	_, err = f.bids.Award(ctx, bid.BidID)
	require.NoError(t, err)
	return order
}

func TestRegister_NormalizesAndDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// "normal" es un alias heredado de third_party.
	agent, err := f.svc.Register(ctx, domain.DeliveryAgent{
		AgentID:     "a1",
		FullName:    "Dana Ruiz",
		PhoneNumber: "555-0100",
		AgentType:   "normal",
		VehicleType: domain.VehicleBike,
		IsActive:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.AgentTypeThirdParty, agent.AgentType)
	assert.Equal(t, 5.0, agent.Rating)

	got, err := f.svc.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, domain.AgentTypeThirdParty, got.AgentType)
}

func TestRegister_StudentRequiresUniversity(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Register(context.Background(), domain.DeliveryAgent{
		AgentID:     "s1",
		FullName:    "Sam Lee",
		PhoneNumber: "555-0100",
		AgentType:   domain.AgentTypeStudent,
		VehicleType: domain.VehicleBike,
		IsActive:    true,
	})
	require.Error(t, err)
	assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err))
}

func TestFulfill_PaysOnceAndIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	agent, err := f.svc.Register(ctx, domain.DeliveryAgent{
		AgentID: "a1", FullName: "Dana Ruiz", PhoneNumber: "555-0100",
		AgentType: domain.AgentTypeThirdParty, VehicleType: domain.VehicleBike, IsActive: true,
	})
	require.NoError(t, err)
	order := f.assignedOrder(t, agent.AgentID, 12.00)

	ledger, err := f.svc.Fulfill(ctx, agent.AgentID, order.OrderID, "proofs/p1.jpg", "p1.jpg")
	require.NoError(t, err)
	assert.Equal(t, 12.00, ledger.PayoutAmount)
	assert.Equal(t, 1, ledger.TotalDeliveries)
	assert.Equal(t, 12.00, ledger.TotalEarnings)

	// Segunda entrega del mismo pedido: mismo ledger, sin doble pago.
	again, err := f.svc.Fulfill(ctx, agent.AgentID, order.OrderID, "proofs/other.jpg", "other.jpg")
	require.NoError(t, err)
	assert.Equal(t, ledger.PayoutAmount, again.PayoutAmount)
	assert.Equal(t, ledger.TotalDeliveries, again.TotalDeliveries)
	assert.Equal(t, ledger.TotalEarnings, again.TotalEarnings)
	assert.Equal(t, "proofs/p1.jpg", again.ProofPhotoRef)
}

func TestFulfill_RejectsWrongAgent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	owner, err := f.svc.Register(ctx, domain.DeliveryAgent{
		AgentID: "a1", FullName: "Dana Ruiz", PhoneNumber: "555-0100",
		AgentType: domain.AgentTypeThirdParty, VehicleType: domain.VehicleBike, IsActive: true,
	})
	require.NoError(t, err)
	other, err := f.svc.Register(ctx, domain.DeliveryAgent{
		AgentID: "a2", FullName: "Kim Soto", PhoneNumber: "555-0101",
		AgentType: domain.AgentTypeThirdParty, VehicleType: domain.VehicleCar, IsActive: true,
	})
	require.NoError(t, err)
	order := f.assignedOrder(t, owner.AgentID, 11.00)

	_, err = f.svc.Fulfill(ctx, other.AgentID, order.OrderID, "proofs/x.jpg", "x.jpg")
	require.Error(t, err)
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
}

func TestActiveOrders_TotalsAndAddress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	agent, err := f.svc.Register(ctx, domain.DeliveryAgent{
		AgentID: "a1", FullName: "Dana Ruiz", PhoneNumber: "555-0100",
		AgentType: domain.AgentTypeThirdParty, VehicleType: domain.VehicleBike, IsActive: true,
	})
	require.NoError(t, err)

	first := f.assignedOrder(t, agent.AgentID, 11.00)
	second := f.assignedOrder(t, agent.AgentID, 12.50)
	require.NoError(t, f.dispatch.SetState(ctx, domain.DispatchState{
		OrderID:         first.OrderID,
		Status:          domain.DispatchAssigned,
		Phase:           domain.DispatchPhaseCompleted,
		DeliveryAddress: "123 B St",
	}))

	resp, err := f.svc.ActiveOrders(ctx, agent.AgentID)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.TotalActive)
	assert.Equal(t, 23.50, resp.TotalFeesOwed)

	byID := map[int64]agents.ActiveOrder{}
	for _, item := range resp.ActiveOrders {
		byID[item.OrderID] = item
	}
	assert.Equal(t, "123 B St", byID[first.OrderID].DeliveryAddress)
	assert.Equal(t, 12.50, byID[second.OrderID].DeliveryFee)

	// Entregado deja de contar como activo.
	_, err = f.svc.Fulfill(ctx, agent.AgentID, second.OrderID, "proofs/p2.jpg", "p2.jpg")
	require.NoError(t, err)
	resp, err = f.svc.ActiveOrders(ctx, agent.AgentID)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.TotalActive)
	assert.Equal(t, 11.00, resp.TotalFeesOwed)
}
