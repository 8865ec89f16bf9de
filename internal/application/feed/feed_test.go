package feed_test

import (
	"context"
	"testing"
	"time"

	"github.com/localbite-davis/localbite/internal/adapters/dispatchstore"
	"github.com/localbite-davis/localbite/internal/adapters/storage"
	"github.com/localbite-davis/localbite/internal/application/bids"
	"github.com/localbite-davis/localbite/internal/application/feed"
	"github.com/localbite-davis/localbite/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store    *storage.SQLiteStore
	dispatch *dispatchstore.Memory
	bids     *bids.Service
	feed     *feed.Service
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
		feed:     feed.NewService(store, mem, nil),
	}
}

func (f *fixture) agent(t *testing.T, id string, agentType domain.AgentType, active bool) domain.DeliveryAgent {
	t.Helper()
	agent := domain.DeliveryAgent{
		AgentID:     id,
		FullName:    "Agent " + id,
		PhoneNumber: "555-0100",
		AgentType:   agentType,
		VehicleType: domain.VehicleScooter,
		IsActive:    active,
		Rating:      4.5,
	}
	if agentType == domain.AgentTypeStudent {
		agent.UniversityName = "UC Davis"
		agent.StudentID = "s-" + id
	}
	require.NoError(t, f.store.CreateAgent(context.Background(), &agent))
	return agent
}

func (f *fixture) orderInPhase(t *testing.T, baseFare float64, phase domain.DispatchPhase) domain.Order {
	t.Helper()
	ctx := context.Background()
	order := domain.Order{UserID: 1, RestaurantID: 9, BaseFare: baseFare,
		OrderItems: []domain.OrderItem{{MenuItemID: 1, Name: "Burrito", Quantity: 1, Price: 9.0}}}
	require.NoError(t, f.store.CreateOrder(ctx, &order))
	require.NoError(t, f.dispatch.SetState(ctx, domain.DispatchState{
		OrderID:           order.OrderID,
		Status:            domain.DispatchWaitingForBids,
		Phase:             phase,
		RestaurantID:      order.RestaurantID,
		DeliveryAddress:   "123 B St",
		Phase1WaitSeconds: 200,
		Phase2WaitSeconds: 180,
	}))
	return order
}

func TestAvailableForAgent_PhaseVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	student := f.agent(t, "s1", domain.AgentTypeStudent, true)
	courier := f.agent(t, "n1", domain.AgentTypeThirdParty, true)

	studentOnly := f.orderInPhase(t, 10.0, domain.DispatchPhaseStudentPool)
	everyone := f.orderInPhase(t, 12.0, domain.DispatchPhaseAllAgents)

	// El estudiante ve ambas subastas, el tercero solo la escalada.
	resp, err := f.feed.AvailableForAgent(ctx, student.AgentID, 0)
	require.NoError(t, err)
	require.Len(t, resp.Items, 2)

	resp, err = f.feed.AvailableForAgent(ctx, courier.AgentID, 0)
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, everyone.OrderID, resp.Items[0].OrderID)
	assert.False(t, resp.Items[0].StudentOnly)
	_ = studentOnly
}

func TestAvailableForAgent_ItemFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	student := f.agent(t, "s1", domain.AgentTypeStudent, true)
	order := f.orderInPhase(t, 10.0, domain.DispatchPhaseStudentPool)

	_, err := f.bids.Place(ctx, bids.PlaceRequest{OrderID: order.OrderID, AgentID: student.AgentID, BidAmount: 12.00})
	require.NoError(t, err)
	_, err = f.bids.Place(ctx, bids.PlaceRequest{OrderID: order.OrderID, AgentID: student.AgentID, BidAmount: 10.50})
	require.NoError(t, err)

	resp, err := f.feed.AvailableForAgent(ctx, student.AgentID, 0)
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)

	item := resp.Items[0]
	assert.Equal(t, "123 B St", item.DeliveryAddress)
	assert.Equal(t, 1, item.OrderItemsCount)
	assert.Equal(t, 10.00, item.MinAllowedFare)
	assert.Equal(t, 15.00, item.MaxAllowedFare)
	assert.True(t, item.StudentOnly)
	assert.Equal(t, 2, item.TotalPlacedBids)
	require.NotNil(t, item.LeadingBidAmount)
	assert.Equal(t, 10.50, *item.LeadingBidAmount)
	assert.Greater(t, item.BiddingTimeLeftSeconds, 0)
	assert.LessOrEqual(t, item.BiddingTimeLeftSeconds, 200)
}

func TestAvailableForAgent_SortsStudentOnlyFirstThenNewest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	student := f.agent(t, "s1", domain.AgentTypeStudent, true)

	older := f.orderInPhase(t, 10.0, domain.DispatchPhaseAllAgents)
	time.Sleep(5 * time.Millisecond)
	newer := f.orderInPhase(t, 10.0, domain.DispatchPhaseAllAgents)
	time.Sleep(5 * time.Millisecond)
	studentOnly := f.orderInPhase(t, 10.0, domain.DispatchPhaseStudentPool)

	resp, err := f.feed.AvailableForAgent(ctx, student.AgentID, 0)
	require.NoError(t, err)
	require.Len(t, resp.Items, 3)
	assert.Equal(t, studentOnly.OrderID, resp.Items[0].OrderID)
	assert.Equal(t, newer.OrderID, resp.Items[1].OrderID)
	assert.Equal(t, older.OrderID, resp.Items[2].OrderID)
}

func TestAvailableForAgent_SkipsOrdersWithoutDispatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	student := f.agent(t, "s1", domain.AgentTypeStudent, true)

	// Pedido sin dispatch: no aparece en el feed.
	order := domain.Order{UserID: 1, RestaurantID: 9, BaseFare: 10.0}
	require.NoError(t, f.store.CreateOrder(ctx, &order))

	resp, err := f.feed.AvailableForAgent(ctx, student.AgentID, 0)
	require.NoError(t, err)
	assert.Empty(t, resp.Items)
}

func TestAvailableForAgent_ErrorsForUnknownOrInactive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.feed.AvailableForAgent(ctx, "ghost", 0)
	require.Error(t, err)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))

	inactive := f.agent(t, "off", domain.AgentTypeThirdParty, false)
	_, err = f.feed.AvailableForAgent(ctx, inactive.AgentID, 0)
	require.Error(t, err)
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
}
