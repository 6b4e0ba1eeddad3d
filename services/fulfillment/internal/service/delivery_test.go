package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/bakery_shop/pkg/events"
	"github.com/Skotchmaster/bakery_shop/services/fulfillment/internal/domain"
	"github.com/Skotchmaster/bakery_shop/services/fulfillment/internal/models"
	"github.com/Skotchmaster/bakery_shop/services/fulfillment/internal/testutil"
	"github.com/Skotchmaster/bakery_shop/services/fulfillment/internal/transport"
)

func (e *env) orderStatus(t *testing.T, id uint) string {
	t.Helper()
	o, err := e.repo.GetOrder(context.Background(), id)
	require.NoError(t, err)
	return o.Status
}

func (e *env) scheduleOf(t *testing.T, orderID uint) models.DeliverySchedule {
	t.Helper()
	o, err := e.repo.GetOrderDetail(context.Background(), orderID)
	require.NoError(t, err)
	require.NotEmpty(t, o.Schedules)
	return o.Schedules[0]
}

func (e *env) lastRiderActivity(t *testing.T, deliveryID uint) models.RiderActivity {
	t.Helper()
	var a models.RiderActivity
	require.NoError(t, e.db.Where("delivery_id = ?", deliveryID).Order("id DESC").First(&a).Error)
	return a
}

func (e *env) assigned(t *testing.T) (*models.Delivery, models.Rider) {
	t.Helper()
	orderID := e.paidOrder(t)
	rider := testutil.SeedRider(t, e.db, "rider-"+t.Name(), string(domain.RiderActive))
	d, err := e.deliveries.Assign(context.Background(), e.admin, transport.AssignRiderRequest{
		OrderID: orderID,
		RiderID: rider.ID,
	})
	require.NoError(t, err)
	return d, rider
}

func TestDeliveryLifecycle(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	orderID := e.paidOrder(t)
	schedule := e.scheduleOf(t, orderID)
	rider := testutil.SeedRider(t, e.db, "ramon", string(domain.RiderActive))

	d, err := e.deliveries.Assign(ctx, e.admin, transport.AssignRiderRequest{
		OrderID:            orderID,
		RiderID:            rider.ID,
		Date:               "2026-10-16",
		DeliveryScheduleID: &schedule.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, string(domain.DeliveryPending), d.Status)
	assert.Equal(t, string(domain.OrderOnDelivery), e.orderStatus(t, orderID))
	assert.Equal(t, string(domain.ScheduleAssigned), e.scheduleOf(t, orderID).Status)
	assert.Equal(t, string(domain.ActivityAssigned), e.lastRiderActivity(t, d.ID).Status)

	steps := []struct {
		status    domain.DeliveryStatus
		activity  domain.RiderActivityStatus
		order     domain.OrderStatus
		scheduled domain.ScheduleStatus
	}{
		{domain.DeliveryForPickUp, domain.ActivityOutForDelivery, domain.OrderOnDelivery, domain.ScheduleAssigned},
		{domain.DeliveryOutForDelivery, domain.ActivityOutForDelivery, domain.OrderOnDelivery, domain.ScheduleAssigned},
		{domain.DeliveryComplete, domain.ActivityDelivered, domain.OrderComplete, domain.ScheduleComplete},
	}

	prev := string(domain.DeliveryPending)
	for _, s := range steps {
		before := e.counts(t)

		res, err := e.deliveries.Advance(ctx, e.admin, d.ID, transport.AdvanceDeliveryRequest{
			Status:  string(s.status),
			Remarks: "on the way",
		})
		require.NoError(t, err, "advance to %s", s.status)
		assert.Equal(t, prev, res.PreviousStatus)
		assert.Equal(t, string(s.status), res.CurrentStatus)
		assert.Equal(t, string(s.order), res.OrderStatus)
		assert.Equal(t, string(s.activity), res.RiderActivity)

		after := e.counts(t)
		assert.Equal(t, before.delivery+1, after.delivery)
		assert.Equal(t, before.rider+1, after.rider)
		assert.Equal(t, before.inventory, after.inventory)

		assert.Equal(t, string(s.order), e.orderStatus(t, orderID))
		assert.Equal(t, string(s.scheduled), e.scheduleOf(t, orderID).Status)
		a := e.lastRiderActivity(t, d.ID)
		assert.Equal(t, string(s.activity), a.Status)
		assert.Equal(t, rider.ID, a.RiderID)
		prev = string(s.status)
	}

	detail, err := e.deliveries.GetDelivery(ctx, e.admin, d.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.DeliveryComplete), detail.Status)
	assert.Len(t, detail.Activities, 4)
	assert.Len(t, detail.RiderActivities, 4)

	assert.Equal(t, []string{
		"delivery_assigned",
		"delivery_status_changed",
		"delivery_status_changed",
		"delivery_status_changed",
	}, e.pub.types(events.TopicDelivery))
}

func TestAdvance_PropagationTable(t *testing.T) {
	tests := []struct {
		status   domain.DeliveryStatus
		activity domain.RiderActivityStatus
		order    domain.OrderStatus
	}{
		{domain.DeliveryPending, domain.ActivityAssigned, domain.OrderOnDelivery},
		{domain.DeliveryForPickUp, domain.ActivityOutForDelivery, domain.OrderOnDelivery},
		{domain.DeliveryOutForDelivery, domain.ActivityOutForDelivery, domain.OrderOnDelivery},
		{domain.DeliveryComplete, domain.ActivityDelivered, domain.OrderComplete},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			e := newEnv(t)
			e.deliveries.Policy = domain.PolicyLegacy
			d, _ := e.assigned(t)
			before := e.counts(t)

			_, err := e.deliveries.Advance(context.Background(), e.admin, d.ID, transport.AdvanceDeliveryRequest{Status: string(tt.status)})
			require.NoError(t, err)

			after := e.counts(t)
			assert.Equal(t, before.rider+1, after.rider)
			assert.Equal(t, before.delivery+1, after.delivery)
			assert.Equal(t, string(tt.activity), e.lastRiderActivity(t, d.ID).Status)
			assert.Equal(t, string(tt.order), e.orderStatus(t, d.OrderID))
		})
	}
}

func TestAdvance_StrictRejects(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	d, _ := e.assigned(t)

	tests := []struct {
		name    string
		status  string
		wantErr error
	}{
		{"skip ahead", string(domain.DeliveryComplete), domain.ErrInvalidState},
		{"same state", string(domain.DeliveryPending), domain.ErrInvalidState},
		{"unknown status", "LOST", domain.ErrValidation},
		{"empty status", "", domain.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := e.counts(t)
			_, err := e.deliveries.Advance(ctx, e.admin, d.ID, transport.AdvanceDeliveryRequest{Status: tt.status})
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, before, e.counts(t))
			assert.Equal(t, string(domain.OrderOnDelivery), e.orderStatus(t, d.OrderID))
		})
	}

	_, err := e.deliveries.Advance(ctx, e.admin, d.ID, transport.AdvanceDeliveryRequest{Status: "for-pick-up"})
	require.NoError(t, err)
	_, err = e.deliveries.Advance(ctx, e.admin, d.ID, transport.AdvanceDeliveryRequest{Status: string(domain.DeliveryPending)})
	require.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = e.deliveries.Advance(ctx, e.admin, 9999, transport.AdvanceDeliveryRequest{Status: string(domain.DeliveryForPickUp)})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdvance_RiderNoLongerActive(t *testing.T) {
	e := newEnv(t)
	d, rider := e.assigned(t)
	require.NoError(t, e.db.Model(&models.Rider{}).Where("id = ?", rider.ID).Update("status", "INACTIVE").Error)
	before := e.counts(t)

	_, err := e.deliveries.Advance(context.Background(), e.admin, d.ID, transport.AdvanceDeliveryRequest{Status: string(domain.DeliveryForPickUp)})
	require.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Equal(t, before, e.counts(t))

	got, err := e.repo.GetDelivery(context.Background(), d.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.DeliveryPending), got.Status)
}

func TestAssign_InactiveRider(t *testing.T) {
	e := newEnv(t)

	orderID := e.paidOrder(t)
	rider := testutil.SeedRider(t, e.db, "idle", string(domain.RiderInactive))
	before := e.counts(t)

	_, err := e.deliveries.Assign(context.Background(), e.admin, transport.AssignRiderRequest{OrderID: orderID, RiderID: rider.ID})
	require.ErrorIs(t, err, domain.ErrInvalidState)

	assert.EqualValues(t, 0, testutil.Count(t, e.db, &models.Delivery{}))
	assert.Equal(t, before, e.counts(t))
	assert.Equal(t, string(domain.OrderPaid), e.orderStatus(t, orderID))
}

func TestAssign_Rejections(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	paid := e.paidOrder(t)
	otherPaid := e.paidOrder(t)
	foreignSchedule := e.scheduleOf(t, otherPaid)

	p, _ := testutil.SeedProduct(t, e.db, "Kababayan", "7.00", 10)
	approvedReq := orderRequest(item(p.ID, 1, "7.00"))
	approvedReq.Status = string(domain.OrderApproved)
	approved, err := e.orders.CreateOrder(ctx, e.customer, approvedReq)
	require.NoError(t, err)

	active := testutil.SeedRider(t, e.db, "active", string(domain.RiderActive))
	deleted := testutil.SeedRider(t, e.db, "gone", string(domain.RiderDeleted))

	tests := []struct {
		name    string
		caller  domain.Caller
		req     transport.AssignRiderRequest
		wantErr error
	}{
		{"not admin", e.customer, transport.AssignRiderRequest{OrderID: paid, RiderID: active.ID}, domain.ErrForbidden},
		{"missing ids", e.admin, transport.AssignRiderRequest{}, domain.ErrValidation},
		{"bad date", e.admin, transport.AssignRiderRequest{OrderID: paid, RiderID: active.ID, Date: "tomorrow"}, domain.ErrValidation},
		{"unknown order", e.admin, transport.AssignRiderRequest{OrderID: 9999, RiderID: active.ID}, domain.ErrNotFound},
		{"unknown rider", e.admin, transport.AssignRiderRequest{OrderID: paid, RiderID: 9999}, domain.ErrNotFound},
		{"deleted rider", e.admin, transport.AssignRiderRequest{OrderID: paid, RiderID: deleted.ID}, domain.ErrInvalidState},
		{"order not paid", e.admin, transport.AssignRiderRequest{OrderID: approved.OrderID, RiderID: active.ID}, domain.ErrInvalidState},
		{"foreign schedule", e.admin, transport.AssignRiderRequest{OrderID: paid, RiderID: active.ID, DeliveryScheduleID: &foreignSchedule.ID}, domain.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.deliveries.Assign(ctx, tt.caller, tt.req)
			require.ErrorIs(t, err, tt.wantErr)
			assert.EqualValues(t, 0, testutil.Count(t, e.db, &models.Delivery{}))
		})
	}
	assert.Equal(t, string(domain.OrderPaid), e.orderStatus(t, paid))
	assert.Equal(t, string(domain.SchedulePending), e.scheduleOf(t, otherPaid).Status)
}

func TestAssign_TwiceConflicts(t *testing.T) {
	e := newEnv(t)
	d, rider := e.assigned(t)
	before := e.counts(t)

	_, err := e.deliveries.Assign(context.Background(), e.admin, transport.AssignRiderRequest{OrderID: d.OrderID, RiderID: rider.ID})
	require.ErrorIs(t, err, domain.ErrConflict)

	assert.EqualValues(t, 1, testutil.Count(t, e.db, &models.Delivery{}))
	assert.Equal(t, before, e.counts(t))
}

func TestDeliveryReads(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	d, _ := e.assigned(t)

	_, _, err := e.deliveries.ListDeliveries(ctx, e.customer, "", 0, 10)
	require.ErrorIs(t, err, domain.ErrForbidden)
	_, err = e.deliveries.GetDelivery(ctx, e.customer, d.ID)
	require.ErrorIs(t, err, domain.ErrForbidden)
	_, err = e.deliveries.Advance(ctx, e.customer, d.ID, transport.AdvanceDeliveryRequest{Status: string(domain.DeliveryForPickUp)})
	require.ErrorIs(t, err, domain.ErrForbidden)

	n, rows, err := e.deliveries.ListDeliveries(ctx, e.admin, "pending", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	require.Len(t, rows, 1)
	assert.Equal(t, d.ID, rows[0].ID)

	n, _, err = e.deliveries.ListDeliveries(ctx, e.admin, string(domain.DeliveryComplete), 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	_, _, err = e.deliveries.ListDeliveries(ctx, e.admin, "LOST", 0, 10)
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = e.deliveries.GetDelivery(ctx, e.admin, 9999)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetDelivery_CacheInvalidatedOnAdvance(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	d, _ := e.assigned(t)

	first, err := e.deliveries.GetDelivery(ctx, e.admin, d.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, e.cache.hits)

	second, err := e.deliveries.GetDelivery(ctx, e.admin, d.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, e.cache.hits)
	assert.Equal(t, first.Status, second.Status)

	_, err = e.deliveries.Advance(ctx, e.admin, d.ID, transport.AdvanceDeliveryRequest{Status: string(domain.DeliveryForPickUp)})
	require.NoError(t, err)

	third, err := e.deliveries.GetDelivery(ctx, e.admin, d.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, e.cache.hits)
	assert.Equal(t, string(domain.DeliveryForPickUp), third.Status)
	assert.Len(t, third.Activities, 2)
}

func TestDeliveryLifecycle_AssignThenCompleteUnderLegacy(t *testing.T) {
	e := newEnv(t)
	e.deliveries.Policy = domain.PolicyLegacy
	ctx := context.Background()

	d, _ := e.assigned(t)
	assert.Equal(t, string(domain.DeliveryPending), d.Status)
	assert.Equal(t, string(domain.ActivityAssigned), e.lastRiderActivity(t, d.ID).Status)
	assert.Equal(t, string(domain.OrderOnDelivery), e.orderStatus(t, d.OrderID))

	var activity models.DeliveryActivity
	require.NoError(t, e.db.Where("delivery_id = ?", d.ID).First(&activity).Error)
	assert.Equal(t, string(domain.DeliveryPending), activity.Status)

	res, err := e.deliveries.Advance(ctx, e.admin, d.ID, transport.AdvanceDeliveryRequest{Status: string(domain.DeliveryComplete)})
	require.NoError(t, err)
	assert.Equal(t, string(domain.OrderComplete), res.OrderStatus)
	assert.Equal(t, string(domain.ActivityDelivered), e.lastRiderActivity(t, d.ID).Status)
	assert.Equal(t, string(domain.OrderComplete), e.orderStatus(t, d.OrderID))
}

func TestAssign_ScheduleLookupRetriedWhenStorageBusy(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	orderID := e.paidOrder(t)
	sc := e.scheduleOf(t, orderID)
	rider := testutil.SeedRider(t, e.db, "rider", string(domain.RiderActive))

	failures := 0
	require.NoError(t, e.db.Callback().Query().Before("gorm:query").Register("test:busy_schedule", func(tx *gorm.DB) {
		if tx.Statement.Table == "delivery_schedules" && failures == 0 {
			failures++
			_ = tx.AddError(errors.New("database is locked"))
		}
	}))

	d, err := e.deliveries.Assign(ctx, e.admin, transport.AssignRiderRequest{
		OrderID:            orderID,
		RiderID:            rider.ID,
		DeliveryScheduleID: &sc.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, failures)
	require.NotNil(t, d.DeliveryScheduleID)
	assert.Equal(t, sc.ID, *d.DeliveryScheduleID)
	assert.Equal(t, string(domain.ScheduleAssigned), e.scheduleOf(t, orderID).Status)
}
