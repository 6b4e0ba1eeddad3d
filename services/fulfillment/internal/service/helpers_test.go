package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/bakery_shop/pkg/events"
	"github.com/Skotchmaster/bakery_shop/services/fulfillment/internal/config"
	"github.com/Skotchmaster/bakery_shop/services/fulfillment/internal/domain"
	"github.com/Skotchmaster/bakery_shop/services/fulfillment/internal/models"
	"github.com/Skotchmaster/bakery_shop/services/fulfillment/internal/repo"
	"github.com/Skotchmaster/bakery_shop/services/fulfillment/internal/testutil"
	"github.com/Skotchmaster/bakery_shop/services/fulfillment/internal/transport"
)

type published struct {
	Topic string
	Key   string
	Event events.Envelope
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *recordingPublisher) Publish(_ context.Context, topic, key string, e events.Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{Topic: topic, Key: key, Event: e})
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types(topic string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		if e.Topic == topic {
			out = append(out, e.Event.Type)
		}
	}
	return out
}

type memCache struct {
	mu    sync.Mutex
	items map[uint]transport.DeliveryDetail
	hits  int
}

func newMemCache() *memCache { return &memCache{items: map[uint]transport.DeliveryDetail{}} }

func (c *memCache) Get(_ context.Context, id uint) (*transport.DeliveryDetail, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.items[id]
	if !ok {
		return nil, nil
	}
	c.hits++
	return &d, nil
}

func (c *memCache) Set(_ context.Context, d *transport.DeliveryDetail) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[d.ID] = *d
	return nil
}

func (c *memCache) Invalidate(_ context.Context, id uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, id)
	return nil
}

type env struct {
	db         *gorm.DB
	repo       *repo.GormRepo
	pub        *recordingPublisher
	cache      *memCache
	inventory  *InventoryService
	orders     *OrderService
	deliveries *DeliveryService
	riders     *RiderService

	admin    domain.Caller
	customer domain.Caller
}

func newEnv(t *testing.T) *env {
	t.Helper()

	db := testutil.OpenDB(t)
	r := repo.New(db, 2*time.Second)
	runner := Runner{Repo: r, MaxAttempts: 3}
	pub := &recordingPublisher{}
	cache := newMemCache()

	inv := &InventoryService{Repo: r, Runner: runner, Events: pub}
	e := &env{
		db:         db,
		repo:       r,
		pub:        pub,
		cache:      cache,
		inventory:  inv,
		orders:     &OrderService{Repo: r, Inventory: inv, Runner: runner, Events: pub, PricingMode: config.PricingClient},
		deliveries: &DeliveryService{Repo: r, Runner: runner, Events: pub, Cache: cache, Policy: domain.PolicyStrict},
		riders:     &RiderService{Repo: r, Runner: runner, Events: pub, Cache: cache},
	}

	admin := testutil.SeedUser(t, db, "admin", domain.AdminAccessID)
	customer := testutil.SeedUser(t, db, "maria", 2)
	e.admin = domain.Caller{ID: admin.ID, AccessID: admin.AccessID}
	e.customer = domain.Caller{ID: customer.ID, AccessID: customer.AccessID}
	return e
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func orderRequest(items ...transport.CreateOrderItem) transport.CreateOrderRequest {
	return transport.CreateOrderRequest{
		PaymentType:     "GCASH",
		DeliveryAddress: "12 Baker st",
		Schedules:       []transport.CreateOrderSchedule{{Date: "2026-10-16", TimeSlot: "MORNING"}},
		Items:           items,
	}
}

func item(productID uint, qty int, price string) transport.CreateOrderItem {
	return transport.CreateOrderItem{ProductID: productID, Quantity: qty, Price: dec(price)}
}

func (e *env) stock(t *testing.T, productID uint) int {
	t.Helper()
	inv, err := e.repo.GetInventoryByProduct(context.Background(), productID)
	require.NoError(t, err)
	return inv.CurrentStock
}

func (e *env) latestHistory(t *testing.T, productID uint) models.InventoryHistory {
	t.Helper()
	inv, err := e.repo.GetInventoryByProduct(context.Background(), productID)
	require.NoError(t, err)
	h, err := e.repo.LatestInventoryHistory(context.Background(), inv.ID)
	require.NoError(t, err)
	return *h
}

// paidOrder places a one-item order for the test customer.
func (e *env) paidOrder(t *testing.T) uint {
	t.Helper()
	p, _ := testutil.SeedProduct(t, e.db, "Pandesal", "5.00", 50)
	res, err := e.orders.CreateOrder(context.Background(), e.customer, orderRequest(item(p.ID, 2, "5.00")))
	require.NoError(t, err)
	return res.OrderID
}

type historyCounts struct {
	inventory, delivery, rider int64
}

func (e *env) counts(t *testing.T) historyCounts {
	t.Helper()
	return historyCounts{
		inventory: testutil.Count(t, e.db, &models.InventoryHistory{}),
		delivery:  testutil.Count(t, e.db, &models.DeliveryActivity{}),
		rider:     testutil.Count(t, e.db, &models.RiderActivity{}),
	}
}
