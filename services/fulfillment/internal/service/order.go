package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/bakery_shop/pkg/events"
	"github.com/Skotchmaster/bakery_shop/pkg/logging"
	"github.com/Skotchmaster/bakery_shop/services/fulfillment/internal/config"
	"github.com/Skotchmaster/bakery_shop/services/fulfillment/internal/domain"
	"github.com/Skotchmaster/bakery_shop/services/fulfillment/internal/models"
	"github.com/Skotchmaster/bakery_shop/services/fulfillment/internal/repo"
	"github.com/Skotchmaster/bakery_shop/services/fulfillment/internal/transport"
)

const dateLayout = "2006-01-02"

type OrderService struct {
	Repo      *repo.GormRepo
	Inventory *InventoryService
	Runner    Runner
	Events    events.Publisher
	// PricingMode is config.PricingClient or config.PricingCatalog.
	PricingMode string
}

type orderLine struct {
	productID uint
	quantity  int
	price     decimal.Decimal
}

type orderDraft struct {
	customerID uint
	status     domain.OrderStatus
	paymentRef *string
	schedules  []models.DeliverySchedule
	lines      []orderLine
	// needed is the summed quantity per product.
	needed     map[uint]int
	productIDs []uint
}

func (s *OrderService) CreateOrder(ctx context.Context, caller domain.Caller, req transport.CreateOrderRequest) (*transport.CreateOrderResponse, error) {
	l := logging.FromContext(ctx).With("service", "order.create_order")

	draft, err := s.validate(caller, req)
	if err != nil {
		record("create_order", err)
		return nil, err
	}

	products, err := s.precheck(ctx, draft)
	if err != nil {
		record("create_order", err)
		return nil, err
	}

	total := decimal.Zero
	for i := range draft.lines {
		if s.PricingMode == config.PricingCatalog {
			draft.lines[i].price = products[draft.lines[i].productID].Price
		}
		line := draft.lines[i]
		total = total.Add(line.price.Mul(decimal.NewFromInt(int64(line.quantity))))
	}
	total = total.Round(2)

	var order models.Order
	var changes []domain.StockChange

	err = s.Runner.Run(ctx, func() *repo.Unit {
		order = models.Order{}
		changes = changes[:0]

		return repo.NewUnit("create_order").
			Step("lock_inventory", func(tx *gorm.DB) error {
				locked, err := s.Repo.WithTx(tx).LockInventories(ctx, draft.productIDs)
				if err != nil {
					return err
				}
				for _, id := range draft.productIDs {
					inv, ok := locked[id]
					if !ok {
						return fmt.Errorf("%w: inventory for product %d", domain.ErrNotFound, id)
					}
					if inv.CurrentStock < draft.needed[id] {
						return &domain.StockError{
							ProductID: id,
							Name:      products[id].Name,
							Available: inv.CurrentStock,
							Requested: draft.needed[id],
						}
					}
				}
				return nil
			}).
			Step("check_payment_reference", func(tx *gorm.DB) error {
				if draft.paymentRef == nil {
					return nil
				}
				taken, err := s.Repo.WithTx(tx).PaymentReferenceTaken(ctx, *draft.paymentRef)
				if err != nil {
					return err
				}
				if taken {
					return fmt.Errorf("%w: payment reference %q already used", domain.ErrConflict, *draft.paymentRef)
				}
				return nil
			}).
			Step("insert_order", func(tx *gorm.DB) error {
				order = models.Order{
					CustomerID:       draft.customerID,
					Date:             time.Now().UTC(),
					Total:            total,
					PaymentType:      strings.TrimSpace(req.PaymentType),
					PaymentReference: draft.paymentRef,
					Details:          req.Details,
					DeliveryAddress:  strings.TrimSpace(req.DeliveryAddress),
					Status:           string(draft.status),
				}
				return s.Repo.WithTx(tx).CreateOrder(ctx, &order)
			}).
			Step("insert_schedules", func(tx *gorm.DB) error {
				schedules := make([]models.DeliverySchedule, len(draft.schedules))
				for i, sc := range draft.schedules {
					sc.OrderID = order.ID
					schedules[i] = sc
				}
				return s.Repo.WithTx(tx).CreateSchedules(ctx, schedules)
			}).
			Step("insert_items", func(tx *gorm.DB) error {
				items := make([]models.OrderItem, 0, len(draft.lines))
				for _, line := range draft.lines {
					items = append(items, models.OrderItem{
						OrderID:   order.ID,
						ProductID: line.productID,
						Quantity:  line.quantity,
						Price:     line.price,
					})
				}
				return s.Repo.WithTx(tx).CreateOrderItems(ctx, items)
			}).
			Step("adjust_stock", func(tx *gorm.DB) error {
				txRepo := s.Repo.WithTx(tx)
				orderID := order.ID
				for _, line := range draft.lines {
					change, err := s.Inventory.Apply(ctx, txRepo, line.productID, line.quantity, domain.IntentSale, &orderID)
					if err != nil {
						return err
					}
					changes = append(changes, change)
				}
				return nil
			})
	})
	record("create_order", err)
	if err != nil {
		l.Warn("create_order_failed", "customer_id", draft.customerID, "error", err)
		return nil, err
	}

	l.Info("order_created", "order_id", order.ID, "customer_id", order.CustomerID, "total", total.StringFixed(2))

	key := strconv.FormatUint(uint64(order.ID), 10)
	publish(ctx, s.Events, events.TopicOrders, key, "order_created", map[string]any{
		"order_id":    order.ID,
		"customer_id": order.CustomerID,
		"status":      order.Status,
		"total":       total.StringFixed(2),
		"items":       len(draft.lines),
	})
	publishStockChanges(ctx, s.Events, &order.ID, changes...)

	return &transport.CreateOrderResponse{OrderID: order.ID, Total: total.StringFixed(2)}, nil
}

// validate rejects malformed requests before anything is read or written.
func (s *OrderService) validate(caller domain.Caller, req transport.CreateOrderRequest) (*orderDraft, error) {
	if err := transport.Validate(req); err != nil {
		return nil, err
	}

	customerID := caller.ID
	if req.CustomerID != 0 && req.CustomerID != caller.ID {
		if !caller.Privileged() {
			return nil, fmt.Errorf("%w: cannot order on behalf of another customer", domain.ErrForbidden)
		}
		customerID = req.CustomerID
	}
	if customerID == 0 {
		return nil, fmt.Errorf("%w: customer required", domain.ErrValidation)
	}

	status, err := domain.ParseCreationStatus(req.Status)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.DeliveryAddress) == "" {
		return nil, fmt.Errorf("%w: delivery_address required", domain.ErrValidation)
	}

	draft := &orderDraft{
		customerID: customerID,
		status:     status,
		needed:     make(map[uint]int),
	}
	if ref := strings.TrimSpace(req.PaymentReference); ref != "" {
		draft.paymentRef = &ref
	}

	for i, sc := range req.Schedules {
		date, err := time.Parse(dateLayout, strings.TrimSpace(sc.Date))
		if err != nil {
			return nil, fmt.Errorf("%w: schedules[%d].date must be YYYY-MM-DD", domain.ErrValidation, i)
		}
		slot, err := domain.ParseTimeSlot(sc.TimeSlot)
		if err != nil {
			return nil, err
		}
		draft.schedules = append(draft.schedules, models.DeliverySchedule{
			Date:     date,
			TimeSlot: string(slot),
			Status:   string(domain.SchedulePending),
		})
	}

	for i, it := range req.Items {
		if it.ProductID == 0 {
			return nil, fmt.Errorf("%w: items[%d].product_id required", domain.ErrValidation, i)
		}
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("%w: items[%d].quantity must be > 0", domain.ErrValidation, i)
		}
		if it.Price == nil {
			return nil, fmt.Errorf("%w: items[%d].price required", domain.ErrValidation, i)
		}
		if it.Price.IsNegative() {
			return nil, fmt.Errorf("%w: items[%d].price must be >= 0", domain.ErrValidation, i)
		}
		if _, seen := draft.needed[it.ProductID]; !seen {
			draft.productIDs = append(draft.productIDs, it.ProductID)
		}
		draft.needed[it.ProductID] += it.Quantity
		draft.lines = append(draft.lines, orderLine{
			productID: it.ProductID,
			quantity:  it.Quantity,
			price:     it.Price.Round(2),
		})
	}
	sort.Slice(draft.productIDs, func(i, j int) bool { return draft.productIDs[i] < draft.productIDs[j] })

	return draft, nil
}

// precheck is the read-only pass; the first failing item aborts the order.
func (s *OrderService) precheck(ctx context.Context, draft *orderDraft) (map[uint]models.Product, error) {
	if _, err := s.Repo.GetUser(ctx, draft.customerID); err != nil {
		return nil, err
	}

	products, err := s.Repo.GetProducts(ctx, draft.productIDs)
	if err != nil {
		return nil, err
	}

	checked := make(map[uint]bool, len(draft.productIDs))
	for _, line := range draft.lines {
		if checked[line.productID] {
			continue
		}
		checked[line.productID] = true

		p, ok := products[line.productID]
		if !ok {
			return nil, fmt.Errorf("%w: product %d", domain.ErrNotFound, line.productID)
		}
		if p.Status != string(domain.ProductAvailable) {
			return nil, fmt.Errorf("%w: product %d (%s) is %s", domain.ErrInvalidState, p.ID, p.Name, p.Status)
		}
		inv, err := s.Repo.GetInventoryByProduct(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		if inv.CurrentStock < draft.needed[p.ID] {
			return nil, &domain.StockError{
				ProductID: p.ID,
				Name:      p.Name,
				Available: inv.CurrentStock,
				Requested: draft.needed[p.ID],
			}
		}
	}
	return products, nil
}

func (s *OrderService) ListOrders(ctx context.Context, caller domain.Caller, offset, limit int) (int64, []models.Order, error) {
	var scope *uint
	if !caller.Privileged() {
		id := caller.ID
		scope = &id
	}
	return s.Repo.ListOrders(ctx, scope, offset, limit)
}

// GetOrder hides other customers' orders behind ErrNotFound.
func (s *OrderService) GetOrder(ctx context.Context, caller domain.Caller, id uint) (*models.Order, error) {
	order, err := s.Repo.GetOrderDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.CanSee(order.CustomerID) {
		return nil, fmt.Errorf("%w: order %d", domain.ErrNotFound, id)
	}
	return order, nil
}
