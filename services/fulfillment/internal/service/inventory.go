package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/bakery_shop/pkg/events"
	"github.com/Skotchmaster/bakery_shop/pkg/logging"
	"github.com/Skotchmaster/bakery_shop/services/fulfillment/internal/domain"
	"github.com/Skotchmaster/bakery_shop/services/fulfillment/internal/models"
	"github.com/Skotchmaster/bakery_shop/services/fulfillment/internal/repo"
	"github.com/Skotchmaster/bakery_shop/services/fulfillment/internal/transport"
)

type InventoryService struct {
	Repo   *repo.GormRepo
	Runner Runner
	Events events.Publisher
}

// AdjustStock applies one ledger change in its own unit. IntentCreate and
// IntentManual take an absolute target, IntentSale a consumed quantity.
func (s *InventoryService) AdjustStock(ctx context.Context, productID uint, value int, intent domain.StockIntent) (domain.StockChange, error) {
	l := logging.FromContext(ctx).With("service", "inventory.adjust_stock")

	var change domain.StockChange
	err := s.Runner.Run(ctx, func() *repo.Unit {
		return repo.NewUnit("adjust_stock").
			Step("apply", func(tx *gorm.DB) error {
				var err error
				change, err = s.Apply(ctx, s.Repo.WithTx(tx), productID, value, intent, nil)
				return err
			})
	})
	record("adjust_stock", err)
	if err != nil {
		return domain.StockChange{}, err
	}

	l.Info("stock_adjusted", "product_id", productID, "before", change.StockBefore, "after", change.StockAfter, "label", change.Label)
	publishStockChanges(ctx, s.Events, nil, change)
	return change, nil
}

// Apply is the locked read-modify-write of one inventory row. r must be
// bound to the caller's open transaction.
func (s *InventoryService) Apply(ctx context.Context, r *repo.GormRepo, productID uint, value int, intent domain.StockIntent, orderID *uint) (domain.StockChange, error) {
	inv, err := r.LockInventoryByProduct(ctx, productID)
	if err != nil {
		return domain.StockChange{}, err
	}

	before := inv.CurrentStock
	var after int

	switch intent {
	case domain.IntentSale:
		if value <= 0 {
			return domain.StockChange{}, fmt.Errorf("%w: sold quantity must be > 0", domain.ErrValidation)
		}
		after = before - value
		if after < 0 {
			name := ""
			if p, err := r.GetProduct(ctx, productID); err == nil {
				name = p.Name
			}
			return domain.StockChange{}, &domain.StockError{
				ProductID: productID,
				Name:      name,
				Available: before,
				Requested: value,
			}
		}
	case domain.IntentCreate, domain.IntentManual:
		after = value
		if after < 0 {
			return domain.StockChange{}, fmt.Errorf("%w: stock of product %d cannot be set to %d", domain.ErrInvalidState, productID, value)
		}
	default:
		return domain.StockChange{}, fmt.Errorf("%w: unknown stock intent %d", domain.ErrValidation, intent)
	}

	label := domain.Label(before, after, intent)
	at := time.Now().UTC()

	if err := r.SetStock(ctx, inv.ID, before, after, at); err != nil {
		return domain.StockChange{}, err
	}
	if err := r.AppendInventoryHistory(ctx, &models.InventoryHistory{
		InventoryID: inv.ID,
		StockBefore: before,
		StockAfter:  after,
		Status:      string(label),
		OrderID:     orderID,
		Date:        at,
	}); err != nil {
		return domain.StockChange{}, err
	}

	return domain.StockChange{
		ProductID:   productID,
		InventoryID: inv.ID,
		StockBefore: before,
		StockAfter:  after,
		Label:       label,
	}, nil
}

func (s *InventoryService) ListInventory(ctx context.Context, offset, limit int) (int64, []repo.InventoryRow, error) {
	return s.Repo.ListInventory(ctx, offset, limit)
}

// CreateProduct inserts the product and seeds its inventory at 0 with a
// "new" history row, all in one unit.
func (s *InventoryService) CreateProduct(ctx context.Context, req transport.CreateProductRequest) (*models.Product, error) {
	if err := transport.Validate(req); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name required", domain.ErrValidation)
	}
	if req.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must be >= 0", domain.ErrValidation)
	}
	cost := decimal.Zero
	if req.Cost != nil {
		if req.Cost.IsNegative() {
			return nil, fmt.Errorf("%w: cost must be >= 0", domain.ErrValidation)
		}
		cost = *req.Cost
	}
	status, err := domain.ParseProductStatus(req.Status)
	if err != nil {
		return nil, err
	}

	var product models.Product
	err = s.Runner.Run(ctx, func() *repo.Unit {
		product = models.Product{
			Name:     name,
			Category: strings.TrimSpace(req.Category),
			Price:    req.Price.Round(2),
			Cost:     cost.Round(2),
			Status:   string(status),
		}
		return repo.NewUnit("create_product").
			Step("insert_product", func(tx *gorm.DB) error {
				return s.Repo.WithTx(tx).CreateProduct(ctx, &product)
			}).
			Step("insert_inventory", func(tx *gorm.DB) error {
				return s.Repo.WithTx(tx).CreateInventory(ctx, &models.Inventory{
					ProductID: product.ID,
					UpdatedAt: time.Now().UTC(),
				})
			}).
			Step("seed_history", func(tx *gorm.DB) error {
				_, err := s.Apply(ctx, s.Repo.WithTx(tx), product.ID, 0, domain.IntentCreate, nil)
				return err
			})
	})
	record("create_product", err)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.Events, events.TopicInventory, strconv.FormatUint(uint64(product.ID), 10), "product_created", map[string]any{
		"product_id": product.ID,
		"name":       product.Name,
		"price":      product.Price.StringFixed(2),
	})
	return &product, nil
}

func publishStockChanges(ctx context.Context, p events.Publisher, orderID *uint, changes ...domain.StockChange) {
	for _, c := range changes {
		payload := map[string]any{
			"product_id":   c.ProductID,
			"inventory_id": c.InventoryID,
			"stock_before": c.StockBefore,
			"stock_after":  c.StockAfter,
			"status":       c.Label,
		}
		if orderID != nil {
			payload["order_id"] = *orderID
		}
		publish(ctx, p, events.TopicInventory, strconv.FormatUint(uint64(c.ProductID), 10), "stock_adjusted", payload)
	}
}
