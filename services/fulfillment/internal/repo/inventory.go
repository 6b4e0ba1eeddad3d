package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/bakery_shop/services/fulfillment/internal/models"
)

func (r *GormRepo) GetInventoryByProduct(ctx context.Context, productID uint) (*models.Inventory, error) {
	var inv models.Inventory
	if err := r.DB.WithContext(ctx).Where("product_id = ?", productID).First(&inv).Error; err != nil {
		return nil, notFound(err, "inventory for product %d", productID)
	}
	return &inv, nil
}

// LockInventoryByProduct reads the row under SELECT ... FOR UPDATE.
func (r *GormRepo) LockInventoryByProduct(ctx context.Context, productID uint) (*models.Inventory, error) {
	var inv models.Inventory
	if err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ?", productID).
		First(&inv).Error; err != nil {
		return nil, notFound(err, "inventory for product %d", productID)
	}
	return &inv, nil
}

// LockInventories locks rows in ascending product id order.
func (r *GormRepo) LockInventories(ctx context.Context, productIDs []uint) (map[uint]models.Inventory, error) {
	var rows []models.Inventory
	if err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id IN ?", productIDs).
		Order("product_id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[uint]models.Inventory, len(rows))
	for _, row := range rows {
		out[row.ProductID] = row
	}
	return out, nil
}

func (r *GormRepo) CreateInventory(ctx context.Context, inv *models.Inventory) error {
	return r.DB.WithContext(ctx).Create(inv).Error
}

func (r *GormRepo) SetStock(ctx context.Context, inventoryID uint, previous, current int, at time.Time) error {
	return r.DB.WithContext(ctx).Model(&models.Inventory{}).
		Where("id = ?", inventoryID).
		Updates(map[string]any{
			"previous_stock": previous,
			"current_stock":  current,
			"updated_at":     at,
		}).Error
}

func (r *GormRepo) AppendInventoryHistory(ctx context.Context, h *models.InventoryHistory) error {
	return r.DB.WithContext(ctx).Create(h).Error
}

func (r *GormRepo) LatestInventoryHistory(ctx context.Context, inventoryID uint) (*models.InventoryHistory, error) {
	var h models.InventoryHistory
	if err := r.DB.WithContext(ctx).
		Where("inventory_id = ?", inventoryID).
		Order("id DESC").
		First(&h).Error; err != nil {
		return nil, notFound(err, "history for inventory %d", inventoryID)
	}
	return &h, nil
}

type InventoryRow struct {
	InventoryID   uint
	ProductID     uint
	ProductName   string
	Category      string
	ProductStatus string
	CurrentStock  int
	PreviousStock int
	UpdatedAt     time.Time
}

func (r *GormRepo) ListInventory(ctx context.Context, offset, limit int) (int64, []InventoryRow, error) {
	q := r.DB.WithContext(ctx).
		Table("inventory AS i").
		Joins("JOIN products AS p ON p.id = i.product_id").
		Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var rows []InventoryRow
	if err := q.Select(`i.id AS inventory_id, i.product_id, p.name AS product_name, p.category,
		p.status AS product_status, i.current_stock, i.previous_stock, i.updated_at`).
		Order("i.product_id ASC").
		Offset(offset).Limit(limit).
		Scan(&rows).Error; err != nil {
		return 0, nil, err
	}
	return total, rows, nil
}
