package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/bakery_shop/services/fulfillment/internal/models"
)

func (r *GormRepo) DeliveryForOrder(ctx context.Context, orderID uint) (*models.Delivery, error) {
	var d models.Delivery
	err := r.DB.WithContext(ctx).Where("order_id = ?", orderID).Limit(1).Find(&d).Error
	if err != nil {
		return nil, err
	}
	if d.ID == 0 {
		return nil, nil
	}
	return &d, nil
}

func (r *GormRepo) CreateDelivery(ctx context.Context, d *models.Delivery) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Create(d).Error
}

func (r *GormRepo) LockDelivery(ctx context.Context, id uint) (*models.Delivery, error) {
	var d models.Delivery
	if err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&d, id).Error; err != nil {
		return nil, notFound(err, "delivery %d", id)
	}
	return &d, nil
}

func (r *GormRepo) SetDeliveryStatus(ctx context.Context, id uint, status string) error {
	return r.DB.WithContext(ctx).Model(&models.Delivery{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *GormRepo) AppendDeliveryActivity(ctx context.Context, a *models.DeliveryActivity) error {
	return r.DB.WithContext(ctx).Create(a).Error
}

// ListDeliveries pages deliveries, optionally filtered by status.
func (r *GormRepo) ListDeliveries(ctx context.Context, status string, offset, limit int) (int64, []models.Delivery, error) {
	q := r.DB.WithContext(ctx).Model(&models.Delivery{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var rows []models.Delivery
	if err := q.Order("date DESC, id DESC").Offset(offset).Limit(limit).Find(&rows).Error; err != nil {
		return 0, nil, err
	}
	return total, rows, nil
}

func (r *GormRepo) GetDeliveryDetail(ctx context.Context, id uint) (*models.Delivery, error) {
	var d models.Delivery
	err := r.DB.WithContext(ctx).
		Preload("Activities", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("RiderActivities", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&d, id).Error
	if err != nil {
		return nil, notFound(err, "delivery %d", id)
	}
	return &d, nil
}

func (r *GormRepo) GetDelivery(ctx context.Context, id uint) (*models.Delivery, error) {
	var d models.Delivery
	if err := r.DB.WithContext(ctx).First(&d, id).Error; err != nil {
		return nil, notFound(err, "delivery %d", id)
	}
	return &d, nil
}
