package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/bakery_shop/services/fulfillment/internal/models"
)

func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Create(order).Error
}

func (r *GormRepo) CreateSchedules(ctx context.Context, schedules []models.DeliverySchedule) error {
	if len(schedules) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Omit(clause.Associations).Create(&schedules).Error
}

func (r *GormRepo) CreateOrderItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Create(&items).Error
}

func (r *GormRepo) PaymentReferenceTaken(ctx context.Context, ref string) (bool, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("payment_reference = ?", ref).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListOrders returns newest first. A nil customerID lists every order.
func (r *GormRepo) ListOrders(ctx context.Context, customerID *uint, offset, limit int) (int64, []models.Order, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{})
	if customerID != nil {
		q = q.Where("customer_id = ?", *customerID)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var orders []models.Order
	if err := q.Order("date DESC, id DESC").Offset(offset).Limit(limit).Find(&orders).Error; err != nil {
		return 0, nil, err
	}
	return total, orders, nil
}

func (r *GormRepo) GetOrderDetail(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := r.DB.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Schedules", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Deliveries").
		First(&order, id).Error
	if err != nil {
		return nil, notFound(err, "order %d", id)
	}
	return &order, nil
}

func (r *GormRepo) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).First(&order, id).Error; err != nil {
		return nil, notFound(err, "order %d", id)
	}
	return &order, nil
}

func (r *GormRepo) LockOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&order, id).Error; err != nil {
		return nil, notFound(err, "order %d", id)
	}
	return &order, nil
}

func (r *GormRepo) SetOrderStatus(ctx context.Context, id uint, status string) error {
	return r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *GormRepo) GetSchedule(ctx context.Context, id uint) (*models.DeliverySchedule, error) {
	var s models.DeliverySchedule
	if err := r.DB.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, notFound(err, "delivery schedule %d", id)
	}
	return &s, nil
}

func (r *GormRepo) SetScheduleStatus(ctx context.Context, id uint, status string) error {
	return r.DB.WithContext(ctx).Model(&models.DeliverySchedule{}).
		Where("id = ?", id).
		Update("status", status).Error
}
