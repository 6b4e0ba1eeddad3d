package repo

import (
	"context"

	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/bakery_shop/services/fulfillment/internal/models"
)

func (r *GormRepo) CreateRider(ctx context.Context, rider *models.Rider) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Create(rider).Error
}

func (r *GormRepo) GetRider(ctx context.Context, id uint) (*models.Rider, error) {
	var rider models.Rider
	if err := r.DB.WithContext(ctx).First(&rider, id).Error; err != nil {
		return nil, notFound(err, "rider %d", id)
	}
	return &rider, nil
}

func (r *GormRepo) LockRider(ctx context.Context, id uint) (*models.Rider, error) {
	var rider models.Rider
	if err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&rider, id).Error; err != nil {
		return nil, notFound(err, "rider %d", id)
	}
	return &rider, nil
}

func (r *GormRepo) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Rider{}).Where("username = ?", username).Count(&n).Error
	return n > 0, err
}

func (r *GormRepo) ListRidersByStatus(ctx context.Context, status string) ([]models.Rider, error) {
	var riders []models.Rider
	if err := r.DB.WithContext(ctx).Where("status = ?", status).Order("id ASC").Find(&riders).Error; err != nil {
		return nil, err
	}
	return riders, nil
}

func (r *GormRepo) SetRiderStatus(ctx context.Context, id uint, status string) error {
	return r.DB.WithContext(ctx).Model(&models.Rider{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *GormRepo) AppendRiderActivity(ctx context.Context, a *models.RiderActivity) error {
	return r.DB.WithContext(ctx).Create(a).Error
}
