package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/bakery_shop/services/fulfillment/internal/domain"
	"github.com/Skotchmaster/bakery_shop/services/fulfillment/internal/models"
)

const DefaultTxTimeout = 5 * time.Second

type GormRepo struct {
	DB        *gorm.DB
	TxTimeout time.Duration
}

func New(db *gorm.DB, txTimeout time.Duration) *GormRepo {
	if txTimeout <= 0 {
		txTimeout = DefaultTxTimeout
	}
	return &GormRepo{DB: db, TxTimeout: txTimeout}
}

// WithTx returns a repo whose queries run on tx.
func (r *GormRepo) WithTx(tx *gorm.DB) *GormRepo {
	return &GormRepo{DB: tx, TxTimeout: r.TxTimeout}
}

func (r *GormRepo) Migrate(ctx context.Context) error {
	return r.DB.WithContext(ctx).AutoMigrate(models.All()...)
}

func (r *GormRepo) Ping(ctx context.Context) error {
	sqlDB, err := r.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func notFound(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: "+format, append([]any{domain.ErrNotFound}, args...)...)
	}
	return err
}
