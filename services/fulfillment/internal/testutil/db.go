// Package testutil opens throwaway SQLite databases with the fulfillment
// schema and seeds common rows.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	pkgdb "github.com/Skotchmaster/bakery_shop/pkg/db"
	"github.com/Skotchmaster/bakery_shop/services/fulfillment/internal/models"
)

func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "sqlite:" + filepath.Join(t.TempDir(), "fulfillment.db")
	db, err := pkgdb.Open(context.Background(), dsn)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func SeedUser(t *testing.T, db *gorm.DB, username string, accessID int) models.User {
	t.Helper()
	u := models.User{Fullname: username, Username: username, AccessID: accessID}
	require.NoError(t, db.Create(&u).Error)
	return u
}

// SeedProduct creates an AVAILABLE product with an inventory row at stock.
func SeedProduct(t *testing.T, db *gorm.DB, name, price string, stock int) (models.Product, models.Inventory) {
	t.Helper()
	p := models.Product{
		Name:     name,
		Category: "bread",
		Price:    decimal.RequireFromString(price),
		Cost:     decimal.RequireFromString(price).Div(decimal.NewFromInt(2)),
		Status:   "AVAILABLE",
	}
	require.NoError(t, db.Omit("Inventory", "OrderItems").Create(&p).Error)

	inv := models.Inventory{ProductID: p.ID, CurrentStock: stock, UpdatedAt: time.Now().UTC()}
	require.NoError(t, db.Create(&inv).Error)
	return p, inv
}

func SeedRider(t *testing.T, db *gorm.DB, username, status string) models.Rider {
	t.Helper()
	r := models.Rider{Fullname: username, Username: username, Password: "x", Status: status}
	require.NoError(t, db.Omit("Deliveries", "Activities").Create(&r).Error)
	return r
}

func Count(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}
