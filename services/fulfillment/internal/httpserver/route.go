package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/bakery_shop/pkg/logging"
	"github.com/Skotchmaster/bakery_shop/pkg/metrics"
	middleware "github.com/Skotchmaster/bakery_shop/pkg/middleware/auth"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	OrderHandler     *OrderHTTP
	InventoryHandler *InventoryHTTP
	DeliveryHandler  *DeliveryHTTP
	RiderHandler     *RiderHTTP
	JWTSecret        []byte
	DB               Pinger
}

func Register(e *echo.Echo, d *Deps) {
	e.Validator = RequestValidator{}

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.DB == nil {
			return c.NoContent(http.StatusOK)
		}
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := d.DB.Ping(ctx); err != nil {
			logging.FromContext(ctx).Warn("readiness_failed", "status", 503, "error", err)
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})
	e.GET("/metrics", metrics.Handler())

	authMW := middleware.NewAuthMiddleware(d.JWTSecret)

	orders := e.Group("/orders", authMW.RequireAuth)
	orders.GET("", d.OrderHandler.ListOrders)
	orders.POST("", d.OrderHandler.CreateOrder)
	orders.GET("/:id/item", d.OrderHandler.GetOrder)

	inventory := e.Group("/inventory", authMW.RequireAuth)
	inventory.GET("", d.InventoryHandler.ListInventory)
	inventory.PUT("/:id", d.InventoryHandler.AdjustStock)

	products := e.Group("/products", authMW.RequireAdmin)
	products.POST("", d.InventoryHandler.CreateProduct)

	delivery := e.Group("/delivery", authMW.RequireAdmin)
	delivery.GET("", d.DeliveryHandler.ListDeliveries)
	delivery.GET("/:id", d.DeliveryHandler.GetDelivery)
	delivery.POST("", d.DeliveryHandler.AssignRider)
	delivery.PUT("/:id", d.DeliveryHandler.AdvanceDelivery)

	riders := e.Group("/rider", authMW.RequireAdmin)
	riders.GET("", d.RiderHandler.ListRiders)
	riders.POST("", d.RiderHandler.CreateRider)
	riders.DELETE("/:id", d.RiderHandler.DeleteRider)
	riders.POST("/:id/activity", d.RiderHandler.CreateActivity)
}
