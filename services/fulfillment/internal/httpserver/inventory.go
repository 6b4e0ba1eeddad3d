package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/bakery_shop/pkg/logging"
	"github.com/Skotchmaster/bakery_shop/services/fulfillment/internal/domain"
	"github.com/Skotchmaster/bakery_shop/services/fulfillment/internal/service"
	"github.com/Skotchmaster/bakery_shop/services/fulfillment/internal/transport"
	"github.com/Skotchmaster/bakery_shop/services/fulfillment/internal/util"
)

type InventoryHTTP struct {
	Svc *service.InventoryService
}

func (h *InventoryHTTP) ListInventory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "inventory.list_inventory")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, rows, err := h.Svc.ListInventory(ctx, offset, limit)
	if err != nil {
		return fail(l, "list_inventory_failed", err)
	}

	return c.JSON(http.StatusOK, transport.ListResponse{
		Message: "inventory",
		Count:   total,
		Data:    transport.ToInventoryViews(rows),
		Meta:    transport.NewPageMeta(max(page, 1), limit, total),
	})
}

// AdjustStock sets the absolute stock of the product named by :id.
func (h *InventoryHTTP) AdjustStock(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "inventory.adjust_stock")

	productID, ok := util.ParseID(c.Param("id"))
	if !ok {
		return badRequest(l, "adjust_stock_failed", "product id must be a positive integer", nil)
	}

	var req transport.AdjustStockRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "adjust_stock_failed", "invalid body", err)
	}
	if err := c.Validate(&req); err != nil {
		return fail(l, "adjust_stock_failed", err)
	}

	change, err := h.Svc.AdjustStock(ctx, productID, *req.CurrentStock, domain.IntentManual)
	if err != nil {
		return fail(l, "adjust_stock_failed", err)
	}

	l.Info("adjust_stock_success", "product_id", productID, "label", change.Label)
	return c.JSON(http.StatusOK, transport.DataResponse{Message: "stock updated", Data: transport.ToStockChangeView(change)})
}

func (h *InventoryHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "inventory.create_product")

	var req transport.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_product_failed", "invalid body", err)
	}
	if err := c.Validate(&req); err != nil {
		return fail(l, "create_product_failed", err)
	}

	product, err := h.Svc.CreateProduct(ctx, req)
	if err != nil {
		return fail(l, "create_product_failed", err)
	}

	l.Info("create_product_success", "product_id", product.ID)
	return c.JSON(http.StatusCreated, transport.DataResponse{Message: "product created", Data: transport.ToProductView(*product)})
}
