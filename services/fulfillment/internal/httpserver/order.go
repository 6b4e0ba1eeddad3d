package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/bakery_shop/pkg/logging"
	"github.com/Skotchmaster/bakery_shop/services/fulfillment/internal/service"
	"github.com/Skotchmaster/bakery_shop/services/fulfillment/internal/transport"
	"github.com/Skotchmaster/bakery_shop/services/fulfillment/internal/util"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create_order")

	caller, ok := callerFrom(c)
	if !ok {
		l.Warn("create_order_failed", "status", 401, "reason", "missing identity")
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req transport.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_order_failed", "invalid body", err)
	}
	if err := c.Validate(&req); err != nil {
		return fail(l, "create_order_failed", err)
	}

	res, err := h.Svc.CreateOrder(ctx, caller, req)
	if err != nil {
		return fail(l, "create_order_failed", err)
	}

	l.Info("create_order_success", "order_id", res.OrderID)
	return c.JSON(http.StatusCreated, transport.DataResponse{Message: "order created", Data: res})
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_orders")

	caller, ok := callerFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, orders, err := h.Svc.ListOrders(ctx, caller, offset, limit)
	if err != nil {
		return fail(l, "list_orders_failed", err)
	}

	return c.JSON(http.StatusOK, transport.ListResponse{
		Message: "orders",
		Count:   total,
		Data:    transport.ToOrderViews(orders),
		Meta:    transport.NewPageMeta(max(page, 1), limit, total),
	})
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_order")

	caller, ok := callerFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	id, ok := util.ParseID(c.Param("id"))
	if !ok {
		return badRequest(l, "get_order_failed", "order id must be a positive integer", nil)
	}

	order, err := h.Svc.GetOrder(ctx, caller, id)
	if err != nil {
		return fail(l, "get_order_failed", err)
	}
	return c.JSON(http.StatusOK, transport.DataResponse{Message: "order", Data: transport.ToOrderDetail(*order)})
}
