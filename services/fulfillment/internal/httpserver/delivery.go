package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/bakery_shop/pkg/logging"
	"github.com/Skotchmaster/bakery_shop/services/fulfillment/internal/service"
	"github.com/Skotchmaster/bakery_shop/services/fulfillment/internal/transport"
	"github.com/Skotchmaster/bakery_shop/services/fulfillment/internal/util"
)

type DeliveryHTTP struct {
	Svc *service.DeliveryService
}

func (h *DeliveryHTTP) ListDeliveries(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "delivery.list_deliveries")

	caller, ok := callerFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, rows, err := h.Svc.ListDeliveries(ctx, caller, c.QueryParam("status"), offset, limit)
	if err != nil {
		return fail(l, "list_deliveries_failed", err)
	}

	return c.JSON(http.StatusOK, transport.ListResponse{
		Message: "deliveries",
		Count:   total,
		Data:    transport.ToDeliveryViews(rows),
		Meta:    transport.NewPageMeta(max(page, 1), limit, total),
	})
}

func (h *DeliveryHTTP) GetDelivery(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "delivery.get_delivery")

	caller, ok := callerFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	id, ok := util.ParseID(c.Param("id"))
	if !ok {
		return badRequest(l, "get_delivery_failed", "delivery id must be a positive integer", nil)
	}

	detail, err := h.Svc.GetDelivery(ctx, caller, id)
	if err != nil {
		return fail(l, "get_delivery_failed", err)
	}
	return c.JSON(http.StatusOK, transport.DataResponse{Message: "delivery", Data: detail})
}

func (h *DeliveryHTTP) AssignRider(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "delivery.assign_rider")

	caller, ok := callerFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req transport.AssignRiderRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "assign_rider_failed", "invalid body", err)
	}
	if err := c.Validate(&req); err != nil {
		return fail(l, "assign_rider_failed", err)
	}

	d, err := h.Svc.Assign(ctx, caller, req)
	if err != nil {
		return fail(l, "assign_rider_failed", err)
	}

	l.Info("assign_rider_success", "delivery_id", d.ID, "order_id", d.OrderID)
	return c.JSON(http.StatusCreated, transport.DataResponse{Message: "rider assigned", Data: transport.ToDeliveryView(*d)})
}

func (h *DeliveryHTTP) AdvanceDelivery(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "delivery.advance_delivery")

	caller, ok := callerFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	id, ok := util.ParseID(c.Param("id"))
	if !ok {
		return badRequest(l, "advance_delivery_failed", "delivery id must be a positive integer", nil)
	}

	var req transport.AdvanceDeliveryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "advance_delivery_failed", "invalid body", err)
	}
	if err := c.Validate(&req); err != nil {
		return fail(l, "advance_delivery_failed", err)
	}

	res, err := h.Svc.Advance(ctx, caller, id, req)
	if err != nil {
		return fail(l, "advance_delivery_failed", err)
	}

	l.Info("advance_delivery_success", "delivery_id", id, "status", res.CurrentStatus)
	return c.JSON(http.StatusOK, transport.DataResponse{Message: "delivery updated", Data: res})
}
