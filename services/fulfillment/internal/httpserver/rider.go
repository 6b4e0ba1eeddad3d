package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/bakery_shop/pkg/logging"
	"github.com/Skotchmaster/bakery_shop/services/fulfillment/internal/service"
	"github.com/Skotchmaster/bakery_shop/services/fulfillment/internal/transport"
	"github.com/Skotchmaster/bakery_shop/services/fulfillment/internal/util"
)

type RiderHTTP struct {
	Svc *service.RiderService
}

func (h *RiderHTTP) ListRiders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "rider.list_riders")

	riders, err := h.Svc.ListActiveRiders(ctx)
	if err != nil {
		return fail(l, "list_riders_failed", err)
	}
	return c.JSON(http.StatusOK, transport.ListResponse{
		Message: "active riders",
		Count:   int64(len(riders)),
		Data:    transport.ToRiderViews(riders),
	})
}

func (h *RiderHTTP) CreateRider(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "rider.create_rider")

	var req transport.CreateRiderRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_rider_failed", "invalid body", err)
	}
	if err := c.Validate(&req); err != nil {
		return fail(l, "create_rider_failed", err)
	}

	r, err := h.Svc.CreateRider(ctx, req)
	if err != nil {
		return fail(l, "create_rider_failed", err)
	}

	l.Info("create_rider_success", "rider_id", r.ID)
	return c.JSON(http.StatusCreated, transport.DataResponse{Message: "rider created", Data: transport.ToRiderView(*r)})
}

func (h *RiderHTTP) DeleteRider(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "rider.delete_rider")

	id, ok := util.ParseID(c.Param("id"))
	if !ok {
		return badRequest(l, "delete_rider_failed", "rider id must be a positive integer", nil)
	}

	r, err := h.Svc.DeactivateRider(ctx, id)
	if err != nil {
		return fail(l, "delete_rider_failed", err)
	}

	l.Info("delete_rider_success", "rider_id", id)
	return c.JSON(http.StatusOK, transport.DataResponse{Message: "rider deleted", Data: transport.ToRiderView(*r)})
}

func (h *RiderHTTP) CreateActivity(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "rider.create_activity")

	id, ok := util.ParseID(c.Param("id"))
	if !ok {
		return badRequest(l, "create_rider_activity_failed", "rider id must be a positive integer", nil)
	}

	var req transport.CreateRiderActivityRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_rider_activity_failed", "invalid body", err)
	}
	if err := c.Validate(&req); err != nil {
		return fail(l, "create_rider_activity_failed", err)
	}

	a, err := h.Svc.CreateRiderActivity(ctx, id, req)
	if err != nil {
		return fail(l, "create_rider_activity_failed", err)
	}
	return c.JSON(http.StatusCreated, transport.DataResponse{Message: "rider activity recorded", Data: transport.ToRiderActivityView(*a)})
}
