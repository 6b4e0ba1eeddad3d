package httpserver

import (
	"github.com/labstack/echo/v4"

	middleware "github.com/Skotchmaster/bakery_shop/pkg/middleware/auth"
	"github.com/Skotchmaster/bakery_shop/services/fulfillment/internal/domain"
	"github.com/Skotchmaster/bakery_shop/services/fulfillment/internal/transport"
)

func callerFrom(c echo.Context) (domain.Caller, bool) {
	userID, accessID, ok := middleware.Identity(c)
	if !ok {
		return domain.Caller{}, false
	}
	return domain.Caller{ID: userID, AccessID: accessID}, true
}

// RequestValidator plugs the DTO validation into echo's c.Validate.
type RequestValidator struct{}

func (RequestValidator) Validate(i any) error {
	return transport.Validate(i)
}
