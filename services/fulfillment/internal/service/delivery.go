package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/bakery_shop/pkg/events"
	"github.com/Skotchmaster/bakery_shop/pkg/logging"
	"github.com/Skotchmaster/bakery_shop/services/fulfillment/internal/domain"
	"github.com/Skotchmaster/bakery_shop/services/fulfillment/internal/models"
	"github.com/Skotchmaster/bakery_shop/services/fulfillment/internal/repo"
	"github.com/Skotchmaster/bakery_shop/services/fulfillment/internal/transport"
)

// DeliveryCache holds rendered delivery details. Get returns nil, nil on a miss.
type DeliveryCache interface {
	Get(ctx context.Context, id uint) (*transport.DeliveryDetail, error)
	Set(ctx context.Context, d *transport.DeliveryDetail) error
	Invalidate(ctx context.Context, id uint) error
}

type DeliveryService struct {
	Repo   *repo.GormRepo
	Runner Runner
	Events events.Publisher
	Cache  DeliveryCache
	Policy domain.TransitionPolicy
}

func requirePrivileged(caller domain.Caller) error {
	if !caller.Privileged() {
		return fmt.Errorf("%w: administrator access required", domain.ErrForbidden)
	}
	return nil
}

func parseDeliveryDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Now().UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD or RFC3339", domain.ErrValidation)
	}
	return t, nil
}

// Assign binds a PAID order to an ACTIVE rider.
func (s *DeliveryService) Assign(ctx context.Context, caller domain.Caller, req transport.AssignRiderRequest) (*models.Delivery, error) {
	l := logging.FromContext(ctx).With("service", "delivery.assign")

	if err := requirePrivileged(caller); err != nil {
		return nil, err
	}
	if err := transport.Validate(req); err != nil {
		return nil, err
	}
	date, err := parseDeliveryDate(req.Date)
	if err != nil {
		return nil, err
	}

	var delivery models.Delivery
	err = s.Runner.Run(ctx, func() *repo.Unit {
		delivery = models.Delivery{}
		var order *models.Order
		var rider *models.Rider

		return repo.NewUnit("assign_rider").
			Step("lock_order", func(tx *gorm.DB) error {
				var err error
				order, err = s.Repo.WithTx(tx).LockOrder(ctx, req.OrderID)
				return err
			}).
			Step("check_existing_delivery", func(tx *gorm.DB) error {
				existing, err := s.Repo.WithTx(tx).DeliveryForOrder(ctx, order.ID)
				if err != nil {
					return err
				}
				if existing != nil {
					return fmt.Errorf("%w: order %d already has delivery %d", domain.ErrConflict, order.ID, existing.ID)
				}
				if order.Status != string(domain.OrderPaid) {
					return fmt.Errorf("%w: order %d is %s, expected %s", domain.ErrInvalidState, order.ID, order.Status, domain.OrderPaid)
				}
				return nil
			}).
			Step("check_rider", func(tx *gorm.DB) error {
				var err error
				rider, err = s.Repo.WithTx(tx).LockRider(ctx, req.RiderID)
				if err != nil {
					return err
				}
				return riderMustBeActive(rider)
			}).
			Step("check_schedule", func(tx *gorm.DB) error {
				if req.DeliveryScheduleID == nil {
					return nil
				}
				sc, err := s.Repo.WithTx(tx).GetSchedule(ctx, *req.DeliveryScheduleID)
				if err != nil && !errors.Is(err, domain.ErrNotFound) {
					return err
				}
				if err != nil || sc.OrderID != order.ID {
					return fmt.Errorf("%w: delivery schedule %d does not belong to order %d", domain.ErrValidation, *req.DeliveryScheduleID, order.ID)
				}
				return nil
			}).
			Step("insert_delivery", func(tx *gorm.DB) error {
				delivery = models.Delivery{
					OrderID:            order.ID,
					DeliveryScheduleID: req.DeliveryScheduleID,
					RiderID:            rider.ID,
					Date:               date,
					Status:             string(domain.DeliveryPending),
				}
				return s.Repo.WithTx(tx).CreateDelivery(ctx, &delivery)
			}).
			Step("insert_delivery_activity", func(tx *gorm.DB) error {
				return s.Repo.WithTx(tx).AppendDeliveryActivity(ctx, &models.DeliveryActivity{
					DeliveryID: delivery.ID,
					Status:     string(domain.DeliveryPending),
					Remarks:    fmt.Sprintf("assigned to rider %s", rider.Username),
					Date:       time.Now().UTC(),
				})
			}).
			Step("insert_rider_activity", func(tx *gorm.DB) error {
				deliveryID := delivery.ID
				return s.Repo.WithTx(tx).AppendRiderActivity(ctx, &models.RiderActivity{
					RiderID:    rider.ID,
					DeliveryID: &deliveryID,
					Status:     string(domain.ActivityAssigned),
					Date:       time.Now().UTC(),
				})
			}).
			Step("update_order_status", func(tx *gorm.DB) error {
				return s.Repo.WithTx(tx).SetOrderStatus(ctx, order.ID, string(domain.OrderOnDelivery))
			}).
			Step("update_schedule_status", func(tx *gorm.DB) error {
				if req.DeliveryScheduleID == nil {
					return nil
				}
				return s.Repo.WithTx(tx).SetScheduleStatus(ctx, *req.DeliveryScheduleID, string(domain.ScheduleAssigned))
			})
	})
	record("assign_rider", err)
	if err != nil {
		l.Warn("assign_rider_failed", "order_id", req.OrderID, "rider_id", req.RiderID, "error", err)
		return nil, err
	}

	l.Info("rider_assigned", "delivery_id", delivery.ID, "order_id", delivery.OrderID, "rider_id", delivery.RiderID)
	publish(ctx, s.Events, events.TopicDelivery, strconv.FormatUint(uint64(delivery.OrderID), 10), "delivery_assigned", map[string]any{
		"delivery_id":  delivery.ID,
		"order_id":     delivery.OrderID,
		"rider_id":     delivery.RiderID,
		"status":       delivery.Status,
		"order_status": domain.OrderOnDelivery,
	})
	return &delivery, nil
}

// Advance moves a delivery to newStatus and propagates the change to the
// rider log and the order.
func (s *DeliveryService) Advance(ctx context.Context, caller domain.Caller, id uint, req transport.AdvanceDeliveryRequest) (*transport.AdvanceResult, error) {
	l := logging.FromContext(ctx).With("service", "delivery.advance")

	if err := requirePrivileged(caller); err != nil {
		return nil, err
	}
	if err := transport.Validate(req); err != nil {
		return nil, err
	}
	next, err := domain.ParseDeliveryStatus(req.Status)
	if err != nil {
		return nil, err
	}
	effect, err := domain.Propagate(next)
	if err != nil {
		return nil, err
	}

	// A reader that loaded the row before commit may still Set it after the
	// second Invalidate; the cache TTL bounds that window.
	invalidateDelivery(ctx, s.Cache, id)

	var delivery *models.Delivery
	err = s.Runner.Run(ctx, func() *repo.Unit {
		delivery = nil

		return repo.NewUnit("advance_delivery").
			Step("lock_delivery", func(tx *gorm.DB) error {
				var err error
				delivery, err = s.Repo.WithTx(tx).LockDelivery(ctx, id)
				return err
			}).
			Step("check_rider", func(tx *gorm.DB) error {
				rider, err := s.Repo.WithTx(tx).GetRider(ctx, delivery.RiderID)
				if err != nil {
					return err
				}
				return riderMustBeActive(rider)
			}).
			Step("check_transition", func(tx *gorm.DB) error {
				return domain.CheckTransition(s.Policy, domain.DeliveryStatus(delivery.Status), next)
			}).
			Step("update_delivery_status", func(tx *gorm.DB) error {
				return s.Repo.WithTx(tx).SetDeliveryStatus(ctx, delivery.ID, string(next))
			}).
			Step("insert_delivery_activity", func(tx *gorm.DB) error {
				return s.Repo.WithTx(tx).AppendDeliveryActivity(ctx, &models.DeliveryActivity{
					DeliveryID: delivery.ID,
					Status:     string(next),
					Remarks:    req.Remarks,
					Date:       time.Now().UTC(),
				})
			}).
			Step("insert_rider_activity", func(tx *gorm.DB) error {
				deliveryID := delivery.ID
				return s.Repo.WithTx(tx).AppendRiderActivity(ctx, &models.RiderActivity{
					RiderID:    delivery.RiderID,
					DeliveryID: &deliveryID,
					Status:     string(effect.RiderActivity),
					Remarks:    req.Remarks,
					Date:       time.Now().UTC(),
				})
			}).
			Step("update_order_status", func(tx *gorm.DB) error {
				return s.Repo.WithTx(tx).SetOrderStatus(ctx, delivery.OrderID, string(effect.Order))
			}).
			Step("update_schedule_status", func(tx *gorm.DB) error {
				if next != domain.DeliveryComplete || delivery.DeliveryScheduleID == nil {
					return nil
				}
				return s.Repo.WithTx(tx).SetScheduleStatus(ctx, *delivery.DeliveryScheduleID, string(domain.ScheduleComplete))
			})
	})
	record("advance_delivery", err)
	if err != nil {
		l.Warn("advance_delivery_failed", "delivery_id", id, "status", next, "error", err)
		return nil, err
	}

	result := transport.AdvanceResult{
		DeliveryID:     delivery.ID,
		PreviousStatus: delivery.Status,
		CurrentStatus:  string(next),
		OrderStatus:    string(effect.Order),
		RiderActivity:  string(effect.RiderActivity),
	}

	invalidateDelivery(ctx, s.Cache, id)

	l.Info("delivery_advanced", "delivery_id", id, "from", result.PreviousStatus, "to", result.CurrentStatus)
	publish(ctx, s.Events, events.TopicDelivery, strconv.FormatUint(uint64(id), 10), "delivery_status_changed", result)
	return &result, nil
}

func (s *DeliveryService) ListDeliveries(ctx context.Context, caller domain.Caller, status string, offset, limit int) (int64, []models.Delivery, error) {
	if err := requirePrivileged(caller); err != nil {
		return 0, nil, err
	}
	if status != "" {
		st, err := domain.ParseDeliveryStatus(status)
		if err != nil {
			return 0, nil, err
		}
		status = string(st)
	}
	return s.Repo.ListDeliveries(ctx, status, offset, limit)
}

// GetDelivery serves from the cache when it can; cache failures fall back
// to the database.
func (s *DeliveryService) GetDelivery(ctx context.Context, caller domain.Caller, id uint) (*transport.DeliveryDetail, error) {
	if err := requirePrivileged(caller); err != nil {
		return nil, err
	}
	l := logging.FromContext(ctx).With("service", "delivery.get")

	if s.Cache != nil {
		cached, err := s.Cache.Get(ctx, id)
		if err != nil {
			l.Warn("delivery_cache_read_failed", "delivery_id", id, "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	d, err := s.Repo.GetDeliveryDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := transport.ToDeliveryDetail(*d)

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, &detail); err != nil {
			l.Warn("delivery_cache_write_failed", "delivery_id", id, "error", err)
		}
	}
	return &detail, nil
}

func invalidateDelivery(ctx context.Context, cache DeliveryCache, id uint) {
	if cache == nil {
		return
	}
	if err := cache.Invalidate(ctx, id); err != nil {
		logging.FromContext(ctx).Warn("delivery_cache_invalidate_failed", "delivery_id", id, "error", err)
	}
}

func riderMustBeActive(r *models.Rider) error {
	switch domain.RiderStatus(r.Status) {
	case domain.RiderActive:
		return nil
	case domain.RiderDeleted:
		return fmt.Errorf("%w: rider %d is deleted", domain.ErrInvalidState, r.ID)
	default:
		return fmt.Errorf("%w: rider %d is %s", domain.ErrInvalidState, r.ID, r.Status)
	}
}
