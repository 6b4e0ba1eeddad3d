package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/bakery_shop/pkg/events"
	"github.com/Skotchmaster/bakery_shop/pkg/hash"
	"github.com/Skotchmaster/bakery_shop/pkg/logging"
	"github.com/Skotchmaster/bakery_shop/services/fulfillment/internal/domain"
	"github.com/Skotchmaster/bakery_shop/services/fulfillment/internal/models"
	"github.com/Skotchmaster/bakery_shop/services/fulfillment/internal/repo"
	"github.com/Skotchmaster/bakery_shop/services/fulfillment/internal/transport"
)

type RiderService struct {
	Repo   *repo.GormRepo
	Runner Runner
	Events events.Publisher
	// Cache is cleared for a delivery whose rider log changes.
	Cache DeliveryCache
}

func (s *RiderService) CreateRider(ctx context.Context, req transport.CreateRiderRequest) (*models.Rider, error) {
	if err := transport.Validate(req); err != nil {
		return nil, err
	}

	status := domain.RiderActive
	if st := strings.ToUpper(strings.TrimSpace(req.Status)); st != "" {
		status = domain.RiderStatus(st)
		if status != domain.RiderActive && status != domain.RiderInactive {
			return nil, fmt.Errorf("%w: rider status must be ACTIVE or INACTIVE", domain.ErrValidation)
		}
	}

	username := strings.TrimSpace(req.Username)
	passwordHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var rider models.Rider
	err = s.Runner.Run(ctx, func() *repo.Unit {
		rider = models.Rider{
			Fullname: strings.TrimSpace(req.Fullname),
			Username: username,
			Password: passwordHash,
			Status:   string(status),
		}
		return repo.NewUnit("create_rider").
			Step("check_username", func(tx *gorm.DB) error {
				taken, err := s.Repo.WithTx(tx).UsernameTaken(ctx, username)
				if err != nil {
					return err
				}
				if taken {
					return fmt.Errorf("%w: username %q is taken", domain.ErrConflict, username)
				}
				return nil
			}).
			Step("insert_rider", func(tx *gorm.DB) error {
				return s.Repo.WithTx(tx).CreateRider(ctx, &rider)
			})
	})
	record("create_rider", err)
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Info("rider_created", "rider_id", rider.ID, "username", rider.Username)
	return &rider, nil
}

func (s *RiderService) ListActiveRiders(ctx context.Context) ([]models.Rider, error) {
	return s.Repo.ListRidersByStatus(ctx, string(domain.RiderActive))
}

// DeactivateRider soft deletes; rider rows are never removed.
func (s *RiderService) DeactivateRider(ctx context.Context, id uint) (*models.Rider, error) {
	var rider *models.Rider
	err := s.Runner.Run(ctx, func() *repo.Unit {
		rider = nil
		return repo.NewUnit("deactivate_rider").
			Step("lock_rider", func(tx *gorm.DB) error {
				var err error
				rider, err = s.Repo.WithTx(tx).LockRider(ctx, id)
				if err != nil {
					return err
				}
				if rider.Status == string(domain.RiderDeleted) {
					return fmt.Errorf("%w: rider %d is already deleted", domain.ErrInvalidState, id)
				}
				return nil
			}).
			Step("mark_deleted", func(tx *gorm.DB) error {
				return s.Repo.WithTx(tx).SetRiderStatus(ctx, id, string(domain.RiderDeleted))
			})
	})
	record("deactivate_rider", err)
	if err != nil {
		return nil, err
	}

	rider.Status = string(domain.RiderDeleted)
	publish(ctx, s.Events, events.TopicDelivery, strconv.FormatUint(uint64(id), 10), "rider_deactivated", map[string]any{
		"rider_id": id,
	})
	return rider, nil
}

// CreateRiderActivity appends an administrative entry to a rider's log.
func (s *RiderService) CreateRiderActivity(ctx context.Context, riderID uint, req transport.CreateRiderActivityRequest) (*models.RiderActivity, error) {
	if err := transport.Validate(req); err != nil {
		return nil, err
	}
	status, err := domain.ParseAdminActivityStatus(req.Status)
	if err != nil {
		return nil, err
	}

	var activity models.RiderActivity
	err = s.Runner.Run(ctx, func() *repo.Unit {
		activity = models.RiderActivity{}
		return repo.NewUnit("create_rider_activity").
			Step("check_rider", func(tx *gorm.DB) error {
				rider, err := s.Repo.WithTx(tx).GetRider(ctx, riderID)
				if err != nil {
					return err
				}
				return riderMustBeActive(rider)
			}).
			Step("check_delivery", func(tx *gorm.DB) error {
				if req.DeliveryID == nil {
					return nil
				}
				d, err := s.Repo.WithTx(tx).GetDelivery(ctx, *req.DeliveryID)
				if err != nil {
					return err
				}
				if d.RiderID != riderID {
					return fmt.Errorf("%w: delivery %d is not assigned to rider %d", domain.ErrValidation, d.ID, riderID)
				}
				return nil
			}).
			Step("insert_activity", func(tx *gorm.DB) error {
				activity = models.RiderActivity{
					RiderID:    riderID,
					DeliveryID: req.DeliveryID,
					Status:     string(status),
					Remarks:    req.Remarks,
					Date:       time.Now().UTC(),
				}
				return s.Repo.WithTx(tx).AppendRiderActivity(ctx, &activity)
			})
	})
	record("create_rider_activity", err)
	if err != nil {
		return nil, err
	}
	if req.DeliveryID != nil {
		invalidateDelivery(ctx, s.Cache, *req.DeliveryID)
	}
	return &activity, nil
}
