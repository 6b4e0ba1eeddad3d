package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	pkgdb "github.com/Skotchmaster/bakery_shop/pkg/db"
	"github.com/Skotchmaster/bakery_shop/pkg/logging"
	"github.com/Skotchmaster/bakery_shop/services/fulfillment/internal/domain"
)

type StepFunc func(tx *gorm.DB) error

type step struct {
	name string
	fn   StepFunc
}

// Unit is an ordered list of steps that commit together or not at all.
// Values produced by one step reach later steps through the closures.
type Unit struct {
	Name  string
	steps []step
}

func NewUnit(name string) *Unit {
	return &Unit{Name: name}
}

func (u *Unit) Step(name string, fn StepFunc) *Unit {
	u.steps = append(u.steps, step{name: name, fn: fn})
	return u
}

func (u *Unit) Len() int { return len(u.steps) }

type stepError struct {
	step string
	err  error
}

func (e *stepError) Error() string { return e.step + ": " + e.err.Error() }
func (e *stepError) Unwrap() error { return e.err }

var businessErrors = []error{
	domain.ErrValidation,
	domain.ErrNotFound,
	domain.ErrConflict,
	domain.ErrInsufficientStock,
	domain.ErrInvalidState,
	domain.ErrForbidden,
	domain.ErrUnavailable,
}

func isBusiness(err error) bool {
	for _, target := range businessErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Execute runs the unit in one transaction bounded by TxTimeout.
// Business errors from steps are returned as is; storage errors come back
// classified as domain.ErrConflict, domain.ErrUnavailable or a plain error.
// Execute never retries.
func (r *GormRepo) Execute(ctx context.Context, u *Unit) error {
	ctx, cancel := context.WithTimeout(ctx, r.TxTimeout)
	defer cancel()

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, s := range u.steps {
			if err := s.fn(tx); err != nil {
				return &stepError{step: s.name, err: err}
			}
		}
		return nil
	})
	if err == nil {
		return nil
	}

	stepName := "begin/commit"
	var se *stepError
	if errors.As(err, &se) {
		stepName = se.step
		err = se.err
	}

	if isBusiness(err) {
		return err
	}

	l := logging.FromContext(ctx).With("unit", u.Name, "step", stepName)

	kind := pkgdb.Classify(err)
	if ctx.Err() != nil {
		kind = pkgdb.KindTransient
	}

	switch kind {
	case pkgdb.KindConflict:
		l.Warn("unit_rolled_back", "kind", kind.String(), "error", err)
		return fmt.Errorf("%w: %s/%s rejected by constraint", domain.ErrConflict, u.Name, stepName)
	case pkgdb.KindTransient:
		l.Warn("unit_rolled_back", "kind", kind.String(), "error", err)
		return fmt.Errorf("%w: %s/%s: %v", domain.ErrUnavailable, u.Name, stepName, err)
	default:
		l.Error("unit_rolled_back", "kind", kind.String(), "error", err)
		return fmt.Errorf("%s/%s: %w", u.Name, stepName, err)
	}
}
