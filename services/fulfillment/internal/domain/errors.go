package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation        = errors.New("validation")          // 400
	ErrNotFound          = errors.New("not found")           // 404
	ErrConflict          = errors.New("conflict")            // 409
	ErrInsufficientStock = errors.New("insufficient stock")  // 409
	ErrInvalidState      = errors.New("invalid state")       // 409
	ErrForbidden         = errors.New("forbidden")           // 403
	ErrUnavailable       = errors.New("storage unavailable") // 503, retryable
)

// StockError carries the shortfall for a single product.
type StockError struct {
	ProductID uint
	Name      string
	Available int
	Requested int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d (%s): available %d, requested %d",
		e.ProductID, e.Name, e.Available, e.Requested)
}

func (e *StockError) Unwrap() error { return ErrInsufficientStock }

// Retryable reports whether err is worth another attempt.
func Retryable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
