package domain

import (
	"fmt"
	"strings"
)

type OrderStatus string

const (
	OrderPaid       OrderStatus = "PAID"
	OrderApproved   OrderStatus = "APPROVED"
	OrderRejected   OrderStatus = "REJECTED"
	OrderOnDelivery OrderStatus = "ON-DELIVERY"
	OrderComplete   OrderStatus = "COMPLETE"
)

// Orders may only be submitted as PAID or APPROVED.
var creationStatuses = map[OrderStatus]bool{
	OrderPaid:     true,
	OrderApproved: true,
}

func ParseCreationStatus(s string) (OrderStatus, error) {
	if strings.TrimSpace(s) == "" {
		return OrderPaid, nil
	}
	st := OrderStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !creationStatuses[st] {
		return "", fmt.Errorf("%w: order status %q is not allowed at creation", ErrValidation, s)
	}
	return st, nil
}

type DeliveryStatus string

const (
	DeliveryPending        DeliveryStatus = "PENDING"
	DeliveryForPickUp      DeliveryStatus = "FOR-PICK-UP"
	DeliveryOutForDelivery DeliveryStatus = "OUT-FOR-DELIVERY"
	DeliveryComplete       DeliveryStatus = "COMPLETE"
)

// deliveryOrder is the forward sequence.
var deliveryOrder = []DeliveryStatus{
	DeliveryPending,
	DeliveryForPickUp,
	DeliveryOutForDelivery,
	DeliveryComplete,
}

func ParseDeliveryStatus(s string) (DeliveryStatus, error) {
	st := DeliveryStatus(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range deliveryOrder {
		if st == known {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: unknown delivery status %q", ErrValidation, s)
}

func (s DeliveryStatus) rank() int {
	for i, known := range deliveryOrder {
		if s == known {
			return i
		}
	}
	return -1
}

type RiderStatus string

const (
	RiderActive   RiderStatus = "ACTIVE"
	RiderInactive RiderStatus = "INACTIVE"
	RiderDeleted  RiderStatus = "DELETED"
)

// RiderActivityStatus covers both the delivery-driven and the administrative
// vocabulary.
type RiderActivityStatus string

const (
	ActivityAssigned       RiderActivityStatus = "ASSIGNED"
	ActivityOutForDelivery RiderActivityStatus = "OUT-FOR-DELIVERY"
	ActivityPickedUp       RiderActivityStatus = "PICKED-UP"
	ActivityDelivered      RiderActivityStatus = "DELIVERED"
	ActivityFailed         RiderActivityStatus = "FAILED"
)

var adminActivityStatuses = map[RiderActivityStatus]bool{
	ActivityAssigned:  true,
	ActivityPickedUp:  true,
	ActivityDelivered: true,
	ActivityFailed:    true,
}

func ParseAdminActivityStatus(s string) (RiderActivityStatus, error) {
	st := RiderActivityStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !adminActivityStatuses[st] {
		return "", fmt.Errorf("%w: rider activity status %q is not allowed", ErrValidation, s)
	}
	return st, nil
}

type ScheduleStatus string

const (
	SchedulePending  ScheduleStatus = "PENDING"
	ScheduleAssigned ScheduleStatus = "ASSIGNED"
	ScheduleComplete ScheduleStatus = "COMPLETE"
)

type TimeSlot string

const (
	SlotMorning TimeSlot = "MORNING"
	SlotEvening TimeSlot = "EVENING"
)

func ParseTimeSlot(s string) (TimeSlot, error) {
	switch TimeSlot(strings.ToUpper(strings.TrimSpace(s))) {
	case SlotMorning:
		return SlotMorning, nil
	case SlotEvening:
		return SlotEvening, nil
	}
	return "", fmt.Errorf("%w: time_slot must be MORNING or EVENING, got %q", ErrValidation, s)
}

type ProductStatus string

const (
	ProductAvailable   ProductStatus = "AVAILABLE"
	ProductUnavailable ProductStatus = "UNAVAILABLE"
	ProductDeleted     ProductStatus = "DELETED"
)

func ParseProductStatus(s string) (ProductStatus, error) {
	if strings.TrimSpace(s) == "" {
		return ProductAvailable, nil
	}
	switch st := ProductStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case ProductAvailable, ProductUnavailable, ProductDeleted:
		return st, nil
	}
	return "", fmt.Errorf("%w: unknown product status %q", ErrValidation, s)
}
