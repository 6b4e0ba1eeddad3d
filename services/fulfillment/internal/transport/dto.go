package transport

import "github.com/shopspring/decimal"

type CreateOrderItem struct {
	ProductID uint             `json:"product_id" validate:"required"`
	Quantity  int              `json:"quantity"   validate:"gt=0"`
	Price     *decimal.Decimal `json:"price"      validate:"required"`
}

type CreateOrderSchedule struct {
	Date     string `json:"date"      validate:"required"`
	TimeSlot string `json:"time_slot" validate:"required"`
}

type CreateOrderRequest struct {
	// CustomerID is honoured only for privileged callers.
	CustomerID       uint                  `json:"customer_id"`
	Status           string                `json:"status"`
	PaymentType      string                `json:"payment_type"`
	PaymentReference string                `json:"payment_reference"`
	Details          string                `json:"details"`
	DeliveryAddress  string                `json:"delivery_address" validate:"required"`
	Schedules        []CreateOrderSchedule `json:"schedules"        validate:"required,min=1,dive"`
	Items            []CreateOrderItem     `json:"items"            validate:"required,min=1,dive"`
}

type AdjustStockRequest struct {
	CurrentStock *int `json:"current_stock" validate:"required"`
}

type CreateProductRequest struct {
	Name     string           `json:"name"     validate:"required"`
	Category string           `json:"category"`
	Price    *decimal.Decimal `json:"price"    validate:"required"`
	Cost     *decimal.Decimal `json:"cost"`
	Status   string           `json:"status"`
}

type AssignRiderRequest struct {
	OrderID            uint   `json:"order_id"             validate:"required"`
	RiderID            uint   `json:"rider_id"             validate:"required"`
	Date               string `json:"date"`
	DeliveryScheduleID *uint  `json:"delivery_schedule_id"`
}

type AdvanceDeliveryRequest struct {
	Status  string `json:"status"  validate:"required"`
	Remarks string `json:"remarks" validate:"max=500"`
}

type CreateRiderRequest struct {
	Fullname string `json:"fullname" validate:"required"`
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=6"`
	Status   string `json:"status"`
}

type CreateRiderActivityRequest struct {
	Status     string `json:"status"      validate:"required"`
	DeliveryID *uint  `json:"delivery_id"`
	Remarks    string `json:"remarks"     validate:"max=500"`
}
