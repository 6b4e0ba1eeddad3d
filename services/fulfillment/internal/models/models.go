package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is a customer or an administrator (AccessID 1).
type User struct {
	ID       uint   `gorm:"primaryKey"                 json:"id"`
	Fullname string `gorm:"not null"                   json:"fullname"`
	Username string `gorm:"uniqueIndex;not null"       json:"username"`
	AccessID int    `gorm:"not null;default:2"         json:"access_id"`

	Orders []Order `gorm:"foreignKey:CustomerID;constraint:OnDelete:RESTRICT" json:"-"`
}

type Product struct {
	ID       uint            `gorm:"primaryKey"                        json:"id"`
	Name     string          `gorm:"not null"                          json:"name"`
	Category string          `gorm:"not null;default:''"               json:"category"`
	Price    decimal.Decimal `gorm:"type:numeric(12,2);not null"       json:"price"`
	Cost     decimal.Decimal `gorm:"type:numeric(12,2);not null"       json:"cost"`
	Status   string          `gorm:"not null;default:'AVAILABLE'"      json:"status"`

	Inventory  *Inventory  `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT" json:"-"`
	OrderItems []OrderItem `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT" json:"-"`
}

type Inventory struct {
	ID            uint      `gorm:"primaryKey"                                          json:"id"`
	ProductID     uint      `gorm:"uniqueIndex;not null"                                json:"product_id"`
	CurrentStock  int       `gorm:"not null;default:0;check:current_stock >= 0"         json:"current_stock"`
	PreviousStock int       `gorm:"not null;default:0"                                  json:"previous_stock"`
	UpdatedAt     time.Time `gorm:"not null"                                            json:"updated_at"`

	History []InventoryHistory `gorm:"foreignKey:InventoryID;constraint:OnDelete:RESTRICT" json:"-"`
}

func (Inventory) TableName() string { return "inventory" }

// InventoryHistory rows are insert-only.
type InventoryHistory struct {
	ID          uint      `gorm:"primaryKey"               json:"id"`
	InventoryID uint      `gorm:"index;not null"           json:"inventory_id"`
	StockBefore int       `gorm:"not null"                 json:"stock_before"`
	StockAfter  int       `gorm:"not null"                 json:"stock_after"`
	Status      string    `gorm:"not null"                 json:"status"`
	OrderID     *uint     `gorm:"index"                    json:"order_id,omitempty"`
	Date        time.Time `gorm:"not null"                 json:"date"`
}

func (InventoryHistory) TableName() string { return "inventory_history" }

type Order struct {
	ID               uint            `gorm:"primaryKey"                   json:"id"`
	CustomerID       uint            `gorm:"index;not null"               json:"customer_id"`
	Date             time.Time       `gorm:"not null"                     json:"date"`
	Total            decimal.Decimal `gorm:"type:numeric(12,2);not null"  json:"total"`
	PaymentType      string          `gorm:"not null;default:''"          json:"payment_type"`
	PaymentReference *string         `gorm:"uniqueIndex"                  json:"payment_reference,omitempty"`
	Details          string          `gorm:"not null;default:''"          json:"details"`
	DeliveryAddress  string          `gorm:"not null"                     json:"delivery_address"`
	Status           string          `gorm:"index;not null"               json:"status"`

	Items          []OrderItem        `gorm:"foreignKey:OrderID;constraint:OnDelete:RESTRICT" json:"-"`
	Schedules      []DeliverySchedule `gorm:"foreignKey:OrderID;constraint:OnDelete:RESTRICT" json:"-"`
	Deliveries     []Delivery         `gorm:"foreignKey:OrderID;constraint:OnDelete:RESTRICT" json:"-"`
	StockMovements []InventoryHistory `gorm:"foreignKey:OrderID;constraint:OnDelete:RESTRICT" json:"-"`
}

type OrderItem struct {
	ID        uint            `gorm:"primaryKey"                   json:"id"`
	OrderID   uint            `gorm:"index;not null"               json:"order_id"`
	ProductID uint            `gorm:"index;not null"               json:"product_id"`
	Quantity  int             `gorm:"not null;check:quantity > 0"  json:"quantity"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null"  json:"price"`
}

type DeliverySchedule struct {
	ID       uint      `gorm:"primaryKey"                  json:"id"`
	OrderID  uint      `gorm:"index;not null"              json:"order_id"`
	Date     time.Time `gorm:"type:date;not null"          json:"date"`
	TimeSlot string    `gorm:"not null"                    json:"time_slot"`
	Status   string    `gorm:"not null;default:'PENDING'"  json:"status"`

	Deliveries []Delivery `gorm:"foreignKey:DeliveryScheduleID;constraint:OnDelete:RESTRICT" json:"-"`
}

type Rider struct {
	ID       uint   `gorm:"primaryKey"                json:"id"`
	Fullname string `gorm:"not null"                  json:"fullname"`
	Username string `gorm:"uniqueIndex;not null"      json:"username"`
	Password string `gorm:"not null"                  json:"-"`
	Status   string `gorm:"index;not null"            json:"status"`

	Deliveries []Delivery      `gorm:"foreignKey:RiderID;constraint:OnDelete:RESTRICT" json:"-"`
	Activities []RiderActivity `gorm:"foreignKey:RiderID;constraint:OnDelete:RESTRICT" json:"-"`
}

// Delivery.OrderID is unique: an order is assigned at most once.
type Delivery struct {
	ID                 uint      `gorm:"primaryKey"             json:"id"`
	OrderID            uint      `gorm:"uniqueIndex;not null"   json:"order_id"`
	DeliveryScheduleID *uint     `gorm:"index"                  json:"delivery_schedule_id,omitempty"`
	RiderID            uint      `gorm:"index;not null"         json:"rider_id"`
	Date               time.Time `gorm:"not null"               json:"date"`
	Status             string    `gorm:"index;not null"         json:"status"`

	Activities      []DeliveryActivity `gorm:"foreignKey:DeliveryID;constraint:OnDelete:RESTRICT" json:"-"`
	RiderActivities []RiderActivity    `gorm:"foreignKey:DeliveryID;constraint:OnDelete:RESTRICT" json:"-"`
}

type DeliveryActivity struct {
	ID         uint      `gorm:"primaryKey"          json:"id"`
	DeliveryID uint      `gorm:"index;not null"      json:"delivery_id"`
	Status     string    `gorm:"not null"            json:"status"`
	Remarks    string    `gorm:"not null;default:''" json:"remarks"`
	Date       time.Time `gorm:"not null"            json:"date"`
}

type RiderActivity struct {
	ID         uint      `gorm:"primaryKey"          json:"id"`
	RiderID    uint      `gorm:"index;not null"      json:"rider_id"`
	DeliveryID *uint     `gorm:"index"               json:"delivery_id,omitempty"`
	Status     string    `gorm:"not null"            json:"status"`
	Remarks    string    `gorm:"not null;default:''" json:"remarks"`
	Date       time.Time `gorm:"not null"            json:"date"`
}

// All lists every table in migration order.
func All() []any {
	return []any{
		&User{},
		&Product{},
		&Inventory{},
		&Order{},
		&InventoryHistory{},
		&OrderItem{},
		&DeliverySchedule{},
		&Rider{},
		&Delivery{},
		&DeliveryActivity{},
		&RiderActivity{},
	}
}
