package transport

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/bakery_shop/services/fulfillment/internal/domain"
	"github.com/Skotchmaster/bakery_shop/services/fulfillment/internal/models"
	"github.com/Skotchmaster/bakery_shop/services/fulfillment/internal/repo"
)

const dateLayout = "2006-01-02"

type PageMeta struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
}

type DataResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
}

type ListResponse struct {
	Message string    `json:"message"`
	Count   int64     `json:"count"`
	Data    any       `json:"data"`
	Meta    *PageMeta `json:"meta,omitempty"`
}

type CreateOrderResponse struct {
	OrderID uint   `json:"order_id"`
	Total   string `json:"total"`
}

type OrderView struct {
	ID               uint      `json:"id"`
	CustomerID       uint      `json:"customer_id"`
	Date             time.Time `json:"date"`
	Total            string    `json:"total"`
	PaymentType      string    `json:"payment_type"`
	PaymentReference string    `json:"payment_reference,omitempty"`
	Details          string    `json:"details"`
	DeliveryAddress  string    `json:"delivery_address"`
	Status           string    `json:"status"`
}

type OrderItemView struct {
	ID        uint   `json:"id"`
	ProductID uint   `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
	LineTotal string `json:"line_total"`
}

type ScheduleView struct {
	ID       uint   `json:"id"`
	Date     string `json:"date"`
	TimeSlot string `json:"time_slot"`
	Status   string `json:"status"`
}

type OrderDetail struct {
	OrderView
	Items      []OrderItemView `json:"items"`
	Schedules  []ScheduleView  `json:"schedules"`
	Deliveries []DeliveryView  `json:"deliveries"`
}

type InventoryView struct {
	InventoryID   uint      `json:"inventory_id"`
	ProductID     uint      `json:"product_id"`
	ProductName   string    `json:"product_name"`
	Category      string    `json:"category"`
	ProductStatus string    `json:"product_status"`
	CurrentStock  int       `json:"current_stock"`
	PreviousStock int       `json:"previous_stock"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type StockChangeView struct {
	ProductID   uint   `json:"product_id"`
	InventoryID uint   `json:"inventory_id"`
	StockBefore int    `json:"stock_before"`
	StockAfter  int    `json:"stock_after"`
	Status      string `json:"status"`
}

type ProductView struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Price    string `json:"price"`
	Cost     string `json:"cost"`
	Status   string `json:"status"`
}

type DeliveryView struct {
	ID                 uint      `json:"id"`
	OrderID            uint      `json:"order_id"`
	DeliveryScheduleID *uint     `json:"delivery_schedule_id,omitempty"`
	RiderID            uint      `json:"rider_id"`
	Date               time.Time `json:"date"`
	Status             string    `json:"status"`
}

type ActivityView struct {
	ID         uint      `json:"id"`
	DeliveryID *uint     `json:"delivery_id,omitempty"`
	RiderID    uint      `json:"rider_id,omitempty"`
	Status     string    `json:"status"`
	Remarks    string    `json:"remarks"`
	Date       time.Time `json:"date"`
}

type DeliveryDetail struct {
	DeliveryView
	Activities      []ActivityView `json:"activities"`
	RiderActivities []ActivityView `json:"rider_activities"`
}

type AdvanceResult struct {
	DeliveryID     uint   `json:"delivery_id"`
	PreviousStatus string `json:"previous_status"`
	CurrentStatus  string `json:"current_status"`
	OrderStatus    string `json:"order_status"`
	RiderActivity  string `json:"rider_activity"`
}

type RiderView struct {
	ID       uint   `json:"id"`
	Fullname string `json:"fullname"`
	Username string `json:"username"`
	Status   string `json:"status"`
}

func ToOrderView(o models.Order) OrderView {
	v := OrderView{
		ID:              o.ID,
		CustomerID:      o.CustomerID,
		Date:            o.Date,
		Total:           o.Total.StringFixed(2),
		PaymentType:     o.PaymentType,
		Details:         o.Details,
		DeliveryAddress: o.DeliveryAddress,
		Status:          o.Status,
	}
	if o.PaymentReference != nil {
		v.PaymentReference = *o.PaymentReference
	}
	return v
}

func ToOrderViews(orders []models.Order) []OrderView {
	out := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		out = append(out, ToOrderView(o))
	}
	return out
}

func ToOrderDetail(o models.Order) OrderDetail {
	d := OrderDetail{
		OrderView:  ToOrderView(o),
		Items:      make([]OrderItemView, 0, len(o.Items)),
		Schedules:  make([]ScheduleView, 0, len(o.Schedules)),
		Deliveries: make([]DeliveryView, 0, len(o.Deliveries)),
	}
	for _, it := range o.Items {
		d.Items = append(d.Items, OrderItemView{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price.StringFixed(2),
			LineTotal: it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))).StringFixed(2),
		})
	}
	for _, s := range o.Schedules {
		d.Schedules = append(d.Schedules, ToScheduleView(s))
	}
	for _, del := range o.Deliveries {
		d.Deliveries = append(d.Deliveries, ToDeliveryView(del))
	}
	return d
}

func ToScheduleView(s models.DeliverySchedule) ScheduleView {
	return ScheduleView{
		ID:       s.ID,
		Date:     s.Date.Format(dateLayout),
		TimeSlot: s.TimeSlot,
		Status:   s.Status,
	}
}

func ToProductView(p models.Product) ProductView {
	return ProductView{
		ID:       p.ID,
		Name:     p.Name,
		Category: p.Category,
		Price:    p.Price.StringFixed(2),
		Cost:     p.Cost.StringFixed(2),
		Status:   p.Status,
	}
}

func ToDeliveryView(d models.Delivery) DeliveryView {
	return DeliveryView{
		ID:                 d.ID,
		OrderID:            d.OrderID,
		DeliveryScheduleID: d.DeliveryScheduleID,
		RiderID:            d.RiderID,
		Date:               d.Date,
		Status:             d.Status,
	}
}

func ToDeliveryViews(rows []models.Delivery) []DeliveryView {
	out := make([]DeliveryView, 0, len(rows))
	for _, d := range rows {
		out = append(out, ToDeliveryView(d))
	}
	return out
}

func ToDeliveryDetail(d models.Delivery) DeliveryDetail {
	out := DeliveryDetail{
		DeliveryView:    ToDeliveryView(d),
		Activities:      make([]ActivityView, 0, len(d.Activities)),
		RiderActivities: make([]ActivityView, 0, len(d.RiderActivities)),
	}
	for _, a := range d.Activities {
		id := a.DeliveryID
		out.Activities = append(out.Activities, ActivityView{
			ID:         a.ID,
			DeliveryID: &id,
			Status:     a.Status,
			Remarks:    a.Remarks,
			Date:       a.Date,
		})
	}
	for _, a := range d.RiderActivities {
		out.RiderActivities = append(out.RiderActivities, ToRiderActivityView(a))
	}
	return out
}

func ToRiderActivityView(a models.RiderActivity) ActivityView {
	return ActivityView{
		ID:         a.ID,
		DeliveryID: a.DeliveryID,
		RiderID:    a.RiderID,
		Status:     a.Status,
		Remarks:    a.Remarks,
		Date:       a.Date,
	}
}

func ToRiderView(r models.Rider) RiderView {
	return RiderView{ID: r.ID, Fullname: r.Fullname, Username: r.Username, Status: r.Status}
}

func ToRiderViews(rows []models.Rider) []RiderView {
	out := make([]RiderView, 0, len(rows))
	for _, r := range rows {
		out = append(out, ToRiderView(r))
	}
	return out
}

func ToInventoryViews(rows []repo.InventoryRow) []InventoryView {
	out := make([]InventoryView, 0, len(rows))
	for _, r := range rows {
		out = append(out, InventoryView{
			InventoryID:   r.InventoryID,
			ProductID:     r.ProductID,
			ProductName:   r.ProductName,
			Category:      r.Category,
			ProductStatus: r.ProductStatus,
			CurrentStock:  r.CurrentStock,
			PreviousStock: r.PreviousStock,
			UpdatedAt:     r.UpdatedAt,
		})
	}
	return out
}

func ToStockChangeView(c domain.StockChange) StockChangeView {
	return StockChangeView{
		ProductID:   c.ProductID,
		InventoryID: c.InventoryID,
		StockBefore: c.StockBefore,
		StockAfter:  c.StockAfter,
		Status:      string(c.Label),
	}
}

func NewPageMeta(page, size int, total int64) *PageMeta {
	return &PageMeta{
		Page:       page,
		Size:       size,
		Total:      total,
		TotalPages: (total + int64(size) - 1) / int64(size),
		HasPrev:    page > 1,
		HasNext:    int64(page*size) < total,
	}
}
