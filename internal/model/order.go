package model

import (
	"time"
)

// Order represents a customer order for the storefront product.
type Order struct {
	ID             string    `json:"id" db:"id"`
	FullName       string    `json:"fullName" db:"full_name"`
	Address        string    `json:"address" db:"address"`
	Mobile         string    `json:"mobile" db:"mobile"`
	Email          *string   `json:"email,omitempty" db:"email"`
	Product        string    `json:"product" db:"product"`
	Quantity       Quantity  `json:"quantity" db:"quantity"`
	Status         Status    `json:"status" db:"status"`
	Price          *int64    `json:"price,omitempty" db:"price"`
	DeliveryCharge *int64    `json:"deliveryCharge,omitempty" db:"delivery_charge"`
	Discount       *int64    `json:"discount,omitempty" db:"discount"`
	PromoCode      *string   `json:"promoCode,omitempty" db:"promo_code"`
	CourierCompany *string   `json:"courierCompany,omitempty" db:"courier_company"`
	TrackingNumber *string   `json:"trackingNumber,omitempty" db:"tracking_number"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`
}

// OrderRequest represents the storefront submission payload.
type OrderRequest struct {
	FullName  string   `json:"fullName"`
	Address   string   `json:"address"`
	Mobile    string   `json:"mobile"`
	Email     *string  `json:"email,omitempty"`
	Product   string   `json:"product"`
	Quantity  Quantity `json:"quantity"`
	Status    string   `json:"status,omitempty"`
	PromoCode *string  `json:"promoCode,omitempty"`
}

// StatusUpdateRequest is the body of a status change call.
type StatusUpdateRequest struct {
	Status string `json:"status"`
}

// Scope selects which slice of orders a listing covers.
type Scope string

const (
	ScopeAdmin   Scope = "admin"
	ScopeCourier Scope = "courier"
)

// ListParams describes one page request against the order collection.
type ListParams struct {
	Page   int
	Limit  int
	Status Status // empty means all statuses
	Search string
	Scope  Scope
}

// Offset returns the row offset for the requested page.
func (p ListParams) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// OrderPage is the canonical list envelope served by the API:
// {"data": {"orders": [...], "total": n}}.
type OrderPage struct {
	Data OrderPageData `json:"data"`
}

// OrderPageData holds one page of orders and the unpaginated total.
type OrderPageData struct {
	Orders []Order `json:"orders"`
	Total  int     `json:"total"`
	Page   int     `json:"page"`
	Limit  int     `json:"limit"`
}

// Summary aggregates orders for the back-office dashboard.
type Summary struct {
	TotalOrders  int            `json:"totalOrders"`
	ByStatus     map[Status]int `json:"byStatus"`
	TotalRevenue int64          `json:"totalRevenue"`
	Daily        []DailyRevenue `json:"daily"`
}

// DailyRevenue is the order count and revenue for one calendar day (UTC).
type DailyRevenue struct {
	Day     string `json:"day"`
	Orders  int    `json:"orders"`
	Revenue int64  `json:"revenue"`
}
