package domain

import "time"

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPaid      OrderStatus = "paid"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// ValidStatus reports whether s is one of the five order states.
func ValidStatus(s OrderStatus) bool {
	switch s {
	case StatusPending, StatusPaid, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

type Order struct {
	ID         string
	UserID     *int64
	TotalCents int64
	Status     OrderStatus
	Items      []LineItem
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// LineItem snapshots the unit price at confirmation time. PriceCents is
// immutable afterward even if the catalog price changes.
type LineItem struct {
	ProductID  int64
	Name       string
	Quantity   int
	PriceCents int64
}

// LineTotalCents is the sum of quantity times price-at-purchase over all
// lines. It must always equal Order.TotalCents.
func (o Order) LineTotalCents() int64 {
	var total int64
	for _, it := range o.Items {
		total += int64(it.Quantity) * it.PriceCents
	}
	return total
}
