package domain

import "time"

// ListFilter narrows an order listing. Nil fields are ignored; results are
// always newest first.
type ListFilter struct {
	ID            *string
	Status        *OrderStatus
	UserID        *int64
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
	MinTotalCents *int64
	MaxTotalCents *int64
}

// ProductSales is one row of the top-sellers aggregation.
type ProductSales struct {
	ProductID int64
	Name      string
	UnitsSold int64
}
