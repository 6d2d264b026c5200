package application

import (
	"context"

	"github.com/mvaldes-dev/storefront/internal/order/domain"
)

type OrderRepository interface {
	Get(ctx context.Context, id string) (domain.Order, error)
	List(ctx context.Context, f domain.ListFilter) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error
	Delete(ctx context.Context, id string) error
	TopSellingProducts(ctx context.Context, limit int) ([]domain.ProductSales, error)
}
