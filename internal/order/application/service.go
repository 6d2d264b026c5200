package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mvaldes-dev/storefront/internal/order/domain"
)

const topSellersLimit = 10

// Service is the query/administration surface over persisted orders. It never
// touches stock or payment state; those mutations belong to the checkout
// pipeline alone.
type Service struct {
	log  *slog.Logger
	repo OrderRepository
}

func NewService(log *slog.Logger, repo OrderRepository) *Service {
	return &Service{log: log, repo: repo}
}

func (s *Service) Get(ctx context.Context, id string) (domain.Order, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, f domain.ListFilter) ([]domain.Order, error) {
	return s.repo.List(ctx, f)
}

func (s *Service) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	return s.repo.List(ctx, domain.ListFilter{UserID: &userID})
}

func (s *Service) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	if !domain.ValidStatus(status) {
		return fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	s.log.Info("order status updated", "order_id", id, "status", status)
	return nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("order deleted", "order_id", id)
	return nil
}

func (s *Service) TopSellingProducts(ctx context.Context) ([]domain.ProductSales, error) {
	return s.repo.TopSellingProducts(ctx, topSellersLimit)
}
