package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mvaldes-dev/storefront/internal/checkout/domain"
)

// Service drives the checkout pipeline: cart to hosted payment session, and
// confirmed payment session to persisted order.
type Service struct {
	log      *slog.Logger
	products ProductReader
	gateway  Gateway
	orders   OrderWriter
	guard    Guard
}

func NewService(log *slog.Logger, products ProductReader, gateway Gateway, orders OrderWriter, guard Guard) *Service {
	return &Service{
		log:      log,
		products: products,
		gateway:  gateway,
		orders:   orders,
		guard:    guard,
	}
}

// OpenCheckout validates and prices the cart, then opens a hosted payment
// session carrying the compact manifest. No stock is reserved here: stock is
// only decremented once payment is confirmed.
func (s *Service) OpenCheckout(ctx context.Context, items []domain.CartItem, userID *int64) (SessionHandle, int64, error) {
	manifest, lines, total, err := BuildManifest(ctx, s.products, items)
	if err != nil {
		return SessionHandle{}, 0, err
	}
	manifest.UserID = userID

	handle, err := s.gateway.OpenSession(ctx, manifest, lines, total)
	if err != nil {
		return SessionHandle{}, 0, err
	}
	s.log.Info("checkout session opened", "session_id", handle.ID, "total_cents", total)
	return handle, total, nil
}

// Materialize converts a confirmed payment session into a persisted order.
// It is idempotent per session: repeated or concurrent calls yield the same
// order id, and stock is decremented exactly once.
func (s *Service) Materialize(ctx context.Context, sessionID string) (MaterializedOrder, error) {
	if sessionID == "" {
		return MaterializedOrder{}, fmt.Errorf("%w: session id is required", domain.ErrInvalidInput)
	}

	outcome, err := s.gateway.RetrieveOutcome(ctx, sessionID)
	if err != nil {
		return MaterializedOrder{}, err
	}
	if outcome.PaymentStatus != domain.PaymentStatusPaid {
		return MaterializedOrder{}, fmt.Errorf("%w: session status is %q", domain.ErrPaymentNotCompleted, outcome.PaymentStatus)
	}

	// Fast path: a previous confirmation already materialized this session.
	if ord, ok, err := s.orders.OrderForSession(ctx, sessionID); err != nil {
		return MaterializedOrder{}, err
	} else if ok {
		return ord, nil
	}

	acquired, err := s.guard.Claim(ctx, sessionID)
	if err != nil {
		return MaterializedOrder{}, err
	}
	if !acquired {
		// Another confirmation holds the claim. It may already have finished.
		if ord, ok, err := s.orders.OrderForSession(ctx, sessionID); err != nil {
			return MaterializedOrder{}, err
		} else if ok {
			return ord, nil
		}
		return MaterializedOrder{}, domain.ErrMaterializationInFlight
	}

	ord, err := s.orders.MaterializeOrder(ctx, sessionID, outcome.Manifest)
	if err != nil {
		// The unit of work rolled back; retract the claim so a later attempt
		// can succeed once inventory allows it.
		if relErr := s.guard.Release(ctx, sessionID); relErr != nil {
			s.log.Error("claim release failed", "session_id", sessionID, "err", relErr)
		}
		return MaterializedOrder{}, err
	}

	// The order row itself is the durable session-to-order record; the lease
	// has done its job and can go.
	if err := s.guard.Release(ctx, sessionID); err != nil {
		s.log.Error("claim release failed", "session_id", sessionID, "err", err)
	}
	s.log.Info("order materialized", "session_id", sessionID, "order_id", ord.OrderID, "total_cents", ord.TotalCents)
	return ord, nil
}
