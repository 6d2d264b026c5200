package application

import (
	"context"

	"github.com/mvaldes-dev/storefront/internal/checkout/domain"
)

// ProductReader is the inventory snapshot read used at session-open time.
type ProductReader interface {
	ProductBatch(ctx context.Context, ids []int64) (map[int64]domain.Product, error)
}

// SessionHandle identifies a hosted payment session at the provider.
type SessionHandle struct {
	ID          string
	RedirectURL string
}

// Gateway is the boundary to the external payment provider. It performs no
// pricing or inventory logic.
type Gateway interface {
	OpenSession(ctx context.Context, m domain.Manifest, lines []domain.PricedLine, totalCents int64) (SessionHandle, error)
	RetrieveOutcome(ctx context.Context, sessionID string) (domain.Outcome, error)
}

// MaterializedOrder is the durable result of a confirmed payment.
type MaterializedOrder struct {
	OrderID    string
	TotalCents int64
	Lines      []domain.PricedLine
}

// OrderWriter owns the atomic unit of work that turns a manifest into an
// order: re-read stock under row locks, re-price, insert order and lines,
// decrement stock. All of it commits or none of it does. OrderForSession
// resolves the durable session mapping so repeated confirmations return the
// already-materialized order.
type OrderWriter interface {
	MaterializeOrder(ctx context.Context, sessionID string, m domain.Manifest) (MaterializedOrder, error)
	OrderForSession(ctx context.Context, sessionID string) (MaterializedOrder, bool, error)
}

// Guard serializes concurrent confirmations of the same session. Claim
// returns false when another caller currently holds the claim.
type Guard interface {
	Claim(ctx context.Context, sessionID string) (bool, error)
	Release(ctx context.Context, sessionID string) error
}
