package stripe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	stripego "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"

	"github.com/mvaldes-dev/storefront/internal/checkout/application"
	"github.com/mvaldes-dev/storefront/internal/checkout/domain"
)

const manifestMetadataKey = "manifest"

// Config is resolved once at startup and handed to the gateway; there is no
// package-level client state.
type Config struct {
	APIKey     string
	Currency   string
	SuccessURL string
	CancelURL  string
}

// Gateway adapts the Stripe Checkout Session API to the checkout ports. It
// carries the compact manifest through the session metadata and performs no
// pricing or inventory logic of its own.
type Gateway struct {
	log *slog.Logger
	api *client.API
	cfg Config
}

func NewGateway(log *slog.Logger, cfg Config) *Gateway {
	api := &client.API{}
	api.Init(cfg.APIKey, nil)
	return &Gateway{log: log, api: api, cfg: cfg}
}

// OpenSession requests a hosted payment page for the priced cart. The
// manifest goes into metadata without price: price-at-purchase is re-derived
// from storage at confirmation time, so nothing carried through this channel
// can change what is charged against.
func (g *Gateway) OpenSession(ctx context.Context, m domain.Manifest, lines []domain.PricedLine, totalCents int64) (application.SessionHandle, error) {
	encoded, err := m.Encode()
	if err != nil {
		return application.SessionHandle{}, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}

	params := &stripego.CheckoutSessionParams{
		Params:             stripego.Params{Context: ctx},
		Mode:               stripego.String(string(stripego.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripego.StringSlice([]string{"card"}),
		SuccessURL:         stripego.String(g.cfg.SuccessURL),
		CancelURL:          stripego.String(g.cfg.CancelURL),
	}
	for _, ln := range lines {
		params.LineItems = append(params.LineItems, &stripego.CheckoutSessionLineItemParams{
			Quantity: stripego.Int64(int64(ln.Quantity)),
			PriceData: &stripego.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripego.String(g.cfg.Currency),
				UnitAmount: stripego.Int64(ln.UnitCents),
				ProductData: &stripego.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripego.String(ln.Name),
				},
			},
		})
	}
	params.AddMetadata(manifestMetadataKey, encoded)

	sess, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		g.log.Error("stripe session create failed", "err", err)
		return application.SessionHandle{}, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	return application.SessionHandle{ID: sess.ID, RedirectURL: sess.URL}, nil
}

// RetrieveOutcome fetches the session by id and returns the provider payment
// status verbatim together with the embedded manifest.
func (g *Gateway) RetrieveOutcome(ctx context.Context, sessionID string) (domain.Outcome, error) {
	sess, err := g.api.CheckoutSessions.Get(sessionID, &stripego.CheckoutSessionParams{
		Params: stripego.Params{Context: ctx},
	})
	if err != nil {
		var stripeErr *stripego.Error
		if errors.As(err, &stripeErr) && stripeErr.Code == stripego.ErrorCodeResourceMissing {
			return domain.Outcome{}, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
		}
		g.log.Error("stripe session retrieve failed", "session_id", sessionID, "err", err)
		return domain.Outcome{}, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}

	manifest, err := domain.DecodeManifest(sess.Metadata[manifestMetadataKey])
	if err != nil {
		return domain.Outcome{}, err
	}
	return domain.Outcome{
		SessionID:     sess.ID,
		PaymentStatus: domain.PaymentStatus(sess.PaymentStatus),
		Manifest:      manifest,
	}, nil
}
