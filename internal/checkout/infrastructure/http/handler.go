package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/mvaldes-dev/storefront/internal/checkout/application"
	"github.com/mvaldes-dev/storefront/internal/checkout/domain"
	"github.com/mvaldes-dev/storefront/pkg/metrics"
)

// CheckoutService is what the handler needs from the application layer.
type CheckoutService interface {
	OpenCheckout(ctx context.Context, items []domain.CartItem, userID *int64) (application.SessionHandle, int64, error)
	Materialize(ctx context.Context, sessionID string) (application.MaterializedOrder, error)
}

type Handler struct {
	log     *slog.Logger
	service CheckoutService
	mtx     *metrics.CheckoutMetrics
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service CheckoutService, mtx *metrics.CheckoutMetrics) *Handler {
	return &Handler{
		log:     log,
		service: service,
		mtx:     mtx,
		tracer:  otel.Tracer("checkout-http"),
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/", h.openCheckout)
	r.Post("/confirm", h.confirm)
	return r
}

type openCheckoutReq struct {
	Items  []domain.CartItem `json:"items"`
	UserID *int64            `json:"user_id,omitempty"`
}

type openCheckoutResp struct {
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
	TotalAmount string `json:"total_amount"`
}

func (h *Handler) openCheckout(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "OpenCheckout")
	defer span.End()

	var req openCheckoutReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ErrInvalidInput)
		return
	}

	handle, totalCents, err := h.service.OpenCheckout(ctx, req.Items, req.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	h.mtx.SessionsOpened.Inc()

	writeJSON(w, http.StatusCreated, openCheckoutResp{
		SessionID:   handle.ID,
		CheckoutURL: handle.RedirectURL,
		TotalAmount: formatCents(totalCents),
	})
}

type confirmReq struct {
	SessionID string `json:"session_id"`
}

type confirmResp struct {
	OrderID     string `json:"order_id"`
	TotalAmount string `json:"total_amount"`
}

func (h *Handler) confirm(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ConfirmCheckout")
	defer span.End()

	var req confirmReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ErrInvalidInput)
		return
	}

	ord, err := h.service.Materialize(ctx, req.SessionID)
	if err != nil {
		h.mtx.MaterializeFailed.WithLabelValues(errorKind(err)).Inc()
		writeError(w, err)
		return
	}
	h.mtx.OrdersMaterialized.Inc()

	writeJSON(w, http.StatusCreated, confirmResp{
		OrderID:     ord.OrderID,
		TotalAmount: formatCents(ord.TotalCents),
	})
}

func formatCents(cents int64) string {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100)).StringFixed(2)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, domain.ErrProductNotFound):
		return "product_not_found"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrPaymentNotCompleted):
		return "payment_not_completed"
	case errors.Is(err, domain.ErrSessionNotFound):
		return "session_not_found"
	case errors.Is(err, domain.ErrManifestCorrupt):
		return "manifest_corrupt"
	case errors.Is(err, domain.ErrMaterializationInFlight):
		return "materialization_in_flight"
	case errors.Is(err, domain.ErrGatewayUnavailable):
		return "gateway_unavailable"
	default:
		return "persistence_failure"
	}
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrProductNotFound), errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientStock), errors.Is(err, domain.ErrMaterializationInFlight):
		return http.StatusConflict
	case errors.Is(err, domain.ErrPaymentNotCompleted):
		return http.StatusPaymentRequired
	case errors.Is(err, domain.ErrManifestCorrupt):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrGatewayUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, errorStatus(err), errorBody{Error: errorDetail{
		Kind:    errorKind(err),
		Message: err.Error(),
	}})
}
