package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/mvaldes-dev/storefront/internal/order/domain"
)

type OrderService interface {
	Get(ctx context.Context, id string) (domain.Order, error)
	List(ctx context.Context, f domain.ListFilter) ([]domain.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error
	Delete(ctx context.Context, id string) error
	TopSellingProducts(ctx context.Context) ([]domain.ProductSales, error)
}

type Handler struct {
	log     *slog.Logger
	service OrderService
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service OrderService) *Handler {
	return &Handler{
		log:     log,
		service: service,
		tracer:  otel.Tracer("order-http"),
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Get("/stats/top-products", h.topProducts)
	r.Get("/user/{userID}", h.listByUser)
	r.Get("/{id}", h.get)
	r.Patch("/{id}/status", h.updateStatus)
	r.Delete("/{id}", h.remove)
	return r
}

type lineItemResp struct {
	ProductID       int64  `json:"product_id"`
	Name            string `json:"name"`
	Quantity        int    `json:"quantity"`
	PriceAtPurchase string `json:"price_at_purchase"`
}

type orderResp struct {
	ID          string         `json:"id"`
	UserID      *int64         `json:"user_id,omitempty"`
	TotalAmount string         `json:"total_amount"`
	Status      string         `json:"status"`
	Items       []lineItemResp `json:"items"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func toOrderResp(o domain.Order) orderResp {
	items := make([]lineItemResp, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, lineItemResp{
			ProductID:       it.ProductID,
			Name:            it.Name,
			Quantity:        it.Quantity,
			PriceAtPurchase: formatCents(it.PriceCents),
		})
	}
	return orderResp{
		ID:          o.ID,
		UserID:      o.UserID,
		TotalAmount: formatCents(o.TotalCents),
		Status:      string(o.Status),
		Items:       items,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

func formatCents(cents int64) string {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100)).StringFixed(2)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ListOrders")
	defer span.End()

	f, err := filterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}
	orders, err := h.service.List(ctx, f)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeOrders(w, orders)
}

func (h *Handler) listByUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ListUserOrders")
	defer span.End()

	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || userID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_input", "user id must be a positive integer")
		return
	}
	orders, err := h.service.ListByUser(ctx, userID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeOrders(w, orders)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetOrder")
	defer span.End()

	o, err := h.service.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResp(o))
}

type updateStatusReq struct {
	Status string `json:"status"`
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UpdateOrderStatus")
	defer span.End()

	var req updateStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid body")
		return
	}
	if err := h.service.UpdateStatus(ctx, chi.URLParam(r, "id"), domain.OrderStatus(req.Status)); err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": req.Status})
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "DeleteOrder")
	defer span.End()

	if err := h.service.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type productSalesResp struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	UnitsSold int64  `json:"units_sold"`
}

func (h *Handler) topProducts(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "TopSellingProducts")
	defer span.End()

	sales, err := h.service.TopSellingProducts(ctx)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	out := make([]productSalesResp, 0, len(sales))
	for _, s := range sales {
		out = append(out, productSalesResp{ProductID: s.ProductID, Name: s.Name, UnitsSold: s.UnitsSold})
	}
	writeJSON(w, http.StatusOK, out)
}

func filterFromQuery(r *http.Request) (domain.ListFilter, error) {
	var f domain.ListFilter
	q := r.URL.Query()

	if v := q.Get("id"); v != "" {
		// The column is a UUID; a malformed value would otherwise abort the
		// query instead of reading as a client error.
		if _, err := uuid.Parse(v); err != nil {
			return f, errors.New("id must be a UUID")
		}
		f.ID = &v
	}
	if v := q.Get("status"); v != "" {
		st := domain.OrderStatus(v)
		if !domain.ValidStatus(st) {
			return f, domain.ErrInvalidStatus
		}
		f.Status = &st
	}
	if v := q.Get("user_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return f, errors.New("user_id must be an integer")
		}
		f.UserID = &id
	}
	if v := q.Get("date_from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return f, errors.New("date_from must be RFC3339")
		}
		f.CreatedFrom = &t
	}
	if v := q.Get("date_to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return f, errors.New("date_to must be RFC3339")
		}
		f.CreatedTo = &t
	}
	if v := q.Get("min_total"); v != "" {
		cents, err := parseAmountCents(v)
		if err != nil {
			return f, err
		}
		f.MinTotalCents = &cents
	}
	if v := q.Get("max_total"); v != "" {
		cents, err := parseAmountCents(v)
		if err != nil {
			return f, err
		}
		f.MaxTotalCents = &cents
	}
	return f, nil
}

func parseAmountCents(v string) (int64, error) {
	d, err := decimal.NewFromString(v)
	if err != nil {
		return 0, errors.New("amount must be a decimal number")
	}
	return d.Mul(decimal.NewFromInt(100)).IntPart(), nil
}

func writeOrders(w http.ResponseWriter, orders []domain.Order) {
	out := make([]orderResp, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResp(o))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, "order_not_found", err.Error())
	case errors.Is(err, domain.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
	default:
		h.log.Error("order request failed", "err", err)
		writeError(w, http.StatusInternalServerError, "persistence_failure", "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, kind, msg string) {
	writeJSON(w, status, map[string]map[string]string{
		"error": {"kind": kind, "message": msg},
	})
}
