package domain

// OrderCreated is published through the outbox once a payment session has
// been materialized into an order.
type OrderCreated struct {
	OrderID    string         `json:"order_id"`
	UserID     *int64         `json:"user_id,omitempty"`
	SessionID  string         `json:"session_id"`
	TotalCents int64          `json:"total_cents"`
	Items      []ManifestItem `json:"items"`
}
