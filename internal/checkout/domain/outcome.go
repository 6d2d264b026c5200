package domain

// PaymentStatus is the provider-reported payment state, passed through verbatim.
type PaymentStatus string

const (
	PaymentStatusPaid   PaymentStatus = "paid"
	PaymentStatusUnpaid PaymentStatus = "unpaid"
	PaymentStatusFailed PaymentStatus = "failed"
)

// Outcome is what the gateway returns for a retrieved checkout session.
type Outcome struct {
	SessionID     string
	PaymentStatus PaymentStatus
	Manifest      Manifest
}
