package domain

import "errors"

var (
	// ErrInvalidInput covers empty or malformed carts and session ids.
	ErrInvalidInput = errors.New("invalid input")

	// ErrProductNotFound means a referenced product does not exist in the catalog.
	ErrProductNotFound = errors.New("product not found")

	// ErrInsufficientStock means a requested quantity exceeds current stock.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrPaymentNotCompleted means the session exists but is not paid.
	ErrPaymentNotCompleted = errors.New("payment not completed")

	// ErrSessionNotFound means the payment provider has no such session.
	ErrSessionNotFound = errors.New("checkout session not found")

	// ErrManifestCorrupt means the manifest embedded in the session metadata
	// cannot be parsed into well-formed (product, quantity) pairs.
	ErrManifestCorrupt = errors.New("manifest corrupt")

	// ErrGatewayUnavailable is a transient provider/transport failure; callers
	// may retry with backoff.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	// ErrMaterializationInFlight means another confirmation for the same
	// session currently holds the claim; the caller should retry shortly.
	ErrMaterializationInFlight = errors.New("materialization already in flight")

	// ErrPersistenceFailure means the storage transaction aborted; the whole
	// unit of work was rolled back and the call is safe to retry.
	ErrPersistenceFailure = errors.New("persistence failure")
)
