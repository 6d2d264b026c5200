package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvaldes-dev/storefront/internal/checkout/domain"
)

func TestBuildManifest_PricesFromStore(t *testing.T) {
	store := newMemStore(
		domain.Product{ID: 5, Name: "Mate Imperial", PriceCents: 1000, Stock: 3},
		domain.Product{ID: 7, Name: "Bombilla", PriceCents: 350, Stock: 10},
	)

	manifest, lines, total, err := BuildManifest(context.Background(), store, []domain.CartItem{
		{ProductID: 5, Quantity: 2},
		{ProductID: 7, Quantity: 1},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2350), total)
	require.Len(t, lines, 2)
	assert.Equal(t, int64(1000), lines[0].UnitCents)
	assert.Equal(t, int64(2000), lines[0].SubtotalCents)
	assert.Equal(t, "Mate Imperial", lines[0].Name)

	// The manifest carries only (product, quantity) pairs, in cart order.
	require.Len(t, manifest.Items, 2)
	assert.Equal(t, domain.ManifestItem{ProductID: 5, Quantity: 2}, manifest.Items[0])
	assert.Equal(t, domain.ManifestItem{ProductID: 7, Quantity: 1}, manifest.Items[1])
}

func TestBuildManifest_InputValidation(t *testing.T) {
	store := newMemStore(domain.Product{ID: 1, PriceCents: 100, Stock: 5})

	tests := []struct {
		name  string
		items []domain.CartItem
	}{
		{"empty cart", nil},
		{"zero product id", []domain.CartItem{{ProductID: 0, Quantity: 1}}},
		{"negative product id", []domain.CartItem{{ProductID: -4, Quantity: 1}}},
		{"zero quantity", []domain.CartItem{{ProductID: 1, Quantity: 0}}},
		{"negative quantity", []domain.CartItem{{ProductID: 1, Quantity: -2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, err := BuildManifest(context.Background(), store, tt.items)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestBuildManifest_DuplicateLinesSumAgainstStock(t *testing.T) {
	store := newMemStore(domain.Product{ID: 5, Name: "Mate Imperial", PriceCents: 1000, Stock: 3})

	// Each line alone fits the stock of 3, together they do not.
	_, _, _, err := BuildManifest(context.Background(), store, []domain.CartItem{
		{ProductID: 5, Quantity: 2},
		{ProductID: 5, Quantity: 2},
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestBuildManifest_DuplicateLinesWithinStock(t *testing.T) {
	store := newMemStore(domain.Product{ID: 5, Name: "Mate Imperial", PriceCents: 1000, Stock: 3})

	manifest, lines, total, err := BuildManifest(context.Background(), store, []domain.CartItem{
		{ProductID: 5, Quantity: 2},
		{ProductID: 5, Quantity: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3000), total)
	require.Len(t, lines, 2)
	require.Len(t, manifest.Items, 2, "lines are kept as submitted, not merged")
}

func TestBuildManifest_ProductNotFound(t *testing.T) {
	store := newMemStore(domain.Product{ID: 1, PriceCents: 100, Stock: 5})

	_, _, _, err := BuildManifest(context.Background(), store, []domain.CartItem{
		{ProductID: 1, Quantity: 1},
		{ProductID: 99, Quantity: 1},
	})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestBuildManifest_InsufficientStock(t *testing.T) {
	store := newMemStore(domain.Product{ID: 1, PriceCents: 100, Stock: 2})

	_, _, _, err := BuildManifest(context.Background(), store, []domain.CartItem{
		{ProductID: 1, Quantity: 3},
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}
