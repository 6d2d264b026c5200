package application

import (
	"context"
	"fmt"

	"github.com/mvaldes-dev/storefront/internal/checkout/domain"
)

// BuildManifest validates and prices a client-submitted cart against the
// current inventory snapshot. It is pure: nothing is written and no stock is
// reserved. The returned total is used only to present the payment session;
// it is re-derived from storage again at confirmation time.
func BuildManifest(ctx context.Context, products ProductReader, items []domain.CartItem) (domain.Manifest, []domain.PricedLine, int64, error) {
	if len(items) == 0 {
		return domain.Manifest{}, nil, 0, fmt.Errorf("%w: cart is empty", domain.ErrInvalidInput)
	}

	ids := make([]int64, 0, len(items))
	// A product may appear on several lines; stock is checked against the
	// summed quantity, not per line.
	needed := make(map[int64]int, len(items))
	for _, it := range items {
		if it.ProductID <= 0 {
			return domain.Manifest{}, nil, 0, fmt.Errorf("%w: product id must be positive", domain.ErrInvalidInput)
		}
		if it.Quantity <= 0 {
			return domain.Manifest{}, nil, 0, fmt.Errorf("%w: quantity must be positive", domain.ErrInvalidInput)
		}
		if _, seen := needed[it.ProductID]; !seen {
			ids = append(ids, it.ProductID)
		}
		needed[it.ProductID] += it.Quantity
	}

	batch, err := products.ProductBatch(ctx, ids)
	if err != nil {
		return domain.Manifest{}, nil, 0, err
	}

	var total int64
	manifest := domain.Manifest{Items: make([]domain.ManifestItem, 0, len(items))}
	lines := make([]domain.PricedLine, 0, len(items))
	for _, it := range items {
		p, ok := batch[it.ProductID]
		if !ok {
			return domain.Manifest{}, nil, 0, fmt.Errorf("%w: product %d", domain.ErrProductNotFound, it.ProductID)
		}
		if needed[it.ProductID] > p.Stock {
			return domain.Manifest{}, nil, 0, fmt.Errorf("%w: product %d", domain.ErrInsufficientStock, it.ProductID)
		}
		sub := int64(it.Quantity) * p.PriceCents
		total += sub
		lines = append(lines, domain.PricedLine{
			ProductID:     p.ID,
			Name:          p.Name,
			Quantity:      it.Quantity,
			UnitCents:     p.PriceCents,
			SubtotalCents: sub,
		})
		manifest.Items = append(manifest.Items, domain.ManifestItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return manifest, lines, total, nil
}
