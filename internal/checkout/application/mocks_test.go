package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/mvaldes-dev/storefront/internal/checkout/domain"
)

// memStore backs both the ProductReader and OrderWriter ports with the same
// semantics the postgres repository has: the mutex stands in for row locks,
// the bySession map for the unique session column.
type memStore struct {
	mu        sync.Mutex
	products  map[int64]domain.Product
	bySession map[string]MaterializedOrder
	writes    int
}

func newMemStore(products ...domain.Product) *memStore {
	m := &memStore{
		products:  make(map[int64]domain.Product),
		bySession: make(map[string]MaterializedOrder),
	}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return m
}

func (m *memStore) ProductBatch(_ context.Context, ids []int64) (map[int64]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[int64]domain.Product)
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (m *memStore) OrderForSession(_ context.Context, sessionID string) (MaterializedOrder, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ord, ok := m.bySession[sessionID]; ok {
		return ord, true, nil
	}
	return MaterializedOrder{}, false, nil
}

func (m *memStore) MaterializeOrder(_ context.Context, sessionID string, manifest domain.Manifest) (MaterializedOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ord, ok := m.bySession[sessionID]; ok {
		return ord, nil
	}

	needed := make(map[int64]int, len(manifest.Items))
	for _, it := range manifest.Items {
		needed[it.ProductID] += it.Quantity
	}

	var total int64
	lines := make([]domain.PricedLine, 0, len(manifest.Items))
	for _, it := range manifest.Items {
		p, ok := m.products[it.ProductID]
		if !ok {
			return MaterializedOrder{}, fmt.Errorf("%w: product %d", domain.ErrProductNotFound, it.ProductID)
		}
		if needed[it.ProductID] > p.Stock {
			return MaterializedOrder{}, fmt.Errorf("%w: product %d", domain.ErrInsufficientStock, it.ProductID)
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
	}
	for _, it := range manifest.Items {
		p := m.products[it.ProductID]
		p.Stock -= it.Quantity
		m.products[it.ProductID] = p
	}

	m.writes++
	ord := MaterializedOrder{
		OrderID:    fmt.Sprintf("order-%d", m.writes),
		TotalCents: total,
		Lines:      lines,
	}
	m.bySession[sessionID] = ord
	return ord, nil
}

func (m *memStore) stock(id int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[id].Stock
}

func (m *memStore) orderCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.bySession)
}

type memGuard struct {
	mu       sync.Mutex
	held     map[string]bool
	claims   int
	releases int
}

func newMemGuard() *memGuard {
	return &memGuard{held: make(map[string]bool)}
}

func (g *memGuard) Claim(_ context.Context, sessionID string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.claims++
	if g.held[sessionID] {
		return false, nil
	}
	g.held[sessionID] = true
	return true, nil
}

func (g *memGuard) Release(_ context.Context, sessionID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.releases++
	delete(g.held, sessionID)
	return nil
}

func (g *memGuard) heldCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.held)
}

type fakeGateway struct {
	mu           sync.Mutex
	outcomes     map[string]domain.Outcome
	retrieveErr  error
	openErr      error
	openedWith   domain.Manifest
	openedLines  []domain.PricedLine
	openedTotal  int64
	nextHandle   SessionHandle
	openSessions int
}

func (f *fakeGateway) OpenSession(_ context.Context, m domain.Manifest, lines []domain.PricedLine, totalCents int64) (SessionHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.openErr != nil {
		return SessionHandle{}, f.openErr
	}
	f.openSessions++
	f.openedWith = m
	f.openedLines = lines
	f.openedTotal = totalCents
	return f.nextHandle, nil
}

func (f *fakeGateway) RetrieveOutcome(_ context.Context, sessionID string) (domain.Outcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.retrieveErr != nil {
		return domain.Outcome{}, f.retrieveErr
	}
	out, ok := f.outcomes[sessionID]
	if !ok {
		return domain.Outcome{}, domain.ErrSessionNotFound
	}
	return out, nil
}
