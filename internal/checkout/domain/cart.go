package domain

// CartItem is what the client submits. Only the product reference and the
// requested quantity are trusted; price always comes from storage.
type CartItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// Product is the inventory snapshot row read from storage.
type Product struct {
	ID         int64
	Name       string
	PriceCents int64
	Stock      int
}

// PricedLine is a cart line priced against the authoritative store.
type PricedLine struct {
	ProductID     int64
	Name          string
	Quantity      int
	UnitCents     int64
	SubtotalCents int64
}
