package domain

import "encoding/json"

// ManifestItem is one (product, quantity) pair of the cart manifest.
type ManifestItem struct {
	ProductID int64 `json:"id"`
	Quantity  int   `json:"qty"`
}

// Manifest is the compact cart description carried through the payment
// provider's metadata field. It never carries price: price-at-purchase is
// re-derived from storage when the payment is confirmed, so a tampered or
// stale manifest cannot change what the customer is charged against.
type Manifest struct {
	Items  []ManifestItem `json:"items"`
	UserID *int64         `json:"user_id,omitempty"`
}

// Encode serializes the manifest for the provider's metadata field.
func (m Manifest) Encode() (string, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeManifest parses a manifest read back from the provider and rejects
// anything that is not a well-formed list of positive-integer pairs.
func DecodeManifest(raw string) (Manifest, error) {
	var m Manifest
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return Manifest{}, ErrManifestCorrupt
	}
	if len(m.Items) == 0 {
		return Manifest{}, ErrManifestCorrupt
	}
	for _, it := range m.Items {
		if it.ProductID <= 0 || it.Quantity <= 0 {
			return Manifest{}, ErrManifestCorrupt
		}
	}
	if m.UserID != nil && *m.UserID <= 0 {
		return Manifest{}, ErrManifestCorrupt
	}
	return m, nil
}
