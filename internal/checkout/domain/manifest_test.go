package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManifestRoundTrip(t *testing.T) {
	userID := int64(7)
	m := Manifest{
		Items: []ManifestItem{
			{ProductID: 5, Quantity: 2},
			{ProductID: 9, Quantity: 1},
		},
		UserID: &userID,
	}

	raw, err := m.Encode()
	require.NoError(t, err)

	got, err := DecodeManifest(raw)
	require.NoError(t, err)
	assert.Equal(t, m, got, "manifest survives the provider hand-off byte-for-byte")
}

func TestManifestRoundTrip_Guest(t *testing.T) {
	m := Manifest{Items: []ManifestItem{{ProductID: 1, Quantity: 1}}}
	raw, err := m.Encode()
	require.NoError(t, err)
	got, err := DecodeManifest(raw)
	require.NoError(t, err)
	assert.Nil(t, got.UserID)
}

func TestDecodeManifest_Corrupt(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `{broken`},
		{"empty string", ``},
		{"wrong shape", `{"items":"nope"}`},
		{"no items", `{"items":[]}`},
		{"missing items key", `{"user_id":3}`},
		{"zero product id", `{"items":[{"id":0,"qty":1}]}`},
		{"negative product id", `{"items":[{"id":-5,"qty":1}]}`},
		{"zero quantity", `{"items":[{"id":5,"qty":0}]}`},
		{"negative quantity", `{"items":[{"id":5,"qty":-1}]}`},
		{"non-positive user id", `{"items":[{"id":5,"qty":1}],"user_id":0}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeManifest(tt.raw)
			assert.ErrorIs(t, err, ErrManifestCorrupt)
		})
	}
}

func TestDecodeManifest_PreservesOrder(t *testing.T) {
	got, err := DecodeManifest(`{"items":[{"id":9,"qty":1},{"id":5,"qty":2},{"id":7,"qty":3}]}`)
	require.NoError(t, err)
	assert.Equal(t, []ManifestItem{
		{ProductID: 9, Quantity: 1},
		{ProductID: 5, Quantity: 2},
		{ProductID: 7, Quantity: 3},
	}, got.Items)
}
