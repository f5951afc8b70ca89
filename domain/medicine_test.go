package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecalculate(t *testing.T) {
	m := Medicine{
		MRP:           100,
		CostPrice:     70,
		SellingPrice:  90,
		StripSize:     10,
		Quantity:      2,
		LooseQuantity: 27,
	}
	m.Recalculate()

	assert.Equal(t, 10.0, m.PricePerPiece)
	assert.Equal(t, 7.0, m.CostPricePerPiece)
	assert.Equal(t, 9.0, m.SellingPricePerPiece)
	assert.Equal(t, int64(4), m.Quantity, "loose pieces carry into strips")
	assert.Equal(t, int64(7), m.LooseQuantity)
	assert.Equal(t, int64(47), m.TotalPieces)
}

func TestRecalculateClampsBadInput(t *testing.T) {
	m := Medicine{MRP: 50, StripSize: 0, Quantity: -3, LooseQuantity: -1}
	m.Recalculate()
	assert.Equal(t, int64(1), m.StripSize)
	assert.Equal(t, int64(0), m.Quantity)
	assert.Equal(t, int64(0), m.LooseQuantity)
	assert.Equal(t, int64(0), m.TotalPieces)
}

func TestExpiryStatus(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, ExpiryExpired, ExpiryStatus("2026-07-20", now))
	assert.Equal(t, ExpiryNear, ExpiryStatus("2026-08-20", now))
	assert.Equal(t, ExpiryValid, ExpiryStatus("2027-01-01", now))
	assert.Equal(t, ExpiryUnknown, ExpiryStatus("", now))
	assert.Equal(t, ExpiryUnknown, ExpiryStatus("soon", now))
	assert.Equal(t, ExpiryValid, ExpiryStatus("12/2026", now))
}
