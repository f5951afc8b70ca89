package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiscountSellingPriceRoundTrip(t *testing.T) {
	for _, mrp := range []float64{1, 9.5, 48.75, 100, 1250.40} {
		for _, selling := range []float64{0, mrp * 0.25, mrp * 0.5, mrp * 0.9, mrp} {
			discount := DiscountFromPrices(mrp, selling)
			back := SellingPriceFromDiscount(mrp, discount)
			assert.InDeltaf(t, selling, back, 0.01,
				"mrp=%v selling=%v discount=%v", mrp, selling, discount)
		}
	}
}

func TestDiscountFromPrices(t *testing.T) {
	assert.Equal(t, 10.0, DiscountFromPrices(100, 90))
	assert.Equal(t, 0.0, DiscountFromPrices(0, 90), "zero mrp fails soft")
}

func TestSellingPriceFromDiscount(t *testing.T) {
	assert.Equal(t, 90.0, SellingPriceFromDiscount(100, 10))
	assert.Equal(t, 0.0, SellingPriceFromDiscount(0, 10), "zero mrp fails soft")
}

func TestPiecePrice(t *testing.T) {
	assert.Equal(t, 10.0, PiecePrice(100, 10))
	assert.Equal(t, 3.33, PiecePrice(10, 3))
	assert.Equal(t, 0.0, PiecePrice(100, 0))
	assert.Equal(t, 0.0, PiecePrice(100, -4))
}

func TestNormalizeStock(t *testing.T) {
	for stripSize := int64(1); stripSize <= 12; stripSize++ {
		for quantity := int64(0); quantity <= 3; quantity++ {
			for loose := int64(0); loose < stripSize*3; loose++ {
				q, l := NormalizeStock(quantity, loose, stripSize)
				assert.GreaterOrEqual(t, l, int64(0))
				assert.Less(t, l, stripSize)
				assert.Equal(t, quantity*stripSize+loose, q*stripSize+l,
					"piece count must be preserved")
			}
		}
	}
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 207.0, Round2(2*90+3*9.0))
	assert.Equal(t, 0.1, Round2(0.1))
	assert.Equal(t, 1.01, Round2(1.005))
	assert.False(t, math.Signbit(Round2(0)))
}
