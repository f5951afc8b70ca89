package domain

import "github.com/shopspring/decimal"

// Pure pricing and unit-conversion helpers. None of these return errors:
// a half-filled cart or catalog row must stay usable, so bad numeric input
// fails soft to zero.

// Round2 rounds a money amount to two decimal places.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// DiscountFromPrices derives the discount percentage implied by an MRP and
// a selling price. Zero MRP yields zero.
func DiscountFromPrices(mrp, sellingPrice float64) float64 {
	if mrp == 0 {
		return 0
	}
	return Round2((mrp - sellingPrice) / mrp * 100)
}

// SellingPriceFromDiscount derives the selling price implied by an MRP and
// a discount percentage. Zero MRP yields zero.
func SellingPriceFromDiscount(mrp, percent float64) float64 {
	if mrp == 0 {
		return 0
	}
	return Round2(mrp - mrp*percent/100)
}

// PiecePrice converts a per-strip price to a per-piece price.
func PiecePrice(stripPrice float64, stripSize int64) float64 {
	if stripSize <= 0 {
		return 0
	}
	return Round2(stripPrice / float64(stripSize))
}

// NormalizeStock carries loose pieces up into whole strips until
// 0 <= loose < stripSize. Total piece count is preserved.
func NormalizeStock(quantity, looseQuantity, stripSize int64) (int64, int64) {
	if stripSize < 1 {
		return quantity, looseQuantity
	}
	if looseQuantity >= stripSize {
		quantity += looseQuantity / stripSize
		looseQuantity = looseQuantity % stripSize
	}
	return quantity, looseQuantity
}
