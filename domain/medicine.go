package domain

import "time"

// Medicine is one stocked batch/SKU of the catalog. Stock is carried as
// whole strips plus loose pieces, with 0 <= LooseQuantity < StripSize
// restored after every mutation.
type Medicine struct {
	ID                   int64   `db:"id" json:"id"`
	Name                 string  `db:"name" json:"name"`
	Salt                 string  `db:"salt" json:"salt"`
	HSNCode              string  `db:"hsn_code" json:"hsn_code"`
	BatchNo              string  `db:"batch_no" json:"batch_no"`
	ExpiryDate           string  `db:"expiry_date" json:"expiry_date"`
	Scheme               string  `db:"scheme" json:"scheme"`
	MRP                  float64 `db:"mrp" json:"mrp"`
	PricePerPiece        float64 `db:"price_per_piece" json:"price_per_piece"`
	CostPrice            float64 `db:"cost_price" json:"cost_price"`
	CostPricePerPiece    float64 `db:"cost_price_per_piece" json:"cost_price_per_piece"`
	SellingPrice         float64 `db:"selling_price" json:"selling_price"`
	SellingPricePerPiece float64 `db:"selling_price_per_piece" json:"selling_price_per_piece"`
	DiscountPercent      float64 `db:"discount_percent" json:"discount_percent"`
	GSTPercent           float64 `db:"gst_percent" json:"gst_percent"`
	StripSize            int64   `db:"strip_size" json:"strip_size"`
	Quantity             int64   `db:"quantity" json:"quantity"`
	LooseQuantity        int64   `db:"loose_quantity" json:"loose_quantity"`
	TotalPieces          int64   `db:"total_pieces" json:"total_pieces"`
	Distributor          string  `db:"distributor" json:"distributor"`
	IsH1Drug             bool    `db:"is_h1_drug" json:"is_h1_drug"`
}

// InStock reports whether anything at all is left to sell.
func (m *Medicine) InStock() bool {
	return m.Quantity > 0 || m.LooseQuantity > 0
}

// Recalculate restores every derived field after an edit: per-piece prices,
// the strip/loose stock invariant and the total piece count. Negative stock
// inputs are clamped to zero before normalizing.
func (m *Medicine) Recalculate() {
	if m.StripSize < 1 {
		m.StripSize = 1
	}
	m.PricePerPiece = PiecePrice(m.MRP, m.StripSize)
	m.CostPricePerPiece = PiecePrice(m.CostPrice, m.StripSize)
	m.SellingPricePerPiece = PiecePrice(m.SellingPrice, m.StripSize)
	if m.Quantity < 0 {
		m.Quantity = 0
	}
	if m.LooseQuantity < 0 {
		m.LooseQuantity = 0
	}
	m.Quantity, m.LooseQuantity = NormalizeStock(m.Quantity, m.LooseQuantity, m.StripSize)
	m.TotalPieces = m.Quantity*m.StripSize + m.LooseQuantity
}

// Expiry classification buckets.
const (
	ExpiryExpired = "expired"
	ExpiryNear    = "near-expiry"
	ExpiryValid   = "valid"
	ExpiryUnknown = "unknown"
)

// ExpiryStatus classifies an expiry date against now: already expired,
// expiring within 30 days, or still valid. Dates that do not parse are
// reported as unknown rather than failing the listing.
func ExpiryStatus(expiryDate string, now time.Time) string {
	if expiryDate == "" {
		return ExpiryUnknown
	}
	expiry, err := time.Parse("2006-01-02", expiryDate)
	if err != nil {
		if expiry, err = time.Parse("01/2006", expiryDate); err != nil {
			return ExpiryUnknown
		}
	}
	diff := expiry.Sub(now)
	switch {
	case diff < 0:
		return ExpiryExpired
	case diff <= 30*24*time.Hour:
		return ExpiryNear
	default:
		return ExpiryValid
	}
}
