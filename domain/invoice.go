package domain

// InvoiceLine is a frozen snapshot of one sold medicine. Pricing and cost
// fields are copied from the catalog when the item enters the cart, so later
// catalog edits never change a committed invoice or an open cart.
type InvoiceLine struct {
	ID                   int64   `db:"id" json:"id"`
	InvoiceID            string  `db:"invoice_id" json:"invoice_id"`
	MedicineID           int64   `db:"medicine_id" json:"medicine_id"`
	Name                 string  `db:"name" json:"name"`
	StripQty             int64   `db:"strip_qty" json:"strip_qty"`
	LoosePieces          int64   `db:"loose_pieces" json:"loose_pieces"`
	MRP                  float64 `db:"mrp" json:"mrp"`
	PricePerPiece        float64 `db:"price_per_piece" json:"price_per_piece"`
	SellingPrice         float64 `db:"selling_price" json:"selling_price"`
	SellingPricePerPiece float64 `db:"selling_price_per_piece" json:"selling_price_per_piece"`
	CostPrice            float64 `db:"cost_price" json:"cost_price"`
	CostPricePerPiece    float64 `db:"cost_price_per_piece" json:"cost_price_per_piece"`
	GSTPercent           float64 `db:"gst_percent" json:"gst_percent"`
	LineTotal            float64 `db:"line_total" json:"line_total"`
}

// Priced reports whether the line contributes to invoice totals.
func (l *InvoiceLine) Priced() bool {
	return l.StripQty > 0 || l.LoosePieces > 0
}

// Profit is the margin earned on this line. Missing cost fields read as
// zero, so partial data never blocks reporting.
func (l *InvoiceLine) Profit() float64 {
	return (l.SellingPrice-l.CostPrice)*float64(l.StripQty) +
		(l.SellingPricePerPiece-l.CostPricePerPiece)*float64(l.LoosePieces)
}

// Invoice is the durable sale record. Once written its lines are immutable;
// the only retraction is deletion with a compensating stock credit.
type Invoice struct {
	InvoiceID     string        `db:"invoice_id" json:"invoice_id"`
	CustomerID    *int64        `db:"customer_id" json:"customer_id,omitempty"`
	CustomerName  string        `db:"customer_name" json:"customer_name"`
	CustomerPhone string        `db:"customer_phone" json:"customer_phone"`
	MRPTotal      float64       `db:"mrp_total" json:"mrp_total"`
	TotalSavings  float64       `db:"total_savings" json:"total_savings"`
	NetPayable    float64       `db:"net_payable" json:"net_payable"`
	Timestamp     string        `db:"timestamp" json:"timestamp"`
	Lines         []InvoiceLine `json:"medicines"`
}
