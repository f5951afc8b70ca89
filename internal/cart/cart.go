// Package cart maintains the in-progress sale: line items snapshotted from
// the catalog, quantity edits and the three running totals. The cart is a
// staging area only; catalog stock is untouched until settlement.
package cart

import (
	"errors"

	"pharmapos/m/domain"
)

var (
	// ErrOutOfStock blocks adding a medicine with no strips and no loose
	// pieces left.
	ErrOutOfStock = errors.New("medicine is out of stock")
	// ErrLineNotFound is returned by quantity edits on unknown lines.
	ErrLineNotFound = errors.New("line item not in cart")
	// ErrEmptyCart rejects freezing a cart with no line items.
	ErrEmptyCart = errors.New("no medicines selected")
)

// Totals are the three aggregate figures shown on the invoice. They are
// accumulated as independent folds: NetPayable is the sum of line totals,
// not MRPTotal minus TotalSavings, matching the observed billing output.
type Totals struct {
	MRPTotal     float64 `json:"mrp_total"`
	TotalSavings float64 `json:"total_savings"`
	NetPayable   float64 `json:"net_payable"`
}

// Cart holds the lines of one sale in insertion order, keyed by medicine id.
type Cart struct {
	lines []domain.InvoiceLine
}

func New() *Cart {
	return &Cart{}
}

// AddItem appends a new line for the medicine with both quantities at zero,
// snapshotting every pricing and cost field at this instant. Adding a
// medicine already in the cart is a no-op: quantity edits go through
// UpdateQuantity, re-adding must not silently double a line.
func (c *Cart) AddItem(m *domain.Medicine) error {
	if !m.InStock() {
		return ErrOutOfStock
	}
	if c.find(m.ID) != nil {
		return nil
	}
	c.lines = append(c.lines, domain.InvoiceLine{
		MedicineID:           m.ID,
		Name:                 m.Name,
		MRP:                  m.MRP,
		PricePerPiece:        m.PricePerPiece,
		SellingPrice:         m.SellingPrice,
		SellingPricePerPiece: m.SellingPricePerPiece,
		CostPrice:            m.CostPrice,
		CostPricePerPiece:    m.CostPricePerPiece,
		GSTPercent:           m.GSTPercent,
	})
	return nil
}

// RemoveItem deletes the line unconditionally. Removing an unknown line is
// a no-op.
func (c *Cart) RemoveItem(medicineID int64) {
	for i := range c.lines {
		if c.lines[i].MedicineID == medicineID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// UpdateQuantity sets the strip and loose-piece quantities of a line and
// recomputes its total. Negative quantities clamp to zero. The line total
// follows the three-branch policy: the strip and loose channels are priced
// independently and only combined when both are in play, so a stale zero in
// one channel never leaks into the other.
func (c *Cart) UpdateQuantity(medicineID, stripQty, loosePieces int64) error {
	line := c.find(medicineID)
	if line == nil {
		return ErrLineNotFound
	}
	if stripQty < 0 {
		stripQty = 0
	}
	if loosePieces < 0 {
		loosePieces = 0
	}
	line.StripQty = stripQty
	line.LoosePieces = loosePieces

	switch {
	case stripQty > 0 && loosePieces == 0:
		line.LineTotal = float64(stripQty) * line.SellingPrice
	case stripQty == 0 && loosePieces > 0:
		line.LineTotal = domain.Round2(float64(loosePieces) * line.SellingPricePerPiece)
	case stripQty > 0 && loosePieces > 0:
		line.LineTotal = domain.Round2(float64(stripQty)*line.SellingPrice + float64(loosePieces)*line.SellingPricePerPiece)
	default:
		line.LineTotal = 0
	}
	return nil
}

// Lines returns a copy of the cart contents in insertion order.
func (c *Cart) Lines() []domain.InvoiceLine {
	out := make([]domain.InvoiceLine, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Empty() bool {
	return len(c.lines) == 0
}

// Totals folds the cart into the three invoice aggregates. Unpriced lines
// (both quantities zero) sit in the cart without contributing.
func (c *Cart) Totals() Totals {
	var t Totals
	for i := range c.lines {
		line := &c.lines[i]
		strips := float64(line.StripQty)
		loose := float64(line.LoosePieces)
		t.MRPTotal += line.MRP*strips + line.PricePerPiece*loose
		t.TotalSavings += (line.MRP*strips - line.SellingPrice*strips) +
			(line.PricePerPiece*loose - line.SellingPricePerPiece*loose)
		t.NetPayable += line.LineTotal
	}
	t.MRPTotal = domain.Round2(t.MRPTotal)
	t.TotalSavings = domain.Round2(t.TotalSavings)
	t.NetPayable = domain.Round2(t.NetPayable)
	return t
}

func (c *Cart) find(medicineID int64) *domain.InvoiceLine {
	for i := range c.lines {
		if c.lines[i].MedicineID == medicineID {
			return &c.lines[i]
		}
	}
	return nil
}
