// Package sales freezes carts into durable invoices and reconciles catalog
// stock afterwards. The invoice write, the per-invoice stock debit and the
// delete-with-credit-back each run as one store transaction, so a partially
// settled invoice is never observable.
package sales

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"pharmapos/m/domain"
	"pharmapos/m/internal/cart"
)

var ErrInvoiceNotFound = errors.New("invoice not found")

const timeLayout = "2006-01-02 15:04:05"

// Service owns invoice persistence and stock settlement.
type Service struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Service {
	return &Service{db: db}
}

// Identity is the customer attached to an invoice. A nil ID marks a walk-in
// sale.
type Identity struct {
	ID    *int64
	Name  string
	Phone string
}

// Build freezes the cart into an invoice draft. The cart must hold at least
// one priced line; the timestamp is assigned at commit time, not here.
func (s *Service) Build(c *cart.Cart, cust Identity) (*domain.Invoice, error) {
	if c.Empty() {
		return nil, cart.ErrEmptyCart
	}
	priced := false
	for _, line := range c.Lines() {
		if line.Priced() {
			priced = true
			break
		}
	}
	if !priced {
		return nil, cart.ErrEmptyCart
	}
	name, phone := cust.Name, cust.Phone
	if cust.ID == nil {
		name = domain.WalkInCustomerName
		phone = domain.WalkInCustomerPhone
	}
	totals := c.Totals()
	return &domain.Invoice{
		InvoiceID:     uuid.NewString(),
		CustomerID:    cust.ID,
		CustomerName:  name,
		CustomerPhone: phone,
		MRPTotal:      totals.MRPTotal,
		TotalSavings:  totals.TotalSavings,
		NetPayable:    totals.NetPayable,
		Lines:         c.Lines(),
	}, nil
}

// Commit writes the invoice header and its frozen lines in one transaction.
// The invoice must be durably committed before Settle runs: settlement reads
// the record back by id instead of trusting in-memory state.
func (s *Service) Commit(inv *domain.Invoice) error {
	inv.Timestamp = time.Now().UTC().Format(timeLayout)

	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin invoice write: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO sales (invoice_id, customer_id, customer_name, customer_phone, mrp_total, total_savings, net_payable, timestamp)
                VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		inv.InvoiceID, inv.CustomerID, inv.CustomerName, inv.CustomerPhone,
		inv.MRPTotal, inv.TotalSavings, inv.NetPayable, inv.Timestamp)
	if err != nil {
		return fmt.Errorf("write invoice: %w", err)
	}

	for i := range inv.Lines {
		line := &inv.Lines[i]
		line.InvoiceID = inv.InvoiceID
		_, err = tx.Exec(`INSERT INTO sale_items (invoice_id, medicine_id, name, strip_qty, loose_pieces, mrp, price_per_piece, selling_price, selling_price_per_piece, cost_price, cost_price_per_piece, gst_percent, line_total)
                        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			line.InvoiceID, line.MedicineID, line.Name, line.StripQty, line.LoosePieces,
			line.MRP, line.PricePerPiece, line.SellingPrice, line.SellingPricePerPiece,
			line.CostPrice, line.CostPricePerPiece, line.GSTPercent, line.LineTotal)
		if err != nil {
			return fmt.Errorf("write invoice line: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit invoice: %w", err)
	}
	return nil
}

// Get loads one invoice with its lines.
func (s *Service) Get(invoiceID string) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := s.db.Get(&inv, `SELECT invoice_id, customer_id, customer_name, customer_phone, mrp_total, total_savings, net_payable, timestamp
                FROM sales WHERE invoice_id = $1`, invoiceID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvoiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load invoice: %w", err)
	}
	if err := s.db.Select(&inv.Lines, `SELECT id, invoice_id, medicine_id, name, strip_qty, loose_pieces, mrp, price_per_piece, selling_price, selling_price_per_piece, cost_price, cost_price_per_piece, gst_percent, line_total
                FROM sale_items WHERE invoice_id = $1 ORDER BY id`, invoiceID); err != nil {
		return nil, fmt.Errorf("load invoice lines: %w", err)
	}
	return &inv, nil
}

// Settle debits catalog stock for a committed invoice. Per line: the sold
// piece count is subtracted from the total available pieces, clamping at
// zero when a race drove stock negative (the sale is already recorded and
// is never rolled back for bookkeeping). Lines whose medicine has been
// deleted are skipped with a warning so historical invoices stay settleable.
// All updates for the invoice land in one transaction.
func (s *Service) Settle(invoiceID string) error {
	inv, err := s.Get(invoiceID)
	if err != nil {
		return err
	}

	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin settlement: %w", err)
	}
	defer tx.Rollback()

	for i := range inv.Lines {
		line := &inv.Lines[i]
		var m domain.Medicine
		err := tx.Get(&m, `SELECT id, name, strip_size, quantity, loose_quantity FROM medicines WHERE id = $1`, line.MedicineID)
		if errors.Is(err, sql.ErrNoRows) {
			log.Printf("settlement: medicine %d (%s) no longer exists, skipping", line.MedicineID, line.Name)
			continue
		}
		if err != nil {
			return fmt.Errorf("read medicine %d: %w", line.MedicineID, err)
		}

		stripSize := m.StripSize
		if stripSize < 1 {
			stripSize = 1
		}
		available := m.Quantity*stripSize + m.LooseQuantity
		sold := line.StripQty*stripSize + line.LoosePieces
		remaining := available - sold
		if remaining < 0 {
			log.Printf("settlement: stock for %s would go negative (%d), clamping to zero", m.Name, remaining)
			remaining = 0
		}
		quantity := remaining / stripSize
		loose := remaining % stripSize

		if _, err := tx.Exec(`UPDATE medicines SET quantity = $1, loose_quantity = $2, total_pieces = $3 WHERE id = $4`,
			quantity, loose, remaining, m.ID); err != nil {
			return fmt.Errorf("debit stock for medicine %d: %w", m.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit settlement: %w", err)
	}
	return nil
}

// Delete voids an invoice: every line's strips and loose pieces are credited
// back to the catalog (with loose-piece carry into whole strips) and the
// invoice record is removed, all in a single transaction. A partial outcome,
// stock restored without the invoice deleted or the reverse, must never be
// observable.
func (s *Service) Delete(invoiceID string) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin invoice delete: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.Get(&exists, `SELECT COUNT(*) FROM sales WHERE invoice_id = $1`, invoiceID); err != nil {
		return fmt.Errorf("check invoice: %w", err)
	}
	if exists == 0 {
		return ErrInvoiceNotFound
	}

	var lines []domain.InvoiceLine
	if err := tx.Select(&lines, `SELECT id, invoice_id, medicine_id, name, strip_qty, loose_pieces FROM sale_items WHERE invoice_id = $1`, invoiceID); err != nil {
		return fmt.Errorf("load invoice lines: %w", err)
	}

	for i := range lines {
		line := &lines[i]
		var m domain.Medicine
		err := tx.Get(&m, `SELECT id, name, strip_size, quantity, loose_quantity FROM medicines WHERE id = $1`, line.MedicineID)
		if errors.Is(err, sql.ErrNoRows) {
			log.Printf("credit-back: medicine %d (%s) no longer exists, skipping", line.MedicineID, line.Name)
			continue
		}
		if err != nil {
			return fmt.Errorf("read medicine %d: %w", line.MedicineID, err)
		}

		stripSize := m.StripSize
		if stripSize < 1 {
			stripSize = 1
		}
		quantity, loose := domain.NormalizeStock(m.Quantity+line.StripQty, m.LooseQuantity+line.LoosePieces, stripSize)
		if _, err := tx.Exec(`UPDATE medicines SET quantity = $1, loose_quantity = $2, total_pieces = $3 WHERE id = $4`,
			quantity, loose, quantity*stripSize+loose, m.ID); err != nil {
			return fmt.Errorf("credit stock for medicine %d: %w", m.ID, err)
		}
	}

	if _, err := tx.Exec(`DELETE FROM sale_items WHERE invoice_id = $1`, invoiceID); err != nil {
		return fmt.Errorf("delete invoice lines: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM sales WHERE invoice_id = $1`, invoiceID); err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit invoice delete: %w", err)
	}
	return nil
}

// ListFilter narrows an invoice listing. CustomerKey is a customer id, or
// "walkin" for anonymous sales, or empty for all. Dates are YYYY-MM-DD,
// inclusive.
type ListFilter struct {
	CustomerKey string
	StartDate   string
	EndDate     string
}

// List returns invoices newest first, with their lines attached.
func (s *Service) List(f ListFilter) ([]domain.Invoice, error) {
	var (
		args    []any
		clauses []string
	)
	switch key := strings.TrimSpace(f.CustomerKey); key {
	case "":
	case domain.WalkInCustomerKey:
		clauses = append(clauses, "customer_id IS NULL")
	default:
		args = append(args, key)
		clauses = append(clauses, fmt.Sprintf("customer_id = $%d", len(args)))
	}
	if f.StartDate != "" {
		args = append(args, f.StartDate)
		clauses = append(clauses, fmt.Sprintf("DATE(timestamp) >= $%d", len(args)))
	}
	if f.EndDate != "" {
		args = append(args, f.EndDate)
		clauses = append(clauses, fmt.Sprintf("DATE(timestamp) <= $%d", len(args)))
	}

	query := `SELECT invoice_id, customer_id, customer_name, customer_phone, mrp_total, total_savings, net_payable, timestamp FROM sales`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY timestamp DESC, invoice_id"

	var invoices []domain.Invoice
	if err := s.db.Select(&invoices, query, args...); err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	if len(invoices) == 0 {
		return []domain.Invoice{}, nil
	}

	ids := make([]string, len(invoices))
	index := make(map[string]*domain.Invoice, len(invoices))
	for i := range invoices {
		ids[i] = invoices[i].InvoiceID
		index[invoices[i].InvoiceID] = &invoices[i]
	}

	itemsQuery, itemsArgs, err := sqlx.In(`SELECT id, invoice_id, medicine_id, name, strip_qty, loose_pieces, mrp, price_per_piece, selling_price, selling_price_per_piece, cost_price, cost_price_per_piece, gst_percent, line_total
                FROM sale_items WHERE invoice_id IN (?) ORDER BY id`, ids)
	if err != nil {
		return nil, fmt.Errorf("prepare invoice lines query: %w", err)
	}
	itemsQuery = s.db.Rebind(itemsQuery)

	var lines []domain.InvoiceLine
	if err := s.db.Select(&lines, itemsQuery, itemsArgs...); err != nil {
		return nil, fmt.Errorf("load invoice lines: %w", err)
	}
	for _, line := range lines {
		inv := index[line.InvoiceID]
		inv.Lines = append(inv.Lines, line)
	}
	return invoices, nil
}
