// Package seed ingests tabular catalog exports into the medicines table.
package seed

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"

	"pharmapos/m/domain"
)

// RequiredColumns is the fixed column set a catalog file must carry. A file
// missing any of them is rejected whole, with one aggregate error.
var RequiredColumns = []string{
	"HSN Code", "Batch No", "Name", "Salt", "Expiry Date", "Scheme",
	"MRP", "Cost Price", "Discount (%)", "Selling Price", "Distributor", "H1 Drug",
}

// ImportCatalog reads a CSV catalog export and inserts one medicine per row
// inside a single transaction. Numeric fields default to 0 on parse failure
// rather than aborting the row; rows without a name are dropped. Returns
// the number of rows loaded.
func ImportCatalog(db *sqlx.DB, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("unable to read catalog header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	var missing []string
	for _, name := range RequiredColumns {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return 0, fmt.Errorf("catalog file is missing required columns: %s", strings.Join(missing, ", "))
	}

	tx, err := db.Beginx()
	if err != nil {
		return 0, fmt.Errorf("unable to start catalog import: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(`INSERT INTO medicines (name, salt, hsn_code, batch_no, expiry_date, scheme, mrp, price_per_piece, cost_price, cost_price_per_piece, selling_price, selling_price_per_piece, discount_percent, gst_percent, strip_size, quantity, loose_quantity, total_pieces, distributor, is_h1_drug)
                VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`)
	if err != nil {
		return 0, fmt.Errorf("unable to prepare catalog insert: %w", err)
	}
	defer stmt.Close()

	field := func(record []string, name string) string {
		i := columns[name]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	rows := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("unable to read catalog row: %v", err)
			continue
		}

		m := domain.Medicine{
			Name:        field(record, "Name"),
			Salt:        field(record, "Salt"),
			HSNCode:     field(record, "HSN Code"),
			BatchNo:     field(record, "Batch No"),
			ExpiryDate:  field(record, "Expiry Date"),
			Scheme:      field(record, "Scheme"),
			MRP:         parseNumber(field(record, "MRP")),
			CostPrice:   parseNumber(field(record, "Cost Price")),
			Distributor: field(record, "Distributor"),
			IsH1Drug:    parseFlag(field(record, "H1 Drug")),
			StripSize:   1,
		}
		if m.Name == "" {
			continue
		}

		// Selling price wins when present; otherwise it is derived from
		// the discount column. Either way both views end up consistent.
		m.SellingPrice = parseNumber(field(record, "Selling Price"))
		if m.SellingPrice > 0 {
			m.DiscountPercent = domain.DiscountFromPrices(m.MRP, m.SellingPrice)
		} else {
			m.DiscountPercent = parseNumber(field(record, "Discount (%)"))
			m.SellingPrice = domain.SellingPriceFromDiscount(m.MRP, m.DiscountPercent)
		}
		m.Recalculate()

		if _, err := stmt.Exec(m.Name, m.Salt, m.HSNCode, m.BatchNo, m.ExpiryDate, m.Scheme,
			m.MRP, m.PricePerPiece, m.CostPrice, m.CostPricePerPiece,
			m.SellingPrice, m.SellingPricePerPiece, m.DiscountPercent, m.GSTPercent,
			m.StripSize, m.Quantity, m.LooseQuantity, m.TotalPieces, m.Distributor, m.IsH1Drug); err != nil {
			log.Printf("unable to insert medicine %s: %v", m.Name, err)
			continue
		}
		rows++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("unable to commit catalog import: %w", err)
	}
	return rows, nil
}

// LoadCatalog seeds the catalog from a CSV on disk at startup. Failures are
// logged, not fatal: an empty catalog is a usable state.
func LoadCatalog(db *sqlx.DB, csvPath string) {
	file, err := os.Open(csvPath)
	if err != nil {
		log.Printf("unable to load medicine catalog %s: %v", csvPath, err)
		return
	}
	defer file.Close()

	rows, err := ImportCatalog(db, file)
	if err != nil {
		log.Printf("unable to import medicine catalog %s: %v", csvPath, err)
		return
	}
	log.Printf("seeded medicine catalog with %d rows", rows)
}

func parseNumber(val string) float64 {
	if val == "" {
		return 0
	}
	n, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0
	}
	return n
}

func parseFlag(val string) bool {
	switch strings.ToLower(val) {
	case "yes", "y", "true", "1", "h1":
		return true
	default:
		return false
	}
}
