package migrations

import (
	"log"

	"github.com/jmoiron/sqlx"
)

// Run creates the database schema required for the pharmacy POS backend.
func Run(db *sqlx.DB) {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            username TEXT NOT NULL,
            email TEXT NOT NULL UNIQUE,
            password TEXT NOT NULL,
            role TEXT NOT NULL,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        );`,
		`CREATE TABLE IF NOT EXISTS medicines (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL,
            salt TEXT NOT NULL DEFAULT '',
            hsn_code TEXT NOT NULL DEFAULT '',
            batch_no TEXT NOT NULL DEFAULT '',
            expiry_date TEXT NOT NULL DEFAULT '',
            scheme TEXT NOT NULL DEFAULT '',
            mrp REAL NOT NULL DEFAULT 0,
            price_per_piece REAL NOT NULL DEFAULT 0,
            cost_price REAL NOT NULL DEFAULT 0,
            cost_price_per_piece REAL NOT NULL DEFAULT 0,
            selling_price REAL NOT NULL DEFAULT 0,
            selling_price_per_piece REAL NOT NULL DEFAULT 0,
            discount_percent REAL NOT NULL DEFAULT 0,
            gst_percent REAL NOT NULL DEFAULT 0,
            strip_size INTEGER NOT NULL DEFAULT 1,
            quantity INTEGER NOT NULL DEFAULT 0,
            loose_quantity INTEGER NOT NULL DEFAULT 0,
            total_pieces INTEGER NOT NULL DEFAULT 0,
            distributor TEXT NOT NULL DEFAULT '',
            is_h1_drug INTEGER NOT NULL DEFAULT 0
        );`,
		`CREATE TABLE IF NOT EXISTS customers (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL,
            phone TEXT NOT NULL UNIQUE,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        );`,
		`CREATE TABLE IF NOT EXISTS sales (
            invoice_id TEXT PRIMARY KEY,
            customer_id INTEGER,
            customer_name TEXT NOT NULL DEFAULT '',
            customer_phone TEXT NOT NULL DEFAULT '',
            mrp_total REAL NOT NULL DEFAULT 0,
            total_savings REAL NOT NULL DEFAULT 0,
            net_payable REAL NOT NULL DEFAULT 0,
            timestamp DATETIME NOT NULL,
            FOREIGN KEY(customer_id) REFERENCES customers(id)
        );`,
		`CREATE INDEX IF NOT EXISTS idx_sales_customer ON sales(customer_id);`,
		`CREATE INDEX IF NOT EXISTS idx_sales_timestamp ON sales(timestamp);`,
		`CREATE TABLE IF NOT EXISTS sale_items (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            invoice_id TEXT NOT NULL,
            medicine_id INTEGER NOT NULL,
            name TEXT NOT NULL DEFAULT '',
            strip_qty INTEGER NOT NULL DEFAULT 0,
            loose_pieces INTEGER NOT NULL DEFAULT 0,
            mrp REAL NOT NULL DEFAULT 0,
            price_per_piece REAL NOT NULL DEFAULT 0,
            selling_price REAL NOT NULL DEFAULT 0,
            selling_price_per_piece REAL NOT NULL DEFAULT 0,
            cost_price REAL NOT NULL DEFAULT 0,
            cost_price_per_piece REAL NOT NULL DEFAULT 0,
            gst_percent REAL NOT NULL DEFAULT 0,
            line_total REAL NOT NULL DEFAULT 0,
            FOREIGN KEY(invoice_id) REFERENCES sales(invoice_id)
        );`,
		`CREATE INDEX IF NOT EXISTS idx_sale_items_invoice ON sale_items(invoice_id);`,
		`CREATE TABLE IF NOT EXISTS distributors (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL,
            phone TEXT NOT NULL DEFAULT '',
            gst TEXT NOT NULL DEFAULT '',
            additional_info TEXT NOT NULL DEFAULT '',
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        );`,
		`CREATE TABLE IF NOT EXISTS purchases (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            distributor_id INTEGER NOT NULL,
            bill_number TEXT NOT NULL DEFAULT '',
            bill_date TEXT NOT NULL DEFAULT '',
            total_bill REAL NOT NULL DEFAULT 0,
            notes TEXT NOT NULL DEFAULT '',
            final_price REAL NOT NULL DEFAULT 0,
            FOREIGN KEY(distributor_id) REFERENCES distributors(id)
        );`,
		`CREATE TABLE IF NOT EXISTS expenses (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            date TEXT NOT NULL,
            category TEXT NOT NULL,
            name TEXT NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            amount REAL NOT NULL DEFAULT 0
        );`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
	}
}
