// Package customers maps phone numbers to stable customer identities.
// Sales without a phone number belong to the walk-in pseudo-customer, which
// is never persisted as a row; walk-in invoices keep a NULL customer id and
// are grouped at query time.
package customers

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"pharmapos/m/domain"
)

var (
	ErrNotFound           = errors.New("customer not found")
	ErrInvalidPhoneFormat = errors.New("phone number must be 10 digits")
	ErrNameRequired       = errors.New("customer name is required")
	ErrWalkInProtected    = errors.New("walk-in customers cannot be deleted")
)

// ValidatePhone enforces the ten-digit numeric format at the API boundary.
func ValidatePhone(phone string) error {
	phone = strings.TrimSpace(phone)
	if len(phone) != 10 {
		return ErrInvalidPhoneFormat
	}
	for _, r := range phone {
		if r < '0' || r > '9' {
			return ErrInvalidPhoneFormat
		}
	}
	return nil
}

// Resolver bundles customer lookups over the store.
type Resolver struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Resolver {
	return &Resolver{db: db}
}

// FindByPhone looks a customer up by exact phone match, trimming the input
// first.
func (r *Resolver) FindByPhone(phone string) (*domain.Customer, error) {
	phone = strings.TrimSpace(phone)
	var c domain.Customer
	err := r.db.Get(&c, `SELECT id, name, phone, created_at FROM customers WHERE phone = $1`, phone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup customer: %w", err)
	}
	return &c, nil
}

// FindOrCreate returns the id of the customer with the given phone, creating
// the record if none exists. An empty phone is the walk-in case: it returns
// a nil id and persists nothing.
func (r *Resolver) FindOrCreate(name, phone string) (*int64, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, nil
	}
	existing, err := r.FindByPhone(phone)
	if err == nil {
		return &existing.ID, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, ErrNameRequired
	}
	var id int64
	err = r.db.QueryRowx(`INSERT INTO customers (name, phone) VALUES ($1, $2) RETURNING id`,
		strings.TrimSpace(name), phone).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return &id, nil
}

// ListEntry is one row of the customer list. The walk-in pseudo-customer is
// appended as a synthetic entry with its invoice count.
type ListEntry struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	IsWalkIn   bool   `json:"is_walk_in"`
	SalesCount int64  `json:"sales_count,omitempty"`
}

// List returns all registered customers sorted by name, plus the synthetic
// walk-in entry aggregating invoices that carry no customer id.
func (r *Resolver) List() ([]ListEntry, error) {
	var rows []domain.Customer
	if err := r.db.Select(&rows, `SELECT id, name, phone, created_at FROM customers ORDER BY name`); err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	entries := make([]ListEntry, 0, len(rows)+1)
	for _, c := range rows {
		entries = append(entries, ListEntry{ID: fmt.Sprintf("%d", c.ID), Name: c.Name, Phone: c.Phone})
	}
	var walkInCount int64
	if err := r.db.Get(&walkInCount, `SELECT COUNT(*) FROM sales WHERE customer_id IS NULL`); err != nil {
		return nil, fmt.Errorf("count walk-in sales: %w", err)
	}
	entries = append(entries, ListEntry{
		ID:         domain.WalkInCustomerKey,
		Name:       domain.WalkInCustomerName,
		Phone:      domain.WalkInCustomerPhone,
		IsWalkIn:   true,
		SalesCount: walkInCount,
	})
	return entries, nil
}

// Get fetches a customer by id.
func (r *Resolver) Get(id int64) (*domain.Customer, error) {
	var c domain.Customer
	err := r.db.Get(&c, `SELECT id, name, phone, created_at FROM customers WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return &c, nil
}

// Delete removes a registered customer. Past invoices keep their
// denormalized name and phone. Callers guard the walk-in pseudo-customer,
// which has no row to delete.
func (r *Resolver) Delete(id int64) error {
	res, err := r.db.Exec(`DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
