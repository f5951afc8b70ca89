package domain

// WalkInCustomerName labels invoices that carry no registered customer.
// Walk-in sales keep a NULL customer id and are grouped under this identity
// at query time; no customer row is ever created for them.
const (
	WalkInCustomerName  = "Walk-in Customers"
	WalkInCustomerPhone = "N/A"
	WalkInCustomerKey   = "walkin"
)

type Customer struct {
	ID        int64  `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	Phone     string `db:"phone" json:"phone"`
	CreatedAt string `db:"created_at" json:"created_at"`
}
