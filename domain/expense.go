package domain

// Expense categories offered by the expense form.
var ExpenseCategories = []string{"Rent", "Salary", "Bills", "Miscellaneous"}

type Expense struct {
	ID          int64   `db:"id" json:"id"`
	Date        string  `db:"date" json:"date"`
	Category    string  `db:"category" json:"category"`
	Name        string  `db:"name" json:"name"`
	Description string  `db:"description" json:"description"`
	Amount      float64 `db:"amount" json:"amount"`
}

// ValidExpenseCategory reports whether category is one of the predefined set.
func ValidExpenseCategory(category string) bool {
	for _, c := range ExpenseCategories {
		if c == category {
			return true
		}
	}
	return false
}
