// Package report computes read-only aggregates over persisted invoices and
// expenses. It never touches the cart or catalog stock.
package report

import (
	"errors"
	"time"

	"pharmapos/m/domain"
)

var ErrBadWindow = errors.New("invalid report window")

// Summary is the sales/profit rollup for a window.
type Summary struct {
	TotalSales  float64 `json:"total_sales"`
	TotalProfit float64 `json:"total_profit"`
}

// Aggregate folds invoices into total sales and total profit. Profit is
// margin times quantity per line, strips and loose pieces separately;
// missing cost or price fields count as zero so partial data never blocks
// the report.
func Aggregate(invoices []domain.Invoice) Summary {
	var s Summary
	for i := range invoices {
		s.TotalSales += invoices[i].NetPayable
		for j := range invoices[i].Lines {
			s.TotalProfit += invoices[i].Lines[j].Profit()
		}
	}
	s.TotalSales = domain.Round2(s.TotalSales)
	s.TotalProfit = domain.Round2(s.TotalProfit)
	return s
}

// ExpenseTotal sums expense amounts.
func ExpenseTotal(expenses []domain.Expense) float64 {
	var total float64
	for i := range expenses {
		total += expenses[i].Amount
	}
	return domain.Round2(total)
}

const dateLayout = "2006-01-02"

// Window resolves a named report window (daily, weekly, monthly, yearly,
// custom, all) to an inclusive [start, end] date pair. The custom window
// requires both dates; "all" returns empty bounds.
func Window(kind, startDate, endDate string, now time.Time) (string, string, error) {
	switch kind {
	case "", "all":
		return "", "", nil
	case "daily":
		day := now.Format(dateLayout)
		return day, day, nil
	case "weekly":
		return now.AddDate(0, 0, -7).Format(dateLayout), now.Format(dateLayout), nil
	case "monthly":
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return first.Format(dateLayout), first.AddDate(0, 1, -1).Format(dateLayout), nil
	case "yearly":
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location()).Format(dateLayout),
			time.Date(now.Year(), 12, 31, 0, 0, 0, 0, now.Location()).Format(dateLayout), nil
	case "custom":
		if _, err := time.Parse(dateLayout, startDate); err != nil {
			return "", "", ErrBadWindow
		}
		if _, err := time.Parse(dateLayout, endDate); err != nil {
			return "", "", ErrBadWindow
		}
		return startDate, endDate, nil
	default:
		return "", "", ErrBadWindow
	}
}
