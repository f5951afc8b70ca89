package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmapos/m/domain"
)

func TestAggregate(t *testing.T) {
	invoices := []domain.Invoice{
		{
			NetPayable: 100,
			Lines: []domain.InvoiceLine{
				{StripQty: 2, SellingPrice: 90, CostPrice: 70},
			},
		},
		{
			NetPayable: 250,
			Lines: []domain.InvoiceLine{
				{LoosePieces: 5, SellingPricePerPiece: 9, CostPricePerPiece: 7},
				{StripQty: 1, LoosePieces: 2, SellingPrice: 50, CostPrice: 40, SellingPricePerPiece: 5, CostPricePerPiece: 4},
			},
		},
	}

	s := Aggregate(invoices)
	assert.InDelta(t, 350.00, s.TotalSales, 0.001)
	// 2*20 + 5*2 + (10 + 2*1)
	assert.InDelta(t, 62.00, s.TotalProfit, 0.001)
}

func TestAggregateMissingCostCountsZero(t *testing.T) {
	invoices := []domain.Invoice{
		{
			NetPayable: 90,
			Lines: []domain.InvoiceLine{
				{StripQty: 1, SellingPrice: 90},
			},
		},
	}
	s := Aggregate(invoices)
	assert.InDelta(t, 90.00, s.TotalSales, 0.001)
	assert.InDelta(t, 90.00, s.TotalProfit, 0.001)
}

func TestAggregateEmpty(t *testing.T) {
	s := Aggregate(nil)
	assert.Zero(t, s.TotalSales)
	assert.Zero(t, s.TotalProfit)
}

func TestExpenseTotal(t *testing.T) {
	total := ExpenseTotal([]domain.Expense{
		{Amount: 1200.50},
		{Amount: 300},
		{Amount: 0.255},
	})
	assert.InDelta(t, 1500.76, total, 0.001)
}

func TestWindow(t *testing.T) {
	now := time.Date(2026, 8, 15, 13, 30, 0, 0, time.UTC)

	t.Run("all", func(t *testing.T) {
		for _, kind := range []string{"", "all"} {
			start, end, err := Window(kind, "", "", now)
			require.NoError(t, err)
			assert.Empty(t, start)
			assert.Empty(t, end)
		}
	})

	t.Run("daily", func(t *testing.T) {
		start, end, err := Window("daily", "", "", now)
		require.NoError(t, err)
		assert.Equal(t, "2026-08-15", start)
		assert.Equal(t, "2026-08-15", end)
	})

	t.Run("weekly", func(t *testing.T) {
		start, end, err := Window("weekly", "", "", now)
		require.NoError(t, err)
		assert.Equal(t, "2026-08-08", start)
		assert.Equal(t, "2026-08-15", end)
	})

	t.Run("monthly", func(t *testing.T) {
		start, end, err := Window("monthly", "", "", now)
		require.NoError(t, err)
		assert.Equal(t, "2026-08-01", start)
		assert.Equal(t, "2026-08-31", end)
	})

	t.Run("yearly", func(t *testing.T) {
		start, end, err := Window("yearly", "", "", now)
		require.NoError(t, err)
		assert.Equal(t, "2026-01-01", start)
		assert.Equal(t, "2026-12-31", end)
	})

	t.Run("custom", func(t *testing.T) {
		start, end, err := Window("custom", "2026-01-10", "2026-02-10", now)
		require.NoError(t, err)
		assert.Equal(t, "2026-01-10", start)
		assert.Equal(t, "2026-02-10", end)

		_, _, err = Window("custom", "2026-01-10", "", now)
		assert.ErrorIs(t, err, ErrBadWindow)
		_, _, err = Window("custom", "not-a-date", "2026-02-10", now)
		assert.ErrorIs(t, err, ErrBadWindow)
	})

	t.Run("unknown", func(t *testing.T) {
		_, _, err := Window("fortnightly", "", "", now)
		assert.ErrorIs(t, err, ErrBadWindow)
	})
}
