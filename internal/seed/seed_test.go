package seed

import (
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmapos/m/domain"
	"pharmapos/m/internal/database"
	"pharmapos/m/internal/migrations"
)

func testDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db := database.Connect(":memory:")
	t.Cleanup(func() { db.Close() })
	migrations.Run(db)
	return db
}

const catalogHeader = "HSN Code,Batch No,Name,Salt,Expiry Date,Scheme,MRP,Cost Price,Discount (%),Selling Price,Distributor,H1 Drug"

func TestImportCatalog(t *testing.T) {
	db := testDB(t)
	csv := catalogHeader + "\n" +
		"3004,B123,Paracetamol 500,Paracetamol,2027-03-01,none,100,70,,90,Acme Pharma,no\n" +
		"3004,B124,Azithromycin 250,Azithromycin,2027-06-01,none,200,120,15,,Acme Pharma,yes\n" +
		",,,,,,,,,,,\n"

	rows, err := ImportCatalog(db, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, rows)

	var medicines []domain.Medicine
	require.NoError(t, db.Select(&medicines, `SELECT id, name, mrp, cost_price, selling_price, discount_percent, is_h1_drug FROM medicines ORDER BY name`))
	require.Len(t, medicines, 2)

	// Discount column drives the derived selling price.
	azi := medicines[0]
	assert.Equal(t, "Azithromycin 250", azi.Name)
	assert.InDelta(t, 170.00, azi.SellingPrice, 0.001)
	assert.InDelta(t, 15.00, azi.DiscountPercent, 0.001)
	assert.True(t, azi.IsH1Drug)

	// An explicit selling price wins and recomputes the discount.
	para := medicines[1]
	assert.InDelta(t, 90.00, para.SellingPrice, 0.001)
	assert.InDelta(t, 10.00, para.DiscountPercent, 0.001)
	assert.False(t, para.IsH1Drug)
}

func TestImportCatalogRejectsMissingColumns(t *testing.T) {
	db := testDB(t)
	csv := "Name,MRP\nParacetamol 500,100\n"

	_, err := ImportCatalog(db, strings.NewReader(csv))
	require.Error(t, err)
	// All gaps reported at once, and nothing gets loaded.
	assert.Contains(t, err.Error(), "HSN Code")
	assert.Contains(t, err.Error(), "H1 Drug")

	var count int
	require.NoError(t, db.Get(&count, `SELECT COUNT(*) FROM medicines`))
	assert.Zero(t, count)
}

func TestImportCatalogDefaultsBadNumbersToZero(t *testing.T) {
	db := testDB(t)
	csv := catalogHeader + "\n" +
		"3004,B125,Cough Syrup,,2027-01-01,none,not-a-number,abc,,,Acme Pharma,\n"

	rows, err := ImportCatalog(db, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, rows)

	var m domain.Medicine
	require.NoError(t, db.Get(&m, `SELECT id, name, mrp, cost_price, selling_price FROM medicines WHERE name = 'Cough Syrup'`))
	assert.Zero(t, m.MRP)
	assert.Zero(t, m.CostPrice)
	assert.Zero(t, m.SellingPrice)
}

func TestParseFlag(t *testing.T) {
	for _, val := range []string{"yes", "Y", "TRUE", "1", "H1"} {
		assert.True(t, parseFlag(val), val)
	}
	for _, val := range []string{"", "no", "0", "false"} {
		assert.False(t, parseFlag(val), val)
	}
}
