package customers

import (
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

func TestValidatePhone(t *testing.T) {
	assert.NoError(t, ValidatePhone("9876543210"))
	assert.NoError(t, ValidatePhone(" 9876543210 "))
	assert.ErrorIs(t, ValidatePhone("98765"), ErrInvalidPhoneFormat)
	assert.ErrorIs(t, ValidatePhone("98765432101"), ErrInvalidPhoneFormat)
	assert.ErrorIs(t, ValidatePhone("98765x3210"), ErrInvalidPhoneFormat)
	assert.ErrorIs(t, ValidatePhone(""), ErrInvalidPhoneFormat)
}

func TestFindOrCreate(t *testing.T) {
	db := testDB(t)
	r := New(db)

	id, err := r.FindOrCreate("Asha", "9876543210")
	require.NoError(t, err)
	require.NotNil(t, id)

	// Same phone resolves to the same identity regardless of the name given.
	again, err := r.FindOrCreate("Different Name", "9876543210")
	require.NoError(t, err)
	require.NotNil(t, again)
	assert.Equal(t, *id, *again)

	c, err := r.Get(*id)
	require.NoError(t, err)
	assert.Equal(t, "Asha", c.Name)

	var count int
	require.NoError(t, db.Get(&count, `SELECT COUNT(*) FROM customers`))
	assert.Equal(t, 1, count)
}

func TestFindOrCreateWalkIn(t *testing.T) {
	db := testDB(t)
	r := New(db)

	id, err := r.FindOrCreate("Somebody", "")
	require.NoError(t, err)
	assert.Nil(t, id)

	var count int
	require.NoError(t, db.Get(&count, `SELECT COUNT(*) FROM customers`))
	assert.Zero(t, count)
}

func TestFindOrCreateRequiresName(t *testing.T) {
	db := testDB(t)
	r := New(db)
	_, err := r.FindOrCreate("  ", "9876543210")
	assert.ErrorIs(t, err, ErrNameRequired)
}

func TestFindByPhoneTrimsInput(t *testing.T) {
	db := testDB(t)
	r := New(db)
	_, err := r.FindOrCreate("Asha", "9876543210")
	require.NoError(t, err)

	c, err := r.FindByPhone("  9876543210  ")
	require.NoError(t, err)
	assert.Equal(t, "Asha", c.Name)

	_, err = r.FindByPhone("0000000000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListAppendsWalkInEntry(t *testing.T) {
	db := testDB(t)
	r := New(db)

	_, err := r.FindOrCreate("Binod", "9000000001")
	require.NoError(t, err)
	_, err = r.FindOrCreate("Asha", "9000000002")
	require.NoError(t, err)

	// Two anonymous sales should show up on the walk-in row.
	for i := 0; i < 2; i++ {
		_, err := db.Exec(`INSERT INTO sales (invoice_id, customer_id, customer_name, customer_phone, timestamp) VALUES ($1, NULL, $2, $3, '2026-08-01 10:00:00')`,
			"inv-"+string(rune('a'+i)), domain.WalkInCustomerName, domain.WalkInCustomerPhone)
		require.NoError(t, err)
	}

	entries, err := r.List()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "Asha", entries[0].Name)
	assert.Equal(t, "Binod", entries[1].Name)

	walkIn := entries[2]
	assert.True(t, walkIn.IsWalkIn)
	assert.Equal(t, domain.WalkInCustomerKey, walkIn.ID)
	assert.Equal(t, domain.WalkInCustomerName, walkIn.Name)
	assert.Equal(t, domain.WalkInCustomerPhone, walkIn.Phone)
	assert.Equal(t, int64(2), walkIn.SalesCount)
}

func TestDelete(t *testing.T) {
	db := testDB(t)
	r := New(db)

	id, err := r.FindOrCreate("Asha", "9876543210")
	require.NoError(t, err)

	require.NoError(t, r.Delete(*id))
	_, err = r.Get(*id)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, r.Delete(*id), ErrNotFound)
}
