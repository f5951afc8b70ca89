package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmapos/m/domain"
)

func testMedicine() *domain.Medicine {
	m := &domain.Medicine{
		ID:           1,
		Name:         "Paracip 500",
		MRP:          100,
		CostPrice:    70,
		SellingPrice: 90,
		StripSize:    10,
		Quantity:     5,
	}
	m.Recalculate()
	return m
}

func TestAddItem(t *testing.T) {
	t.Run("out of stock is rejected and cart unchanged", func(t *testing.T) {
		c := New()
		m := testMedicine()
		m.Quantity = 0
		m.LooseQuantity = 0
		err := c.AddItem(m)
		assert.ErrorIs(t, err, ErrOutOfStock)
		assert.True(t, c.Empty())
	})

	t.Run("loose pieces alone count as stock", func(t *testing.T) {
		c := New()
		m := testMedicine()
		m.Quantity = 0
		m.LooseQuantity = 3
		require.NoError(t, c.AddItem(m))
		assert.Len(t, c.Lines(), 1)
	})

	t.Run("re-adding does not duplicate or change the line", func(t *testing.T) {
		c := New()
		m := testMedicine()
		require.NoError(t, c.AddItem(m))
		require.NoError(t, c.UpdateQuantity(m.ID, 2, 0))
		require.NoError(t, c.AddItem(m))
		lines := c.Lines()
		require.Len(t, lines, 1)
		assert.Equal(t, int64(2), lines[0].StripQty)
	})

	t.Run("snapshot survives later catalog edits", func(t *testing.T) {
		c := New()
		m := testMedicine()
		require.NoError(t, c.AddItem(m))
		m.SellingPrice = 50
		m.Recalculate()
		require.NoError(t, c.UpdateQuantity(m.ID, 1, 0))
		assert.Equal(t, 90.0, c.Lines()[0].LineTotal)
	})
}

func TestRemoveItem(t *testing.T) {
	c := New()
	m := testMedicine()
	require.NoError(t, c.AddItem(m))
	c.RemoveItem(m.ID)
	assert.True(t, c.Empty())

	// Removing a line that is not there is a no-op.
	c.RemoveItem(999)
	assert.True(t, c.Empty())
}

func TestUpdateQuantity(t *testing.T) {
	t.Run("strip only", func(t *testing.T) {
		c := New()
		require.NoError(t, c.AddItem(testMedicine()))
		require.NoError(t, c.UpdateQuantity(1, 2, 0))
		assert.Equal(t, 180.0, c.Lines()[0].LineTotal)
	})

	t.Run("loose only", func(t *testing.T) {
		c := New()
		require.NoError(t, c.AddItem(testMedicine()))
		require.NoError(t, c.UpdateQuantity(1, 0, 3))
		assert.Equal(t, 27.0, c.Lines()[0].LineTotal)
	})

	t.Run("both channels", func(t *testing.T) {
		c := New()
		require.NoError(t, c.AddItem(testMedicine()))
		require.NoError(t, c.UpdateQuantity(1, 2, 3))
		assert.Equal(t, 207.0, c.Lines()[0].LineTotal)
	})

	t.Run("negative quantities clamp to zero", func(t *testing.T) {
		c := New()
		require.NoError(t, c.AddItem(testMedicine()))
		require.NoError(t, c.UpdateQuantity(1, -2, -3))
		line := c.Lines()[0]
		assert.Equal(t, int64(0), line.StripQty)
		assert.Equal(t, int64(0), line.LoosePieces)
		assert.Equal(t, 0.0, line.LineTotal)
	})

	t.Run("unknown line", func(t *testing.T) {
		c := New()
		assert.ErrorIs(t, c.UpdateQuantity(7, 1, 0), ErrLineNotFound)
	})
}

func TestTotals(t *testing.T) {
	c := New()
	m := testMedicine()
	require.NoError(t, c.AddItem(m))
	require.NoError(t, c.UpdateQuantity(m.ID, 2, 3))

	second := &domain.Medicine{
		ID:           2,
		Name:         "Azithral 250",
		MRP:          60,
		CostPrice:    40,
		SellingPrice: 54,
		StripSize:    6,
		Quantity:     1,
	}
	second.Recalculate()
	require.NoError(t, c.AddItem(second))
	// Unpriced line: in the list, not in the totals.

	totals := c.Totals()
	// mrp: 2*100 + 3*10 = 230; savings: 2*(100-90) + 3*(10-9) = 23.
	assert.Equal(t, 230.0, totals.MRPTotal)
	assert.Equal(t, 23.0, totals.TotalSavings)
	assert.Equal(t, 207.0, totals.NetPayable)
}
