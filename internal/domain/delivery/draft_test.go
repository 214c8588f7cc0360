package delivery

import (
	"testing"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func routeClients() []RouteClient {
	return []RouteClient{
		{ID: 1, Name: "Almacén Don Pepe", Document: "20-11111111-1", Neighborhood: "Centro"},
		{ID: 2, Name: "Kiosco La Esquina", Document: "27-22222222-2"},
		{ID: 3, Name: "Despensa Norte", Document: "23-33333333-3", Neighborhood: "Norte"},
	}
}

func catalog() []Product {
	return []Product{
		{ID: 10, Name: "Soda 2L", UnitPrice: valueobject.Units(10)},
		{ID: 20, Name: "Bidón 20L", UnitPrice: valueobject.Units(20)},
	}
}

func newRound(t *testing.T) *BatchSaleDraft {
	t.Helper()
	d, err := NewBatchSaleDraft("session-1", 5, routeClients(), catalog(), []Seller{{ID: 4, Name: "Marta"}})
	require.NoError(t, err)
	return d
}

func TestNewBatchSaleDraft_RequiresRoute(t *testing.T) {
	_, err := NewBatchSaleDraft("session-1", 0, routeClients(), catalog(), nil)
	assert.ErrorIs(t, err, ErrRouteRequired)
}

func TestBatchSaleDraft_Subtotal(t *testing.T) {
	t.Run("example C", func(t *testing.T) {
		d := newRound(t)
		_, err := d.SetQuantity(1, 10, "3")
		require.NoError(t, err)
		_, err = d.SetQuantity(1, 20, "1")
		require.NoError(t, err)

		assert.Equal(t, valueobject.Units(50), d.Subtotal(1))

		credit, err := d.SetCredit(1, "70")
		require.NoError(t, err)
		assert.Equal(t, valueobject.Units(70), credit)
		assert.True(t, d.ResultingBalance(1).IsZero())
	})

	t.Run("price refresh is reflected on next read", func(t *testing.T) {
		d := newRound(t)
		_, _ = d.SetQuantity(1, 10, "3")
		_, _ = d.SetQuantity(1, 20, "1")

		d.RefreshPrices([]Product{
			{ID: 10, Name: "Soda 2L", UnitPrice: valueobject.Units(12)},
			{ID: 20, Name: "Bidón 20L", UnitPrice: valueobject.Units(20)},
		})
		assert.Equal(t, valueobject.Units(56), d.Subtotal(1))
	})

	t.Run("product dropped from the list contributes nothing", func(t *testing.T) {
		d := newRound(t)
		_, _ = d.SetQuantity(1, 10, "3")
		_, _ = d.SetQuantity(1, 20, "1")

		d.RefreshPrices([]Product{{ID: 20, Name: "Bidón 20L", UnitPrice: valueobject.Units(20)}})
		assert.Equal(t, valueobject.Units(20), d.Subtotal(1))
		assert.Equal(t, int64(3), d.Quantity(1, 10))
	})
}

func TestBatchSaleDraft_SetQuantity(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int64
	}{
		{"integer", "4", 4},
		{"fraction is zero", "2.5", 0},
		{"negative is zero", "-3", 0},
		{"garbage is zero", "abc", 0},
		{"empty is zero", "", 0},
		{"beyond int64 is capped", "18446744073709551617", valueobject.MaxQuantity},
		{"exponent is capped", "1e20", valueobject.MaxQuantity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newRound(t)
			got, err := d.SetQuantity(2, 10, tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, d.Quantity(2, 10))
		})
	}

	t.Run("unknown client", func(t *testing.T) {
		_, err := newRound(t).SetQuantity(99, 10, "1")
		assert.ErrorIs(t, err, ErrClientNotInRoute)
	})

	t.Run("unknown product", func(t *testing.T) {
		_, err := newRound(t).SetQuantity(1, 99, "1")
		assert.ErrorIs(t, err, ErrProductNotInPrice)
	})

	t.Run("excluded client", func(t *testing.T) {
		d := newRound(t)
		require.NoError(t, d.Exclude(1))
		_, err := d.SetQuantity(1, 10, "1")
		assert.ErrorIs(t, err, ErrClientExcluded)
	})
}

func TestBatchSaleDraft_HugeInputStaysBounded(t *testing.T) {
	d, err := NewBatchSaleDraft("session-1", 5, routeClients(), []Product{
		{ID: 10, Name: "Soda 2L", UnitPrice: valueobject.Units(1000)},
		{ID: 30, Name: "Dispenser", UnitPrice: valueobject.MaxAmount()},
	}, nil)
	require.NoError(t, err)

	_, err = d.SetQuantity(1, 10, "9999999999999999")
	require.NoError(t, err)
	assert.Equal(t, valueobject.Units(1000).MultiplyByInt(valueobject.MaxQuantity), d.Subtotal(1))
	assert.True(t, d.Subtotal(1).IsPositive())

	_, err = d.SetQuantity(1, 30, "1e20")
	require.NoError(t, err)
	assert.Equal(t, valueobject.MaxAmount(), d.Subtotal(1))

	credit, err := d.SetCredit(1, "1e30")
	require.NoError(t, err)
	assert.Equal(t, valueobject.MaxAmount(), credit)
	assert.True(t, d.ResultingBalance(1).IsZero())
}

func TestBatchSaleDraft_Exclusion(t *testing.T) {
	d := newRound(t)
	require.NoError(t, d.Exclude(2))
	assert.True(t, d.IsExcluded(2))
	assert.Len(t, d.VisibleClients(), 2)
	assert.Len(t, d.Clients(), 3)

	require.NoError(t, d.Include(2))
	assert.False(t, d.IsExcluded(2))
	assert.Len(t, d.VisibleClients(), 3)

	assert.ErrorIs(t, d.Exclude(42), ErrClientNotInRoute)
}

func TestBatchSaleDraft_ChangeRouteResetsRound(t *testing.T) {
	d := newRound(t)
	_, _ = d.SetQuantity(1, 10, "3")
	_, _ = d.SetCredit(1, "5")
	require.NoError(t, d.Exclude(2))

	require.NoError(t, d.ChangeRoute(6, routeClients()))
	assert.Equal(t, int64(6), d.RouteID())
	assert.Zero(t, d.Quantity(1, 10))
	assert.True(t, d.Credit(1).IsZero())
	assert.False(t, d.IsExcluded(2))

	assert.ErrorIs(t, d.ChangeRoute(0, nil), ErrRouteRequired)
}

func TestBatchSaleDraft_ClearClient(t *testing.T) {
	d := newRound(t)
	_, _ = d.SetQuantity(1, 10, "3")
	_, _ = d.SetCredit(1, "5")

	require.NoError(t, d.ClearClient(1))
	assert.True(t, d.Subtotal(1).IsZero())
	assert.True(t, d.Credit(1).IsZero())
}

func TestBatchSaleDraft_CaptureRestore(t *testing.T) {
	d := newRound(t)
	_, _ = d.SetQuantity(1, 10, "3")
	_, _ = d.SetCredit(1, "5")
	require.NoError(t, d.Exclude(3))

	state := d.Capture()
	_, _ = d.SetQuantity(1, 10, "9")
	_, _ = d.SetCredit(1, "0")
	require.NoError(t, d.Include(3))

	d.Restore(state)
	assert.Equal(t, int64(3), d.Quantity(1, 10))
	assert.Equal(t, valueobject.Units(5), d.Credit(1))
	assert.True(t, d.IsExcluded(3))
}

func TestBatchSaleDraft_SubmitGuard(t *testing.T) {
	d := newRound(t)
	require.NoError(t, d.BeginSubmit())
	assert.ErrorIs(t, d.BeginSubmit(), shared.ErrSubmissionInFlight)
	d.EndSubmit()
	assert.NoError(t, d.BeginSubmit())
}

func TestResultingBalance_NeverNegative(t *testing.T) {
	assert.True(t, ResultingBalance(valueobject.Units(50), valueobject.Units(70)).IsZero())
	assert.Equal(t, valueobject.Units(20), ResultingBalance(valueobject.Units(50), valueobject.Units(30)))
}
