package receivable

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/erp/backoffice/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2026, 10, 17, 15, 4, 5, 0, time.UTC)

func TestBuildPayload(t *testing.T) {
	t.Run("example A", func(t *testing.T) {
		d := readyDraft(t)
		_, _ = d.SetAllocation(1, "600")
		_, _ = d.SetAllocation(2, "500")
		seller := int64(4)
		d.SetDetails(&seller, "  cobro semanal  ")

		p, err := BuildPayload(d, today, DefaultPaymentRules())
		require.NoError(t, err)

		data, err := json.Marshal(p)
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"cliente_id": 7,
			"vendedor_id": 4,
			"fecha": "2026-10-17",
			"total_cobrado": 1100,
			"observaciones": "cobro semanal",
			"aplicaciones": [
				{"venta_id": 1, "monto_aplicado": 600},
				{"venta_id": 2, "monto_aplicado": 500}
			]
		}`, string(data))
	})

	t.Run("example B fill all", func(t *testing.T) {
		d := readyDraft(t)
		require.NoError(t, d.FillAll())

		p, err := BuildPayload(d, today, DefaultPaymentRules())
		require.NoError(t, err)
		assert.Equal(t, valueobject.Units(1500), p.TotalCobrado)
		assert.Nil(t, p.VendedorID)
		assert.Nil(t, p.Observaciones)
	})

	t.Run("zero allocations are left out", func(t *testing.T) {
		d := readyDraft(t)
		_, _ = d.SetAllocation(1, "0")
		_, _ = d.SetAllocation(2, "0,01")

		p, err := BuildPayload(d, today, DefaultPaymentRules())
		require.NoError(t, err)
		require.Len(t, p.Aplicaciones, 1)
		assert.Equal(t, int64(2), p.Aplicaciones[0].VentaID)
		for _, a := range p.Aplicaciones {
			assert.True(t, a.MontoAplicado.IsPositive())
		}
	})

	t.Run("total equals the sum of applications", func(t *testing.T) {
		d := readyDraft(t)
		_, _ = d.SetAllocation(1, "333,33")
		_, _ = d.SetAllocation(2, "166.67")

		p, err := BuildPayload(d, today, DefaultPaymentRules())
		require.NoError(t, err)
		sum := valueobject.Zero()
		for _, a := range p.Aplicaciones {
			sum = sum.Add(a.MontoAplicado)
		}
		assert.Equal(t, sum, p.TotalCobrado)
		assert.Equal(t, "500.00", p.TotalCobrado.String())
	})

	t.Run("nothing allocated is rejected", func(t *testing.T) {
		d := readyDraft(t)
		_, err := BuildPayload(d, today, DefaultPaymentRules())
		assert.ErrorIs(t, err, ErrNothingAllocated)
	})

	t.Run("total below minimum is rejected", func(t *testing.T) {
		d := readyDraft(t)
		_, _ = d.SetAllocation(1, "0,50")
		_, err := BuildPayload(d, today, PaymentRules{MinTotal: valueobject.Units(1)})
		assert.ErrorIs(t, err, ErrTotalTooSmall)
	})

	t.Run("snapshot must be loaded", func(t *testing.T) {
		d, _ := NewCollectionDraft("user-1", 7)
		_, err := BuildPayload(d, today, DefaultPaymentRules())
		assert.ErrorIs(t, err, ErrSnapshotNotReady)
	})
}

func TestConfirm(t *testing.T) {
	d := readyDraft(t)
	_, _ = d.SetAllocation(1, "600")
	p, err := BuildPayload(d, today, DefaultPaymentRules())
	require.NoError(t, err)

	c := Confirm(d.Snapshot(), p)
	assert.Equal(t, "Almacén Don Pepe", c.ClientName)
	assert.Equal(t, 1, c.InvoiceCount)
	assert.Equal(t, valueobject.Units(600), c.Amount)
	assert.Contains(t, c.Message, "Almacén Don Pepe")
	assert.Contains(t, c.Message, "1 venta?")
}
