package command

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrice_Cents(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"45.10", 4510, false},
		{"0", 0, false},
		{"-3.5", -350, false},
		{"1000", 100000, false},
		{"0.001", 0, true},
	}

	for _, tt := range tests {
		p, err := NewPrice(tt.in)
		require.NoError(t, err)

		got, err := p.Cents()
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestQuantity_KW(t *testing.T) {
	q, err := NewQuantity("0.25")
	require.NoError(t, err)

	kw, err := q.KW()
	require.NoError(t, err)
	assert.Equal(t, int64(250), kw)

	q, err = NewQuantity("0.0001")
	require.NoError(t, err)
	_, err = q.KW()
	assert.Error(t, err)
}

func TestUnits_JSONWireValues(t *testing.T) {
	type row struct {
		Price    Price    `json:"price"`
		Quantity Quantity `json:"quantity"`
	}

	var r row
	require.NoError(t, json.Unmarshal([]byte(`{"price":4510,"quantity":1500}`), &r))
	assert.Equal(t, "45.1", r.Price.String())
	assert.Equal(t, "1.5", r.Quantity.String())

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"price":4510,"quantity":1500}`, string(data))

	assert.True(t, PriceFromCents(4510).Equal(r.Price.Decimal))
	assert.True(t, QuantityFromKW(1500).Equal(r.Quantity.Decimal))
}

func TestNewPrice_Invalid(t *testing.T) {
	_, err := NewPrice("abc")
	assert.Error(t, err)
	_, err = NewQuantity("")
	assert.Error(t, err)
}
