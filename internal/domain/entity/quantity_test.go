package entity_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

func TestCheckQuantity(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"1", true},
		{"-3.5", true},
		{"0.000001", true},
		{"1.5000000", true}, // ceros de sobra no cambian el valor
		{"99999999999999.999999", true},
		{"0.0000004", false},
		{"0.0000016", false},
		{"100000000000000", false},
		{"-100000000000000", false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			err := entity.CheckQuantity("la cantidad", decimal.RequireFromString(tc.in))
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}
