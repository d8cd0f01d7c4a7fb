package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Inventario-ledger/internal/application/inventory"
)

func TestMovementPage_LimitesEfectivos(t *testing.T) {
	tests := []struct {
		limit, offset         int
		wantLimit, wantOffset int
	}{
		{0, 0, 50, 0},
		{-1, -5, 50, 0},
		{20, 40, 20, 40},
		{500, 0, 500, 0},
		{501, 0, 500, 0},
	}
	for _, tt := range tests {
		l, o := inventory.MovementPage(tt.limit, tt.offset)
		assert.Equal(t, tt.wantLimit, l)
		assert.Equal(t, tt.wantOffset, o)
	}
}
