package cart

import (
	"testing"

	"tillpoint/models"

	"github.com/stretchr/testify/assert"
)

func TestLineTotal(t *testing.T) {
	tests := []struct {
		name string
		item models.CartItem
		want int64
	}{
		{
			name: "no discount",
			item: models.CartItem{UnitPrice: 250, Quantity: 3},
			want: 750,
		},
		{
			name: "percentage discount",
			item: models.CartItem{
				UnitPrice: 1000, Quantity: 2,
				Discount: &models.LineDiscount{Type: "percentage", Value: 1500}, // 15%
			},
			want: 1700,
		},
		{
			name: "percentage rounds half up",
			item: models.CartItem{
				UnitPrice: 105, Quantity: 1,
				Discount: &models.LineDiscount{Type: "percentage", Value: 1000}, // 10.5 -> 11 off
			},
			want: 94,
		},
		{
			name: "amount discount",
			item: models.CartItem{
				UnitPrice: 500, Quantity: 1,
				Discount: &models.LineDiscount{Type: "amount", Value: 150},
			},
			want: 350,
		},
		{
			name: "amount discount floors at zero",
			item: models.CartItem{
				UnitPrice: 200, Quantity: 1,
				Discount: &models.LineDiscount{Type: "amount", Value: 5000},
			},
			want: 0,
		},
		{
			name: "full percentage discount",
			item: models.CartItem{
				UnitPrice: 333, Quantity: 3,
				Discount: &models.LineDiscount{Type: "percentage", Value: 10000},
			},
			want: 0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, LineTotal(tc.item))
		})
	}
}

func TestValidateDiscount(t *testing.T) {
	assert.NoError(t, validateDiscount(&models.LineDiscount{Type: "percentage", Value: 500}))
	assert.NoError(t, validateDiscount(&models.LineDiscount{Type: "amount", Value: 100}))

	assert.Error(t, validateDiscount(&models.LineDiscount{Type: "percentage", Value: 10001}))
	assert.Error(t, validateDiscount(&models.LineDiscount{Type: "percentage", Value: -1}))
	assert.Error(t, validateDiscount(&models.LineDiscount{Type: "amount", Value: -50}))
	assert.Error(t, validateDiscount(&models.LineDiscount{Type: "bogus", Value: 10}))
}
