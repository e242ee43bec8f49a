package session

import (
	"testing"

	"tillpoint/models"

	"github.com/stretchr/testify/assert"
)

func TestExpectedCash(t *testing.T) {
	tests := []struct {
		name         string
		openingFloat int64
		totals       models.SessionTotals
		want         int64
	}{
		{
			name:         "no activity",
			openingFloat: 10000,
			want:         10000,
		},
		{
			name:         "cash sales add up",
			openingFloat: 10000,
			totals:       models.SessionTotals{CashCents: 25000},
			want:         35000,
		},
		{
			name:         "card sales do not touch the drawer",
			openingFloat: 10000,
			totals:       models.SessionTotals{CardCents: 50000},
			want:         10000,
		},
		{
			name:         "paid in and paid out",
			openingFloat: 10000,
			totals:       models.SessionTotals{CashCents: 5000, PaidInCents: 2000, PaidOutCents: 3500},
			want:         13500,
		},
		{
			name:         "refund-heavy day can dip below the float",
			openingFloat: 5000,
			totals:       models.SessionTotals{CashCents: -2000, PaidOutCents: 4000},
			want:         -1000,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExpectedCash(tc.openingFloat, tc.totals))
		})
	}
}
