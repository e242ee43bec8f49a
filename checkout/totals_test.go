package checkout

import (
	"testing"

	"tillpoint/models"

	"github.com/stretchr/testify/assert"
)

var loyalty = models.LoyaltyConfig{PointValueCents: 5, EarnPerCents: 100}

func TestComputeTotalsPlain(t *testing.T) {
	got := ComputeTotals(TotalsInput{
		Subtotal:   10000,
		NonExempt:  10000,
		TaxRateBps: 825,
		Loyalty:    loyalty,
	})

	assert.Equal(t, int64(10000), got.Subtotal)
	assert.Equal(t, int64(0), got.LoyaltyDiscount)
	assert.Equal(t, int64(825), got.Tax)
	assert.Equal(t, int64(10825), got.Total)
	assert.Equal(t, int64(100), got.PointsEarned)
}

func TestComputeTotalsLoyaltyBoundedByBalance(t *testing.T) {
	got := ComputeTotals(TotalsInput{
		Subtotal:       10000,
		NonExempt:      10000,
		CustomerPoints: 40,
		RedeemPoints:   1000, // asks for more than the balance
		Loyalty:        loyalty,
	})

	assert.Equal(t, int64(40), got.PointsRedeemed)
	assert.Equal(t, int64(200), got.LoyaltyDiscount)
	assert.Equal(t, int64(9800), got.Total)
}

func TestComputeTotalsLoyaltyBoundedBySubtotal(t *testing.T) {
	// 300 cents of cart, 500 points on file: only 60 points fit
	got := ComputeTotals(TotalsInput{
		Subtotal:       300,
		NonExempt:      300,
		CustomerPoints: 500,
		RedeemPoints:   500,
		Loyalty:        loyalty,
	})

	assert.Equal(t, int64(60), got.PointsRedeemed)
	assert.Equal(t, int64(300), got.LoyaltyDiscount)
	assert.Equal(t, int64(0), got.Total)
}

func TestComputeTotalsPercentPromo(t *testing.T) {
	got := ComputeTotals(TotalsInput{
		Subtotal:  10000,
		NonExempt: 10000,
		Promo:     &models.Promotion{Code: "TEN", Type: "percent", Value: 1000},
		Loyalty:   loyalty,
	})

	assert.Equal(t, int64(1000), got.PromoDiscount)
	assert.Equal(t, int64(9000), got.Total)
	// points accrue on what the customer actually paid before tax
	assert.Equal(t, int64(90), got.PointsEarned)
}

func TestComputeTotalsPercentPromoRoundsHalfUp(t *testing.T) {
	// 10% of 105 cents is 10.5, rounds to 11
	got := ComputeTotals(TotalsInput{
		Subtotal:  105,
		NonExempt: 105,
		Promo:     &models.Promotion{Code: "TEN", Type: "percent", Value: 1000},
		Loyalty:   loyalty,
	})

	assert.Equal(t, int64(11), got.PromoDiscount)
}

func TestComputeTotalsAmountPromoCappedAtRemainder(t *testing.T) {
	got := ComputeTotals(TotalsInput{
		Subtotal:  500,
		NonExempt: 500,
		Promo:     &models.Promotion{Code: "BIG", Type: "amount", Value: 2000},
		Loyalty:   loyalty,
	})

	assert.Equal(t, int64(500), got.PromoDiscount)
	assert.Equal(t, int64(0), got.Total)
	assert.Equal(t, int64(0), got.Tax)
}

func TestComputeTotalsPromoAppliesAfterLoyalty(t *testing.T) {
	got := ComputeTotals(TotalsInput{
		Subtotal:       10000,
		NonExempt:      10000,
		CustomerPoints: 200,
		RedeemPoints:   200, // 1000 cents off
		Promo:          &models.Promotion{Code: "TEN", Type: "percent", Value: 1000},
		Loyalty:        loyalty,
	})

	assert.Equal(t, int64(1000), got.LoyaltyDiscount)
	// 10% of the 9000 remainder, not of the subtotal
	assert.Equal(t, int64(900), got.PromoDiscount)
	assert.Equal(t, int64(8100), got.Total)
}

func TestComputeTotalsTaxExemptShare(t *testing.T) {
	// half the cart is tax exempt, so tax falls on half the remainder
	got := ComputeTotals(TotalsInput{
		Subtotal:   8000,
		NonExempt:  4000,
		TaxRateBps: 1000,
		Loyalty:    loyalty,
	})

	assert.Equal(t, int64(4000), got.TaxableBase)
	assert.Equal(t, int64(400), got.Tax)
	assert.Equal(t, int64(8400), got.Total)
}

func TestComputeTotalsNeverNegative(t *testing.T) {
	cases := []TotalsInput{
		{Subtotal: 100, NonExempt: 100, CustomerPoints: 1000, RedeemPoints: 1000, Loyalty: loyalty},
		{Subtotal: 100, NonExempt: 100, Promo: &models.Promotion{Type: "amount", Value: 99999}, Loyalty: loyalty},
		{Subtotal: 100, NonExempt: 0, TaxRateBps: 10000, Loyalty: loyalty},
	}
	for _, in := range cases {
		got := ComputeTotals(in)
		assert.GreaterOrEqual(t, got.Total, int64(0))
		assert.GreaterOrEqual(t, got.Tax, int64(0))
	}
}

func TestMaxRedeemablePoints(t *testing.T) {
	assert.Equal(t, int64(40), MaxRedeemablePoints(10000, 40, loyalty))
	assert.Equal(t, int64(2000), MaxRedeemablePoints(10000, 99999, loyalty))
	assert.Equal(t, int64(0), MaxRedeemablePoints(10000, 40, models.LoyaltyConfig{}))
}
