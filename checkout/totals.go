package checkout

import (
	"errors"

	"tillpoint/models"
)

// All money arithmetic is integer cents; percentage applications are
// basis points and round half-up at each step.

var ErrEmptyCart = errors.New("cart is empty")

// TotalsInput carries everything the totals computation needs, already
// resolved from storage.
type TotalsInput struct {
	Subtotal       int64 // sum of line totals
	NonExempt      int64 // portion of Subtotal from taxable lines
	CustomerPoints int64 // 0 when no customer attached
	RedeemPoints   int64 // points the cashier asked to redeem
	Promo          *models.Promotion
	TaxRateBps     int64
	Loyalty        models.LoyaltyConfig
}

// Totals is the computed breakdown: subtotal minus loyalty, minus promo,
// plus tax on the discounted remainder.
type Totals struct {
	Subtotal        int64 `json:"subtotalCents"`
	LoyaltyDiscount int64 `json:"loyaltyDiscountCents"`
	PointsRedeemed  int64 `json:"pointsRedeemed"`
	PromoDiscount   int64 `json:"promoDiscountCents"`
	TaxableBase     int64 `json:"taxableBaseCents"`
	Tax             int64 `json:"taxCents"`
	Total           int64 `json:"totalCents"`
	PointsEarned    int64 `json:"pointsEarned"`
}

// ComputeTotals applies the discount chain.
//
// Redemption is bounded by the customer's balance and by how many whole
// points fit in the subtotal, so the remainder can never go negative.
func ComputeTotals(in TotalsInput) Totals {
	t := Totals{Subtotal: in.Subtotal}

	remainder := in.Subtotal

	if in.RedeemPoints > 0 && in.Loyalty.PointValueCents > 0 {
		points := in.RedeemPoints
		if points > in.CustomerPoints {
			points = in.CustomerPoints
		}
		if max := remainder / in.Loyalty.PointValueCents; points > max {
			points = max
		}
		t.PointsRedeemed = points
		t.LoyaltyDiscount = points * in.Loyalty.PointValueCents
		remainder -= t.LoyaltyDiscount
	}

	if in.Promo != nil {
		switch in.Promo.Type {
		case "percent":
			t.PromoDiscount = roundHalfUpBps(remainder, in.Promo.Value)
		case "amount":
			t.PromoDiscount = in.Promo.Value
		}
		if t.PromoDiscount > remainder {
			t.PromoDiscount = remainder
		}
		remainder -= t.PromoDiscount
	}

	// Tax applies to the discounted remainder, scaled down by the share
	// of the subtotal that came from tax-exempt lines.
	t.TaxableBase = remainder
	if in.Subtotal > 0 && in.NonExempt < in.Subtotal {
		t.TaxableBase = roundHalfUp(remainder*in.NonExempt, in.Subtotal)
	}
	t.Tax = roundHalfUpBps(t.TaxableBase, in.TaxRateBps)

	t.Total = remainder + t.Tax

	if in.Loyalty.EarnPerCents > 0 {
		t.PointsEarned = remainder / in.Loyalty.EarnPerCents
	}

	return t
}

// MaxRedeemablePoints is the redemption bound shown to the cashier:
// min(customer balance, whole points that fit in the subtotal).
func MaxRedeemablePoints(subtotal, customerPoints int64, cfg models.LoyaltyConfig) int64 {
	if cfg.PointValueCents <= 0 {
		return 0
	}
	max := subtotal / cfg.PointValueCents
	if customerPoints < max {
		return customerPoints
	}
	return max
}

func roundHalfUpBps(amount, bps int64) int64 {
	return (amount*bps + 5000) / 10000
}

func roundHalfUp(numerator, denominator int64) int64 {
	if denominator == 0 {
		return 0
	}
	return (numerator + denominator/2) / denominator
}
