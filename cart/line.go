package cart

import (
	"errors"

	"tillpoint/models"
)

// LineTotal computes a cart line's total in cents: unit price times
// quantity, minus the manual discount, never below zero. Percentage
// discounts are basis points and round half-up.
func LineTotal(item models.CartItem) int64 {
	gross := item.UnitPrice * int64(item.Quantity)
	if item.Discount == nil {
		return gross
	}

	var off int64
	switch item.Discount.Type {
	case "percentage":
		off = roundHalfUpBps(gross, item.Discount.Value)
	case "amount":
		off = item.Discount.Value
	}

	total := gross - off
	if total < 0 {
		total = 0
	}
	return total
}

func validateDiscount(d *models.LineDiscount) error {
	switch d.Type {
	case "percentage":
		if d.Value < 0 || d.Value > 10000 {
			return errors.New("percentage discount out of range")
		}
	case "amount":
		if d.Value < 0 {
			return errors.New("amount discount must be non-negative")
		}
	default:
		return errors.New("unknown discount type")
	}
	return nil
}

// roundHalfUpBps applies a basis-point fraction to an amount, rounding
// half cents up.
func roundHalfUpBps(amount, bps int64) int64 {
	return (amount*bps + 5000) / 10000
}
