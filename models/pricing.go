package models

import "time"

// TaxRate is the sales tax configuration for a location.
// Rate is in basis points: 825 means 8.25%.
type TaxRate struct {
	LocationID string    `json:"locationId" bson:"locationid"`
	Name       string    `json:"name" bson:"name"`
	RateBps    int64     `json:"rateBps" bson:"rate_bps"`
	UpdatedAt  time.Time `json:"updatedAt" bson:"updated_at"`
}

// Promotion is a discount that can be applied at checkout.
// Percent values are basis points, amount values are cents.
type Promotion struct {
	Code       string    `json:"code" bson:"code"`
	Name       string    `json:"name" bson:"name"`
	Type       string    `json:"type" bson:"type"` // percent, amount
	Value      int64     `json:"value" bson:"value"`
	LocationID string    `json:"locationId,omitempty" bson:"locationid,omitempty"` // empty = all locations
	StartsAt   time.Time `json:"startsAt" bson:"starts_at"`
	EndsAt     time.Time `json:"endsAt" bson:"ends_at"`
	Active     bool      `json:"active" bson:"active"`
	CreatedAt  time.Time `json:"createdAt" bson:"created_at"`
}

// LoyaltyConfig governs point accrual and redemption.
type LoyaltyConfig struct {
	// PointValueCents is the cent value of one redeemed point.
	PointValueCents int64 `json:"pointValueCents" bson:"point_value"`
	// EarnPerCents is how many cents of spend earn one point.
	EarnPerCents int64 `json:"earnPerCents" bson:"earn_per"`
}
