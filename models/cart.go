package models

import "time"

// LineDiscount is a manual, per-line markdown applied by the cashier.
type LineDiscount struct {
	Type  string `json:"type" bson:"type"` // percentage, amount
	Value int64  `json:"value" bson:"value"`
	// percentage values are basis points (1500 = 15%), amount values are cents
}

// CartItem is a single line in a session's cart.
type CartItem struct {
	SessionID string        `json:"sessionId" bson:"sessionid"`
	SKU       string        `json:"sku" bson:"sku"`
	Name      string        `json:"name" bson:"name"`
	Tier      string        `json:"tier,omitempty" bson:"tier,omitempty"` // size/variant label
	UnitPrice int64         `json:"unitPriceCents" bson:"unit_price"`
	Quantity  int           `json:"quantity" bson:"quantity"`
	TaxExempt bool          `json:"taxExempt,omitempty" bson:"tax_exempt,omitempty"`
	Discount  *LineDiscount `json:"discount,omitempty" bson:"discount,omitempty"`
	AddedBy   string        `json:"addedBy" bson:"addedby"`
	AddedAt   time.Time     `json:"addedAt" bson:"added_at"`
}

// CartCustomer is the transient selected-customer slot for a session's
// in-progress transaction. Cleared on cart clear or explicit removal.
type CartCustomer struct {
	SessionID  string    `json:"sessionId" bson:"sessionid"`
	CustomerID string    `json:"customerId" bson:"customerid"`
	AttachedAt time.Time `json:"attachedAt" bson:"attached_at"`
}
