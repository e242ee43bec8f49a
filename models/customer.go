package models

import "time"

// Customer is a loyalty program member.
type Customer struct {
	CustomerID    string    `json:"customerId" bson:"customerid"`
	FirstName     string    `json:"firstName" bson:"firstname"`
	LastName      string    `json:"lastName" bson:"lastname"`
	Email         string    `json:"email,omitempty" bson:"email,omitempty"`
	Phone         string    `json:"phone,omitempty" bson:"phone,omitempty"`
	LoyaltyPoints int64     `json:"loyaltyPoints" bson:"loyalty_points"`
	CreatedAt     time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" bson:"updated_at"`
}

// Product is a sellable catalog item.
type Product struct {
	SKU       string    `json:"sku" bson:"sku"`
	Barcode   string    `json:"barcode,omitempty" bson:"barcode,omitempty"`
	Name      string    `json:"name" bson:"name"`
	Category  string    `json:"category,omitempty" bson:"category,omitempty"`
	Price     int64     `json:"priceCents" bson:"price"`
	Tiers     []Tier    `json:"tiers,omitempty" bson:"tiers,omitempty"`
	TaxExempt bool      `json:"taxExempt,omitempty" bson:"tax_exempt,omitempty"`
	Active    bool      `json:"active" bson:"active"`
	Image     string    `json:"image,omitempty" bson:"image,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

// Tier is a named price variant of a product (size, weight class).
type Tier struct {
	Label string `json:"label" bson:"label"`
	Price int64  `json:"priceCents" bson:"price"`
}
