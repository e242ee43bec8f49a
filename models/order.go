package models

import "time"

// OrderLine is a frozen copy of a cart line at completion time.
type OrderLine struct {
	SKU       string        `json:"sku" bson:"sku"`
	Name      string        `json:"name" bson:"name"`
	Tier      string        `json:"tier,omitempty" bson:"tier,omitempty"`
	UnitPrice int64         `json:"unitPriceCents" bson:"unit_price"`
	Quantity  int           `json:"quantity" bson:"quantity"`
	Discount  *LineDiscount `json:"discount,omitempty" bson:"discount,omitempty"`
	LineTotal int64         `json:"lineTotalCents" bson:"line_total"`
}

// Order is a finalized sale.
type Order struct {
	OrderID         string      `json:"orderId" bson:"orderid"`
	OrderNumber     string      `json:"orderNumber" bson:"order_number"`
	SessionID       string      `json:"sessionId" bson:"sessionid"`
	RegisterID      string      `json:"registerId" bson:"registerid"`
	LocationID      string      `json:"locationId" bson:"locationid"`
	CashierID       string      `json:"cashierId" bson:"cashierid"`
	CustomerID      string      `json:"customerId,omitempty" bson:"customerid,omitempty"`
	Lines           []OrderLine `json:"lines" bson:"lines"`
	Subtotal        int64       `json:"subtotalCents" bson:"subtotal"`
	LoyaltyDiscount int64       `json:"loyaltyDiscountCents" bson:"loyalty_discount"`
	PromoCode       string      `json:"promoCode,omitempty" bson:"promo_code,omitempty"`
	PromoDiscount   int64       `json:"promoDiscountCents" bson:"promo_discount"`
	Tax             int64       `json:"taxCents" bson:"tax"`
	Total           int64       `json:"totalCents" bson:"total"`
	Payments        []Payment   `json:"payments" bson:"payments"`
	PointsRedeemed  int64       `json:"pointsRedeemed" bson:"points_redeemed"`
	PointsEarned    int64       `json:"pointsEarned" bson:"points_earned"`
	Status          string      `json:"status" bson:"status"` // awaiting_payment, completed, refunded
	CreatedAt       time.Time   `json:"createdAt" bson:"created_at"`
	UpdatedAt       time.Time   `json:"updatedAt" bson:"updated_at"`
}

// Payment is one settled tender leg of an order.
type Payment struct {
	PaymentID     string    `json:"paymentId" bson:"paymentid"`
	Method        string    `json:"method" bson:"method"` // cash, card
	Amount        int64     `json:"amountCents" bson:"amount"`
	Tendered      int64     `json:"tenderedCents,omitempty" bson:"tendered,omitempty"`
	Change        int64     `json:"changeCents,omitempty" bson:"change,omitempty"`
	AuthCode      string    `json:"authCode,omitempty" bson:"auth_code,omitempty"`
	TransactionID string    `json:"transactionId,omitempty" bson:"transaction_id,omitempty"`
	CardBrand     string    `json:"cardBrand,omitempty" bson:"card_brand,omitempty"`
	CardLast4     string    `json:"cardLast4,omitempty" bson:"card_last4,omitempty"`
	Status        string    `json:"status" bson:"status"` // captured, reversed
	CreatedAt     time.Time `json:"createdAt" bson:"created_at"`
}

// SaleCompletion is the server-confirmed receipt summary returned once
// a sale settles.
type SaleCompletion struct {
	OrderID        string `json:"orderId"`
	OrderNumber    string `json:"orderNumber"`
	Subtotal       int64  `json:"subtotalCents"`
	Discount       int64  `json:"discountCents"`
	Tax            int64  `json:"taxCents"`
	Total          int64  `json:"totalCents"`
	ChangeDue      int64  `json:"changeDueCents,omitempty"`
	PointsEarned   int64  `json:"pointsEarned"`
	PointsRedeemed int64  `json:"pointsRedeemed"`
}
