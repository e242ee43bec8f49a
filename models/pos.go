package models

import "time"

// Location is a store that registers belong to.
type Location struct {
	LocationID string    `json:"locationId" bson:"locationid"`
	Name       string    `json:"name" bson:"name"`
	Address    string    `json:"address,omitempty" bson:"address,omitempty"`
	Currency   string    `json:"currency" bson:"currency"`
	Active     bool      `json:"active" bson:"active"`
	CreatedAt  time.Time `json:"createdAt" bson:"created_at"`
}

// Register is a physical till at a location.
type Register struct {
	RegisterID string    `json:"registerId" bson:"registerid"`
	LocationID string    `json:"locationId" bson:"locationid"`
	Name       string    `json:"name" bson:"name"`
	Active     bool      `json:"active" bson:"active"`
	CreatedAt  time.Time `json:"createdAt" bson:"created_at"`
}

// Session is a register's open working period, bounded by an opening
// and closing cash count.
type Session struct {
	SessionID    string     `json:"sessionId" bson:"sessionid"`
	LocationID   string     `json:"locationId" bson:"locationid"`
	RegisterID   string     `json:"registerId" bson:"registerid"`
	OpenedBy     string     `json:"openedBy" bson:"openedby"`
	Cashiers     []string   `json:"cashiers" bson:"cashiers"` // everyone who joined
	OpeningFloat int64      `json:"openingFloatCents" bson:"opening_float"`
	ClosingCount int64      `json:"closingCountCents,omitempty" bson:"closing_count,omitempty"`
	ExpectedCash int64      `json:"expectedCashCents,omitempty" bson:"expected_cash,omitempty"`
	OverShort    int64      `json:"overShortCents,omitempty" bson:"over_short,omitempty"`
	Status       string     `json:"status" bson:"status"` // open, closed
	OpenedAt     time.Time  `json:"openedAt" bson:"opened_at"`
	ClosedAt     *time.Time `json:"closedAt,omitempty" bson:"closed_at,omitempty"`
	ClosedBy     string     `json:"closedBy,omitempty" bson:"closedby,omitempty"`
}

// DrawerEvent records cash movement outside a sale: paid in, paid out,
// or a no-sale drawer open.
type DrawerEvent struct {
	EventID   string    `json:"eventId" bson:"eventid"`
	SessionID string    `json:"sessionId" bson:"sessionid"`
	Type      string    `json:"type" bson:"type"` // paid_in, paid_out, no_sale
	Amount    int64     `json:"amountCents" bson:"amount"`
	Reason    string    `json:"reason,omitempty" bson:"reason,omitempty"`
	UserID    string    `json:"userId" bson:"userid"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}

// SessionTotals is the running aggregate a session accumulates while open.
// Maintained by the sales worker, read at close time.
type SessionTotals struct {
	SessionID    string    `json:"sessionId" bson:"sessionid"`
	SalesCount   int       `json:"salesCount" bson:"sales_count"`
	GrossCents   int64     `json:"grossCents" bson:"gross"`
	CashCents    int64     `json:"cashCents" bson:"cash"` // cash received net of change
	CardCents    int64     `json:"cardCents" bson:"card"` // card captures
	PaidInCents  int64     `json:"paidInCents" bson:"paid_in"`
	PaidOutCents int64     `json:"paidOutCents" bson:"paid_out"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updated_at"`
}
