package orders

import (
	"context"
	"errors"
	"log"
	"time"

	"tillpoint/cart"
	"tillpoint/checkout"
	"tillpoint/db"
	"tillpoint/models"
	"tillpoint/mq"
	"tillpoint/utils"

	"go.mongodb.org/mongo-driver/bson"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrNotPayable    = errors.New("order is not awaiting payment")
	ErrUnderpaid     = errors.New("captured payments do not cover the order total")
)

// CreatePending freezes a quote into an order in awaiting_payment state.
// The cart stays intact until the order settles, so an abandoned payment
// leaves the register exactly where it was.
func CreatePending(ctx context.Context, q *checkout.Quote, registerID, cashierID string) (*models.Order, error) {
	number, err := NextOrderNumber(ctx, q.LocationID)
	if err != nil {
		return nil, err
	}

	lines := make([]models.OrderLine, 0, len(q.Lines))
	for _, it := range q.Lines {
		lines = append(lines, models.OrderLine{
			SKU:       it.SKU,
			Name:      it.Name,
			Tier:      it.Tier,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			Discount:  it.Discount,
			LineTotal: cart.LineTotal(it),
		})
	}

	now := time.Now()
	order := &models.Order{
		OrderID:         "ord-" + utils.GenerateID(14),
		OrderNumber:     number,
		SessionID:       q.SessionID,
		RegisterID:      registerID,
		LocationID:      q.LocationID,
		CashierID:       cashierID,
		CustomerID:      q.CustomerID,
		Lines:           lines,
		Subtotal:        q.Totals.Subtotal,
		LoyaltyDiscount: q.Totals.LoyaltyDiscount,
		PromoCode:       q.PromoCode,
		PromoDiscount:   q.Totals.PromoDiscount,
		Tax:             q.Totals.Tax,
		Total:           q.Totals.Total,
		Payments:        []models.Payment{},
		PointsRedeemed:  q.Totals.PointsRedeemed,
		PointsEarned:    q.Totals.PointsEarned,
		Status:          "awaiting_payment",
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if _, err := db.OrdersCollection.InsertOne(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// GetByID fetches an order by its internal ID.
func GetByID(ctx context.Context, orderID string) (*models.Order, error) {
	var order models.Order
	err := db.OrdersCollection.FindOne(ctx, bson.M{"orderid": orderID}).Decode(&order)
	if err != nil {
		return nil, ErrOrderNotFound
	}
	return &order, nil
}

// AppendPayment records a captured tender leg on an awaiting order.
// Each leg persists as it lands, so a failure partway through a split
// loses nothing already captured.
func AppendPayment(ctx context.Context, orderID string, p models.Payment) error {
	res, err := db.OrdersCollection.UpdateOne(ctx,
		bson.M{"orderid": orderID, "status": "awaiting_payment"},
		bson.M{
			"$push": bson.M{"payments": p},
			"$set":  bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotPayable
	}
	return nil
}

// CapturedTotal sums an order's captured legs.
func CapturedTotal(order *models.Order) int64 {
	var sum int64
	for _, p := range order.Payments {
		if p.Status == "captured" {
			sum += p.Amount
		}
	}
	return sum
}

// Finalize settles a fully paid order: marks it completed, moves loyalty
// points, clears the session cart, and emits the sale event for the
// totals worker. Returns the completion summary the receipt shows.
func Finalize(ctx context.Context, orderID string) (*models.SaleCompletion, error) {
	order, err := GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != "awaiting_payment" {
		return nil, ErrNotPayable
	}
	if CapturedTotal(order) < order.Total {
		return nil, ErrUnderpaid
	}

	now := time.Now()
	_, err = db.OrdersCollection.UpdateOne(ctx,
		bson.M{"orderid": orderID, "status": "awaiting_payment"},
		bson.M{"$set": bson.M{"status": "completed", "updated_at": now}},
	)
	if err != nil {
		return nil, err
	}

	if order.CustomerID != "" {
		delta := order.PointsEarned - order.PointsRedeemed
		if delta != 0 {
			_, err := db.CustomersCollection.UpdateOne(ctx,
				bson.M{"customerid": order.CustomerID},
				bson.M{"$inc": bson.M{"loyalty_points": delta}, "$set": bson.M{"updated_at": now}},
			)
			if err != nil {
				log.Println("Finalize: loyalty update failed for", order.CustomerID, err)
			}
		}
	}

	if err := cart.Clear(ctx, order.SessionID); err != nil {
		log.Println("Finalize: cart clear failed for", order.SessionID, err)
	}

	var cash, card, change int64
	for _, p := range order.Payments {
		if p.Status != "captured" {
			continue
		}
		switch p.Method {
		case "cash":
			cash += p.Amount
			change += p.Change
		case "card":
			card += p.Amount
		}
	}

	mq.EmitSale(ctx, models.SaleEvent{
		Type:       "sale_completed",
		OrderID:    order.OrderID,
		SessionID:  order.SessionID,
		RegisterID: order.RegisterID,
		TotalCents: order.Total,
		CashCents:  cash,
		CardCents:  card,
	})

	return &models.SaleCompletion{
		OrderID:        order.OrderID,
		OrderNumber:    order.OrderNumber,
		Subtotal:       order.Subtotal,
		Discount:       order.LoyaltyDiscount + order.PromoDiscount,
		Tax:            order.Tax,
		Total:          order.Total,
		ChangeDue:      change,
		PointsEarned:   order.PointsEarned,
		PointsRedeemed: order.PointsRedeemed,
	}, nil
}
