package orders

import (
	"context"
	"log"
	"net/http"
	"time"

	"tillpoint/db"
	"tillpoint/models"
	"tillpoint/mq"
	"tillpoint/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetOrder returns one order by internal ID.
func GetOrder(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	order, err := GetByID(ctx, ps.ByName("orderid"))
	if err != nil {
		http.Error(w, "Order not found", http.StatusNotFound)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, order)
}

// LookupByNumber finds an order by its printed receipt number, the thing
// a customer actually has in hand.
func LookupByNumber(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var order models.Order
	err := db.OrdersCollection.FindOne(ctx, bson.M{"order_number": ps.ByName("number")}).Decode(&order)
	if err != nil {
		http.Error(w, "Order not found", http.StatusNotFound)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, order)
}

// SearchOrders lists orders newest first with pagination. Filters:
// ?search= matches order number prefix or customer ID, ?location=,
// ?session=, ?from=/&to= bound the creation time.
func SearchOrders(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	opts := utils.ParseQueryOptions(r)

	filter := bson.M{}
	if opts.Search != "" {
		filter["$or"] = []bson.M{
			{"order_number": bson.M{"$regex": "^" + opts.Search}},
			{"customerid": opts.Search},
		}
	}
	if loc := r.URL.Query().Get("location"); loc != "" {
		filter["locationid"] = loc
	}
	if sess := r.URL.Query().Get("session"); sess != "" {
		filter["sessionid"] = sess
	}
	created := bson.M{}
	if !opts.From.IsZero() {
		created["$gte"] = opts.From
	}
	if !opts.To.IsZero() {
		created["$lte"] = opts.To
	}
	if len(created) > 0 {
		filter["created_at"] = created
	}

	findOpts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetLimit(int64(opts.Limit)).
		SetSkip(int64((opts.Page - 1) * opts.Limit))

	cursor, err := db.OrdersCollection.Find(ctx, filter, findOpts)
	if err != nil {
		log.Println("SearchOrders error:", err)
		http.Error(w, "Failed to fetch orders", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	results := []models.Order{}
	if err := cursor.All(ctx, &results); err != nil {
		http.Error(w, "Failed to decode orders", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"orders": results,
		"page":   opts.Page,
		"limit":  opts.Limit,
	})
}

// RefundOrder reverses a completed sale in full: payments flip to
// reversed, loyalty movement is undone, and a refund event rolls the
// session totals back. Manager only.
func RefundOrder(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	order, err := GetByID(ctx, ps.ByName("orderid"))
	if err != nil {
		http.Error(w, "Order not found", http.StatusNotFound)
		return
	}
	if order.Status != "completed" {
		http.Error(w, "Only completed orders can be refunded", http.StatusConflict)
		return
	}

	now := time.Now()
	res, err := db.OrdersCollection.UpdateOne(ctx,
		bson.M{"orderid": order.OrderID, "status": "completed"},
		bson.M{"$set": bson.M{
			"status":              "refunded",
			"payments.$[].status": "reversed",
			"updated_at":          now,
		}},
	)
	if err != nil || res.ModifiedCount == 0 {
		log.Println("RefundOrder update error:", err)
		http.Error(w, "Failed to refund order", http.StatusInternalServerError)
		return
	}

	if order.CustomerID != "" {
		delta := order.PointsRedeemed - order.PointsEarned
		if delta != 0 {
			_, err := db.CustomersCollection.UpdateOne(ctx,
				bson.M{"customerid": order.CustomerID},
				bson.M{"$inc": bson.M{"loyalty_points": delta}, "$set": bson.M{"updated_at": now}},
			)
			if err != nil {
				log.Println("RefundOrder: loyalty restore failed for", order.CustomerID, err)
			}
		}
	}

	var cash, card int64
	for _, p := range order.Payments {
		if p.Status != "captured" {
			continue
		}
		switch p.Method {
		case "cash":
			cash += p.Amount
		case "card":
			card += p.Amount
		}
	}

	mq.EmitSale(ctx, models.SaleEvent{
		Type:       "sale_refunded",
		OrderID:    order.OrderID,
		SessionID:  order.SessionID,
		RegisterID: order.RegisterID,
		TotalCents: order.Total,
		CashCents:  cash,
		CardCents:  card,
	})

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"refunded": true, "orderId": order.OrderID})
}
