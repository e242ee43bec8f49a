package mq

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"tillpoint/db"
	"tillpoint/models"
	"tillpoint/rdx"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const salesChannel = "sale-events"

// EmitSale publishes a sale event to Redis. Aggregation happens in the
// worker, off the request path, so completing a sale never waits on it.
func EmitSale(ctx context.Context, evt models.SaleEvent) {
	data, err := json.Marshal(evt)
	if err != nil {
		log.Printf("EmitSale: marshal failed: %v", err)
		return
	}
	if err := rdx.Conn.Publish(ctx, salesChannel, data).Err(); err != nil {
		log.Printf("EmitSale: publish failed: %v", err)
	}
}

// StartSalesWorker consumes sale events and folds them into the
// session's running totals. Runs for the life of the process.
func StartSalesWorker() {
	ctx := context.Background()
	sub := rdx.Conn.Subscribe(ctx, salesChannel)
	ch := sub.Channel()

	log.Println("[SalesWorker] listening for sale events")

	for msg := range ch {
		var evt models.SaleEvent
		if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
			log.Printf("[SalesWorker] bad payload: %v", err)
			continue
		}
		if err := applySaleEvent(ctx, evt); err != nil {
			log.Printf("[SalesWorker] apply %s for order %s: %v", evt.Type, evt.OrderID, err)
		}
	}
}

func applySaleEvent(ctx context.Context, evt models.SaleEvent) error {
	inc := bson.M{
		"sales_count": 1,
		"gross":       evt.TotalCents,
		"cash":        evt.CashCents,
		"card":        evt.CardCents,
	}
	if evt.Type == "sale_refunded" {
		inc = bson.M{
			"sales_count": -1,
			"gross":       -evt.TotalCents,
			"cash":        -evt.CashCents,
			"card":        -evt.CardCents,
		}
	}

	_, err := db.SessionTotalsCollection.UpdateOne(ctx,
		bson.M{"sessionid": evt.SessionID},
		bson.M{
			"$inc": inc,
			"$set": bson.M{"updated_at": time.Now()},
		},
		options.Update().SetUpsert(true),
	)
	return err
}
