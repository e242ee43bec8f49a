package orders

import (
	"context"
	"fmt"
	"time"

	"tillpoint/db"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NextOrderNumber hands out the next receipt number for a location,
// resetting each day. Numbers look like MAIN-20260828-0042. The counter
// lives in Mongo so every register at the location draws from the same
// sequence.
func NextOrderNumber(ctx context.Context, locationID string) (string, error) {
	day := time.Now().Format("20060102")
	counterID := locationID + ":" + day

	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := db.CountersCollection.FindOneAndUpdate(ctx,
		bson.M{"_id": counterID},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s-%s-%04d", locationID, day, counter.Seq), nil
}
