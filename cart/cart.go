package cart

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"tillpoint/db"
	"tillpoint/models"
	"tillpoint/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AddItem adds a product line to a session's cart, incrementing quantity
// if the same SKU/tier is already present. Prices come from the catalog,
// never from the client.
func AddItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	sessionID := ps.ByName("sessionid")

	var body struct {
		SKU      string `json:"sku"`
		Barcode  string `json:"barcode"`
		Tier     string `json:"tier"`
		Quantity int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		log.Println("AddItem decode error:", err)
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	if body.Quantity <= 0 {
		body.Quantity = 1
	}
	if body.SKU == "" && body.Barcode == "" {
		http.Error(w, "SKU or barcode required", http.StatusBadRequest)
		return
	}

	if !sessionIsOpen(ctx, sessionID) {
		http.Error(w, "Session not found or closed", http.StatusNotFound)
		return
	}

	filter := bson.M{"active": true}
	if body.SKU != "" {
		filter["sku"] = body.SKU
	} else {
		filter["barcode"] = body.Barcode
	}

	var product models.Product
	if err := db.ProductsCollection.FindOne(ctx, filter).Decode(&product); err != nil {
		http.Error(w, "Product not found", http.StatusNotFound)
		return
	}

	price := product.Price
	if body.Tier != "" {
		found := false
		for _, t := range product.Tiers {
			if t.Label == body.Tier {
				price = t.Price
				found = true
				break
			}
		}
		if !found {
			http.Error(w, "Unknown tier", http.StatusBadRequest)
			return
		}
	}

	update := bson.M{
		"$inc": bson.M{"quantity": body.Quantity},
		"$setOnInsert": bson.M{
			"name":       product.Name,
			"unit_price": price,
			"tax_exempt": product.TaxExempt,
			"addedby":    userID,
			"added_at":   time.Now(),
		},
	}
	opts := options.Update().SetUpsert(true)

	if _, err := db.CartCollection.UpdateOne(ctx,
		bson.M{"sessionid": sessionID, "sku": product.SKU, "tier": body.Tier},
		update, opts,
	); err != nil {
		log.Println("AddItem UpdateOne error:", err)
		http.Error(w, "Failed to add to cart", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, map[string]string{"status": "added"})
}

// GetCart returns a session's cart lines with computed line totals.
func GetCart(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	sessionID := ps.ByName("sessionid")

	items, err := Items(ctx, sessionID)
	if err != nil {
		log.Println("GetCart error:", err)
		http.Error(w, "Could not retrieve cart", http.StatusInternalServerError)
		return
	}

	type lineView struct {
		models.CartItem
		LineTotal int64 `json:"lineTotalCents"`
	}
	views := make([]lineView, 0, len(items))
	var subtotal int64
	for _, it := range items {
		lt := LineTotal(it)
		subtotal += lt
		views = append(views, lineView{CartItem: it, LineTotal: lt})
	}

	resp := map[string]any{"items": views, "subtotalCents": subtotal}

	var cc models.CartCustomer
	if err := db.CartCustomerCollection.FindOne(ctx, bson.M{"sessionid": sessionID}).Decode(&cc); err == nil {
		resp["customerId"] = cc.CustomerID
	}

	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// UpdateItem sets quantity and/or the manual line discount on a cart line.
// Quantity zero removes the line.
func UpdateItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	sessionID := ps.ByName("sessionid")
	sku := ps.ByName("sku")

	var body struct {
		Tier     string               `json:"tier"`
		Quantity *int                 `json:"quantity"`
		Discount *models.LineDiscount `json:"discount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	filter := bson.M{"sessionid": sessionID, "sku": sku, "tier": body.Tier}

	if body.Quantity != nil && *body.Quantity <= 0 {
		if _, err := db.CartCollection.DeleteOne(ctx, filter); err != nil {
			http.Error(w, "Failed to remove item", http.StatusInternalServerError)
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "removed"})
		return
	}

	set := bson.M{}
	if body.Quantity != nil {
		set["quantity"] = *body.Quantity
	}
	if body.Discount != nil {
		if err := validateDiscount(body.Discount); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		set["discount"] = body.Discount
	}
	if len(set) == 0 {
		http.Error(w, "Nothing to update", http.StatusBadRequest)
		return
	}

	res, err := db.CartCollection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		log.Println("UpdateItem UpdateOne error:", err)
		http.Error(w, "Failed to update item", http.StatusInternalServerError)
		return
	}
	if res.MatchedCount == 0 {
		http.Error(w, "Item not in cart", http.StatusNotFound)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// ClearCart empties the cart and detaches any selected customer.
func ClearCart(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	sessionID := ps.ByName("sessionid")

	if err := Clear(ctx, sessionID); err != nil {
		log.Println("ClearCart error:", err)
		http.Error(w, "Failed to clear cart", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// Items loads a session's cart lines.
func Items(ctx context.Context, sessionID string) ([]models.CartItem, error) {
	cursor, err := db.CartCollection.Find(ctx, bson.M{"sessionid": sessionID}, options.Find().SetSort(bson.M{"added_at": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []models.CartItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Clear removes all lines and the selected customer for a session.
func Clear(ctx context.Context, sessionID string) error {
	if _, err := db.CartCollection.DeleteMany(ctx, bson.M{"sessionid": sessionID}); err != nil {
		return err
	}
	_, err := db.CartCustomerCollection.DeleteMany(ctx, bson.M{"sessionid": sessionID})
	return err
}

func sessionIsOpen(ctx context.Context, sessionID string) bool {
	count, err := db.SessionsCollection.CountDocuments(ctx, bson.M{"sessionid": sessionID, "status": "open"})
	return err == nil && count > 0
}
