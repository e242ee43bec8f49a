package customers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"tillpoint/db"
	"tillpoint/models"
	"tillpoint/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateCustomer enrolls a new loyalty member.
func CreateCustomer(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var customer models.Customer
	if err := json.NewDecoder(r.Body).Decode(&customer); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	if customer.FirstName == "" && customer.Phone == "" && customer.Email == "" {
		http.Error(w, "A name, phone, or email is required", http.StatusBadRequest)
		return
	}

	if customer.Phone != "" {
		count, err := db.CustomersCollection.CountDocuments(ctx, bson.M{"phone": customer.Phone})
		if err == nil && count > 0 {
			http.Error(w, "A customer with this phone already exists", http.StatusConflict)
			return
		}
	}

	customer.CustomerID = "cus-" + utils.GenerateID(12)
	customer.LoyaltyPoints = 0
	customer.CreatedAt = time.Now()
	customer.UpdatedAt = customer.CreatedAt

	if _, err := db.CustomersCollection.InsertOne(ctx, customer); err != nil {
		log.Println("CreateCustomer error:", err)
		http.Error(w, "Failed to create customer", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, customer)
}

// GetCustomer fetches one customer by ID.
func GetCustomer(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var customer models.Customer
	err := db.CustomersCollection.FindOne(ctx, bson.M{"customerid": ps.ByName("customerid")}).Decode(&customer)
	if err != nil {
		http.Error(w, "Customer not found", http.StatusNotFound)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, customer)
}

// SearchCustomers does the register-screen lookup: prefix match on name,
// phone, or email, so the cashier can find the member from whatever the
// customer recites.
func SearchCustomers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	opts := utils.ParseQueryOptions(r)

	filter := bson.M{}
	if opts.Search != "" {
		term := strings.TrimSpace(opts.Search)
		prefix := bson.M{"$regex": "^" + term, "$options": "i"}
		filter["$or"] = []bson.M{
			{"firstname": prefix},
			{"lastname": prefix},
			{"phone": prefix},
			{"email": prefix},
		}
	}

	findOpts := options.Find().
		SetSort(bson.M{"lastname": 1, "firstname": 1}).
		SetLimit(int64(opts.Limit)).
		SetSkip(int64((opts.Page - 1) * opts.Limit))

	cursor, err := db.CustomersCollection.Find(ctx, filter, findOpts)
	if err != nil {
		log.Println("SearchCustomers error:", err)
		http.Error(w, "Failed to fetch customers", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	results := []models.Customer{}
	if err := cursor.All(ctx, &results); err != nil {
		http.Error(w, "Failed to decode customers", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, results)
}

// UpdateCustomer edits contact details. Loyalty points move only through
// sales, refunds, and the manager adjustment endpoint.
func UpdateCustomer(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var body struct {
		FirstName *string `json:"firstName"`
		LastName  *string `json:"lastName"`
		Email     *string `json:"email"`
		Phone     *string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	set := bson.M{"updated_at": time.Now()}
	if body.FirstName != nil {
		set["firstname"] = *body.FirstName
	}
	if body.LastName != nil {
		set["lastname"] = *body.LastName
	}
	if body.Email != nil {
		set["email"] = *body.Email
	}
	if body.Phone != nil {
		set["phone"] = *body.Phone
	}

	res, err := db.CustomersCollection.UpdateOne(ctx,
		bson.M{"customerid": ps.ByName("customerid")}, bson.M{"$set": set})
	if err != nil {
		log.Println("UpdateCustomer error:", err)
		http.Error(w, "Failed to update customer", http.StatusInternalServerError)
		return
	}
	if res.MatchedCount == 0 {
		http.Error(w, "Customer not found", http.StatusNotFound)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"updated": true})
}

// AdjustLoyalty applies a manual point correction. Manager only; the
// delta can be negative but the balance can't go below zero.
func AdjustLoyalty(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	customerID := ps.ByName("customerid")

	var body struct {
		Delta  int64  `json:"delta"`
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	if body.Delta == 0 {
		http.Error(w, "delta must be non-zero", http.StatusBadRequest)
		return
	}

	var updated models.Customer
	err := db.CustomersCollection.FindOneAndUpdate(ctx,
		bson.M{"customerid": customerID, "loyalty_points": bson.M{"$gte": -body.Delta}},
		bson.M{"$inc": bson.M{"loyalty_points": body.Delta}, "$set": bson.M{"updated_at": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		http.Error(w, "Customer not found or balance would go negative", http.StatusConflict)
		return
	}
	if err != nil {
		log.Println("AdjustLoyalty error:", err)
		http.Error(w, "Failed to adjust points", http.StatusInternalServerError)
		return
	}

	log.Printf("AdjustLoyalty: %s %+d points (%s)", customerID, body.Delta, body.Reason)
	utils.RespondWithJSON(w, http.StatusOK, updated)
}
