package cart

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"tillpoint/db"
	"tillpoint/models"
	"tillpoint/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AttachCustomer selects a loyalty customer for the in-progress
// transaction. One customer per session; re-attaching replaces.
func AttachCustomer(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	sessionID := ps.ByName("sessionid")

	var body struct {
		CustomerID string `json:"customerId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.CustomerID == "" {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	count, err := db.CustomersCollection.CountDocuments(ctx, bson.M{"customerid": body.CustomerID})
	if err != nil || count == 0 {
		http.Error(w, "Customer not found", http.StatusNotFound)
		return
	}

	cc := models.CartCustomer{
		SessionID:  sessionID,
		CustomerID: body.CustomerID,
		AttachedAt: time.Now(),
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := db.CartCustomerCollection.ReplaceOne(ctx, bson.M{"sessionid": sessionID}, cc, opts); err != nil {
		http.Error(w, "Failed to attach customer", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, cc)
}

// DetachCustomer removes the selected customer without touching the cart.
func DetachCustomer(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	sessionID := ps.ByName("sessionid")

	if _, err := db.CartCustomerCollection.DeleteMany(ctx, bson.M{"sessionid": sessionID}); err != nil {
		http.Error(w, "Failed to detach customer", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "detached"})
}

// SelectedCustomer returns the customer attached to a session, if any.
func SelectedCustomer(ctx context.Context, sessionID string) (*models.Customer, error) {
	var cc models.CartCustomer
	if err := db.CartCustomerCollection.FindOne(ctx, bson.M{"sessionid": sessionID}).Decode(&cc); err != nil {
		return nil, err
	}
	var customer models.Customer
	if err := db.CustomersCollection.FindOne(ctx, bson.M{"customerid": cc.CustomerID}).Decode(&customer); err != nil {
		return nil, err
	}
	return &customer, nil
}
