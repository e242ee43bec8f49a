package pricing

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

// SetTaxRate upserts the tax rate for a location. Manager only.
func SetTaxRate(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	locationID := ps.ByName("locationid")

	var body struct {
		Name    string `json:"name"`
		RateBps int64  `json:"rateBps"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	if body.RateBps < 0 || body.RateBps > 10000 {
		http.Error(w, "rateBps must be between 0 and 10000", http.StatusBadRequest)
		return
	}

	rate := models.TaxRate{
		LocationID: locationID,
		Name:       body.Name,
		RateBps:    body.RateBps,
		UpdatedAt:  time.Now(),
	}

	_, err := db.TaxRatesCollection.ReplaceOne(ctx,
		bson.M{"locationid": locationID}, rate, options.Replace().SetUpsert(true))
	if err != nil {
		log.Println("SetTaxRate error:", err)
		http.Error(w, "Failed to save tax rate", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, rate)
}

// GetTaxRate returns the configured rate for a location, zero if unset.
func GetTaxRate(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	locationID := ps.ByName("locationid")

	var rate models.TaxRate
	err := db.TaxRatesCollection.FindOne(ctx, bson.M{"locationid": locationID}).Decode(&rate)
	if err != nil {
		rate = models.TaxRate{LocationID: locationID, RateBps: 0}
	}

	utils.RespondWithJSON(w, http.StatusOK, rate)
}
