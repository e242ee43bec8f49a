package pricing

import (
	"context"
	"encoding/json"
	"errors"
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

var (
	ErrPromoNotFound = errors.New("promo code not found")
	ErrPromoInactive = errors.New("promo code is not active")
	ErrPromoWindow   = errors.New("promo code is outside its active window")
	ErrPromoScope    = errors.New("promo code is not valid at this location")
)

// ActivePromotion resolves a promo code for a location, rejecting codes
// that are inactive, out of window, or scoped to a different location.
func ActivePromotion(ctx context.Context, code, locationID string) (*models.Promotion, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	var promo models.Promotion
	err := db.PromotionsCollection.FindOne(ctx, bson.M{"code": code}).Decode(&promo)
	if err == mongo.ErrNoDocuments {
		return nil, ErrPromoNotFound
	}
	if err != nil {
		return nil, err
	}

	if !promo.Active {
		return nil, ErrPromoInactive
	}
	now := time.Now()
	if now.Before(promo.StartsAt) || now.After(promo.EndsAt) {
		return nil, ErrPromoWindow
	}
	if promo.LocationID != "" && promo.LocationID != locationID {
		return nil, ErrPromoScope
	}
	return &promo, nil
}

// CreatePromotion registers a new promo code. Manager only.
func CreatePromotion(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var promo models.Promotion
	if err := json.NewDecoder(r.Body).Decode(&promo); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	promo.Code = strings.ToUpper(strings.TrimSpace(promo.Code))
	if promo.Code == "" || promo.Name == "" {
		http.Error(w, "Code and name are required", http.StatusBadRequest)
		return
	}
	switch promo.Type {
	case "percent":
		if promo.Value <= 0 || promo.Value > 10000 {
			http.Error(w, "Percent value must be between 1 and 10000 basis points", http.StatusBadRequest)
			return
		}
	case "amount":
		if promo.Value <= 0 {
			http.Error(w, "Amount value must be positive cents", http.StatusBadRequest)
			return
		}
	default:
		http.Error(w, "Type must be percent or amount", http.StatusBadRequest)
		return
	}
	if !promo.EndsAt.After(promo.StartsAt) {
		http.Error(w, "endsAt must be after startsAt", http.StatusBadRequest)
		return
	}
	promo.CreatedAt = time.Now()

	count, err := db.PromotionsCollection.CountDocuments(ctx, bson.M{"code": promo.Code})
	if err != nil {
		log.Println("CreatePromotion count error:", err)
		http.Error(w, "Failed to create promotion", http.StatusInternalServerError)
		return
	}
	if count > 0 {
		http.Error(w, "Promo code already exists", http.StatusConflict)
		return
	}

	if _, err := db.PromotionsCollection.InsertOne(ctx, promo); err != nil {
		log.Println("CreatePromotion insert error:", err)
		http.Error(w, "Failed to create promotion", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, promo)
}

// GetPromotions lists promo codes, newest first. ?active=true filters to
// codes currently inside their window.
func GetPromotions(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if r.URL.Query().Get("active") == "true" {
		now := time.Now()
		filter = bson.M{
			"active":    true,
			"starts_at": bson.M{"$lte": now},
			"ends_at":   bson.M{"$gte": now},
		}
	}

	cursor, err := db.PromotionsCollection.Find(ctx, filter,
		options.Find().SetSort(bson.M{"created_at": -1}))
	if err != nil {
		log.Println("GetPromotions error:", err)
		http.Error(w, "Failed to fetch promotions", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	promos := []models.Promotion{}
	if err := cursor.All(ctx, &promos); err != nil {
		http.Error(w, "Failed to decode promotions", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, promos)
}

// UpdatePromotion toggles or edits an existing code. Manager only.
func UpdatePromotion(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	code := strings.ToUpper(ps.ByName("code"))

	var body struct {
		Name   *string    `json:"name"`
		Active *bool      `json:"active"`
		EndsAt *time.Time `json:"endsAt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	set := bson.M{}
	if body.Name != nil {
		set["name"] = *body.Name
	}
	if body.Active != nil {
		set["active"] = *body.Active
	}
	if body.EndsAt != nil {
		set["ends_at"] = *body.EndsAt
	}
	if len(set) == 0 {
		http.Error(w, "Nothing to update", http.StatusBadRequest)
		return
	}

	res, err := db.PromotionsCollection.UpdateOne(ctx, bson.M{"code": code}, bson.M{"$set": set})
	if err != nil {
		log.Println("UpdatePromotion error:", err)
		http.Error(w, "Failed to update promotion", http.StatusInternalServerError)
		return
	}
	if res.MatchedCount == 0 {
		http.Error(w, "Promotion not found", http.StatusNotFound)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"updated": true})
}

// DeletePromotion removes a promo code outright. Manager only.
func DeletePromotion(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	code := strings.ToUpper(ps.ByName("code"))
	res, err := db.PromotionsCollection.DeleteOne(ctx, bson.M{"code": code})
	if err != nil {
		log.Println("DeletePromotion error:", err)
		http.Error(w, "Failed to delete promotion", http.StatusInternalServerError)
		return
	}
	if res.DeletedCount == 0 {
		http.Error(w, "Promotion not found", http.StatusNotFound)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"deleted": true})
}
