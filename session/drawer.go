package session

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"tillpoint/db"
	"tillpoint/models"
	"tillpoint/rdx"
	"tillpoint/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

// AddDrawerEvent records a paid-in, paid-out, or no-sale drawer open
// against an open session.
func AddDrawerEvent(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	sessionID := ps.ByName("sessionid")

	var body struct {
		Type   string `json:"type"`
		Amount int64  `json:"amountCents"`
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	switch body.Type {
	case "paid_in", "paid_out":
		if body.Amount <= 0 {
			http.Error(w, "Amount must be positive", http.StatusBadRequest)
			return
		}
	case "no_sale":
		body.Amount = 0
	default:
		http.Error(w, "Unknown drawer event type", http.StatusBadRequest)
		return
	}

	count, err := db.SessionsCollection.CountDocuments(ctx, bson.M{"sessionid": sessionID, "status": "open"})
	if err != nil || count == 0 {
		http.Error(w, "Session not found or closed", http.StatusNotFound)
		return
	}

	event := models.DrawerEvent{
		EventID:   utils.GetUUID(),
		SessionID: sessionID,
		Type:      body.Type,
		Amount:    body.Amount,
		Reason:    body.Reason,
		UserID:    userID,
		CreatedAt: time.Now(),
	}

	if _, err := db.DrawerCollection.InsertOne(ctx, event); err != nil {
		log.Println("AddDrawerEvent InsertOne error:", err)
		http.Error(w, "Failed to record drawer event", http.StatusInternalServerError)
		return
	}

	// Keep the running totals in step so close-time arithmetic is cheap.
	inc := bson.M{}
	switch body.Type {
	case "paid_in":
		inc["paid_in"] = body.Amount
	case "paid_out":
		inc["paid_out"] = body.Amount
	}
	if len(inc) > 0 {
		if _, err := db.SessionTotalsCollection.UpdateOne(ctx,
			bson.M{"sessionid": sessionID},
			bson.M{"$inc": inc, "$set": bson.M{"updated_at": time.Now()}},
		); err != nil {
			log.Println("AddDrawerEvent totals update error:", err)
		}
	}

	utils.RespondWithJSON(w, http.StatusCreated, event)
}

// GetDrawerEvents lists a session's drawer events, newest first.
func GetDrawerEvents(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	sessionID := ps.ByName("sessionid")

	cursor, err := db.DrawerCollection.Find(ctx, bson.M{"sessionid": sessionID})
	if err != nil {
		http.Error(w, "Could not retrieve drawer events", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	var events []models.DrawerEvent
	if err := cursor.All(ctx, &events); err != nil {
		http.Error(w, "Error reading drawer events", http.StatusInternalServerError)
		return
	}
	if len(events) == 0 {
		events = []models.DrawerEvent{}
	}

	utils.RespondWithJSON(w, http.StatusOK, events)
}

// RegisterStatus is the freshness poll the client hits every few seconds.
// It refreshes the register heartbeat and reports the open session.
func RegisterStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	registerID := ps.ByName("registerid")

	if err := rdx.RegisterHeartbeat(registerID); err != nil {
		log.Println("RegisterStatus heartbeat error:", err)
	}

	var sess models.Session
	err := db.SessionsCollection.FindOne(ctx, bson.M{"registerid": registerID, "status": "open"}).Decode(&sess)
	if err != nil {
		utils.RespondWithJSON(w, http.StatusOK, map[string]any{"open": false})
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"open": true, "session": sess})
}
