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
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// registerLockTTL bounds how long an open/close may hold the register lock.
const registerLockTTL = 10 * time.Second

// GetLocations lists active store locations for the setup wizard.
func GetLocations(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := db.LocationsCollection.Find(ctx, bson.M{"active": true}, options.Find().SetSort(bson.M{"name": 1}))
	if err != nil {
		log.Println("GetLocations Find error:", err)
		http.Error(w, "Could not retrieve locations", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	var locations []models.Location
	if err := cursor.All(ctx, &locations); err != nil {
		log.Println("GetLocations cursor.All error:", err)
		http.Error(w, "Error reading locations", http.StatusInternalServerError)
		return
	}
	if len(locations) == 0 {
		locations = []models.Location{}
	}

	utils.RespondWithJSON(w, http.StatusOK, locations)
}

// registerView is a register annotated with its open session, if any.
type registerView struct {
	models.Register
	OpenSession *models.Session `json:"openSession,omitempty"`
	Online      bool            `json:"online"`
}

// GetRegisters lists a location's registers, each annotated with its open
// session so the client can offer "join existing session".
func GetRegisters(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	locationID := ps.ByName("locationid")

	cursor, err := db.RegistersCollection.Find(ctx, bson.M{"locationid": locationID, "active": true})
	if err != nil {
		log.Println("GetRegisters Find error:", err)
		http.Error(w, "Could not retrieve registers", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	var registers []models.Register
	if err := cursor.All(ctx, &registers); err != nil {
		http.Error(w, "Error reading registers", http.StatusInternalServerError)
		return
	}

	views := make([]registerView, 0, len(registers))
	for _, reg := range registers {
		view := registerView{Register: reg, Online: rdx.RegisterSeen(reg.RegisterID)}
		var open models.Session
		err := db.SessionsCollection.FindOne(ctx, bson.M{"registerid": reg.RegisterID, "status": "open"}).Decode(&open)
		if err == nil {
			view.OpenSession = &open
		} else if err != mongo.ErrNoDocuments {
			http.Error(w, "Error reading sessions", http.StatusInternalServerError)
			return
		}
		views = append(views, view)
	}

	utils.RespondWithJSON(w, http.StatusOK, views)
}

// OpenSession opens a register session with an opening cash count. If the
// register already has an open session the caller is joined to it instead;
// no error, the client treats this as "join existing session".
func OpenSession(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		LocationID   string `json:"locationId"`
		RegisterID   string `json:"registerId"`
		OpeningFloat int64  `json:"openingFloatCents"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	if body.LocationID == "" || body.RegisterID == "" || body.OpeningFloat < 0 {
		http.Error(w, "Missing or invalid fields", http.StatusBadRequest)
		return
	}

	// Serialize open attempts per register.
	acquired, err := rdx.RdxSetNX("register_lock:"+body.RegisterID, userID, registerLockTTL)
	if err != nil || !acquired {
		http.Error(w, "Register busy, please retry", http.StatusTooManyRequests)
		return
	}
	defer rdx.RdxDel("register_lock:" + body.RegisterID)

	// Concurrent-session detection: join rather than double-open.
	var existing models.Session
	err = db.SessionsCollection.FindOne(ctx, bson.M{"registerid": body.RegisterID, "status": "open"}).Decode(&existing)
	if err == nil {
		if _, err := db.SessionsCollection.UpdateOne(ctx,
			bson.M{"sessionid": existing.SessionID},
			bson.M{"$addToSet": bson.M{"cashiers": userID}},
		); err != nil {
			log.Println("OpenSession join update error:", err)
		}
		utils.RespondWithJSON(w, http.StatusOK, map[string]any{"joined": true, "session": existing})
		return
	}
	if err != mongo.ErrNoDocuments {
		http.Error(w, "Error reading sessions", http.StatusInternalServerError)
		return
	}

	now := time.Now()
	sess := models.Session{
		SessionID:    utils.GetUUID(),
		LocationID:   body.LocationID,
		RegisterID:   body.RegisterID,
		OpenedBy:     userID,
		Cashiers:     []string{userID},
		OpeningFloat: body.OpeningFloat,
		Status:       "open",
		OpenedAt:     now,
	}

	if _, err := db.SessionsCollection.InsertOne(ctx, sess); err != nil {
		log.Println("OpenSession InsertOne error:", err)
		http.Error(w, "Failed to open session", http.StatusInternalServerError)
		return
	}

	totals := models.SessionTotals{SessionID: sess.SessionID, UpdatedAt: now}
	if _, err := db.SessionTotalsCollection.InsertOne(ctx, totals); err != nil {
		log.Println("OpenSession totals insert error:", err)
	}

	utils.RespondWithJSON(w, http.StatusCreated, map[string]any{"joined": false, "session": sess})
}

// JoinSession adds the caller to an already-open session.
func JoinSession(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	sessionID := ps.ByName("sessionid")

	res := db.SessionsCollection.FindOneAndUpdate(ctx,
		bson.M{"sessionid": sessionID, "status": "open"},
		bson.M{"$addToSet": bson.M{"cashiers": userID}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var sess models.Session
	if err := res.Decode(&sess); err != nil {
		http.Error(w, "Session not found or closed", http.StatusNotFound)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, sess)
}

// CloseSession records the closing count, computes the expected drawer and
// the over/short, and closes the session.
func CloseSession(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	sessionID := ps.ByName("sessionid")

	var body struct {
		ClosingCount int64 `json:"closingCountCents"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ClosingCount < 0 {
		http.Error(w, "Invalid closing count", http.StatusBadRequest)
		return
	}

	var sess models.Session
	if err := db.SessionsCollection.FindOne(ctx, bson.M{"sessionid": sessionID, "status": "open"}).Decode(&sess); err != nil {
		http.Error(w, "Session not found or already closed", http.StatusNotFound)
		return
	}

	acquired, err := rdx.RdxSetNX("register_lock:"+sess.RegisterID, userID, registerLockTTL)
	if err != nil || !acquired {
		http.Error(w, "Register busy, please retry", http.StatusTooManyRequests)
		return
	}
	defer rdx.RdxDel("register_lock:" + sess.RegisterID)

	var totals models.SessionTotals
	if err := db.SessionTotalsCollection.FindOne(ctx, bson.M{"sessionid": sessionID}).Decode(&totals); err != nil && err != mongo.ErrNoDocuments {
		http.Error(w, "Error reading session totals", http.StatusInternalServerError)
		return
	}

	expected := ExpectedCash(sess.OpeningFloat, totals)
	overShort := body.ClosingCount - expected
	now := time.Now()

	update := bson.M{"$set": bson.M{
		"status":        "closed",
		"closing_count": body.ClosingCount,
		"expected_cash": expected,
		"over_short":    overShort,
		"closed_at":     now,
		"closedby":      userID,
	}}
	if _, err := db.SessionsCollection.UpdateOne(ctx, bson.M{"sessionid": sessionID, "status": "open"}, update); err != nil {
		log.Println("CloseSession update error:", err)
		http.Error(w, "Failed to close session", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]any{
		"sessionId":         sessionID,
		"closingCountCents": body.ClosingCount,
		"expectedCashCents": expected,
		"overShortCents":    overShort,
		"closedAt":          now,
	})
}

// ExpectedCash is what the drawer should hold at close: the opening float
// plus cash taken net of change, plus paid-ins, minus paid-outs.
func ExpectedCash(openingFloat int64, totals models.SessionTotals) int64 {
	return openingFloat + totals.CashCents + totals.PaidInCents - totals.PaidOutCents
}

// GetSessionSummary returns the running totals for an open session.
func GetSessionSummary(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	sessionID := ps.ByName("sessionid")

	var sess models.Session
	if err := db.SessionsCollection.FindOne(ctx, bson.M{"sessionid": sessionID}).Decode(&sess); err != nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	var totals models.SessionTotals
	if err := db.SessionTotalsCollection.FindOne(ctx, bson.M{"sessionid": sessionID}).Decode(&totals); err != nil && err != mongo.ErrNoDocuments {
		http.Error(w, "Error reading session totals", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]any{
		"session":           sess,
		"totals":            totals,
		"expectedCashCents": ExpectedCash(sess.OpeningFloat, totals),
	})
}
