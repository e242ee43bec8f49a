package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"tillpoint/cart"
	"tillpoint/db"
	"tillpoint/models"
	"tillpoint/pricing"
	"tillpoint/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Default loyalty program: a point per dollar spent, five cents back per
// point redeemed. Overridable per deployment via the loyalty_config doc.
var defaultLoyalty = models.LoyaltyConfig{PointValueCents: 5, EarnPerCents: 100}

// Quote is a full checkout preview for a session's cart.
type Quote struct {
	SessionID  string            `json:"sessionId"`
	LocationID string            `json:"locationId"`
	RegisterID string            `json:"registerId"`
	Lines      []models.CartItem `json:"-"`
	CustomerID string            `json:"customerId,omitempty"`
	PromoCode  string            `json:"promoCode,omitempty"`
	MaxRedeem  int64             `json:"maxRedeemablePoints"`
	Totals     Totals            `json:"totals"`
}

// QuoteCart returns the totals preview the register screen displays.
// POST body selects loyalty redemption and promo code.
func QuoteCart(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	sessionID := ps.ByName("sessionid")

	var body struct {
		RedeemPoints int64  `json:"redeemPoints"`
		PromoCode    string `json:"promoCode"`
	}
	if r.Body != nil {
		// an empty body means "quote with no redemption or promo"
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
			return
		}
	}
	if body.RedeemPoints < 0 {
		http.Error(w, "redeemPoints must be non-negative", http.StatusBadRequest)
		return
	}

	quote, err := BuildQuote(ctx, sessionID, body.RedeemPoints, body.PromoCode)
	if err == ErrEmptyCart {
		http.Error(w, "Cart is empty", http.StatusBadRequest)
		return
	}
	if err != nil {
		log.Println("QuoteCart error:", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, quote)
}

// BuildQuote assembles cart lines, loyalty state, promotion, and tax rate
// into computed totals. Shared by the quote endpoint and sale completion.
func BuildQuote(ctx context.Context, sessionID string, redeemPoints int64, promoCode string) (*Quote, error) {
	var sess models.Session
	if err := db.SessionsCollection.FindOne(ctx, bson.M{"sessionid": sessionID, "status": "open"}).Decode(&sess); err != nil {
		return nil, err
	}

	items, err := cart.Items(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	in := TotalsInput{
		RedeemPoints: redeemPoints,
		TaxRateBps:   taxRateFor(ctx, sess.LocationID),
		Loyalty:      loyaltyConfig(ctx),
	}
	for _, it := range items {
		lt := cart.LineTotal(it)
		in.Subtotal += lt
		if !it.TaxExempt {
			in.NonExempt += lt
		}
	}

	quote := &Quote{
		SessionID:  sessionID,
		LocationID: sess.LocationID,
		RegisterID: sess.RegisterID,
		Lines:      items,
	}

	if customer, err := cart.SelectedCustomer(ctx, sessionID); err == nil {
		in.CustomerPoints = customer.LoyaltyPoints
		quote.CustomerID = customer.CustomerID
	}

	if promoCode != "" {
		promo, err := pricing.ActivePromotion(ctx, promoCode, sess.LocationID)
		if err != nil {
			return nil, err
		}
		in.Promo = promo
		quote.PromoCode = promo.Code
	}

	quote.MaxRedeem = MaxRedeemablePoints(in.Subtotal, in.CustomerPoints, in.Loyalty)
	quote.Totals = ComputeTotals(in)
	return quote, nil
}

func taxRateFor(ctx context.Context, locationID string) int64 {
	var rate models.TaxRate
	err := db.TaxRatesCollection.FindOne(ctx, bson.M{"locationid": locationID}).Decode(&rate)
	if err != nil {
		if err != mongo.ErrNoDocuments {
			log.Println("taxRateFor lookup error:", err)
		}
		return 0
	}
	return rate.RateBps
}

func loyaltyConfig(ctx context.Context) models.LoyaltyConfig {
	var cfg models.LoyaltyConfig
	err := db.TaxRatesCollection.Database().Collection("loyalty_config").FindOne(ctx, bson.M{}).Decode(&cfg)
	if err != nil || cfg.PointValueCents <= 0 {
		return defaultLoyalty
	}
	return cfg
}
