package payment

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"tillpoint/checkout"
	"tillpoint/models"
	"tillpoint/orders"
	"tillpoint/rdx"
	"tillpoint/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/redis/go-redis/v9"
)

// Tender is one leg of the payment the cashier keyed in.
type Tender struct {
	Method   string `json:"method"` // cash, card
	Amount   int64  `json:"amountCents"`
	Tendered int64  `json:"tenderedCents,omitempty"` // cash handed over; defaults to Amount
}

// Service runs payment collection against the card terminal and the
// order store. One instance serves all registers.
type Service struct {
	hub      *Hub
	terminal *Terminal
	rdx      *redis.Client
}

func NewService(hub *Hub) *Service {
	return &Service{
		hub:      hub,
		terminal: NewTerminal(),
		rdx:      rdx.Conn,
	}
}

// acquireLock takes the per-session payment lock so two registers joined
// to the same session cannot both start collecting.
func (s *Service) acquireLock(ctx context.Context, sessionID string) (bool, error) {
	return s.rdx.SetNX(ctx, "payment_lock:"+sessionID, "1", 5*time.Minute).Result()
}

func (s *Service) releaseLock(ctx context.Context, sessionID string) {
	if err := s.rdx.Del(ctx, "payment_lock:"+sessionID).Err(); err != nil {
		log.Printf("releaseLock: failed for session %s: %v", sessionID, err)
	}
}

// StartPayment turns the session's cart into an order and collects the
// tenders in sequence. If a card leg fails partway, the response carries
// the typed error plus a resume token; everything captured so far stays
// captured.
func (s *Service) StartPayment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	// Card presentations can legitimately take minutes.
	ctx, cancel := context.WithTimeout(r.Context(), ChargeTimeout+time.Minute)
	defer cancel()

	sessionID := ps.ByName("sessionid")
	cashierID := utils.GetUserIDFromRequest(r)

	var body struct {
		RedeemPoints int64    `json:"redeemPoints"`
		PromoCode    string   `json:"promoCode"`
		Tenders      []Tender `json:"tenders"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	ok, err := s.acquireLock(ctx, sessionID)
	if err != nil {
		log.Println("StartPayment lock error:", err)
		http.Error(w, "Failed to start payment", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "A payment is already in progress for this session", http.StatusConflict)
		return
	}
	defer s.releaseLock(ctx, sessionID)

	quote, err := checkout.BuildQuote(ctx, sessionID, body.RedeemPoints, body.PromoCode)
	if err == checkout.ErrEmptyCart {
		http.Error(w, "Cart is empty", http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	tenders, err := normalizeTenders(body.Tenders, quote.Totals.Total)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	order, err := orders.CreatePending(ctx, quote, quote.RegisterID, cashierID)
	if err != nil {
		log.Println("StartPayment create order error:", err)
		http.Error(w, "Failed to create order", http.StatusInternalServerError)
		return
	}

	s.settle(ctx, w, order, tenders)
}

// ResumePayment picks an interrupted order back up and collects the
// remaining balance. The client got the order ID in the failure response.
func (s *Service) ResumePayment(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), ChargeTimeout+time.Minute)
	defer cancel()

	var body struct {
		OrderID string   `json:"orderId"`
		Tenders []Tender `json:"tenders"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	order, err := orders.GetByID(ctx, body.OrderID)
	if err != nil {
		http.Error(w, "Order not found", http.StatusNotFound)
		return
	}
	if order.Status != "awaiting_payment" {
		http.Error(w, "Order is not awaiting payment", http.StatusConflict)
		return
	}

	ok, err := s.acquireLock(ctx, order.SessionID)
	if err != nil {
		log.Println("ResumePayment lock error:", err)
		http.Error(w, "Failed to resume payment", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "A payment is already in progress for this session", http.StatusConflict)
		return
	}
	defer s.releaseLock(ctx, order.SessionID)

	remaining := order.Total - orders.CapturedTotal(order)
	if remaining <= 0 {
		// Every leg already captured but the sale never completed
		// (finalize failed after the last charge). Nothing left to
		// collect; just finish the sale.
		completion, err := orders.Finalize(ctx, order.OrderID)
		if err != nil {
			log.Println("ResumePayment finalize error:", err)
			http.Error(w, "Failed to complete sale", http.StatusInternalServerError)
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, completion)
		return
	}

	tenders, err := normalizeTenders(body.Tenders, remaining)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.settle(ctx, w, order, tenders)
}

// settle collects each tender leg, then finalizes. Partial failure
// answers 402 with the typed error and a resume token.
func (s *Service) settle(ctx context.Context, w http.ResponseWriter, order *models.Order, tenders []Tender) {
	for _, t := range tenders {
		pay, err := s.collect(ctx, order, t)
		if err != nil {
			var termErr *TerminalError
			if !errors.As(err, &termErr) {
				log.Println("settle collect error:", err)
				http.Error(w, "Payment processing failed", http.StatusInternalServerError)
				return
			}
			s.hub.Publish(StageEvent{
				SessionID: order.SessionID,
				OrderID:   order.OrderID,
				Stage:     "failed",
				Code:      termErr.Code,
				Message:   termErr.Message,
			})
			current, gerr := orders.GetByID(ctx, order.OrderID)
			if gerr != nil {
				current = order
			}
			utils.RespondWithJSON(w, http.StatusPaymentRequired, utils.M{
				"error": termErr,
				"resume": utils.M{
					"orderId":        order.OrderID,
					"remainingCents": order.Total - orders.CapturedTotal(current),
				},
			})
			return
		}

		if err := orders.AppendPayment(ctx, order.OrderID, *pay); err != nil {
			log.Println("settle append error:", err)
			http.Error(w, "Failed to record payment", http.StatusInternalServerError)
			return
		}
		order.Payments = append(order.Payments, *pay)
	}

	completion, err := orders.Finalize(ctx, order.OrderID)
	if err != nil {
		log.Println("settle finalize error:", err)
		http.Error(w, "Failed to complete sale", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, completion)
}

// collect settles one leg. Cash is immediate; card goes through the
// terminal with progress streamed to the register screen.
func (s *Service) collect(ctx context.Context, order *models.Order, t Tender) (*models.Payment, error) {
	pay := models.Payment{
		PaymentID: "pay-" + utils.GenerateID(14),
		Method:    t.Method,
		Amount:    t.Amount,
		Status:    "captured",
		CreatedAt: time.Now(),
	}

	switch t.Method {
	case "cash":
		pay.Tendered = t.Tendered
		pay.Change = t.Tendered - t.Amount
		return &pay, nil

	case "card":
		result, err := s.terminal.Charge(ctx, ChargeRequest{
			AmountCents: t.Amount,
			Reference:   order.OrderID,
			RegisterID:  order.RegisterID,
		}, func(stage string) {
			s.hub.Publish(StageEvent{
				SessionID: order.SessionID,
				OrderID:   order.OrderID,
				Stage:     stage,
			})
		})
		if err != nil {
			return nil, err
		}
		pay.TransactionID = result.TransactionID
		pay.AuthCode = result.AuthCode
		pay.CardBrand = result.CardBrand
		pay.CardLast4 = result.CardLast4
		return &pay, nil

	default:
		return nil, errors.New("unsupported tender method: " + t.Method)
	}
}

// normalizeTenders validates the legs against the amount due. Legs must
// sum to the due amount; a one-cent gap from client-side rounding is
// absorbed into the last leg.
func normalizeTenders(tenders []Tender, due int64) ([]Tender, error) {
	if len(tenders) == 0 {
		return nil, errors.New("at least one tender is required")
	}

	var sum int64
	for i := range tenders {
		t := &tenders[i]
		switch t.Method {
		case "cash":
			if t.Tendered == 0 {
				t.Tendered = t.Amount
			}
			if t.Tendered < t.Amount {
				return nil, errors.New("cash tendered is less than the cash amount")
			}
		case "card":
			if t.Tendered != 0 {
				return nil, errors.New("tenderedCents only applies to cash")
			}
		default:
			return nil, errors.New("tender method must be cash or card")
		}
		if t.Amount <= 0 {
			return nil, errors.New("tender amounts must be positive")
		}
		sum += t.Amount
	}

	diff := due - sum
	if diff < -1 || diff > 1 {
		return nil, errors.New("tenders must sum to the amount due")
	}
	if diff != 0 {
		last := &tenders[len(tenders)-1]
		last.Amount += diff
		if last.Method == "cash" && last.Tendered < last.Amount {
			last.Tendered = last.Amount
		}
	}
	return tenders, nil
}
