package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"time"
)

// ChargeTimeout bounds a single card presentation end to end. Past it
// the cashier gets a timeout and decides whether to retry.
const ChargeTimeout = 3 * time.Minute

const pollInterval = time.Second

// ChargeRequest is what we hand the terminal gateway for one card leg.
type ChargeRequest struct {
	AmountCents int64  `json:"amountCents"`
	Reference   string `json:"reference"` // order ID, shown on the merchant statement
	RegisterID  string `json:"registerId"`
}

// ChargeResult is a terminal approval.
type ChargeResult struct {
	TransactionID string `json:"transactionId"`
	AuthCode      string `json:"authCode"`
	CardBrand     string `json:"cardBrand"`
	CardLast4     string `json:"cardLast4"`
}

type chargeStatus struct {
	ChargeID      string `json:"chargeId"`
	Stage         string `json:"stage"`
	Status        string `json:"status"` // pending, approved, declined, error
	ErrorCode     string `json:"errorCode,omitempty"`
	TransactionID string `json:"transactionId,omitempty"`
	AuthCode      string `json:"authCode,omitempty"`
	CardBrand     string `json:"cardBrand,omitempty"`
	CardLast4     string `json:"cardLast4,omitempty"`
}

// Terminal talks to the card terminal gateway over HTTP.
type Terminal struct {
	baseURL string
	client  *http.Client
}

// NewTerminal reads TERMINAL_GATEWAY_URL. The per-request deadline stays
// short; the overall charge deadline is enforced by the polling context.
func NewTerminal() *Terminal {
	base := os.Getenv("TERMINAL_GATEWAY_URL")
	if base == "" {
		base = "http://localhost:7077"
	}
	return &Terminal{
		baseURL: base,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Charge runs one card presentation: create the charge, then poll until
// the gateway reaches a final status. Each stage change is reported
// through progress so the register screen can follow along. Failures
// come back as *TerminalError.
func (t *Terminal) Charge(ctx context.Context, req ChargeRequest, progress func(stage string)) (*ChargeResult, error) {
	ctx, cancel := context.WithTimeout(ctx, ChargeTimeout)
	defer cancel()

	progress("initializing")

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	progress("sending")
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/v1/charges", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, t.transportError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusServiceUnavailable {
		return nil, ErrTerminalOffline
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		log.Println("Charge: gateway returned", resp.StatusCode)
		return nil, ErrInvalidResponse
	}

	var created chargeStatus
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil || created.ChargeID == "" {
		return nil, ErrInvalidResponse
	}

	progress("waiting")
	return t.poll(ctx, created.ChargeID, progress)
}

func (t *Terminal) poll(ctx context.Context, chargeID string, progress func(stage string)) (*ChargeResult, error) {
	lastStage := "waiting"
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ErrTerminalTimeout
		case <-ticker.C:
		}

		st, err := t.status(ctx, chargeID)
		if err != nil {
			return nil, err
		}

		if st.Stage != "" && st.Stage != lastStage {
			lastStage = st.Stage
			progress(st.Stage)
		}

		switch st.Status {
		case "approved":
			progress("success")
			return &ChargeResult{
				TransactionID: st.TransactionID,
				AuthCode:      st.AuthCode,
				CardBrand:     st.CardBrand,
				CardLast4:     st.CardLast4,
			}, nil
		case "declined":
			return nil, ErrDeclined
		case "error":
			return nil, classify(st.ErrorCode)
		}
	}
}

func (t *Terminal) status(ctx context.Context, chargeID string) (*chargeStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"/v1/charges/"+chargeID, nil)
	if err != nil {
		return nil, err
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, t.transportError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ErrInvalidResponse
	}
	var st chargeStatus
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return nil, ErrInvalidResponse
	}
	return &st, nil
}

func (t *Terminal) transportError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ErrTerminalTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTerminalTimeout
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return ErrTerminalOffline
	}
	return ErrNetwork
}
