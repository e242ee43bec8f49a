package checkout

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
)

func quoteRequest(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/sess-1/quote", strings.NewReader(body))
	QuoteCart(w, r, httprouter.Params{{Key: "sessionid", Value: "sess-1"}})
	return w
}

func TestQuoteCartRejectsGarbageBody(t *testing.T) {
	w := quoteRequest(t, "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid JSON")
}

func TestQuoteCartRejectsNegativeRedeem(t *testing.T) {
	w := quoteRequest(t, `{"redeemPoints": -5}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "redeemPoints")
}
