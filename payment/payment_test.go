package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTendersSingleCash(t *testing.T) {
	got, err := normalizeTenders([]Tender{
		{Method: "cash", Amount: 1000, Tendered: 2000},
	}, 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), got[0].Tendered)
}

func TestNormalizeTendersCashDefaultsTendered(t *testing.T) {
	got, err := normalizeTenders([]Tender{
		{Method: "cash", Amount: 1500},
	}, 1500)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), got[0].Tendered)
}

func TestNormalizeTendersSplit(t *testing.T) {
	got, err := normalizeTenders([]Tender{
		{Method: "cash", Amount: 500, Tendered: 500},
		{Method: "card", Amount: 1500},
	}, 2000)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestNormalizeTendersAbsorbsOneCent(t *testing.T) {
	// client rounded each half of a split down
	got, err := normalizeTenders([]Tender{
		{Method: "card", Amount: 1050},
		{Method: "card", Amount: 1050},
	}, 2101)
	require.NoError(t, err)
	assert.Equal(t, int64(1051), got[1].Amount)
}

func TestNormalizeTendersRejects(t *testing.T) {
	cases := []struct {
		name    string
		tenders []Tender
		due     int64
	}{
		{"empty", nil, 1000},
		{"sum too low", []Tender{{Method: "card", Amount: 500}}, 1000},
		{"sum too high", []Tender{{Method: "card", Amount: 1500}}, 1000},
		{"cash short tendered", []Tender{{Method: "cash", Amount: 1000, Tendered: 500}}, 1000},
		{"unknown method", []Tender{{Method: "check", Amount: 1000}}, 1000},
		{"zero amount", []Tender{{Method: "card", Amount: 0}, {Method: "card", Amount: 1000}}, 1000},
		{"tendered on card", []Tender{{Method: "card", Amount: 1000, Tendered: 1000}}, 1000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := normalizeTenders(tc.tenders, tc.due)
			assert.Error(t, err)
		})
	}
}

func TestNormalizeTendersZeroDue(t *testing.T) {
	// A fully-captured order has nothing left to collect: any tender
	// list, empty or not, is invalid against a zero due amount. Resume
	// handles that case by finalizing directly instead of collecting.
	_, err := normalizeTenders(nil, 0)
	assert.Error(t, err)
	_, err = normalizeTenders([]Tender{{Method: "card", Amount: 100}}, 0)
	assert.Error(t, err)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, ErrSessionExpired, classify("session_expired"))
	assert.Equal(t, ErrTerminalOffline, classify("offline"))
	assert.Equal(t, ErrTerminalTimeout, classify("timeout"))
	assert.Equal(t, ErrDeclined, classify("declined"))
	assert.Equal(t, ErrDeclined, classify("insufficient_funds"))
	assert.Equal(t, ErrNetwork, classify("network_error"))
	assert.Equal(t, ErrInvalidResponse, classify("something_new"))
}

func TestRetryableFlags(t *testing.T) {
	// Declined and session-expired are terminal: re-presenting the same
	// card cannot succeed. Offline, timeout and network faults can.
	assert.False(t, ErrDeclined.Retryable)
	assert.False(t, ErrSessionExpired.Retryable)
	assert.True(t, ErrTerminalOffline.Retryable)
	assert.True(t, ErrTerminalTimeout.Retryable)
	assert.True(t, ErrNetwork.Retryable)
}
