package receipt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQRPayloadRoundTrip(t *testing.T) {
	payload := GenerateQRPayload("ord-abc123", "MAIN-20260828-0042")

	orderID, ok := VerifyQRPayload(payload)
	require.True(t, ok)
	assert.Equal(t, "ord-abc123", orderID)
}

func TestQRPayloadTamperedData(t *testing.T) {
	payload := GenerateQRPayload("ord-abc123", "MAIN-20260828-0042")
	tampered := strings.Replace(payload, "ord-abc123", "ord-evil99", 1)

	_, ok := VerifyQRPayload(tampered)
	assert.False(t, ok)
}

func TestQRPayloadTamperedSignature(t *testing.T) {
	payload := GenerateQRPayload("ord-abc123", "MAIN-20260828-0042")
	idx := strings.LastIndex(payload, "|")
	tampered := payload[:idx+1] + "AAAA" + payload[idx+5:]

	_, ok := VerifyQRPayload(tampered)
	assert.False(t, ok)
}

func TestQRPayloadGarbage(t *testing.T) {
	for _, p := range []string{"", "no-pipes-here", "a|b", "|||"} {
		_, ok := VerifyQRPayload(p)
		assert.False(t, ok, "payload %q should not verify", p)
	}
}
