package receipt

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"time"
)

var hmacSecret = func() []byte {
	if s := os.Getenv("RECEIPT_HMAC_SECRET"); s != "" {
		return []byte(s)
	}
	return []byte("tillpoint-receipt-secret")
}()

// GenerateQRPayload signs the receipt identity so a scanned QR can be
// trusted without a database round trip: orderID|orderNumber|timestamp|sig.
func GenerateQRPayload(orderID, orderNumber string) string {
	data := fmt.Sprintf("%s|%s|%d", orderID, orderNumber, time.Now().Unix())

	h := hmac.New(sha256.New, hmacSecret)
	h.Write([]byte(data))
	sig := base64.StdEncoding.EncodeToString(h.Sum(nil))

	return fmt.Sprintf("%s|%s", data, sig)
}

// VerifyQRPayload checks the signature and returns the order ID it
// vouches for.
func VerifyQRPayload(payload string) (string, bool) {
	idx := strings.LastIndex(payload, "|")
	if idx < 0 {
		return "", false
	}
	data, sig := payload[:idx], payload[idx+1:]

	h := hmac.New(sha256.New, hmacSecret)
	h.Write([]byte(data))
	expected := base64.StdEncoding.EncodeToString(h.Sum(nil))

	if !hmac.Equal([]byte(sig), []byte(expected)) {
		return "", false
	}

	parts := strings.Split(data, "|")
	if len(parts) != 3 || parts[0] == "" {
		return "", false
	}
	return parts[0], true
}
