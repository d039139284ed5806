package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Signer computes and checks hex-encoded HMAC-SHA256 signatures.
type Signer interface {
	Sign(message []byte) string
	Verify(message []byte, signature string) bool
}

type hmacSigner struct {
	secret []byte
}

func NewHMACSigner(secret string) Signer {
	return &hmacSigner{secret: []byte(secret)}
}

func (s *hmacSigner) Sign(message []byte) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(message)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify compares in constant time. An empty secret never verifies.
func (s *hmacSigner) Verify(message []byte, signature string) bool {
	if len(s.secret) == 0 || signature == "" {
		return false
	}
	expected, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(message)
	return hmac.Equal(mac.Sum(nil), expected)
}

// CheckoutMessage is the payload a checkout signature covers.
func CheckoutMessage(orderID, paymentID string) []byte {
	return []byte(orderID + "|" + paymentID)
}
