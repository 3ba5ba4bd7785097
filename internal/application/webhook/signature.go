package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"
)

var (
	ErrSignatureInvalid = errors.New("webhook signature invalid")
	ErrClockSkew        = errors.New("webhook timestamp outside tolerance")
)

const DefaultSkewWindow = 5 * time.Minute

// VerifySignature checks a processor signature header of the form
// "t=<unix>,v1=<hex>,v1=<hex>..." against HMAC-SHA256(secret, "t.payload").
// It fails closed: no secret, malformed header, or a timestamp outside the
// skew window all reject the event.
func VerifySignature(payload []byte, header, secret string, skew time.Duration, now time.Time) error {
	if secret == "" {
		return ErrSignatureInvalid
	}
	if skew <= 0 {
		skew = DefaultSkewWindow
	}

	var timestamp string
	var signatures []string
	for _, element := range strings.Split(header, ",") {
		element = strings.TrimSpace(element)
		switch {
		case strings.HasPrefix(element, "t="):
			timestamp = element[2:]
		case strings.HasPrefix(element, "v1="):
			signatures = append(signatures, element[3:])
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return ErrSignatureInvalid
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return ErrSignatureInvalid
	}

	drift := now.Sub(time.Unix(ts, 0))
	if drift < 0 {
		drift = -drift
	}
	if drift > skew {
		return ErrClockSkew
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, sig := range signatures {
		if hmac.Equal([]byte(expected), []byte(sig)) {
			return nil
		}
	}
	return ErrSignatureInvalid
}

// SignPayload produces a valid signature header for a payload. Used by
// tests and the local simulator.
func SignPayload(payload []byte, secret string, at time.Time) string {
	timestamp := strconv.FormatInt(at.Unix(), 10)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)

	return "t=" + timestamp + ",v1=" + hex.EncodeToString(mac.Sum(nil))
}
