package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	appCheckout "github.com/orkesta-pay/settlement-go/internal/application/checkout"
	"github.com/orkesta-pay/settlement-go/internal/application/contracts"
	appTransfer "github.com/orkesta-pay/settlement-go/internal/application/transfer"
	appWebhook "github.com/orkesta-pay/settlement-go/internal/application/webhook"
	"github.com/orkesta-pay/settlement-go/internal/domain/account"
	"github.com/orkesta-pay/settlement-go/internal/domain/checkout"
	"github.com/orkesta-pay/settlement-go/internal/domain/payout"
	"github.com/orkesta-pay/settlement-go/internal/domain/transfer"
	"github.com/orkesta-pay/settlement-go/internal/domain/webhook"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respond(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respond(w, status, errorBody{Code: code, Message: message})
}

// writeError maps application errors onto the wire taxonomy. Anything not
// recognized is a 500 without the internal message leaking out.
func writeError(w http.ResponseWriter, err error) {
	var vErr *contracts.ValidationError
	if errors.As(err, &vErr) {
		respondError(w, http.StatusBadRequest, "validation_error", vErr.Error())
		return
	}

	switch {
	case errors.Is(err, appWebhook.ErrSignatureInvalid),
		errors.Is(err, appWebhook.ErrClockSkew):
		respondError(w, http.StatusBadRequest, "invalid_signature", err.Error())
	case errors.Is(err, account.ErrNotFound):
		respondError(w, http.StatusNotFound, "account_not_found", err.Error())
	case errors.Is(err, checkout.ErrNotFound):
		respondError(w, http.StatusNotFound, "intent_not_found", err.Error())
	case errors.Is(err, webhook.ErrNotFound):
		respondError(w, http.StatusNotFound, "event_not_found", err.Error())
	case errors.Is(err, transfer.ErrNotFound):
		respondError(w, http.StatusNotFound, "transfer_not_found", err.Error())
	case errors.Is(err, payout.ErrNotFound):
		respondError(w, http.StatusNotFound, "payout_not_found", err.Error())
	case errors.Is(err, payout.ErrSummaryNotFound):
		respondError(w, http.StatusNotFound, "summary_not_found", err.Error())
	case errors.Is(err, appCheckout.ErrAccountNotReady):
		respondError(w, http.StatusConflict, "account_not_ready", err.Error())
	case errors.Is(err, appCheckout.ErrIntentComplete):
		respondError(w, http.StatusConflict, "intent_complete", err.Error())
	case errors.Is(err, appCheckout.ErrIntentExpired):
		respondError(w, http.StatusConflict, "intent_expired", err.Error())
	case errors.Is(err, appTransfer.ErrOverReversal):
		respondError(w, http.StatusConflict, "over_reversal", err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}
