package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	appAccount "github.com/orkesta-pay/settlement-go/internal/application/account"
	appCheckout "github.com/orkesta-pay/settlement-go/internal/application/checkout"
	appPayout "github.com/orkesta-pay/settlement-go/internal/application/payout"
	appTransfer "github.com/orkesta-pay/settlement-go/internal/application/transfer"
	appWebhook "github.com/orkesta-pay/settlement-go/internal/application/webhook"
	"github.com/orkesta-pay/settlement-go/internal/domain/account"
	"github.com/orkesta-pay/settlement-go/internal/domain/checkout"
	"github.com/orkesta-pay/settlement-go/internal/domain/payout"
	"github.com/orkesta-pay/settlement-go/internal/domain/transfer"
	"github.com/orkesta-pay/settlement-go/internal/domain/webhook"
)

// SignatureHeader carries the processor's HMAC signature on deliveries.
const SignatureHeader = "Processor-Signature"

type Handlers struct {
	Accounts  *appAccount.Service
	Checkouts *appCheckout.Service
	Webhooks  *appWebhook.Processor
	Transfers *appTransfer.Service
	Payouts   *appPayout.Reconciler
}

type registerAccountRequest struct {
	TenantID     string   `json:"tenant_id"`
	Mode         string   `json:"mode"`
	PercentBps   int64    `json:"percent_bps"`
	Fixed        int64    `json:"fixed"`
	MinFee       int64    `json:"min_fee"`
	MaxFee       int64    `json:"max_fee"`
	Capabilities []string `json:"capabilities"`
}

func (h *Handlers) RegisterAccount(w http.ResponseWriter, r *http.Request) {
	var req registerAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}

	caps := make([]account.PaymentMethod, 0, len(req.Capabilities))
	for _, c := range req.Capabilities {
		caps = append(caps, account.PaymentMethod(c))
	}

	acct, err := h.Accounts.Register(r.Context(), appAccount.RegisterParams{
		TenantID: req.TenantID,
		Mode:     account.SettlementMode(req.Mode),
		FeePolicy: account.FeePolicy{
			PercentBps: req.PercentBps,
			Fixed:      req.Fixed,
			MinFee:     req.MinFee,
			MaxFee:     req.MaxFee,
		},
		Capabilities: caps,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	respond(w, http.StatusCreated, accountResponse(acct))
}

func (h *Handlers) GetAccount(w http.ResponseWriter, r *http.Request) {
	acct, err := h.Accounts.Get(r.Context(), mux.Vars(r)["accountID"])
	if err != nil {
		writeError(w, err)
		return
	}
	respond(w, http.StatusOK, accountResponse(acct))
}

type createCheckoutRequest struct {
	TenantID string            `json:"tenant_id"`
	OrderID  string            `json:"order_id"`
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Methods  []string          `json:"methods"`
	Metadata map[string]string `json:"metadata"`
}

func (h *Handlers) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	var req createCheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}

	methods := make([]account.PaymentMethod, 0, len(req.Methods))
	for _, m := range req.Methods {
		methods = append(methods, account.PaymentMethod(m))
	}

	intent, breakdown, err := h.Checkouts.CreateCheckout(
		r.Context(), req.TenantID, req.OrderID, req.Amount, req.Currency, methods, req.Metadata,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	respond(w, http.StatusCreated, map[string]any{
		"intent_id":     intent.IntentID,
		"checkout_url":  intent.CheckoutURL,
		"expires_at":    intent.ExpiresAt,
		"fee_breakdown": breakdown,
	})
}

func (h *Handlers) GetIntent(w http.ResponseWriter, r *http.Request) {
	intent, err := h.Checkouts.GetIntent(r.Context(), mux.Vars(r)["intentID"])
	if err != nil {
		writeError(w, err)
		return
	}
	respond(w, http.StatusOK, intentResponse(intent))
}

func (h *Handlers) IngestEvent(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "unreadable request body")
		return
	}

	result, err := h.Webhooks.Ingest(r.Context(), payload, r.Header.Get(SignatureHeader))
	if err != nil {
		writeError(w, err)
		return
	}

	respond(w, http.StatusOK, result)
}

func (h *Handlers) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.Webhooks.EventStatus(r.Context(), mux.Vars(r)["eventID"])
	if err != nil {
		writeError(w, err)
		return
	}
	respond(w, http.StatusOK, eventResponse(event))
}

func (h *Handlers) ListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	events, err := h.Webhooks.RecentEvents(
		r.Context(),
		q.Get("tenant_id"),
		webhook.EventType(q.Get("type")),
		queryInt(q.Get("limit")),
	)
	if err != nil {
		writeError(w, err)
		return
	}
	respond(w, http.StatusOK, eventResponses(events))
}

func (h *Handlers) ListFailedEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.Webhooks.FailedEvents(r.Context(), queryInt(r.URL.Query().Get("limit")))
	if err != nil {
		writeError(w, err)
		return
	}
	respond(w, http.StatusOK, eventResponses(events))
}

type splitParticipant struct {
	AccountID   string `json:"account_id"`
	Weight      int64  `json:"weight"`
	MinAmount   int64  `json:"min_amount"`
	MaxAmount   int64  `json:"max_amount"`
	Description string `json:"description"`
}

type splitRequest struct {
	TenantID       string             `json:"tenant_id"`
	Amount         int64              `json:"amount"`
	Currency       string             `json:"currency"`
	PlatformFeeBps int64              `json:"platform_fee_bps"`
	Participants   []splitParticipant `json:"participants"`
}

func (h *Handlers) SplitCharge(w http.ResponseWriter, r *http.Request) {
	var req splitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}

	participants := make([]transfer.Participant, 0, len(req.Participants))
	for _, p := range req.Participants {
		participants = append(participants, transfer.Participant{
			AccountID:   p.AccountID,
			Weight:      p.Weight,
			MinAmount:   p.MinAmount,
			MaxAmount:   p.MaxAmount,
			Description: p.Description,
		})
	}

	outcome, err := h.Transfers.Split(
		r.Context(), req.TenantID, mux.Vars(r)["chargeID"],
		req.Amount, req.Currency, participants, req.PlatformFeeBps,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	respond(w, http.StatusCreated, map[string]any{
		"group_id":     outcome.GroupID,
		"platform_fee": outcome.PlatformFee,
		"instructions": instructionResponses(outcome.Instructions),
	})
}

type reverseRequest struct {
	Amount int64  `json:"amount"`
	Reason string `json:"reason"`
}

func (h *Handlers) ReverseTransfer(w http.ResponseWriter, r *http.Request) {
	var req reverseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}

	reversal, err := h.Transfers.Reverse(r.Context(), mux.Vars(r)["transferID"], req.Amount, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}

	respond(w, http.StatusCreated, map[string]any{
		"reversal_id":    reversal.ReversalID,
		"instruction_id": reversal.InstructionID,
		"amount":         reversal.Amount,
		"reason":         reversal.Reason,
		"created_at":     reversal.CreatedAt,
	})
}

func (h *Handlers) GetTransfer(w http.ResponseWriter, r *http.Request) {
	instruction, reversals, err := h.Transfers.GetInstruction(r.Context(), mux.Vars(r)["transferID"])
	if err != nil {
		writeError(w, err)
		return
	}

	reversalList := make([]map[string]any, 0, len(reversals))
	for _, rev := range reversals {
		reversalList = append(reversalList, map[string]any{
			"reversal_id": rev.ReversalID,
			"amount":      rev.Amount,
			"reason":      rev.Reason,
			"created_at":  rev.CreatedAt,
		})
	}

	resp := instructionResponse(instruction)
	resp["reversals"] = reversalList
	respond(w, http.StatusOK, resp)
}

func (h *Handlers) ListTransfers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	instructions, err := h.Transfers.ListByTenant(
		r.Context(),
		mux.Vars(r)["tenantID"],
		transfer.Status(q.Get("status")),
		queryInt(q.Get("limit")),
	)
	if err != nil {
		writeError(w, err)
		return
	}
	respond(w, http.StatusOK, instructionResponses(instructions))
}

func (h *Handlers) ReconcilePayout(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Payouts.Reconcile(r.Context(), mux.Vars(r)["payoutID"])
	if err != nil {
		writeError(w, err)
		return
	}
	respond(w, http.StatusOK, summaryResponse(summary))
}

func (h *Handlers) ListDiscrepancies(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.Payouts.Discrepancies(r.Context(), r.URL.Query().Get("tenant_id"))
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]map[string]any, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, summaryResponse(s))
	}
	respond(w, http.StatusOK, out)
}

func (h *Handlers) PayoutReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := queryTime(q.Get("from"), time.Time{})
	if err != nil {
		respondError(w, http.StatusBadRequest, "validation_error", "from must be RFC3339")
		return
	}
	to, err := queryTime(q.Get("to"), time.Now())
	if err != nil {
		respondError(w, http.StatusBadRequest, "validation_error", "to must be RFC3339")
		return
	}

	report, err := h.Payouts.BuildReport(r.Context(), mux.Vars(r)["tenantID"], from, to)
	if err != nil {
		writeError(w, err)
		return
	}
	respond(w, http.StatusOK, report)
}

func queryInt(raw string) int {
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

func queryTime(raw string, fallback time.Time) (time.Time, error) {
	if raw == "" {
		return fallback, nil
	}
	return time.Parse(time.RFC3339, raw)
}

func accountResponse(a *account.ConnectedAccount) map[string]any {
	return map[string]any{
		"account_id":          a.AccountID,
		"tenant_id":           a.TenantID,
		"mode":                a.Mode,
		"percent_bps":         a.FeePolicy.PercentBps,
		"fixed":               a.FeePolicy.Fixed,
		"min_fee":             a.FeePolicy.MinFee,
		"max_fee":             a.FeePolicy.MaxFee,
		"onboarding_complete": a.OnboardingComplete,
		"capabilities":        a.Capabilities,
		"disabled":            a.Disabled,
		"created_at":          a.CreatedAt,
	}
}

func intentResponse(i *checkout.Intent) map[string]any {
	return map[string]any{
		"intent_id":      i.IntentID,
		"tenant_id":      i.TenantID,
		"order_id":       i.OrderID,
		"amount":         i.Amount,
		"currency":       i.Currency,
		"methods":        i.Methods,
		"mode":           i.Mode,
		"platform_fee":   i.PlatformFee,
		"destination_id": i.DestinationID,
		"checkout_url":   i.CheckoutURL,
		"charge_id":      i.ChargeID,
		"status":         i.Status,
		"expires_at":     i.ExpiresAt,
		"created_at":     i.CreatedAt,
	}
}

func eventResponse(e *webhook.Event) map[string]any {
	return map[string]any{
		"event_id":    e.EventID,
		"type":        e.Type,
		"tenant_id":   e.TenantID,
		"processed":   e.Processed,
		"attempts":    e.Attempts,
		"last_error":  e.LastError,
		"received_at": e.ReceivedAt,
	}
}

func eventResponses(events []*webhook.Event) []map[string]any {
	out := make([]map[string]any, 0, len(events))
	for _, e := range events {
		out = append(out, eventResponse(e))
	}
	return out
}

func instructionResponse(i *transfer.Instruction) map[string]any {
	return map[string]any{
		"instruction_id":   i.InstructionID,
		"tenant_id":        i.TenantID,
		"account_id":       i.AccountID,
		"amount":           i.Amount,
		"currency":         i.Currency,
		"source_charge_id": i.SourceChargeID,
		"group_id":         i.GroupID,
		"description":      i.Description,
		"status":           i.Status,
		"reversed_amount":  i.ReversedAmount,
		"created_at":       i.CreatedAt,
	}
}

func instructionResponses(instructions []*transfer.Instruction) []map[string]any {
	out := make([]map[string]any, 0, len(instructions))
	for _, i := range instructions {
		out = append(out, instructionResponse(i))
	}
	return out
}

func summaryResponse(s *payout.Summary) map[string]any {
	return map[string]any{
		"payout_id":      s.PayoutID,
		"tenant_id":      s.TenantID,
		"account_id":     s.AccountID,
		"period_start":   s.PeriodStart,
		"period_end":     s.PeriodEnd,
		"gross_amount":   s.GrossAmount,
		"processor_fees": s.ProcessorFees,
		"platform_fees":  s.PlatformFees,
		"refunds":        s.Refunds,
		"disputes":       s.Disputes,
		"adjustments":    s.Adjustments,
		"net_amount":     s.NetAmount,
		"actual_amount":  s.ActualAmount,
		"diff":           s.Diff,
		"reconciled":     s.Reconciled,
		"reconciled_at":  s.ReconciledAt,
	}
}
