package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
)

func NewRouter(h *Handlers) http.Handler {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/accounts", h.RegisterAccount).Methods(http.MethodPost)
	api.HandleFunc("/accounts/{accountID}", h.GetAccount).Methods(http.MethodGet)

	api.HandleFunc("/checkout", h.CreateCheckout).Methods(http.MethodPost)
	api.HandleFunc("/checkout/{intentID}", h.GetIntent).Methods(http.MethodGet)

	api.HandleFunc("/webhooks/processor", h.IngestEvent).Methods(http.MethodPost)
	api.HandleFunc("/webhooks/failed", h.ListFailedEvents).Methods(http.MethodGet)
	api.HandleFunc("/webhooks/{eventID}", h.GetEvent).Methods(http.MethodGet)
	api.HandleFunc("/webhooks", h.ListEvents).Methods(http.MethodGet)

	api.HandleFunc("/charges/{chargeID}/split", h.SplitCharge).Methods(http.MethodPost)
	api.HandleFunc("/transfers/{transferID}/reverse", h.ReverseTransfer).Methods(http.MethodPost)
	api.HandleFunc("/transfers/{transferID}", h.GetTransfer).Methods(http.MethodGet)
	api.HandleFunc("/tenants/{tenantID}/transfers", h.ListTransfers).Methods(http.MethodGet)

	api.HandleFunc("/payouts/discrepancies", h.ListDiscrepancies).Methods(http.MethodGet)
	api.HandleFunc("/payouts/{payoutID}/reconcile", h.ReconcilePayout).Methods(http.MethodPost)
	api.HandleFunc("/tenants/{tenantID}/payouts/report", h.PayoutReport).Methods(http.MethodGet)

	return r
}
