package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPClient talks to the processor's REST API with key-based basic auth.
type HTTPClient struct {
	BaseURL   string
	SecretKey string
	client    *http.Client
}

func NewHTTPClient(baseURL, secretKey string) *HTTPClient {
	return &HTTPClient{
		BaseURL:   baseURL,
		SecretKey: secretKey,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

type sessionRequest struct {
	ReferenceID    string            `json:"reference_id"`
	Amount         int64             `json:"amount"`
	Currency       string            `json:"currency"`
	PaymentMethods []string          `json:"payment_methods"`
	OnBehalfOf     string            `json:"on_behalf_of,omitempty"`
	Destination    string            `json:"destination,omitempty"`
	TransferAmount int64             `json:"transfer_amount,omitempty"`
	ApplicationFee int64             `json:"application_fee_amount,omitempty"`
	ExpiresAt      int64             `json:"expires_at"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

type sessionResponse struct {
	ID      string `json:"id"`
	Actions struct {
		CheckoutURL string `json:"checkout_url"`
	} `json:"actions"`
}

func (c *HTTPClient) CreateCheckoutSession(ctx context.Context, params SessionParams) (*Session, error) {
	methods := make([]string, 0, len(params.Methods))
	for _, m := range params.Methods {
		methods = append(methods, string(m))
	}

	req := sessionRequest{
		ReferenceID:    params.OrderID,
		Amount:         params.Amount,
		Currency:       params.Currency,
		PaymentMethods: methods,
		OnBehalfOf:     params.OnBehalfOf,
		Destination:    params.Destination,
		TransferAmount: params.TransferAmount,
		ApplicationFee: params.ApplicationFee,
		ExpiresAt:      params.ExpiresAt.Unix(),
		Metadata:       params.Metadata,
	}

	var resp sessionResponse
	if err := c.post(ctx, "/v1/checkout/sessions", req, &resp); err != nil {
		return nil, err
	}

	return &Session{SessionID: resp.ID, CheckoutURL: resp.Actions.CheckoutURL}, nil
}

type transferRequest struct {
	Amount            int64             `json:"amount"`
	Currency          string            `json:"currency"`
	Destination       string            `json:"destination"`
	SourceTransaction string            `json:"source_transaction,omitempty"`
	TransferGroup     string            `json:"transfer_group,omitempty"`
	Description       string            `json:"description,omitempty"`
	Metadata          map[string]string `json:"metadata,omitempty"`
}

func (c *HTTPClient) CreateTransfer(ctx context.Context, params TransferParams) (*TransferResult, error) {
	req := transferRequest{
		Amount:            params.Amount,
		Currency:          params.Currency,
		Destination:       params.Destination,
		SourceTransaction: params.SourceChargeID,
		TransferGroup:     params.GroupID,
		Description:       params.Description,
		Metadata:          params.Metadata,
	}

	var resp struct {
		ID string `json:"id"`
	}
	if err := c.post(ctx, "/v1/transfers", req, &resp); err != nil {
		return nil, err
	}

	return &TransferResult{TransferID: resp.ID}, nil
}

func (c *HTTPClient) ReverseTransfer(ctx context.Context, transferID string, amount int64, reason string) (*ReversalResult, error) {
	req := struct {
		Amount int64  `json:"amount,omitempty"`
		Reason string `json:"reason,omitempty"`
	}{Amount: amount, Reason: reason}

	var resp struct {
		ID     string `json:"id"`
		Amount int64  `json:"amount"`
	}
	path := fmt.Sprintf("/v1/transfers/%s/reversals", transferID)
	if err := c.post(ctx, path, req, &resp); err != nil {
		return nil, err
	}

	return &ReversalResult{ReversalID: resp.ID, Amount: resp.Amount}, nil
}

func (c *HTTPClient) GetPayout(ctx context.Context, accountID, payoutID string) (*PayoutRecord, error) {
	path := fmt.Sprintf("/v1/payouts/%s", payoutID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return nil, err
	}
	httpReq.SetBasicAuth(c.SecretKey, "")
	httpReq.Header.Set("Processor-Account", accountID)

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(httpResp.Body)
		return nil, errors.New("processor error: " + string(body))
	}

	var resp struct {
		ID          string `json:"id"`
		Amount      int64  `json:"amount"`
		Currency    string `json:"currency"`
		Status      string `json:"status"`
		ArrivalDate int64  `json:"arrival_date"`
	}
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, err
	}

	return &PayoutRecord{
		PayoutID:    resp.ID,
		AccountID:   accountID,
		Amount:      resp.Amount,
		Currency:    resp.Currency,
		Status:      resp.Status,
		ArrivalDate: time.Unix(resp.ArrivalDate, 0),
	}, nil
}

func (c *HTTPClient) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewBuffer(payload))
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.SecretKey, "")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return errors.New("processor error: " + string(respBody))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

var _ Client = (*HTTPClient)(nil)
