package processor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

var ErrPayoutUnknown = errors.New("payout not known to processor")

// FakeClient is an in-memory processor used in tests and local runs. It
// records every call and hands out deterministic ids.
type FakeClient struct {
	mu        sync.Mutex
	seq       int
	Sessions  []SessionParams
	Transfers []TransferParams
	Reversals map[string]int64
	Payouts   map[string]*PayoutRecord

	// FailNext makes the next call return an error, to exercise caller
	// error paths.
	FailNext bool
}

func NewFakeClient() *FakeClient {
	return &FakeClient{
		Reversals: make(map[string]int64),
		Payouts:   make(map[string]*PayoutRecord),
	}
}

func (f *FakeClient) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s_%06d", prefix, f.seq)
}

func (f *FakeClient) failIfArmed() error {
	if f.FailNext {
		f.FailNext = false
		return errors.New("processor unavailable")
	}
	return nil
}

func (f *FakeClient) CreateCheckoutSession(_ context.Context, params SessionParams) (*Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.failIfArmed(); err != nil {
		return nil, err
	}

	f.Sessions = append(f.Sessions, params)
	id := f.nextID("cs")
	return &Session{
		SessionID:   id,
		CheckoutURL: "https://checkout.processor.test/" + id,
	}, nil
}

func (f *FakeClient) CreateTransfer(_ context.Context, params TransferParams) (*TransferResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.failIfArmed(); err != nil {
		return nil, err
	}

	f.Transfers = append(f.Transfers, params)
	return &TransferResult{TransferID: f.nextID("tr")}, nil
}

func (f *FakeClient) ReverseTransfer(_ context.Context, transferID string, amount int64, _ string) (*ReversalResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.failIfArmed(); err != nil {
		return nil, err
	}

	f.Reversals[transferID] += amount
	return &ReversalResult{ReversalID: f.nextID("trr"), Amount: amount}, nil
}

func (f *FakeClient) GetPayout(_ context.Context, accountID, payoutID string) (*PayoutRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.failIfArmed(); err != nil {
		return nil, err
	}

	p, ok := f.Payouts[payoutID]
	if !ok {
		return nil, ErrPayoutUnknown
	}
	cp := *p
	return &cp, nil
}

// AddPayout seeds a payout the fake will serve from GetPayout.
func (f *FakeClient) AddPayout(payoutID, accountID string, amount int64, arrival time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Payouts[payoutID] = &PayoutRecord{
		PayoutID:    payoutID,
		AccountID:   accountID,
		Amount:      amount,
		Currency:    "MXN",
		Status:      "paid",
		ArrivalDate: arrival,
	}
}

var _ Client = (*FakeClient)(nil)
