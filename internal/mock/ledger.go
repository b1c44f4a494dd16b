// Package mock provides in-memory fakes for the ledger client and the
// funding service, used by tests and runnable demos. The ledger fake keeps
// real account state: it enforces sequence numbers, applies trustlines and
// payments to balances, and counts calls so tests can assert on ordering.
package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/treatbank/mintd/internal/ledger"
)

// LedgerClient implements ledger.Client against in-memory account state.
type LedgerClient struct {
	mu       sync.Mutex
	accounts map[string]*ledger.AccountSnapshot

	// LoadCalls, FeeCalls and SubmitCalls count invocations.
	LoadCalls   int
	FeeCalls    int
	SubmitCalls int

	// LoadErr, FeeErr and SubmitErr force transport-level failures.
	LoadErr   error
	FeeErr    error
	SubmitErr error

	// RejectTrustline and RejectPayment, when non-empty, make the ledger
	// reject submissions containing the respective operation with that
	// reason.
	RejectTrustline string
	RejectPayment   string
}

// NewLedgerClient creates an empty mock ledger.
func NewLedgerClient() *LedgerClient {
	return &LedgerClient{accounts: make(map[string]*ledger.AccountSnapshot)}
}

// CreateAccount funds a new account with the given native balance.
func (c *LedgerClient) CreateAccount(accountID, nativeBalance string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accounts[accountID] = &ledger.AccountSnapshot{
		AccountID: accountID,
		Sequence:  1,
		Balances: []ledger.BalanceEntry{
			{AssetType: ledger.AssetTypeNative, Amount: nativeBalance},
		},
	}
}

// NetworkPassphrase implements ledger.Client.
func (c *LedgerClient) NetworkPassphrase() string {
	return "mock network ; 2026"
}

// LoadAccount returns a copy of the account state.
func (c *LedgerClient) LoadAccount(ctx context.Context, accountID string) (*ledger.AccountSnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.LoadCalls++
	if c.LoadErr != nil {
		return nil, c.LoadErr
	}
	acct, ok := c.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("load account %s: %w", accountID, ledger.ErrAccountNotFound)
	}
	return copySnapshot(acct), nil
}

// BaseFee implements ledger.Client with a fixed fee.
func (c *LedgerClient) BaseFee(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.FeeCalls++
	if c.FeeErr != nil {
		return 0, c.FeeErr
	}
	return 100, nil
}

// Submit applies the request's operations to the in-memory state. A stale
// source sequence number is rejected the way the real ledger rejects it.
func (c *LedgerClient) Submit(ctx context.Context, req ledger.SubmitRequest) (ledger.TransactionOutcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.SubmitCalls++
	if c.SubmitErr != nil {
		return ledger.TransactionOutcome{}, c.SubmitErr
	}

	source, ok := c.accounts[req.Source.AccountID]
	if !ok {
		return ledger.TransactionOutcome{Success: false, FailureReason: "tx_no_source_account"}, nil
	}
	if req.Source.Sequence != source.Sequence {
		return ledger.TransactionOutcome{Success: false, FailureReason: "tx_bad_seq"}, nil
	}

	for _, op := range req.Operations {
		switch o := op.(type) {
		case ledger.ChangeTrust:
			if c.RejectTrustline != "" {
				return ledger.TransactionOutcome{Success: false, FailureReason: c.RejectTrustline}, nil
			}
		case ledger.Payment:
			if c.RejectPayment != "" {
				return ledger.TransactionOutcome{Success: false, FailureReason: c.RejectPayment}, nil
			}
			if reason, ok := c.checkPayment(o); !ok {
				return ledger.TransactionOutcome{Success: false, FailureReason: reason}, nil
			}
		}
	}

	// All operations accepted: consume the sequence number and apply.
	source.Sequence++
	for _, op := range req.Operations {
		c.apply(req.Source.AccountID, op)
	}
	return ledger.TransactionOutcome{
		Success: true,
		Hash:    fmt.Sprintf("mocktx%04d", c.SubmitCalls),
	}, nil
}

func (c *LedgerClient) checkPayment(p ledger.Payment) (string, bool) {
	dest, ok := c.accounts[p.Destination]
	if !ok {
		return "op_no_destination", false
	}
	if !p.Asset.IsNative() && findEntry(dest, p.Asset) == nil {
		return "op_no_trust", false
	}
	return "", true
}

func (c *LedgerClient) apply(sourceID string, op ledger.Operation) {
	switch o := op.(type) {
	case ledger.ChangeTrust:
		source := c.accounts[sourceID]
		if findEntry(source, o.Line) == nil {
			source.Balances = append(source.Balances, ledger.BalanceEntry{
				AssetType:   "credit_alphanum12",
				AssetCode:   o.Line.Code,
				AssetIssuer: o.Line.Issuer,
				Amount:      "0.0000000",
			})
		}
	case ledger.Payment:
		dest := c.accounts[o.Destination]
		entry := findEntry(dest, o.Asset)
		current, _ := decimal.NewFromString(entry.Amount)
		delta, _ := decimal.NewFromString(o.Amount)
		entry.Amount = current.Add(delta).StringFixed(7)
	}
}

func findEntry(acct *ledger.AccountSnapshot, asset ledger.Asset) *ledger.BalanceEntry {
	for i := range acct.Balances {
		entry := &acct.Balances[i]
		if asset.IsNative() {
			if entry.AssetType == ledger.AssetTypeNative {
				return entry
			}
			continue
		}
		if entry.AssetType != ledger.AssetTypeNative &&
			entry.AssetCode == asset.Code && entry.AssetIssuer == asset.Issuer {
			return entry
		}
	}
	return nil
}

func copySnapshot(acct *ledger.AccountSnapshot) *ledger.AccountSnapshot {
	out := &ledger.AccountSnapshot{
		AccountID: acct.AccountID,
		Sequence:  acct.Sequence,
		Balances:  make([]ledger.BalanceEntry, len(acct.Balances)),
	}
	copy(out.Balances, acct.Balances)
	return out
}
