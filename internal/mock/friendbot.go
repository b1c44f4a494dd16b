package mock

import (
	"context"
	"sync"
)

// Friendbot implements keys.Funder. A successful fund creates the account on
// the paired mock ledger; Calls records every funded address so tests can
// assert exactly how many funding requests were made.
type Friendbot struct {
	mu     sync.Mutex
	Ledger *LedgerClient
	Calls  []string

	// Err, when set, fails funding calls. FailAfter lets the first N calls
	// succeed before Err kicks in, so tests can fund the issuer and fail
	// the distributor.
	Err       error
	FailAfter int

	// StartingBalance is the native balance given to funded accounts.
	// Defaults to the public friendbot's 10000 XLM.
	StartingBalance string
}

// NewFriendbot creates a funder backed by the given mock ledger.
func NewFriendbot(l *LedgerClient) *Friendbot {
	return &Friendbot{Ledger: l, StartingBalance: "10000.0000000"}
}

// Fund records the call and creates the account unless Err is set.
func (f *Friendbot) Fund(ctx context.Context, accountID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, accountID)
	if f.Err != nil && len(f.Calls) > f.FailAfter {
		return f.Err
	}
	if f.Ledger != nil {
		f.Ledger.CreateAccount(accountID, f.StartingBalance)
	}
	return nil
}

// CallCount returns how many funding requests were made.
func (f *Friendbot) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Calls)
}
