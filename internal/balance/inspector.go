// Package balance interprets account snapshots to answer balance queries for
// the custom asset and the native currency.
package balance

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/treatbank/mintd/internal/ledger"
)

// ZeroBalance is the amount reported when an account holds no trustline for
// the queried asset. Absence of a trustline is a normal state, not a fault.
const ZeroBalance = "0.0000000"

// Result is a successful balance lookup.
type Result struct {
	AssetCode string `json:"asset_code"`
	Issuer    string `json:"issuer,omitempty"`
	Balance   string `json:"balance"`
	Message   string `json:"message,omitempty"`
}

// Inspector answers balance queries against fresh or recently cached account
// snapshots. The cache only serves the read path; the issuance workflow loads
// its own snapshots and never goes through it.
type Inspector struct {
	client ledger.Client
	cache  *expirable.LRU[string, *ledger.AccountSnapshot]
}

// New creates an inspector. cacheSize <= 0 disables snapshot caching.
func New(client ledger.Client, cacheSize int, ttl time.Duration) *Inspector {
	i := &Inspector{client: client}
	if cacheSize > 0 && ttl > 0 {
		i.cache = expirable.NewLRU[string, *ledger.AccountSnapshot](cacheSize, nil, ttl)
	}
	return i
}

// BalanceOf returns the account's holding of the given asset. A missing
// trustline yields a zero-balance result; a nonexistent account propagates
// ledger.ErrAccountNotFound.
func (i *Inspector) BalanceOf(ctx context.Context, accountID string, asset ledger.Asset) (*Result, error) {
	snapshot, err := i.snapshot(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return Interpret(snapshot, asset), nil
}

// Interpret scans a snapshot's balances, in the order the ledger returned
// them, for the entry matching the asset. The ledger guarantees at most one
// entry per (code, issuer) pair and exactly one native entry.
func Interpret(snapshot *ledger.AccountSnapshot, asset ledger.Asset) *Result {
	for _, entry := range snapshot.Balances {
		if asset.IsNative() {
			if entry.AssetType == ledger.AssetTypeNative {
				return &Result{AssetCode: "XLM", Balance: entry.Amount}
			}
			continue
		}
		if entry.AssetType != ledger.AssetTypeNative &&
			entry.AssetCode == asset.Code && entry.AssetIssuer == asset.Issuer {
			return &Result{AssetCode: entry.AssetCode, Issuer: entry.AssetIssuer, Balance: entry.Amount}
		}
	}
	code := asset.Code
	if asset.IsNative() {
		code = "XLM"
	}
	return &Result{
		AssetCode: code,
		Issuer:    asset.Issuer,
		Balance:   ZeroBalance,
		Message:   fmt.Sprintf("asset %s not found or balance is zero for account %s", code, snapshot.AccountID),
	}
}

func (i *Inspector) snapshot(ctx context.Context, accountID string) (*ledger.AccountSnapshot, error) {
	if i.cache != nil {
		if cached, ok := i.cache.Get(accountID); ok {
			return cached, nil
		}
	}
	snapshot, err := i.client.LoadAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if i.cache != nil {
		i.cache.Add(accountID, snapshot)
	}
	return snapshot, nil
}
