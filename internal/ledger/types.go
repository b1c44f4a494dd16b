package ledger

import (
	"fmt"
	"regexp"
)

// Balance entry asset types as reported by Horizon.
const (
	AssetTypeNative = "native"
)

// assetCodePattern matches valid custom asset codes (1-12 alphanumeric characters).
var assetCodePattern = regexp.MustCompile(`^[A-Za-z0-9]{1,12}$`)

// Asset identifies a fungible asset on the ledger. The zero value is the
// native asset (XLM), which has no code and no issuer.
type Asset struct {
	Code   string
	Issuer string
}

// NativeAsset returns the sentinel descriptor for the ledger's native currency.
func NativeAsset() Asset {
	return Asset{}
}

// IsNative reports whether the asset is the ledger's native currency.
func (a Asset) IsNative() bool {
	return a.Code == "" && a.Issuer == ""
}

// Validate checks that a custom asset descriptor is well formed.
func (a Asset) Validate() error {
	if a.IsNative() {
		return nil
	}
	if !assetCodePattern.MatchString(a.Code) {
		return fmt.Errorf("asset code %q must be 1-12 alphanumeric characters", a.Code)
	}
	if a.Issuer == "" {
		return fmt.Errorf("asset %s has no issuer account", a.Code)
	}
	return nil
}

func (a Asset) String() string {
	if a.IsNative() {
		return "XLM"
	}
	return a.Code + ":" + a.Issuer
}

// BalanceEntry is one holding reported in an account snapshot.
type BalanceEntry struct {
	AssetType   string
	AssetCode   string
	AssetIssuer string
	Amount      string
}

// AccountSnapshot is the state of a ledger account at load time. The sequence
// number advances after every submitted transaction, so a snapshot must be
// fetched fresh before each transaction build and never reused.
type AccountSnapshot struct {
	AccountID string
	Sequence  int64
	Balances  []BalanceEntry
}

// TransactionOutcome is the result of one transaction submission.
type TransactionOutcome struct {
	Success       bool
	Hash          string
	FailureReason string
}

// Operation is a ledger operation the orchestration can submit. Implementations
// are translated to SDK operations by the Horizon adapter.
type Operation interface {
	isOperation()
}

// ChangeTrust authorizes the source account to hold the given asset, with no
// limit on the amount trusted.
type ChangeTrust struct {
	Line Asset
}

func (ChangeTrust) isOperation() {}

// Payment sends Amount units of Asset from the source account to Destination.
type Payment struct {
	Destination string
	Amount      string
	Asset       Asset
}

func (Payment) isOperation() {}

// SubmitRequest carries everything needed to build, sign and submit a single
// transaction: the freshly loaded source snapshot, the operations, the seed of
// the sole signing party and the fee to attach.
type SubmitRequest struct {
	Source     *AccountSnapshot
	Operations []Operation
	SignerSeed string
	BaseFee    int64
}
