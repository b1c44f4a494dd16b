package service

import (
	"errors"

	"github.com/treatbank/mintd/internal/keys"
)

// Status tags every public operation result.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// ErrNotInitialized is returned when an operation needs the issuer and
// distributor accounts but setup has not run and no seeds are configured.
var ErrNotInitialized = errors.New("accounts not initialized: run setup first or configure seeds")

// RoleInfo reports a role's public identity and funding state. It carries no
// secret material by construction.
type RoleInfo struct {
	PublicKey      string              `json:"public_key"`
	FundingOutcome keys.FundingOutcome `json:"funding_outcome"`
	FundingDetail  string              `json:"funding_detail,omitempty"`
}

// SetupResult is the outcome of provisioning both roles.
type SetupResult struct {
	Status      Status    `json:"status"`
	Message     string    `json:"message"`
	Issuer      *RoleInfo `json:"issuer,omitempty"`
	Distributor *RoleInfo `json:"distributor,omitempty"`
}

// IssueResult is the outcome of one issuance run. On a payment-stage failure
// TrustlineTx is still populated: that transaction persists on-ledger.
type IssueResult struct {
	Status      Status `json:"status"`
	Message     string `json:"message"`
	AssetCode   string `json:"asset_code"`
	Amount      string `json:"amount,omitempty"`
	Stage       string `json:"stage,omitempty"`
	TrustlineTx string `json:"trustline_tx,omitempty"`
	PaymentTx   string `json:"payment_tx,omitempty"`
}

// BalanceResult is the outcome of a balance lookup.
type BalanceResult struct {
	Status    Status `json:"status"`
	AssetCode string `json:"asset_code"`
	Issuer    string `json:"issuer,omitempty"`
	Balance   string `json:"balance"`
	Message   string `json:"message,omitempty"`
}
