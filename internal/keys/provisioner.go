package keys

import (
	"context"
	"fmt"
	"log/slog"
)

// FundingOutcome describes how an account ended up funded (or not) during
// provisioning.
type FundingOutcome string

const (
	// OutcomePreConfigured means the caller supplied the secret seed; no
	// funding was attempted.
	OutcomePreConfigured FundingOutcome = "pre_configured"
	// OutcomeFunded means friendbot funded the freshly generated account.
	OutcomeFunded FundingOutcome = "funded"
	// OutcomeFundingFailed means the funding service was unreachable or
	// rejected the request. The caller decides whether to retry.
	OutcomeFundingFailed FundingOutcome = "funding_failed"
	// OutcomeManualFunding means the account was generated for the public
	// network and must be funded by an out-of-band native-currency payment.
	OutcomeManualFunding FundingOutcome = "manual_funding_required"
)

// FundingResult pairs an outcome with a human-readable detail.
type FundingResult struct {
	Outcome FundingOutcome `json:"outcome"`
	Detail  string         `json:"detail,omitempty"`
}

// Failed reports whether provisioning left the account unusable.
func (r FundingResult) Failed() bool {
	return r.Outcome == OutcomeFundingFailed
}

// Provisioner generates or loads keypairs for workflow roles and triggers
// funding on test networks.
//
// Provisioning a role without an existing secret is not idempotent: each call
// generates a distinct keypair and, on testnet, creates a distinct funded
// ledger account. Callers that want one canonical account per role must hold
// the result in a Store and reuse it.
type Provisioner struct {
	funder  Funder
	testnet bool
	log     *slog.Logger
}

// NewProvisioner creates a provisioner. funder may be nil on non-test
// networks.
func NewProvisioner(funder Funder, testnet bool, log *slog.Logger) *Provisioner {
	if log == nil {
		log = slog.Default()
	}
	return &Provisioner{funder: funder, testnet: testnet, log: log}
}

// ProvisionRole returns the keypair for a role. With an existing secret the
// key is derived and no funding call is made, regardless of network. Without
// one a fresh keypair is generated; on testnet exactly one funding call is
// issued for the new address.
func (p *Provisioner) ProvisionRole(ctx context.Context, role Role, existingSecret string) (Keypair, FundingResult, error) {
	if existingSecret != "" {
		kp, err := FromSeed(existingSecret)
		if err != nil {
			return Keypair{}, FundingResult{}, fmt.Errorf("%s: %w", role, err)
		}
		p.log.Info("using pre-configured account", "role", role, "account", kp)
		return kp, FundingResult{Outcome: OutcomePreConfigured, Detail: fmt.Sprintf("%s account pre-configured", role)}, nil
	}

	kp, err := Generate()
	if err != nil {
		return Keypair{}, FundingResult{}, fmt.Errorf("%s: %w", role, err)
	}
	p.log.Info("generated keypair", "role", role, "account", kp)

	if !p.testnet {
		return kp, FundingResult{
			Outcome: OutcomeManualFunding,
			Detail:  "manual funding required for public network",
		}, nil
	}

	if p.funder == nil {
		return kp, FundingResult{Outcome: OutcomeFundingFailed, Detail: "no funding service configured"}, nil
	}
	if err := p.funder.Fund(ctx, kp.Address); err != nil {
		p.log.Warn("funding failed", "role", role, "account", kp, "err", err)
		return kp, FundingResult{Outcome: OutcomeFundingFailed, Detail: err.Error()}, nil
	}
	p.log.Info("account funded", "role", role, "account", kp)
	return kp, FundingResult{
		Outcome: OutcomeFunded,
		Detail:  fmt.Sprintf("account %s funded successfully", kp.Address),
	}, nil
}
