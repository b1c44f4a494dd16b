// Package issuance implements the two-step asset issuance workflow: the
// distributor opens a trustline to the issuer's asset, then the issuer pays
// the asset to the distributor. The two transactions are independently
// submitted and causally ordered; the payment is never attempted unless the
// trustline submission succeeded.
package issuance

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/treatbank/mintd/internal/keys"
	"github.com/treatbank/mintd/internal/ledger"
)

// Stage identifies where in the workflow a run currently is, or where it
// failed.
type Stage string

const (
	StageValidation Stage = "validation"
	StageTrustline  Stage = "trustline"
	StagePayment    Stage = "payment"
	StageDone       Stage = "done"
)

// Result is the aggregate outcome of one issuance run. On a payment-stage
// failure the trustline hash is still present: the trustline persists
// on-ledger even though the run as a whole failed, and that partial success
// is reported rather than hidden.
type Result struct {
	Success       bool
	Stage         Stage
	TrustlineHash string
	PaymentHash   string
	Message       string
	FailureReason string
}

// Workflow runs the trustline-then-payment sequence against a ledger client.
// A single Issue call is strictly sequential; concurrent calls against the
// same accounts race on sequence numbers at the ledger, which is left to the
// caller to retry.
type Workflow struct {
	client ledger.Client
	log    *slog.Logger
}

// New creates a workflow bound to a ledger client.
func New(client ledger.Client, log *slog.Logger) *Workflow {
	if log == nil {
		log = slog.Default()
	}
	return &Workflow{client: client, log: log}
}

// Issue transfers amount units of asset from the issuer to the distributor,
// establishing the distributor's trustline first. No step is retried; every
// failure is reported with the stage it occurred in.
func (w *Workflow) Issue(ctx context.Context, asset ledger.Asset, issuer, distributor keys.Keypair, amount string) Result {
	if err := w.validate(asset, issuer, distributor, amount); err != nil {
		return Result{Stage: StageValidation, FailureReason: err.Error()}
	}

	// Step 1: the distributor declares trust for the asset. The distributor is
	// the sole signer of a trust declaration about itself.
	trustline, err := w.submit(ctx, distributor, ledger.ChangeTrust{Line: asset})
	if err != nil {
		w.log.Error("trustline submission failed", "asset", asset.String(), "err", err)
		return Result{Stage: StageTrustline, FailureReason: err.Error()}
	}
	if !trustline.Success {
		w.log.Error("trustline rejected", "asset", asset.String(), "reason", trustline.FailureReason)
		return Result{Stage: StageTrustline, FailureReason: trustline.FailureReason}
	}
	w.log.Info("trustline established", "asset", asset.String(), "tx", trustline.Hash)

	// Step 2: the issuer pays the asset to the distributor. The issuer's
	// snapshot is fetched fresh inside submit, after step 1 completed.
	payment, err := w.submit(ctx, issuer, ledger.Payment{
		Destination: distributor.Address,
		Amount:      amount,
		Asset:       asset,
	})
	if err != nil {
		w.log.Error("payment submission failed", "asset", asset.String(), "err", err)
		return Result{Stage: StagePayment, TrustlineHash: trustline.Hash, FailureReason: err.Error()}
	}
	if !payment.Success {
		w.log.Error("payment rejected", "asset", asset.String(), "reason", payment.FailureReason)
		return Result{Stage: StagePayment, TrustlineHash: trustline.Hash, FailureReason: payment.FailureReason}
	}
	w.log.Info("asset issued", "asset", asset.String(), "amount", amount, "tx", payment.Hash)

	return Result{
		Success:       true,
		Stage:         StageDone,
		TrustlineHash: trustline.Hash,
		PaymentHash:   payment.Hash,
		Message:       fmt.Sprintf("asset %s issued and %s sent to %s", asset.Code, amount, distributor.Address),
	}
}

// validate enforces the workflow preconditions before any network call.
func (w *Workflow) validate(asset ledger.Asset, issuer, distributor keys.Keypair, amount string) error {
	if issuer.Address == "" || issuer.Seed() == "" ||
		distributor.Address == "" || distributor.Seed() == "" {
		return fmt.Errorf("missing issuer or distributor account keys")
	}
	if asset.IsNative() {
		return fmt.Errorf("cannot issue the native asset")
	}
	if err := asset.Validate(); err != nil {
		return err
	}
	return ValidateAmount(amount)
}

// submit fetches a fresh snapshot of the signer's account, asks the ledger
// for the current base fee and submits a single-operation transaction. A
// snapshot is never reused across submissions: the sequence number advances
// after every transaction.
func (w *Workflow) submit(ctx context.Context, signer keys.Keypair, op ledger.Operation) (ledger.TransactionOutcome, error) {
	source, err := w.client.LoadAccount(ctx, signer.Address)
	if err != nil {
		return ledger.TransactionOutcome{}, err
	}
	fee, err := w.client.BaseFee(ctx)
	if err != nil {
		return ledger.TransactionOutcome{}, err
	}
	return w.client.Submit(ctx, ledger.SubmitRequest{
		Source:     source,
		Operations: []ledger.Operation{op},
		SignerSeed: signer.Seed(),
		BaseFee:    fee,
	})
}
