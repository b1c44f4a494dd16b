// Package horizon adapts the Stellar Horizon API to the ledger.Client
// capability. It is a thin wrapper over the official SDK: account loads, fee
// stats and transaction build/sign/submit, with SDK errors mapped to the
// ledger package's error kinds.
package horizon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/stellar/go/clients/horizonclient"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/txnbuild"

	"github.com/treatbank/mintd/internal/ledger"
)

// txTimeoutSeconds bounds how long a signed transaction stays valid if it does
// not make it into a ledger.
const txTimeoutSeconds = 300

// Client implements ledger.Client against a Horizon server.
type Client struct {
	horizon    *horizonclient.Client
	passphrase string
}

// New creates a Horizon-backed ledger client. Every request made through the
// client carries the given timeout.
func New(horizonURL, networkPassphrase string, timeout time.Duration) *Client {
	return &Client{
		horizon: &horizonclient.Client{
			HorizonURL: horizonURL,
			HTTP:       &http.Client{Timeout: timeout},
		},
		passphrase: networkPassphrase,
	}
}

// NetworkPassphrase returns the passphrase transactions are signed for.
func (c *Client) NetworkPassphrase() string {
	return c.passphrase
}

// LoadAccount fetches the current account state from Horizon.
func (c *Client) LoadAccount(ctx context.Context, accountID string) (*ledger.AccountSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, mapTransportErr(err)
	}

	detail, err := c.horizon.AccountDetail(horizonclient.AccountRequest{AccountID: accountID})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("load account %s: %w", accountID, ledger.ErrAccountNotFound)
		}
		return nil, fmt.Errorf("load account %s: %w", accountID, mapTransportErr(err))
	}

	snapshot := &ledger.AccountSnapshot{
		AccountID: detail.AccountID,
		Sequence:  detail.Sequence,
		Balances:  make([]ledger.BalanceEntry, 0, len(detail.Balances)),
	}
	// Keep the balance order exactly as Horizon returned it.
	for _, b := range detail.Balances {
		snapshot.Balances = append(snapshot.Balances, ledger.BalanceEntry{
			AssetType:   b.Type,
			AssetCode:   b.Code,
			AssetIssuer: b.Issuer,
			Amount:      b.Balance,
		})
	}
	return snapshot, nil
}

// BaseFee returns the last ledger's base fee, falling back to the protocol
// minimum when fee stats are unavailable.
func (c *Client) BaseFee(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, mapTransportErr(err)
	}

	stats, err := c.horizon.FeeStats()
	if err != nil {
		return 0, fmt.Errorf("fetch fee stats: %w", mapTransportErr(err))
	}
	if stats.LastLedgerBaseFee <= 0 {
		return txnbuild.MinBaseFee, nil
	}
	return stats.LastLedgerBaseFee, nil
}

// Submit builds a single transaction from the request, signs it with the
// request's signer seed and submits it to Horizon.
func (c *Client) Submit(ctx context.Context, req ledger.SubmitRequest) (ledger.TransactionOutcome, error) {
	if err := ctx.Err(); err != nil {
		return ledger.TransactionOutcome{}, mapTransportErr(err)
	}
	if req.Source == nil {
		return ledger.TransactionOutcome{}, errors.New("submit: nil source snapshot")
	}

	ops, err := buildOperations(req.Operations)
	if err != nil {
		return ledger.TransactionOutcome{}, err
	}

	source := &txnbuild.SimpleAccount{
		AccountID: req.Source.AccountID,
		Sequence:  req.Source.Sequence,
	}
	tx, err := txnbuild.NewTransaction(txnbuild.TransactionParams{
		SourceAccount:        source,
		IncrementSequenceNum: true,
		Operations:           ops,
		BaseFee:              req.BaseFee,
		Preconditions: txnbuild.Preconditions{
			TimeBounds: txnbuild.NewTimeout(txTimeoutSeconds),
		},
	})
	if err != nil {
		return ledger.TransactionOutcome{}, fmt.Errorf("build transaction: %w", err)
	}

	signer, err := keypair.ParseFull(req.SignerSeed)
	if err != nil {
		return ledger.TransactionOutcome{}, fmt.Errorf("parse signer seed: %w", err)
	}
	tx, err = tx.Sign(c.passphrase, signer)
	if err != nil {
		return ledger.TransactionOutcome{}, fmt.Errorf("sign transaction: %w", err)
	}

	resp, err := c.horizon.SubmitTransaction(tx)
	if err != nil {
		if reason, ok := rejectionReason(err); ok {
			return ledger.TransactionOutcome{Success: false, FailureReason: reason}, nil
		}
		return ledger.TransactionOutcome{}, fmt.Errorf("submit transaction: %w", mapTransportErr(err))
	}
	return ledger.TransactionOutcome{Success: true, Hash: resp.Hash}, nil
}

// buildOperations translates boundary operations into SDK operations.
func buildOperations(ops []ledger.Operation) ([]txnbuild.Operation, error) {
	if len(ops) == 0 {
		return nil, errors.New("submit: no operations")
	}
	out := make([]txnbuild.Operation, 0, len(ops))
	for _, op := range ops {
		switch o := op.(type) {
		case ledger.ChangeTrust:
			out = append(out, &txnbuild.ChangeTrust{
				Line: txnbuild.ChangeTrustAssetWrapper{
					Asset: txnbuild.CreditAsset{Code: o.Line.Code, Issuer: o.Line.Issuer},
				},
				Limit: txnbuild.MaxTrustlineLimit,
			})
		case ledger.Payment:
			var asset txnbuild.Asset
			if o.Asset.IsNative() {
				asset = txnbuild.NativeAsset{}
			} else {
				asset = txnbuild.CreditAsset{Code: o.Asset.Code, Issuer: o.Asset.Issuer}
			}
			out = append(out, &txnbuild.Payment{
				Destination: o.Destination,
				Amount:      o.Amount,
				Asset:       asset,
			})
		default:
			return nil, fmt.Errorf("submit: unsupported operation %T", op)
		}
	}
	return out, nil
}

// isNotFound reports whether a Horizon error is a 404 for the resource.
func isNotFound(err error) bool {
	var herr *horizonclient.Error
	return errors.As(err, &herr) && herr.Problem.Status == http.StatusNotFound
}

// rejectionReason extracts a human-readable reason from a Horizon transaction
// rejection. Returns false when the error is not a ledger-side rejection.
func rejectionReason(err error) (string, bool) {
	var herr *horizonclient.Error
	if !errors.As(err, &herr) {
		return "", false
	}
	if codes, cErr := herr.ResultCodes(); cErr == nil && codes != nil {
		parts := []string{codes.TransactionCode}
		if len(codes.OperationCodes) > 0 {
			parts = append(parts, codes.OperationCodes...)
		}
		return strings.Join(parts, ", "), true
	}
	if herr.Problem.Detail != "" {
		return herr.Problem.Detail, true
	}
	return herr.Problem.Title, true
}

// mapTransportErr folds deadline and network timeouts into ledger.ErrTimeout
// so callers can tell a timeout from a rejection.
func mapTransportErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ledger.ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ledger.ErrTimeout, err)
	}
	return err
}
