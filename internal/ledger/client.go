package ledger

import "context"

// Client is the capability the orchestration layer consumes from the ledger.
// It is deliberately small: load account state, estimate a fee, and
// build-sign-submit one transaction. Implementations wrap an external ledger
// SDK; the orchestration never talks to the network directly.
type Client interface {
	// LoadAccount fetches a fresh snapshot of the account. Returns
	// ErrAccountNotFound if the account does not exist on the ledger.
	LoadAccount(ctx context.Context, accountID string) (*AccountSnapshot, error)

	// BaseFee returns the recommended per-operation fee in stroops.
	BaseFee(ctx context.Context) (int64, error)

	// Submit builds a single transaction from the request, signs it with the
	// request's signer and submits it. A ledger-side rejection is reported in
	// the outcome with Success=false and a nil error; a transport failure
	// (network, timeout) is returned as an error.
	Submit(ctx context.Context, req SubmitRequest) (TransactionOutcome, error)

	// NetworkPassphrase identifies the network transactions are signed for.
	NetworkPassphrase() string
}
