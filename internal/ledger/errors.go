package ledger

import "errors"

var (
	// ErrAccountNotFound indicates the requested account does not exist on the
	// ledger. Callers must keep this distinct from a zero balance.
	ErrAccountNotFound = errors.New("account not found on ledger")

	// ErrTimeout indicates a ledger interaction exceeded its deadline. It is
	// surfaced as its own kind so callers never confuse a timeout with a
	// rejection; nothing in the core retries it automatically.
	ErrTimeout = errors.New("ledger request timed out")
)
