package horizon

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stellar/go/clients/horizonclient"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/support/render/problem"
	"github.com/stellar/go/txnbuild"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treatbank/mintd/internal/ledger"
)

func TestBuildOperations(t *testing.T) {
	asset := ledger.Asset{Code: "MYTOKEN", Issuer: "GISSUER"}
	ops, err := buildOperations([]ledger.Operation{
		ledger.ChangeTrust{Line: asset},
		ledger.Payment{Destination: "GDEST", Amount: "1000", Asset: asset},
		ledger.Payment{Destination: "GDEST", Amount: "5", Asset: ledger.NativeAsset()},
	})
	require.NoError(t, err)
	require.Len(t, ops, 3)

	trust, ok := ops[0].(*txnbuild.ChangeTrust)
	require.True(t, ok)
	assert.Equal(t, txnbuild.MaxTrustlineLimit, trust.Limit)

	pay, ok := ops[1].(*txnbuild.Payment)
	require.True(t, ok)
	assert.Equal(t, "GDEST", pay.Destination)
	assert.Equal(t, "1000", pay.Amount)
	assert.False(t, pay.Asset.IsNative())

	native, ok := ops[2].(*txnbuild.Payment)
	require.True(t, ok)
	assert.True(t, native.Asset.IsNative())
}

func TestBuildOperationsRejectsEmpty(t *testing.T) {
	_, err := buildOperations(nil)
	require.Error(t, err)
}

func TestMapTransportErr(t *testing.T) {
	assert.NoError(t, mapTransportErr(nil))

	err := mapTransportErr(context.DeadlineExceeded)
	assert.ErrorIs(t, err, ledger.ErrTimeout)

	err = mapTransportErr(context.Canceled)
	assert.ErrorIs(t, err, ledger.ErrTimeout)

	plain := errors.New("connection refused")
	assert.Equal(t, plain, mapTransportErr(plain))
}

func TestIsNotFound(t *testing.T) {
	notFound := &horizonclient.Error{
		Problem: problem.P{Status: http.StatusNotFound, Title: "Resource Missing"},
	}
	assert.True(t, isNotFound(notFound))

	serverErr := &horizonclient.Error{
		Problem: problem.P{Status: http.StatusInternalServerError},
	}
	assert.False(t, isNotFound(serverErr))
	assert.False(t, isNotFound(errors.New("boom")))
}

func TestRejectionReasonFallsBackToProblem(t *testing.T) {
	herr := &horizonclient.Error{
		Problem: problem.P{
			Status: http.StatusBadRequest,
			Title:  "Transaction Failed",
			Detail: "insufficient fee",
		},
	}
	reason, ok := rejectionReason(herr)
	require.True(t, ok)
	assert.Equal(t, "insufficient fee", reason)

	_, ok = rejectionReason(errors.New("dial tcp: timeout"))
	assert.False(t, ok)
}

func TestSubmitValidatesRequest(t *testing.T) {
	c := New("https://horizon-testnet.stellar.org", "Test SDF Network ; September 2015", time.Second)
	ctx := context.Background()

	_, err := c.Submit(ctx, ledger.SubmitRequest{})
	require.Error(t, err)

	// A bad signer seed fails before anything goes on the wire.
	source := keypair.MustRandom()
	dest := keypair.MustRandom()
	_, err = c.Submit(ctx, ledger.SubmitRequest{
		Source:     &ledger.AccountSnapshot{AccountID: source.Address(), Sequence: 1},
		Operations: []ledger.Operation{ledger.Payment{Destination: dest.Address(), Amount: "1", Asset: ledger.NativeAsset()}},
		SignerSeed: "not-a-seed",
		BaseFee:    txnbuild.MinBaseFee,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "signer seed")
}

func TestCancelledContextShortCircuits(t *testing.T) {
	c := New("https://horizon-testnet.stellar.org", "Test SDF Network ; September 2015", time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.LoadAccount(ctx, "GANY")
	assert.ErrorIs(t, err, ledger.ErrTimeout)
	_, err = c.BaseFee(ctx)
	assert.ErrorIs(t, err, ledger.ErrTimeout)
}
