package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treatbank/mintd/internal/config"
	"github.com/treatbank/mintd/internal/keys"
	"github.com/treatbank/mintd/internal/mock"
)

func testConfig() *config.Config {
	return &config.Config{
		Network:      config.NetworkTestnet,
		FriendbotURL: "http://friendbot.test",
		Asset:        config.AssetConfig{Code: "MYTOKEN"},
		Server:       config.ServerConfig{Port: 8080, TimeoutSeconds: 30},
		History:      config.HistoryConfig{Backend: "pebble", Path: "unused"},
		// Cache disabled: tests assert on fresh reads.
		BalanceCache: config.CacheConfig{Size: 0},
	}
}

func newTestService(cfg *config.Config) (*Service, *mock.LedgerClient, *mock.Friendbot) {
	client := mock.NewLedgerClient()
	funder := mock.NewFriendbot(client)
	return New(cfg, client, funder, nil, nil, nil), client, funder
}

// Scenario: testnet, no pre-existing keys. Setup funds both accounts, issue
// succeeds with two distinct hashes, and the distributor ends up holding the
// issued amount.
func TestEndToEndIssuance(t *testing.T) {
	svc, _, funder := newTestService(testConfig())
	ctx := context.Background()

	setup := svc.SetupAccounts(ctx)
	require.Equal(t, StatusSuccess, setup.Status, setup.Message)
	require.NotNil(t, setup.Issuer)
	require.NotNil(t, setup.Distributor)
	assert.Equal(t, keys.OutcomeFunded, setup.Issuer.FundingOutcome)
	assert.Equal(t, keys.OutcomeFunded, setup.Distributor.FundingOutcome)
	assert.Equal(t, 2, funder.CallCount())

	issued, err := svc.IssueAsset(ctx, "1000")
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, issued.Status, issued.Message)
	assert.NotEmpty(t, issued.TrustlineTx)
	assert.NotEmpty(t, issued.PaymentTx)
	assert.NotEqual(t, issued.TrustlineTx, issued.PaymentTx)

	bal, err := svc.CheckBalance(ctx, setup.Distributor.PublicKey)
	require.NoError(t, err)
	assert.Equal(t, "1000.0000000", bal.Balance)
	assert.Equal(t, "MYTOKEN", bal.AssetCode)

	native, err := svc.CheckNativeBalance(ctx, setup.Distributor.PublicKey)
	require.NoError(t, err)
	assert.Equal(t, "XLM", native.AssetCode)
	assert.Equal(t, "10000.0000000", native.Balance)
}

// Scenario: the faucet funds the issuer and rejects the distributor. Setup
// reports an error before any trustline or payment is attempted, and issue is
// unreachable until a re-run succeeds.
func TestSetupStopsOnDistributorFundingFailure(t *testing.T) {
	svc, client, funder := newTestService(testConfig())
	funder.Err = errors.New("friendbot returned 503")
	funder.FailAfter = 1
	ctx := context.Background()

	setup := svc.SetupAccounts(ctx)
	require.Equal(t, StatusError, setup.Status)
	assert.Contains(t, setup.Message, "distributor")
	assert.Equal(t, 2, funder.CallCount())
	assert.Equal(t, 0, client.SubmitCalls)

	_, err := svc.IssueAsset(ctx, "1000")
	assert.ErrorIs(t, err, ErrNotInitialized)

	// The partially-funded state is left as-is: a re-run keeps the funded
	// issuer and only retries the distributor.
	funder.Err = nil
	retry := svc.SetupAccounts(ctx)
	require.Equal(t, StatusSuccess, retry.Status, retry.Message)
	assert.Equal(t, setup.Issuer.PublicKey, retry.Issuer.PublicKey)
	assert.Equal(t, 3, funder.CallCount())

	issued, err := svc.IssueAsset(ctx, "5")
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, issued.Status, issued.Message)
}

func TestSetupStopsOnIssuerFundingFailure(t *testing.T) {
	svc, _, funder := newTestService(testConfig())
	funder.Err = errors.New("friendbot unreachable")
	ctx := context.Background()

	setup := svc.SetupAccounts(ctx)
	require.Equal(t, StatusError, setup.Status)
	assert.Contains(t, setup.Message, "issuer")
	// The distributor is never attempted after the issuer fails.
	assert.Equal(t, 1, funder.CallCount())
}

// Scenario: trustline succeeds, payment is rejected. The result reports the
// payment stage, keeps the trustline hash and has no payment hash.
func TestIssuePaymentStageFailure(t *testing.T) {
	svc, client, _ := newTestService(testConfig())
	ctx := context.Background()

	require.Equal(t, StatusSuccess, svc.SetupAccounts(ctx).Status)
	client.RejectPayment = "tx_insufficient_balance"

	result, err := svc.IssueAsset(ctx, "1000")
	require.NoError(t, err)
	assert.Equal(t, StatusError, result.Status)
	assert.Equal(t, "payment", result.Stage)
	assert.NotEmpty(t, result.TrustlineTx)
	assert.Empty(t, result.PaymentTx)
	assert.Contains(t, result.Message, "tx_insufficient_balance")
}

func TestIssueRequiresSetup(t *testing.T) {
	svc, _, _ := newTestService(testConfig())
	_, err := svc.IssueAsset(context.Background(), "1000")
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestCheckBalanceRequiresIssuer(t *testing.T) {
	svc, _, _ := newTestService(testConfig())
	_, err := svc.CheckBalance(context.Background(), "GANY")
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestSetupUsesConfiguredSeeds(t *testing.T) {
	issuer, err := keys.Generate()
	require.NoError(t, err)
	distributor, err := keys.Generate()
	require.NoError(t, err)

	cfg := testConfig()
	cfg.Issuer.Seed = issuer.Seed()
	cfg.Distributor.Seed = distributor.Seed()

	svc, client, funder := newTestService(cfg)
	// Pre-configured accounts already exist on the ledger.
	client.CreateAccount(issuer.Address, "100.0000000")
	client.CreateAccount(distributor.Address, "100.0000000")

	setup := svc.SetupAccounts(context.Background())
	require.Equal(t, StatusSuccess, setup.Status, setup.Message)
	assert.Equal(t, issuer.Address, setup.Issuer.PublicKey)
	assert.Equal(t, distributor.Address, setup.Distributor.PublicKey)
	assert.Equal(t, keys.OutcomePreConfigured, setup.Issuer.FundingOutcome)
	// Pre-configured roles never trigger the faucet.
	assert.Equal(t, 0, funder.CallCount())
}

func TestSetupIsIdempotentPerProcess(t *testing.T) {
	svc, _, funder := newTestService(testConfig())
	ctx := context.Background()

	first := svc.SetupAccounts(ctx)
	require.Equal(t, StatusSuccess, first.Status)
	second := svc.SetupAccounts(ctx)
	require.Equal(t, StatusSuccess, second.Status)

	assert.Equal(t, first.Issuer.PublicKey, second.Issuer.PublicKey)
	assert.Equal(t, first.Distributor.PublicKey, second.Distributor.PublicKey)
	assert.Equal(t, 2, funder.CallCount())
}

func TestConcurrentSetupCollapses(t *testing.T) {
	svc, _, funder := newTestService(testConfig())
	ctx := context.Background()

	const workers = 8
	results := make([]SetupResult, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = svc.SetupAccounts(ctx)
		}(i)
	}
	wg.Wait()

	// Every caller sees the same canonical accounts, and the faucet was hit
	// at most once per role.
	for _, r := range results {
		require.Equal(t, StatusSuccess, r.Status, r.Message)
		assert.Equal(t, results[0].Issuer.PublicKey, r.Issuer.PublicKey)
		assert.Equal(t, results[0].Distributor.PublicKey, r.Distributor.PublicKey)
	}
	assert.Equal(t, 2, funder.CallCount())
}

// cancelAwareFunder fails funding once the request context is cancelled, the
// way the real friendbot HTTP call would.
type cancelAwareFunder struct {
	inner *mock.Friendbot
}

func (f *cancelAwareFunder) Fund(ctx context.Context, accountID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return f.inner.Fund(ctx, accountID)
}

// Setup is shared across collapsed callers, so the cancellation of the
// request that happened to start it must not poison the result.
func TestSetupSurvivesCallerCancellation(t *testing.T) {
	cfg := testConfig()
	client := mock.NewLedgerClient()
	funder := &cancelAwareFunder{inner: mock.NewFriendbot(client)}
	svc := New(cfg, client, funder, nil, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	setup := svc.SetupAccounts(ctx)
	require.Equal(t, StatusSuccess, setup.Status, setup.Message)
	assert.Equal(t, 2, funder.inner.CallCount())
}

func TestResultsNeverContainSecrets(t *testing.T) {
	issuer, err := keys.Generate()
	require.NoError(t, err)
	distributor, err := keys.Generate()
	require.NoError(t, err)

	cfg := testConfig()
	cfg.Issuer.Seed = issuer.Seed()
	cfg.Distributor.Seed = distributor.Seed()

	svc, client, _ := newTestService(cfg)
	client.CreateAccount(issuer.Address, "100.0000000")
	client.CreateAccount(distributor.Address, "100.0000000")
	ctx := context.Background()

	setup := svc.SetupAccounts(ctx)
	issued, err := svc.IssueAsset(ctx, "42")
	require.NoError(t, err)

	for name, v := range map[string]interface{}{"setup": setup, "issue": issued} {
		encoded, err := json.Marshal(v)
		require.NoError(t, err)
		assert.NotContains(t, string(encoded), issuer.Seed(), name)
		assert.NotContains(t, string(encoded), distributor.Seed(), name)
	}
}
