package keys

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingFunder records funding requests.
type countingFunder struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *countingFunder) Fund(ctx context.Context, accountID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, accountID)
	return f.err
}

func TestProvisionRoleWithExistingSecret(t *testing.T) {
	existing, err := Generate()
	require.NoError(t, err)

	for _, testnet := range []bool{true, false} {
		funder := &countingFunder{}
		p := NewProvisioner(funder, testnet, nil)

		kp, funding, err := p.ProvisionRole(context.Background(), RoleIssuer, existing.Seed())
		require.NoError(t, err)
		assert.Equal(t, existing.Address, kp.Address)
		assert.Equal(t, OutcomePreConfigured, funding.Outcome)
		// A supplied secret never triggers a funding call, on any network.
		assert.Empty(t, funder.calls)
	}
}

func TestProvisionRoleInvalidSecret(t *testing.T) {
	p := NewProvisioner(&countingFunder{}, true, nil)
	_, _, err := p.ProvisionRole(context.Background(), RoleIssuer, "not-a-seed")
	assert.Error(t, err)
}

func TestProvisionRoleFreshTestnet(t *testing.T) {
	funder := &countingFunder{}
	p := NewProvisioner(funder, true, nil)

	kp, funding, err := p.ProvisionRole(context.Background(), RoleDistributor, "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeFunded, funding.Outcome)
	// Exactly one funding call, carrying the generated public key.
	require.Len(t, funder.calls, 1)
	assert.Equal(t, kp.Address, funder.calls[0])
}

func TestProvisionRoleFreshTestnetNotIdempotent(t *testing.T) {
	funder := &countingFunder{}
	p := NewProvisioner(funder, true, nil)

	first, _, err := p.ProvisionRole(context.Background(), RoleIssuer, "")
	require.NoError(t, err)
	second, _, err := p.ProvisionRole(context.Background(), RoleIssuer, "")
	require.NoError(t, err)
	assert.NotEqual(t, first.Address, second.Address)
	assert.Len(t, funder.calls, 2)
}

func TestProvisionRoleFundingFailure(t *testing.T) {
	funder := &countingFunder{err: errors.New("friendbot returned 500")}
	p := NewProvisioner(funder, true, nil)

	_, funding, err := p.ProvisionRole(context.Background(), RoleIssuer, "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeFundingFailed, funding.Outcome)
	assert.True(t, funding.Failed())
	assert.Contains(t, funding.Detail, "friendbot returned 500")
}

func TestProvisionRolePublicNetwork(t *testing.T) {
	funder := &countingFunder{}
	p := NewProvisioner(funder, false, nil)

	kp, funding, err := p.ProvisionRole(context.Background(), RoleIssuer, "")
	require.NoError(t, err)
	assert.NotEmpty(t, kp.Address)
	assert.Equal(t, OutcomeManualFunding, funding.Outcome)
	// Public-network accounts are funded out-of-band; no faucet call.
	assert.Empty(t, funder.calls)
}
