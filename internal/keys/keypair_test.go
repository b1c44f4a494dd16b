package keys

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRoundTrip(t *testing.T) {
	kp, err := Generate()
	require.NoError(t, err)
	assert.NotEmpty(t, kp.Address)
	assert.NotEmpty(t, kp.Seed())

	restored, err := FromSeed(kp.Seed())
	require.NoError(t, err)
	assert.Equal(t, kp.Address, restored.Address)
}

func TestFromSeedRejectsGarbage(t *testing.T) {
	_, err := FromSeed("SINVALIDSEED")
	assert.Error(t, err)
}

func TestKeypairNeverExposesSeed(t *testing.T) {
	kp, err := Generate()
	require.NoError(t, err)

	// The seed must not leak through formatting or JSON encoding.
	assert.Equal(t, kp.Address, kp.String())
	assert.Equal(t, kp.Address, fmt.Sprintf("%v", kp))
	assert.Equal(t, kp.Address, kp.LogValue().String())

	encoded, err := json.Marshal(kp)
	require.NoError(t, err)
	assert.NotContains(t, string(encoded), kp.Seed())
}

func TestStoreReady(t *testing.T) {
	s := NewStore()
	assert.False(t, s.Ready())

	issuer, err := Generate()
	require.NoError(t, err)
	s.Put(RoleIssuer, Provisioned{Keys: issuer, Funding: FundingResult{Outcome: OutcomeFunded}})
	assert.False(t, s.Ready())

	distributor, err := Generate()
	require.NoError(t, err)
	s.Put(RoleDistributor, Provisioned{Keys: distributor, Funding: FundingResult{Outcome: OutcomeFundingFailed}})
	assert.False(t, s.Ready())

	s.Put(RoleDistributor, Provisioned{Keys: distributor, Funding: FundingResult{Outcome: OutcomeFunded}})
	assert.True(t, s.Ready())

	got, ok := s.Get(RoleIssuer)
	require.True(t, ok)
	assert.Equal(t, issuer.Address, got.Keys.Address)
}
