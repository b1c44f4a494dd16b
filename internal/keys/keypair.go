// Package keys provisions and holds the issuer and distributor keypairs. A
// secret seed lives only in process memory: the Keypair type keeps it in an
// unexported field so it cannot leak through JSON encoding or structured
// logging, and nothing in this package ever writes it to durable storage.
package keys

import (
	"fmt"
	"log/slog"

	"github.com/stellar/go/keypair"
)

// Role names one of the two accounts bound to a workflow run.
type Role string

const (
	RoleIssuer      Role = "issuer"
	RoleDistributor Role = "distributor"
)

// Keypair holds a ledger account address and its signing seed.
type Keypair struct {
	Address string
	seed    string
}

// Generate creates a fresh random keypair.
func Generate() (Keypair, error) {
	kp, err := keypair.Random()
	if err != nil {
		return Keypair{}, fmt.Errorf("generate keypair: %w", err)
	}
	return Keypair{Address: kp.Address(), seed: kp.Seed()}, nil
}

// FromSeed reconstructs a keypair from a caller-supplied secret seed.
func FromSeed(seed string) (Keypair, error) {
	kp, err := keypair.ParseFull(seed)
	if err != nil {
		return Keypair{}, fmt.Errorf("parse secret seed: %w", err)
	}
	return Keypair{Address: kp.Address(), seed: seed}, nil
}

// Seed returns the secret seed. Callers pass it to a signing operation and
// nowhere else.
func (k Keypair) Seed() string {
	return k.seed
}

// IsZero reports whether the keypair is unset.
func (k Keypair) IsZero() bool {
	return k.Address == "" && k.seed == ""
}

// String renders only the public address.
func (k Keypair) String() string {
	return k.Address
}

// LogValue keeps the seed out of structured log output.
func (k Keypair) LogValue() slog.Value {
	return slog.StringValue(k.Address)
}
