// Package history persists a record of every issuance run: asset, amount,
// stage reached, transaction hashes and failure reason. Records never contain
// secret key material. Two key-value backends are supported behind a common
// interface, with optional value compression.
package history

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Record is one issuance run.
type Record struct {
	ID            string    `json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	AssetCode     string    `json:"asset_code"`
	AssetIssuer   string    `json:"asset_issuer"`
	Amount        string    `json:"amount"`
	Status        string    `json:"status"`
	Stage         string    `json:"stage"`
	TrustlineHash string    `json:"trustline_tx,omitempty"`
	PaymentHash   string    `json:"payment_tx,omitempty"`
	FailureReason string    `json:"failure_reason,omitempty"`
}

// Store persists issuance records in insertion order.
type Store interface {
	// Append assigns the record an ID and timestamp if unset and persists it.
	Append(ctx context.Context, rec *Record) error

	// List returns up to limit records, newest first. limit <= 0 returns all.
	List(ctx context.Context, limit int) ([]*Record, error)

	Close() error
}

// Options configures a backend.
type Options struct {
	Path        string
	Compression string // "none" or "lz4"
}

// Factory creates a backend instance.
type Factory func(opts Options) (Store, error)

var (
	factoryMu sync.RWMutex
	factories = make(map[string]Factory)
)

// Register registers a backend factory under a name.
func Register(name string, factory Factory) {
	factoryMu.Lock()
	defer factoryMu.Unlock()
	factories[name] = factory
}

// Open creates a store using the named backend.
func Open(backend string, opts Options) (Store, error) {
	factoryMu.RLock()
	factory, ok := factories[backend]
	factoryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown history backend: %s", backend)
	}
	return factory(opts)
}

// AvailableBackends returns the registered backend names.
func AvailableBackends() []string {
	factoryMu.RLock()
	defer factoryMu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	return names
}

// stamp fills in the record identity. Keys are ordered by creation time so
// backends can iterate in reverse for newest-first listings.
func stamp(rec *Record) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if rec.ID == "" {
		var suffix [4]byte
		// crypto/rand.Read never returns an error on supported platforms.
		_, _ = rand.Read(suffix[:])
		rec.ID = fmt.Sprintf("%020d-%s", rec.CreatedAt.UnixNano(), hex.EncodeToString(suffix[:]))
	}
}

func encode(rec *Record, c Compressor) ([]byte, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return c.Compress(raw)
}

func decode(value []byte, c Compressor) (*Record, error) {
	raw, err := c.Decompress(value)
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return &rec, nil
}
