package history

import (
	"context"
	"fmt"

	"github.com/cockroachdb/pebble"
)

func init() {
	Register("pebble", func(opts Options) (Store, error) {
		return openPebble(opts)
	})
}

// pebbleStore persists records in a pebble database, one key per record.
type pebbleStore struct {
	db         *pebble.DB
	compressor Compressor
}

func openPebble(opts Options) (*pebbleStore, error) {
	compressor, err := NewCompressor(opts.Compression)
	if err != nil {
		return nil, err
	}
	db, err := pebble.Open(opts.Path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open pebble history at %s: %w", opts.Path, err)
	}
	return &pebbleStore{db: db, compressor: compressor}, nil
}

func (s *pebbleStore) Append(ctx context.Context, rec *Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stamp(rec)
	value, err := encode(rec, s.compressor)
	if err != nil {
		return err
	}
	if err := s.db.Set([]byte(rec.ID), value, pebble.Sync); err != nil {
		return fmt.Errorf("append record %s: %w", rec.ID, err)
	}
	return nil
}

func (s *pebbleStore) List(ctx context.Context, limit int) ([]*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	iter, err := s.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer iter.Close()

	var records []*Record
	for ok := iter.Last(); ok; ok = iter.Prev() {
		if limit > 0 && len(records) >= limit {
			break
		}
		value, err := iter.ValueAndErr()
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		rec, err := decode(value, s.compressor)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *pebbleStore) Close() error {
	return s.db.Close()
}
