package history

import (
	"context"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
)

func init() {
	Register("goleveldb", func(opts Options) (Store, error) {
		return openLevelDB(opts)
	})
}

// levelStore is the goleveldb-backed alternative to the pebble backend.
type levelStore struct {
	db         *leveldb.DB
	compressor Compressor
}

func openLevelDB(opts Options) (*levelStore, error) {
	compressor, err := NewCompressor(opts.Compression)
	if err != nil {
		return nil, err
	}
	db, err := leveldb.OpenFile(opts.Path, nil)
	if err != nil {
		return nil, fmt.Errorf("open leveldb history at %s: %w", opts.Path, err)
	}
	return &levelStore{db: db, compressor: compressor}, nil
}

func (s *levelStore) Append(ctx context.Context, rec *Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stamp(rec)
	value, err := encode(rec, s.compressor)
	if err != nil {
		return err
	}
	if err := s.db.Put([]byte(rec.ID), value, nil); err != nil {
		return fmt.Errorf("append record %s: %w", rec.ID, err)
	}
	return nil
}

func (s *levelStore) List(ctx context.Context, limit int) ([]*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	iter := s.db.NewIterator(nil, nil)
	defer iter.Release()

	var records []*Record
	for ok := iter.Last(); ok; ok = iter.Prev() {
		if limit > 0 && len(records) >= limit {
			break
		}
		rec, err := decode(iter.Value(), s.compressor)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return records, nil
}

func (s *levelStore) Close() error {
	return s.db.Close()
}
