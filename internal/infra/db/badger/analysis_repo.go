package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	domain "github.com/bryanwahyu/semantic-guard/internal/domain/analyses"
)

var (
	recordPrefix = []byte("analysis/")
	metaKey      = []byte("meta")
)

type AnalysisRepository struct {
	db *badger.DB
}

func NewAnalysisRepository(db *badger.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

func recordKey(id domain.AnalysisID) []byte {
	k := make([]byte, 0, len(recordPrefix)+len(id))
	k = append(k, recordPrefix...)
	return append(k, id...)
}

// Save upserts rec and increments the counter inside one badger transaction.
func (r *AnalysisRepository) Save(_ context.Context, rec *domain.AnalysisRecord) (domain.SaveResult, error) {
	var res domain.SaveResult
	err := r.db.Update(func(txn *badger.Txn) error {
		key := recordKey(rec.ID)
		_, err := txn.Get(key)
		switch {
		case err == nil:
			res.Replaced = true
		case errors.Is(err, badger.ErrKeyNotFound):
		default:
			return err
		}

		meta, err := readMeta(txn)
		if err != nil {
			return err
		}
		meta.IncrementTotal()
		rec.BlockHeight = meta.Total()

		body, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode analysis: %w", err)
		}
		metaBody, err := json.Marshal(meta)
		if err != nil {
			return err
		}

		if err := txn.Set(key, body); err != nil {
			return err
		}
		if err := txn.Set(metaKey, metaBody); err != nil {
			return err
		}
		res.Metadata = meta
		return nil
	})
	if err != nil {
		return domain.SaveResult{}, err
	}
	return res, nil
}

func (r *AnalysisRepository) Get(_ context.Context, id domain.AnalysisID) (*domain.AnalysisRecord, error) {
	var rec domain.AnalysisRecord
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(recordKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *AnalysisRepository) All(_ context.Context) ([]*domain.AnalysisRecord, error) {
	out := make([]*domain.AnalysisRecord, 0)
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: recordPrefix, PrefetchValues: true, PrefetchSize: 100})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			var rec domain.AnalysisRecord
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			out = append(out, &rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *AnalysisRepository) Size(_ context.Context) (int, error) {
	n := 0
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: recordPrefix})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

func (r *AnalysisRepository) Metadata(_ context.Context) (domain.AggregateMetadata, error) {
	var meta domain.AggregateMetadata
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		meta, err = readMeta(txn)
		return err
	})
	return meta, err
}

func (r *AnalysisRepository) Ping(context.Context) error {
	if r.db.IsClosed() {
		return errors.New("badger database is closed")
	}
	return nil
}

// readMeta returns the stored metadata, or the defaults before the first write.
func readMeta(txn *badger.Txn) (domain.AggregateMetadata, error) {
	item, err := txn.Get(metaKey)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.DefaultMetadata(), nil
	}
	if err != nil {
		return domain.AggregateMetadata{}, err
	}
	var meta domain.AggregateMetadata
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &meta)
	})
	return meta, err
}
