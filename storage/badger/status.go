// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/enrichit/core"
	"github.com/poiesic/enrichit/storage"
)

// StatusRepository implements storage.StatusRepository for BadgerDB.
// Records are keyed by the content ID of their document key.
type StatusRepository struct {
	backend *Backend
}

var _ storage.StatusRepository = (*StatusRepository)(nil)

// newStatusRepository is an internal constructor that returns the concrete type.
func newStatusRepository(backend *Backend) *StatusRepository {
	return &StatusRepository{
		backend: backend,
	}
}

// NewStatusRepository creates a new status repository on an open backend.
//
// Returns storage.StatusRepository interface to enforce abstraction.
func NewStatusRepository(backend *Backend) (storage.StatusRepository, error) {
	if backend == nil || backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	return newStatusRepository(backend), nil
}

// Close is a no-op. The backend is owned and closed by the caller.
func (r *StatusRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *StatusRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// PutStatus stores a status record, replacing any existing record for the same key.
func (r *StatusRepository) PutStatus(ctx context.Context, record *core.StatusRecord) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		record.UpdatedAt = time.Now().UTC()
		if record.StartedAt.IsZero() {
			record.StartedAt = record.UpdatedAt
		}

		id := core.IDFromContent(record.DocumentKey)
		if err := tx.Set(makeStatusRecordKey(id), storage.MarshalStatusRecord(record)); err != nil {
			return err
		}
		if err := tx.Set(makeStatusKeyIndexKey(record.DocumentKey), storage.MarshalID(id)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetStatus retrieves the record for a document key.
func (r *StatusRepository) GetStatus(ctx context.Context, documentKey string) (*core.StatusRecord, error) {
	var record *core.StatusRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		record, err = r.getStatusTx(tx, core.IDFromContent(documentKey))
		return err
	}, false)
	if err != nil {
		return nil, err
	}

	// Guard against content ID collisions.
	if record.DocumentKey != documentKey {
		return nil, storage.ErrNotFound
	}
	return record, nil
}

// ListStatus returns every stored record ordered by document key.
func (r *StatusRepository) ListStatus(ctx context.Context) ([]*core.StatusRecord, error) {
	var records []*core.StatusRecord

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialStatusKeyIndexKey()
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var id core.ID
			err := iter.Item().Value(func(val []byte) error {
				var err error
				id, err = storage.UnmarshalID(val)
				return err
			})
			if err != nil {
				return err
			}

			record, err := r.getStatusTx(tx, id)
			if err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					continue
				}
				return err
			}
			records = append(records, record)
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}
	return records, nil
}

// DeleteStatus removes the record for a document key.
func (r *StatusRepository) DeleteStatus(ctx context.Context, documentKey string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		id := core.IDFromContent(documentKey)
		key := makeStatusRecordKey(id)

		if _, err := tx.Get(key); err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}

		if err := tx.Delete(key); err != nil {
			return err
		}
		if err := tx.Delete(makeStatusKeyIndexKey(documentKey)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

func (r *StatusRepository) getStatusTx(tx *badger.Txn, id core.ID) (*core.StatusRecord, error) {
	item, err := tx.Get(makeStatusRecordKey(id))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}

	var record *core.StatusRecord
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		record, unmarshalErr = storage.UnmarshalStatusRecord(val)
		return unmarshalErr
	})
	return record, err
}
