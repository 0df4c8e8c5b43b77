package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/m-mizutani/goerr/v2"

	"github.com/vidyalab/sahayak/pkg/model"
)

// Badger keeps memory records in a local embedded key-value store. Keys are
// memory:{userID}:{createdAtUnixNano}:{recordID} so a prefix scan over a user
// yields insertion order.
type Badger struct {
	db *badger.DB
}

// NewBadger opens (or creates) a Badger store at path
func NewBadger(path string) (*Badger, error) {
	if path == "" {
		return nil, goerr.New("badger path is required")
	}

	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open badger store", goerr.V("path", path))
	}

	return &Badger{db: db}, nil
}

// validateUserID rejects user IDs that would break the key scheme: a ':' in
// the ID makes one user's prefix match another user's keys.
func validateUserID(userID string) error {
	if userID == "" {
		return goerr.New("user ID is required")
	}
	if strings.Contains(userID, ":") {
		return goerr.New("user ID must not contain ':'", goerr.V("user", userID))
	}
	return nil
}

func userPrefix(userID string) []byte {
	return []byte(fmt.Sprintf("memory:%s:", userID))
}

func recordKey(record *model.MemoryRecord) []byte {
	return []byte(fmt.Sprintf("memory:%s:%020d:%s", record.UserID, record.CreatedAt.UnixNano(), record.ID))
}

func serialize(record *model.MemoryRecord) ([]byte, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal memory record", goerr.V("id", record.ID))
	}
	return data, nil
}

func deserialize(data []byte) (*model.MemoryRecord, error) {
	var record model.MemoryRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal memory record")
	}
	return &record, nil
}

func (r *Badger) PutRecord(ctx context.Context, record *model.MemoryRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}
	if err := validateUserID(record.UserID); err != nil {
		return err
	}

	data, err := serialize(record)
	if err != nil {
		return err
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(recordKey(record), data)
	})
	if err != nil {
		return goerr.Wrap(err, "failed to put memory record",
			goerr.V("user", record.UserID), goerr.V("id", record.ID))
	}

	return nil
}

func (r *Badger) ListRecords(ctx context.Context, userID string) ([]*model.MemoryRecord, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}

	var records []*model.MemoryRecord
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = userPrefix(userID)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var record *model.MemoryRecord
			err := it.Item().Value(func(val []byte) error {
				var err error
				record, err = deserialize(val)
				return err
			})
			if err != nil {
				return err
			}
			records = append(records, record)
		}
		return nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list memory records", goerr.V("user", userID))
	}

	return records, nil
}

// findKey scans a user's keys for the one ending in the record ID
func (r *Badger) findKey(txn *badger.Txn, userID string, id model.MemoryID) ([]byte, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = userPrefix(userID)
	opts.PrefetchValues = false

	it := txn.NewIterator(opts)
	defer it.Close()

	suffix := ":" + string(id)
	for it.Rewind(); it.Valid(); it.Next() {
		key := it.Item().KeyCopy(nil)
		if strings.HasSuffix(string(key), suffix) {
			return key, nil
		}
	}

	return nil, goerr.Wrap(ErrRecordNotFound, "record key missing",
		goerr.V("user", userID), goerr.V("id", id))
}

func (r *Badger) UpdateUsage(ctx context.Context, userID string, id model.MemoryID, usageCount int, lastUsedAt time.Time) error {
	if err := validateUserID(userID); err != nil {
		return err
	}

	return r.db.Update(func(txn *badger.Txn) error {
		key, err := r.findKey(txn, userID, id)
		if err != nil {
			return err
		}

		item, err := txn.Get(key)
		if err != nil {
			return goerr.Wrap(err, "failed to get memory record", goerr.V("id", id))
		}

		var record *model.MemoryRecord
		if err := item.Value(func(val []byte) error {
			var err error
			record, err = deserialize(val)
			return err
		}); err != nil {
			return err
		}

		record.UsageCount = usageCount
		record.LastUsedAt = &lastUsedAt

		data, err := serialize(record)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
}

func (r *Badger) DeleteRecord(ctx context.Context, userID string, id model.MemoryID) error {
	if err := validateUserID(userID); err != nil {
		return err
	}

	return r.db.Update(func(txn *badger.Txn) error {
		key, err := r.findKey(txn, userID, id)
		if err != nil {
			return err
		}
		return txn.Delete(key)
	})
}

func (r *Badger) ClearRecords(ctx context.Context, userID string) error {
	if err := validateUserID(userID); err != nil {
		return err
	}

	var keys [][]byte
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = userPrefix(userID)
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return goerr.Wrap(err, "failed to scan memory records", goerr.V("user", userID))
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		for _, key := range keys {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return goerr.Wrap(err, "failed to clear memory records", goerr.V("user", userID))
	}

	return nil
}

func (r *Badger) Close() error {
	return r.db.Close()
}
