package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
	bolt "go.etcd.io/bbolt"

	"blindrelay/internal/domain"
)

const (
	// BoltStorageVersion is the version of the on disk format.
	BoltStorageVersion = 0

	metadataBucket = "metadata"
	versionKey     = "version"
	recordsBucket  = "invitations"
)

var (
	errNoRecordsBucket = errors.New("bolt store: invitations bucket does not exist")

	// Times keep nanosecond precision on disk.
	recordEncMode = mustEncMode(cbor.EncOptions{Time: cbor.TimeRFC3339Nano})
)

func mustEncMode(o cbor.EncOptions) cbor.EncMode {
	em, err := o.EncMode()
	if err != nil {
		panic(err)
	}
	return em
}

// BoltStore persists records in a bbolt file. Every operation runs in a single
// read-write transaction, which bbolt serialises, so check-then-act is atomic.
type BoltStore struct {
	db   *bolt.DB
	opts options
}

// OpenBoltStore opens or creates the database at path.
func OpenBoltStore(path string, opts ...Option) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bolt store: open %s: %w", path, err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		meta, err := tx.CreateBucketIfNotExists([]byte(metadataBucket))
		if err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(recordsBucket)); err != nil {
			return err
		}
		if b := meta.Get([]byte(versionKey)); b != nil {
			if len(b) != 1 || b[0] != BoltStorageVersion {
				return fmt.Errorf("bolt store: incompatible version: %d", uint(b[0]))
			}
			return nil
		}
		return meta.Put([]byte(versionKey), []byte{BoltStorageVersion})
	}); err != nil {
		db.Close()
		return nil, err
	}
	return &BoltStore{db: db, opts: buildOptions(opts)}, nil
}

// Put inserts rec unless a live record or an unexpired tombstone exists for id.
func (s *BoltStore) Put(ctx context.Context, id domain.InvitationID, rec domain.StoredRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := recordEncMode.Marshal(rec)
	if err != nil {
		return fmt.Errorf("bolt store: encode: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(recordsBucket))
		if bkt == nil {
			return errNoRecordsBucket
		}
		if v := bkt.Get(id[:]); v != nil {
			old, err := decodeRecord(v)
			if err != nil {
				return err
			}
			if !old.Expired(s.opts.now()) {
				return domain.ErrConflict
			}
		}
		return bkt.Put(id[:], raw)
	})
}

// GetAndDelete takes the live record for id, leaving a tombstone behind.
func (s *BoltStore) GetAndDelete(ctx context.Context, id domain.InvitationID) (domain.StoredRecord, error) {
	if err := ctx.Err(); err != nil {
		return domain.StoredRecord{}, err
	}
	var (
		rec  domain.StoredRecord
		live bool
	)
	if err := s.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(recordsBucket))
		if bkt == nil {
			return errNoRecordsBucket
		}
		v := bkt.Get(id[:])
		if v == nil {
			return nil
		}
		var err error
		if rec, err = decodeRecord(v); err != nil {
			return err
		}
		if rec.Fetched {
			return nil
		}
		if rec.Expired(s.opts.now()) {
			return bkt.Delete(id[:])
		}
		raw, err := recordEncMode.Marshal(rec.Tombstone())
		if err != nil {
			return fmt.Errorf("bolt store: encode: %w", err)
		}
		live = true
		return bkt.Put(id[:], raw)
	}); err != nil {
		return domain.StoredRecord{}, err
	}
	if !live {
		return domain.StoredRecord{}, domain.ErrNotFound
	}
	return rec, nil
}

// DeleteExpired drops every record and tombstone expired at now. Only
// unfetched records are counted.
func (s *BoltStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	n := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(recordsBucket))
		if bkt == nil {
			return errNoRecordsBucket
		}
		var expired [][]byte
		c := bkt.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			rec, err := decodeRecord(v)
			if err != nil {
				return err
			}
			if rec.Expired(now) {
				expired = append(expired, append([]byte(nil), k...))
				if !rec.Fetched {
					n++
				}
			}
		}
		for _, k := range expired {
			if err := bkt.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Close syncs and closes the database.
func (s *BoltStore) Close() error {
	if err := s.db.Sync(); err != nil {
		s.db.Close()
		return err
	}
	return s.db.Close()
}

// decodeRecord copies v first since bbolt values die with the transaction.
func decodeRecord(v []byte) (domain.StoredRecord, error) {
	var rec domain.StoredRecord
	if err := cbor.Unmarshal(append([]byte(nil), v...), &rec); err != nil {
		return domain.StoredRecord{}, fmt.Errorf("bolt store: decode: %w", err)
	}
	return rec, nil
}

// Compile-time assertion that BoltStore implements domain.RecordStore.
var _ domain.RecordStore = (*BoltStore)(nil)
