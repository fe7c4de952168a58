package store

import (
	"context"
	"sync"
	"time"

	"blindrelay/internal/domain"
)

const memoryShards = 32

type memoryShard struct {
	mu      sync.Mutex
	records map[domain.InvitationID]domain.StoredRecord
}

// MemoryStore keeps records in process memory. Ids are spread over
// independently locked shards so unrelated ids do not contend.
type MemoryStore struct {
	shards [memoryShards]memoryShard
	opts   options
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{opts: buildOptions(opts)}
	for i := range s.shards {
		s.shards[i].records = make(map[domain.InvitationID]domain.StoredRecord)
	}
	return s
}

func (s *MemoryStore) shard(id domain.InvitationID) *memoryShard {
	return &s.shards[id[0]%memoryShards]
}

// Put inserts rec unless a live record or an unexpired tombstone exists for id.
func (s *MemoryStore) Put(ctx context.Context, id domain.InvitationID, rec domain.StoredRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sh := s.shard(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if old, ok := sh.records[id]; ok && !old.Expired(s.opts.now()) {
		return domain.ErrConflict
	}
	rec.InnerCiphertext = append([]byte(nil), rec.InnerCiphertext...)
	sh.records[id] = rec
	return nil
}

// GetAndDelete takes the live record for id, leaving a tombstone behind.
func (s *MemoryStore) GetAndDelete(ctx context.Context, id domain.InvitationID) (domain.StoredRecord, error) {
	if err := ctx.Err(); err != nil {
		return domain.StoredRecord{}, err
	}
	sh := s.shard(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	rec, ok := sh.records[id]
	if !ok || rec.Fetched {
		return domain.StoredRecord{}, domain.ErrNotFound
	}
	if rec.Expired(s.opts.now()) {
		delete(sh.records, id)
		return domain.StoredRecord{}, domain.ErrNotFound
	}
	sh.records[id] = rec.Tombstone()
	return rec, nil
}

// DeleteExpired drops every record and tombstone expired at now. Only
// unfetched records are counted.
func (s *MemoryStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	n := 0
	for i := range s.shards {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		sh := &s.shards[i]
		sh.mu.Lock()
		for id, rec := range sh.records {
			if rec.Expired(now) {
				delete(sh.records, id)
				if !rec.Fetched {
					n++
				}
			}
		}
		sh.mu.Unlock()
	}
	return n, nil
}

// Len reports how many unfetched records are held, expired or not.
func (s *MemoryStore) Len() int {
	n := 0
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		for _, rec := range sh.records {
			if !rec.Fetched {
				n++
			}
		}
		sh.mu.Unlock()
	}
	return n
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }

// Compile-time assertion that MemoryStore implements domain.RecordStore.
var _ domain.RecordStore = (*MemoryStore)(nil)
