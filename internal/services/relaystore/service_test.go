package relaystore_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blindrelay/internal/crypto"
	"blindrelay/internal/domain"
	"blindrelay/internal/log"
	"blindrelay/internal/protocol/wire"
	"blindrelay/internal/services/relaystore"
	"blindrelay/internal/store"
)

var (
	sessionA = domain.SessionKey{0xa1}
	sessionB = domain.SessionKey{0xb2}
)

// sealRecord builds the inviter's outer envelope by hand.
func sealRecord(t *testing.T, key domain.SessionKey, rec domain.Record) domain.Envelope {
	t.Helper()
	n, err := crypto.NewNonce(nil)
	require.NoError(t, err)
	return domain.Envelope{Nonce: n, Ciphertext: crypto.Seal(key, n, wire.MarshalRecord(rec))}
}

func sampleRecord(id byte) domain.Record {
	return domain.Record{
		ID:              domain.InvitationID{id},
		InnerNonce:      domain.Nonce{9, 9, 9},
		InnerCiphertext: bytes.Repeat([]byte{0x5a}, 48),
	}
}

func newService(t *testing.T, opts ...relaystore.Option) (*relaystore.Service, *store.MemoryStore) {
	t.Helper()
	ms := store.NewMemoryStore()
	return relaystore.New(ms, log.Discard().GetLogger("relaystore_test"), opts...), ms
}

func TestReceiveFetch_ResealsUnderFetcherKey(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	rec := sampleRecord(1)

	id, err := svc.Receive(ctx, sessionA, sealRecord(t, sessionA, rec))
	require.NoError(t, err)
	assert.Equal(t, rec.ID, id)

	env, err := svc.Fetch(ctx, id, sessionB)
	require.NoError(t, err)

	_, err = crypto.Open(sessionA, env.Nonce, env.Ciphertext)
	assert.ErrorIs(t, err, domain.ErrAuthenticationFailure)

	pt, err := crypto.Open(sessionB, env.Nonce, env.Ciphertext)
	require.NoError(t, err)
	got, err := wire.ParseReturnRecord(pt)
	require.NoError(t, err)
	assert.Equal(t, rec.InnerNonce, got.InnerNonce)
	assert.Equal(t, rec.InnerCiphertext, got.InnerCiphertext)
}

func TestFetch_SecondFetchNotFound(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	id, err := svc.Receive(ctx, sessionA, sealRecord(t, sessionA, sampleRecord(2)))
	require.NoError(t, err)

	_, err = svc.Fetch(ctx, id, sessionB)
	require.NoError(t, err)
	_, err = svc.Fetch(ctx, id, sessionB)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReceive_DuplicateConflicts(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	rec := sampleRecord(3)
	_, err := svc.Receive(ctx, sessionA, sealRecord(t, sessionA, rec))
	require.NoError(t, err)

	_, err = svc.Receive(ctx, sessionA, sealRecord(t, sessionA, rec))
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestReceive_ReplayAfterFetchConflicts(t *testing.T) {
	stores := map[string]func(t *testing.T) domain.RecordStore{
		"memory": func(t *testing.T) domain.RecordStore {
			return store.NewMemoryStore()
		},
		"bolt": func(t *testing.T) domain.RecordStore {
			s, err := store.OpenBoltStore(filepath.Join(t.TempDir(), "relay.db"))
			require.NoError(t, err)
			return s
		},
		"sqlite": func(t *testing.T) domain.RecordStore {
			s, err := store.OpenSQLiteStore(filepath.Join(t.TempDir(), "relay.sqlite"))
			require.NoError(t, err)
			return s
		},
	}
	for name, open := range stores {
		t.Run(name, func(t *testing.T) {
			rs := open(t)
			t.Cleanup(func() { _ = rs.Close() })
			svc := relaystore.New(rs, log.Discard().GetLogger("relaystore_test"))
			ctx := context.Background()
			env := sealRecord(t, sessionA, sampleRecord(0x30))

			id, err := svc.Receive(ctx, sessionA, env)
			require.NoError(t, err)
			_, err = svc.Fetch(ctx, id, sessionB)
			require.NoError(t, err)

			_, err = svc.Receive(ctx, sessionA, env)
			assert.ErrorIs(t, err, domain.ErrConflict)
			_, err = svc.Fetch(ctx, id, sessionB)
			assert.ErrorIs(t, err, domain.ErrNotFound)
		})
	}
}

func TestSweep_FreesFetchedIDAfterExpiry(t *testing.T) {
	var mu sync.Mutex
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	ms := store.NewMemoryStore(store.WithClock(clock))
	svc := relaystore.New(ms, log.Discard().GetLogger("relaystore_test"),
		relaystore.WithTTL(time.Hour), relaystore.WithClock(clock))
	ctx := context.Background()
	env := sealRecord(t, sessionA, sampleRecord(0x31))

	id, err := svc.Receive(ctx, sessionA, env)
	require.NoError(t, err)
	_, err = svc.Fetch(ctx, id, sessionB)
	require.NoError(t, err)
	assert.Zero(t, ms.Len())

	mu.Lock()
	now = now.Add(59 * time.Minute)
	mu.Unlock()
	_, err = svc.Receive(ctx, sessionA, env)
	assert.ErrorIs(t, err, domain.ErrConflict)

	mu.Lock()
	now = now.Add(time.Minute)
	mu.Unlock()
	n, err := svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = svc.Receive(ctx, sessionA, env)
	assert.NoError(t, err)
}

func TestReceive_WrongSessionKeyStoresNothing(t *testing.T) {
	svc, ms := newService(t)
	_, err := svc.Receive(context.Background(), sessionB, sealRecord(t, sessionA, sampleRecord(4)))
	assert.ErrorIs(t, err, domain.ErrRelayAuthFailure)
	assert.ErrorIs(t, err, domain.ErrAuthenticationFailure)
	assert.Zero(t, ms.Len())
}

func TestReceive_ShortRecordIsMalformed(t *testing.T) {
	svc, ms := newService(t)
	n := domain.Nonce{1}
	env := domain.Envelope{Nonce: n, Ciphertext: crypto.Seal(sessionA, n, make([]byte, wire.MinRecordSize-1))}

	_, err := svc.Receive(context.Background(), sessionA, env)
	assert.ErrorIs(t, err, domain.ErrMalformedRecord)
	assert.Zero(t, ms.Len())
}

func TestFetch_ConcurrentFetchersOneWinner(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	id, err := svc.Receive(ctx, sessionA, sealRecord(t, sessionA, sampleRecord(5)))
	require.NoError(t, err)

	const n = 32
	var (
		wg       sync.WaitGroup
		wins     atomic.Int32
		notFound atomic.Int32
	)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Fetch(ctx, id, sessionB)
			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, domain.ErrNotFound):
				notFound.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, wins.Load())
	assert.EqualValues(t, n-1, notFound.Load())
}

func TestSweep_DropsExpired(t *testing.T) {
	var mu sync.Mutex
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	ms := store.NewMemoryStore(store.WithClock(clock))
	svc := relaystore.New(ms, log.Discard().GetLogger("relaystore_test"),
		relaystore.WithTTL(time.Hour), relaystore.WithClock(clock))
	ctx := context.Background()

	id, err := svc.Receive(ctx, sessionA, sealRecord(t, sessionA, sampleRecord(6)))
	require.NoError(t, err)

	n, err := svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	mu.Lock()
	now = now.Add(time.Hour)
	mu.Unlock()

	n, err = svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = svc.Fetch(ctx, id, sessionB)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSweep_ZeroTTLNeverExpires(t *testing.T) {
	svc, ms := newService(t, relaystore.WithTTL(0))
	ctx := context.Background()
	_, err := svc.Receive(ctx, sessionA, sealRecord(t, sessionA, sampleRecord(7)))
	require.NoError(t, err)

	n, err := svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 1, ms.Len())
}

func TestRun_StopsOnCancel(t *testing.T) {
	svc, _ := newService(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx, time.Millisecond) }()

	time.Sleep(10 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestFetch_FailingRandKeepsRecord(t *testing.T) {
	ms := store.NewMemoryStore()
	lg := log.Discard().GetLogger("relaystore_test")
	ctx := context.Background()

	id, err := relaystore.New(ms, lg).Receive(ctx, sessionA, sealRecord(t, sessionA, sampleRecord(8)))
	require.NoError(t, err)

	broken := relaystore.New(ms, lg, relaystore.WithRand(bytes.NewReader(nil)))
	_, err = broken.Fetch(ctx, id, sessionB)
	require.Error(t, err)
	assert.Equal(t, 1, ms.Len())
}

// FuzzReceive feeds arbitrary outer envelopes to the relay. Nothing that fails
// to authenticate may be stored.
func FuzzReceive(f *testing.F) {
	f.Add([]byte{}, []byte{})
	f.Add(make([]byte, domain.NonceSize), make([]byte, 100))
	f.Fuzz(func(t *testing.T, nonce, ct []byte) {
		svc, ms := newService(t)
		var n domain.Nonce
		copy(n[:], nonce)
		_, err := svc.Receive(context.Background(), sessionA, domain.Envelope{Nonce: n, Ciphertext: ct})
		require.ErrorIs(t, err, domain.ErrRelayAuthFailure)
		require.Zero(t, ms.Len())
	})
}
