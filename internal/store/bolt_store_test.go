package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blindrelay/internal/domain"
	"blindrelay/internal/store"
)

func TestBoltStore_SurvivesReopen(t *testing.T) {
	assert := assert.New(t)
	path := filepath.Join(t.TempDir(), "relay.db")
	ctx := context.Background()
	id := domain.InvitationID{0x42}
	rec := domain.StoredRecord{
		InnerNonce:      domain.Nonce{7},
		InnerCiphertext: []byte("0123456789abcdef-ct"),
		CreatedAt:       time.Now().UTC(),
		ExpiresAt:       time.Now().Add(time.Hour).UTC(),
	}

	s, err := store.OpenBoltStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, id, rec))
	require.NoError(t, s.Close())

	s, err = store.OpenBoltStore(path)
	require.NoError(t, err)
	defer s.Close()

	// still pending after a restart
	assert.ErrorIs(s.Put(ctx, id, rec), domain.ErrConflict)

	got, err := s.GetAndDelete(ctx, id)
	require.NoError(t, err)
	assert.Equal(rec.InnerNonce, got.InnerNonce)
	assert.Equal(rec.InnerCiphertext, got.InnerCiphertext)
	assert.True(rec.CreatedAt.Equal(got.CreatedAt))
}
