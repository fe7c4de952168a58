package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blindrelay/internal/domain"
	"blindrelay/internal/store"
)

func TestSession_SaveLoad_OK(t *testing.T) {
	home := t.TempDir()
	var sessions domain.SessionStore = store.NewSessionFileStore(home)

	_, err := sessions.LoadSession("pass")
	require.ErrorIs(t, err, store.ErrNoSession)

	want := domain.ClientSession{ClientID: "alice", Key: domain.SessionKey{1, 2, 3}}
	require.NoError(t, sessions.SaveSession("pass", want))

	got, err := sessions.LoadSession("pass")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSession_WrongPassphrase_Fails(t *testing.T) {
	home := t.TempDir()
	sessions := store.NewSessionFileStore(home)
	require.NoError(t, sessions.SaveSession("correct", domain.ClientSession{ClientID: "bob"}))

	_, err := sessions.LoadSession("wrong")
	assert.ErrorIs(t, err, store.ErrWrongPassphrase)
}

func TestInvitations_SaveListDelete(t *testing.T) {
	home := t.TempDir()
	var invs domain.InvitationStore = store.NewInvitationFileStore(home)

	list, err := invs.ListInvitations("pass")
	require.NoError(t, err)
	assert.Empty(t, list)

	a := domain.PendingInvitation{ID: domain.InvitationID{1}, UnlockKey: domain.UnlockKey{9}, CreatedUTC: 100}
	b := domain.PendingInvitation{ID: domain.InvitationID{2}, UnlockKey: domain.UnlockKey{8}, CreatedUTC: 50}
	require.NoError(t, invs.SaveInvitation("pass", a))
	require.NoError(t, invs.SaveInvitation("pass", b))

	list, err = invs.ListInvitations("pass")
	require.NoError(t, err)
	assert.Equal(t, []domain.PendingInvitation{b, a}, list)

	ok, err := invs.DeleteInvitation("pass", a.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = invs.DeleteInvitation("pass", a.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = invs.ListInvitations("wrong")
	assert.ErrorIs(t, err, store.ErrWrongPassphrase)
}

func TestStaticKeyring(t *testing.T) {
	k := store.NewStaticKeyring(map[domain.ClientID]domain.SessionKey{"alice": {5}})

	key, err := k.SessionKey(t.Context(), "alice")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionKey{5}, key)

	_, err = k.SessionKey(t.Context(), "mallory")
	assert.ErrorIs(t, err, domain.ErrUnknownClient)
}
