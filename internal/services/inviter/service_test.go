package inviter_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blindrelay/internal/crypto"
	"blindrelay/internal/domain"
	"blindrelay/internal/log"
	"blindrelay/internal/protocol/wire"
	"blindrelay/internal/services/inviter"
	"blindrelay/internal/store"
)

const pass = "correct horse"

// recordingRelay keeps submitted envelopes.
type recordingRelay struct {
	submitted []domain.Envelope
	err       error
}

func (r *recordingRelay) SubmitInvitation(_ context.Context, env domain.Envelope) error {
	if r.err != nil {
		return r.err
	}
	r.submitted = append(r.submitted, env)
	return nil
}

func (r *recordingRelay) FetchInvitation(context.Context, domain.InvitationID) (domain.Envelope, error) {
	return domain.Envelope{}, domain.ErrNotFound
}

func newInviter(t *testing.T, relay domain.RelayClient, opts ...inviter.Option) (*inviter.Service, domain.SessionKey) {
	t.Helper()
	dir := t.TempDir()
	sessions := store.NewSessionFileStore(dir)
	key := domain.SessionKey{0x42}
	require.NoError(t, sessions.SaveSession(pass, domain.ClientSession{ClientID: "alice", Key: key}))
	opts = append(opts, inviter.WithInvitationStore(store.NewInvitationFileStore(dir)))
	return inviter.New(relay, sessions, log.Discard().GetLogger("inviter_test"), opts...), key
}

func TestCreateInvitation_IDMatchesKey(t *testing.T) {
	svc, _ := newInviter(t, &recordingRelay{})
	k1, id1, err := svc.CreateInvitation()
	require.NoError(t, err)
	k2, id2, err := svc.CreateInvitation()
	require.NoError(t, err)

	assert.Equal(t, crypto.DeriveInvitationID(k1), id1)
	assert.NotEqual(t, k1, k2)
	assert.NotEqual(t, id1, id2)
}

func TestSubmit_LayersOpenWithTheRightKeys(t *testing.T) {
	svc, _ := newInviter(t, &recordingRelay{})
	secret := []byte("the invitation secret")
	unlock := domain.UnlockKey{7}
	session := domain.SessionKey{8}

	env, err := svc.Submit(unlock, secret, session)
	require.NoError(t, err)

	pt, err := crypto.Open(session, env.Nonce, env.Ciphertext)
	require.NoError(t, err)
	rec, err := wire.ParseRecord(pt)
	require.NoError(t, err)
	assert.Equal(t, crypto.DeriveInvitationID(unlock), rec.ID)

	got, err := crypto.Open(unlock, rec.InnerNonce, rec.InnerCiphertext)
	require.NoError(t, err)
	assert.Equal(t, secret, got)

	_, err = crypto.Open(domain.SessionKey(unlock), env.Nonce, env.Ciphertext)
	assert.ErrorIs(t, err, domain.ErrAuthenticationFailure)
}

func TestSubmit_FreshNonces(t *testing.T) {
	svc, _ := newInviter(t, &recordingRelay{})
	a, err := svc.Submit(domain.UnlockKey{1}, []byte("s"), domain.SessionKey{2})
	require.NoError(t, err)
	b, err := svc.Submit(domain.UnlockKey{1}, []byte("s"), domain.SessionKey{2})
	require.NoError(t, err)
	assert.NotEqual(t, a.Nonce, b.Nonce)
}

func TestSubmit_FailingRand(t *testing.T) {
	svc, _ := newInviter(t, &recordingRelay{}, inviter.WithRand(bytes.NewReader(make([]byte, 30))))
	_, err := svc.Submit(domain.UnlockKey{1}, []byte("s"), domain.SessionKey{2})
	assert.Error(t, err)
}

func TestSend_SubmitsAndRecords(t *testing.T) {
	relay := &recordingRelay{}
	created := time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)
	svc, session := newInviter(t, relay, inviter.WithClock(func() time.Time { return created }))

	k, id, err := svc.Send(context.Background(), pass, []byte("hello"))
	require.NoError(t, err)
	require.Len(t, relay.submitted, 1)

	pt, err := crypto.Open(session, relay.submitted[0].Nonce, relay.submitted[0].Ciphertext)
	require.NoError(t, err)
	rec, err := wire.ParseRecord(pt)
	require.NoError(t, err)
	assert.Equal(t, id, rec.ID)

	pending, err := svc.Pending(pass)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, id, pending[0].ID)
	assert.Equal(t, k, pending[0].UnlockKey)
	assert.Equal(t, created.Unix(), pending[0].CreatedUTC)

	ok, err := svc.Forget(pass, id)
	require.NoError(t, err)
	assert.True(t, ok)
	pending, err = svc.Pending(pass)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestSend_RelayErrorSurfaces(t *testing.T) {
	relay := &recordingRelay{err: domain.ErrConflict}
	svc, _ := newInviter(t, relay)

	_, _, err := svc.Send(context.Background(), pass, []byte("hello"))
	assert.True(t, errors.Is(err, domain.ErrConflict))

	pending, err := svc.Pending(pass)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestSend_WrongPassphrase(t *testing.T) {
	relay := &recordingRelay{}
	svc, _ := newInviter(t, relay)
	_, _, err := svc.Send(context.Background(), "nope", []byte("hello"))
	assert.ErrorIs(t, err, store.ErrWrongPassphrase)
	assert.Empty(t, relay.submitted)
}
