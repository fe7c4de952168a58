package relay_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blindrelay/internal/crypto"
	"blindrelay/internal/domain"
	"blindrelay/internal/instrument"
	"blindrelay/internal/log"
	"blindrelay/internal/relay"
	"blindrelay/internal/services/invitee"
	"blindrelay/internal/services/inviter"
	"blindrelay/internal/services/relaystore"
	"blindrelay/internal/store"
)

var (
	aliceKey = domain.SessionKey{0xaa}
	bobKey   = domain.SessionKey{0xbb}
)

func newServer(t *testing.T, opts ...relay.HandlerOption) *httptest.Server {
	t.Helper()
	lg := log.Discard().GetLogger("relay_test")
	svc := relaystore.New(store.NewMemoryStore(), lg)
	keys := store.NewStaticKeyring(map[domain.ClientID]domain.SessionKey{
		"alice": aliceKey,
		"bob":   bobKey,
	})
	srv := httptest.NewServer(relay.NewHandler(svc, keys, lg, opts...))
	t.Cleanup(srv.Close)
	return srv
}

func sealedEnvelope(t *testing.T, unlock domain.UnlockKey, session domain.SessionKey) domain.Envelope {
	t.Helper()
	env, err := inviter.New(nil, nil, log.Discard().GetLogger("t")).Submit(unlock, []byte("secret"), session)
	require.NoError(t, err)
	return env
}

func TestHTTP_SubmitFetchOnce(t *testing.T) {
	srv := newServer(t)
	ctx := context.Background()
	unlock := domain.UnlockKey{1}

	alice := relay.NewHTTP(srv.URL, "alice")
	require.NoError(t, alice.SubmitInvitation(ctx, sealedEnvelope(t, unlock, aliceKey)))

	bob := relay.NewHTTP(srv.URL, "bob")
	env, err := bob.FetchInvitation(ctx, crypto.DeriveInvitationID(unlock))
	require.NoError(t, err)

	lg := log.Discard().GetLogger("t")
	rec, err := invitee.New(nil, nil, lg).Retrieve(bobKey, env)
	require.NoError(t, err)
	got, err := invitee.New(nil, nil, lg).Unlock(unlock, rec.InnerNonce, rec.InnerCiphertext)
	require.NoError(t, err)
	assert.Equal(t, []byte("secret"), got)

	_, err = bob.FetchInvitation(ctx, crypto.DeriveInvitationID(unlock))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHTTP_DuplicateSubmitConflicts(t *testing.T) {
	srv := newServer(t)
	ctx := context.Background()
	alice := relay.NewHTTP(srv.URL, "alice")

	require.NoError(t, alice.SubmitInvitation(ctx, sealedEnvelope(t, domain.UnlockKey{2}, aliceKey)))
	err := alice.SubmitInvitation(ctx, sealedEnvelope(t, domain.UnlockKey{2}, aliceKey))
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestHTTP_WrongClientKeyIsAuthFailure(t *testing.T) {
	srv := newServer(t)
	// Sealed for alice, submitted as bob.
	bob := relay.NewHTTP(srv.URL, "bob")
	err := bob.SubmitInvitation(context.Background(), sealedEnvelope(t, domain.UnlockKey{3}, aliceKey))
	assert.ErrorIs(t, err, domain.ErrRelayAuthFailure)
}

func TestHTTP_UnknownClient(t *testing.T) {
	srv := newServer(t)
	mallory := relay.NewHTTP(srv.URL, "mallory")
	err := mallory.SubmitInvitation(context.Background(), sealedEnvelope(t, domain.UnlockKey{4}, aliceKey))
	assert.ErrorIs(t, err, domain.ErrUnknownClient)

	_, err = mallory.FetchInvitation(context.Background(), domain.InvitationID{4})
	assert.ErrorIs(t, err, domain.ErrUnknownClient)
}

func TestHandler_RawRequests(t *testing.T) {
	srv := newServer(t)

	cases := []struct {
		name   string
		method string
		path   string
		client string
		body   []byte
		status int
	}{
		{"missing client", http.MethodPost, "/v1/invitations", "", make([]byte, 100), http.StatusUnauthorized},
		{"short envelope", http.MethodPost, "/v1/invitations", "alice", make([]byte, 39), http.StatusBadRequest},
		{"oversized body", http.MethodPost, "/v1/invitations", "alice", make([]byte, relay.MaxBodySize+1), http.StatusRequestEntityTooLarge},
		{"bad id", http.MethodGet, "/v1/invitations/xyz", "bob", nil, http.StatusNotFound},
		{"unknown id", http.MethodGet, "/v1/invitations/" + strings.Repeat("ab", 32), "bob", nil, http.StatusNotFound},
		{"health", http.MethodGet, "/healthz", "", nil, http.StatusOK},
		{"metrics disabled", http.MethodGet, "/metrics", "", nil, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req, err := http.NewRequest(tc.method, srv.URL+tc.path, bytes.NewReader(tc.body))
			require.NoError(t, err)
			if tc.client != "" {
				req.Header.Set(relay.HeaderClientID, tc.client)
			}
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestHandler_RequestID(t *testing.T) {
	srv := newServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Len(t, resp.Header.Get(relay.HeaderRequestID), 36)
}

func TestHandler_Metrics(t *testing.T) {
	instrument.Init()
	srv := newServer(t, relay.WithMetrics())
	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
