package app

import (
	"blindrelay/internal/domain"
	"blindrelay/internal/relay"
	"blindrelay/internal/services/invitee"
	"blindrelay/internal/services/inviter"
	"blindrelay/internal/util/memzero"
)

// App is a client bound to a relay session. It holds only the client id; the
// agents unlock the session key per call and wipe it afterwards.
type App struct {
	Client  domain.ClientID
	Relay   domain.RelayClient
	Inviter *inviter.Service
	Invitee *invitee.Service
}

// Open unlocks the stored session with passphrase and builds the relay client
// and agents for it.
func (w *Wire) Open(passphrase string) (*App, error) {
	session, err := w.Sessions.LoadSession(passphrase)
	if err != nil {
		return nil, err
	}
	memzero.Key((*[32]byte)(&session.Key))
	rc := relay.NewHTTP(w.RelayURL, session.ClientID)
	rc.HTTP = w.HTTP
	return New(session.ClientID, rc, w), nil
}

// New builds an App around an existing relay client.
func New(client domain.ClientID, rc domain.RelayClient, w *Wire) *App {
	return &App{
		Client:  client,
		Relay:   rc,
		Inviter: inviter.New(rc, w.Sessions, w.Logger("inviter"), inviter.WithInvitationStore(w.Invitations)),
		Invitee: invitee.New(rc, w.Sessions, w.Logger("invitee")),
	}
}
