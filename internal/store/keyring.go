package store

import (
	"context"

	"blindrelay/internal/domain"
)

// StaticKeyring serves session keys provisioned in the relay configuration.
type StaticKeyring struct {
	keys map[domain.ClientID]domain.SessionKey
}

// NewStaticKeyring copies keys into a new keyring.
func NewStaticKeyring(keys map[domain.ClientID]domain.SessionKey) *StaticKeyring {
	k := &StaticKeyring{keys: make(map[domain.ClientID]domain.SessionKey, len(keys))}
	for id, key := range keys {
		k.keys[id] = key
	}
	return k
}

// SessionKey returns the key for client or domain.ErrUnknownClient.
func (k *StaticKeyring) SessionKey(_ context.Context, client domain.ClientID) (domain.SessionKey, error) {
	key, ok := k.keys[client]
	if !ok {
		return domain.SessionKey{}, domain.ErrUnknownClient
	}
	return key, nil
}

// Compile-time assertion that StaticKeyring implements domain.SessionKeyring.
var _ domain.SessionKeyring = (*StaticKeyring)(nil)
