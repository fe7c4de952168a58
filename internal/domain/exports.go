package domain

import (
	interfaces "blindrelay/internal/domain/interfaces"
	types "blindrelay/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	ClientID          = types.ClientID
	UnlockKey         = types.UnlockKey
	SessionKey        = types.SessionKey
	InvitationID      = types.InvitationID
	Nonce             = types.Nonce
	Envelope          = types.Envelope
	Record            = types.Record
	ReturnRecord      = types.ReturnRecord
	StoredRecord      = types.StoredRecord
	ClientSession     = types.ClientSession
	PendingInvitation = types.PendingInvitation
)

// Sizes of the fixed-width protocol fields.
const (
	KeySize          = types.KeySize
	NonceSize        = types.NonceSize
	TagSize          = types.TagSize
	InvitationIDSize = types.InvitationIDSize
)

// Parsers for the hex forms of keys and ids.
var (
	ParseUnlockKey    = types.ParseUnlockKey
	ParseSessionKey   = types.ParseSessionKey
	ParseInvitationID = types.ParseInvitationID
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	RecordStore     = interfaces.RecordStore
	SessionKeyring  = interfaces.SessionKeyring
	SessionStore    = interfaces.SessionStore
	InvitationStore = interfaces.InvitationStore
	RelayClient     = interfaces.RelayClient
	RelayService    = interfaces.RelayService
	InviterService  = interfaces.InviterService
	InviteeService  = interfaces.InviteeService
)
