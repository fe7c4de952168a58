package types

// ClientSession is the client's half of the pre-established relay session.
type ClientSession struct {
	ClientID ClientID   `json:"client_id"`
	Key      SessionKey `json:"key"`
}

// PendingInvitation is an invitation the inviter created and has not yet
// seen consumed. The unlock key stays on the inviter's machine.
type PendingInvitation struct {
	ID         InvitationID `json:"id"`
	UnlockKey  UnlockKey    `json:"unlock_key"`
	CreatedUTC int64        `json:"created_utc"`
}
