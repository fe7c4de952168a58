package types

// ClientID names a client registered with the relay.
type ClientID string

// String returns the string form of the client id.
func (id ClientID) String() string { return string(id) }
