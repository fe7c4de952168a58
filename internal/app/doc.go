// Package app wires application dependencies for the CLI.
//
// NewWire builds the passphrase-sealed local stores and the logger from
// Config. Wire.Open then unlocks the relay session and returns an App whose
// inviter and invitee agents talk to the relay over HTTP as that client.
package app
