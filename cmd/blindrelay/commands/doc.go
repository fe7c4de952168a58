// Package commands defines the blindrelay client CLI.
//
// Commands
//
//   - session set       Store the client id and session key issued by the relay operator
//   - session generate  Create a fresh session key and print its hex form for the operator
//   - invite            Seal a secret for an invitee and submit it to the relay
//   - accept            Fetch and unlock an invitation with its unlock key
//   - invitations       List invitations sent from this client
//
// # Implementation
//
// The root command builds the local stores before any subcommand runs.
// Commands that talk to the relay unlock the session with the passphrase and
// use the resulting app context.
package commands
