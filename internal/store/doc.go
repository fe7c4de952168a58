// Package store provides persistence for the relay and its clients.
//
// Relay side, implementations of domain.RecordStore:
//   - MemoryStore: sharded in-process map, lost on exit
//   - BoltStore: bbolt file, CBOR encoded records
//   - SQLiteStore: SQLite database via the pure-Go modernc driver
//
// Every backend makes Put (check-then-insert) and GetAndDelete
// (lookup-then-tombstone) atomic for a given id, and treats an expired record as
// absent. A fetched id keeps its tombstone until the record's original expiry,
// so it cannot be stored again before then.
//
// StaticKeyring serves the per-client session keys provisioned in the relay
// configuration.
//
// Client side, files under the user's home directory sealed with a
// passphrase-derived key (scrypt + ChaCha20-Poly1305):
//   - SessionFileStore: the client's relay session
//   - InvitationFileStore: pending invitations and their unlock keys
package store
