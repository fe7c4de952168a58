package wire

import (
	"blindrelay/internal/domain"
)

const (
	// MinEnvelopeSize is a nonce plus an empty plaintext's tag.
	MinEnvelopeSize = domain.NonceSize + domain.TagSize
	// RecordHeaderSize is the fixed prefix of a Record.
	RecordHeaderSize = domain.InvitationIDSize + domain.NonceSize
	// MinRecordSize is a Record carrying an empty inner plaintext.
	MinRecordSize = RecordHeaderSize + domain.TagSize
	// MinReturnRecordSize is a ReturnRecord carrying an empty inner plaintext.
	MinReturnRecordSize = domain.NonceSize + domain.TagSize
)

// MarshalEnvelope returns nonce ‖ ciphertext.
func MarshalEnvelope(env domain.Envelope) []byte {
	out := make([]byte, 0, domain.NonceSize+len(env.Ciphertext))
	out = append(out, env.Nonce[:]...)
	return append(out, env.Ciphertext...)
}

// ParseEnvelope splits wire bytes into nonce and ciphertext.
func ParseEnvelope(b []byte) (domain.Envelope, error) {
	if len(b) < MinEnvelopeSize {
		return domain.Envelope{}, domain.ErrMalformedEnvelope
	}
	var env domain.Envelope
	copy(env.Nonce[:], b[:domain.NonceSize])
	env.Ciphertext = append([]byte(nil), b[domain.NonceSize:]...)
	return env, nil
}

// MarshalRecord returns id ‖ inner nonce ‖ inner ciphertext.
func MarshalRecord(rec domain.Record) []byte {
	out := make([]byte, 0, RecordHeaderSize+len(rec.InnerCiphertext))
	out = append(out, rec.ID[:]...)
	out = append(out, rec.InnerNonce[:]...)
	return append(out, rec.InnerCiphertext...)
}

// ParseRecord is the inverse of MarshalRecord.
func ParseRecord(b []byte) (domain.Record, error) {
	if len(b) < MinRecordSize {
		return domain.Record{}, domain.ErrMalformedRecord
	}
	var rec domain.Record
	copy(rec.ID[:], b[:domain.InvitationIDSize])
	copy(rec.InnerNonce[:], b[domain.InvitationIDSize:RecordHeaderSize])
	rec.InnerCiphertext = append([]byte(nil), b[RecordHeaderSize:]...)
	return rec, nil
}

// MarshalReturnRecord returns inner nonce ‖ inner ciphertext.
func MarshalReturnRecord(rec domain.ReturnRecord) []byte {
	out := make([]byte, 0, domain.NonceSize+len(rec.InnerCiphertext))
	out = append(out, rec.InnerNonce[:]...)
	return append(out, rec.InnerCiphertext...)
}

// ParseReturnRecord is the inverse of MarshalReturnRecord.
func ParseReturnRecord(b []byte) (domain.ReturnRecord, error) {
	if len(b) < MinReturnRecordSize {
		return domain.ReturnRecord{}, domain.ErrMalformedRecord
	}
	var rec domain.ReturnRecord
	copy(rec.InnerNonce[:], b[:domain.NonceSize])
	rec.InnerCiphertext = append([]byte(nil), b[domain.NonceSize:]...)
	return rec, nil
}
