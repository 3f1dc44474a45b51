// Package errors contains the error types reported by key generation,
// certification and key-ring editing operations.
package errors

import (
	"fmt"
	"time"
)

// PreconditionError indicates invalid caller input, detected before any
// cryptographic work begins.
type PreconditionError string

func (e PreconditionError) Error() string {
	return "pgpainless: precondition failed: " + string(e)
}

// NotFoundError indicates that a referenced user id, subkey or fingerprint
// does not exist on the target ring or certificate.
type NotFoundError string

func (e NotFoundError) Error() string {
	return "pgpainless: not found: " + string(e)
}

// PassphraseError indicates that a passphrase failed to unlock secret key
// material.
type PassphraseError string

func (e PassphraseError) Error() string {
	return "pgpainless: passphrase: " + string(e)
}

// RevokedKeyError indicates that the key needed for an operation is not
// validly bound due to revocation.
type RevokedKeyError struct {
	KeyID uint64
}

func (e RevokedKeyError) Error() string {
	return fmt.Sprintf("pgpainless: key %016X is revoked", e.KeyID)
}

// ExpiredKeyError indicates that the key's required capability usage has
// expired as of evaluation time.
type ExpiredKeyError struct {
	KeyID   uint64
	Expired time.Time
}

func (e ExpiredKeyError) Error() string {
	if e.Expired.IsZero() {
		return fmt.Sprintf("pgpainless: key %016X is expired", e.KeyID)
	}
	return fmt.Sprintf("pgpainless: key %016X expired at %s", e.KeyID, e.Expired.UTC().Format(time.RFC3339))
}

// UnacceptableCertificationKeyError indicates that a key lacks the certify
// capability or uses an algorithm the policy does not accept for
// certification.
type UnacceptableCertificationKeyError struct {
	KeyID  uint64
	Reason string
}

func (e UnacceptableCertificationKeyError) Error() string {
	return fmt.Sprintf("pgpainless: key %016X is unacceptable for certification: %s", e.KeyID, e.Reason)
}

// MissingSecretKeyError indicates that the public key resolved for an
// operation has no corresponding secret key material to sign with.
type MissingSecretKeyError struct {
	KeyID uint64
}

func (e MissingSecretKeyError) Error() string {
	return fmt.Sprintf("pgpainless: no secret key material for key %016X", e.KeyID)
}
