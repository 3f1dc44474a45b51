// Package protect handles passphrases, secret-key protectors and the
// symmetric encryption settings applied to secret key material.
package protect

import (
	pgperrors "github.com/kkpan11/pgpainless/pkg/pgpainless/errors"
)

// Passphrase owns a passphrase buffer for the duration of an operation.
// Clear wipes the buffer; a cleared passphrase reports an error on use
// instead of silently yielding empty bytes. An empty passphrase means
// "unprotected" and stays usable after Clear.
type Passphrase struct {
	b       []byte
	cleared bool
}

// NewPassphrase copies b into a fresh Passphrase. The caller keeps ownership
// of b.
func NewPassphrase(b []byte) *Passphrase {
	buf := make([]byte, len(b))
	copy(buf, b)
	return &Passphrase{b: buf}
}

// PassphraseFromString wraps s. The string itself cannot be wiped; callers
// handling sensitive input should prefer NewPassphrase over byte buffers.
func PassphraseFromString(s string) *Passphrase {
	return NewPassphrase([]byte(s))
}

// EmptyPassphrase returns the "no protection" passphrase.
func EmptyPassphrase() *Passphrase {
	return &Passphrase{}
}

// Bytes returns the passphrase material.
func (p *Passphrase) Bytes() ([]byte, error) {
	if p == nil || len(p.b) == 0 {
		if p != nil && p.cleared {
			return nil, pgperrors.PreconditionError("passphrase already cleared")
		}
		return nil, nil
	}
	if p.cleared {
		return nil, pgperrors.PreconditionError("passphrase already cleared")
	}
	return p.b, nil
}

// Empty reports whether the passphrase carries no material. A cleared
// passphrase is not empty: it had material and must not be reused.
func (p *Passphrase) Empty() bool {
	return p == nil || (len(p.b) == 0 && !p.cleared)
}

// Cleared reports whether Clear has wiped this passphrase.
func (p *Passphrase) Cleared() bool {
	return p != nil && p.cleared
}

// Clear wipes the passphrase buffer. Safe to call multiple times and on nil.
func (p *Passphrase) Clear() {
	if p == nil {
		return
	}
	if len(p.b) > 0 {
		for i := range p.b {
			p.b[i] = 0
		}
		p.b = nil
		p.cleared = true
	}
}
