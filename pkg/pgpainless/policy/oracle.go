package policy

import (
	"time"

	"github.com/ProtonMail/go-crypto/openpgp/packet"

	"github.com/kkpan11/pgpainless/pkg/pgpainless/cert"
	"github.com/kkpan11/pgpainless/pkg/pgpainless/key"
	"github.com/kkpan11/pgpainless/pkg/pgpainless/sign"
)

// Usage names the capability a caller wants to exercise with a key.
type Usage int

const (
	UsageCertify Usage = iota
	UsageSign
	UsageEncrypt
	UsageAuthenticate
)

// HardRevocation reports whether a revocation signature invalidates the key
// unconditionally: a compromised-key reason, or no reason subpacket at all.
func HardRevocation(rev *packet.Signature) bool {
	if rev.RevocationReason == nil {
		return true
	}
	switch *rev.RevocationReason {
	case packet.NoReason, packet.KeyCompromised:
		return true
	}
	return false
}

// Revoked reports whether the key identified by keyID is revoked as of now:
// any hard revocation counts, and a soft revocation counts unless a binding
// created after it supersedes the revocation.
func Revoked(c *cert.Certificate, keyID uint64, now time.Time) bool {
	bk, ok := c.Key(keyID)
	if !ok {
		return false
	}
	return revokedAt(bk, now)
}

func revokedAt(bk cert.BoundKey, now time.Time) bool {
	for _, rev := range bk.Revocations {
		if HardRevocation(rev) {
			return true
		}
		if rev.SigExpired(now) {
			continue
		}
		// A binding newer than the soft revocation re-validates the key.
		if bk.Binding != nil && bk.Binding.CreationTime.After(rev.CreationTime) {
			continue
		}
		return true
	}
	return false
}

// ValidlyBound reports whether the key's most recent binding signature (the
// primary's self-certification, a subkey's binding) is not superseded by a
// revocation and itself unexpired as of now.
func ValidlyBound(c *cert.Certificate, keyID uint64, now time.Time) bool {
	bk, ok := c.Key(keyID)
	if !ok {
		return false
	}
	if bk.Binding == nil {
		return false
	}
	if revokedAt(bk, now) {
		return false
	}
	return !bk.Binding.SigExpired(now)
}

// UsableForCertification reports whether the key carries the certify flag,
// is validly bound, is on the certification allow-list, and has not expired
// for certify usage as of now.
func (p Policy) UsableForCertification(c *cert.Certificate, keyID uint64, now time.Time) bool {
	bk, ok := c.Key(keyID)
	if !ok {
		return false
	}
	if bk.Binding == nil || !bk.Binding.FlagsValid || !bk.Binding.FlagCertify {
		return false
	}
	if !ValidlyBound(c, keyID, now) {
		return false
	}
	if !p.AllowsCertification(bk.PublicKey) {
		return false
	}
	if exp, ok := ExpirationFor(c, keyID, UsageCertify); ok && !now.Before(exp) {
		return false
	}
	return true
}

// ExpirationFor returns the effective expiration date for the given
// capability usage. The binding signature's own lifetime overrides the key
// lifetime when both are present; a key that does not carry the usage flag
// yields no expiration.
func ExpirationFor(c *cert.Certificate, keyID uint64, usage Usage) (time.Time, bool) {
	bk, ok := c.Key(keyID)
	if !ok || bk.Binding == nil {
		return time.Time{}, false
	}
	if !hasUsage(bk.Binding, usage) {
		return time.Time{}, false
	}
	if bk.Binding.SigLifetimeSecs != nil && *bk.Binding.SigLifetimeSecs != 0 {
		return bk.Binding.CreationTime.Add(time.Duration(*bk.Binding.SigLifetimeSecs) * time.Second), true
	}
	if bk.Binding.KeyLifetimeSecs != nil && *bk.Binding.KeyLifetimeSecs != 0 {
		return bk.PublicKey.CreationTime.Add(time.Duration(*bk.Binding.KeyLifetimeSecs) * time.Second), true
	}
	return time.Time{}, false
}

func hasUsage(binding *packet.Signature, usage Usage) bool {
	flags := sign.SignatureFlags(binding)
	switch usage {
	case UsageCertify:
		return flags.Has(key.FlagCertify)
	case UsageSign:
		return flags.Has(key.FlagSign)
	case UsageEncrypt:
		return flags.HasAny(key.FlagEncrypt)
	case UsageAuthenticate:
		return flags.Has(key.FlagAuthenticate)
	}
	return false
}
