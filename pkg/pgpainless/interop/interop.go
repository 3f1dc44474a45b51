// Package interop bridges the packet-level ring model to the high-level
// gopenpgp API for summaries, capability probes and detached-signature
// verification.
package interop

import (
	"bytes"
	"fmt"
	"time"

	"github.com/ProtonMail/go-crypto/openpgp/packet"
	"github.com/ProtonMail/gopenpgp/v3/crypto"

	"github.com/kkpan11/pgpainless/pkg/pgpainless/cert"
	"github.com/kkpan11/pgpainless/pkg/pgpainless/key"
	"github.com/kkpan11/pgpainless/pkg/pgpainless/policy"
	"github.com/kkpan11/pgpainless/pkg/pgpainless/sign"
)

// Key converts a certificate into a gopenpgp key.
func Key(c *cert.Certificate) (*crypto.Key, error) {
	var buf bytes.Buffer
	if err := c.Serialize(&buf); err != nil {
		return nil, fmt.Errorf("could not serialize certificate: %w", err)
	}
	k, err := crypto.NewKey(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("could not convert certificate: %w", err)
	}
	return k, nil
}

// KeyFromSecret converts secret key material into a gopenpgp key.
func KeyFromSecret(s *cert.SecretKeyMaterial) (*crypto.Key, error) {
	var buf bytes.Buffer
	if err := s.Serialize(&buf); err != nil {
		return nil, fmt.Errorf("could not serialize secret key material: %w", err)
	}
	k, err := crypto.NewKey(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("could not convert secret key material: %w", err)
	}
	return k, nil
}

// SubkeySummary describes one subkey of a certificate.
type SubkeySummary struct {
	Fingerprint   string     `json:"fingerprint"`
	KeyID         string     `json:"key_id"`
	Algorithm     string     `json:"algorithm"`
	AlgorithmBits int        `json:"algorithm_bits"`
	CreatedAt     time.Time  `json:"created_at"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	Usage         string     `json:"usage"`
	Revoked       bool       `json:"revoked"`
}

// KeySummary describes a certificate for inspection output.
type KeySummary struct {
	Fingerprint   string          `json:"fingerprint"`
	KeyID         string          `json:"key_id"`
	Algorithm     string          `json:"algorithm"`
	AlgorithmBits int             `json:"algorithm_bits"`
	CreatedAt     time.Time       `json:"created_at"`
	ExpiresAt     *time.Time      `json:"expires_at,omitempty"`
	UserIDs       []string        `json:"user_ids"`
	PrimaryUserID string          `json:"primary_user_id,omitempty"`
	Revoked       bool            `json:"revoked"`
	CanCertify    bool            `json:"can_certify"`
	CanSign       bool            `json:"can_sign"`
	CanEncrypt    bool            `json:"can_encrypt"`
	Subkeys       []SubkeySummary `json:"subkeys"`
}

// Summarize reports the state of a certificate as of now, judged under p.
func Summarize(c *cert.Certificate, p policy.Policy, now time.Time) *KeySummary {
	pk := c.PrimaryKey()
	summary := &KeySummary{
		Fingerprint:   c.Fingerprint(),
		KeyID:         fmt.Sprintf("%016X", c.KeyID()),
		Algorithm:     key.AlgorithmName(pk),
		AlgorithmBits: bitLength(pk),
		CreatedAt:     pk.CreationTime,
		UserIDs:       c.UserIDs(),
		Revoked:       policy.Revoked(c, c.KeyID(), now),
		CanCertify:    p.UsableForCertification(c, c.KeyID(), now),
	}
	if ident := c.PrimaryIdentity(); ident != nil {
		summary.PrimaryUserID = ident.Name
	}
	if selfSig := c.PrimarySelfSignature(); selfSig != nil {
		if selfSig.KeyLifetimeSecs != nil && *selfSig.KeyLifetimeSecs != 0 {
			exp := pk.CreationTime.Add(time.Duration(*selfSig.KeyLifetimeSecs) * time.Second)
			summary.ExpiresAt = &exp
		}
	}
	summary.CanSign = canUse(c, policy.UsageSign, now)
	summary.CanEncrypt = canEncrypt(c, now)
	for _, bk := range c.Keys() {
		if bk.Primary {
			continue
		}
		summary.Subkeys = append(summary.Subkeys, summarizeSubkey(c, bk, now))
	}
	return summary
}

func summarizeSubkey(c *cert.Certificate, bk cert.BoundKey, now time.Time) SubkeySummary {
	sub := SubkeySummary{
		Fingerprint:   cert.FormatFingerprint(bk.PublicKey.Fingerprint),
		KeyID:         fmt.Sprintf("%016X", bk.PublicKey.KeyId),
		Algorithm:     key.AlgorithmName(bk.PublicKey),
		AlgorithmBits: bitLength(bk.PublicKey),
		CreatedAt:     bk.PublicKey.CreationTime,
		Revoked:       policy.Revoked(c, bk.PublicKey.KeyId, now),
	}
	if bk.Binding != nil {
		sub.Usage = sign.SignatureFlags(bk.Binding).String()
		if bk.Binding.KeyLifetimeSecs != nil && *bk.Binding.KeyLifetimeSecs != 0 {
			exp := bk.PublicKey.CreationTime.Add(time.Duration(*bk.Binding.KeyLifetimeSecs) * time.Second)
			sub.ExpiresAt = &exp
		}
	}
	return sub
}

// canUse reports whether any validly bound key carries the usage flag and has
// not expired for it as of now.
func canUse(c *cert.Certificate, usage policy.Usage, now time.Time) bool {
	for _, bk := range c.Keys() {
		keyID := bk.PublicKey.KeyId
		if !policy.ValidlyBound(c, keyID, now) {
			continue
		}
		if !hasUsageFlag(bk, usage) {
			continue
		}
		if exp, ok := policy.ExpirationFor(c, keyID, usage); ok && !now.Before(exp) {
			continue
		}
		return true
	}
	return false
}

func hasUsageFlag(bk cert.BoundKey, usage policy.Usage) bool {
	if bk.Binding == nil {
		return false
	}
	flags := sign.SignatureFlags(bk.Binding)
	switch usage {
	case policy.UsageCertify:
		return flags.Has(key.FlagCertify)
	case policy.UsageSign:
		return flags.Has(key.FlagSign)
	case policy.UsageEncrypt:
		return flags.HasAny(key.FlagEncrypt)
	case policy.UsageAuthenticate:
		return flags.Has(key.FlagAuthenticate)
	}
	return false
}

// canEncrypt asks gopenpgp, whose answer accounts for algorithm usability on
// top of the flag and binding checks.
func canEncrypt(c *cert.Certificate, now time.Time) bool {
	if !canUse(c, policy.UsageEncrypt, now) {
		return false
	}
	k, err := Key(c)
	if err != nil {
		return false
	}
	return k.CanEncrypt(now.Unix())
}

func bitLength(pk *packet.PublicKey) int {
	bits, err := pk.BitLength()
	if err != nil {
		return 0
	}
	return int(bits)
}
