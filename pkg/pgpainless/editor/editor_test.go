package editor_test

import (
	"errors"
	"testing"
	"time"

	"github.com/ProtonMail/go-crypto/openpgp/packet"

	"github.com/kkpan11/pgpainless/pkg/pgpainless/cert"
	"github.com/kkpan11/pgpainless/pkg/pgpainless/editor"
	pgperrors "github.com/kkpan11/pgpainless/pkg/pgpainless/errors"
	"github.com/kkpan11/pgpainless/pkg/pgpainless/key"
	"github.com/kkpan11/pgpainless/pkg/pgpainless/keygen"
	"github.com/kkpan11/pgpainless/pkg/pgpainless/protect"
	"github.com/kkpan11/pgpainless/pkg/pgpainless/sign"
)

var (
	testCreation = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	testNow      = testCreation.Add(time.Hour)
	testUID      = "Alice <alice@example.org>"
)

func configAt(now time.Time) *packet.Config {
	return &packet.Config{Time: func() time.Time { return now }}
}

func generateRing(t *testing.T, pass *protect.Passphrase) *cert.SecretKeyMaterial {
	t.Helper()
	b := keygen.New()
	b.Config = configAt(testCreation)
	if err := b.Primary(key.Primary(key.AlgorithmED25519)); err != nil {
		t.Fatalf("Primary: %v", err)
	}
	if err := b.AddSubkey(key.Encryption(key.AlgorithmX25519)); err != nil {
		t.Fatalf("AddSubkey: %v", err)
	}
	if err := b.AddUserID(testUID); err != nil {
		t.Fatalf("AddUserID: %v", err)
	}
	if pass != nil {
		b.Passphrase(pass)
	}
	skm, err := b.Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return skm
}

func editRing(skm *cert.SecretKeyMaterial) *editor.Editor {
	ed := editor.Edit(skm)
	ed.Config = configAt(testNow)
	return ed
}

func TestAddUserID(t *testing.T) {
	skm := generateRing(t, nil)
	newUID := "Alice (work) <alice@work.example>"

	ed, err := editRing(skm).AddUserID(newUID, nil)
	if err != nil {
		t.Fatalf("AddUserID: %v", err)
	}
	got := ed.Done()

	uids := got.UserIDs()
	if len(uids) != 2 || uids[1] != newUID {
		t.Errorf("UserIDs() = %v, want the new user id appended last", uids)
	}
	// The original is untouched.
	if len(skm.UserIDs()) != 1 {
		t.Error("AddUserID mutated the input ring")
	}

	ident, ok := got.Entity().Identities[newUID]
	if !ok || ident.SelfSignature == nil {
		t.Fatal("new user id carries no self-certification")
	}
	if ident.SelfSignature.IsPrimaryId != nil && *ident.SelfSignature.IsPrimaryId {
		t.Error("added user id must not claim the primary mark")
	}
	// Capability flags follow the existing self-certification.
	if !sign.SignatureFlags(ident.SelfSignature).Has(key.FlagCertify) {
		t.Error("added user id's self-certification lost the certify flag")
	}
}

func TestAddUserID_RevokedRing(t *testing.T) {
	skm := generateRing(t, nil)
	ed, err := editRing(skm).Revoke(nil, nil)
	if err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	_, err = ed.AddUserID("Eve <eve@example.org>", nil)
	var revoked pgperrors.RevokedKeyError
	if !errors.As(err, &revoked) {
		t.Errorf("AddUserID on a revoked ring: error = %v, want a revoked-key error", err)
	}
}

func TestAddSubkey(t *testing.T) {
	skm := generateRing(t, nil)

	ed, err := editRing(skm).AddSubkey(key.Signing(key.AlgorithmED25519), nil)
	if err != nil {
		t.Fatalf("AddSubkey: %v", err)
	}
	got := ed.Done()

	if len(got.Entity().Subkeys) != 2 {
		t.Fatalf("ring carries %d subkeys, want 2", len(got.Entity().Subkeys))
	}
	if len(skm.Entity().Subkeys) != 1 {
		t.Error("AddSubkey mutated the input ring")
	}
	added := got.Entity().Subkeys[1]
	if added.Sig.SigType != packet.SigTypeSubkeyBinding {
		t.Errorf("binding type = %v, want subkey binding", added.Sig.SigType)
	}
	if added.Sig.EmbeddedSignature == nil {
		t.Error("signing subkey binding missing the embedded primary-key binding")
	}
	if !added.PublicKey.CreationTime.Equal(testNow) {
		t.Errorf("subkey creation = %v, want the edit time %v", added.PublicKey.CreationTime, testNow)
	}
}

func TestAddSubkey_InvalidSpec(t *testing.T) {
	skm := generateRing(t, nil)
	if _, err := editRing(skm).AddSubkey(key.Signing(key.AlgorithmX25519), nil); err == nil {
		t.Error("expected error for a signing spec on an encryption algorithm")
	}
}

func TestSetExpirationDate(t *testing.T) {
	skm := generateRing(t, nil)
	expiry := testCreation.Add(90 * 24 * time.Hour)

	ed, err := editRing(skm).SetExpirationDate(&expiry, nil)
	if err != nil {
		t.Fatalf("SetExpirationDate: %v", err)
	}
	got := ed.Done()

	ident := got.Entity().Identities[testUID]
	if ident.SelfSignature.KeyLifetimeSecs == nil {
		t.Fatal("reissued self-certification carries no key lifetime")
	}
	want := uint32(expiry.Sub(testCreation) / time.Second)
	if *ident.SelfSignature.KeyLifetimeSecs != want {
		t.Errorf("key lifetime = %d, want %d", *ident.SelfSignature.KeyLifetimeSecs, want)
	}
	// The superseded certification stays on the signature list.
	if len(ident.Signatures) != 2 {
		t.Errorf("identity carries %d signatures, want the old and the new certification", len(ident.Signatures))
	}
	if ident.SelfSignature.IsPrimaryId == nil || !*ident.SelfSignature.IsPrimaryId {
		t.Error("reissued self-certification lost the primary user id mark")
	}

	// Clearing the expiration reissues again with no lifetime.
	ed2, err := ed.SetExpirationDate(nil, nil)
	if err != nil {
		t.Fatalf("SetExpirationDate(nil): %v", err)
	}
	cleared := ed2.Done().Entity().Identities[testUID].SelfSignature
	if cleared.KeyLifetimeSecs != nil && *cleared.KeyLifetimeSecs != 0 {
		t.Error("clearing the expiration left a key lifetime behind")
	}
}

func TestSetExpirationDate_BeforeCreation(t *testing.T) {
	skm := generateRing(t, nil)
	expiry := testCreation.Add(-time.Hour)
	if _, err := editRing(skm).SetExpirationDate(&expiry, nil); err == nil {
		t.Error("expected error for an expiration before key creation")
	}
}

func TestSetSubkeyExpirationDate(t *testing.T) {
	skm := generateRing(t, nil)
	sub := skm.Entity().Subkeys[0]
	fpr := cert.FormatFingerprint(sub.PublicKey.Fingerprint)
	expiry := testCreation.Add(30 * 24 * time.Hour)

	ed, err := editRing(skm).SetSubkeyExpirationDate(fpr, &expiry, nil)
	if err != nil {
		t.Fatalf("SetSubkeyExpirationDate: %v", err)
	}
	binding := ed.Done().Entity().Subkeys[0].Sig
	if binding.KeyLifetimeSecs == nil {
		t.Fatal("reissued binding carries no key lifetime")
	}
	want := uint32(expiry.Sub(sub.PublicKey.CreationTime) / time.Second)
	if *binding.KeyLifetimeSecs != want {
		t.Errorf("key lifetime = %d, want %d", *binding.KeyLifetimeSecs, want)
	}
	if got := sign.SignatureFlags(binding); !got.HasAny(key.FlagEncrypt) {
		t.Error("reissued binding lost the encryption flags")
	}
	// The input ring keeps its original binding.
	if skm.Entity().Subkeys[0].Sig.KeyLifetimeSecs != nil {
		t.Error("SetSubkeyExpirationDate mutated the input ring")
	}
}

func TestSetSubkeyExpirationDate_NotFound(t *testing.T) {
	skm := generateRing(t, nil)
	expiry := testCreation.Add(time.Hour)

	var notFound pgperrors.NotFoundError
	_, err := editRing(skm).SetSubkeyExpirationDate("0000000000000000000000000000000000000000", &expiry, nil)
	if !errors.As(err, &notFound) {
		t.Errorf("unknown fingerprint: error = %v, want a not-found error", err)
	}

	// The primary key is not addressable as a subkey.
	_, err = editRing(skm).SetSubkeyExpirationDate(skm.Fingerprint(), &expiry, nil)
	if !errors.As(err, &notFound) {
		t.Errorf("primary fingerprint: error = %v, want a not-found error", err)
	}
}

func TestRevoke(t *testing.T) {
	skm := generateRing(t, nil)

	ed, err := editRing(skm).Revoke(nil, nil)
	if err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	got := ed.Done()

	if len(got.Entity().Revocations) != 1 {
		t.Fatalf("ring carries %d revocations, want 1", len(got.Entity().Revocations))
	}
	rev := got.Entity().Revocations[0]
	if rev.SigType != packet.SigTypeKeyRevocation {
		t.Errorf("revocation type = %v, want key revocation", rev.SigType)
	}
	// Default attributes produce a hard compromised-key revocation.
	if rev.RevocationReason == nil || *rev.RevocationReason != packet.KeyCompromised {
		t.Error("default revocation must carry the compromised-key reason")
	}
	if len(skm.Entity().Revocations) != 0 {
		t.Error("Revoke mutated the input ring")
	}

	// Revocation is not gated on key state: a revoked ring can be revoked
	// again.
	if _, err := ed.Revoke(nil, &editor.RevocationAttributes{Reason: packet.KeyRetired}); err != nil {
		t.Errorf("second Revoke: %v", err)
	}
}

func TestRevoke_InvalidReason(t *testing.T) {
	skm := generateRing(t, nil)
	attrs := &editor.RevocationAttributes{Reason: packet.UserIDNotValid}
	if _, err := editRing(skm).Revoke(nil, attrs); err == nil {
		t.Error("expected error for a user-id reason on a key revocation")
	}
}

func TestRevocationCertificate(t *testing.T) {
	skm := generateRing(t, nil)

	sig, err := editRing(skm).RevocationCertificate(nil, &editor.RevocationAttributes{
		Reason:  packet.KeySuperseded,
		Message: "rotated to a new key",
	})
	if err != nil {
		t.Fatalf("RevocationCertificate: %v", err)
	}
	if sig.SigType != packet.SigTypeKeyRevocation {
		t.Errorf("signature type = %v, want key revocation", sig.SigType)
	}
	if sig.RevocationReasonText != "rotated to a new key" {
		t.Errorf("reason text = %q", sig.RevocationReasonText)
	}
	// Detached issuance leaves the ring untouched.
	if len(skm.Entity().Revocations) != 0 {
		t.Error("RevocationCertificate applied the revocation to the ring")
	}
}

func TestRevokeSubkey(t *testing.T) {
	skm := generateRing(t, nil)
	sub := skm.Entity().Subkeys[0]
	fpr := cert.FormatFingerprint(sub.PublicKey.Fingerprint)

	ed, err := editRing(skm).RevokeSubkeyByFingerprint(fpr, nil, &editor.RevocationAttributes{Reason: packet.KeyRetired})
	if err != nil {
		t.Fatalf("RevokeSubkeyByFingerprint: %v", err)
	}
	got := ed.Done()
	if len(got.Entity().Subkeys[0].Revocations) != 1 {
		t.Fatal("subkey carries no revocation")
	}
	if got.Entity().Subkeys[0].Revocations[0].SigType != packet.SigTypeSubkeyRevocation {
		t.Error("revocation type is not a subkey revocation")
	}
	// The primary key is unaffected.
	if len(got.Entity().Revocations) != 0 {
		t.Error("subkey revocation leaked onto the primary key")
	}

	var notFound pgperrors.NotFoundError
	if _, err := editRing(skm).RevokeSubkey(0xDEADBEEF, nil, nil); !errors.As(err, &notFound) {
		t.Errorf("unknown subkey: error = %v, want a not-found error", err)
	}
}

func TestRevokeUserID(t *testing.T) {
	skm := generateRing(t, nil)
	secondUID := "Alice (home) <alice@home.example>"
	ed, err := editRing(skm).AddUserID(secondUID, nil)
	if err != nil {
		t.Fatalf("AddUserID: %v", err)
	}

	ed, err = ed.RevokeUserID(secondUID, nil, &editor.RevocationAttributes{Reason: packet.UserIDNotValid})
	if err != nil {
		t.Fatalf("RevokeUserID: %v", err)
	}
	got := ed.Done()

	revokedIdent := got.Entity().Identities[secondUID]
	if len(revokedIdent.Revocations) != 1 {
		t.Fatal("revoked user id carries no revocation")
	}
	if revokedIdent.Revocations[0].SigType != packet.SigTypeCertificationRevocation {
		t.Error("revocation type is not a certification revocation")
	}
	// The other user id is unaffected.
	if len(got.Entity().Identities[testUID].Revocations) != 0 {
		t.Error("user id revocation leaked onto another user id")
	}

	var notFound pgperrors.NotFoundError
	if _, err := ed.RevokeUserID("Nobody <nobody@example.org>", nil, nil); !errors.As(err, &notFound) {
		t.Errorf("unknown user id: error = %v, want a not-found error", err)
	}
}

func TestParseRevocationReason(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    packet.ReasonForRevocation
		wantErr bool
	}{
		{"empty means compromised", "", packet.KeyCompromised, false},
		{"compromised", "compromised", packet.KeyCompromised, false},
		{"superseded uppercase", "SUPERSEDED", packet.KeySuperseded, false},
		{"retired padded", " retired ", packet.KeyRetired, false},
		{"none", "none", packet.NoReason, false},
		{"uid-invalid", "uid-invalid", packet.UserIDNotValid, false},
		{"unknown", "lost", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := editor.ParseRevocationReason(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRevocationReason(%q) error = %v, wantErr = %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseRevocationReason(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
