package certify_test

import (
	"errors"
	"testing"
	"time"

	"github.com/ProtonMail/go-crypto/openpgp/packet"

	"github.com/kkpan11/pgpainless/pkg/pgpainless/cert"
	"github.com/kkpan11/pgpainless/pkg/pgpainless/certify"
	pgperrors "github.com/kkpan11/pgpainless/pkg/pgpainless/errors"
	"github.com/kkpan11/pgpainless/pkg/pgpainless/key"
	"github.com/kkpan11/pgpainless/pkg/pgpainless/keygen"
	"github.com/kkpan11/pgpainless/pkg/pgpainless/policy"
	"github.com/kkpan11/pgpainless/pkg/pgpainless/protect"
	"github.com/kkpan11/pgpainless/pkg/pgpainless/sign"
)

var testCreation = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func configAt(now time.Time) *packet.Config {
	return &packet.Config{Time: func() time.Time { return now }}
}

func generateRing(t *testing.T, uid string, expiry *time.Time, pass *protect.Passphrase) *cert.SecretKeyMaterial {
	t.Helper()
	b := keygen.New()
	b.Config = configAt(testCreation)
	if err := b.Primary(key.Primary(key.AlgorithmED25519)); err != nil {
		t.Fatalf("Primary: %v", err)
	}
	if err := b.AddUserID(uid); err != nil {
		t.Fatalf("AddUserID: %v", err)
	}
	if expiry != nil {
		b.ExpiresAt(*expiry)
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

func revokeRing(t *testing.T, skm *cert.SecretKeyMaterial, reason packet.ReasonForRevocation) *cert.SecretKeyMaterial {
	t.Helper()
	sig, err := sign.KeyRevocation(skm.PrimaryKey(), skm.Entity().PrivateKey, &reason, "", nil, configAt(testCreation.Add(time.Minute)))
	if err != nil {
		t.Fatalf("KeyRevocation: %v", err)
	}
	return skm.WithKeyRevocation(sig)
}

func TestParseCertificationType(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    certify.CertificationType
		wantErr bool
	}{
		{"empty means generic", "", certify.Generic, false},
		{"generic", "generic", certify.Generic, false},
		{"persona uppercase", "PERSONA", certify.Persona, false},
		{"casual padded", " casual ", certify.Casual, false},
		{"positive", "positive", certify.Positive, false},
		{"unknown", "ultimate", certify.Generic, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := certify.ParseCertificationType(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCertificationType(%q) error = %v, wantErr = %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseCertificationType(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestUserIDCertification(t *testing.T) {
	now := testCreation.Add(time.Hour)
	targetUID := "Bob <bob@example.org>"
	signer := generateRing(t, "Alice <alice@example.org>", nil, nil)
	target := generateRing(t, targetUID, nil, nil).Certificate()

	req := certify.UserID(targetUID, target)
	req.Config = configAt(now)
	s, err := req.WithKey(signer, nil)
	if err != nil {
		t.Fatalf("WithKey: %v", err)
	}
	result, err := s.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if result.Signature.SigType != packet.SigTypeGenericCert {
		t.Errorf("signature type = %v, want generic certification", result.Signature.SigType)
	}
	if result.Signature.IssuerKeyId == nil || *result.Signature.IssuerKeyId != signer.KeyID() {
		t.Error("certification does not carry the signer's key id")
	}
	if got := result.Certificate.CountSignatures(targetUID); got != 2 {
		t.Errorf("certified copy carries %d signatures on the user id, want 2", got)
	}
	// The input certificate stays untouched.
	if got := target.CountSignatures(targetUID); got != 1 {
		t.Errorf("original certificate mutated: %d signatures, want 1", got)
	}
}

func TestUserIDCertification_Types(t *testing.T) {
	now := testCreation.Add(time.Hour)
	targetUID := "Bob <bob@example.org>"
	signer := generateRing(t, "Alice <alice@example.org>", nil, nil)
	target := generateRing(t, targetUID, nil, nil).Certificate()

	tests := []struct {
		ctype certify.CertificationType
		want  packet.SignatureType
	}{
		{certify.Generic, packet.SigTypeGenericCert},
		{certify.Persona, packet.SigTypePersonaCert},
		{certify.Casual, packet.SigTypeCasualCert},
		{certify.Positive, packet.SigTypePositiveCert},
	}

	for _, tt := range tests {
		t.Run(tt.ctype.String(), func(t *testing.T) {
			req := certify.UserID(targetUID, target).OfType(tt.ctype)
			req.Config = configAt(now)
			s, err := req.WithKey(signer, nil)
			if err != nil {
				t.Fatalf("WithKey: %v", err)
			}
			result, err := s.Build()
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if result.Signature.SigType != tt.want {
				t.Errorf("signature type = %v, want %v", result.Signature.SigType, tt.want)
			}
		})
	}
}

func TestUserIDCertification_UnknownUID(t *testing.T) {
	now := testCreation.Add(time.Hour)
	signer := generateRing(t, "Alice <alice@example.org>", nil, nil)
	target := generateRing(t, "Bob <bob@example.org>", nil, nil).Certificate()

	req := certify.UserID("Carol <carol@example.org>", target)
	req.Config = configAt(now)
	s, err := req.WithKey(signer, nil)
	if err != nil {
		t.Fatalf("WithKey: %v", err)
	}
	_, err = s.Build()
	var notFound pgperrors.NotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("Build error = %v, want a not-found error", err)
	}
}

func TestQualificationOrder(t *testing.T) {
	now := testCreation.Add(time.Hour)
	targetUID := "Bob <bob@example.org>"
	target := generateRing(t, targetUID, nil, nil).Certificate()

	withKey := func(signer *cert.SecretKeyMaterial, p *policy.Policy, at time.Time) error {
		req := certify.UserID(targetUID, target)
		req.Policy = p
		req.Config = configAt(at)
		_, err := req.WithKey(signer, nil)
		return err
	}

	rsaOnly := &policy.Policy{
		CertificationAlgorithms: []policy.ApprovedAlgorithm{{Algo: "RSA", MinBits: 2048}},
	}

	t.Run("revoked signer", func(t *testing.T) {
		signer := revokeRing(t, generateRing(t, "Alice <alice@example.org>", nil, nil), packet.KeyCompromised)
		var revoked pgperrors.RevokedKeyError
		if err := withKey(signer, nil, now); !errors.As(err, &revoked) {
			t.Errorf("error = %v, want a revoked-key error", err)
		}
	})

	t.Run("algorithm off the allow-list", func(t *testing.T) {
		signer := generateRing(t, "Alice <alice@example.org>", nil, nil)
		var unacceptable pgperrors.UnacceptableCertificationKeyError
		if err := withKey(signer, rsaOnly, now); !errors.As(err, &unacceptable) {
			t.Errorf("error = %v, want an unacceptable-key error", err)
		}
	})

	t.Run("expired signer", func(t *testing.T) {
		expiry := testCreation.Add(30 * time.Minute)
		signer := generateRing(t, "Alice <alice@example.org>", &expiry, nil)
		var expired pgperrors.ExpiredKeyError
		if err := withKey(signer, nil, now); !errors.As(err, &expired) {
			t.Errorf("error = %v, want an expired-key error", err)
		}
	})

	t.Run("missing secret key", func(t *testing.T) {
		signer := generateRing(t, "Alice <alice@example.org>", nil, nil)
		signer.Entity().PrivateKey = nil
		var missing pgperrors.MissingSecretKeyError
		if err := withKey(signer, nil, now); !errors.As(err, &missing) {
			t.Errorf("error = %v, want a missing-secret-key error", err)
		}
	})

	// Pairwise precedence: the most fundamental failure wins.

	t.Run("revoked beats expired", func(t *testing.T) {
		expiry := testCreation.Add(30 * time.Minute)
		signer := revokeRing(t, generateRing(t, "Alice <alice@example.org>", &expiry, nil), packet.KeyCompromised)
		var revoked pgperrors.RevokedKeyError
		if err := withKey(signer, nil, now); !errors.As(err, &revoked) {
			t.Errorf("error = %v, want a revoked-key error", err)
		}
	})

	t.Run("unacceptable beats expired", func(t *testing.T) {
		expiry := testCreation.Add(30 * time.Minute)
		signer := generateRing(t, "Alice <alice@example.org>", &expiry, nil)
		var unacceptable pgperrors.UnacceptableCertificationKeyError
		if err := withKey(signer, rsaOnly, now); !errors.As(err, &unacceptable) {
			t.Errorf("error = %v, want an unacceptable-key error", err)
		}
	})

	t.Run("expired beats missing secret key", func(t *testing.T) {
		expiry := testCreation.Add(30 * time.Minute)
		signer := generateRing(t, "Alice <alice@example.org>", &expiry, nil)
		signer.Entity().PrivateKey = nil
		var expired pgperrors.ExpiredKeyError
		if err := withKey(signer, nil, now); !errors.As(err, &expired) {
			t.Errorf("error = %v, want an expired-key error", err)
		}
	})
}

func TestUserIDCertification_Passphrase(t *testing.T) {
	now := testCreation.Add(time.Hour)
	targetUID := "Bob <bob@example.org>"
	target := generateRing(t, targetUID, nil, nil).Certificate()

	t.Run("wrong passphrase", func(t *testing.T) {
		signer := generateRing(t, "Alice <alice@example.org>", nil, protect.PassphraseFromString("right"))
		req := certify.UserID(targetUID, target)
		req.Config = configAt(now)
		_, err := req.WithKey(signer, protect.WithPassphrase(protect.PassphraseFromString("wrong")))
		var passErr pgperrors.PassphraseError
		if !errors.As(err, &passErr) {
			t.Errorf("error = %v, want a passphrase error", err)
		}
	})

	t.Run("correct passphrase", func(t *testing.T) {
		signer := generateRing(t, "Alice <alice@example.org>", nil, protect.PassphraseFromString("right"))
		req := certify.UserID(targetUID, target)
		req.Config = configAt(now)
		s, err := req.WithKey(signer, protect.WithPassphrase(protect.PassphraseFromString("right")))
		if err != nil {
			t.Fatalf("WithKey: %v", err)
		}
		if _, err := s.Build(); err != nil {
			t.Errorf("Build: %v", err)
		}
		// The ring's own packet stays encrypted.
		if !signer.Entity().PrivateKey.Encrypted {
			t.Error("unlocking for signing decrypted the ring's own packet")
		}
	})
}

func TestDelegation(t *testing.T) {
	now := testCreation.Add(time.Hour)
	signer := generateRing(t, "Alice <alice@example.org>", nil, nil)
	target := generateRing(t, "Bob <bob@example.org>", nil, nil).Certificate()

	t.Run("with trust mark", func(t *testing.T) {
		trust := certify.FullyTrusted(2)
		req := certify.Delegate(target, &trust)
		req.Config = configAt(now)
		s, err := req.WithKey(signer, nil)
		if err != nil {
			t.Fatalf("WithKey: %v", err)
		}
		result, err := s.Build()
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		if result.Signature.SigType != packet.SigTypeDirectSignature {
			t.Errorf("signature type = %v, want direct-key", result.Signature.SigType)
		}
		if result.Signature.TrustLevel != 2 || result.Signature.TrustAmount != 120 {
			t.Errorf("trust = (%d, %d), want (2, 120)", result.Signature.TrustLevel, result.Signature.TrustAmount)
		}
		if result.Trust == nil || result.Trust.Depth != 2 || result.Trust.Amount != 120 {
			t.Errorf("result trust = %+v, want (2, 120)", result.Trust)
		}
		if got := len(result.Certificate.DirectSignatures()); got != 1 {
			t.Errorf("delegated copy carries %d direct signatures, want 1", got)
		}
		if got := len(target.DirectSignatures()); got != 0 {
			t.Errorf("original certificate mutated: %d direct signatures", got)
		}
	})

	t.Run("without trust mark", func(t *testing.T) {
		req := certify.Delegate(target, nil)
		req.Config = configAt(now)
		s, err := req.WithKey(signer, nil)
		if err != nil {
			t.Fatalf("WithKey: %v", err)
		}
		result, err := s.Build()
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		if result.Signature.TrustLevel != 0 || result.Signature.TrustAmount != 0 {
			t.Error("plain delegation must not carry trust values")
		}
		if result.Trust != nil {
			t.Errorf("plain delegation result carries trust %+v, want nil", result.Trust)
		}
	})

	t.Run("distrust mark distinguishable from no mark", func(t *testing.T) {
		distrust := &certify.Trustworthiness{Depth: 1, Amount: 0}
		req := certify.Delegate(target, distrust)
		req.Config = configAt(now)
		s, err := req.WithKey(signer, nil)
		if err != nil {
			t.Fatalf("WithKey: %v", err)
		}
		marked, err := s.Build()
		if err != nil {
			t.Fatalf("Build: %v", err)
		}

		plainReq := certify.Delegate(target, nil)
		plainReq.Config = configAt(now)
		ps, err := plainReq.WithKey(signer, nil)
		if err != nil {
			t.Fatalf("WithKey: %v", err)
		}
		plain, err := ps.Build()
		if err != nil {
			t.Fatalf("Build: %v", err)
		}

		if marked.Trust == nil || marked.Trust.Amount != 0 {
			t.Errorf("distrust result trust = %+v, want (1, 0)", marked.Trust)
		}
		if plain.Trust != nil {
			t.Errorf("plain result trust = %+v, want nil", plain.Trust)
		}
		if marked.Signature.TrustLevel != 1 {
			t.Errorf("distrust TrustLevel = %d, want 1", marked.Signature.TrustLevel)
		}
		if plain.Signature.TrustLevel != 0 {
			t.Errorf("plain TrustLevel = %d, want 0", plain.Signature.TrustLevel)
		}
	})

	t.Run("depth zero rejected", func(t *testing.T) {
		trust := &certify.Trustworthiness{Depth: 0, Amount: 120}
		req := certify.Delegate(target, trust)
		req.Config = configAt(now)
		s, err := req.WithKey(signer, nil)
		if err != nil {
			t.Fatalf("WithKey: %v", err)
		}
		_, err = s.Build()
		var pe pgperrors.PreconditionError
		if !errors.As(err, &pe) {
			t.Fatalf("Build error = %v, want a precondition failure", err)
		}
	})
}

func TestTrustworthiness(t *testing.T) {
	if tr := certify.FullyTrusted(1); tr.Depth != 1 || tr.Amount != 120 {
		t.Errorf("FullyTrusted(1) = %+v", tr)
	}
	if tr := certify.MarginallyTrusted(3); tr.Depth != 3 || tr.Amount != 60 {
		t.Errorf("MarginallyTrusted(3) = %+v", tr)
	}
}
