package policy_test

import (
	"crypto"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ProtonMail/go-crypto/openpgp/packet"

	"github.com/kkpan11/pgpainless/pkg/pgpainless/key"
	"github.com/kkpan11/pgpainless/pkg/pgpainless/keygen"
	"github.com/kkpan11/pgpainless/pkg/pgpainless/policy"
)

var testCreation = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func testConfig() *packet.Config {
	return &packet.Config{Time: func() time.Time { return testCreation }}
}

func publicKey(t *testing.T, algo key.Algorithm) *packet.PublicKey {
	t.Helper()
	priv, err := keygen.NewKeyPair(algo, testCreation, testConfig())
	if err != nil {
		t.Fatalf("NewKeyPair(%s): %v", algo, err)
	}
	return &priv.PublicKey
}

func TestDefault_AllowsCertification(t *testing.T) {
	p := policy.Default()

	tests := []struct {
		name string
		algo key.Algorithm
		want bool
	}{
		{"ed25519", key.AlgorithmED25519, true},
		{"ed448", key.AlgorithmED448, true},
		{"rsa2048", key.AlgorithmRSA2048, true},
		{"x25519 cannot sign", key.AlgorithmX25519, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pk := publicKey(t, tt.algo)
			if got := p.AllowsCertification(pk); got != tt.want {
				t.Errorf("AllowsCertification(%s) = %v, want %v", tt.algo, got, tt.want)
			}
		})
	}

	if p.AllowsCertification(nil) {
		t.Error("AllowsCertification(nil) = true")
	}
}

func TestAllowsCertification_MinBits(t *testing.T) {
	p := policy.Policy{
		CertificationAlgorithms: []policy.ApprovedAlgorithm{
			{Algo: "RSA", MinBits: 3072},
		},
	}
	if p.AllowsCertification(publicKey(t, key.AlgorithmRSA2048)) {
		t.Error("RSA-2048 accepted under a 3072-bit minimum")
	}
}

func TestAllowsCertification_CurveRestriction(t *testing.T) {
	p := policy.Policy{
		CertificationAlgorithms: []policy.ApprovedAlgorithm{
			{Algo: "EdDSA", Curves: []string{"Ed448"}, MinBits: 255},
		},
	}
	if p.AllowsCertification(publicKey(t, key.AlgorithmED25519)) {
		t.Error("Ed25519 accepted by an Ed448-only curve list")
	}
	if !p.AllowsCertification(publicKey(t, key.AlgorithmED448)) {
		t.Error("Ed448 rejected by an Ed448-only curve list")
	}
}

func TestAllowsCertification_EmptyAllowList(t *testing.T) {
	var p policy.Policy
	if p.AllowsCertification(publicKey(t, key.AlgorithmED25519)) {
		t.Error("empty allow-list must reject everything")
	}
}

func TestHashFunction(t *testing.T) {
	tests := []struct {
		name string
		hash string
		want crypto.Hash
	}{
		{"sha256", "SHA256", crypto.SHA256},
		{"sha384 lowercase", "sha384", crypto.SHA384},
		{"sha512 padded", "  SHA512 ", crypto.SHA512},
		{"unknown falls back", "MD5", crypto.SHA256},
		{"empty falls back", "", crypto.SHA256},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := policy.Policy{SignatureHash: tt.hash}
			if got := p.HashFunction(); got != tt.want {
				t.Errorf("HashFunction() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoadSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "policy.yaml")
	want := policy.Policy{
		CertificationAlgorithms: []policy.ApprovedAlgorithm{
			{Algo: "EdDSA", Curves: []string{"Ed25519"}, MinBits: 255},
		},
		SignatureHash: "SHA512",
	}

	if err := policy.Save(path, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := policy.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.SignatureHash != want.SignatureHash {
		t.Errorf("SignatureHash = %q, want %q", got.SignatureHash, want.SignatureHash)
	}
	if len(got.CertificationAlgorithms) != 1 || got.CertificationAlgorithms[0].Algo != "EdDSA" {
		t.Errorf("CertificationAlgorithms = %+v, want one EdDSA entry", got.CertificationAlgorithms)
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		if _, err := policy.Load(filepath.Join(dir, "absent.yaml")); err == nil {
			t.Error("expected error for a missing policy file")
		}
	})

	t.Run("empty file", func(t *testing.T) {
		path := filepath.Join(dir, "empty.yaml")
		if err := os.WriteFile(path, nil, 0o600); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		if _, err := policy.Load(path); err == nil {
			t.Error("expected error for an empty policy file")
		}
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		if err := os.WriteFile(path, []byte("{not yaml"), 0o600); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		if _, err := policy.Load(path); err == nil {
			t.Error("expected error for malformed yaml")
		}
	})
}

func TestAllowedAlgorithmsString(t *testing.T) {
	s := policy.Default().AllowedAlgorithmsString()
	for _, want := range []string{"EdDSA", "RSA", "Ed25519"} {
		if !strings.Contains(s, want) {
			t.Errorf("AllowedAlgorithmsString() = %q, missing %q", s, want)
		}
	}
}
