package key

import (
	"testing"
)

func TestParseAlgorithm_Valid(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Algorithm
	}{
		{"exact ed25519", "ED25519", AlgorithmED25519},
		{"lowercase ed25519", "ed25519", AlgorithmED25519},
		{"mixed case rsa", "Rsa4096", AlgorithmRSA4096},
		{"whitespace trimmed", "  X25519  ", AlgorithmX25519},
		{"ed448", "ED448", AlgorithmED448},
		{"x448", "x448", AlgorithmX448},
		{"rsa2048", "rsa2048", AlgorithmRSA2048},
		{"rsa3072", "RSA3072", AlgorithmRSA3072},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAlgorithm(tt.input)
			if err != nil {
				t.Errorf("ParseAlgorithm(%q) unexpected error: %v", tt.input, err)
				return
			}
			if got != tt.want {
				t.Errorf("ParseAlgorithm(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseAlgorithm_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"unknown curve", "P256"},
		{"unsupported rsa size", "RSA1024"},
		{"garbage", "not-an-algorithm"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseAlgorithm(tt.input); err == nil {
				t.Errorf("ParseAlgorithm(%q) expected error, got nil", tt.input)
			}
		})
	}
}

func TestAlgorithm_Capabilities(t *testing.T) {
	tests := []struct {
		algo       Algorithm
		canSign    bool
		canEncrypt bool
		bits       int
	}{
		{AlgorithmED25519, true, false, 255},
		{AlgorithmED448, true, false, 448},
		{AlgorithmX25519, false, true, 255},
		{AlgorithmX448, false, true, 448},
		{AlgorithmRSA2048, true, true, 2048},
		{AlgorithmRSA3072, true, true, 3072},
		{AlgorithmRSA4096, true, true, 4096},
	}

	for _, tt := range tests {
		t.Run(string(tt.algo), func(t *testing.T) {
			if got := tt.algo.CanSign(); got != tt.canSign {
				t.Errorf("CanSign() = %v, want %v", got, tt.canSign)
			}
			if got := tt.algo.CanEncrypt(); got != tt.canEncrypt {
				t.Errorf("CanEncrypt() = %v, want %v", got, tt.canEncrypt)
			}
			if got := tt.algo.CanCertify(); got != tt.canSign {
				t.Errorf("CanCertify() = %v, want %v", got, tt.canSign)
			}
			if got := tt.algo.Bits(); got != tt.bits {
				t.Errorf("Bits() = %d, want %d", got, tt.bits)
			}
		})
	}
}

func TestFlags_String(t *testing.T) {
	tests := []struct {
		name  string
		flags Flags
		want  string
	}{
		{"none", 0, "none"},
		{"certify only", FlagCertify, "certify"},
		{"sign only", FlagSign, "sign"},
		{"combined encrypt", FlagEncrypt, "encrypt-communications,encrypt-storage"},
		{"sign and auth", FlagSign | FlagAuthenticate, "sign,authenticate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.flags.String(); got != tt.want {
				t.Errorf("Flags.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFlags_HasAny(t *testing.T) {
	f := FlagSign | FlagAuthenticate
	if !f.HasAny(FlagSign | FlagEncrypt) {
		t.Error("HasAny should match when one flag overlaps")
	}
	if f.HasAny(FlagEncrypt) {
		t.Error("HasAny should not match disjoint flags")
	}
	if f.Has(FlagSign | FlagEncrypt) {
		t.Error("Has requires every flag in the mask")
	}
	if !f.Has(FlagSign) {
		t.Error("Has should match a present flag")
	}
}

func TestSpec_Validate(t *testing.T) {
	tests := []struct {
		name    string
		spec    Spec
		wantErr bool
	}{
		{"signing ed25519", Signing(AlgorithmED25519), false},
		{"encryption x25519", Encryption(AlgorithmX25519), false},
		{"authentication ed448", Authentication(AlgorithmED448), false},
		{"rsa both roles", Spec{Algorithm: AlgorithmRSA4096, Flags: FlagSign | FlagEncrypt}, false},
		{"no flags", Spec{Algorithm: AlgorithmED25519}, true},
		{"x25519 cannot sign", Signing(AlgorithmX25519), true},
		{"ed25519 cannot encrypt", Encryption(AlgorithmED25519), true},
		{"unknown algorithm", Spec{Algorithm: "DSA", Flags: FlagSign}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr = %v", err, tt.wantErr)
			}
		})
	}
}

func TestSpec_ValidateForPrimary(t *testing.T) {
	tests := []struct {
		name    string
		spec    Spec
		wantErr bool
	}{
		{"primary ed25519", Primary(AlgorithmED25519), false},
		{"primary rsa", Primary(AlgorithmRSA2048), false},
		{"missing certify flag", Signing(AlgorithmED25519), true},
		{"encryption-only algorithm", Spec{Algorithm: AlgorithmX25519, Flags: FlagCertify}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.ValidateForPrimary()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateForPrimary() error = %v, wantErr = %v", err, tt.wantErr)
			}
		})
	}
}
