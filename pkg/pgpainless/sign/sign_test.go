package sign

import (
	"testing"
	"time"

	"github.com/ProtonMail/go-crypto/openpgp/packet"

	"github.com/kkpan11/pgpainless/pkg/pgpainless/key"
)

func TestKeyLifetime(t *testing.T) {
	creation := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		expiry  time.Time
		want    uint32
		wantErr bool
	}{
		{"one year", creation.AddDate(1, 0, 0), 365 * 24 * 3600, false},
		{"one second", creation.Add(time.Second), 1, false},
		{"same instant", creation, 0, true},
		{"before creation", creation.Add(-time.Hour), 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := KeyLifetime(creation, tt.expiry)
			if (err != nil) != tt.wantErr {
				t.Fatalf("KeyLifetime() error = %v, wantErr = %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("KeyLifetime() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFlags_RoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		flags key.Flags
	}{
		{"certify", key.FlagCertify},
		{"sign", key.FlagSign},
		{"encrypt pair", key.FlagEncrypt},
		{"authenticate", key.FlagAuthenticate},
		{"everything", key.FlagCertify | key.FlagSign | key.FlagEncrypt | key.FlagAuthenticate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := &packet.Signature{}
			ApplyFlags(sig, tt.flags)
			if !sig.FlagsValid {
				t.Fatal("ApplyFlags must mark the flags subpacket valid")
			}
			if got := SignatureFlags(sig); got != tt.flags {
				t.Errorf("SignatureFlags() = %v, want %v", got, tt.flags)
			}
		})
	}
}

func TestSignatureFlags_Absent(t *testing.T) {
	if got := SignatureFlags(nil); got != 0 {
		t.Errorf("SignatureFlags(nil) = %v, want 0", got)
	}
	if got := SignatureFlags(&packet.Signature{}); got != 0 {
		t.Errorf("SignatureFlags without a flags subpacket = %v, want 0", got)
	}
}

func TestNew_CarriesIssuer(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	cfg := &packet.Config{Time: func() time.Time { return now }}

	issuer := &packet.PublicKey{
		Version:    4,
		KeyId:      0xCAFEBABE,
		PubKeyAlgo: packet.PubKeyAlgoEd25519,
	}
	sig := New(issuer, packet.SigTypePositiveCert, cfg)

	if sig.SigType != packet.SigTypePositiveCert {
		t.Errorf("SigType = %v, want positive certification", sig.SigType)
	}
	if sig.IssuerKeyId == nil || *sig.IssuerKeyId != issuer.KeyId {
		t.Error("signature missing the issuer key id")
	}
	if !sig.CreationTime.Equal(now) {
		t.Errorf("CreationTime = %v, want %v", sig.CreationTime, now)
	}
	if sig.PubKeyAlgo != issuer.PubKeyAlgo {
		t.Error("signature algorithm does not follow the issuer")
	}
}

func TestApplyPreferences(t *testing.T) {
	sig := &packet.Signature{}
	ApplyPreferences(sig)

	if len(sig.PreferredSymmetric) == 0 || sig.PreferredSymmetric[0] != uint8(packet.CipherAES256) {
		t.Error("AES-256 must lead the symmetric preference list")
	}
	// RFC 4880 section 9.4 ids: SHA-256, SHA-384, SHA-512.
	wantHash := []uint8{8, 9, 10}
	if len(sig.PreferredHash) != len(wantHash) {
		t.Fatalf("PreferredHash = %v, want %v", sig.PreferredHash, wantHash)
	}
	for i, id := range wantHash {
		if sig.PreferredHash[i] != id {
			t.Errorf("PreferredHash[%d] = %d, want %d", i, sig.PreferredHash[i], id)
		}
	}
	if !sig.SEIPDv1 {
		t.Error("SEIPD v1 feature flag not set")
	}
}
