// Package policy carries the certification policy file and the predicates
// deciding whether a key is validly bound, certification-capable and
// unexpired at a point in time.
package policy

import (
	"crypto"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp/packet"
	"gopkg.in/yaml.v3"

	"github.com/kkpan11/pgpainless/pkg/pgpainless/key"
)

// ApprovedAlgorithm specifies one approved algorithm family with its
// requirements.
type ApprovedAlgorithm struct {
	Algo    string   `yaml:"algo"`             // Algorithm family name (RSA, EdDSA, ECDSA)
	Curves  []string `yaml:"curves,omitempty"` // For EdDSA/ECDSA: allowed curves
	MinBits int      `yaml:"min_bits"`         // Minimum bit length
}

// Policy is the certification policy: which algorithms may issue
// certifications, and which hash new signatures use.
type Policy struct {
	CertificationAlgorithms []ApprovedAlgorithm `yaml:"certification_algorithms"`
	SignatureHash           string              `yaml:"signature_hash"`
}

// Default returns the policy applied when no policy file exists: the modern
// EdDSA curves plus RSA at 2048 bits and up, signing with SHA-256.
func Default() Policy {
	return Policy{
		CertificationAlgorithms: []ApprovedAlgorithm{
			{
				Algo: "EdDSA",
				Curves: []string{
					"Ed25519",
					"Ed448",
				},
				MinBits: 255,
			},
			{
				Algo:    "RSA",
				MinBits: 2048,
			},
		},
		SignatureHash: "SHA256",
	}
}

// Load reads a policy from the specified path.
func Load(path string) (Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("failed to read policy: %w", err)
	}
	if len(data) == 0 {
		return Policy{}, fmt.Errorf("policy file is empty")
	}
	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Policy{}, fmt.Errorf("failed to parse policy: %w", err)
	}
	return p, nil
}

// Save writes the policy to the specified path, creating the parent
// directory with owner-only permissions.
func Save(path string, p Policy) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal policy: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write policy: %w", err)
	}
	return nil
}

// HashFunction maps the configured signature hash name onto a hash function,
// falling back to SHA-256 for unknown names.
func (p Policy) HashFunction() crypto.Hash {
	switch strings.ToUpper(strings.TrimSpace(p.SignatureHash)) {
	case "SHA384":
		return crypto.SHA384
	case "SHA512":
		return crypto.SHA512
	default:
		return crypto.SHA256
	}
}

// Config returns a packet config applying the policy's signature hash.
func (p Policy) Config() *packet.Config {
	return &packet.Config{DefaultHash: p.HashFunction()}
}

// AllowsCertification reports whether the public key's algorithm is on the
// certification allow-list. An empty allow-list rejects everything.
func (p Policy) AllowsCertification(pk *packet.PublicKey) bool {
	if pk == nil || !pk.PubKeyAlgo.CanSign() {
		return false
	}
	family, curve := classify(pk)
	bitLen, err := pk.BitLength()
	if err != nil {
		return false
	}
	bits := int(bitLen)
	for _, req := range p.CertificationAlgorithms {
		if !strings.EqualFold(family, req.Algo) {
			continue
		}
		if bits > 0 && bits < req.MinBits {
			return false
		}
		if req.Algo == "EdDSA" || req.Algo == "ECDSA" || len(req.Curves) > 0 {
			return isCurveAllowed(curve, req.Curves)
		}
		return true
	}
	return false
}

// AllowedAlgorithmsString returns a human-readable rendering of the
// allow-list for error messages.
func (p Policy) AllowedAlgorithmsString() string {
	var parts []string
	for _, alg := range p.CertificationAlgorithms {
		part := fmt.Sprintf("%s (minimum %d bits", alg.Algo, alg.MinBits)
		if len(alg.Curves) > 0 {
			part += fmt.Sprintf(", curves: %s", strings.Join(alg.Curves, ", "))
		}
		part += ")"
		parts = append(parts, part)
	}
	return "Allowed algorithms: " + strings.Join(parts, ", ")
}

// classify maps a substrate public key onto the allow-list vocabulary:
// an algorithm family plus, for the elliptic families, the curve name.
func classify(pk *packet.PublicKey) (family, curve string) {
	switch pk.PubKeyAlgo {
	case packet.PubKeyAlgoRSA, packet.PubKeyAlgoRSASignOnly:
		return "RSA", ""
	case packet.PubKeyAlgoDSA:
		return "DSA", ""
	case packet.PubKeyAlgoEd25519:
		return "EdDSA", "Ed25519"
	case packet.PubKeyAlgoEd448:
		return "EdDSA", "Ed448"
	case packet.PubKeyAlgoEdDSA:
		// Legacy EdDSA keys carry the curve in their bit length.
		if bits, err := pk.BitLength(); err == nil && bits == 448 {
			return "EdDSA", "Ed448"
		}
		return "EdDSA", "Ed25519"
	case packet.PubKeyAlgoECDSA:
		if bits, err := pk.BitLength(); err == nil {
			switch bits {
			case 256:
				return "ECDSA", "P-256"
			case 384:
				return "ECDSA", "P-384"
			case 521:
				return "ECDSA", "P-521"
			}
		}
		return "ECDSA", ""
	}
	return key.AlgorithmName(pk), ""
}

func isCurveAllowed(curve string, allowed []string) bool {
	for _, a := range allowed {
		if strings.EqualFold(strings.TrimSpace(curve), strings.TrimSpace(a)) {
			return true
		}
	}
	return false
}
