package cert

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/ProtonMail/go-crypto/openpgp/packet"

	pgperrors "github.com/kkpan11/pgpainless/pkg/pgpainless/errors"
)

// Armor block types.
const (
	PublicKeyType  = "PGP PUBLIC KEY BLOCK"
	PrivateKeyType = "PGP PRIVATE KEY BLOCK"
	SignatureType  = "PGP SIGNATURE"
)

// Serialize writes the certificate's packets to w, honoring the user-id
// insertion order. The substrate's own serializer iterates its identity map
// in undefined order, so the loop is reproduced here over the ordered slice.
func (c *Certificate) Serialize(w io.Writer) error {
	e := c.e
	if err := e.PrimaryKey.Serialize(w); err != nil {
		return err
	}
	for _, revocation := range e.Revocations {
		if err := revocation.Serialize(w); err != nil {
			return err
		}
	}
	for _, directSignature := range e.Signatures {
		if err := directSignature.Serialize(w); err != nil {
			return err
		}
	}
	for _, uid := range c.uids {
		ident, ok := e.Identities[uid]
		if !ok {
			continue
		}
		if err := ident.UserId.Serialize(w); err != nil {
			return err
		}
		for _, sig := range ident.Signatures {
			if err := sig.Serialize(w); err != nil {
				return err
			}
		}
	}
	for i := range e.Subkeys {
		sk := &e.Subkeys[i]
		if err := sk.PublicKey.Serialize(w); err != nil {
			return err
		}
		for _, revocation := range sk.Revocations {
			if err := revocation.Serialize(w); err != nil {
				return err
			}
		}
		if err := sk.Sig.Serialize(w); err != nil {
			return err
		}
	}
	return nil
}

// Armor returns the certificate as an armored public key block.
func (c *Certificate) Armor() (string, error) {
	return armored(PublicKeyType, c.Serialize)
}

// Serialize writes the secret key material's packets to w, honoring the
// user-id insertion order. Signatures are written as they are, never
// re-signed.
func (s *SecretKeyMaterial) Serialize(w io.Writer) error {
	e := s.e
	if e.PrivateKey == nil {
		return pgperrors.PreconditionError("secret key material has no primary private key")
	}
	if err := e.PrivateKey.Serialize(w); err != nil {
		return err
	}
	for _, revocation := range e.Revocations {
		if err := revocation.Serialize(w); err != nil {
			return err
		}
	}
	for _, directSignature := range e.Signatures {
		if err := directSignature.Serialize(w); err != nil {
			return err
		}
	}
	for _, uid := range s.uids {
		ident, ok := e.Identities[uid]
		if !ok {
			continue
		}
		if err := ident.UserId.Serialize(w); err != nil {
			return err
		}
		for _, sig := range ident.Signatures {
			if err := sig.Serialize(w); err != nil {
				return err
			}
		}
	}
	for i := range e.Subkeys {
		sk := &e.Subkeys[i]
		if sk.PrivateKey == nil {
			return pgperrors.PreconditionError(fmt.Sprintf("subkey %016X has no private key packet", sk.PublicKey.KeyId))
		}
		if err := sk.PrivateKey.Serialize(w); err != nil {
			return err
		}
		for _, revocation := range sk.Revocations {
			if err := revocation.Serialize(w); err != nil {
				return err
			}
		}
		if err := sk.Sig.Serialize(w); err != nil {
			return err
		}
	}
	return nil
}

// Armor returns the secret key material as an armored private key block.
func (s *SecretKeyMaterial) Armor() (string, error) {
	return armored(PrivateKeyType, s.Serialize)
}

func armored(blockType string, serialize func(io.Writer) error) (string, error) {
	var buf bytes.Buffer
	aw, err := armor.Encode(&buf, blockType, nil)
	if err != nil {
		return "", err
	}
	if err := serialize(aw); err != nil {
		return "", err
	}
	if err := aw.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ArmorSignature returns a detached signature as an armored signature block.
func ArmorSignature(sig *packet.Signature) (string, error) {
	return armored(SignatureType, sig.Serialize)
}

// ParseCertificate reads one certificate from armored or binary input.
func ParseCertificate(r io.Reader) (*Certificate, error) {
	e, uids, err := readEntity(r)
	if err != nil {
		return nil, err
	}
	return &Certificate{e: e, uids: uids}, nil
}

// ParseSecretKeyMaterial reads one secret key ring from armored or binary
// input.
func ParseSecretKeyMaterial(r io.Reader) (*SecretKeyMaterial, error) {
	e, uids, err := readEntity(r)
	if err != nil {
		return nil, err
	}
	if e.PrivateKey == nil {
		return nil, pgperrors.PreconditionError("input contains no secret key material")
	}
	return &SecretKeyMaterial{e: e, uids: uids}, nil
}

// ParseSignature reads one detached signature from armored or binary input.
func ParseSignature(r io.Reader) (*packet.Signature, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	body, err := decodeArmor(data)
	if err != nil {
		return nil, err
	}
	p, err := packet.Read(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("could not read signature packet: %w", err)
	}
	sig, ok := p.(*packet.Signature)
	if !ok {
		return nil, pgperrors.PreconditionError("input is not a signature packet")
	}
	return sig, nil
}

// readEntity reads one entity, accepting armored input with a binary
// fallback, and recovers the user-id wire order the substrate's map-backed
// model drops.
func readEntity(r io.Reader) (*openpgp.Entity, []string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, err
	}
	body, err := decodeArmor(data)
	if err != nil {
		return nil, nil, err
	}
	el, err := openpgp.ReadKeyRing(bytes.NewReader(body))
	if err != nil {
		return nil, nil, fmt.Errorf("could not parse key material: %w", err)
	}
	if len(el) == 0 {
		return nil, nil, pgperrors.PreconditionError("input contains no OpenPGP key")
	}
	e := el[0]
	uids := scanUserIDOrder(body)
	if len(uids) == 0 {
		uids = deriveUserIDOrder(e)
	}
	return e, uids, nil
}

// decodeArmor unwraps armored input and passes binary input through.
func decodeArmor(data []byte) ([]byte, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if !bytes.HasPrefix(trimmed, []byte("-----BEGIN PGP")) {
		return data, nil
	}
	block, err := armor.Decode(bytes.NewReader(trimmed))
	if err != nil {
		return nil, fmt.Errorf("could not decode armor: %w", err)
	}
	body, err := io.ReadAll(block.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read armor body: %w", err)
	}
	return body, nil
}

// scanUserIDOrder walks the raw packet stream and records user-id packets in
// wire order.
func scanUserIDOrder(body []byte) []string {
	var uids []string
	seen := make(map[string]bool)
	packets := packet.NewReader(bytes.NewReader(body))
	for {
		p, err := packets.Next()
		if err != nil {
			break
		}
		if uid, ok := p.(*packet.UserId); ok {
			id := strings.TrimSpace(uid.Id)
			if id != "" && !seen[uid.Id] {
				seen[uid.Id] = true
				uids = append(uids, uid.Id)
			}
		}
	}
	return uids
}
