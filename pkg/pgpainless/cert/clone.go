package cert

import (
	"slices"

	"github.com/ProtonMail/go-crypto/openpgp"
)

// cloneEntity copies an entity by structural sharing: the container slices
// and the identity map are fresh, the packets behind them are shared. A
// mutation on the clone therefore replaces or appends packets without ever
// touching the original.
func cloneEntity(e *openpgp.Entity) *openpgp.Entity {
	ne := &openpgp.Entity{
		PrimaryKey:    e.PrimaryKey,
		PrivateKey:    e.PrivateKey,
		Identities:    make(map[string]*openpgp.Identity, len(e.Identities)),
		Revocations:   slices.Clone(e.Revocations),
		Subkeys:       slices.Clone(e.Subkeys),
		SelfSignature: e.SelfSignature,
		Signatures:    slices.Clone(e.Signatures),
	}
	for name, ident := range e.Identities {
		ne.Identities[name] = &openpgp.Identity{
			Name:          ident.Name,
			UserId:        ident.UserId,
			SelfSignature: ident.SelfSignature,
			Revocations:   slices.Clone(ident.Revocations),
			Signatures:    slices.Clone(ident.Signatures),
		}
	}
	for i := range ne.Subkeys {
		ne.Subkeys[i].Revocations = slices.Clone(ne.Subkeys[i].Revocations)
	}
	return ne
}
