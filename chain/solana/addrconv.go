package solana

import (
	sollib "github.com/gagliardetto/solana-go"
)

// accountMetas turns the display accounts of an instruction back into account metas for
// the solana-go program decoders. Accounts loaded from address lookup tables have no
// known public key and are left zero.
func accountMetas(accounts []string) []*sollib.AccountMeta {
	metas := make([]*sollib.AccountMeta, len(accounts))
	for i, a := range accounts {
		pk, err := sollib.PublicKeyFromBase58(a)
		if err != nil {
			pk = sollib.PublicKey{}
		}
		metas[i] = sollib.Meta(pk)
	}

	return metas
}
