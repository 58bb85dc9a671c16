package wallet

import (
	"crypto/ecdsa"
	"crypto/rand"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Account is the off-chain signer both parties use to co-sign
// receipts. It is not part of the on-chain core — only Verify is —
// but it is the normative producer of the wire format the core
// verifies against.
type Account struct {
	privateKey *ecdsa.PrivateKey
}

// NewRandomAccount generates a fresh secp256k1 keypair.
func NewRandomAccount() (*Account, error) {
	priv, err := ecdsa.GenerateKey(crypto.S256(), rand.Reader)
	if err != nil {
		return nil, err
	}
	return &Account{privateKey: priv}, nil
}

// Address returns the 20-byte address derived from the account's
// public key, the low 20 bytes of Keccak-256 of the uncompressed
// public key.
func (a *Account) Address() common.Address {
	return crypto.PubkeyToAddress(a.privateKey.PublicKey)
}

// SignReceipt signs digest the way an off-chain co-signer must: it
// forms the prefixed digest (the same banner Verify reproduces), signs
// it with secp256k1, and renders v in the {27,28} convention most
// off-chain tooling emits, which Verify also accepts.
func (a *Account) SignReceipt(digest [32]byte) ([]byte, error) {
	prefixed := PrefixedDigest(digest)
	sig, err := crypto.Sign(prefixed[:], a.privateKey)
	if err != nil {
		return nil, err
	}
	sig[64] += 27
	return sig, nil
}
