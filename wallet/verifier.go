// Copyright 2026 PolyCrypt GmbH
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package wallet implements the prefixed-message signature scheme the
// settlement core verifies receipts against, and the off-chain Account
// type that produces them. Only Verify is part of the on-chain core;
// Account is the normative off-chain signer the wire format is
// co-designed with.
package wallet

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// SignatureLength is the length in bytes of a 65-byte (r, s, v) signature.
const SignatureLength = 65

// ethSignedMessagePrefix is the fixed ASCII banner off-chain signing
// tools impose before hashing a 32-byte digest. It must be reproduced
// byte for byte — any deviation recovers a different address entirely.
const ethSignedMessagePrefix = "\x19Ethereum Signed Message:\n32"

// PrefixedDigest hashes the banner concatenated with digest, producing
// the value that is actually signed and recovered against.
func PrefixedDigest(digest [32]byte) [32]byte {
	return crypto.Keccak256Hash([]byte(ethSignedMessagePrefix), digest[:])
}

// Verify reports whether sig is a valid 65-byte (r, s, v) secp256k1
// signature by expected over digest, once prefixed. A malformed
// signature — wrong length, invalid recovery id, or a non-canonical
// (high-s) value — is reported as ErrMalformedSignature rather than
// silently recovering a spurious address.
func Verify(digest [32]byte, sig []byte, expected common.Address) (bool, error) {
	if len(sig) != SignatureLength {
		return false, ErrMalformedSignature
	}

	r := new(big.Int).SetBytes(sig[0:32])
	s := new(big.Int).SetBytes(sig[32:64])
	v := sig[64]
	if v == 27 || v == 28 {
		v -= 27
	}
	if v != 0 && v != 1 {
		return false, ErrMalformedSignature
	}
	if !crypto.ValidateSignatureValues(v, r, s, true) {
		return false, ErrMalformedSignature
	}

	// crypto.SigToPub wants the recovery id as sig[64] in {0,1}.
	normalized := make([]byte, SignatureLength)
	copy(normalized, sig)
	normalized[64] = v

	prefixed := PrefixedDigest(digest)
	pub, err := crypto.SigToPub(prefixed[:], normalized)
	if err != nil {
		return false, ErrMalformedSignature
	}

	return crypto.PubkeyToAddress(*pub) == expected, nil
}
