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

// Package wire implements the canonical, tightly-packed byte layouts
// that channel ids and receipt digests are hashed from. This is a wire
// format shared with off-chain signing tooling; it must never be
// replaced by a length-prefixed or self-describing encoding such as
// encoding/gob or JSON.
package wire

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// ChannelID is the 32-byte opaque channel identifier. Defined here
// (rather than imported from package channel) so this package has no
// dependency on the settlement core, keeping the encoder a leaf
// component.
type ChannelID [32]byte

// ComputeChannelID hashes token (20) ‖ partyA (20) ‖ partyB (20) ‖
// blockNumber (32, big-endian) under Keccak-256. blockNumber is an
// opaque nonce drawn from the execution environment; its value is
// never interpreted, only hashed, so synthesizing two channels for the
// same (token, partyA, partyB) at different block numbers cannot
// collide.
func ComputeChannelID(token, partyA, partyB common.Address, blockNumber uint64) ChannelID {
	buf := make([]byte, 0, 20+20+20+32)
	buf = append(buf, token.Bytes()...)
	buf = append(buf, partyA.Bytes()...)
	buf = append(buf, partyB.Bytes()...)
	buf = append(buf, leftPadUint64(blockNumber)...)
	return ChannelID(crypto.Keccak256Hash(buf))
}

// ReceiptDigest hashes channelID (32) ‖ balanceA (32, big-endian) ‖
// balanceB (32, big-endian) ‖ nonce (32, big-endian) under Keccak-256.
// This is the digest both parties sign off-chain and that close/
// challenge verify on submission.
func ReceiptDigest(id ChannelID, balanceA, balanceB *uint256.Int, nonce uint64) [32]byte {
	buf := make([]byte, 0, 32+32+32+32)
	buf = append(buf, id[:]...)
	balanceABytes := balanceA.Bytes32()
	balanceBBytes := balanceB.Bytes32()
	buf = append(buf, balanceABytes[:]...)
	buf = append(buf, balanceBBytes[:]...)
	buf = append(buf, leftPadUint64(nonce)...)
	return crypto.Keccak256Hash(buf)
}

// leftPadUint64 renders v as a 32-byte big-endian word, matching how a
// uint256 scalar is laid out on the wire.
func leftPadUint64(v uint64) []byte {
	var word [32]byte
	binary.BigEndian.PutUint64(word[24:], v)
	return word[:]
}
