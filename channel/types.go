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

// Package channel implements the bilateral payment-channel settlement
// core: the channel record, its store, the guard predicates, and the
// public settlement protocol (Open/Join/Close/Challenge/Redeem).
package channel

import (
	"encoding/hex"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// IDLength is the byte length of a channel identifier.
const IDLength = 32

// ID uniquely identifies a channel across its entire lifetime.
type ID [IDLength]byte

// String renders the id as a hex string, matching how addresses and
// hashes are printed elsewhere in this module.
func (id ID) String() string {
	return "0x" + hex.EncodeToString(id[:])
}

// Status is the channel's lifecycle state.
type Status uint8

const (
	// Open is the initial state after Open, before any receipt is closed in.
	Open Status = iota
	// OnChallenge is entered once a receipt has been closed in and a
	// non-zero challenge period is outstanding.
	OnChallenge
	// Closed is absorbing: funds have been distributed, no further
	// mutation is possible.
	Closed
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case Open:
		return "OPEN"
	case OnChallenge:
		return "ON_CHALLENGE"
	case Closed:
		return "CLOSED"
	default:
		return fmt.Sprintf("Status(%d)", uint8(s))
	}
}

// Record is the persistent entity the store owns. Balances use uint256
// so that conservation checks are expressed as checked 256-bit
// arithmetic, per the canonical on-chain representation. The nonce is a
// uint64; on the wire it is left-padded to a 32-byte word.
type Record struct {
	ID    ID
	Token common.Address

	PartyA common.Address
	PartyB common.Address

	BalanceA *uint256.Int
	BalanceB *uint256.Int

	// Joined disambiguates "B has not joined yet" from "B joined with a
	// zero deposit", which a balanceB==0 check alone cannot.
	Joined bool

	Nonce uint64

	CloseTime       uint64
	ChallengePeriod uint64

	Status Status
}

// Total returns balanceA+balanceB, i.e. the amount owed to the two
// parties combined. Reported as an error rather than panicking so
// callers that must propagate Overflow can do so uniformly.
func (r Record) Total() (*uint256.Int, error) {
	sum, overflow := new(uint256.Int).AddOverflow(r.BalanceA, r.BalanceB)
	if overflow {
		return nil, ErrOverflow
	}
	return sum, nil
}

// clone returns a deep-enough copy: the uint256 pointers are copied by
// value so mutating the clone's balances never aliases the original.
func (r Record) clone() Record {
	c := r
	c.BalanceA = new(uint256.Int).Set(r.BalanceA)
	c.BalanceB = new(uint256.Int).Set(r.BalanceB)
	return c
}
