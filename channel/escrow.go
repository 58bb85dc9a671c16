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

package channel

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"perun.network/paychan-core/env"
	"perun.network/paychan-core/token"
	"perun.network/paychan-core/wallet"
	"perun.network/paychan-core/wire"
)

// Escrow is the settlement protocol of §4.F: the five public
// operations, composed over the Store, the token Gateway, the
// signature verifier, and the execution environment. It is the
// component a caller actually holds; Store, Gateway, wallet.Verify and
// wire's encoder are its leaves.
type Escrow struct {
	store   *Store
	gateway *token.Gateway
	env     env.Environment
	sink    EventSink
}

// NewEscrow wires together a fresh settlement protocol instance.
func NewEscrow(store *Store, gateway *token.Gateway, environment env.Environment, sink EventSink) *Escrow {
	return &Escrow{store: store, gateway: gateway, env: environment, sink: sink}
}

// Channel returns a copy of the channel record for id, for read-only,
// historical query: records persist forever once CLOSED.
func (e *Escrow) Channel(id ID) (Record, bool) {
	return e.store.Get(id)
}

// Channels returns a copy of every channel record ever created.
func (e *Escrow) Channels() []Record {
	return e.store.All()
}

// Open allocates a new channel and pulls partyA's deposit into escrow.
// The caller (per env.Environment) becomes partyA.
func (e *Escrow) Open(tok common.Address, counterparty common.Address, amount *uint256.Int, challengePeriod uint64) (ID, error) {
	partyA := e.env.Caller()
	if partyA == counterparty {
		return ID{}, ErrSelfChannel
	}
	if amount.IsZero() {
		return ID{}, ErrZeroDeposit
	}

	id := ID(wire.ComputeChannelID(tok, partyA, counterparty, e.env.BlockNumber()))
	if e.store.Contains(id) {
		return ID{}, ErrIDCollision
	}

	record := Record{
		ID:              id,
		Token:           tok,
		PartyA:          partyA,
		PartyB:          counterparty,
		BalanceA:        new(uint256.Int).Set(amount),
		BalanceB:        uint256.NewInt(0),
		Joined:          false,
		Nonce:           0,
		CloseTime:       0,
		ChallengePeriod: challengePeriod,
		Status:          Open,
	}

	// The record does not yet exist anywhere observable, so a failed
	// Pull leaves nothing to roll back: inserting only after the pull
	// succeeds is already atomic.
	if err := e.gateway.Pull(tok, partyA, amount); err != nil {
		return ID{}, err
	}
	if err := e.store.Insert(record); err != nil {
		return ID{}, err
	}

	e.sink.Emit(Event{Type: EventChannelOpened, ChannelID: id})
	return id, nil
}

// Join completes the two-sided deposit. The caller must be the
// channel's partyB.
func (e *Escrow) Join(id ID, amount *uint256.Int) error {
	caller := e.env.Caller()
	record, ok := e.store.Get(id)
	if !ok {
		return ErrNoSuchChannel
	}
	if caller != record.PartyB {
		return ErrNotAParticipant
	}
	if err := isOpen(record); err != nil {
		return err
	}
	if record.Joined {
		return ErrDoubleJoin
	}

	if err := e.gateway.Pull(record.Token, caller, amount); err != nil {
		return err
	}

	record.BalanceB = new(uint256.Int).Set(amount)
	record.Joined = true
	e.store.put(record)

	e.sink.Emit(Event{Type: EventCounterPartyJoined, ChannelID: id})
	return nil
}

// Close submits the first mutually signed receipt for a channel. If the
// channel's challenge period is zero, funds are distributed
// immediately; otherwise the channel enters ON_CHALLENGE.
func (e *Escrow) Close(id ID, nonce uint64, balanceA, balanceB *uint256.Int, sigA, sigB []byte) error {
	caller := e.env.Caller()
	record, ok := e.store.Get(id)
	if !ok {
		return ErrNoSuchChannel
	}
	if err := onlyParties(record, caller); err != nil {
		return err
	}
	if err := isOpen(record); err != nil {
		return err
	}
	if err := e.verifyReceiptSignatures(record, nonce, balanceA, balanceB, sigA, sigB); err != nil {
		return err
	}

	updated, err := e.updateReceipt(record, nonce, balanceA, balanceB)
	if err != nil {
		return err
	}

	if updated.ChallengePeriod == 0 {
		return e.distributeFunds(updated, record)
	}

	e.store.put(updated)
	e.sink.Emit(Event{Type: EventChannelOnChallenge, ChannelID: id})
	return nil
}

// Challenge overrides a submitted receipt with a newer, strictly
// higher-nonce one, during the challenge period.
func (e *Escrow) Challenge(id ID, nonce uint64, balanceA, balanceB *uint256.Int, sigA, sigB []byte) error {
	caller := e.env.Caller()
	record, ok := e.store.Get(id)
	if !ok {
		return ErrNoSuchChannel
	}
	if err := onlyParties(record, caller); err != nil {
		return err
	}
	if err := isOnChallenge(record); err != nil {
		return err
	}
	if err := isDuringChallengePeriod(record, e.env.Now()); err != nil {
		return err
	}
	if nonce <= record.Nonce {
		return ErrStaleNonce
	}
	if err := e.verifyReceiptSignatures(record, nonce, balanceA, balanceB, sigA, sigB); err != nil {
		return err
	}

	updated, err := e.updateReceipt(record, nonce, balanceA, balanceB)
	if err != nil {
		return err
	}

	e.store.put(updated)
	e.sink.Emit(Event{Type: EventChannelChallenged, ChannelID: id})
	return nil
}

// Redeem forces distribution once the challenge deadline has passed
// without a further challenge.
func (e *Escrow) Redeem(id ID) error {
	caller := e.env.Caller()
	record, ok := e.store.Get(id)
	if !ok {
		return ErrNoSuchChannel
	}
	if err := onlyParties(record, caller); err != nil {
		return err
	}
	if err := isOnChallenge(record); err != nil {
		return err
	}
	if err := challengePeriodWasOver(record, e.env.Now()); err != nil {
		return err
	}
	return e.distributeFunds(record, record)
}

// verifyReceiptSignatures checks that both parties signed exactly the
// (id, nonce, balanceA, balanceB) tuple being submitted — there is no
// gap between what is verified and what updateReceipt goes on to store.
func (e *Escrow) verifyReceiptSignatures(record Record, nonce uint64, balanceA, balanceB *uint256.Int, sigA, sigB []byte) error {
	digest := wire.ReceiptDigest(wire.ChannelID(record.ID), balanceA, balanceB, nonce)

	okA, err := wallet.Verify(digest, sigA, record.PartyA)
	if err != nil || !okA {
		return ErrInvalidSignature
	}
	okB, err := wallet.Verify(digest, sigB, record.PartyB)
	if err != nil || !okB {
		return ErrInvalidSignature
	}
	return nil
}

// updateReceipt is the shared routine of §4.F: it checks conservation,
// then returns the record with the new nonce/balances applied, the
// close time set on first use, and status advanced to ON_CHALLENGE. It
// never mutates the Store itself — callers decide when to commit.
func (e *Escrow) updateReceipt(record Record, nonce uint64, balanceA, balanceB *uint256.Int) (Record, error) {
	total, err := record.Total()
	if err != nil {
		return Record{}, err
	}
	newTotal, overflow := new(uint256.Int).AddOverflow(balanceA, balanceB)
	if overflow {
		return Record{}, ErrOverflow
	}
	if !newTotal.Eq(total) {
		return Record{}, ErrConservationViolated
	}

	updated := record.clone()
	updated.Nonce = nonce
	updated.BalanceA = new(uint256.Int).Set(balanceA)
	updated.BalanceB = new(uint256.Int).Set(balanceB)
	if updated.CloseTime == 0 {
		updated.CloseTime = e.env.Now()
	}
	updated.Status = OnChallenge
	return updated, nil
}

// distributeFunds is the shared routine of §4.F. It commits the CLOSED
// status before issuing any token transfer (check-effects-interactions:
// a reentrant call during Push observes a channel that is already
// CLOSED), and restores the pre-transaction snapshot into the Store if
// either transfer fails. A push to partyA that already succeeded is not
// reversed when the following push to partyB fails.
func (e *Escrow) distributeFunds(record, snapshot Record) error {
	if err := notClosed(record); err != nil {
		return err
	}

	record.Status = Closed
	e.store.put(record)

	if err := e.gateway.Push(record.Token, record.PartyA, record.BalanceA); err != nil {
		e.store.put(snapshot)
		return err
	}
	if err := e.gateway.Push(record.Token, record.PartyB, record.BalanceB); err != nil {
		e.store.put(snapshot)
		return err
	}

	e.sink.Emit(Event{Type: EventChannelClosed, ChannelID: record.ID})
	return nil
}
