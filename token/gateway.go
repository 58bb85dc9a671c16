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

package token

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// ErrTransferFailed reports that the underlying ledger rejected a
// transfer (a falsey return, not a transport error).
var ErrTransferFailed = errors.New("token: ledger rejected transfer")

// ErrUnknownToken reports that no Ledger is registered for a channel's
// token address. A channel can only ever reference a token that was
// registered with the Gateway before Open was called.
var ErrUnknownToken = errors.New("token: no ledger registered for this token address")

// Registry resolves a channel's opaque token reference to the Ledger
// that backs it, so one Gateway can serve channels that each reference
// a different token contract.
type Registry struct {
	ledgers map[common.Address]Ledger
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{ledgers: make(map[common.Address]Ledger)}
}

// Register associates token with ledger.
func (r *Registry) Register(token common.Address, ledger Ledger) {
	r.ledgers[token] = ledger
}

func (r *Registry) resolve(token common.Address) (Ledger, error) {
	l, ok := r.ledgers[token]
	if !ok {
		return nil, ErrUnknownToken
	}
	return l, nil
}

// Gateway pulls tokens into escrow on deposit and pushes them out on
// distribution, trusting each registered ledger to be well-behaved
// (non-reentrant, boolean-returning) — the state machine, not this
// type, is the defense against reentrancy (check-effects-interactions).
type Gateway struct {
	registry *Registry
	self     common.Address
}

// NewGateway returns a Gateway resolving tokens through registry, using
// self as the escrow's own address (the recipient of every Pull).
func NewGateway(registry *Registry, self common.Address) *Gateway {
	return &Gateway{registry: registry, self: self}
}

// Pull draws amount from from into escrow on behalf of token. A zero
// amount is a successful no-op: the ledger is not called at all.
func (g *Gateway) Pull(token common.Address, from common.Address, amount *uint256.Int) error {
	if amount.IsZero() {
		return nil
	}
	ledger, err := g.registry.resolve(token)
	if err != nil {
		return err
	}
	ok, err := ledger.TransferFrom(from, g.self, amount.ToBig())
	if err != nil {
		return errors.WithMessage(err, "token: pull transport failed")
	}
	if !ok {
		return ErrTransferFailed
	}
	return nil
}

// Push sends amount from escrow to to on behalf of token. A zero
// amount is a successful no-op: the ledger is not called at all.
func (g *Gateway) Push(token common.Address, to common.Address, amount *uint256.Int) error {
	if amount.IsZero() {
		return nil
	}
	ledger, err := g.registry.resolve(token)
	if err != nil {
		return err
	}
	ok, err := ledger.Transfer(to, amount.ToBig())
	if err != nil {
		return errors.WithMessage(err, "token: push transport failed")
	}
	if !ok {
		return ErrTransferFailed
	}
	return nil
}
