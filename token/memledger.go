package token

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	psync "polycry.pt/poly-go/sync"
)

// MemLedger is an in-memory reference Ledger for tests and the demo
// binary, standing in for a real ERC20-style token contract. It models
// balances and a per-owner allowance to the caller passed to
// NewMemLedger (the escrow), the same authenticated-transfer shape a
// real token contract's transferFrom/transfer pair has.
type MemLedger struct {
	mu         psync.Mutex
	caller     common.Address
	balances   map[common.Address]*big.Int
	allowances map[common.Address]*big.Int
}

// NewMemLedger returns an empty ledger that authenticates TransferFrom
// calls as being made by caller (the escrow's own address).
func NewMemLedger(caller common.Address) *MemLedger {
	return &MemLedger{
		caller:     caller,
		balances:   make(map[common.Address]*big.Int),
		allowances: make(map[common.Address]*big.Int),
	}
}

// Mint credits amount to addr, for test and demo setup only.
func (m *MemLedger) Mint(addr common.Address, amount *big.Int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[addr] = new(big.Int).Add(m.balanceLocked(addr), amount)
}

// Approve grants the ledger's caller an allowance to spend amount out
// of owner's balance, for test and demo setup only.
func (m *MemLedger) Approve(owner common.Address, amount *big.Int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.allowances[owner] = new(big.Int).Set(amount)
}

// BalanceOf returns addr's current balance.
func (m *MemLedger) BalanceOf(addr common.Address) *big.Int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return new(big.Int).Set(m.balanceLocked(addr))
}

func (m *MemLedger) balanceLocked(addr common.Address) *big.Int {
	b, ok := m.balances[addr]
	if !ok {
		return big.NewInt(0)
	}
	return b
}

// TransferFrom implements Ledger.
func (m *MemLedger) TransferFrom(owner, recipient common.Address, amount *big.Int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	allowance, ok := m.allowances[owner]
	if !ok || allowance.Cmp(amount) < 0 {
		return false, nil
	}
	balance := m.balanceLocked(owner)
	if balance.Cmp(amount) < 0 {
		return false, nil
	}

	m.balances[owner] = new(big.Int).Sub(balance, amount)
	m.balances[recipient] = new(big.Int).Add(m.balanceLocked(recipient), amount)
	m.allowances[owner] = new(big.Int).Sub(allowance, amount)
	return true, nil
}

// Transfer implements Ledger, moving amount from the ledger's caller
// (the escrow) to recipient.
func (m *MemLedger) Transfer(recipient common.Address, amount *big.Int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	balance := m.balanceLocked(m.caller)
	if balance.Cmp(amount) < 0 {
		return false, nil
	}
	m.balances[m.caller] = new(big.Int).Sub(balance, amount)
	m.balances[recipient] = new(big.Int).Add(m.balanceLocked(recipient), amount)
	return true, nil
}

var _ Ledger = (*MemLedger)(nil)
