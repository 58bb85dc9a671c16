// Package token implements the escrow's view of a fungible-token
// ledger: the consumed Ledger interface, a Gateway that treats
// zero-amount transfers as no-ops, and an in-memory Ledger for tests
// and the demo binary.
package token

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Ledger is the external fungible-token ledger the escrow calls into.
// Its own implementation is out of scope for this module: the escrow
// only ever calls it through this interface.
type Ledger interface {
	// TransferFrom moves amount from owner to recipient, authenticated
	// by a prior allowance owner granted to recipient. Returns false
	// (not an error) on an ordinary rejection such as insufficient
	// allowance or balance; an error is reserved for the transport
	// itself failing.
	TransferFrom(owner, recipient common.Address, amount *big.Int) (bool, error)
	// Transfer moves amount from the caller (the escrow) to recipient.
	Transfer(recipient common.Address, amount *big.Int) (bool, error)
}
