// Package env defines the seams onto the ambient execution environment:
// the authenticated caller of the current operation, the escrow's own
// address, a monotonic block-number nonce source, and a monotonic wall
// clock. The settlement core only ever reads these through the
// Environment interface; this package does not implement an actual
// blockchain.
package env

import "github.com/ethereum/go-ethereum/common"

// Environment is consumed by the settlement protocol for everything
// the surrounding execution context must supply.
type Environment interface {
	// Caller returns the authenticated initiator of the current
	// operation.
	Caller() common.Address
	// Self returns the escrow's own address. The settlement core does
	// not read it: Gateway.Pull's recipient is the address passed to
	// token.NewGateway.
	Self() common.Address
	// BlockNumber returns a monotonic scalar used only as an id-collision
	// nonce; its value is never otherwise interpreted.
	BlockNumber() uint64
	// Now returns a monotonic wall-clock reading in seconds.
	Now() uint64
}

// Static is a fixed Environment useful for tests and the demo binary,
// where the caller is set explicitly before every operation rather than
// recovered from request authentication.
type Static struct {
	CallerAddr common.Address
	SelfAddr   common.Address
	Block      uint64
	NowSeconds uint64
}

// Caller implements Environment.
func (s *Static) Caller() common.Address { return s.CallerAddr }

// Self implements Environment.
func (s *Static) Self() common.Address { return s.SelfAddr }

// BlockNumber implements Environment.
func (s *Static) BlockNumber() uint64 { return s.Block }

// Now implements Environment.
func (s *Static) Now() uint64 { return s.NowSeconds }

var _ Environment = (*Static)(nil)
