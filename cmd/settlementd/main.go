// Command settlementd is a self-contained demonstration of the
// settlement core: it wires an in-memory token ledger and execution
// environment, opens a channel between two local accounts, closes it
// and, once the challenge period has elapsed, redeems it, and prints
// every emitted event. It has no
// network component; a real deployment of this core sits behind a
// chain RPC instead.
package main

import (
	"log"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	flags "github.com/jessevdk/go-flags"

	"perun.network/paychan-core/channel"
	"perun.network/paychan-core/env"
	"perun.network/paychan-core/token"
	"perun.network/paychan-core/wallet"
	"perun.network/paychan-core/wire"
)

// options is the settlementd command line.
type options struct {
	Deposit         uint64 `long:"deposit" default:"100" description:"PartyA's initial deposit"`
	CounterDeposit  uint64 `long:"counter-deposit" default:"50" description:"PartyB's deposit on join"`
	ChallengePeriod uint64 `long:"challenge-period" default:"3600" description:"Challenge period in seconds"`
	Verbose         bool   `short:"v" long:"verbose" description:"Verbose logging (parsed; the demo does not read it)"`
}

func main() {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flags.WroteHelp(err) {
			os.Exit(0)
		}
		log.Fatal(err)
	}

	if err := run(opts); err != nil {
		log.Fatal(err)
	}
}

func run(opts options) error {
	alice, err := wallet.NewRandomAccount()
	if err != nil {
		return err
	}
	bob, err := wallet.NewRandomAccount()
	if err != nil {
		return err
	}

	escrowAddr := common.HexToAddress("0x5e1500000000000000000000000000000000e5")
	tok := common.HexToAddress("0x7071e0000000000000000000000000000000ce")

	ledger := token.NewMemLedger(escrowAddr)
	ledger.Mint(alice.Address(), new(big.Int).SetUint64(opts.Deposit))
	ledger.Mint(bob.Address(), new(big.Int).SetUint64(opts.CounterDeposit))
	ledger.Approve(alice.Address(), new(big.Int).SetUint64(opts.Deposit))
	ledger.Approve(bob.Address(), new(big.Int).SetUint64(opts.CounterDeposit))

	registry := token.NewRegistry()
	registry.Register(tok, ledger)
	gateway := token.NewGateway(registry, escrowAddr)

	static := &env.Static{CallerAddr: alice.Address(), SelfAddr: escrowAddr, Block: 1, NowSeconds: 1}
	sink := channel.NewLogSink()
	escrow := channel.NewEscrow(channel.NewStore(), gateway, static, sink)

	static.CallerAddr = alice.Address()
	id, err := escrow.Open(tok, bob.Address(), uint256.NewInt(opts.Deposit), opts.ChallengePeriod)
	if err != nil {
		return err
	}
	log.Printf("opened channel %s", id)

	static.CallerAddr = bob.Address()
	if err := escrow.Join(id, uint256.NewInt(opts.CounterDeposit)); err != nil {
		return err
	}

	balanceA := uint256.NewInt(opts.Deposit)
	balanceB := uint256.NewInt(opts.CounterDeposit)
	digest := wire.ReceiptDigest(wire.ChannelID(id), balanceA, balanceB, 1)

	sigA, err := alice.SignReceipt(digest)
	if err != nil {
		return err
	}
	sigB, err := bob.SignReceipt(digest)
	if err != nil {
		return err
	}

	static.CallerAddr = alice.Address()
	if err := escrow.Close(id, 1, balanceA, balanceB, sigA, sigB); err != nil {
		return err
	}

	if opts.ChallengePeriod == 0 {
		log.Println("channel closed with no challenge period; funds distributed")
		return nil
	}

	rec, _ := escrow.Channel(id)
	static.NowSeconds = rec.CloseTime + opts.ChallengePeriod + 1
	static.CallerAddr = alice.Address()
	if err := escrow.Redeem(id); err != nil {
		return err
	}
	log.Println("challenge period elapsed; funds distributed")
	return nil
}
