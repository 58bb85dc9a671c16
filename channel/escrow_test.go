package channel_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"perun.network/paychan-core/channel"
	"perun.network/paychan-core/env"
	"perun.network/paychan-core/token"
	"perun.network/paychan-core/wallet"
	"perun.network/paychan-core/wire"
)

// harness bundles one fully wired settlement instance plus the two
// parties' off-chain signing accounts and the token under escrow.
type harness struct {
	t       *testing.T
	escrow  *channel.Escrow
	store   *channel.Store
	ledger  *token.MemLedger
	sink    *channel.ChanSink
	static  *env.Static
	tok     common.Address
	alice   *wallet.Account
	bob     *wallet.Account
	escrowA common.Address
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	alice, err := wallet.NewRandomAccount()
	require.NoError(t, err)
	bob, err := wallet.NewRandomAccount()
	require.NoError(t, err)

	escrowAddr := common.HexToAddress("0xE5C40")
	tok := common.HexToAddress("0x70CE4")

	ledger := token.NewMemLedger(escrowAddr)
	ledger.Mint(alice.Address(), big.NewInt(1_000))
	ledger.Mint(bob.Address(), big.NewInt(1_000))

	registry := token.NewRegistry()
	registry.Register(tok, ledger)
	gateway := token.NewGateway(registry, escrowAddr)

	static := &env.Static{CallerAddr: alice.Address(), SelfAddr: escrowAddr, Block: 1, NowSeconds: 1_000}
	store := channel.NewStore()
	sink := channel.NewChanSink(16)

	return &harness{
		t: t, escrow: channel.NewEscrow(store, gateway, static, sink),
		store: store, ledger: ledger, sink: sink, static: static,
		tok: tok, alice: alice, bob: bob, escrowA: escrowAddr,
	}
}

// openAndJoin deposits 100 from alice and 50 from bob, returning the
// channel id.
func (h *harness) openAndJoin(challengePeriod uint64) channel.ID {
	h.t.Helper()
	h.ledger.Approve(h.alice.Address(), big.NewInt(100))
	h.static.CallerAddr = h.alice.Address()
	id, err := h.escrow.Open(h.tok, h.bob.Address(), uint256.NewInt(100), challengePeriod)
	require.NoError(h.t, err)

	h.ledger.Approve(h.bob.Address(), big.NewInt(50))
	h.static.CallerAddr = h.bob.Address()
	require.NoError(h.t, h.escrow.Join(id, uint256.NewInt(50)))
	return id
}

func (h *harness) sign(id channel.ID, nonce uint64, balanceA, balanceB *uint256.Int) (sigA, sigB []byte) {
	h.t.Helper()
	digest := wire.ReceiptDigest(wire.ChannelID(id), balanceA, balanceB, nonce)
	sigA, err := h.alice.SignReceipt(digest)
	require.NoError(h.t, err)
	sigB, err = h.bob.SignReceipt(digest)
	require.NoError(h.t, err)
	return sigA, sigB
}

// S1: no-challenge close distributes funds immediately.
func TestEscrow_CloseWithZeroChallengePeriodDistributesImmediately(t *testing.T) {
	h := newHarness(t)
	id := h.openAndJoin(0)

	sigA, sigB := h.sign(id, 1, uint256.NewInt(70), uint256.NewInt(80))
	h.static.CallerAddr = h.alice.Address()
	require.NoError(t, h.escrow.Close(id, 1, uint256.NewInt(70), uint256.NewInt(80), sigA, sigB))

	rec, ok := h.escrow.Channel(id)
	require.True(t, ok)
	require.Equal(t, channel.Closed, rec.Status)
	require.Equal(t, big.NewInt(970), h.ledger.BalanceOf(h.alice.Address()))
	require.Equal(t, big.NewInt(1_030), h.ledger.BalanceOf(h.bob.Address()))

	evt := <-h.sink.Events()
	require.Equal(t, channel.EventChannelOpened, evt.Type)
	evt = <-h.sink.Events()
	require.Equal(t, channel.EventCounterPartyJoined, evt.Type)
	evt = <-h.sink.Events()
	require.Equal(t, channel.EventChannelClosed, evt.Type)
}

// S2: challenged close enters ON_CHALLENGE, a later challenge overrides
// the receipt, and redeem after the deadline distributes the final
// balances.
func TestEscrow_ChallengedCloseThenRedeemAfterDeadline(t *testing.T) {
	h := newHarness(t)
	id := h.openAndJoin(100)

	sigA, sigB := h.sign(id, 1, uint256.NewInt(90), uint256.NewInt(60))
	h.static.CallerAddr = h.alice.Address()
	require.NoError(t, h.escrow.Close(id, 1, uint256.NewInt(90), uint256.NewInt(60), sigA, sigB))

	rec, ok := h.escrow.Channel(id)
	require.True(t, ok)
	require.Equal(t, channel.OnChallenge, rec.Status)

	sigA2, sigB2 := h.sign(id, 2, uint256.NewInt(70), uint256.NewInt(80))
	h.static.CallerAddr = h.bob.Address()
	require.NoError(t, h.escrow.Challenge(id, 2, uint256.NewInt(70), uint256.NewInt(80), sigA2, sigB2))

	h.static.NowSeconds = rec.CloseTime + 100 + 1
	require.NoError(t, h.escrow.Redeem(id))

	final, ok := h.escrow.Channel(id)
	require.True(t, ok)
	require.Equal(t, channel.Closed, final.Status)
	require.True(t, final.BalanceA.Eq(uint256.NewInt(70)))
	require.True(t, final.BalanceB.Eq(uint256.NewInt(80)))
}

// S3: a challenge with a nonce that does not strictly increase is
// rejected, and leaves the prior receipt untouched.
func TestEscrow_StaleChallengeRejected(t *testing.T) {
	h := newHarness(t)
	id := h.openAndJoin(100)

	sigA, sigB := h.sign(id, 5, uint256.NewInt(100), uint256.NewInt(50))
	h.static.CallerAddr = h.alice.Address()
	require.NoError(t, h.escrow.Close(id, 5, uint256.NewInt(100), uint256.NewInt(50), sigA, sigB))

	staleSigA, staleSigB := h.sign(id, 5, uint256.NewInt(90), uint256.NewInt(60))
	h.static.CallerAddr = h.bob.Address()
	err := h.escrow.Challenge(id, 5, uint256.NewInt(90), uint256.NewInt(60), staleSigA, staleSigB)
	require.ErrorIs(t, err, channel.ErrStaleNonce)

	rec, ok := h.escrow.Channel(id)
	require.True(t, ok)
	require.True(t, rec.BalanceA.Eq(uint256.NewInt(100)))
}

// S4: a receipt whose balances don't sum to the escrowed total is
// rejected as a conservation violation.
func TestEscrow_ConservationViolationRejected(t *testing.T) {
	h := newHarness(t)
	id := h.openAndJoin(100)

	sigA, sigB := h.sign(id, 1, uint256.NewInt(70), uint256.NewInt(70))
	h.static.CallerAddr = h.alice.Address()
	err := h.escrow.Close(id, 1, uint256.NewInt(70), uint256.NewInt(70), sigA, sigB)
	require.ErrorIs(t, err, channel.ErrConservationViolated)

	rec, ok := h.escrow.Channel(id)
	require.True(t, ok)
	require.Equal(t, channel.Open, rec.Status)
}

// S5: an outsider is rejected before signatures are ever checked, even
// with a garbage signature pair.
func TestEscrow_OutsiderBlockedBeforeSignatureCheck(t *testing.T) {
	h := newHarness(t)
	id := h.openAndJoin(100)

	outsider, err := wallet.NewRandomAccount()
	require.NoError(t, err)
	h.static.CallerAddr = outsider.Address()

	err = h.escrow.Close(id, 1, uint256.NewInt(70), uint256.NewInt(80), []byte("garbage"), []byte("garbage"))
	require.ErrorIs(t, err, channel.ErrNotAParticipant)
}

// S6: redeem before the challenge deadline, and a challenge after it,
// are both rejected.
func TestEscrow_RedeemBeforeDeadlineAndChallengeAfterAreRejected(t *testing.T) {
	h := newHarness(t)
	id := h.openAndJoin(100)

	sigA, sigB := h.sign(id, 1, uint256.NewInt(70), uint256.NewInt(80))
	h.static.CallerAddr = h.alice.Address()
	require.NoError(t, h.escrow.Close(id, 1, uint256.NewInt(70), uint256.NewInt(80), sigA, sigB))

	rec, ok := h.escrow.Channel(id)
	require.True(t, ok)

	h.static.NowSeconds = rec.CloseTime + 50
	require.ErrorIs(t, h.escrow.Redeem(id), channel.ErrChallengePeriodLive)

	h.static.NowSeconds = rec.CloseTime + 100 + 1
	sigA2, sigB2 := h.sign(id, 2, uint256.NewInt(60), uint256.NewInt(90))
	err := h.escrow.Challenge(id, 2, uint256.NewInt(60), uint256.NewInt(90), sigA2, sigB2)
	require.ErrorIs(t, err, channel.ErrChallengePeriodOver)
}

func TestEscrow_SelfChannelRejected(t *testing.T) {
	h := newHarness(t)
	h.static.CallerAddr = h.alice.Address()
	_, err := h.escrow.Open(h.tok, h.alice.Address(), uint256.NewInt(10), 0)
	require.ErrorIs(t, err, channel.ErrSelfChannel)
}

func TestEscrow_ZeroDepositRejected(t *testing.T) {
	h := newHarness(t)
	h.static.CallerAddr = h.alice.Address()
	_, err := h.escrow.Open(h.tok, h.bob.Address(), uint256.NewInt(0), 0)
	require.ErrorIs(t, err, channel.ErrZeroDeposit)
}

func TestEscrow_DoubleJoinRejected(t *testing.T) {
	h := newHarness(t)
	id := h.openAndJoin(0)

	h.ledger.Approve(h.bob.Address(), big.NewInt(10))
	h.static.CallerAddr = h.bob.Address()
	err := h.escrow.Join(id, uint256.NewInt(10))
	require.ErrorIs(t, err, channel.ErrDoubleJoin)
}
