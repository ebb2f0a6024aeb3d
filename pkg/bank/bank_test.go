package bank

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/neilotoole/slogt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wavesplatform/gomarket/pkg/errs"
	"github.com/wavesplatform/gomarket/pkg/keyvalue"
	"github.com/wavesplatform/gomarket/pkg/proto"
	"github.com/wavesplatform/gomarket/pkg/state"
)

func newTestBank(t *testing.T) (*Bank, *state.Storage) {
	kv, err := keyvalue.NewKeyVal(keyvalue.Options{DisableBloom: true}, slogt.New(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })
	s := state.NewStorage(kv, 100*time.Millisecond)
	return New(s, slogt.New(t)), s
}

func TestDepositCollectPayout(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBank(t)
	alice := proto.MustAddressFromData(proto.CustomScheme, []byte("alice"))
	bob := proto.MustAddressFromData(proto.CustomScheme, []byte("bob"))

	balance, err := b.Deposit(ctx, alice, 100)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), balance)

	_, err = b.Deposit(ctx, alice, 0)
	assert.ErrorIs(t, err, ErrZeroAmount)

	require.NoError(t, b.Collect(ctx, alice, 30))
	require.NoError(t, b.Payout(ctx, bob, 30))

	balance, err = b.Balance(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(70), balance)
	balance, err = b.Balance(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, uint64(30), balance)

	err = b.Collect(ctx, bob, 31)
	assert.ErrorIs(t, err, errs.ErrInsufficientFunds)
	balance, err = b.Balance(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, uint64(30), balance)

	require.NoError(t, b.Collect(ctx, bob, 0))
}

func TestPayoutOverflow(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBank(t)
	alice := proto.MustAddressFromData(proto.CustomScheme, []byte("alice"))
	_, err := b.Deposit(ctx, alice, math.MaxUint64)
	require.NoError(t, err)
	assert.ErrorIs(t, b.Payout(ctx, alice, 1), errs.ErrBalanceOverflow)
}

func TestJoinedTransaction(t *testing.T) {
	ctx := context.Background()
	b, s := newTestBank(t)
	alice := proto.MustAddressFromData(proto.CustomScheme, []byte("alice"))
	_, err := b.Deposit(ctx, alice, 10)
	require.NoError(t, err)

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	txCtx := state.ContextWithTx(ctx, tx)
	require.NoError(t, b.Collect(txCtx, alice, 10))

	balance, err := b.Balance(txCtx, alice)
	require.NoError(t, err)
	assert.Zero(t, balance)
	balance, err = b.Balance(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), balance, "staged collect is not visible outside")

	tx.Discard()
	balance, err = b.Balance(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), balance)
}
