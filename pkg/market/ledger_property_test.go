package market_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/wavesplatform/gomarket/pkg/bank"
	"github.com/wavesplatform/gomarket/pkg/keyvalue"
	"github.com/wavesplatform/gomarket/pkg/market"
	"github.com/wavesplatform/gomarket/pkg/proto"
	"github.com/wavesplatform/gomarket/pkg/registry"
	"github.com/wavesplatform/gomarket/pkg/state"
)

// TestLedgerInvariants runs random sequences of operations and checks that funds are conserved
// and every listing is offered by the current owner of the asset.
func TestLedgerInvariants(t *testing.T) {
	accounts := []proto.Address{addr("a"), addr("b"), addr("c")}
	const deposit = 1000

	rapid.Check(t, func(rt *rapid.T) {
		ctx := context.Background()
		logger := slog.New(slog.DiscardHandler)
		kv, err := keyvalue.NewKeyVal(keyvalue.Options{DisableBloom: true}, logger)
		require.NoError(rt, err)
		defer func() { _ = kv.Close() }()
		s := state.NewStorage(kv, time.Second)
		b := bank.New(s, logger)
		r := registry.New(s, b, proto.CustomScheme, logger)
		l, err := market.NewLedger(s, r, b, operator, market.WithLogger(logger))
		require.NoError(rt, err)

		collection, err := r.CreateCollection(ctx, creator, "Random", 0)
		require.NoError(rt, err)
		var keys []proto.AssetKey
		for _, a := range accounts {
			_, err := b.Deposit(ctx, a, deposit)
			require.NoError(rt, err)
			id, err := r.Mint(ctx, collection, a, "", 0)
			require.NoError(rt, err)
			k := proto.NewAssetKey(collection, id)
			require.NoError(rt, r.Approve(ctx, a, k, operator))
			keys = append(keys, k)
		}

		steps := rapid.IntRange(1, 40).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			k := rapid.SampledFrom(keys).Draw(rt, "key")
			caller := rapid.SampledFrom(accounts).Draw(rt, "caller")
			price := rapid.Uint64Range(0, 300).Draw(rt, "price")
			switch rapid.IntRange(0, 5).Draw(rt, "op") {
			case 0:
				_ = l.ListItem(ctx, k, price, caller)
			case 1:
				_ = l.UpdateListing(ctx, k, price, caller)
			case 2:
				_ = l.CancelListing(ctx, k, caller)
			case 3:
				_ = l.BuyItem(ctx, k, price, caller)
			case 4:
				_ = l.WithdrawProceeds(ctx, caller)
			case 5:
				// Buyers approve the marketplace again to make resale possible.
				_ = r.Approve(ctx, caller, k, operator)
			}

			var total uint64
			for _, a := range accounts {
				balance, err := b.Balance(ctx, a)
				require.NoError(rt, err)
				proceeds, err := l.GetAddressProceeds(ctx, a)
				require.NoError(rt, err)
				total += balance + proceeds
			}
			if total != deposit*uint64(len(accounts)) {
				rt.Fatalf("funds are not conserved: %d", total)
			}
			entries, err := l.Listings(ctx, nil)
			require.NoError(rt, err)
			for _, e := range entries {
				if e.Price == 0 {
					rt.Fatalf("listing of %s with zero price", e.AssetKey)
				}
				owner, err := r.OwnerOf(ctx, e.AssetKey)
				require.NoError(rt, err)
				if owner != e.Seller {
					rt.Fatalf("listing of %s by %s, owner %s", e.AssetKey, e.Seller, owner)
				}
			}
		}
	})
}
