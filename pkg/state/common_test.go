package state

import (
	"context"
	"testing"
	"time"

	"github.com/neilotoole/slogt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wavesplatform/gomarket/pkg/keyvalue"
	"github.com/wavesplatform/gomarket/pkg/proto"
)

func newTestStorage(t *testing.T) *Storage {
	kv, err := keyvalue.NewKeyVal(keyvalue.Options{
		Bloom: keyvalue.BloomFilterParams{N: 1000, FalsePositiveProbability: 0.01},
	}, slogt.New(t))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, kv.Close())
	})
	return NewStorage(kv, 100*time.Millisecond)
}

func testAddress(seed string) proto.Address {
	return proto.MustAddressFromData(proto.CustomScheme, []byte(seed))
}

func begin(t *testing.T, s *Storage) *Tx {
	tx, err := s.Begin(context.Background())
	require.NoError(t, err)
	return tx
}
