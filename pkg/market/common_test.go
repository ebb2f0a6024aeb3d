package market_test

import (
	"sync"
	"testing"
	"time"

	"github.com/neilotoole/slogt"
	"github.com/stretchr/testify/require"

	"github.com/wavesplatform/gomarket/pkg/keyvalue"
	"github.com/wavesplatform/gomarket/pkg/proto"
	"github.com/wavesplatform/gomarket/pkg/state"
)

var (
	operator = addr("marketplace")
	creator  = addr("creator")
	seller   = addr("seller")
	buyer    = addr("buyer")
)

func addr(seed string) proto.Address {
	return proto.MustAddressFromData(proto.CustomScheme, []byte(seed))
}

func newTestStorage(t *testing.T) *state.Storage {
	kv, err := keyvalue.NewKeyVal(keyvalue.Options{DisableBloom: true}, slogt.New(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })
	return state.NewStorage(kv, 100*time.Millisecond)
}

type recorder struct {
	mu     sync.Mutex
	events []proto.Event
}

func (r *recorder) Notify(events ...proto.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
}

func (r *recorder) types() []proto.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := make([]proto.EventType, len(r.events))
	for i, e := range r.events {
		res[i] = e.Type
	}
	return res
}

func (r *recorder) last() proto.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}
