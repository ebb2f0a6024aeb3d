package events

import (
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/neilotoole/slogt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wavesplatform/gomarket/pkg/proto"
)

func TestNatsPublisher(t *testing.T) {
	srv, err := StartEmbeddedServer("127.0.0.1", -1)
	require.NoError(t, err)
	defer srv.Shutdown()

	nc, err := nats.Connect(srv.ClientURL())
	require.NoError(t, err)
	defer nc.Close()
	msgs := make(chan *nats.Msg, 4)
	sub, err := nc.ChanSubscribe(DefaultSubjectPrefix+".>", msgs)
	require.NoError(t, err)
	defer func() { _ = sub.Unsubscribe() }()
	require.NoError(t, nc.Flush())

	p, err := NewNatsPublisher(srv.ClientURL(), "", slogt.New(t))
	require.NoError(t, err)

	e := testEvents(1)[0]
	e.Seq = 7
	require.NoError(t, p.Publish(e))
	require.NoError(t, p.Close())

	select {
	case m := <-msgs:
		assert.Equal(t, Subject(DefaultSubjectPrefix, proto.ItemListedEvent), m.Subject)
		r, err := DecodeEvent(m.Data)
		require.NoError(t, err)
		assert.Equal(t, e, r)
	case <-time.After(5 * time.Second):
		require.FailNow(t, "event was not published")
	}
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "market.events.ItemBought", Subject(DefaultSubjectPrefix, proto.ItemBoughtEvent))
}
