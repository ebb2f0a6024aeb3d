package events

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/neilotoole/slogt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wavesplatform/gomarket/pkg/keyvalue"
	"github.com/wavesplatform/gomarket/pkg/proto"
)

func testEvents(n int) []proto.Event {
	seller := proto.MustAddressFromData(proto.CustomScheme, []byte("seller"))
	c := proto.MustAddressFromData(proto.CustomScheme, []byte("collection"))
	res := make([]proto.Event, n)
	for i := range res {
		res[i] = proto.NewItemListed(time.UnixMilli(int64(i)), proto.NewAssetKey(c, uint64(i+1)), seller, 10)
	}
	return res
}

func TestJournalAppendRange(t *testing.T) {
	kv, err := keyvalue.NewKeyVal(keyvalue.Options{DisableBloom: true}, slogt.New(t))
	require.NoError(t, err)
	defer kv.Close()
	j, err := NewJournal(kv)
	require.NoError(t, err)
	assert.Zero(t, j.LastSeq())

	evs := testEvents(5)
	require.NoError(t, j.Append(evs[:2]))
	require.NoError(t, j.Append(evs[2:]))
	assert.Equal(t, uint64(5), j.LastSeq())
	for i, e := range evs {
		assert.Equal(t, uint64(i+1), e.Seq)
	}

	page, err := j.Range(2, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, evs[1], page[0])
	assert.Equal(t, evs[2], page[1])

	all, err := j.Range(0, 0)
	require.NoError(t, err)
	assert.Equal(t, evs, all)

	empty, err := j.Range(6, 10)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestJournalReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db")
	kv, err := keyvalue.NewKeyVal(keyvalue.Options{Path: path, DisableBloom: true}, slogt.New(t))
	require.NoError(t, err)
	j, err := NewJournal(kv)
	require.NoError(t, err)
	require.NoError(t, j.Append(testEvents(3)))
	require.NoError(t, kv.Close())

	kv, err = keyvalue.NewKeyVal(keyvalue.Options{Path: path, DisableBloom: true}, slogt.New(t))
	require.NoError(t, err)
	defer kv.Close()
	j, err = NewJournal(kv)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), j.LastSeq())
	evs := testEvents(1)
	require.NoError(t, j.Append(evs))
	assert.Equal(t, uint64(4), evs[0].Seq)
}
