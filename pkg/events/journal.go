package events

import (
	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"
	"go.uber.org/atomic"

	"github.com/wavesplatform/gomarket/pkg/keyvalue"
	"github.com/wavesplatform/gomarket/pkg/proto"
	"github.com/wavesplatform/gomarket/pkg/state"
)

const MaxPageSize = 1000

// Journal is a persistent append-only log of ledger events.
// Every appended event gets the next sequence number, the first one is 1.
type Journal struct {
	kv  keyvalue.KeyValue
	seq *atomic.Uint64
}

func NewJournal(kv keyvalue.KeyValue) (*Journal, error) {
	last, err := lastSeq(kv)
	if err != nil {
		return nil, err
	}
	return &Journal{kv: kv, seq: atomic.NewUint64(last)}, nil
}

func lastSeq(kv keyvalue.KeyValue) (uint64, error) {
	it := kv.NewKeyIterator([]byte{state.JournalKeyPrefix})
	defer it.Release()
	if !it.Last() {
		return 0, errors.Wrap(it.Error(), "failed to find last journal record")
	}
	return state.ParseJournalKey(it.Key())
}

// LastSeq returns the sequence number of the last appended event, zero for an empty journal.
func (j *Journal) LastSeq() uint64 {
	return j.seq.Load()
}

// Append assigns sequence numbers to the events and stores them in one batch.
func (j *Journal) Append(events []proto.Event) error {
	if len(events) == 0 {
		return nil
	}
	b := j.kv.NewBatch()
	first := j.seq.Add(uint64(len(events))) - uint64(len(events)) + 1
	for i := range events {
		events[i].Seq = first + uint64(i)
		data, err := cbor.Marshal(events[i])
		if err != nil {
			return errors.Wrap(err, "failed to encode event")
		}
		b.Put(state.JournalKey(events[i].Seq), data)
	}
	if err := j.kv.Flush(b); err != nil {
		return errors.Wrap(err, "failed to store events")
	}
	return nil
}

// Range returns up to limit events starting from the sequence number from.
func (j *Journal) Range(from uint64, limit int) ([]proto.Event, error) {
	if limit <= 0 || limit > MaxPageSize {
		limit = MaxPageSize
	}
	if from == 0 {
		from = 1
	}
	it := j.kv.NewKeyIterator([]byte{state.JournalKeyPrefix})
	defer it.Release()
	res := make([]proto.Event, 0, limit)
	for ok := it.Seek(state.JournalKey(from)); ok && len(res) < limit; ok = it.Next() {
		var e proto.Event
		if err := cbor.Unmarshal(it.Value(), &e); err != nil {
			return nil, errors.Wrapf(err, "failed to decode journal record %x", it.Key())
		}
		res = append(res, e)
	}
	if err := it.Error(); err != nil {
		return nil, errors.Wrap(err, "failed to read journal")
	}
	return res, nil
}
