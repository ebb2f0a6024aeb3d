package keyvalue

import (
	"github.com/pkg/errors"
)

// ErrNotFound is returned by Get for absent keys.
var ErrNotFound = errors.New("not found")

// KeyValue is the ordered byte store backing marketplace state and the event journal.
type KeyValue interface {
	Has(key []byte) (bool, error)
	Get(key []byte) ([]byte, error)
	Put(key, val []byte) error
	Delete(key []byte) error

	NewBatch() Batch
	// Flush applies all writes of the batch at once and resets it.
	Flush(batch Batch) error

	// NewKeyIterator walks keys having the prefix in ascending byte order.
	NewKeyIterator(prefix []byte) Iterator
	Close() error
}

// Batch collects the writes of one committed ledger transaction.
type Batch interface {
	Put(key, val []byte)
	Delete(key []byte)
	Len() int
	Reset()
}

// Iterator slices returned by Key and Value are only valid until the next move.
type Iterator interface {
	Next() bool
	Last() bool
	Seek(key []byte) bool
	Key() []byte
	Value() []byte

	Error() error
	Release()
}

// SafeKey copies the key of the current iterator position.
func SafeKey(it interface{ Key() []byte }) []byte {
	k := it.Key()
	res := make([]byte, len(k))
	copy(res, k)
	return res
}
