package state

import (
	"context"
	"time"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/pkg/errors"

	"github.com/wavesplatform/gomarket/pkg/keyvalue"
	"github.com/wavesplatform/gomarket/pkg/proto"
	"github.com/wavesplatform/gomarket/pkg/util/lock"
)

const DefaultWriteTimeout = 5 * time.Second

var (
	ErrTxFinished = errors.New("transaction is already finished")
	ErrWriteBusy  = errors.New("storage is busy with another transaction")
)

type getter interface {
	get(key []byte) ([]byte, error)
}

// Reader is a typed view of the state.
type Reader interface {
	Listing(key proto.AssetKey) (proto.Listing, bool, error)
	Proceeds(seller proto.Address) (uint64, error)
	Balance(addr proto.Address) (uint64, error)
	Collection(addr proto.Address) (CollectionRecord, bool, error)
	TokenOwner(key proto.AssetKey) (proto.Address, bool, error)
	TokenApproved(key proto.AssetKey) (proto.Address, error)
	TokenURI(key proto.AssetKey) (string, error)
}

// Storage gives typed access to the committed marketplace state.
// Modifications are made through transactions, only one transaction is open at a time.
type Storage struct {
	reader
	kv           keyvalue.KeyValue
	writer       *lock.Mutex
	writeTimeout time.Duration
}

func NewStorage(kv keyvalue.KeyValue, writeTimeout time.Duration) *Storage {
	if writeTimeout <= 0 {
		writeTimeout = DefaultWriteTimeout
	}
	s := &Storage{kv: kv, writer: lock.NewMutex(), writeTimeout: writeTimeout}
	s.reader = reader{g: s}
	return s
}

func (s *Storage) get(key []byte) ([]byte, error) {
	return s.kv.Get(key)
}

// KeyValue exposes the underlying database for components with their own key space.
func (s *Storage) KeyValue() keyvalue.KeyValue {
	return s.kv
}

// View returns the transaction of the context if it belongs to this storage, so the reads
// observe its staged changes, or the committed state otherwise.
func (s *Storage) View(ctx context.Context) Reader {
	if tx, ok := TxFromContext(ctx); ok && tx.s == s && !tx.done {
		return tx
	}
	return s
}

// Begin opens a new transaction waiting for the previous one to finish.
func (s *Storage) Begin(ctx context.Context) (*Tx, error) {
	if err := s.writer.Lock(ctx, s.writeTimeout); err != nil {
		if errors.Is(err, lock.ErrTimeout) {
			return nil, ErrWriteBusy
		}
		return nil, err
	}
	tx := &Tx{s: s, changes: orderedmap.NewOrderedMap[string, change]()}
	tx.reader = reader{g: tx}
	return tx, nil
}

// Join returns the transaction carried by the context if it belongs to this storage,
// otherwise it begins a new one. The caller commits only the transactions it owns.
func (s *Storage) Join(ctx context.Context) (tx *Tx, owned bool, err error) {
	if tx, ok := TxFromContext(ctx); ok && tx.s == s && !tx.done {
		return tx, false, nil
	}
	tx, err = s.Begin(ctx)
	if err != nil {
		return nil, false, err
	}
	return tx, true, nil
}

type change struct {
	value   []byte
	deleted bool
}

// Tx is an ordered set of changes applied to the database with a single batch on Commit.
// Reads through the transaction see its own changes on top of the committed state.
// Tx is not safe for concurrent use.
type Tx struct {
	reader
	s       *Storage
	changes *orderedmap.OrderedMap[string, change]
	done    bool
}

func (tx *Tx) get(key []byte) ([]byte, error) {
	if c, ok := tx.changes.Get(string(key)); ok {
		if c.deleted {
			return nil, keyvalue.ErrNotFound
		}
		return c.value, nil
	}
	return tx.s.kv.Get(key)
}

func (tx *Tx) put(key, value []byte) {
	tx.changes.Set(string(key), change{value: value})
}

func (tx *Tx) delete(key []byte) {
	tx.changes.Set(string(key), change{deleted: true})
}

// Len returns the number of staged changes.
func (tx *Tx) Len() int {
	return tx.changes.Len()
}

func (tx *Tx) Commit() error {
	if tx.done {
		return ErrTxFinished
	}
	defer tx.finish()
	if tx.changes.Len() == 0 {
		return nil
	}
	b := tx.s.kv.NewBatch()
	for el := tx.changes.Front(); el != nil; el = el.Next() {
		if el.Value.deleted {
			b.Delete([]byte(el.Key))
		} else {
			b.Put([]byte(el.Key), el.Value.value)
		}
	}
	if err := tx.s.kv.Flush(b); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}
	return nil
}

// Discard drops all staged changes. It is a no-op for a finished transaction.
func (tx *Tx) Discard() {
	if tx.done {
		return
	}
	tx.finish()
}

func (tx *Tx) finish() {
	tx.done = true
	tx.changes = orderedmap.NewOrderedMap[string, change]()
	tx.s.writer.Unlock()
}

type txKey struct{}

func ContextWithTx(ctx context.Context, tx *Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

func TxFromContext(ctx context.Context) (*Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(*Tx)
	return tx, ok && tx != nil
}
