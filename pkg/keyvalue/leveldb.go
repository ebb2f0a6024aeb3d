package keyvalue

import (
	"log/slog"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/wavesplatform/gomarket/pkg/logging"
)

const defaultBlockCacheSize = 8 * opt.MiB

type pair struct {
	key      []byte
	value    []byte
	deletion bool
}

type batch struct {
	filter *bloomFilter
	pairs  []pair
}

func (b *batch) Delete(key []byte) {
	keyCopy := make([]byte, len(key))
	copy(keyCopy, key)
	b.pairs = append(b.pairs, pair{key: keyCopy, deletion: true})
}

func (b *batch) Put(key, val []byte) {
	valCopy := make([]byte, len(val))
	copy(valCopy, val)
	keyCopy := make([]byte, len(key))
	copy(keyCopy, key)
	b.pairs = append(b.pairs, pair{key: keyCopy, value: valCopy})
}

func (b *batch) Len() int {
	return len(b.pairs)
}

func (b *batch) leveldbBatch() *leveldb.Batch {
	lb := new(leveldb.Batch)
	for _, p := range b.pairs {
		if p.deletion {
			lb.Delete(p.key)
		} else {
			lb.Put(p.key, p.value)
		}
	}
	return lb
}

func (b *batch) Reset() {
	b.pairs = nil
}

type Options struct {
	// Path of the database directory, empty path opens an in-memory database.
	Path           string
	BlockCacheSize int
	DisableBloom   bool
	Bloom          BloomFilterParams
}

// KeyVal is a goleveldb database guarded by a bloom filter against lookups of absent keys.
type KeyVal struct {
	db     *leveldb.DB
	filter *bloomFilter
	logger *slog.Logger
}

func NewKeyVal(opts Options, logger *slog.Logger) (*KeyVal, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dbOpts := &opt.Options{BlockCacheCapacity: opts.BlockCacheSize}
	if dbOpts.BlockCacheCapacity <= 0 {
		dbOpts.BlockCacheCapacity = defaultBlockCacheSize
	}
	var (
		db  *leveldb.DB
		err error
	)
	if opts.Path == "" {
		db, err = leveldb.Open(storage.NewMemStorage(), dbOpts)
	} else {
		db, err = leveldb.OpenFile(opts.Path, dbOpts)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to open leveldb")
	}
	kv := &KeyVal{db: db, logger: logger}
	if opts.DisableBloom {
		return kv, nil
	}
	if err := kv.initBloomFilter(opts.Bloom); err != nil {
		_ = db.Close()
		return nil, err
	}
	return kv, nil
}

func (k *KeyVal) initBloomFilter(params BloomFilterParams) error {
	if params.Path != "" {
		switch ok, err := afero.Exists(params.fs(), params.Path); {
		case err != nil:
			return errors.Wrap(err, "failed to check bloom filter file")
		case ok:
			f, err := newBloomFilterFromStore(params)
			if err == nil {
				k.filter = f
				return nil
			}
			k.logger.Warn("Failed to load bloom filter, rebuilding", logging.Error(err))
		}
	}
	f, err := newBloomFilter(params)
	if err != nil {
		return err
	}
	it := k.db.NewIterator(nil, nil)
	defer it.Release()
	for it.Next() {
		f.add(it.Key())
	}
	if err := it.Error(); err != nil {
		return errors.Wrap(err, "failed to rebuild bloom filter")
	}
	k.filter = f
	return nil
}

func (k *KeyVal) NewBatch() Batch {
	return &batch{filter: k.filter}
}

func (k *KeyVal) Get(key []byte) ([]byte, error) {
	if k.filter != nil && k.filter.notInTheSet(key) {
		return nil, ErrNotFound
	}
	val, err := k.db.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, ErrNotFound
	}
	return val, err
}

func (k *KeyVal) Has(key []byte) (bool, error) {
	if k.filter != nil && k.filter.notInTheSet(key) {
		return false, nil
	}
	return k.db.Has(key, nil)
}

func (k *KeyVal) Delete(key []byte) error {
	return k.db.Delete(key, nil)
}

func (k *KeyVal) Put(key, val []byte) error {
	if k.filter != nil {
		k.filter.add(key)
	}
	return k.db.Put(key, val, nil)
}

func (k *KeyVal) Flush(b1 Batch) error {
	b, ok := b1.(*batch)
	if !ok {
		return errors.New("can't convert batch interface to leveldb's batch")
	}
	if b.filter != nil {
		for _, p := range b.pairs {
			if !p.deletion {
				b.filter.add(p.key)
			}
		}
	}
	if err := k.db.Write(b.leveldbBatch(), &opt.WriteOptions{Sync: true}); err != nil {
		return err
	}
	b.Reset()
	return nil
}

func (k *KeyVal) NewKeyIterator(prefix []byte) Iterator {
	if len(prefix) == 0 {
		return k.db.NewIterator(nil, nil)
	}
	return k.db.NewIterator(util.BytesPrefix(prefix), nil)
}

func (k *KeyVal) Close() error {
	if k.filter != nil && k.filter.params.Path != "" {
		if err := storeBloomFilter(k.filter); err != nil {
			k.logger.Error("Failed to store bloom filter", logging.Error(err))
			_ = k.filter.params.fs().Remove(k.filter.params.Path)
		}
	}
	return k.db.Close()
}

// DefaultBloomPath places the bloom filter cache next to the database directory.
func DefaultBloomPath(dbPath string) string {
	return filepath.Join(dbPath, "bloom.cache")
}
