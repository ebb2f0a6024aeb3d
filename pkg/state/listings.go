package state

import (
	"github.com/pkg/errors"

	"github.com/wavesplatform/gomarket/pkg/keyvalue"
	"github.com/wavesplatform/gomarket/pkg/proto"
)

// Listings enumerates committed active listings ordered by asset key.
// If collection is not nil only listings of that collection are returned.
func (s *Storage) Listings(collection *proto.Address) ([]proto.ListingEntry, error) {
	prefix := []byte{listingKeyPrefix}
	if collection != nil {
		prefix = append(prefix, collection[:]...)
	}
	it := s.kv.NewKeyIterator(prefix)
	defer it.Release()
	var res []proto.ListingEntry
	for it.Next() {
		var lk listingKey
		if err := lk.unmarshal(keyvalue.SafeKey(it)); err != nil {
			return nil, errors.Wrap(err, "corrupted listing key")
		}
		var l proto.Listing
		if err := l.UnmarshalBinary(it.Value()); err != nil {
			return nil, errors.Wrapf(err, "invalid listing of asset %s", lk.key)
		}
		if !l.Active() {
			continue
		}
		res = append(res, proto.ListingEntry{AssetKey: lk.key, Listing: l})
	}
	if err := it.Error(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate listings")
	}
	return res, nil
}
