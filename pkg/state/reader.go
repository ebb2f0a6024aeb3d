package state

import (
	"github.com/pkg/errors"

	"github.com/wavesplatform/gomarket/pkg/keyvalue"
	"github.com/wavesplatform/gomarket/pkg/proto"
)

// reader implements typed lookups over either the committed state or a transaction.
type reader struct {
	g getter
}

func (r reader) lookup(key []byte) ([]byte, bool, error) {
	v, err := r.g.get(key)
	if err != nil {
		if errors.Is(err, keyvalue.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, errors.Wrap(err, "failed to read state")
	}
	return v, true, nil
}

// Listing returns the listing of the asset and false if the asset is not listed.
func (r reader) Listing(key proto.AssetKey) (proto.Listing, bool, error) {
	lk := listingKey{key: key}
	data, ok, err := r.lookup(lk.bytes())
	if err != nil || !ok {
		return proto.Listing{}, false, err
	}
	var l proto.Listing
	if err := l.UnmarshalBinary(data); err != nil {
		return proto.Listing{}, false, errors.Wrapf(err, "invalid listing of asset %s", key)
	}
	return l, l.Active(), nil
}

func (r reader) amount(key []byte) (uint64, error) {
	data, ok, err := r.lookup(key)
	if err != nil || !ok {
		return 0, err
	}
	var rec amountRecord
	if err := rec.unmarshalBinary(data); err != nil {
		return 0, err
	}
	return rec.amount, nil
}

// Proceeds returns the withdrawable balance of the seller, zero if never credited.
func (r reader) Proceeds(seller proto.Address) (uint64, error) {
	k := addressKey{prefix: proceedsKeyPrefix, address: seller}
	return r.amount(k.bytes())
}

// Balance returns the external funds of the account.
func (r reader) Balance(addr proto.Address) (uint64, error) {
	k := addressKey{prefix: balanceKeyPrefix, address: addr}
	return r.amount(k.bytes())
}

func (r reader) Collection(addr proto.Address) (CollectionRecord, bool, error) {
	k := addressKey{prefix: collectionKeyPrefix, address: addr}
	data, ok, err := r.lookup(k.bytes())
	if err != nil || !ok {
		return CollectionRecord{}, false, err
	}
	var rec CollectionRecord
	if err := rec.unmarshalBinary(data); err != nil {
		return CollectionRecord{}, false, errors.Wrapf(err, "invalid collection record %s", addr)
	}
	return rec, true, nil
}

func (r reader) tokenAddress(prefix byte, key proto.AssetKey) (proto.Address, bool, error) {
	k := tokenKey{prefix: prefix, key: key}
	data, ok, err := r.lookup(k.bytes())
	if err != nil || !ok {
		return proto.Address{}, false, err
	}
	var a proto.Address
	if len(data) != proto.AddressSize {
		return a, false, errors.Errorf("invalid address record size %d", len(data))
	}
	copy(a[:], data)
	return a, true, nil
}

// TokenOwner returns the owner of the token and false if the token was never minted.
func (r reader) TokenOwner(key proto.AssetKey) (proto.Address, bool, error) {
	return r.tokenAddress(tokenOwnerKeyPrefix, key)
}

// TokenApproved returns the address approved to transfer the token, the zero address if none.
func (r reader) TokenApproved(key proto.AssetKey) (proto.Address, error) {
	a, _, err := r.tokenAddress(tokenApprovalKeyPrefix, key)
	return a, err
}

func (r reader) TokenURI(key proto.AssetKey) (string, error) {
	k := tokenKey{prefix: tokenURIKeyPrefix, key: key}
	data, _, err := r.lookup(k.bytes())
	return string(data), err
}
