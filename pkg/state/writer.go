package state

import (
	"github.com/pkg/errors"

	"github.com/wavesplatform/gomarket/pkg/proto"
)

// SetListing stores the listing, a listing with zero price removes the record.
func (tx *Tx) SetListing(key proto.AssetKey, l proto.Listing) error {
	if tx.done {
		return ErrTxFinished
	}
	lk := listingKey{key: key}
	if !l.Active() {
		tx.delete(lk.bytes())
		return nil
	}
	data, err := l.MarshalBinary()
	if err != nil {
		return errors.Wrap(err, "failed to marshal listing")
	}
	tx.put(lk.bytes(), data)
	return nil
}

func (tx *Tx) DeleteListing(key proto.AssetKey) error {
	return tx.SetListing(key, proto.Listing{})
}

func (tx *Tx) setAmount(key []byte, amount uint64) error {
	if tx.done {
		return ErrTxFinished
	}
	if amount == 0 {
		tx.delete(key)
		return nil
	}
	rec := amountRecord{amount: amount}
	tx.put(key, rec.marshalBinary())
	return nil
}

func (tx *Tx) SetProceeds(seller proto.Address, amount uint64) error {
	k := addressKey{prefix: proceedsKeyPrefix, address: seller}
	return tx.setAmount(k.bytes(), amount)
}

func (tx *Tx) SetBalance(addr proto.Address, amount uint64) error {
	k := addressKey{prefix: balanceKeyPrefix, address: addr}
	return tx.setAmount(k.bytes(), amount)
}

func (tx *Tx) SetCollection(addr proto.Address, rec CollectionRecord) error {
	if tx.done {
		return ErrTxFinished
	}
	data, err := rec.marshalBinary()
	if err != nil {
		return errors.Wrap(err, "failed to marshal collection record")
	}
	k := addressKey{prefix: collectionKeyPrefix, address: addr}
	tx.put(k.bytes(), data)
	return nil
}

func (tx *Tx) setTokenAddress(prefix byte, key proto.AssetKey, addr proto.Address) error {
	if tx.done {
		return ErrTxFinished
	}
	k := tokenKey{prefix: prefix, key: key}
	if addr.IsZero() {
		tx.delete(k.bytes())
		return nil
	}
	tx.put(k.bytes(), addr.Bytes())
	return nil
}

func (tx *Tx) SetTokenOwner(key proto.AssetKey, owner proto.Address) error {
	return tx.setTokenAddress(tokenOwnerKeyPrefix, key, owner)
}

// SetTokenApproved sets the approved address, the zero address clears the approval.
func (tx *Tx) SetTokenApproved(key proto.AssetKey, approved proto.Address) error {
	return tx.setTokenAddress(tokenApprovalKeyPrefix, key, approved)
}

func (tx *Tx) SetTokenURI(key proto.AssetKey, uri string) error {
	if tx.done {
		return ErrTxFinished
	}
	k := tokenKey{prefix: tokenURIKeyPrefix, key: key}
	tx.put(k.bytes(), []byte(uri))
	return nil
}
