package state

// keys.go - database keys.

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/wavesplatform/gomarket/pkg/proto"
)

const (
	listingKeySize  = 1 + proto.AssetKeySize
	proceedsKeySize = 1 + proto.AddressSize
	balanceKeySize  = 1 + proto.AddressSize
	tokenKeySize    = 1 + proto.AssetKeySize
	JournalKeySize  = 1 + 8
)

const (
	// Marketplace listings: asset key --> price and seller.
	listingKeyPrefix byte = iota + 1
	// Proceeds of sellers.
	proceedsKeyPrefix

	// Registry.
	collectionKeyPrefix
	tokenOwnerKeyPrefix
	tokenApprovalKeyPrefix
	tokenURIKeyPrefix

	// External funds of accounts.
	balanceKeyPrefix

	// Events journal: sequence number --> encoded event.
	JournalKeyPrefix
)

type listingKey struct {
	key proto.AssetKey
}

func (k *listingKey) bytes() []byte {
	buf := make([]byte, listingKeySize)
	buf[0] = listingKeyPrefix
	copy(buf[1:], k.key.Bytes())
	return buf
}

func (k *listingKey) unmarshal(data []byte) error {
	if len(data) != listingKeySize {
		return errors.Errorf("invalid listing key size %d", len(data))
	}
	if data[0] != listingKeyPrefix {
		return errors.Errorf("invalid listing key prefix %d", data[0])
	}
	key, err := proto.NewAssetKeyFromBytes(data[1:])
	if err != nil {
		return err
	}
	k.key = key
	return nil
}

type addressKey struct {
	prefix  byte
	address proto.Address
}

func (k *addressKey) bytes() []byte {
	buf := make([]byte, 1+proto.AddressSize)
	buf[0] = k.prefix
	copy(buf[1:], k.address[:])
	return buf
}

type tokenKey struct {
	prefix byte
	key    proto.AssetKey
}

func (k *tokenKey) bytes() []byte {
	buf := make([]byte, tokenKeySize)
	buf[0] = k.prefix
	copy(buf[1:], k.key.Bytes())
	return buf
}

// JournalKey returns the key of the journal record with the given sequence number.
func JournalKey(seq uint64) []byte {
	buf := make([]byte, JournalKeySize)
	buf[0] = JournalKeyPrefix
	binary.BigEndian.PutUint64(buf[1:], seq)
	return buf
}

func ParseJournalKey(data []byte) (uint64, error) {
	if len(data) != JournalKeySize || data[0] != JournalKeyPrefix {
		return 0, errors.Errorf("invalid journal key %x", data)
	}
	return binary.BigEndian.Uint64(data[1:]), nil
}
