package proto

import (
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const AssetKeySize = AddressSize + 8

// AssetKey identifies a single token: the collection it belongs to and its id inside it.
type AssetKey struct {
	Collection Address `json:"collection" cbor:"1,keyasint"`
	TokenID    uint64  `json:"tokenId" cbor:"2,keyasint"`
}

func NewAssetKey(collection Address, tokenID uint64) AssetKey {
	return AssetKey{Collection: collection, TokenID: tokenID}
}

// ParseAssetKey parses the "<collection>/<tokenID>" form produced by String.
func ParseAssetKey(s string) (AssetKey, error) {
	c, id, ok := strings.Cut(s, "/")
	if !ok {
		return AssetKey{}, errors.Errorf("invalid asset key %q, expected '<collection>/<token id>'", s)
	}
	collection, err := NewAddressFromString(c)
	if err != nil {
		return AssetKey{}, errors.Wrap(err, "invalid asset collection")
	}
	tokenID, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return AssetKey{}, errors.Wrap(err, "invalid token id")
	}
	return NewAssetKey(collection, tokenID), nil
}

func (k AssetKey) String() string {
	return k.Collection.String() + "/" + strconv.FormatUint(k.TokenID, 10)
}

// Bytes returns the fixed size binary form, ordered by collection first and then by token id.
func (k AssetKey) Bytes() []byte {
	buf := make([]byte, AssetKeySize)
	copy(buf, k.Collection[:])
	binary.BigEndian.PutUint64(buf[AddressSize:], k.TokenID)
	return buf
}

func NewAssetKeyFromBytes(b []byte) (AssetKey, error) {
	if l := len(b); l != AssetKeySize {
		return AssetKey{}, errors.Errorf("invalid asset key size %d, expected %d", l, AssetKeySize)
	}
	var k AssetKey
	copy(k.Collection[:], b[:AddressSize])
	k.TokenID = binary.BigEndian.Uint64(b[AddressSize:])
	return k, nil
}
