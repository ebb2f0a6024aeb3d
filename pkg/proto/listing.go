package proto

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

const listingRecordSize = 8 + AddressSize

// Listing is an active sale offer for a single asset.
// A listing with zero price is not active; lookups of canceled, sold and never listed assets
// all return the zero Listing.
type Listing struct {
	Price  uint64  `json:"price"`
	Seller Address `json:"seller"`
}

func (l Listing) Active() bool {
	return l.Price > 0
}

func (l *Listing) MarshalBinary() ([]byte, error) {
	res := make([]byte, listingRecordSize)
	binary.BigEndian.PutUint64(res[:8], l.Price)
	copy(res[8:], l.Seller[:])
	return res, nil
}

func (l *Listing) UnmarshalBinary(data []byte) error {
	if len(data) != listingRecordSize {
		return errors.Errorf("listing unmarshalBinary: invalid data size, expected %d, found %d",
			listingRecordSize, len(data))
	}
	l.Price = binary.BigEndian.Uint64(data[:8])
	copy(l.Seller[:], data[8:])
	return nil
}

// ListingEntry pairs a listing with the asset it offers.
type ListingEntry struct {
	AssetKey
	Listing
}
