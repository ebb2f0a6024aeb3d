package state

import (
	"encoding/binary"

	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"

	"github.com/wavesplatform/gomarket/pkg/proto"
)

const amountRecordSize = 8

type amountRecord struct {
	amount uint64
}

func (r *amountRecord) marshalBinary() []byte {
	res := make([]byte, amountRecordSize)
	binary.BigEndian.PutUint64(res, r.amount)
	return res
}

func (r *amountRecord) unmarshalBinary(data []byte) error {
	if len(data) != amountRecordSize {
		return errors.Errorf("amountRecord unmarshalBinary: invalid data size, expected %d, found %d",
			amountRecordSize, len(data))
	}
	r.amount = binary.BigEndian.Uint64(data)
	return nil
}

// CollectionRecord describes a collection of the registry.
type CollectionRecord struct {
	Name string `cbor:"1,keyasint"`
	// Counter is the id of the last minted token, zero for an empty collection.
	Counter uint64        `cbor:"2,keyasint"`
	Creator proto.Address `cbor:"3,keyasint"`
	// MintFee is paid by the minter to the creator for every token.
	MintFee uint64 `cbor:"4,keyasint"`
}

func (r *CollectionRecord) marshalBinary() ([]byte, error) {
	return cbor.Marshal(r)
}

func (r *CollectionRecord) unmarshalBinary(data []byte) error {
	return cbor.Unmarshal(data, r)
}
