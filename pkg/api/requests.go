package api

import (
	apiErrors "github.com/wavesplatform/gomarket/pkg/api/errors"
	"github.com/wavesplatform/gomarket/pkg/proto"
)

type assetRequest struct {
	Caller     proto.Address `json:"caller"`
	Collection proto.Address `json:"collection"`
	TokenID    uint64        `json:"tokenId"`
}

func (r assetRequest) key() proto.AssetKey {
	return proto.NewAssetKey(r.Collection, r.TokenID)
}

func (r assetRequest) validate() error {
	if r.Caller.IsZero() {
		return apiErrors.InvalidAddress
	}
	if r.Collection.IsZero() || r.TokenID == 0 {
		return apiErrors.InvalidAssetKey
	}
	return nil
}

type priceRequest struct {
	assetRequest
	Price uint64 `json:"price"`
}

type buyRequest struct {
	assetRequest
	Payment uint64 `json:"payment"`
}

type withdrawRequest struct {
	Caller proto.Address `json:"caller"`
}

type createCollectionRequest struct {
	Creator proto.Address `json:"creator"`
	Name    string        `json:"name"`
	// MintFee overrides the default mint fee of the node.
	MintFee *uint64 `json:"mintFee,omitempty"`
}

type mintRequest struct {
	Collection proto.Address `json:"collection"`
	To         proto.Address `json:"to"`
	URI        string        `json:"uri"`
	Payment    uint64        `json:"payment"`
}

type approveRequest struct {
	assetRequest
	Approved proto.Address `json:"approved"`
}

type depositRequest struct {
	Address proto.Address `json:"address"`
	Amount  uint64        `json:"amount"`
}

type proceedsResponse struct {
	Address  proto.Address `json:"address"`
	Proceeds uint64        `json:"proceeds"`
}

type itemResponse struct {
	proto.AssetKey
	Listed bool          `json:"listed"`
	Price  uint64        `json:"price"`
	Seller proto.Address `json:"seller"`
}

type collectionResponse struct {
	Address proto.Address `json:"address"`
}

type mintResponse struct {
	proto.AssetKey
}

type balanceResponse struct {
	Address proto.Address `json:"address"`
	Balance uint64        `json:"balance"`
}
