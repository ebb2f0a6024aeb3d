package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/wavesplatform/gomarket/pkg/proto"
)

type Market struct {
	options Options
}

type AssetRequest struct {
	Caller     proto.Address `json:"caller"`
	Collection proto.Address `json:"collection"`
	TokenID    uint64        `json:"tokenId"`
}

func NewAssetRequest(caller proto.Address, key proto.AssetKey) AssetRequest {
	return AssetRequest{Caller: caller, Collection: key.Collection, TokenID: key.TokenID}
}

type PriceRequest struct {
	AssetRequest
	Price uint64 `json:"price"`
}

type BuyRequest struct {
	AssetRequest
	Payment uint64 `json:"payment"`
}

type MarketItem struct {
	proto.AssetKey
	Listed bool          `json:"listed"`
	Price  uint64        `json:"price"`
	Seller proto.Address `json:"seller"`
}

type Proceeds struct {
	Address  proto.Address `json:"address"`
	Proceeds uint64        `json:"proceeds"`
}

func (a *Market) List(ctx context.Context, caller proto.Address, key proto.AssetKey, price uint64) (*Response, error) {
	req := PriceRequest{AssetRequest: NewAssetRequest(caller, key), Price: price}
	return doHTTP(ctx, a.options, request{method: http.MethodPost, path: "/market/list", body: req, auth: true}, nil)
}

func (a *Market) Update(ctx context.Context, caller proto.Address, key proto.AssetKey, price uint64) (*Response, error) {
	req := PriceRequest{AssetRequest: NewAssetRequest(caller, key), Price: price}
	return doHTTP(ctx, a.options, request{method: http.MethodPost, path: "/market/update", body: req, auth: true}, nil)
}

func (a *Market) Cancel(ctx context.Context, caller proto.Address, key proto.AssetKey) (*Response, error) {
	req := NewAssetRequest(caller, key)
	return doHTTP(ctx, a.options, request{method: http.MethodPost, path: "/market/cancel", body: req, auth: true}, nil)
}

func (a *Market) Buy(ctx context.Context, buyer proto.Address, key proto.AssetKey, payment uint64) (*Response, error) {
	req := BuyRequest{AssetRequest: NewAssetRequest(buyer, key), Payment: payment}
	return doHTTP(ctx, a.options, request{method: http.MethodPost, path: "/market/buy", body: req, auth: true}, nil)
}

func (a *Market) Withdraw(ctx context.Context, caller proto.Address) (*Response, error) {
	req := struct {
		Caller proto.Address `json:"caller"`
	}{Caller: caller}
	return doHTTP(ctx, a.options, request{method: http.MethodPost, path: "/market/withdraw", body: req, auth: true}, nil)
}

func (a *Market) Proceeds(ctx context.Context, addr proto.Address) (uint64, *Response, error) {
	out := new(Proceeds)
	resp, err := doHTTP(ctx, a.options, request{method: http.MethodGet, path: "/market/proceeds/" + addr.String()}, out)
	if err != nil {
		return 0, resp, err
	}
	return out.Proceeds, resp, nil
}

func (a *Market) Item(ctx context.Context, key proto.AssetKey) (*MarketItem, *Response, error) {
	out := new(MarketItem)
	path := fmt.Sprintf("/market/items/%s/%d", key.Collection, key.TokenID)
	resp, err := doHTTP(ctx, a.options, request{method: http.MethodGet, path: path}, out)
	if err != nil {
		return nil, resp, err
	}
	return out, resp, nil
}

// Items returns active listings, of one collection if it is not nil.
func (a *Market) Items(ctx context.Context, collection *proto.Address) ([]proto.ListingEntry, *Response, error) {
	path := "/market/items"
	if collection != nil {
		path += "?collection=" + url.QueryEscape(collection.String())
	}
	var out []proto.ListingEntry
	resp, err := doHTTP(ctx, a.options, request{method: http.MethodGet, path: path}, &out)
	if err != nil {
		return nil, resp, err
	}
	return out, resp, nil
}

func (a *Market) Events(ctx context.Context, from uint64, limit int) ([]proto.Event, *Response, error) {
	q := url.Values{}
	q.Set("from", strconv.FormatUint(from, 10))
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out []proto.Event
	resp, err := doHTTP(ctx, a.options, request{method: http.MethodGet, path: "/market/events?" + q.Encode()}, &out)
	if err != nil {
		return nil, resp, err
	}
	return out, resp, nil
}
