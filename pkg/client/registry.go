package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/wavesplatform/gomarket/pkg/proto"
)

type Registry struct {
	options Options
}

type Collection struct {
	Address proto.Address `json:"address"`
	Name    string        `json:"name"`
	Creator proto.Address `json:"creator"`
	MintFee uint64        `json:"mintFee"`
	Counter uint64        `json:"tokenCounter"`
}

type Token struct {
	Key      proto.AssetKey `json:"key"`
	Owner    proto.Address  `json:"owner"`
	Approved proto.Address  `json:"approved"`
	URI      string         `json:"uri"`
}

type createCollectionRequest struct {
	Creator proto.Address `json:"creator"`
	Name    string        `json:"name"`
	MintFee *uint64       `json:"mintFee,omitempty"`
}

type mintRequest struct {
	Collection proto.Address `json:"collection"`
	To         proto.Address `json:"to"`
	URI        string        `json:"uri"`
	Payment    uint64        `json:"payment"`
}

type approveRequest struct {
	AssetRequest
	Approved proto.Address `json:"approved"`
}

// CreateCollection registers a collection, the node default mint fee is used if mintFee is nil.
func (a *Registry) CreateCollection(ctx context.Context, creator proto.Address, name string, mintFee *uint64) (proto.Address, *Response, error) {
	out := new(struct {
		Address proto.Address `json:"address"`
	})
	req := createCollectionRequest{Creator: creator, Name: name, MintFee: mintFee}
	resp, err := doHTTP(ctx, a.options, request{method: http.MethodPost, path: "/registry/collections", body: req, auth: true}, out)
	if err != nil {
		return proto.Address{}, resp, err
	}
	return out.Address, resp, nil
}

func (a *Registry) Collection(ctx context.Context, addr proto.Address) (*Collection, *Response, error) {
	out := new(Collection)
	resp, err := doHTTP(ctx, a.options, request{method: http.MethodGet, path: "/registry/collections/" + addr.String()}, out)
	if err != nil {
		return nil, resp, err
	}
	return out, resp, nil
}

func (a *Registry) Mint(ctx context.Context, collection, to proto.Address, uri string, payment uint64) (proto.AssetKey, *Response, error) {
	out := new(proto.AssetKey)
	req := mintRequest{Collection: collection, To: to, URI: uri, Payment: payment}
	resp, err := doHTTP(ctx, a.options, request{method: http.MethodPost, path: "/registry/mint", body: req, auth: true}, out)
	if err != nil {
		return proto.AssetKey{}, resp, err
	}
	return *out, resp, nil
}

func (a *Registry) Approve(ctx context.Context, caller proto.Address, key proto.AssetKey, approved proto.Address) (*Response, error) {
	req := approveRequest{AssetRequest: NewAssetRequest(caller, key), Approved: approved}
	return doHTTP(ctx, a.options, request{method: http.MethodPost, path: "/registry/approve", body: req, auth: true}, nil)
}

func (a *Registry) Token(ctx context.Context, key proto.AssetKey) (*Token, *Response, error) {
	out := new(Token)
	path := fmt.Sprintf("/registry/%s/%d", key.Collection, key.TokenID)
	resp, err := doHTTP(ctx, a.options, request{method: http.MethodGet, path: path}, out)
	if err != nil {
		return nil, resp, err
	}
	return out, resp, nil
}
