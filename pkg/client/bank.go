package client

import (
	"context"
	"net/http"

	"github.com/wavesplatform/gomarket/pkg/proto"
)

type Bank struct {
	options Options
}

type Balance struct {
	Address proto.Address `json:"address"`
	Balance uint64        `json:"balance"`
}

func (a *Bank) Deposit(ctx context.Context, addr proto.Address, amount uint64) (uint64, *Response, error) {
	out := new(Balance)
	body := struct {
		Address proto.Address `json:"address"`
		Amount  uint64        `json:"amount"`
	}{Address: addr, Amount: amount}
	resp, err := doHTTP(ctx, a.options, request{method: http.MethodPost, path: "/bank/deposit", body: body, auth: true}, out)
	if err != nil {
		return 0, resp, err
	}
	return out.Balance, resp, nil
}

func (a *Bank) Balance(ctx context.Context, addr proto.Address) (uint64, *Response, error) {
	out := new(Balance)
	resp, err := doHTTP(ctx, a.options, request{method: http.MethodGet, path: "/bank/" + addr.String()}, out)
	if err != nil {
		return 0, resp, err
	}
	return out.Balance, resp, nil
}
