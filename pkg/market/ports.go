package market

import (
	"context"

	"github.com/wavesplatform/gomarket/pkg/proto"
	"github.com/wavesplatform/gomarket/pkg/state"
)

//go:generate mockgen -destination=../mock/market.go -package=mock github.com/wavesplatform/gomarket/pkg/market Registry,Treasury,Notifier

// Registry is the asset registry consulted and instructed by the ledger.
// Ownership and approvals are read on every call and never cached.
type Registry interface {
	OwnerOf(ctx context.Context, key proto.AssetKey) (proto.Address, error)
	GetApproved(ctx context.Context, key proto.AssetKey) (proto.Address, error)
	Transfer(ctx context.Context, operator proto.Address, key proto.AssetKey, from, to proto.Address) error
}

// Treasury moves external funds: payments are collected from buyers, proceeds are paid out to sellers.
type Treasury interface {
	Collect(ctx context.Context, from proto.Address, amount uint64) error
	Payout(ctx context.Context, to proto.Address, amount uint64) error
}

// Notifier receives events of committed operations.
type Notifier interface {
	Notify(events ...proto.Event)
}

// storageParticipant is implemented by collaborators keeping their state in the ledger storage.
// They stage changes in the ledger transaction carried by the context, so their effects are
// committed or discarded together with the ledger's own and need no compensation.
type storageParticipant interface {
	SharesStorage(s *state.Storage) bool
}

func participates(c any, s *state.Storage) bool {
	p, ok := c.(storageParticipant)
	return ok && p.SharesStorage(s)
}

type discardNotifier struct{}

func (discardNotifier) Notify(...proto.Event) {}
