// Package registry keeps ownership of non-fungible tokens grouped into collections.
package registry

import (
	"context"
	"log/slog"
	"strings"

	"github.com/pkg/errors"

	"github.com/wavesplatform/gomarket/pkg/errs"
	"github.com/wavesplatform/gomarket/pkg/logging"
	"github.com/wavesplatform/gomarket/pkg/proto"
	"github.com/wavesplatform/gomarket/pkg/state"
	"github.com/wavesplatform/gomarket/pkg/util/common"
)

const maxNameLength = 64

var (
	ErrCollectionExists = errors.New("collection already exists")
	ErrInvalidName      = errors.New("invalid collection name")
	ErrInvalidReceiver  = errors.New("invalid receiver")
	ErrMintFeeNotMet    = errors.New("mint fee is not met")
	ErrApproveToOwner   = errors.New("approval to current owner")
)

// FeeCollector moves mint fees from minters to creators of collections.
type FeeCollector interface {
	Collect(ctx context.Context, from proto.Address, amount uint64) error
	Payout(ctx context.Context, to proto.Address, amount uint64) error
}

type TokenInfo struct {
	Key      proto.AssetKey `json:"key"`
	Owner    proto.Address  `json:"owner"`
	Approved proto.Address  `json:"approved"`
	URI      string         `json:"uri"`
}

type CollectionInfo struct {
	Address proto.Address `json:"address"`
	Name    string        `json:"name"`
	Creator proto.Address `json:"creator"`
	MintFee uint64        `json:"mintFee"`
	Counter uint64        `json:"tokenCounter"`
}

// Registry is an in-process asset registry.
// All changes are made in state transactions, a transaction carried by the context is joined.
type Registry struct {
	storage *state.Storage
	fees    FeeCollector
	scheme  byte
	logger  *slog.Logger
}

func New(storage *state.Storage, fees FeeCollector, scheme byte, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{storage: storage, fees: fees, scheme: scheme, logger: logger}
}

func (r *Registry) SharesStorage(s *state.Storage) bool {
	return r.storage == s
}

func (r *Registry) update(ctx context.Context, f func(ctx context.Context, tx *state.Tx) error) error {
	tx, owned, err := r.storage.Join(ctx)
	if err != nil {
		return err
	}
	if !owned {
		return f(ctx, tx)
	}
	if err := f(state.ContextWithTx(ctx, tx), tx); err != nil {
		tx.Discard()
		return err
	}
	return tx.Commit()
}

// CreateCollection registers a new collection, its address is derived from the name.
func (r *Registry) CreateCollection(ctx context.Context, creator proto.Address, name string, mintFee uint64) (proto.Address, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxNameLength {
		return proto.Address{}, errors.Wrapf(ErrInvalidName, "%q", name)
	}
	addr, err := proto.NewAddressFromData(r.scheme, []byte("collection:"+name))
	if err != nil {
		return proto.Address{}, err
	}
	err = r.update(ctx, func(_ context.Context, tx *state.Tx) error {
		_, ok, err := tx.Collection(addr)
		if err != nil {
			return err
		}
		if ok {
			return errors.Wrapf(ErrCollectionExists, "%q", name)
		}
		return tx.SetCollection(addr, state.CollectionRecord{Name: name, Creator: creator, MintFee: mintFee})
	})
	if err != nil {
		return proto.Address{}, err
	}
	r.logger.Info("Collection created", slog.String("name", name), logging.Address("address", addr))
	return addr, nil
}

func (r *Registry) Collection(ctx context.Context, addr proto.Address) (CollectionInfo, error) {
	rec, ok, err := r.storage.View(ctx).Collection(addr)
	if err != nil {
		return CollectionInfo{}, err
	}
	if !ok {
		return CollectionInfo{}, errors.Wrapf(errs.ErrNoSuchCollection, "%s", addr)
	}
	return CollectionInfo{
		Address: addr,
		Name:    rec.Name,
		Creator: rec.Creator,
		MintFee: rec.MintFee,
		Counter: rec.Counter,
	}, nil
}

// Mint creates the next token of the collection owned by to. Token ids start from 1.
// The payment is collected from the minter and must cover the mint fee of the collection.
func (r *Registry) Mint(ctx context.Context, collection, to proto.Address, uri string, payment uint64) (uint64, error) {
	if to.IsZero() {
		return 0, ErrInvalidReceiver
	}
	var id uint64
	err := r.update(ctx, func(ctx context.Context, tx *state.Tx) error {
		rec, ok, err := tx.Collection(collection)
		if err != nil {
			return err
		}
		if !ok {
			return errors.Wrapf(errs.ErrNoSuchCollection, "%s", collection)
		}
		if payment < rec.MintFee {
			return errors.Wrapf(ErrMintFeeNotMet, "payment %d, fee %d", payment, rec.MintFee)
		}
		if payment > 0 {
			if r.fees == nil {
				return errors.New("mint fees are not supported")
			}
			if err := r.fees.Collect(ctx, to, payment); err != nil {
				return errors.Wrap(err, "failed to collect mint fee")
			}
			if err := r.fees.Payout(ctx, rec.Creator, payment); err != nil {
				return errors.Wrap(err, "failed to pay mint fee")
			}
		}
		id, err = common.AddUint64(rec.Counter, 1)
		if err != nil {
			return errors.Wrap(err, "token counter")
		}
		rec.Counter = id
		key := proto.NewAssetKey(collection, id)
		if err := tx.SetCollection(collection, rec); err != nil {
			return err
		}
		if err := tx.SetTokenOwner(key, to); err != nil {
			return err
		}
		return tx.SetTokenURI(key, uri)
	})
	if err != nil {
		return 0, err
	}
	r.logger.Debug("Token minted", logging.Asset(proto.NewAssetKey(collection, id)),
		logging.Address("owner", to))
	return id, nil
}

func (r *Registry) TokenCounter(ctx context.Context, collection proto.Address) (uint64, error) {
	c, err := r.Collection(ctx, collection)
	if err != nil {
		return 0, err
	}
	return c.Counter, nil
}

func (r *Registry) OwnerOf(ctx context.Context, key proto.AssetKey) (proto.Address, error) {
	owner, ok, err := r.storage.View(ctx).TokenOwner(key)
	if err != nil {
		return proto.Address{}, err
	}
	if !ok {
		return proto.Address{}, errors.Wrapf(errs.ErrNoSuchToken, "%s", key)
	}
	return owner, nil
}

func (r *Registry) TokenURI(ctx context.Context, key proto.AssetKey) (string, error) {
	if _, err := r.OwnerOf(ctx, key); err != nil {
		return "", err
	}
	return r.storage.View(ctx).TokenURI(key)
}

func (r *Registry) GetApproved(ctx context.Context, key proto.AssetKey) (proto.Address, error) {
	if _, err := r.OwnerOf(ctx, key); err != nil {
		return proto.Address{}, err
	}
	return r.storage.View(ctx).TokenApproved(key)
}

func (r *Registry) Token(ctx context.Context, key proto.AssetKey) (TokenInfo, error) {
	v := r.storage.View(ctx)
	owner, ok, err := v.TokenOwner(key)
	if err != nil {
		return TokenInfo{}, err
	}
	if !ok {
		return TokenInfo{}, errors.Wrapf(errs.ErrNoSuchToken, "%s", key)
	}
	approved, err := v.TokenApproved(key)
	if err != nil {
		return TokenInfo{}, err
	}
	uri, err := v.TokenURI(key)
	if err != nil {
		return TokenInfo{}, err
	}
	return TokenInfo{Key: key, Owner: owner, Approved: approved, URI: uri}, nil
}

// Approve lets the approved address transfer the token on behalf of the owner.
// Only the owner can approve, the zero address clears the approval.
func (r *Registry) Approve(ctx context.Context, caller proto.Address, key proto.AssetKey, approved proto.Address) error {
	return r.update(ctx, func(_ context.Context, tx *state.Tx) error {
		owner, ok, err := tx.TokenOwner(key)
		if err != nil {
			return err
		}
		if !ok {
			return errors.Wrapf(errs.ErrNoSuchToken, "%s", key)
		}
		if caller != owner {
			return errors.Wrapf(errs.ErrNotAuthorized, "approve %s by %s", key, caller)
		}
		if approved == owner {
			return ErrApproveToOwner
		}
		return tx.SetTokenApproved(key, approved)
	})
}

// Transfer moves the token from its owner to the receiver. The operator must be either
// the owner or the approved address. The approval is cleared.
func (r *Registry) Transfer(ctx context.Context, operator proto.Address, key proto.AssetKey, from, to proto.Address) error {
	if to.IsZero() {
		return ErrInvalidReceiver
	}
	err := r.update(ctx, func(_ context.Context, tx *state.Tx) error {
		owner, ok, err := tx.TokenOwner(key)
		if err != nil {
			return err
		}
		if !ok {
			return errors.Wrapf(errs.ErrNoSuchToken, "%s", key)
		}
		if owner != from {
			return errors.Wrapf(errs.ErrNotAuthorized, "%s is not the owner of %s", from, key)
		}
		if operator != owner {
			approved, err := tx.TokenApproved(key)
			if err != nil {
				return err
			}
			if approved.IsZero() || approved != operator {
				return errors.Wrapf(errs.ErrNotAuthorized, "transfer %s by %s", key, operator)
			}
		}
		if err := tx.SetTokenApproved(key, proto.Address{}); err != nil {
			return err
		}
		return tx.SetTokenOwner(key, to)
	})
	if err != nil {
		return err
	}
	r.logger.Debug("Token transferred", logging.Asset(key),
		logging.Address("from", from), logging.Address("to", to))
	return nil
}
