// Package market implements the marketplace ledger: listings of assets, purchase settlement
// and proceeds accounting.
package market

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"github.com/qmuntal/stateless"

	"github.com/wavesplatform/gomarket/pkg/errs"
	"github.com/wavesplatform/gomarket/pkg/logging"
	"github.com/wavesplatform/gomarket/pkg/metrics"
	"github.com/wavesplatform/gomarket/pkg/proto"
	"github.com/wavesplatform/gomarket/pkg/state"
	"github.com/wavesplatform/gomarket/pkg/util/common"
	"github.com/wavesplatform/gomarket/pkg/util/lock"
)

const (
	opList     = "list"
	opCancel   = "cancel"
	opUpdate   = "update"
	opBuy      = "buy"
	opWithdraw = "withdraw"
)

type ledgerKey struct{}

// Ledger is the marketplace ledger. Operations are executed one at a time, each in its own
// state transaction: either all of its changes are committed or none.
type Ledger struct {
	storage  *state.Storage
	registry Registry
	treasury Treasury
	notifier Notifier
	// operator is the marketplace identity which must be approved to transfer listed assets.
	operator proto.Address

	mu          *lock.Mutex
	lockTimeout time.Duration
	lc          *lifecycle
	now         func() time.Time
	logger      *slog.Logger
}

func NewLedger(storage *state.Storage, registry Registry, treasury Treasury, operator proto.Address, opts ...Option) (*Ledger, error) {
	if storage == nil || registry == nil || treasury == nil {
		return nil, errors.New("ledger requires storage, registry and treasury")
	}
	if operator.IsZero() {
		return nil, errors.New("empty marketplace operator address")
	}
	l := &Ledger{
		storage:     storage,
		registry:    registry,
		treasury:    treasury,
		notifier:    discardNotifier{},
		operator:    operator,
		mu:          lock.NewMutex(),
		lockTimeout: DefaultLockTimeout,
		lc:          newLifecycle(),
		now:         time.Now,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	listings, err := storage.Listings(nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count listings")
	}
	metrics.SetActiveListings(len(listings))
	return l, nil
}

func (l *Ledger) Operator() proto.Address {
	return l.operator
}

// operation is the transaction of one ledger call.
type operation struct {
	ctx    context.Context
	tx     *state.Tx
	events []proto.Event
	// compensations undo effects of collaborators outside the ledger storage, in reverse order.
	compensations []func(ctx context.Context) error
}

func (o *operation) emit(e proto.Event) {
	o.events = append(o.events, e)
}

func (o *operation) onFailure(f func(ctx context.Context) error) {
	o.compensations = append(o.compensations, f)
}

func (l *Ledger) compensate(op string, o *operation) {
	for i := len(o.compensations) - 1; i >= 0; i-- {
		if err := o.compensations[i](o.ctx); err != nil {
			metrics.Compensation(op, metrics.ResultFailed)
			l.logger.Error("Compensation failed, manual reconciliation required",
				slog.String("operation", op), logging.Error(err), logging.ErrorTrace(err))
			continue
		}
		metrics.Compensation(op, metrics.ResultOK)
	}
	o.compensations = nil
}

// execute runs f under the ledger lock in a new state transaction.
// Calls made from inside another operation of the same ledger fail with errs.ErrLedgerBusy.
func (l *Ledger) execute(ctx context.Context, op string, f func(o *operation) error) error {
	err := l.run(ctx, op, f)
	switch {
	case err == nil:
		metrics.Operation(op, metrics.ResultOK)
	case errs.IsValidationError(err):
		metrics.Operation(op, metrics.ResultDenied)
	default:
		metrics.Operation(op, metrics.ResultFailed)
	}
	if err != nil {
		return errs.Extend(err, op)
	}
	return nil
}

func (l *Ledger) run(ctx context.Context, op string, f func(o *operation) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if owner, ok := ctx.Value(ledgerKey{}).(*Ledger); ok && owner == l {
		return errs.ErrLedgerBusy
	}
	if err := l.mu.Lock(ctx, l.lockTimeout); err != nil {
		if errors.Is(err, lock.ErrTimeout) {
			return errs.ErrLedgerBusy
		}
		return err
	}
	defer l.mu.Unlock()

	tx, err := l.storage.Begin(ctx)
	if err != nil {
		if errors.Is(err, state.ErrWriteBusy) {
			return errs.ErrLedgerBusy
		}
		return errors.Wrap(err, "failed to begin ledger transaction")
	}
	o := &operation{
		ctx: state.ContextWithTx(context.WithValue(ctx, ledgerKey{}, l), tx),
		tx:  tx,
	}
	if err := f(o); err != nil {
		l.compensate(op, o)
		tx.Discard()
		return err
	}
	if err := tx.Commit(); err != nil {
		l.logger.Error("Ledger commit failed", slog.String("operation", op),
			logging.Error(err), logging.ErrorTrace(err))
		l.compensate(op, o)
		return err
	}
	if len(o.events) > 0 {
		l.notifier.Notify(o.events...)
	}
	return nil
}

func (l *Ledger) ownerOf(ctx context.Context, key proto.AssetKey) (proto.Address, error) {
	owner, err := l.registry.OwnerOf(ctx, key)
	if err != nil {
		return proto.Address{}, errs.NewRegistryError("ownerOf", err)
	}
	return owner, nil
}

// transition fires the trigger for the current listing and stores the outcome:
// next is kept if the asset stays listed, otherwise the listing is cleared.
func (l *Ledger) transition(o *operation, key proto.AssetKey, current, next proto.Listing, trigger stateless.Trigger) error {
	listed, err := l.lc.fire(o.ctx, current, trigger)
	if err != nil {
		return err
	}
	if listed {
		return o.tx.SetListing(key, next)
	}
	return o.tx.DeleteListing(key)
}

func (l *Ledger) checkOwner(ctx context.Context, key proto.AssetKey, caller proto.Address) error {
	owner, err := l.ownerOf(ctx, key)
	if err != nil {
		return err
	}
	if owner != caller {
		return errs.NewNotOwner(key, caller, owner)
	}
	return nil
}

// ListItem lists the asset for sale at price. The caller must own the asset and approve
// the marketplace operator to transfer it.
func (l *Ledger) ListItem(ctx context.Context, key proto.AssetKey, price uint64, caller proto.Address) error {
	err := l.execute(ctx, opList, func(o *operation) error {
		current, _, err := o.tx.Listing(key)
		if err != nil {
			return err
		}
		if err := l.lc.permit(o.ctx, key, current, listTrigger); err != nil {
			return err
		}
		if err := l.checkOwner(o.ctx, key, caller); err != nil {
			return err
		}
		if price == 0 {
			return errs.NewInvalidPrice(key, price)
		}
		approved, err := l.registry.GetApproved(o.ctx, key)
		if err != nil {
			return errs.NewRegistryError("getApproved", err)
		}
		if approved != l.operator {
			return errs.NewNotApprovedForMarketplace(key, approved)
		}
		if err := l.transition(o, key, current, proto.Listing{Price: price, Seller: caller}, listTrigger); err != nil {
			return err
		}
		o.emit(proto.NewItemListed(l.now(), key, caller, price))
		return nil
	})
	if err != nil {
		return err
	}
	metrics.ListingAdded()
	return nil
}

// CancelListing removes the listing. Only the current owner of the asset can cancel it.
func (l *Ledger) CancelListing(ctx context.Context, key proto.AssetKey, caller proto.Address) error {
	err := l.execute(ctx, opCancel, func(o *operation) error {
		current, _, err := o.tx.Listing(key)
		if err != nil {
			return err
		}
		if err := l.lc.permit(o.ctx, key, current, cancelTrigger); err != nil {
			return err
		}
		if err := l.checkOwner(o.ctx, key, caller); err != nil {
			return err
		}
		if err := l.transition(o, key, current, proto.Listing{}, cancelTrigger); err != nil {
			return err
		}
		o.emit(proto.NewItemCanceled(l.now(), key, current.Seller))
		return nil
	})
	if err != nil {
		return err
	}
	metrics.ListingRemoved()
	return nil
}

// UpdateListing changes the price of the listing, the seller stays the same.
func (l *Ledger) UpdateListing(ctx context.Context, key proto.AssetKey, newPrice uint64, caller proto.Address) error {
	return l.execute(ctx, opUpdate, func(o *operation) error {
		current, _, err := o.tx.Listing(key)
		if err != nil {
			return err
		}
		if err := l.lc.permit(o.ctx, key, current, updateTrigger); err != nil {
			return err
		}
		if err := l.checkOwner(o.ctx, key, caller); err != nil {
			return err
		}
		if newPrice == 0 {
			return errs.NewInvalidPrice(key, newPrice)
		}
		updated := proto.Listing{Price: newPrice, Seller: current.Seller}
		if err := l.transition(o, key, current, updated, updateTrigger); err != nil {
			return err
		}
		o.emit(proto.NewItemListed(l.now(), key, updated.Seller, newPrice))
		return nil
	})
}

// BuyItem settles the purchase of a listed asset. The whole payment is collected from the buyer
// and credited to the seller's proceeds, the asset is transferred from the seller to the buyer.
func (l *Ledger) BuyItem(ctx context.Context, key proto.AssetKey, payment uint64, buyer proto.Address) error {
	var (
		seller   proto.Address
		credited uint64
	)
	err := l.execute(ctx, opBuy, func(o *operation) error {
		current, _, err := o.tx.Listing(key)
		if err != nil {
			return err
		}
		if err := l.lc.permit(o.ctx, key, current, buyTrigger); err != nil {
			return err
		}
		if payment < current.Price {
			return errs.NewPriceNotMet(key, current.Price, payment)
		}
		seller = current.Seller
		// The listing is cleared before any collaborator is called.
		if err := l.transition(o, key, current, proto.Listing{}, buyTrigger); err != nil {
			return err
		}
		balance, err := o.tx.Proceeds(seller)
		if err != nil {
			return err
		}
		credited, err = common.AddUint64(balance, payment)
		if err != nil {
			return errors.Wrapf(errs.ErrProceedsOverflow, "seller %s", seller)
		}
		if err := o.tx.SetProceeds(seller, credited); err != nil {
			return err
		}
		if err := l.treasury.Collect(o.ctx, buyer, payment); err != nil {
			return errs.NewTreasuryError("collect", err)
		}
		if !participates(l.treasury, l.storage) {
			o.onFailure(func(ctx context.Context) error {
				return l.treasury.Payout(ctx, buyer, payment)
			})
		}
		if err := l.registry.Transfer(o.ctx, l.operator, key, seller, buyer); err != nil {
			return errs.NewRegistryError("transfer", err)
		}
		if !participates(l.registry, l.storage) {
			o.onFailure(func(context.Context) error {
				return errors.Errorf("asset %s was transferred to %s but the purchase was not recorded", key, buyer)
			})
		}
		o.emit(proto.NewItemBought(l.now(), key, seller, buyer, payment))
		return nil
	})
	if err != nil {
		return err
	}
	metrics.Traded(payment)
	metrics.ListingRemoved()
	l.logger.Debug("Item bought", logging.Asset(key), logging.Address("seller", seller),
		logging.Address("buyer", buyer), logging.Amount("payment", payment), logging.Amount("proceeds", credited))
	return nil
}

// WithdrawProceeds pays out the whole proceeds balance of the caller.
// The balance is zeroed before the payout.
func (l *Ledger) WithdrawProceeds(ctx context.Context, caller proto.Address) error {
	var amount uint64
	err := l.execute(ctx, opWithdraw, func(o *operation) error {
		var err error
		amount, err = o.tx.Proceeds(caller)
		if err != nil {
			return err
		}
		if amount == 0 {
			return errs.NewNoProceeds(caller)
		}
		if err := o.tx.SetProceeds(caller, 0); err != nil {
			return err
		}
		if err := l.treasury.Payout(o.ctx, caller, amount); err != nil {
			return errs.NewTreasuryError("payout", err)
		}
		if !participates(l.treasury, l.storage) {
			o.onFailure(func(ctx context.Context) error {
				return l.treasury.Collect(ctx, caller, amount)
			})
		}
		o.emit(proto.NewProceedsWithdrawn(l.now(), caller, amount))
		return nil
	})
	if err != nil {
		return err
	}
	metrics.Withdrawn(amount)
	return nil
}

// GetAddressProceeds returns the committed proceeds balance of the address, zero by default.
func (l *Ledger) GetAddressProceeds(_ context.Context, addr proto.Address) (uint64, error) {
	return l.storage.Proceeds(addr)
}

// GetMarketItem returns the committed listing of the asset. The zero Listing means
// the asset is not listed.
func (l *Ledger) GetMarketItem(_ context.Context, key proto.AssetKey) (proto.Listing, error) {
	listing, _, err := l.storage.Listing(key)
	return listing, err
}

// Listings returns active listings ordered by asset key, optionally of one collection only.
func (l *Ledger) Listings(_ context.Context, collection *proto.Address) ([]proto.ListingEntry, error) {
	return l.storage.Listings(collection)
}
