// Package bank keeps external funds of accounts used to pay for assets and receive proceeds.
package bank

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/wavesplatform/gomarket/pkg/errs"
	"github.com/wavesplatform/gomarket/pkg/logging"
	"github.com/wavesplatform/gomarket/pkg/proto"
	"github.com/wavesplatform/gomarket/pkg/state"
	"github.com/wavesplatform/gomarket/pkg/util/common"
)

var ErrZeroAmount = errors.New("amount must be above zero")

// Bank implements the treasury of the node. Funds collected from buyers are held by the
// bank until they are paid out to sellers.
type Bank struct {
	storage *state.Storage
	logger  *slog.Logger
}

func New(storage *state.Storage, logger *slog.Logger) *Bank {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bank{storage: storage, logger: logger}
}

// SharesStorage reports whether the bank keeps its accounts in s.
func (b *Bank) SharesStorage(s *state.Storage) bool {
	return b.storage == s
}

func (b *Bank) update(ctx context.Context, f func(tx *state.Tx) error) error {
	tx, owned, err := b.storage.Join(ctx)
	if err != nil {
		return err
	}
	if err := f(tx); err != nil {
		if owned {
			tx.Discard()
		}
		return err
	}
	if owned {
		return tx.Commit()
	}
	return nil
}

func (b *Bank) Balance(ctx context.Context, addr proto.Address) (uint64, error) {
	return b.storage.View(ctx).Balance(addr)
}

// Deposit adds funds to the account and returns the new balance.
func (b *Bank) Deposit(ctx context.Context, addr proto.Address, amount uint64) (uint64, error) {
	if amount == 0 {
		return 0, ErrZeroAmount
	}
	var balance uint64
	err := b.update(ctx, func(tx *state.Tx) error {
		var err error
		balance, err = credit(tx, addr, amount)
		return err
	})
	if err != nil {
		return 0, err
	}
	b.logger.Debug("Deposit", logging.Address("address", addr), logging.Amount("amount", amount))
	return balance, nil
}

// Collect takes funds from the account.
func (b *Bank) Collect(ctx context.Context, from proto.Address, amount uint64) error {
	if amount == 0 {
		return nil
	}
	return b.update(ctx, func(tx *state.Tx) error {
		balance, err := tx.Balance(from)
		if err != nil {
			return err
		}
		rest, err := common.SubUint64(balance, amount)
		if err != nil {
			return errors.Wrapf(errs.ErrInsufficientFunds, "account %s has %d, required %d", from, balance, amount)
		}
		return tx.SetBalance(from, rest)
	})
}

// Payout sends funds to the account.
func (b *Bank) Payout(ctx context.Context, to proto.Address, amount uint64) error {
	if amount == 0 {
		return nil
	}
	return b.update(ctx, func(tx *state.Tx) error {
		_, err := credit(tx, to, amount)
		return err
	})
}

func credit(tx *state.Tx, addr proto.Address, amount uint64) (uint64, error) {
	balance, err := tx.Balance(addr)
	if err != nil {
		return 0, err
	}
	r, err := common.AddUint64(balance, amount)
	if err != nil {
		return 0, errors.Wrapf(errs.ErrBalanceOverflow, "account %s", addr)
	}
	if err := tx.SetBalance(addr, r); err != nil {
		return 0, err
	}
	return r, nil
}
