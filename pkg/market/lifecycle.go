package market

import (
	"context"

	"github.com/pkg/errors"
	"github.com/qmuntal/stateless"

	"github.com/wavesplatform/gomarket/pkg/errs"
	"github.com/wavesplatform/gomarket/pkg/proto"
)

const (
	unlistedState = "Unlisted"
	listedState   = "Listed"
)

const (
	listTrigger   = "List"
	updateTrigger = "Update"
	cancelTrigger = "Cancel"
	buyTrigger    = "Buy"
)

// lifecycle is the state machine of a single listing. The machine is shared by all listings:
// its state is loaded from the listing before every check, which is safe under the ledger lock.
type lifecycle struct {
	fsm     *stateless.StateMachine
	current stateless.State
}

func newLifecycle() *lifecycle {
	lc := &lifecycle{current: unlistedState}
	lc.fsm = stateless.NewStateMachineWithExternalStorage(func(_ context.Context) (stateless.State, error) {
		return lc.current, nil
	}, func(_ context.Context, s stateless.State) error {
		lc.current = s
		return nil
	}, stateless.FiringImmediate)
	lc.fsm.Configure(unlistedState).
		Permit(listTrigger, listedState)
	lc.fsm.Configure(listedState).
		PermitReentry(updateTrigger).
		Permit(cancelTrigger, unlistedState).
		Permit(buyTrigger, unlistedState)
	return lc
}

func stateOf(l proto.Listing) stateless.State {
	if l.Active() {
		return listedState
	}
	return unlistedState
}

// permit checks that the trigger is allowed for the listing of the asset.
func (lc *lifecycle) permit(ctx context.Context, key proto.AssetKey, l proto.Listing, trigger stateless.Trigger) error {
	lc.current = stateOf(l)
	ok, err := lc.fsm.CanFireCtx(ctx, trigger)
	if err != nil {
		return errors.Wrapf(err, "listing state machine, trigger %v", trigger)
	}
	if ok {
		return nil
	}
	if lc.current == listedState {
		return errs.NewAlreadyListed(key)
	}
	return errs.NewNotListed(key)
}

// fire moves the listing to the next state and reports whether it stays listed.
func (lc *lifecycle) fire(ctx context.Context, l proto.Listing, trigger stateless.Trigger) (bool, error) {
	lc.current = stateOf(l)
	if err := lc.fsm.FireCtx(ctx, trigger); err != nil {
		return false, errors.Wrapf(err, "listing state machine, trigger %v", trigger)
	}
	return lc.current == listedState, nil
}
