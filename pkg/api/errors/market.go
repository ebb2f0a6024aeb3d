package errors

import (
	"net/http"

	"github.com/pkg/errors"

	"github.com/wavesplatform/gomarket/pkg/bank"
	"github.com/wavesplatform/gomarket/pkg/errs"
	"github.com/wavesplatform/gomarket/pkg/registry"
)

// MarketError is a rejected ledger, registry or bank operation.
type MarketError struct {
	genericError
}

func newMarketError(id ErrorID, code int, err error) *MarketError {
	return &MarketError{
		genericError: genericError{
			ID:       id,
			HttpCode: code,
			Message:  err.Error(),
		},
	}
}

type mapping struct {
	target error
	id     ErrorID
	code   int
}

// Typed marketplace errors are matched by value through their Is methods.
var mappings = []mapping{
	{errs.InvalidPrice{}, InvalidPriceErrorID, http.StatusBadRequest},
	{errs.AlreadyListed{}, AlreadyListedErrorID, http.StatusConflict},
	{errs.NotListed{}, NotListedErrorID, http.StatusNotFound},
	{errs.NotOwner{}, NotOwnerErrorID, http.StatusForbidden},
	{errs.NotApprovedForMarketplace{}, NotApprovedErrorID, http.StatusForbidden},
	{errs.PriceNotMet{}, PriceNotMetErrorID, http.StatusUnprocessableEntity},
	{errs.NoProceeds{}, NoProceedsErrorID, http.StatusUnprocessableEntity},
	{errs.ErrLedgerBusy, LedgerBusyErrorID, http.StatusServiceUnavailable},
	{errs.ErrNotAuthorized, NotAuthorizedErrorID, http.StatusForbidden},
	{errs.ErrNoSuchToken, NoSuchTokenErrorID, http.StatusNotFound},
	{errs.ErrNoSuchCollection, NoSuchCollectionErrorID, http.StatusNotFound},
	{errs.ErrInsufficientFunds, InsufficientFundsErrorID, http.StatusUnprocessableEntity},
	{errs.ErrBalanceOverflow, BalanceOverflowErrorID, http.StatusUnprocessableEntity},
	{errs.ErrProceedsOverflow, BalanceOverflowErrorID, http.StatusUnprocessableEntity},
	{registry.ErrCollectionExists, CollectionExistsErrorID, http.StatusConflict},
	{registry.ErrMintFeeNotMet, MintFeeNotMetErrorID, http.StatusUnprocessableEntity},
	{registry.ErrInvalidName, CustomValidationErrorID, http.StatusBadRequest},
	{registry.ErrInvalidReceiver, CustomValidationErrorID, http.StatusBadRequest},
	{registry.ErrApproveToOwner, CustomValidationErrorID, http.StatusBadRequest},
	{bank.ErrZeroAmount, CustomValidationErrorID, http.StatusBadRequest},
}

// FromMarketError converts the error of a marketplace operation to the API error.
// It returns nil if the error is not a known rejection.
func FromMarketError(err error) *MarketError {
	for _, m := range mappings {
		if errors.Is(err, m.target) {
			return newMarketError(m.id, m.code, err)
		}
	}
	return nil
}
