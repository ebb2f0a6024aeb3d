package errs

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wavesplatform/gomarket/pkg/proto"
)

func testKey() proto.AssetKey {
	return proto.NewAssetKey(proto.MustAddressFromData(proto.CustomScheme, []byte("collection")), 1)
}

func TestMarketErrorsMatching(t *testing.T) {
	key := testKey()
	seller := proto.MustAddressFromData(proto.CustomScheme, []byte("seller"))
	for _, test := range []struct {
		err   error
		match func(error) bool
	}{
		{NewInvalidPrice(key, 0), IsInvalidPrice},
		{NewAlreadyListed(key), IsAlreadyListed},
		{NewNotListed(key), IsNotListed},
		{NewNotOwner(key, seller, proto.Address{}), IsNotOwner},
		{NewNotApprovedForMarketplace(key, proto.Address{}), IsNotApprovedForMarketplace},
		{NewPriceNotMet(key, 10, 9), IsPriceNotMet},
		{NewNoProceeds(seller), IsNoProceeds},
	} {
		assert.True(t, test.match(test.err), test.err.Error())
		assert.True(t, test.match(errors.Wrap(test.err, "wrapped")), test.err.Error())
		assert.True(t, test.match(Extend(test.err, "extended")), test.err.Error())
		assert.True(t, IsValidationError(test.err))
		assert.True(t, IsValidationError(errors.Wrap(test.err, "wrapped")))
	}
	assert.False(t, IsNotOwner(NewNotListed(key)))
	assert.False(t, IsValidationError(ErrLedgerBusy))
}

func TestMarketErrorsContext(t *testing.T) {
	key := testKey()
	caller := proto.MustAddressFromData(proto.CustomScheme, []byte("caller"))
	owner := proto.MustAddressFromData(proto.CustomScheme, []byte("owner"))

	var notOwner *NotOwner
	require.True(t, errors.As(errors.Wrap(NewNotOwner(key, caller, owner), "list"), &notOwner))
	assert.Equal(t, key, notOwner.Key)
	assert.Equal(t, caller, notOwner.Caller)
	assert.Equal(t, owner, notOwner.Owner)

	var pnm *PriceNotMet
	require.True(t, errors.As(NewPriceNotMet(key, 10, 9), &pnm))
	assert.Equal(t, uint64(10), pnm.Price)
	assert.Equal(t, uint64(9), pnm.Payment)

	ext := NewNoProceeds(caller).Extend("withdraw")
	require.EqualError(t, ext, "withdraw: no proceeds for address "+caller.String())
}

func TestCollaboratorErrors(t *testing.T) {
	err := NewRegistryError("transfer", ErrNotAuthorized)
	assert.ErrorIs(t, err, ErrNotAuthorized)
	assert.EqualError(t, err, "registry transfer: caller is neither owner nor approved")

	terr := NewTreasuryError("collect", ErrInsufficientFunds)
	assert.ErrorIs(t, errors.Wrap(terr, "buy"), ErrInsufficientFunds)
}
