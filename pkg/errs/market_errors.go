package errs

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/wavesplatform/gomarket/pkg/proto"
)

var (
	// ErrLedgerBusy is returned when the ledger lock could not be acquired in time,
	// including re-entrant calls made from inside a collaborator.
	ErrLedgerBusy = errors.New("marketplace ledger is busy")
	// ErrProceedsOverflow is returned when crediting a sale would overflow the seller's balance.
	ErrProceedsOverflow = errors.New("proceeds balance overflow")

	ErrNoSuchCollection  = errors.New("no such collection")
	ErrNoSuchToken       = errors.New("no such token")
	ErrNotAuthorized     = errors.New("caller is neither owner nor approved")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrBalanceOverflow   = errors.New("balance overflow")
)

type InvalidPrice struct {
	ValidationErrorImpl
	message string
	Key     proto.AssetKey
	Price   uint64
}

func NewInvalidPrice(key proto.AssetKey, price uint64) *InvalidPrice {
	return &InvalidPrice{
		message: fmt.Sprintf("price must be above zero, asset %s, price %d", key, price),
		Key:     key,
		Price:   price,
	}
}

func (a InvalidPrice) Error() string {
	return a.message
}

func (a InvalidPrice) Extend(message string) error {
	a.message = fmtExtend(a, message)
	return &a
}

func (a InvalidPrice) Is(target error) bool {
	_, ok := target.(InvalidPrice)
	return ok
}

type AlreadyListed struct {
	ValidationErrorImpl
	message string
	Key     proto.AssetKey
}

func NewAlreadyListed(key proto.AssetKey) *AlreadyListed {
	return &AlreadyListed{message: fmt.Sprintf("asset %s is already listed", key), Key: key}
}

func (a AlreadyListed) Error() string {
	return a.message
}

func (a AlreadyListed) Extend(message string) error {
	a.message = fmtExtend(a, message)
	return &a
}

func (a AlreadyListed) Is(target error) bool {
	_, ok := target.(AlreadyListed)
	return ok
}

type NotListed struct {
	ValidationErrorImpl
	message string
	Key     proto.AssetKey
}

func NewNotListed(key proto.AssetKey) *NotListed {
	return &NotListed{message: fmt.Sprintf("asset %s is not listed", key), Key: key}
}

func (a NotListed) Error() string {
	return a.message
}

func (a NotListed) Extend(message string) error {
	a.message = fmtExtend(a, message)
	return &a
}

func (a NotListed) Is(target error) bool {
	_, ok := target.(NotListed)
	return ok
}

// NotOwner is returned when the caller is not the current registry owner of the asset.
type NotOwner struct {
	ValidationErrorImpl
	message string
	Key     proto.AssetKey
	Caller  proto.Address
	Owner   proto.Address
}

func NewNotOwner(key proto.AssetKey, caller, owner proto.Address) *NotOwner {
	return &NotOwner{
		message: fmt.Sprintf("address %s is not the owner of asset %s", caller, key),
		Key:     key,
		Caller:  caller,
		Owner:   owner,
	}
}

func (a NotOwner) Error() string {
	return a.message
}

func (a NotOwner) Extend(message string) error {
	a.message = fmtExtend(a, message)
	return &a
}

func (a NotOwner) Is(target error) bool {
	_, ok := target.(NotOwner)
	return ok
}

type NotApprovedForMarketplace struct {
	ValidationErrorImpl
	message  string
	Key      proto.AssetKey
	Approved proto.Address
}

func NewNotApprovedForMarketplace(key proto.AssetKey, approved proto.Address) *NotApprovedForMarketplace {
	return &NotApprovedForMarketplace{
		message:  fmt.Sprintf("marketplace is not approved to transfer asset %s", key),
		Key:      key,
		Approved: approved,
	}
}

func (a NotApprovedForMarketplace) Error() string {
	return a.message
}

func (a NotApprovedForMarketplace) Extend(message string) error {
	a.message = fmtExtend(a, message)
	return &a
}

func (a NotApprovedForMarketplace) Is(target error) bool {
	_, ok := target.(NotApprovedForMarketplace)
	return ok
}

type PriceNotMet struct {
	ValidationErrorImpl
	message string
	Key     proto.AssetKey
	Price   uint64
	Payment uint64
}

func NewPriceNotMet(key proto.AssetKey, price, payment uint64) *PriceNotMet {
	return &PriceNotMet{
		message: fmt.Sprintf("payment %d does not meet price %d of asset %s", payment, price, key),
		Key:     key,
		Price:   price,
		Payment: payment,
	}
}

func (a PriceNotMet) Error() string {
	return a.message
}

func (a PriceNotMet) Extend(message string) error {
	a.message = fmtExtend(a, message)
	return &a
}

func (a PriceNotMet) Is(target error) bool {
	_, ok := target.(PriceNotMet)
	return ok
}

type NoProceeds struct {
	ValidationErrorImpl
	message string
	Seller  proto.Address
}

func NewNoProceeds(seller proto.Address) *NoProceeds {
	return &NoProceeds{message: fmt.Sprintf("no proceeds for address %s", seller), Seller: seller}
}

func (a NoProceeds) Error() string {
	return a.message
}

func (a NoProceeds) Extend(message string) error {
	a.message = fmtExtend(a, message)
	return &a
}

func (a NoProceeds) Is(target error) bool {
	_, ok := target.(NoProceeds)
	return ok
}

func IsInvalidPrice(err error) bool {
	return errors.Is(err, InvalidPrice{})
}

func IsAlreadyListed(err error) bool {
	return errors.Is(err, AlreadyListed{})
}

func IsNotListed(err error) bool {
	return errors.Is(err, NotListed{})
}

func IsNotOwner(err error) bool {
	return errors.Is(err, NotOwner{})
}

func IsNotApprovedForMarketplace(err error) bool {
	return errors.Is(err, NotApprovedForMarketplace{})
}

func IsPriceNotMet(err error) bool {
	return errors.Is(err, PriceNotMet{})
}

func IsNoProceeds(err error) bool {
	return errors.Is(err, NoProceeds{})
}
