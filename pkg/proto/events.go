package proto

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type EventType byte

const (
	ItemListedEvent EventType = iota + 1
	ItemCanceledEvent
	ItemBoughtEvent
	ProceedsWithdrawnEvent
)

var eventTypeNames = map[EventType]string{
	ItemListedEvent:        "ItemListed",
	ItemCanceledEvent:      "ItemCanceled",
	ItemBoughtEvent:        "ItemBought",
	ProceedsWithdrawnEvent: "ProceedsWithdrawn",
}

func (t EventType) String() string {
	if n, ok := eventTypeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("EventType(%d)", byte(t))
}

func (t EventType) MarshalText() ([]byte, error) {
	if _, ok := eventTypeNames[t]; !ok {
		return nil, errors.Errorf("unknown event type %d", byte(t))
	}
	return []byte(t.String()), nil
}

func (t *EventType) UnmarshalText(text []byte) error {
	for k, v := range eventTypeNames {
		if v == string(text) {
			*t = k
			return nil
		}
	}
	return errors.Errorf("unknown event type %q", string(text))
}

// Event is a notification about a committed change of the marketplace ledger.
// Fields that do not apply to the event type are left zero.
// Seq is assigned by the events journal, zero means the event was not journaled.
type Event struct {
	ID        uuid.UUID `json:"id" cbor:"1,keyasint"`
	Seq       uint64    `json:"seq,omitempty" cbor:"2,keyasint,omitempty"`
	Type      EventType `json:"type" cbor:"3,keyasint"`
	Timestamp int64     `json:"timestamp" cbor:"4,keyasint"`
	Asset     *AssetKey `json:"asset,omitempty" cbor:"5,keyasint,omitempty"`
	Seller    Address   `json:"seller" cbor:"6,keyasint"`
	Buyer     *Address  `json:"buyer,omitempty" cbor:"7,keyasint,omitempty"`
	Price     uint64    `json:"price,omitempty" cbor:"8,keyasint,omitempty"`
	Amount    uint64    `json:"amount,omitempty" cbor:"9,keyasint,omitempty"`
}

func newEvent(t EventType, ts time.Time, seller Address) Event {
	return Event{
		ID:        uuid.New(),
		Type:      t,
		Timestamp: ts.UnixMilli(),
		Seller:    seller,
	}
}

func NewItemListed(ts time.Time, key AssetKey, seller Address, price uint64) Event {
	e := newEvent(ItemListedEvent, ts, seller)
	e.Asset = &key
	e.Price = price
	return e
}

func NewItemCanceled(ts time.Time, key AssetKey, seller Address) Event {
	e := newEvent(ItemCanceledEvent, ts, seller)
	e.Asset = &key
	return e
}

func NewItemBought(ts time.Time, key AssetKey, seller, buyer Address, price uint64) Event {
	e := newEvent(ItemBoughtEvent, ts, seller)
	e.Asset = &key
	e.Buyer = &buyer
	e.Price = price
	return e
}

func NewProceedsWithdrawn(ts time.Time, seller Address, amount uint64) Event {
	e := newEvent(ProceedsWithdrawnEvent, ts, seller)
	e.Amount = amount
	return e
}

func (e Event) String() string {
	switch e.Type {
	case ItemListedEvent:
		return fmt.Sprintf("%s{asset: %s, seller: %s, price: %d}", e.Type, e.Asset, e.Seller, e.Price)
	case ItemCanceledEvent:
		return fmt.Sprintf("%s{asset: %s, seller: %s}", e.Type, e.Asset, e.Seller)
	case ItemBoughtEvent:
		return fmt.Sprintf("%s{asset: %s, seller: %s, buyer: %s, price: %d}",
			e.Type, e.Asset, e.Seller, e.Buyer, e.Price)
	case ProceedsWithdrawnEvent:
		return fmt.Sprintf("%s{seller: %s, amount: %d}", e.Type, e.Seller, e.Amount)
	default:
		return e.Type.String()
	}
}
