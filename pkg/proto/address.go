package proto

import (
	"bytes"
	"strconv"

	"github.com/mr-tron/base58/base58"
	"github.com/pkg/errors"

	"github.com/wavesplatform/gomarket/pkg/crypto"
)

const (
	headerSize   = 2
	bodySize     = 20
	checksumSize = 4
	AddressSize  = headerSize + bodySize + checksumSize

	addressVersion byte = 0x01

	MainNetScheme  byte = 'W'
	TestNetScheme  byte = 'T'
	StageNetScheme byte = 'S'
	CustomScheme   byte = 'E'
)

// Address identifies an account or an asset collection.
// The zero value means "no address".
type Address [AddressSize]byte

// NewAddressFromData derives an address whose body is taken from the secure hash of data.
// Used for collections created by the registry and for accounts named by a seed phrase.
func NewAddressFromData(scheme byte, data []byte) (Address, error) {
	var a Address
	a[0] = addressVersion
	a[1] = scheme
	h, err := crypto.SecureHash(data)
	if err != nil {
		return a, errors.Wrap(err, "failed to produce digest from data")
	}
	copy(a[headerSize:], h[:bodySize])
	cs, err := addressChecksum(a[:headerSize+bodySize])
	if err != nil {
		return a, errors.Wrap(err, "failed to calculate address checksum")
	}
	copy(a[headerSize+bodySize:], cs)
	return a, nil
}

func MustAddressFromData(scheme byte, data []byte) Address {
	a, err := NewAddressFromData(scheme, data)
	if err != nil {
		panic(err)
	}
	return a
}

func NewAddressFromString(s string) (Address, error) {
	var a Address
	b, err := base58.Decode(s)
	if err != nil {
		return a, errors.Wrap(err, "invalid Base58 string")
	}
	a, err = NewAddressFromBytes(b)
	if err != nil {
		return a, errors.Wrapf(err, "failed to create an address from Base58 string %q", s)
	}
	return a, nil
}

func NewAddressFromBytes(b []byte) (Address, error) {
	var a Address
	if l := len(b); l != AddressSize {
		return a, errors.Errorf("incorrect address length %d, expected %d", l, AddressSize)
	}
	copy(a[:], b)
	if ok, err := a.Validate(); !ok {
		return a, errors.Wrap(err, "invalid address")
	}
	return a, nil
}

func (a Address) Validate() (bool, error) {
	if a[0] != addressVersion {
		return false, errors.Errorf("unsupported address version %d", a[0])
	}
	ec, err := addressChecksum(a[:headerSize+bodySize])
	if err != nil {
		return false, errors.Wrap(err, "failed to calculate address checksum")
	}
	if !bytes.Equal(ec, a[headerSize+bodySize:]) {
		return false, errors.New("invalid address checksum")
	}
	return true, nil
}

func (a Address) Scheme() byte {
	return a[1]
}

func (a Address) IsZero() bool {
	return a == Address{}
}

func (a Address) Bytes() []byte {
	r := make([]byte, AddressSize)
	copy(r, a[:])
	return r
}

func (a Address) String() string {
	if a.IsZero() {
		return ""
	}
	return base58.Encode(a[:])
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*a = Address{}
		return nil
	}
	r, err := NewAddressFromString(string(text))
	if err != nil {
		return err
	}
	*a = r
	return nil
}

func (a Address) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(a.String())), nil
}

func (a *Address) UnmarshalJSON(value []byte) error {
	s := string(value)
	if s == "null" {
		return nil
	}
	s, err := strconv.Unquote(s)
	if err != nil {
		return errors.Wrap(err, "failed to unmarshal address from JSON")
	}
	return a.UnmarshalText([]byte(s))
}

func addressChecksum(b []byte) ([]byte, error) {
	h, err := crypto.SecureHash(b)
	if err != nil {
		return nil, err
	}
	c := make([]byte, checksumSize)
	copy(c, h[:checksumSize])
	return c, nil
}
