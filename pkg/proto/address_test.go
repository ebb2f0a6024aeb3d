package proto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressFromDataRoundTrip(t *testing.T) {
	for _, test := range []struct {
		scheme byte
		data   string
	}{
		{MainNetScheme, "alice"},
		{TestNetScheme, "bob"},
		{CustomScheme, ""},
		{StageNetScheme, "a rather long seed phrase used to derive an address"},
	} {
		a, err := NewAddressFromData(test.scheme, []byte(test.data))
		require.NoError(t, err)
		assert.Equal(t, test.scheme, a.Scheme())
		assert.False(t, a.IsZero())
		ok, err := a.Validate()
		require.NoError(t, err)
		assert.True(t, ok)

		b, err := NewAddressFromString(a.String())
		require.NoError(t, err)
		assert.Equal(t, a, b)

		c, err := NewAddressFromBytes(a.Bytes())
		require.NoError(t, err)
		assert.Equal(t, a, c)
	}
}

func TestAddressFromDataIsDeterministic(t *testing.T) {
	a1 := MustAddressFromData(CustomScheme, []byte("alice"))
	a2 := MustAddressFromData(CustomScheme, []byte("alice"))
	b := MustAddressFromData(CustomScheme, []byte("bob"))
	assert.Equal(t, a1, a2)
	assert.NotEqual(t, a1, b)
}

func TestAddressValidation(t *testing.T) {
	a := MustAddressFromData(CustomScheme, []byte("alice"))

	broken := a
	broken[AddressSize-1] ^= 0xff
	_, err := NewAddressFromBytes(broken[:])
	assert.ErrorContains(t, err, "invalid address checksum")

	version := a
	version[0] = 0x02
	_, err = NewAddressFromBytes(version[:])
	assert.ErrorContains(t, err, "unsupported address version")

	_, err = NewAddressFromBytes(a[:10])
	assert.ErrorContains(t, err, "incorrect address length")

	_, err = NewAddressFromString("not-base58-0OIl")
	assert.Error(t, err)
}

func TestZeroAddress(t *testing.T) {
	var a Address
	assert.True(t, a.IsZero())
	assert.Equal(t, "", a.String())

	var b Address
	require.NoError(t, b.UnmarshalText(nil))
	assert.True(t, b.IsZero())
}

func TestAddressJSON(t *testing.T) {
	type wrapper struct {
		Owner Address `json:"owner"`
	}
	a := MustAddressFromData(CustomScheme, []byte("carol"))
	js, err := json.Marshal(wrapper{Owner: a})
	require.NoError(t, err)
	assert.JSONEq(t, `{"owner":"`+a.String()+`"}`, string(js))

	var w wrapper
	require.NoError(t, json.Unmarshal(js, &w))
	assert.Equal(t, a, w.Owner)

	require.NoError(t, json.Unmarshal([]byte(`{"owner":null}`), &w))
	assert.Equal(t, a, w.Owner)

	require.Error(t, json.Unmarshal([]byte(`{"owner":"abc"}`), &w))
}
