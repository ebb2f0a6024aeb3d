package proto

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssetKeyString(t *testing.T) {
	c := MustAddressFromData(CustomScheme, []byte("collection"))
	k := NewAssetKey(c, 42)
	assert.Equal(t, c.String()+"/42", k.String())

	p, err := ParseAssetKey(k.String())
	require.NoError(t, err)
	assert.Equal(t, k, p)

	for _, s := range []string{"", "42", c.String() + "/", c.String() + "/-1", "xyz/1"} {
		_, err := ParseAssetKey(s)
		assert.Error(t, err, s)
	}
}

func TestAssetKeyBytes(t *testing.T) {
	c := MustAddressFromData(CustomScheme, []byte("collection"))
	k1 := NewAssetKey(c, 1)
	k2 := NewAssetKey(c, 256)
	b1, b2 := k1.Bytes(), k2.Bytes()
	assert.Len(t, b1, AssetKeySize)
	assert.Equal(t, -1, bytes.Compare(b1, b2))

	r, err := NewAssetKeyFromBytes(b2)
	require.NoError(t, err)
	assert.Equal(t, k2, r)

	_, err = NewAssetKeyFromBytes(b2[1:])
	assert.Error(t, err)
}
