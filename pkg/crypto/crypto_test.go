package crypto

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashes(t *testing.T) {
	for _, tc := range []struct {
		data   string
		keccak string
		fast   string
		secure string
	}{
		{
			data:   "0100000000000000000000000000000000000000000000000000000000000000",
			keccak: "48078cfed56339ea54962e72c37c7f588fc4f8e5bc173827ba75cb10a63a96a5",
			fast:   "afbc1c053c2f278e3cbd4409c1c094f184aa459dd2f7fca96d6077730ab9ffe3",
			secure: "44282d24d307fb66f385e9a814d07b693d17653c5b88d2e9d4e2a3ccc8216e10",
		},
		{
			data:   "0000000000",
			keccak: "c41589e7559804ea4a2080dad19d876a024ccb05117835447d72ce08c1d020ec",
			fast:   "569ed9e4a5463896190447e6ffe37c394c4d77ce470aa29ad762e0286b896832",
			secure: "c67437bdaf6ed0ce5d3c39eb6dd591d8005fd0c1fb96cb134a6291ab8e1a39ac",
		},
	} {
		data, err := hex.DecodeString(tc.data)
		require.NoError(t, err)
		assert.Equal(t, tc.keccak, Keccak256(data).Hex())
		fh, err := FastHash(data)
		require.NoError(t, err)
		assert.Equal(t, tc.fast, fh.Hex())
		sh, err := SecureHash(data)
		require.NoError(t, err)
		assert.Equal(t, tc.secure, sh.Hex())
	}
}

func TestDigestBase58RoundTrip(t *testing.T) {
	d := MustSecureHash([]byte("gomarket"))
	parsed, err := NewDigestFromBase58(d.String())
	require.NoError(t, err)
	assert.Equal(t, d, parsed)

	_, err = NewDigestFromBase58("3mJr7AoUXx2Wqd")
	assert.Error(t, err)
	_, err = NewDigestFromBase58("0OIl")
	assert.Error(t, err)
}
