package crypto

import (
	"encoding/hex"

	"github.com/mr-tron/base58/base58"
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

const DigestSize = 32

type Digest [DigestSize]byte

func (d Digest) String() string {
	return base58.Encode(d[:])
}

func (d Digest) Hex() string {
	return hex.EncodeToString(d[:])
}

func (d Digest) Bytes() []byte {
	r := make([]byte, DigestSize)
	copy(r, d[:])
	return r
}

func NewDigestFromBase58(s string) (Digest, error) {
	var d Digest
	b, err := base58.Decode(s)
	if err != nil {
		return d, errors.Wrap(err, "invalid Base58 string")
	}
	if l := len(b); l != DigestSize {
		return d, errors.Errorf("incorrect digest length %d, expected %d", l, DigestSize)
	}
	copy(d[:], b)
	return d, nil
}

func Keccak256(data []byte) (digest Digest) {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	h.Sum(digest[:0])
	return
}

func FastHash(data []byte) (digest Digest, err error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return
	}
	h.Write(data)
	h.Sum(digest[:0])
	return
}

// SecureHash is Keccak256 applied over Blake2b256 of the data.
func SecureHash(data []byte) (Digest, error) {
	fh, err := FastHash(data)
	if err != nil {
		return Digest{}, err
	}
	return Keccak256(fh[:]), nil
}

func MustSecureHash(data []byte) Digest {
	d, err := SecureHash(data)
	if err != nil {
		panic(err)
	}
	return d
}
