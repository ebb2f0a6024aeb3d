package keyvalue

import (
	"bytes"
	"io"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/steakknife/bloomfilter"
)

var bloomFileTrailer = []byte{0xaa, 0xbb, 0xcc, 0xdd}

type BloomFilterParams struct {
	// N is how many items will be added to the filter.
	N int
	// FalsePositiveProbability is acceptable false positive rate {0..1}.
	FalsePositiveProbability float64
	// Path where bloom cache stored, empty means the filter is rebuilt on every start.
	Path string
	// Fs used to store the filter, the OS file system if nil.
	Fs afero.Fs
}

func (p BloomFilterParams) fs() afero.Fs {
	if p.Fs == nil {
		return afero.NewOsFs()
	}
	return p.Fs
}

type bloomFilter struct {
	filter *bloomfilter.Filter
	params BloomFilterParams
}

func newBloomFilter(params BloomFilterParams) (*bloomFilter, error) {
	if params.N <= 0 {
		return nil, errors.Errorf("invalid bloom filter size %d", params.N)
	}
	bf, err := bloomfilter.NewOptimal(uint64(params.N), params.FalsePositiveProbability)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create bloom filter")
	}
	return &bloomFilter{filter: bf, params: params}, nil
}

// newBloomFilterFromStore loads the filter saved by storeBloomFilter and removes the file,
// so a crash before the next store forces a rebuild.
func newBloomFilterFromStore(params BloomFilterParams) (*bloomFilter, error) {
	bf, err := newBloomFilter(params)
	if err != nil {
		return nil, err
	}
	fs := params.fs()
	bts, err := afero.ReadFile(fs, params.Path)
	if err != nil {
		return nil, err
	}
	if err := fs.Remove(params.Path); err != nil {
		return nil, err
	}
	if len(bts) < len(bloomFileTrailer) || !bytes.HasSuffix(bts, bloomFileTrailer) {
		return nil, errors.New("bloomFilter: invalid data")
	}
	if _, err := bf.filter.ReadFrom(bytes.NewReader(bts[:len(bts)-len(bloomFileTrailer)])); err != nil {
		return nil, errors.Wrap(err, "bloomFilter: failed to read")
	}
	return bf, nil
}

func storeBloomFilter(bf *bloomFilter) error {
	f, err := bf.params.fs().Create(bf.params.Path)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := bf.filter.WriteTo(f); err != nil {
		return err
	}
	_, err = f.Write(bloomFileTrailer)
	return err
}

func hashKey(data []byte) *xxhash.Digest {
	h := xxhash.New()
	_, _ = h.Write(data) // never fails
	return h
}

func (bf *bloomFilter) add(data []byte) {
	bf.filter.Add(hashKey(data))
}

func (bf *bloomFilter) notInTheSet(data []byte) bool {
	return !bf.filter.Contains(hashKey(data))
}

func (bf *bloomFilter) WriteTo(w io.Writer) (int64, error) {
	return bf.filter.WriteTo(w)
}
