package proto

import (
	"strconv"
	"strings"

	"github.com/ccoveille/go-safecast"
	"github.com/ericlagergren/decimal"
	"github.com/pkg/errors"
)

// Decimals is the number of fractional digits of an amount unit: 1.0 is 100_000_000 units.
const Decimals = 8

const unitsPerCoin uint64 = 100_000_000

// ParseAmount converts a decimal string like "0.1" into integer units.
func ParseAmount(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	d, ok := decimal.WithContext(decimal.Context128).SetString(s)
	if !ok || !d.IsFinite() {
		return 0, errors.Errorf("invalid amount %q", s)
	}
	if d.Sign() < 0 {
		return 0, errors.Errorf("negative amount %q", s)
	}
	if d.Scale() > Decimals {
		return 0, errors.Errorf("amount %q has more than %d decimals", s, Decimals)
	}
	u := decimal.WithContext(decimal.Context128).Mul(d, decimal.New(1, -Decimals))
	if err := u.Context.Err(); err != nil {
		return 0, errors.Wrapf(err, "invalid amount %q", s)
	}
	if !u.IsInt() {
		return 0, errors.Errorf("amount %q is not a whole number of units", s)
	}
	v, ok := u.Int64()
	if !ok {
		return 0, errors.Errorf("amount %q is out of range", s)
	}
	r, err := safecast.ToUint64(v)
	if err != nil {
		return 0, errors.Wrapf(err, "amount %q is out of range", s)
	}
	return r, nil
}

// FormatAmount renders units as a decimal string without trailing zeros.
func FormatAmount(units uint64) string {
	whole := strconv.FormatUint(units/unitsPerCoin, 10)
	frac := units % unitsPerCoin
	if frac == 0 {
		return whole
	}
	fs := strconv.FormatUint(frac, 10)
	fs = strings.Repeat("0", Decimals-len(fs)) + fs
	return whole + "." + strings.TrimRight(fs, "0")
}
