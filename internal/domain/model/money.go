package model

import (
	"errors"
	"math"
	"math/bits"
)

// MaxLineQuantity caps one cart or order line. Request validation uses the same
// bound (lte=10000).
const MaxLineQuantity int64 = 10000

// ErrAmountOverflow means a money computation does not fit in int64.
var ErrAmountOverflow = errors.New("amount exceeds the supported range")

// MulAmount multiplies two non-negative amounts without wrapping.
func MulAmount(a, b int64) (int64, error) {
	if a < 0 || b < 0 {
		return 0, ErrAmountOverflow
	}
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	if hi != 0 || lo > math.MaxInt64 {
		return 0, ErrAmountOverflow
	}
	return int64(lo), nil
}

// AddAmount adds two non-negative amounts without wrapping.
func AddAmount(a, b int64) (int64, error) {
	if a < 0 || b < 0 || a > math.MaxInt64-b {
		return 0, ErrAmountOverflow
	}
	return a + b, nil
}
