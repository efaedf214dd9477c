// Package utils
package utils

import (
	"math/big"
)

var zero = big.NewInt(0)

// ParseAmount parses a decimal-string integer, treating empty as zero.
// Negative or malformed input yields ok=false.
func ParseAmount(s string) (*big.Int, bool) {
	if s == "" {
		return new(big.Int), true
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Cmp(zero) < 0 {
		return nil, false
	}
	return v, true
}

// SumAmounts adds decimal-string integers, skipping malformed entries.
func SumAmounts(amounts ...string) *big.Int {
	total := new(big.Int)
	for _, s := range amounts {
		v, ok := ParseAmount(s)
		if !ok {
			continue
		}
		total.Add(total, v)
	}
	return total
}

// FractionBps returns part*10000/whole floored, the basis-point share of
// part in whole. Returns 0 when whole is zero.
func FractionBps(part, whole *big.Int) int64 {
	if whole == nil || whole.Cmp(zero) <= 0 {
		return 0
	}
	scaled := new(big.Int).Mul(part, big.NewInt(10000))
	scaled.Quo(scaled, whole)
	return scaled.Int64()
}

// ShareOfBps returns whole*bps/10000 floored.
func ShareOfBps(whole *big.Int, bps int64) *big.Int {
	share := new(big.Int).Mul(whole, big.NewInt(bps))
	return share.Quo(share, big.NewInt(10000))
}
