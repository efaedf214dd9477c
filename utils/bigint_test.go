// Package utils
package utils

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	v, ok := ParseAmount("600")
	assert.True(t, ok)
	assert.Equal(t, int64(600), v.Int64())

	v, ok = ParseAmount("")
	assert.True(t, ok)
	assert.Equal(t, int64(0), v.Int64())

	_, ok = ParseAmount("-5")
	assert.False(t, ok)

	_, ok = ParseAmount("12x")
	assert.False(t, ok)
}

func TestSumAmounts(t *testing.T) {
	total := SumAmounts("600", "300", "50")
	assert.Equal(t, int64(950), total.Int64())
}

func TestFractionBps(t *testing.T) {
	// 400/900 = 44.44% -> 4444 bps floored
	assert.Equal(t, int64(4444), FractionBps(big.NewInt(400), big.NewInt(900)))
	// 600/900 = 66.66% -> 6666 bps floored
	assert.Equal(t, int64(6666), FractionBps(big.NewInt(600), big.NewInt(900)))
	assert.Equal(t, int64(0), FractionBps(big.NewInt(1), big.NewInt(0)))
}

func TestShareOfBps(t *testing.T) {
	// 8% of 10000 supply
	assert.Equal(t, int64(800), ShareOfBps(big.NewInt(10000), 800).Int64())
	// flooring: 8% of 12501 = 1000.08 -> 1000
	assert.Equal(t, int64(1000), ShareOfBps(big.NewInt(12501), 800).Int64())
}
