package domain

import (
	"math"
	"strconv"
)

// AddUnits adds n units to a quantity, stopping at math.MaxInt instead of
// wrapping.
func AddUnits(q, n int) int {
	if n > 0 && q > math.MaxInt-n {
		return math.MaxInt
	}
	if n < 0 && q < math.MinInt-n {
		return math.MinInt
	}
	return q + n
}

// AddAmounts adds two peso amounts, saturating at the int64 bounds.
func AddAmounts(a, b int64) int64 {
	if b > 0 && a > math.MaxInt64-b {
		return math.MaxInt64
	}
	if b < 0 && a < math.MinInt64-b {
		return math.MinInt64
	}
	return a + b
}

// LineAmount is price times quantity, saturating at the int64 bounds.
func LineAmount(price int64, quantity int) int64 {
	q := int64(quantity)
	if price == 0 || q == 0 {
		return 0
	}
	product := price * q
	if product/q != price || (price == -1 && q == math.MinInt64) || (q == -1 && price == math.MinInt64) {
		if (price > 0) == (q > 0) {
			return math.MaxInt64
		}
		return math.MinInt64
	}
	return product
}

// FormatCLP renders amount the way Chilean prices are printed: "$12.990".
func FormatCLP(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)
	out := make([]byte, 0, len(digits)+len(digits)/3)
	for i := 0; i < len(digits); i++ {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, '.')
		}
		out = append(out, digits[i])
	}
	return sign + "$" + string(out)
}
