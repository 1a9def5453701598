package utils

import "math"

// RoundToDecimalPrecision floors a quantity to the given number of decimal
// places. Precision 0 floors to whole units, which is the default for equity
// position sizing.
func RoundToDecimalPrecision(quantity float64, precision int) float64 {
	if precision < 0 {
		precision = 0
	}

	factor := math.Pow(10, float64(precision))

	return math.Floor(quantity*factor) / factor
}
