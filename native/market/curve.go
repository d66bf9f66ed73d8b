package market

import "math/big"

// Settlement amounts are denominated in octas, the smallest unit of the
// settlement currency. One whole unit is 1e8 octas.
const (
	// Octa is the number of smallest units per whole settlement unit.
	Octa = 100_000_000
	// BpsDenominator is the basis-point scale shared by fees and curve weights.
	BpsDenominator = 10_000

	// unitScale rescales the dimensionless curve value into octas.
	unitScale = Octa

	// maxCurveN bounds the summation index so that the reduced cubic product
	// n(n+1)(2n+1)/6 stays inside uint64. Supplies that push
	// supply+weightC-1 past this are rejected with ErrSupplyCeiling.
	maxCurveN = 3_000_000
)

var (
	initialPrice   = big.NewInt(Octa)
	bigBps         = big.NewInt(BpsDenominator)
	bigUnitScale   = big.NewInt(unitScale)
	maxCurveWeight = uint64(BpsDenominator)
)

// InitialPrice returns the price floor applied to every unit on the curve.
func InitialPrice() *big.Int {
	return new(big.Int).Set(initialPrice)
}

// CurveWeights captures the three bonding-curve coefficients. A and B are
// basis points of 10000; C is a small constant supply offset.
type CurveWeights struct {
	A uint64
	B uint64
	C uint64
}

// Valid reports whether the weights sit inside their configured bounds.
func (w CurveWeights) Valid() bool {
	if w.A < 1 || w.A > maxCurveWeight {
		return false
	}
	if w.B < 1 || w.B > maxCurveWeight {
		return false
	}
	return w.C >= 1 && w.C <= 100
}

// summation computes S(n) = n*(n+1)*(2n+1)/6 without letting the intermediate
// product overflow. The factor of 6 is divided out of n and 2n^2+3n+1 before
// the final multiplication: one of the two terms is always even and one is
// always divisible by three, so the division is exact.
func summation(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	inner := 2*n*n + 3*n + 1
	term := n
	rem := uint64(6)
	if inner%2 == 0 {
		inner /= 2
		rem /= 2
	} else if term%2 == 0 {
		term /= 2
		rem /= 2
	}
	if inner%3 == 0 {
		inner /= 3
		rem /= 3
	} else if term%3 == 0 {
		term /= 3
		rem /= 3
	}
	return term * inner / rem
}

// UnitPrice returns the price of the single unit issued at the given supply
// level. Supply zero and the degenerate n<=1 region price at the floor.
func UnitPrice(supply uint64, weights CurveWeights) (*big.Int, error) {
	if !weights.Valid() {
		return nil, ErrInvalidWeight
	}
	if supply == 0 {
		return InitialPrice(), nil
	}
	n := supply + weights.C - 1
	if n <= 1 {
		return InitialPrice(), nil
	}
	if n > maxCurveN {
		return nil, ErrSupplyCeiling
	}
	price := new(big.Int).SetUint64(summation(n))
	price.Mul(price, new(big.Int).SetUint64(weights.A))
	price.Div(price, bigBps)
	price.Mul(price, new(big.Int).SetUint64(weights.B))
	price.Div(price, bigBps)
	price.Mul(price, bigUnitScale)
	if price.Cmp(initialPrice) < 0 {
		return InitialPrice(), nil
	}
	return price, nil
}

// TotalPrice integrates the curve over amount units starting from the current
// supply. Buys price unit i at level supply+i; sells price unit i at level
// supply-i-1, so a unit bought at a given depth sells back at the same
// per-unit price absent fees.
func TotalPrice(supply, amount uint64, sell bool, weights CurveWeights) (*big.Int, error) {
	if sell && amount > supply {
		return nil, ErrSupplyUnderflow
	}
	total := big.NewInt(0)
	for i := uint64(0); i < amount; i++ {
		level := supply + i
		if sell {
			level = supply - i - 1
		}
		unit, err := UnitPrice(level, weights)
		if err != nil {
			return nil, err
		}
		total.Add(total, unit)
	}
	return total, nil
}
