package market

import (
	"math"
	"math/big"
)

// PassStats tracks the outstanding pass supply and the price of the most
// recent trade for a single target. Entries are created lazily on first buy
// and never deleted.
type PassStats struct {
	TotalSupply uint64
	LastPrice   *big.Int
}

// NewPassStats returns the default entry for a target that has never traded.
func NewPassStats() *PassStats {
	return &PassStats{TotalSupply: 0, LastPrice: InitialPrice()}
}

// Clone returns a deep copy so state backends can hand out private instances.
func (s *PassStats) Clone() *PassStats {
	if s == nil {
		return nil
	}
	clone := &PassStats{TotalSupply: s.TotalSupply, LastPrice: big.NewInt(0)}
	if s.LastPrice != nil {
		clone.LastPrice.Set(s.LastPrice)
	}
	return clone
}

// RecordBuy applies a purchase to the ledger entry.
func (s *PassStats) RecordBuy(amount uint64, price *big.Int) error {
	if amount == 0 || price == nil || price.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if s.TotalSupply > math.MaxUint64-amount {
		return ErrSupplyCeiling
	}
	s.TotalSupply += amount
	s.LastPrice = new(big.Int).Set(price)
	return nil
}

// RecordSell applies a sale to the ledger entry. Selling more than the
// outstanding supply fails without mutating the entry.
func (s *PassStats) RecordSell(amount uint64, price *big.Int) error {
	if amount == 0 || price == nil || price.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if amount > s.TotalSupply {
		return ErrSupplyUnderflow
	}
	s.TotalSupply -= amount
	s.LastPrice = new(big.Int).Set(price)
	return nil
}
