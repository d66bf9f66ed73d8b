package params

import (
	"errors"
	"math/big"
)

const (
	// BpsDenominator is the shared basis-point scale for fees and weights.
	BpsDenominator = 10_000

	minCurveWeight  = 1
	maxCurveWeight  = BpsDenominator
	minWeightOffset = 1
	maxWeightOffset = 100
)

var (
	ErrNotAdmin        = errors.New("params: caller is not the protocol admin")
	ErrInvalidFeeValue = errors.New("params: fee basis points out of range")
	ErrInvalidWeight   = errors.New("params: curve weight out of range")
	ErrInvalidConfig   = errors.New("params: invalid protocol config")
)

// ProtocolConfig is the global protocol singleton: fee schedule, bonding-curve
// weights, treasury routing, and the outpost purchase price. It is created at
// protocol initialisation and mutated only by the protocol admin.
type ProtocolConfig struct {
	ProtocolFeeBps     uint32   `json:"protocolFeeBps"`
	SubjectFeeBps      uint32   `json:"subjectFeeBps"`
	ReferralFeeBps     uint32   `json:"referralFeeBps"`
	SubscriptionFeeBps uint32   `json:"subscriptionFeeBps"`
	ReferrerFeeBps     uint32   `json:"referrerFeeBps"`
	Treasury           [20]byte `json:"treasury"`
	WeightA            uint64   `json:"weightA"`
	WeightB            uint64   `json:"weightB"`
	WeightC            uint64   `json:"weightC"`
	OutpostPrice       *big.Int `json:"outpostPrice"`
}

// DefaultConfig returns the genesis parameterisation.
func DefaultConfig() *ProtocolConfig {
	return &ProtocolConfig{
		ProtocolFeeBps:     400,
		SubjectFeeBps:      800,
		ReferralFeeBps:     200,
		SubscriptionFeeBps: 400,
		ReferrerFeeBps:     200,
		WeightA:            173,
		WeightB:            257,
		WeightC:            23,
		OutpostPrice:       new(big.Int).Mul(big.NewInt(10), big.NewInt(100_000_000)),
	}
}

// Clone returns a deep copy of the config.
func (c *ProtocolConfig) Clone() *ProtocolConfig {
	if c == nil {
		return nil
	}
	clone := *c
	if c.OutpostPrice != nil {
		clone.OutpostPrice = new(big.Int).Set(c.OutpostPrice)
	}
	return &clone
}

// Validate enforces the documented bounds: every fee in [0,10000] bps,
// weights A and B in [1,10000], weight C in [1,100], and a non-negative
// outpost price.
func (c *ProtocolConfig) Validate() error {
	if c == nil {
		return ErrInvalidConfig
	}
	for _, bps := range []uint32{c.ProtocolFeeBps, c.SubjectFeeBps, c.ReferralFeeBps, c.SubscriptionFeeBps, c.ReferrerFeeBps} {
		if bps > BpsDenominator {
			return ErrInvalidFeeValue
		}
	}
	for _, w := range []uint64{c.WeightA, c.WeightB} {
		if w < minCurveWeight || w > maxCurveWeight {
			return ErrInvalidWeight
		}
	}
	if c.WeightC < minWeightOffset || c.WeightC > maxWeightOffset {
		return ErrInvalidWeight
	}
	if c.OutpostPrice != nil && c.OutpostPrice.Sign() < 0 {
		return ErrInvalidConfig
	}
	return nil
}
