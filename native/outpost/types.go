package outpost

import (
	"math/big"
	"strings"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// TierDuration enumerates the three supported subscription periods.
type TierDuration uint8

const (
	DurationWeek TierDuration = iota + 1
	DurationMonth
	DurationYear
)

const (
	secondsPerWeek  = 604_800
	secondsPerMonth = 2_592_000
	secondsPerYear  = 31_536_000
)

// Seconds maps the duration class onto its fixed second count.
func (d TierDuration) Seconds() (uint64, error) {
	switch d {
	case DurationWeek:
		return secondsPerWeek, nil
	case DurationMonth:
		return secondsPerMonth, nil
	case DurationYear:
		return secondsPerYear, nil
	default:
		return 0, ErrInvalidDuration
	}
}

func (d TierDuration) String() string {
	switch d {
	case DurationWeek:
		return "week"
	case DurationMonth:
		return "month"
	case DurationYear:
		return "year"
	default:
		return "invalid"
	}
}

// ParseDuration resolves the lowercase duration name used on the wire.
func ParseDuration(raw string) (TierDuration, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "week":
		return DurationWeek, nil
	case "month":
		return DurationMonth, nil
	case "year":
		return DurationYear, nil
	default:
		return 0, ErrInvalidDuration
	}
}

// Tier is a named, priced subscription plan. Its identity is the zero-based
// insertion index, stable for the life of the outpost; price and duration may
// be updated in place by the owner.
type Tier struct {
	Name     string
	Price    *big.Int
	Duration TierDuration
}

// Clone returns a deep copy of the tier.
func (t *Tier) Clone() *Tier {
	if t == nil {
		return nil
	}
	clone := *t
	if t.Price != nil {
		clone.Price = new(big.Int).Set(t.Price)
	}
	return &clone
}

// Outpost is an ownable venue against which passes and subscriptions are
// sold. The pause flag gates every mutating operation except ownership
// transfer and unpausing itself.
type Outpost struct {
	Address       [20]byte
	Owner         [20]byte
	Name          string
	Description   string
	URI           string
	PurchasePrice *big.Int
	Paused        bool
	RoyaltyBps    uint32
	Tiers         []Tier
	NextTierID    uint64
	CreatedAt     uint64
}

// Clone returns a deep copy so state backends can hand out private instances.
func (o *Outpost) Clone() *Outpost {
	if o == nil {
		return nil
	}
	clone := *o
	if o.PurchasePrice != nil {
		clone.PurchasePrice = new(big.Int).Set(o.PurchasePrice)
	}
	clone.Tiers = make([]Tier, len(o.Tiers))
	for i := range o.Tiers {
		clone.Tiers[i] = *o.Tiers[i].Clone()
	}
	return &clone
}

// TierByID resolves a tier by its insertion index.
func (o *Outpost) TierByID(id uint64) (*Tier, bool) {
	if o == nil || id >= uint64(len(o.Tiers)) {
		return nil, false
	}
	return o.Tiers[id].Clone(), true
}

// Subscription records one subscriber's active plan on an outpost. A record
// past its EndTime is logically expired but stays in state until cancelled.
type Subscription struct {
	TierID    uint64
	StartTime uint64
	EndTime   uint64
}

// Active reports whether the subscription covers the supplied instant.
func (s *Subscription) Active(now uint64) bool {
	return s != nil && now < s.EndTime
}

const collectionSeed = "PassOutposts"

// DeriveAddress computes the deterministic outpost address from the creator
// and the venue name, mirroring named-object derivation: the entity address is
// the keccak hash of creator || collection || "::" || name.
func DeriveAddress(creator [20]byte, name string) [20]byte {
	seed := make([]byte, 0, len(creator)+len(collectionSeed)+2+len(name))
	seed = append(seed, creator[:]...)
	seed = append(seed, collectionSeed...)
	seed = append(seed, "::"...)
	seed = append(seed, name...)
	digest := ethcrypto.Keccak256(seed)
	var out [20]byte
	copy(out[:], digest[12:])
	return out
}
