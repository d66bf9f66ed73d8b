package outpost

import (
	"math/big"
	"strings"

	"passhub/native/params"
)

// SubscriptionReceipt summarises a settled subscription purchase.
type SubscriptionReceipt struct {
	Outpost     [20]byte
	Subscriber  [20]byte
	TierID      uint64
	Price       *big.Int
	ProtocolFee *big.Int
	ReferralFee *big.Int
	OwnerShare  *big.Int
	StartTime   uint64
	EndTime     uint64
}

func feeShare(price *big.Int, bps uint32) *big.Int {
	if bps == 0 {
		return big.NewInt(0)
	}
	share := new(big.Int).Mul(price, big.NewInt(int64(bps)))
	return share.Div(share, big.NewInt(params.BpsDenominator))
}

// CreateTier adds a subscription plan to the outpost. Owner only, blocked
// while paused. Tier names must be unique per outpost with a case-sensitive
// exact match; the returned tier id is the insertion index and never changes.
func (e *Engine) CreateTier(caller [20]byte, addr [20]byte, name string, price *big.Int, duration TierDuration) (uint64, error) {
	if e == nil || e.state == nil {
		return 0, ErrNilState
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return 0, ErrInvalidName
	}
	if price == nil || price.Sign() <= 0 {
		return 0, ErrInvalidAmount
	}
	if _, err := duration.Seconds(); err != nil {
		return 0, err
	}
	record, err := e.load(addr)
	if err != nil {
		return 0, err
	}
	if record.Owner != caller {
		return 0, ErrNotOwner
	}
	if record.Paused {
		return 0, ErrEmergencyPause
	}
	for i := range record.Tiers {
		if record.Tiers[i].Name == trimmed {
			return 0, ErrTierNameExists
		}
	}
	tierID := record.NextTierID
	record.Tiers = append(record.Tiers, Tier{
		Name:     trimmed,
		Price:    new(big.Int).Set(price),
		Duration: duration,
	})
	record.NextTierID++
	if err := e.state.OutpostPut(record); err != nil {
		return 0, err
	}
	e.emit(TierCreatedEvent(record, tierID))
	return tierID, nil
}

// UpdateTier rewrites the price and duration of an existing tier in place.
// Owner only, blocked while paused; the tier name and id are immutable.
func (e *Engine) UpdateTier(caller [20]byte, addr [20]byte, tierID uint64, price *big.Int, duration TierDuration) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	if price == nil || price.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if _, err := duration.Seconds(); err != nil {
		return err
	}
	record, err := e.load(addr)
	if err != nil {
		return err
	}
	if record.Owner != caller {
		return ErrNotOwner
	}
	if record.Paused {
		return ErrEmergencyPause
	}
	if tierID >= uint64(len(record.Tiers)) {
		return ErrTierNotFound
	}
	record.Tiers[tierID].Price = new(big.Int).Set(price)
	record.Tiers[tierID].Duration = duration
	if err := e.state.OutpostPut(record); err != nil {
		return err
	}
	e.emit(TierUpdatedEvent(record, tierID))
	return nil
}

// Subscribe purchases the tier for the subscriber. The tier price is split as
// a deduction: protocol and (when a referrer is attached) referral fees come
// out of the price and the remainder goes to the outpost owner. An existing
// record blocks a new subscription even after its end time has passed; the
// subscriber must cancel first.
func (e *Engine) Subscribe(subscriber [20]byte, addr [20]byte, tierID uint64, referrer *[20]byte) (*SubscriptionReceipt, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	cfg, err := e.state.ProtocolConfig()
	if err != nil {
		return nil, err
	}
	record, err := e.load(addr)
	if err != nil {
		return nil, err
	}
	if record.Paused {
		return nil, ErrEmergencyPause
	}
	tier, ok := record.TierByID(tierID)
	if !ok {
		return nil, ErrTierNotFound
	}
	if _, ok, err := e.state.SubscriptionGet(addr, subscriber); err != nil {
		return nil, err
	} else if ok {
		return nil, ErrAlreadySubscribed
	}
	seconds, err := tier.Duration.Seconds()
	if err != nil {
		return nil, err
	}
	price := tier.Price
	protocolFee := feeShare(price, cfg.SubscriptionFeeBps)
	referralFee := big.NewInt(0)
	if referrer != nil {
		referralFee = feeShare(price, cfg.ReferrerFeeBps)
	}
	ownerShare := new(big.Int).Set(price)
	ownerShare.Sub(ownerShare, protocolFee)
	ownerShare.Sub(ownerShare, referralFee)
	if ownerShare.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	if err := e.debit(subscriber, price); err != nil {
		return nil, err
	}
	if err := e.credit(cfg.Treasury, protocolFee); err != nil {
		return nil, err
	}
	if referrer != nil {
		if err := e.credit(*referrer, referralFee); err != nil {
			return nil, err
		}
	}
	if err := e.credit(record.Owner, ownerShare); err != nil {
		return nil, err
	}
	start := e.now()
	sub := &Subscription{TierID: tierID, StartTime: start, EndTime: start + seconds}
	if err := e.state.SubscriptionPut(addr, subscriber, sub); err != nil {
		return nil, err
	}
	receipt := &SubscriptionReceipt{
		Outpost:     addr,
		Subscriber:  subscriber,
		TierID:      tierID,
		Price:       new(big.Int).Set(price),
		ProtocolFee: protocolFee,
		ReferralFee: referralFee,
		OwnerShare:  ownerShare,
		StartTime:   sub.StartTime,
		EndTime:     sub.EndTime,
	}
	e.emit(SubscriptionCreatedEvent(receipt, referrer))
	return receipt, nil
}

// Cancel removes the subscriber's record. There is no refund; cancelling is
// also how an expired record is cleared so a fresh subscription can be bought.
func (e *Engine) Cancel(subscriber [20]byte, addr [20]byte) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	sub, ok, err := e.state.SubscriptionGet(addr, subscriber)
	if err != nil {
		return err
	}
	if !ok || sub == nil {
		return ErrSubscriptionNotFound
	}
	if err := e.state.SubscriptionDelete(addr, subscriber); err != nil {
		return err
	}
	e.emit(SubscriptionCancelledEvent(addr, subscriber, sub.TierID))
	return nil
}

// IsActive reports whether the subscriber currently holds the given tier:
// a record must exist, reference that tier, and not yet have expired.
func (e *Engine) IsActive(subscriber [20]byte, addr [20]byte, tierID uint64) (bool, error) {
	if e == nil || e.state == nil {
		return false, ErrNilState
	}
	sub, ok, err := e.state.SubscriptionGet(addr, subscriber)
	if err != nil {
		return false, err
	}
	if !ok || sub == nil || sub.TierID != tierID {
		return false, nil
	}
	return sub.Active(e.now()), nil
}

// GetSubscription returns the stored record for the subscriber, if any.
func (e *Engine) GetSubscription(subscriber [20]byte, addr [20]byte) (*Subscription, bool, error) {
	if e == nil || e.state == nil {
		return nil, false, ErrNilState
	}
	return e.state.SubscriptionGet(addr, subscriber)
}
