package outpost

import (
	"encoding/hex"
	"strconv"

	"passhub/core/events"
	"passhub/core/types"
)

const (
	// EventTypeOutpostCreated is emitted when a creator purchases an outpost.
	EventTypeOutpostCreated = "outpost.created"
	// EventTypeOutpostPriceUpdated is emitted when the owner re-prices the outpost.
	EventTypeOutpostPriceUpdated = "outpost.price.updated"
	// EventTypeOutpostPauseToggled is emitted when the pause flag flips.
	EventTypeOutpostPauseToggled = "outpost.pause.toggled"
	// EventTypeOutpostOwnershipTransferred is emitted when ownership moves.
	EventTypeOutpostOwnershipTransferred = "outpost.ownership.transferred"
	// EventTypeTierCreated is emitted when a subscription tier is added.
	EventTypeTierCreated = "outpost.tier.created"
	// EventTypeTierUpdated is emitted when an existing tier is re-priced.
	EventTypeTierUpdated = "outpost.tier.updated"
	// EventTypeSubscriptionCreated is emitted when a subscription settles.
	EventTypeSubscriptionCreated = "outpost.subscription.created"
	// EventTypeSubscriptionCancelled is emitted when a subscription is removed.
	EventTypeSubscriptionCancelled = "outpost.subscription.cancelled"
)

type eventEnvelope struct {
	evt *types.Event
}

func (e eventEnvelope) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e eventEnvelope) Event() *types.Event { return e.evt }

// WrapEvent converts a raw event payload into the emitter-friendly envelope.
func WrapEvent(evt *types.Event) events.Event { return eventEnvelope{evt: evt} }

func hexAddr(addr [20]byte) string {
	return "0x" + hex.EncodeToString(addr[:])
}

// OutpostCreatedEvent returns the structured payload for a new outpost.
func OutpostCreatedEvent(record *Outpost) *types.Event {
	return &types.Event{
		Type: EventTypeOutpostCreated,
		Attributes: map[string]string{
			"outpost": hexAddr(record.Address),
			"owner":   hexAddr(record.Owner),
			"name":    record.Name,
			"uri":     record.URI,
			"price":   record.PurchasePrice.String(),
		},
	}
}

// OutpostPriceUpdatedEvent returns the payload for a purchase-price change.
func OutpostPriceUpdatedEvent(record *Outpost) *types.Event {
	return &types.Event{
		Type: EventTypeOutpostPriceUpdated,
		Attributes: map[string]string{
			"outpost": hexAddr(record.Address),
			"price":   record.PurchasePrice.String(),
		},
	}
}

// OutpostPauseToggledEvent returns the payload for a pause flip.
func OutpostPauseToggledEvent(record *Outpost) *types.Event {
	return &types.Event{
		Type: EventTypeOutpostPauseToggled,
		Attributes: map[string]string{
			"outpost": hexAddr(record.Address),
			"paused":  strconv.FormatBool(record.Paused),
		},
	}
}

// OutpostOwnershipTransferredEvent returns the payload for an ownership move.
func OutpostOwnershipTransferredEvent(record *Outpost, previous [20]byte) *types.Event {
	return &types.Event{
		Type: EventTypeOutpostOwnershipTransferred,
		Attributes: map[string]string{
			"outpost":       hexAddr(record.Address),
			"previousOwner": hexAddr(previous),
			"newOwner":      hexAddr(record.Owner),
		},
	}
}

func tierAttributes(record *Outpost, tierID uint64) map[string]string {
	tier := record.Tiers[tierID]
	return map[string]string{
		"outpost":  hexAddr(record.Address),
		"tierId":   strconv.FormatUint(tierID, 10),
		"name":     tier.Name,
		"price":    tier.Price.String(),
		"duration": tier.Duration.String(),
	}
}

// TierCreatedEvent returns the payload for a new subscription tier.
func TierCreatedEvent(record *Outpost, tierID uint64) *types.Event {
	return &types.Event{Type: EventTypeTierCreated, Attributes: tierAttributes(record, tierID)}
}

// TierUpdatedEvent returns the payload for an in-place tier update.
func TierUpdatedEvent(record *Outpost, tierID uint64) *types.Event {
	return &types.Event{Type: EventTypeTierUpdated, Attributes: tierAttributes(record, tierID)}
}

// SubscriptionCreatedEvent returns the payload for a settled subscription.
func SubscriptionCreatedEvent(receipt *SubscriptionReceipt, referrer *[20]byte) *types.Event {
	attrs := map[string]string{
		"outpost":     hexAddr(receipt.Outpost),
		"subscriber":  hexAddr(receipt.Subscriber),
		"tierId":      strconv.FormatUint(receipt.TierID, 10),
		"price":       receipt.Price.String(),
		"protocolFee": receipt.ProtocolFee.String(),
		"referralFee": receipt.ReferralFee.String(),
		"ownerShare":  receipt.OwnerShare.String(),
		"startTime":   strconv.FormatUint(receipt.StartTime, 10),
		"endTime":     strconv.FormatUint(receipt.EndTime, 10),
	}
	if referrer != nil {
		attrs["referrer"] = hexAddr(*referrer)
	}
	return &types.Event{Type: EventTypeSubscriptionCreated, Attributes: attrs}
}

// SubscriptionCancelledEvent returns the payload for a removed subscription.
func SubscriptionCancelledEvent(addr [20]byte, subscriber [20]byte, tierID uint64) *types.Event {
	return &types.Event{
		Type: EventTypeSubscriptionCancelled,
		Attributes: map[string]string{
			"outpost":    hexAddr(addr),
			"subscriber": hexAddr(subscriber),
			"tierId":     strconv.FormatUint(tierID, 10),
		},
	}
}
