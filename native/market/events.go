package market

import (
	"encoding/hex"
	"strconv"

	"passhub/core/events"
	"passhub/core/types"
)

const (
	// EventTypePassPurchased is emitted when a buy settles.
	EventTypePassPurchased = "market.pass.purchased"
	// EventTypePassSold is emitted when a sell settles.
	EventTypePassSold = "market.pass.sold"
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

func tradeAttributes(trade *Trade) map[string]string {
	return map[string]string{
		"target":      hexAddr(trade.Target),
		"trader":      hexAddr(trade.Trader),
		"amount":      strconv.FormatUint(trade.Amount, 10),
		"price":       trade.Price.String(),
		"protocolFee": trade.ProtocolFee.String(),
		"subjectFee":  trade.SubjectFee.String(),
		"supply":      strconv.FormatUint(trade.Supply, 10),
	}
}

// PassPurchasedEvent returns the structured payload for a settled buy.
func PassPurchasedEvent(trade *Trade, referrer *[20]byte) *types.Event {
	attrs := tradeAttributes(trade)
	attrs["total"] = trade.Total.String()
	attrs["referralFee"] = trade.ReferralFee.String()
	if referrer != nil {
		attrs["referrer"] = hexAddr(*referrer)
	}
	return &types.Event{Type: EventTypePassPurchased, Attributes: attrs}
}

// PassSoldEvent returns the structured payload for a settled sell.
func PassSoldEvent(trade *Trade) *types.Event {
	attrs := tradeAttributes(trade)
	attrs["net"] = trade.Total.String()
	return &types.Event{Type: EventTypePassSold, Attributes: attrs}
}
