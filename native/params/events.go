package params

import (
	"strconv"

	"passhub/core/events"
	"passhub/core/types"
)

// EventTypeFeesUpdated is emitted whenever the admin changes any part of the
// fee or curve schedule.
const EventTypeFeesUpdated = "params.fees.updated"

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

func (s *Store) emitFeesUpdated(cfg *ProtocolConfig) {
	if s == nil || s.emitter == nil || cfg == nil {
		return
	}
	s.emitter.Emit(WrapEvent(&types.Event{
		Type: EventTypeFeesUpdated,
		Attributes: map[string]string{
			"protocolFeeBps":     strconv.FormatUint(uint64(cfg.ProtocolFeeBps), 10),
			"subjectFeeBps":      strconv.FormatUint(uint64(cfg.SubjectFeeBps), 10),
			"referralFeeBps":     strconv.FormatUint(uint64(cfg.ReferralFeeBps), 10),
			"subscriptionFeeBps": strconv.FormatUint(uint64(cfg.SubscriptionFeeBps), 10),
			"referrerFeeBps":     strconv.FormatUint(uint64(cfg.ReferrerFeeBps), 10),
			"weightA":            strconv.FormatUint(cfg.WeightA, 10),
			"weightB":            strconv.FormatUint(cfg.WeightB, 10),
			"weightC":            strconv.FormatUint(cfg.WeightC, 10),
		},
	}))
}
