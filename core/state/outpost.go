package state

import (
	"math/big"

	"passhub/native/outpost"
)

// OutpostGet loads the outpost record stored at the derived address.
func (m *Manager) OutpostGet(addr [20]byte) (*outpost.Outpost, bool, error) {
	record := &outpost.Outpost{}
	ok, err := m.KVGet(outpostKey(addr), record)
	if err != nil || !ok {
		return nil, false, err
	}
	if record.PurchasePrice == nil {
		record.PurchasePrice = big.NewInt(0)
	}
	return record, true, nil
}

// OutpostPut persists the outpost record under its own address.
func (m *Manager) OutpostPut(record *outpost.Outpost) error {
	return m.KVPut(outpostKey(record.Address), record.Clone())
}

// SubscriptionGet loads the subscription record a subscriber holds against an
// outpost.
func (m *Manager) SubscriptionGet(outpostAddr [20]byte, subscriber [20]byte) (*outpost.Subscription, bool, error) {
	sub := &outpost.Subscription{}
	ok, err := m.KVGet(subscriptionKey(outpostAddr, subscriber), sub)
	if err != nil || !ok {
		return nil, false, err
	}
	return sub, true, nil
}

// SubscriptionPut persists the subscription record.
func (m *Manager) SubscriptionPut(outpostAddr [20]byte, subscriber [20]byte, sub *outpost.Subscription) error {
	stored := *sub
	return m.KVPut(subscriptionKey(outpostAddr, subscriber), &stored)
}

// SubscriptionDelete removes the subscription record, if any.
func (m *Manager) SubscriptionDelete(outpostAddr [20]byte, subscriber [20]byte) error {
	return m.KVDelete(subscriptionKey(outpostAddr, subscriber))
}
