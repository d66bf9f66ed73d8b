package state

import (
	"math/big"

	"passhub/native/market"
	"passhub/native/params"
	"passhub/native/tokens"
)

// ProtocolConfig resolves the protocol parameters, falling back to the
// defaults when no configuration was persisted yet.
func (m *Manager) ProtocolConfig() (*params.ProtocolConfig, error) {
	return params.NewStore(m).Config()
}

// PassStatsGet loads the supply ledger entry for the target.
func (m *Manager) PassStatsGet(target [20]byte) (*market.PassStats, bool, error) {
	stats := &market.PassStats{}
	ok, err := m.KVGet(passStatsKey(target), stats)
	if err != nil || !ok {
		return nil, false, err
	}
	if stats.LastPrice == nil {
		stats.LastPrice = big.NewInt(0)
	}
	return stats, true, nil
}

// PassStatsPut persists the supply ledger entry for the target.
func (m *Manager) PassStatsPut(target [20]byte, stats *market.PassStats) error {
	return m.KVPut(passStatsKey(target), stats.Clone())
}

// VaultBalance loads the redemption vault balance, zero when unset.
func (m *Manager) VaultBalance() (*big.Int, error) {
	balance := new(big.Int)
	ok, err := m.KVGet(vaultKey, balance)
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	return balance, nil
}

// VaultSetBalance persists the redemption vault balance.
func (m *Manager) VaultSetBalance(balance *big.Int) error {
	if balance == nil {
		balance = big.NewInt(0)
	}
	return m.KVPut(vaultKey, balance)
}

// MarketTargetGet reports whether the target is an outpost and, if so, its
// fee subject and pause flag. Plain accounts have no entry.
func (m *Manager) MarketTargetGet(target [20]byte) (*market.TargetInfo, bool, error) {
	record, ok, err := m.OutpostGet(target)
	if err != nil || !ok {
		return nil, false, err
	}
	return &market.TargetInfo{Owner: record.Owner, Paused: record.Paused}, true, nil
}

func (m *Manager) passToken(target [20]byte) *tokens.Token {
	return tokens.NewRegistry(m).ForTarget(target)
}

// PassMint credits amount pass units of the target to the holder.
func (m *Manager) PassMint(holder [20]byte, target [20]byte, amount uint64) error {
	return m.passToken(target).Mint(holder, amount)
}

// PassBurn debits amount pass units of the target from the holder.
func (m *Manager) PassBurn(holder [20]byte, target [20]byte, amount uint64) error {
	return m.passToken(target).Burn(holder, amount)
}

// PassBalance reports the holder's pass balance for the target.
func (m *Manager) PassBalance(holder [20]byte, target [20]byte) (uint64, error) {
	return m.passToken(target).Balance(holder)
}
