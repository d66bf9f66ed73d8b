package state

import (
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"passhub/core/types"
	"passhub/native/market"
	"passhub/native/outpost"
	"passhub/storage"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	return NewManager(storage.NewMemDB())
}

func addr(b byte) [20]byte {
	var a [20]byte
	a[19] = b
	return a
}

func TestExecuteCommitsOnSuccess(t *testing.T) {
	m := newTestManager(t)
	account := &types.Account{Nonce: 3, Balance: big.NewInt(500)}
	a := addr(1)
	require.NoError(t, m.Execute(func() error {
		return m.PutAccount(a[:], account)
	}))

	var loaded *types.Account
	require.NoError(t, m.View(func() error {
		var err error
		loaded, err = m.GetAccount(a[:])
		return err
	}))
	require.Equal(t, uint64(3), loaded.Nonce)
	require.Equal(t, big.NewInt(500), loaded.Balance)
}

func TestExecuteDiscardsOnError(t *testing.T) {
	m := newTestManager(t)
	boom := errors.New("boom")
	a := addr(2)
	err := m.Execute(func() error {
		if err := m.PutAccount(a[:], &types.Account{Balance: big.NewInt(42)}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	require.NoError(t, m.View(func() error {
		loaded, err := m.GetAccount(a[:])
		if err != nil {
			return err
		}
		require.Zero(t, loaded.Balance.Sign())
		return nil
	}))
}

func TestViewNeverPersists(t *testing.T) {
	m := newTestManager(t)
	a := addr(3)
	require.NoError(t, m.View(func() error {
		return m.PutAccount(a[:], &types.Account{Balance: big.NewInt(7)})
	}))
	require.NoError(t, m.View(func() error {
		loaded, err := m.GetAccount(a[:])
		if err != nil {
			return err
		}
		require.Zero(t, loaded.Balance.Sign())
		return nil
	}))
}

func TestUnknownAccountDefaultsToZero(t *testing.T) {
	m := newTestManager(t)
	a := addr(9)
	require.NoError(t, m.View(func() error {
		loaded, err := m.GetAccount(a[:])
		if err != nil {
			return err
		}
		require.NotNil(t, loaded.Balance)
		require.Zero(t, loaded.Balance.Sign())
		require.Zero(t, loaded.Nonce)
		return nil
	}))
}

func TestVaultBalanceRoundTrip(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.Execute(func() error {
		balance, err := m.VaultBalance()
		if err != nil {
			return err
		}
		require.Zero(t, balance.Sign())
		return m.VaultSetBalance(big.NewInt(123456))
	}))
	require.NoError(t, m.View(func() error {
		balance, err := m.VaultBalance()
		if err != nil {
			return err
		}
		require.Equal(t, big.NewInt(123456), balance)
		return nil
	}))
}

func TestPassStatsRoundTrip(t *testing.T) {
	m := newTestManager(t)
	target := addr(4)
	require.NoError(t, m.Execute(func() error {
		_, ok, err := m.PassStatsGet(target)
		if err != nil {
			return err
		}
		require.False(t, ok)
		return m.PassStatsPut(target, &market.PassStats{TotalSupply: 11, LastPrice: big.NewInt(9900)})
	}))
	require.NoError(t, m.View(func() error {
		stats, ok, err := m.PassStatsGet(target)
		if err != nil {
			return err
		}
		require.True(t, ok)
		require.Equal(t, uint64(11), stats.TotalSupply)
		require.Equal(t, big.NewInt(9900), stats.LastPrice)
		return nil
	}))
}

func TestPassTokenLifecycle(t *testing.T) {
	m := newTestManager(t)
	target := addr(5)
	holder := addr(6)
	require.NoError(t, m.Execute(func() error {
		if err := m.PassMint(holder, target, 4); err != nil {
			return err
		}
		return m.PassBurn(holder, target, 1)
	}))
	require.NoError(t, m.View(func() error {
		balance, err := m.PassBalance(holder, target)
		if err != nil {
			return err
		}
		require.Equal(t, uint64(3), balance)
		return nil
	}))
}

func TestOutpostAndSubscriptionRoundTrip(t *testing.T) {
	m := newTestManager(t)
	owner := addr(7)
	subscriber := addr(8)
	record := &outpost.Outpost{
		Address:       outpost.DeriveAddress(owner, "arena"),
		Owner:         owner,
		Name:          "arena",
		PurchasePrice: big.NewInt(10_0000_0000),
		RoyaltyBps:    500,
		Tiers: []outpost.Tier{
			{Name: "basic", Price: big.NewInt(100), Duration: outpost.DurationMonth},
		},
		NextTierID: 1,
		CreatedAt:  1700000000,
	}
	require.NoError(t, m.Execute(func() error {
		if err := m.OutpostPut(record); err != nil {
			return err
		}
		return m.SubscriptionPut(record.Address, subscriber, &outpost.Subscription{
			TierID:    0,
			StartTime: 1700000000,
			EndTime:   1700000000 + 2_592_000,
		})
	}))

	require.NoError(t, m.View(func() error {
		loaded, ok, err := m.OutpostGet(record.Address)
		if err != nil {
			return err
		}
		require.True(t, ok)
		require.Equal(t, record.Name, loaded.Name)
		require.Equal(t, record.Owner, loaded.Owner)
		require.Len(t, loaded.Tiers, 1)
		require.Equal(t, big.NewInt(100), loaded.Tiers[0].Price)

		sub, ok, err := m.SubscriptionGet(record.Address, subscriber)
		if err != nil {
			return err
		}
		require.True(t, ok)
		require.Equal(t, uint64(1700000000), sub.StartTime)

		info, ok, err := m.MarketTargetGet(record.Address)
		if err != nil {
			return err
		}
		require.True(t, ok)
		require.Equal(t, owner, info.Owner)
		require.False(t, info.Paused)
		return nil
	}))

	require.NoError(t, m.Execute(func() error {
		return m.SubscriptionDelete(record.Address, subscriber)
	}))
	require.NoError(t, m.View(func() error {
		_, ok, err := m.SubscriptionGet(record.Address, subscriber)
		if err != nil {
			return err
		}
		require.False(t, ok)
		return nil
	}))
}

func TestMarketTargetGetMissesPlainAccounts(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.View(func() error {
		_, ok, err := m.MarketTargetGet(addr(10))
		if err != nil {
			return err
		}
		require.False(t, ok)
		return nil
	}))
}

func TestProtocolConfigDefaults(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.View(func() error {
		cfg, err := m.ProtocolConfig()
		if err != nil {
			return err
		}
		require.Equal(t, uint32(400), cfg.ProtocolFeeBps)
		require.Equal(t, uint64(173), cfg.WeightA)
		return nil
	}))
}
