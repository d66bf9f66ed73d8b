package core

import (
	"math/big"

	"passhub/core/events"
	"passhub/core/state"
	"passhub/core/types"
	"passhub/native/market"
	"passhub/native/outpost"
	"passhub/native/params"
	"passhub/observability/metrics"
	"passhub/storage"
)

// Node owns the state manager and dispatches RPC-facing operations to the
// native engines. Engines are constructed per call over the shared manager so
// every operation sees a consistent snapshot and commits atomically.
type Node struct {
	db      storage.Database
	state   *state.Manager
	events  *events.Collector
	admin   [20]byte
	metrics *metrics.MarketMetrics
}

// NewNode wires a node over the database, seeding the protocol configuration
// on first start. The treasury argument only takes effect on that first
// start; a persisted config is never clobbered.
func NewNode(db storage.Database, admin [20]byte, treasury [20]byte) (*Node, error) {
	n := &Node{
		db:      db,
		state:   state.NewManager(db),
		events:  events.NewCollector(),
		admin:   admin,
		metrics: metrics.Market(),
	}
	err := n.state.Execute(func() error {
		store := n.newParamsStore()
		cfg := params.DefaultConfig()
		cfg.Treasury = treasury
		return store.Initialize(cfg)
	})
	if err != nil {
		return nil, err
	}
	return n, nil
}

// Events exposes the collector holding events emitted by settled operations.
func (n *Node) Events() *events.Collector { return n.events }

type eventWithPayload interface {
	Event() *types.Event
}

// RecentEvents returns the latest emitted event payloads, newest last. A
// non-positive limit returns everything.
func (n *Node) RecentEvents(limit int) []*types.Event {
	emitted := n.events.Events()
	out := make([]*types.Event, 0, len(emitted))
	for _, evt := range emitted {
		payload, ok := evt.(eventWithPayload)
		if !ok {
			continue
		}
		if event := payload.Event(); event != nil {
			out = append(out, event)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

func (n *Node) newParamsStore() *params.Store {
	store := params.NewStore(n.state)
	store.SetAuthority(n.admin)
	store.SetEmitter(n.events)
	return store
}

func (n *Node) newMarketEngine() *market.Engine {
	engine := market.NewEngine()
	engine.SetState(n.state)
	engine.SetEmitter(n.events)
	return engine
}

func (n *Node) newOutpostEngine() *outpost.Engine {
	engine := outpost.NewEngine()
	engine.SetState(n.state)
	engine.SetEmitter(n.events)
	return engine
}

// MarketBuyPass settles a pass purchase for the buyer against the target.
func (n *Node) MarketBuyPass(buyer, target [20]byte, amount uint64, referrer *[20]byte) (*market.Trade, error) {
	var trade *market.Trade
	err := n.state.Execute(func() error {
		var err error
		trade, err = n.newMarketEngine().BuyPass(buyer, target, amount, referrer)
		return err
	})
	if err != nil {
		return nil, err
	}
	n.metrics.ObserveTrade("buy", trade.Price)
	n.observeVault()
	return trade, nil
}

// MarketSellPass settles a pass redemption for the seller against the target.
func (n *Node) MarketSellPass(seller, target [20]byte, amount uint64) (*market.Trade, error) {
	var trade *market.Trade
	err := n.state.Execute(func() error {
		var err error
		trade, err = n.newMarketEngine().SellPass(seller, target, amount)
		return err
	})
	if err != nil {
		return nil, err
	}
	n.metrics.ObserveTrade("sell", trade.Price)
	n.observeVault()
	return trade, nil
}

// MarketQuote previews the curve price for a prospective trade.
func (n *Node) MarketQuote(target [20]byte, amount uint64, sell bool) (*market.Quote, error) {
	var quote *market.Quote
	err := n.state.View(func() error {
		var err error
		quote, err = n.newMarketEngine().QuotePrice(target, amount, sell)
		return err
	})
	if err != nil {
		return nil, err
	}
	return quote, nil
}

// MarketStats reports the supply ledger entry and holder balance for a target.
func (n *Node) MarketStats(target [20]byte, holder *[20]byte) (*market.PassStats, uint64, error) {
	var (
		stats *market.PassStats
		held  uint64
	)
	err := n.state.View(func() error {
		var err error
		stats, err = n.newMarketEngine().Stats(target)
		if err != nil {
			return err
		}
		if holder != nil {
			held, err = n.state.PassBalance(*holder, target)
		}
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return stats, held, nil
}

// VaultBalance reports the current redemption vault balance.
func (n *Node) VaultBalance() (*big.Int, error) {
	var balance *big.Int
	err := n.state.View(func() error {
		var err error
		balance, err = n.state.VaultBalance()
		return err
	})
	if err != nil {
		return nil, err
	}
	return balance, nil
}

func (n *Node) observeVault() {
	if balance, err := n.VaultBalance(); err == nil {
		n.metrics.SetVaultBalance(balance)
	}
}

// OutpostCreate registers a new outpost for the creator.
func (n *Node) OutpostCreate(creator [20]byte, name, description, uri string) (*outpost.Outpost, error) {
	var record *outpost.Outpost
	err := n.state.Execute(func() error {
		var err error
		record, err = n.newOutpostEngine().Create(creator, name, description, uri)
		return err
	})
	if err != nil {
		return nil, err
	}
	n.metrics.ObserveOutpostCreated()
	return record, nil
}

// OutpostGet loads an outpost record by address.
func (n *Node) OutpostGet(addr [20]byte) (*outpost.Outpost, error) {
	var record *outpost.Outpost
	err := n.state.View(func() error {
		var err error
		record, err = n.newOutpostEngine().Get(addr)
		return err
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// OutpostUpdatePrice sets the advertised purchase price on an outpost.
func (n *Node) OutpostUpdatePrice(caller, addr [20]byte, price *big.Int) (*outpost.Outpost, error) {
	var record *outpost.Outpost
	err := n.state.Execute(func() error {
		var err error
		record, err = n.newOutpostEngine().UpdatePrice(caller, addr, price)
		return err
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// OutpostTogglePause flips the emergency pause flag on an outpost.
func (n *Node) OutpostTogglePause(caller, addr [20]byte) (*outpost.Outpost, error) {
	var record *outpost.Outpost
	err := n.state.Execute(func() error {
		var err error
		record, err = n.newOutpostEngine().TogglePause(caller, addr)
		return err
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// OutpostTransferOwnership reassigns an outpost to a new owner.
func (n *Node) OutpostTransferOwnership(caller, addr, newOwner [20]byte) (*outpost.Outpost, error) {
	var record *outpost.Outpost
	err := n.state.Execute(func() error {
		var err error
		record, err = n.newOutpostEngine().TransferOwnership(caller, addr, newOwner)
		return err
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// OutpostCreateTier appends a subscription tier to an outpost.
func (n *Node) OutpostCreateTier(caller, addr [20]byte, name string, price *big.Int, duration outpost.TierDuration) (uint64, error) {
	var tierID uint64
	err := n.state.Execute(func() error {
		var err error
		tierID, err = n.newOutpostEngine().CreateTier(caller, addr, name, price, duration)
		return err
	})
	if err != nil {
		return 0, err
	}
	return tierID, nil
}

// OutpostUpdateTier rewrites the price and duration of an existing tier.
func (n *Node) OutpostUpdateTier(caller, addr [20]byte, tierID uint64, price *big.Int, duration outpost.TierDuration) error {
	return n.state.Execute(func() error {
		return n.newOutpostEngine().UpdateTier(caller, addr, tierID, price, duration)
	})
}

// OutpostSubscribe purchases a subscription tier for the subscriber.
func (n *Node) OutpostSubscribe(subscriber, addr [20]byte, tierID uint64, referrer *[20]byte) (*outpost.SubscriptionReceipt, error) {
	var receipt *outpost.SubscriptionReceipt
	err := n.state.Execute(func() error {
		var err error
		receipt, err = n.newOutpostEngine().Subscribe(subscriber, addr, tierID, referrer)
		return err
	})
	if err != nil {
		return nil, err
	}
	n.metrics.ObserveSubscription("subscribe")
	return receipt, nil
}

// OutpostCancelSubscription removes the subscriber's record without a refund.
func (n *Node) OutpostCancelSubscription(subscriber, addr [20]byte) error {
	err := n.state.Execute(func() error {
		return n.newOutpostEngine().Cancel(subscriber, addr)
	})
	if err != nil {
		return err
	}
	n.metrics.ObserveSubscription("cancel")
	return nil
}

// OutpostSubscriptionStatus reports the stored record and whether it is
// active for its tier right now.
func (n *Node) OutpostSubscriptionStatus(subscriber, addr [20]byte) (*outpost.Subscription, bool, error) {
	var (
		sub    *outpost.Subscription
		active bool
	)
	err := n.state.View(func() error {
		engine := n.newOutpostEngine()
		record, ok, err := engine.GetSubscription(subscriber, addr)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		sub = record
		active, err = engine.IsActive(subscriber, addr, record.TierID)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return sub, active, nil
}

// ParamsGet returns the current protocol configuration.
func (n *Node) ParamsGet() (*params.ProtocolConfig, error) {
	var cfg *params.ProtocolConfig
	err := n.state.View(func() error {
		var err error
		cfg, err = n.newParamsStore().Config()
		return err
	})
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParamsSetTradeFees updates the buy/sell fee schedule. Admin only.
func (n *Node) ParamsSetTradeFees(caller [20]byte, protocolBps, subjectBps, referralBps uint32) (*params.ProtocolConfig, error) {
	var cfg *params.ProtocolConfig
	err := n.state.Execute(func() error {
		var err error
		cfg, err = n.newParamsStore().SetTradeFees(caller, protocolBps, subjectBps, referralBps)
		return err
	})
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParamsSetSubscriptionFees updates the subscription fee schedule. Admin only.
func (n *Node) ParamsSetSubscriptionFees(caller [20]byte, subscriptionBps, referrerBps uint32) (*params.ProtocolConfig, error) {
	var cfg *params.ProtocolConfig
	err := n.state.Execute(func() error {
		var err error
		cfg, err = n.newParamsStore().SetSubscriptionFees(caller, subscriptionBps, referrerBps)
		return err
	})
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParamsSetCurveWeights updates the bonding-curve weights. Admin only.
func (n *Node) ParamsSetCurveWeights(caller [20]byte, weightA, weightB, weightC uint64) (*params.ProtocolConfig, error) {
	var cfg *params.ProtocolConfig
	err := n.state.Execute(func() error {
		var err error
		cfg, err = n.newParamsStore().SetCurveWeights(caller, weightA, weightB, weightC)
		return err
	})
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// GetBalance reports the settlement balance and nonce for an account.
func (n *Node) GetBalance(addr [20]byte) (*types.Account, error) {
	var account *types.Account
	err := n.state.View(func() error {
		var err error
		account, err = n.state.GetAccount(addr[:])
		return err
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// Credit adds funds to an account. Used by the faucet-style admin endpoint
// on development networks.
func (n *Node) Credit(addr [20]byte, amount *big.Int) (*types.Account, error) {
	if amount == nil || amount.Sign() <= 0 {
		return nil, market.ErrInvalidAmount
	}
	var account *types.Account
	err := n.state.Execute(func() error {
		acc, err := n.state.GetAccount(addr[:])
		if err != nil {
			return err
		}
		acc.Balance = new(big.Int).Add(acc.Balance, amount)
		account = acc
		return n.state.PutAccount(addr[:], acc)
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}
