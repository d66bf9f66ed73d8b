package market

import (
	"math/big"

	"passhub/core/events"
	"passhub/core/types"
	"passhub/native/params"
)

// TargetInfo describes a pass target that is backed by an outpost. Plain
// accounts trading as their own target have no entry.
type TargetInfo struct {
	Owner  [20]byte
	Paused bool
}

type engineState interface {
	ProtocolConfig() (*params.ProtocolConfig, error)
	GetAccount(addr []byte) (*types.Account, error)
	PutAccount(addr []byte, account *types.Account) error
	PassStatsGet(target [20]byte) (*PassStats, bool, error)
	PassStatsPut(target [20]byte, stats *PassStats) error
	VaultBalance() (*big.Int, error)
	VaultSetBalance(balance *big.Int) error
	MarketTargetGet(target [20]byte) (*TargetInfo, bool, error)
	PassMint(holder [20]byte, target [20]byte, amount uint64) error
	PassBurn(holder [20]byte, target [20]byte, amount uint64) error
	PassBalance(holder [20]byte, target [20]byte) (uint64, error)
}

// Trade summarises a settled buy or sell.
type Trade struct {
	Target      [20]byte
	Trader      [20]byte
	Amount      uint64
	Price       *big.Int
	ProtocolFee *big.Int
	SubjectFee  *big.Int
	ReferralFee *big.Int
	Total       *big.Int
	Supply      uint64
}

// Quote is a read-only price preview for a prospective trade.
type Quote struct {
	Target [20]byte
	Amount uint64
	Sell   bool
	Price  *big.Int
	Supply uint64
}

// Engine settles pass trades: it prices them on the bonding curve, splits the
// fees, moves settlement funds, maintains the redemption vault, and mints or
// burns the pass tokens. The protocol config is snapshotted once at call
// entry, so a concurrent fee update never affects a call already in flight.
type Engine struct {
	state   engineState
	emitter events.Emitter
}

// NewEngine constructs a market engine with default dependencies.
func NewEngine() *Engine {
	return &Engine{emitter: events.NoopEmitter{}}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetEmitter configures the event emitter used by the engine.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

func (e *Engine) emit(evt *types.Event) {
	if e == nil || evt == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(WrapEvent(evt))
}

func ensureAccount(acc *types.Account) *types.Account {
	if acc == nil {
		return &types.Account{Balance: big.NewInt(0)}
	}
	if acc.Balance == nil {
		acc.Balance = big.NewInt(0)
	}
	return acc
}

func (e *Engine) credit(addr [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() == 0 {
		return nil
	}
	acc, err := e.state.GetAccount(addr[:])
	if err != nil {
		return err
	}
	acc = ensureAccount(acc)
	acc.Balance = new(big.Int).Add(acc.Balance, amount)
	return e.state.PutAccount(addr[:], acc)
}

func weightsFromConfig(cfg *params.ProtocolConfig) CurveWeights {
	return CurveWeights{A: cfg.WeightA, B: cfg.WeightB, C: cfg.WeightC}
}

// resolveTarget returns the fee subject for the target and enforces the pause
// flag for outpost-backed targets. Plain accounts are their own subject.
func (e *Engine) resolveTarget(target [20]byte) ([20]byte, error) {
	info, ok, err := e.state.MarketTargetGet(target)
	if err != nil {
		return [20]byte{}, err
	}
	if !ok || info == nil {
		return target, nil
	}
	if info.Paused {
		return [20]byte{}, ErrEmergencyPause
	}
	return info.Owner, nil
}

func (e *Engine) loadStats(target [20]byte) (*PassStats, error) {
	stats, ok, err := e.state.PassStatsGet(target)
	if err != nil {
		return nil, err
	}
	if !ok || stats == nil {
		stats = NewPassStats()
	}
	return stats, nil
}

// BuyPass purchases amount pass units against the target. The buyer funds the
// base price plus the protocol, subject, and (when a referrer is attached)
// referral surcharges; only the base price enters the redemption vault.
func (e *Engine) BuyPass(buyer [20]byte, target [20]byte, amount uint64, referrer *[20]byte) (*Trade, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	if amount == 0 {
		return nil, ErrInvalidAmount
	}
	cfg, err := e.state.ProtocolConfig()
	if err != nil {
		return nil, err
	}
	subject, err := e.resolveTarget(target)
	if err != nil {
		return nil, err
	}
	stats, err := e.loadStats(target)
	if err != nil {
		return nil, err
	}
	price, err := TotalPrice(stats.TotalSupply, amount, false, weightsFromConfig(cfg))
	if err != nil {
		return nil, err
	}
	split, err := SplitBuy(price, cfg.ProtocolFeeBps, cfg.SubjectFeeBps, cfg.ReferralFeeBps, referrer != nil)
	if err != nil {
		return nil, err
	}
	total := split.Total()
	buyerAcc, err := e.state.GetAccount(buyer[:])
	if err != nil {
		return nil, err
	}
	buyerAcc = ensureAccount(buyerAcc)
	if buyerAcc.Balance.Cmp(total) < 0 {
		return nil, ErrInsufficientCallerBalance
	}
	vaultBalance, err := e.state.VaultBalance()
	if err != nil {
		return nil, err
	}

	// All checks passed; apply the state changes.
	buyerAcc.Balance = new(big.Int).Sub(buyerAcc.Balance, total)
	if err := e.state.PutAccount(buyer[:], buyerAcc); err != nil {
		return nil, err
	}
	if err := e.credit(cfg.Treasury, split.ProtocolFee); err != nil {
		return nil, err
	}
	if err := e.credit(subject, split.SubjectFee); err != nil {
		return nil, err
	}
	if referrer != nil {
		if err := e.credit(*referrer, split.ReferralFee); err != nil {
			return nil, err
		}
	}
	vault := NewVault(vaultBalance)
	if err := vault.Deposit(split.Base); err != nil {
		return nil, err
	}
	if err := e.state.VaultSetBalance(vault.Balance()); err != nil {
		return nil, err
	}
	if err := e.state.PassMint(buyer, target, amount); err != nil {
		return nil, err
	}
	if err := stats.RecordBuy(amount, price); err != nil {
		return nil, err
	}
	if err := e.state.PassStatsPut(target, stats); err != nil {
		return nil, err
	}

	trade := &Trade{
		Target:      target,
		Trader:      buyer,
		Amount:      amount,
		Price:       new(big.Int).Set(price),
		ProtocolFee: split.ProtocolFee,
		SubjectFee:  split.SubjectFee,
		ReferralFee: split.ReferralFee,
		Total:       total,
		Supply:      stats.TotalSupply,
	}
	e.emit(PassPurchasedEvent(trade, referrer))
	return trade, nil
}

// SellPass redeems amount pass units for the target. The gross price is paid
// out of the redemption vault with protocol and subject fees deducted; the
// remainder goes to the seller.
func (e *Engine) SellPass(seller [20]byte, target [20]byte, amount uint64) (*Trade, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	if amount == 0 {
		return nil, ErrInvalidAmount
	}
	cfg, err := e.state.ProtocolConfig()
	if err != nil {
		return nil, err
	}
	subject, err := e.resolveTarget(target)
	if err != nil {
		return nil, err
	}
	stats, err := e.loadStats(target)
	if err != nil {
		return nil, err
	}
	if amount > stats.TotalSupply {
		return nil, ErrSupplyUnderflow
	}
	held, err := e.state.PassBalance(seller, target)
	if err != nil {
		return nil, err
	}
	if held < amount {
		return nil, ErrInsufficientCallerBalance
	}
	price, err := TotalPrice(stats.TotalSupply, amount, true, weightsFromConfig(cfg))
	if err != nil {
		return nil, err
	}
	split, err := SplitSell(price, cfg.ProtocolFeeBps, cfg.SubjectFeeBps)
	if err != nil {
		return nil, err
	}
	vaultBalance, err := e.state.VaultBalance()
	if err != nil {
		return nil, err
	}
	vault := NewVault(vaultBalance)
	if _, err := vault.Withdraw(price); err != nil {
		return nil, err
	}

	// All checks passed; apply the state changes.
	if err := e.state.VaultSetBalance(vault.Balance()); err != nil {
		return nil, err
	}
	if err := e.state.PassBurn(seller, target, amount); err != nil {
		return nil, err
	}
	if err := stats.RecordSell(amount, price); err != nil {
		return nil, err
	}
	if err := e.state.PassStatsPut(target, stats); err != nil {
		return nil, err
	}
	if err := e.credit(seller, split.Net); err != nil {
		return nil, err
	}
	if err := e.credit(cfg.Treasury, split.ProtocolFee); err != nil {
		return nil, err
	}
	if err := e.credit(subject, split.SubjectFee); err != nil {
		return nil, err
	}

	trade := &Trade{
		Target:      target,
		Trader:      seller,
		Amount:      amount,
		Price:       new(big.Int).Set(price),
		ProtocolFee: split.ProtocolFee,
		SubjectFee:  split.SubjectFee,
		ReferralFee: big.NewInt(0),
		Total:       split.Net,
		Supply:      stats.TotalSupply,
	}
	e.emit(PassSoldEvent(trade))
	return trade, nil
}

// QuotePrice previews the gross curve price for a trade without settling it.
func (e *Engine) QuotePrice(target [20]byte, amount uint64, sell bool) (*Quote, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	if amount == 0 {
		return nil, ErrInvalidAmount
	}
	cfg, err := e.state.ProtocolConfig()
	if err != nil {
		return nil, err
	}
	stats, err := e.loadStats(target)
	if err != nil {
		return nil, err
	}
	price, err := TotalPrice(stats.TotalSupply, amount, sell, weightsFromConfig(cfg))
	if err != nil {
		return nil, err
	}
	return &Quote{Target: target, Amount: amount, Sell: sell, Price: price, Supply: stats.TotalSupply}, nil
}

// Stats returns the supply ledger entry for the target, defaulting lazily.
func (e *Engine) Stats(target [20]byte) (*PassStats, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	stats, err := e.loadStats(target)
	if err != nil {
		return nil, err
	}
	return stats.Clone(), nil
}
