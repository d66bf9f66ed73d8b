package outpost

import (
	"math/big"
	"strings"
	"time"

	"passhub/core/events"
	"passhub/core/types"
	"passhub/native/params"
)

// Royalty applied to newly created outposts, in basis points.
const defaultRoyaltyBps = 500

type engineState interface {
	ProtocolConfig() (*params.ProtocolConfig, error)
	GetAccount(addr []byte) (*types.Account, error)
	PutAccount(addr []byte, account *types.Account) error
	OutpostGet(addr [20]byte) (*Outpost, bool, error)
	OutpostPut(outpost *Outpost) error
	SubscriptionGet(outpost [20]byte, subscriber [20]byte) (*Subscription, bool, error)
	SubscriptionPut(outpost [20]byte, subscriber [20]byte, sub *Subscription) error
	SubscriptionDelete(outpost [20]byte, subscriber [20]byte) error
}

// Engine wires outpost lifecycle and subscription business logic with
// persistence and event emission.
type Engine struct {
	state   engineState
	emitter events.Emitter
	nowFn   func() int64
}

// NewEngine constructs an outpost engine with default dependencies.
func NewEngine() *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		nowFn:   func() int64 { return time.Now().Unix() },
	}
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

// SetNowFunc overrides the time source used for deterministic testing.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

func (e *Engine) emit(evt *types.Event) {
	if e == nil || evt == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(WrapEvent(evt))
}

func (e *Engine) now() uint64 {
	if e == nil || e.nowFn == nil {
		return uint64(time.Now().Unix())
	}
	ts := e.nowFn()
	if ts < 0 {
		return 0
	}
	return uint64(ts)
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

func (e *Engine) debit(addr [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() == 0 {
		return nil
	}
	acc, err := e.state.GetAccount(addr[:])
	if err != nil {
		return err
	}
	acc = ensureAccount(acc)
	if acc.Balance.Cmp(amount) < 0 {
		return ErrInsufficientCallerBalance
	}
	acc.Balance = new(big.Int).Sub(acc.Balance, amount)
	return e.state.PutAccount(addr[:], acc)
}

func (e *Engine) load(addr [20]byte) (*Outpost, error) {
	record, ok, err := e.state.OutpostGet(addr)
	if err != nil {
		return nil, err
	}
	if !ok || record == nil {
		return nil, ErrOutpostNotFound
	}
	return record, nil
}

// Create registers a new outpost for the creator, charging the configured
// purchase price to the protocol treasury. The outpost address derives
// deterministically from the creator and the name, so a creator cannot reuse a
// name.
func (e *Engine) Create(creator [20]byte, name string, description string, uri string) (*Outpost, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, ErrInvalidName
	}
	cfg, err := e.state.ProtocolConfig()
	if err != nil {
		return nil, err
	}
	addr := DeriveAddress(creator, trimmed)
	if _, ok, err := e.state.OutpostGet(addr); err != nil {
		return nil, err
	} else if ok {
		return nil, ErrOutpostExists
	}
	price := big.NewInt(0)
	if cfg.OutpostPrice != nil {
		price = new(big.Int).Set(cfg.OutpostPrice)
	}
	if err := e.debit(creator, price); err != nil {
		return nil, err
	}
	if err := e.credit(cfg.Treasury, price); err != nil {
		return nil, err
	}
	record := &Outpost{
		Address:       addr,
		Owner:         creator,
		Name:          trimmed,
		Description:   strings.TrimSpace(description),
		URI:           strings.TrimSpace(uri),
		PurchasePrice: price,
		Paused:        false,
		RoyaltyBps:    defaultRoyaltyBps,
		CreatedAt:     e.now(),
	}
	if err := e.state.OutpostPut(record); err != nil {
		return nil, err
	}
	e.emit(OutpostCreatedEvent(record))
	return record.Clone(), nil
}

// Get returns the outpost stored at the supplied address.
func (e *Engine) Get(addr [20]byte) (*Outpost, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	record, err := e.load(addr)
	if err != nil {
		return nil, err
	}
	return record.Clone(), nil
}

// UpdatePrice sets a new purchase price on the outpost. Owner only, and
// blocked while the outpost is paused.
func (e *Engine) UpdatePrice(caller [20]byte, addr [20]byte, price *big.Int) (*Outpost, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	if price == nil || price.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	record, err := e.load(addr)
	if err != nil {
		return nil, err
	}
	if record.Owner != caller {
		return nil, ErrNotOwner
	}
	if record.Paused {
		return nil, ErrEmergencyPause
	}
	record.PurchasePrice = new(big.Int).Set(price)
	if err := e.state.OutpostPut(record); err != nil {
		return nil, err
	}
	e.emit(OutpostPriceUpdatedEvent(record))
	return record.Clone(), nil
}

// TogglePause flips the emergency pause flag. Owner only; unlike the other
// mutating operations, toggling is always allowed so a paused outpost can be
// unpaused.
func (e *Engine) TogglePause(caller [20]byte, addr [20]byte) (*Outpost, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	record, err := e.load(addr)
	if err != nil {
		return nil, err
	}
	if record.Owner != caller {
		return nil, ErrNotOwner
	}
	record.Paused = !record.Paused
	if err := e.state.OutpostPut(record); err != nil {
		return nil, err
	}
	e.emit(OutpostPauseToggledEvent(record))
	return record.Clone(), nil
}

// TransferOwnership hands the outpost to a new owner. Owner only; permitted
// even while paused.
func (e *Engine) TransferOwnership(caller [20]byte, addr [20]byte, newOwner [20]byte) (*Outpost, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	record, err := e.load(addr)
	if err != nil {
		return nil, err
	}
	if record.Owner != caller {
		return nil, ErrNotOwner
	}
	previous := record.Owner
	record.Owner = newOwner
	if err := e.state.OutpostPut(record); err != nil {
		return nil, err
	}
	e.emit(OutpostOwnershipTransferredEvent(record, previous))
	return record.Clone(), nil
}
