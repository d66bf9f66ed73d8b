package tokens

import (
	"errors"
	"math"
)

var (
	ErrNilStorage          = errors.New("tokens: storage not configured")
	ErrInvalidAmount       = errors.New("tokens: amount must be positive")
	ErrInsufficientBalance = errors.New("tokens: insufficient pass balance")
	ErrBalanceOverflow     = errors.New("tokens: balance overflow")
)

// Storage abstracts the subset of state manager functionality required by the
// pass balance ledger.
type Storage interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
}

var balancePrefix = []byte("tokens/pass/")

func balanceKey(target, holder [20]byte) []byte {
	key := make([]byte, 0, len(balancePrefix)+41)
	key = append(key, balancePrefix...)
	key = append(key, target[:]...)
	key = append(key, '/')
	key = append(key, holder[:]...)
	return key
}

// Registry tracks fungible pass balances keyed by target. Holders are
// registered implicitly on first credit, so minting or transferring to an
// address that has never held the target's passes just works.
type Registry struct {
	storage Storage
}

// NewRegistry constructs a pass balance registry over the supplied storage.
func NewRegistry(storage Storage) *Registry {
	return &Registry{storage: storage}
}

// Token is the per-target capability handle: it bundles the mint, burn,
// transfer, and balance operations for one target's passes.
type Token struct {
	registry *Registry
	target   [20]byte
}

// ForTarget returns the capability handle for the target's pass token.
func (r *Registry) ForTarget(target [20]byte) *Token {
	return &Token{registry: r, target: target}
}

func (r *Registry) read(target, holder [20]byte) (uint64, error) {
	if r == nil || r.storage == nil {
		return 0, ErrNilStorage
	}
	var balance uint64
	ok, err := r.storage.KVGet(balanceKey(target, holder), &balance)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return balance, nil
}

func (r *Registry) write(target, holder [20]byte, balance uint64) error {
	if r == nil || r.storage == nil {
		return ErrNilStorage
	}
	return r.storage.KVPut(balanceKey(target, holder), balance)
}

// Mint credits freshly issued passes to the holder.
func (t *Token) Mint(holder [20]byte, amount uint64) error {
	if amount == 0 {
		return ErrInvalidAmount
	}
	balance, err := t.registry.read(t.target, holder)
	if err != nil {
		return err
	}
	if balance > math.MaxUint64-amount {
		return ErrBalanceOverflow
	}
	return t.registry.write(t.target, holder, balance+amount)
}

// Burn destroys passes held by the holder.
func (t *Token) Burn(holder [20]byte, amount uint64) error {
	if amount == 0 {
		return ErrInvalidAmount
	}
	balance, err := t.registry.read(t.target, holder)
	if err != nil {
		return err
	}
	if balance < amount {
		return ErrInsufficientBalance
	}
	return t.registry.write(t.target, holder, balance-amount)
}

// Transfer moves passes between holders, registering the recipient if needed.
func (t *Token) Transfer(from, to [20]byte, amount uint64) error {
	if amount == 0 {
		return ErrInvalidAmount
	}
	if from == to {
		return nil
	}
	fromBalance, err := t.registry.read(t.target, from)
	if err != nil {
		return err
	}
	if fromBalance < amount {
		return ErrInsufficientBalance
	}
	toBalance, err := t.registry.read(t.target, to)
	if err != nil {
		return err
	}
	if toBalance > math.MaxUint64-amount {
		return ErrBalanceOverflow
	}
	if err := t.registry.write(t.target, from, fromBalance-amount); err != nil {
		return err
	}
	return t.registry.write(t.target, to, toBalance+amount)
}

// Balance returns the holder's pass balance, zero when never registered.
func (t *Token) Balance(holder [20]byte) (uint64, error) {
	return t.registry.read(t.target, holder)
}
