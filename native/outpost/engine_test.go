package outpost

import (
	"errors"
	"math/big"
	"testing"

	"passhub/core/types"
	"passhub/native/params"
)

type mockState struct {
	cfg      *params.ProtocolConfig
	accounts map[string]*types.Account
	outposts map[[20]byte]*Outpost
	subs     map[string]*Subscription
}

func newMockState() *mockState {
	cfg := params.DefaultConfig()
	cfg.Treasury = addr(0xee)
	return &mockState{
		cfg:      cfg,
		accounts: make(map[string]*types.Account),
		outposts: make(map[[20]byte]*Outpost),
		subs:     make(map[string]*Subscription),
	}
}

func addr(b byte) [20]byte {
	var out [20]byte
	out[19] = b
	return out
}

func subKey(outpost, subscriber [20]byte) string {
	return string(append(append([]byte{}, outpost[:]...), subscriber[:]...))
}

func (m *mockState) ProtocolConfig() (*params.ProtocolConfig, error) {
	return m.cfg.Clone(), nil
}

func (m *mockState) GetAccount(a []byte) (*types.Account, error) {
	acc, ok := m.accounts[string(a)]
	if !ok {
		return &types.Account{Balance: big.NewInt(0)}, nil
	}
	return acc.Clone(), nil
}

func (m *mockState) PutAccount(a []byte, acc *types.Account) error {
	m.accounts[string(a)] = acc.Clone()
	return nil
}

func (m *mockState) OutpostGet(a [20]byte) (*Outpost, bool, error) {
	record, ok := m.outposts[a]
	if !ok {
		return nil, false, nil
	}
	return record.Clone(), true, nil
}

func (m *mockState) OutpostPut(record *Outpost) error {
	m.outposts[record.Address] = record.Clone()
	return nil
}

func (m *mockState) SubscriptionGet(outpost, subscriber [20]byte) (*Subscription, bool, error) {
	sub, ok := m.subs[subKey(outpost, subscriber)]
	if !ok {
		return nil, false, nil
	}
	clone := *sub
	return &clone, true, nil
}

func (m *mockState) SubscriptionPut(outpost, subscriber [20]byte, sub *Subscription) error {
	clone := *sub
	m.subs[subKey(outpost, subscriber)] = &clone
	return nil
}

func (m *mockState) SubscriptionDelete(outpost, subscriber [20]byte) error {
	delete(m.subs, subKey(outpost, subscriber))
	return nil
}

func (m *mockState) fund(a [20]byte, amount *big.Int) {
	m.accounts[string(a[:])] = &types.Account{Balance: new(big.Int).Set(amount)}
}

func (m *mockState) balance(a [20]byte) *big.Int {
	acc, ok := m.accounts[string(a[:])]
	if !ok {
		return big.NewInt(0)
	}
	return new(big.Int).Set(acc.Balance)
}

func newTestEngine(state *mockState) *Engine {
	engine := NewEngine()
	engine.SetState(state)
	engine.SetNowFunc(func() int64 { return 1_000_000 })
	return engine
}

func octas(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(100_000_000))
}

func TestCreateChargesTreasury(t *testing.T) {
	state := newMockState()
	engine := newTestEngine(state)
	creator := addr(0x01)
	state.fund(creator, octas(100))

	record, err := engine.Create(creator, "North Ridge", "a venue", "ipfs://ridge")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if record.Owner != creator {
		t.Fatalf("owner = %x, want the creator", record.Owner)
	}
	if record.Paused {
		t.Fatal("new outpost created paused")
	}
	if state.balance(state.cfg.Treasury).Cmp(state.cfg.OutpostPrice) != 0 {
		t.Fatalf("treasury holds %s, want the purchase price %s", state.balance(state.cfg.Treasury), state.cfg.OutpostPrice)
	}
	want := new(big.Int).Sub(octas(100), state.cfg.OutpostPrice)
	if state.balance(creator).Cmp(want) != 0 {
		t.Fatalf("creator balance %s, want %s", state.balance(creator), want)
	}
}

func TestCreateDuplicateNameFails(t *testing.T) {
	state := newMockState()
	engine := newTestEngine(state)
	creator := addr(0x01)
	state.fund(creator, octas(100))

	if _, err := engine.Create(creator, "Ridge", "", ""); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := engine.Create(creator, "Ridge", "", ""); !errors.Is(err, ErrOutpostExists) {
		t.Fatalf("expected duplicate outpost error, got %v", err)
	}
	// A different creator may reuse the name: the derived address differs.
	other := addr(0x02)
	state.fund(other, octas(100))
	if _, err := engine.Create(other, "Ridge", "", ""); err != nil {
		t.Fatalf("create with distinct creator: %v", err)
	}
}

func TestCreateInsufficientFunds(t *testing.T) {
	state := newMockState()
	engine := newTestEngine(state)
	creator := addr(0x01)
	state.fund(creator, big.NewInt(1))

	if _, err := engine.Create(creator, "Ridge", "", ""); !errors.Is(err, ErrInsufficientCallerBalance) {
		t.Fatalf("expected insufficient balance, got %v", err)
	}
}

func TestUpdatePriceOwnerOnly(t *testing.T) {
	state := newMockState()
	engine := newTestEngine(state)
	creator := addr(0x01)
	state.fund(creator, octas(100))
	record, err := engine.Create(creator, "Ridge", "", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := engine.UpdatePrice(addr(0x02), record.Address, octas(5)); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected not-owner error, got %v", err)
	}
	updated, err := engine.UpdatePrice(creator, record.Address, octas(5))
	if err != nil {
		t.Fatalf("update price: %v", err)
	}
	if updated.PurchasePrice.Cmp(octas(5)) != 0 {
		t.Fatalf("price = %s, want %s", updated.PurchasePrice, octas(5))
	}
}

func TestPauseGatesPriceUpdateButNotTransfer(t *testing.T) {
	state := newMockState()
	engine := newTestEngine(state)
	creator := addr(0x01)
	newOwner := addr(0x02)
	state.fund(creator, octas(100))
	record, err := engine.Create(creator, "Ridge", "", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := engine.TogglePause(creator, record.Address); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if _, err := engine.UpdatePrice(creator, record.Address, octas(5)); !errors.Is(err, ErrEmergencyPause) {
		t.Fatalf("expected pause error, got %v", err)
	}
	if _, err := engine.TransferOwnership(creator, record.Address, newOwner); err != nil {
		t.Fatalf("transfer while paused: %v", err)
	}
	// The new owner can unpause even though the outpost is paused.
	unpaused, err := engine.TogglePause(newOwner, record.Address)
	if err != nil {
		t.Fatalf("unpause: %v", err)
	}
	if unpaused.Paused {
		t.Fatal("outpost still paused after toggle")
	}
}

func TestTransferOwnershipOwnerOnly(t *testing.T) {
	state := newMockState()
	engine := newTestEngine(state)
	creator := addr(0x01)
	state.fund(creator, octas(100))
	record, err := engine.Create(creator, "Ridge", "", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := engine.TransferOwnership(addr(0x03), record.Address, addr(0x03)); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected not-owner error, got %v", err)
	}
}

func TestGetUnknownOutpost(t *testing.T) {
	state := newMockState()
	engine := newTestEngine(state)
	if _, err := engine.Get(addr(0x42)); !errors.Is(err, ErrOutpostNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}
