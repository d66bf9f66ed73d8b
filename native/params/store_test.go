package params

import (
	"errors"
	"testing"
)

type mockStoreState struct {
	values map[string][]byte
}

func newMockStoreState() *mockStoreState {
	return &mockStoreState{values: make(map[string][]byte)}
}

func (m *mockStoreState) ParamStoreSet(name string, value []byte) error {
	m.values[name] = append([]byte{}, value...)
	return nil
}

func (m *mockStoreState) ParamStoreGet(name string) ([]byte, bool, error) {
	v, ok := m.values[name]
	return v, ok, nil
}

func admin() [20]byte {
	var out [20]byte
	out[19] = 0xad
	return out
}

func newTestStore() (*Store, *mockStoreState) {
	state := newMockStoreState()
	store := NewStore(state)
	store.SetAuthority(admin())
	return store, state
}

func TestConfigDefaultsWhenUnset(t *testing.T) {
	store, _ := newTestStore()
	cfg, err := store.Config()
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if cfg.WeightA != DefaultConfig().WeightA {
		t.Fatalf("weight A = %d, want the default %d", cfg.WeightA, DefaultConfig().WeightA)
	}
}

func TestInitializeDoesNotClobber(t *testing.T) {
	store, _ := newTestStore()
	if err := store.Initialize(nil); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if _, err := store.SetTradeFees(admin(), 100, 200, 50); err != nil {
		t.Fatalf("set trade fees: %v", err)
	}
	if err := store.Initialize(nil); err != nil {
		t.Fatalf("re-initialize: %v", err)
	}
	cfg, err := store.Config()
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if cfg.ProtocolFeeBps != 100 {
		t.Fatalf("re-initialize reset the fee schedule to %d", cfg.ProtocolFeeBps)
	}
}

func TestSettersRequireAdmin(t *testing.T) {
	store, _ := newTestStore()
	var stranger [20]byte
	stranger[0] = 1
	if _, err := store.SetTradeFees(stranger, 1, 1, 1); !errors.Is(err, ErrNotAdmin) {
		t.Fatalf("expected not-admin error, got %v", err)
	}
	if _, err := store.SetSubscriptionFees(stranger, 1, 1); !errors.Is(err, ErrNotAdmin) {
		t.Fatalf("expected not-admin error, got %v", err)
	}
	if _, err := store.SetCurveWeights(stranger, 1, 1, 1); !errors.Is(err, ErrNotAdmin) {
		t.Fatalf("expected not-admin error, got %v", err)
	}
}

func TestSetTradeFeesValidatesBounds(t *testing.T) {
	store, _ := newTestStore()
	if _, err := store.SetTradeFees(admin(), 10_001, 0, 0); !errors.Is(err, ErrInvalidFeeValue) {
		t.Fatalf("expected invalid fee value, got %v", err)
	}
	cfg, err := store.SetTradeFees(admin(), 10_000, 0, 0)
	if err != nil {
		t.Fatalf("max bps rejected: %v", err)
	}
	if cfg.ProtocolFeeBps != 10_000 {
		t.Fatalf("protocol fee = %d, want 10000", cfg.ProtocolFeeBps)
	}
}

func TestSetCurveWeightsValidatesBounds(t *testing.T) {
	store, _ := newTestStore()
	cases := []struct{ a, b, c uint64 }{
		{0, 257, 23},
		{10_001, 257, 23},
		{173, 0, 23},
		{173, 257, 0},
		{173, 257, 101},
	}
	for _, tc := range cases {
		if _, err := store.SetCurveWeights(admin(), tc.a, tc.b, tc.c); !errors.Is(err, ErrInvalidWeight) {
			t.Fatalf("weights %v: expected invalid weight, got %v", tc, err)
		}
	}
	if _, err := store.SetCurveWeights(admin(), 173, 257, 23); err != nil {
		t.Fatalf("valid weights rejected: %v", err)
	}
}

func TestConfigRoundTripsThroughStorage(t *testing.T) {
	store, state := newTestStore()
	want, err := store.SetTradeFees(admin(), 123, 456, 78)
	if err != nil {
		t.Fatalf("set trade fees: %v", err)
	}
	refreshed := NewStore(state)
	got, err := refreshed.Config()
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if got.ProtocolFeeBps != want.ProtocolFeeBps || got.SubjectFeeBps != want.SubjectFeeBps || got.ReferralFeeBps != want.ReferralFeeBps {
		t.Fatalf("persisted config %+v differs from %+v", got, want)
	}
}
