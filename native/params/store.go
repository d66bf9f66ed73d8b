package params

import (
	"encoding/json"
	"fmt"

	"passhub/core/events"
)

// StoreState captures the subset of state manager capabilities required by the
// parameter helpers.
type StoreState interface {
	ParamStoreSet(name string, value []byte) error
	ParamStoreGet(name string) ([]byte, bool, error)
}

// Store provides typed accessors for the admin-controlled protocol config.
// Values are marshalled as JSON so governance tooling can inspect them.
type Store struct {
	state     StoreState
	authority [20]byte
	emitter   events.Emitter
}

// NewStore constructs a parameter store wrapper using the supplied state
// backend.
func NewStore(state StoreState) *Store {
	return &Store{state: state, emitter: events.NoopEmitter{}}
}

// SetAuthority configures the protocol admin allowed to mutate parameters.
func (s *Store) SetAuthority(addr [20]byte) { s.authority = addr }

// SetEmitter configures the event emitter used for fee-update notifications.
func (s *Store) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		s.emitter = events.NoopEmitter{}
		return
	}
	s.emitter = emitter
}

func (s *Store) withState() (StoreState, error) {
	if s == nil || s.state == nil {
		return nil, fmt.Errorf("params: state not configured")
	}
	return s.state, nil
}

func (s *Store) requireAdmin(caller [20]byte) error {
	if caller != s.authority {
		return ErrNotAdmin
	}
	return nil
}

// Initialize persists the supplied config once. Subsequent calls are no-ops so
// a restart never clobbers a governance-updated schedule.
func (s *Store) Initialize(cfg *ProtocolConfig) error {
	state, err := s.withState()
	if err != nil {
		return err
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if _, ok, err := state.ParamStoreGet(ParamsKeyProtocolConfig); err != nil {
		return err
	} else if ok {
		return nil
	}
	return s.write(cfg)
}

func (s *Store) write(cfg *ProtocolConfig) error {
	state, err := s.withState()
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("params: encode protocol config: %w", err)
	}
	return state.ParamStoreSet(ParamsKeyProtocolConfig, encoded)
}

// Config loads the persisted protocol configuration. When unset the genesis
// defaults are returned.
func (s *Store) Config() (*ProtocolConfig, error) {
	state, err := s.withState()
	if err != nil {
		return nil, err
	}
	raw, ok, err := state.ParamStoreGet(ParamsKeyProtocolConfig)
	if err != nil {
		return nil, err
	}
	if !ok || len(raw) == 0 {
		return DefaultConfig(), nil
	}
	cfg := &ProtocolConfig{}
	if err := json.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("params: decode protocol config: %w", err)
	}
	return cfg, nil
}

// SetConfig replaces the whole protocol configuration. Admin only.
func (s *Store) SetConfig(caller [20]byte, cfg *ProtocolConfig) error {
	if err := s.requireAdmin(caller); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := s.write(cfg.Clone()); err != nil {
		return err
	}
	s.emitFeesUpdated(cfg)
	return nil
}

// SetTradeFees updates the pass-trading fee schedule in place. Admin only.
func (s *Store) SetTradeFees(caller [20]byte, protocolBps, subjectBps, referralBps uint32) (*ProtocolConfig, error) {
	if err := s.requireAdmin(caller); err != nil {
		return nil, err
	}
	cfg, err := s.Config()
	if err != nil {
		return nil, err
	}
	cfg.ProtocolFeeBps = protocolBps
	cfg.SubjectFeeBps = subjectBps
	cfg.ReferralFeeBps = referralBps
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := s.write(cfg); err != nil {
		return nil, err
	}
	s.emitFeesUpdated(cfg)
	return cfg.Clone(), nil
}

// SetSubscriptionFees updates the subscription fee schedule in place. Admin
// only.
func (s *Store) SetSubscriptionFees(caller [20]byte, subscriptionBps, referrerBps uint32) (*ProtocolConfig, error) {
	if err := s.requireAdmin(caller); err != nil {
		return nil, err
	}
	cfg, err := s.Config()
	if err != nil {
		return nil, err
	}
	cfg.SubscriptionFeeBps = subscriptionBps
	cfg.ReferrerFeeBps = referrerBps
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := s.write(cfg); err != nil {
		return nil, err
	}
	s.emitFeesUpdated(cfg)
	return cfg.Clone(), nil
}

// SetCurveWeights updates the bonding-curve coefficients. Admin only.
func (s *Store) SetCurveWeights(caller [20]byte, weightA, weightB, weightC uint64) (*ProtocolConfig, error) {
	if err := s.requireAdmin(caller); err != nil {
		return nil, err
	}
	cfg, err := s.Config()
	if err != nil {
		return nil, err
	}
	cfg.WeightA = weightA
	cfg.WeightB = weightB
	cfg.WeightC = weightC
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := s.write(cfg); err != nil {
		return nil, err
	}
	s.emitFeesUpdated(cfg)
	return cfg.Clone(), nil
}
