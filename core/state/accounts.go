package state

import (
	"fmt"
	"math/big"

	"passhub/core/types"
)

// GetAccount reconstructs the account stored under the provided address. An
// unknown address yields a zero-balance account rather than an error.
func (m *Manager) GetAccount(addr []byte) (*types.Account, error) {
	if len(addr) == 0 {
		return nil, fmt.Errorf("state: address must not be empty")
	}
	account := &types.Account{}
	ok, err := m.KVGet(accountKey(addr), account)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &types.Account{Balance: big.NewInt(0)}, nil
	}
	if account.Balance == nil {
		account.Balance = big.NewInt(0)
	}
	return account, nil
}

// PutAccount persists the account under the provided address.
func (m *Manager) PutAccount(addr []byte, account *types.Account) error {
	if len(addr) == 0 {
		return fmt.Errorf("state: address must not be empty")
	}
	if account == nil {
		return fmt.Errorf("state: account must not be nil")
	}
	stored := account.Clone()
	if stored.Balance == nil {
		stored.Balance = big.NewInt(0)
	}
	return m.KVPut(accountKey(addr), stored)
}
