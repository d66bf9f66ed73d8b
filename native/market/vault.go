package market

import "math/big"

// Vault is the pooled redemption balance backing sell-side payouts. Every buy
// deposits exactly its base price and every sell withdraws exactly its base
// price; the fee surcharges never touch the pool, so the balance always equals
// the sum of base prices of the currently outstanding units.
type Vault struct {
	balance *big.Int
}

// NewVault wraps the supplied balance. A nil balance starts the pool at zero.
func NewVault(balance *big.Int) *Vault {
	v := &Vault{balance: big.NewInt(0)}
	if balance != nil {
		v.balance.Set(balance)
	}
	return v
}

// Deposit adds the base portion of a buy to the pool.
func (v *Vault) Deposit(amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	v.balance.Add(v.balance, amount)
	return nil
}

// Withdraw removes funds for a sell payout. Withdrawals never partially fill:
// if the pool cannot cover the amount the call fails and the balance is
// untouched.
func (v *Vault) Withdraw(amount *big.Int) (*big.Int, error) {
	if amount == nil || amount.Sign() < 0 {
		return nil, ErrInvalidAmount
	}
	if v.balance.Cmp(amount) < 0 {
		return nil, ErrInsufficientVaultBalance
	}
	v.balance.Sub(v.balance, amount)
	return new(big.Int).Set(amount), nil
}

// Balance returns a copy of the current pool balance.
func (v *Vault) Balance() *big.Int {
	return new(big.Int).Set(v.balance)
}
