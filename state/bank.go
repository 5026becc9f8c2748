package state

import (
	"fmt"
)

// Currency is the monetary sub-ledger the DAO moves funds through.
type Currency interface {
	Balance(addr string) (uint64, error)
	Withdraw(addr string, amount uint64) error
	DepositCreating(addr string, amount uint64) error
	DepositIntoExisting(addr string, amount uint64) error
}

// Bank keeps account balances in the same tree as the ledger, so a failed
// operation reverts balances and pools together.
type Bank struct {
	s *State
}

var _ Currency = Bank{}

func (s *State) Bank() Bank {
	return Bank{s: s}
}

func (b Bank) balance(addr string) (value uint64, found bool, err error) {
	found, err = b.s.getRLP(fmt.Sprintf(KeyBalance, addr), &value)
	return
}

func (b Bank) setBalance(addr string, value uint64) error {
	return b.s.setRLP(fmt.Sprintf(KeyBalance, addr), value)
}

func (b Bank) Balance(addr string) (uint64, error) {
	v, _, err := b.balance(addr)
	return v, err
}

func (b Bank) Exists(addr string) (bool, error) {
	_, found, err := b.balance(addr)
	return found, err
}

func (b Bank) Withdraw(addr string, amount uint64) error {
	if amount == 0 {
		return nil
	}
	v, _, err := b.balance(addr)
	if err != nil {
		return err
	}
	if v < amount {
		return fmt.Errorf("%w: %s has %d, needs %d", ErrInsufficientBalance, addr, v, amount)
	}
	return b.setBalance(addr, v-amount)
}

func (b Bank) DepositCreating(addr string, amount uint64) error {
	v, found, err := b.balance(addr)
	if err != nil {
		return err
	}
	if amount == 0 && found {
		return nil
	}
	nv, err := checkedAdd(v, amount)
	if err != nil {
		return err
	}
	return b.setBalance(addr, nv)
}

func (b Bank) DepositIntoExisting(addr string, amount uint64) error {
	v, found, err := b.balance(addr)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrAccountNoexists, addr)
	}
	if amount == 0 {
		return nil
	}
	nv, err := checkedAdd(v, amount)
	if err != nil {
		return err
	}
	return b.setBalance(addr, nv)
}
