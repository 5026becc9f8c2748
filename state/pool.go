package state

import "fmt"

// Pool names a treasury balance.
type Pool uint8

const (
	PoolFree Pool = iota
	PoolMortgage
	PoolDeposit
	PoolGrantLocked
)

func (p Pool) String() string {
	switch p {
	case PoolFree:
		return "free"
	case PoolMortgage:
		return "mortgage"
	case PoolDeposit:
		return "deposit"
	case PoolGrantLocked:
		return "grant_locked"
	}
	return fmt.Sprintf("pool(%d)", uint8(p))
}

func (s *State) pool(p Pool) *uint64 {
	pools := &s.header.Ledger.Pools
	switch p {
	case PoolFree:
		return &pools.Free
	case PoolMortgage:
		return &pools.Mortgage
	case PoolDeposit:
		return &pools.Deposit
	case PoolGrantLocked:
		return &pools.GrantLocked
	}
	panic(fmt.Sprintf("unknown pool %d", p))
}

func (s *State) credit(p Pool, amount uint64) error {
	v, err := checkedAdd(*s.pool(p), amount)
	if err != nil {
		return fmt.Errorf("%s pool: %w", p, err)
	}
	*s.pool(p) = v
	return nil
}

func (s *State) debit(p Pool, amount uint64) error {
	v, err := checkedSub(*s.pool(p), amount)
	if err != nil {
		if p == PoolFree {
			return ErrInsufficientFreePool
		}
		return fmt.Errorf("%s pool: %w", p, err)
	}
	*s.pool(p) = v
	return nil
}

func (s *State) move(from, to Pool, amount uint64) error {
	if err := s.debit(from, amount); err != nil {
		return err
	}
	return s.credit(to, amount)
}

// collect withdraws amount from addr into a pool. Funds entering the
// treasury this way count towards TotalInflow.
func (s *State) collect(addr string, p Pool, amount uint64) error {
	if err := s.Bank().Withdraw(addr, amount); err != nil {
		return err
	}
	if err := s.credit(p, amount); err != nil {
		return err
	}
	inflow, err := checkedAdd(s.header.Ledger.TotalInflow, amount)
	if err != nil {
		return err
	}
	s.header.Ledger.TotalInflow = inflow
	return nil
}

// payCreating pays amount out of a pool, creating the account if needed.
func (s *State) payCreating(p Pool, addr string, amount uint64) error {
	if err := s.debit(p, amount); err != nil {
		return err
	}
	return s.Bank().DepositCreating(addr, amount)
}

// payExisting pays amount out of a pool into an account that must exist.
func (s *State) payExisting(p Pool, addr string, amount uint64) error {
	if err := s.debit(p, amount); err != nil {
		return err
	}
	return s.Bank().DepositIntoExisting(addr, amount)
}

func (s *State) Pools() (free, mortgage, deposit, grantLocked uint64) {
	pools := s.header.Ledger.Pools
	return pools.Free, pools.Mortgage, pools.Deposit, pools.GrantLocked
}
