package state

import (
	"fmt"
)

// CheckLedger verifies the rules that need only the ledger header: pool
// totals, proposal cursors and the queue window. It runs after every block.
func (s *State) CheckLedger() error {
	ledger := s.header.Ledger
	pools := ledger.Pools

	sum := uint64(0)
	for _, v := range []uint64{pools.Free, pools.Mortgage, pools.Deposit, pools.GrantLocked} {
		var err error
		if sum, err = checkedAdd(sum, v); err != nil {
			return fmt.Errorf("%w: pool sum overflows", ErrInvariantBroken)
		}
	}
	if sum > ledger.TotalInflow {
		return fmt.Errorf("%w: pools hold %d, only %d deposited", ErrInvariantBroken, sum, ledger.TotalInflow)
	}
	if ledger.ProcessedAccessProposalsCount > ledger.AccessProposalsCount {
		return fmt.Errorf("%w: processed cursor %d past %d proposals", ErrInvariantBroken, ledger.ProcessedAccessProposalsCount, ledger.AccessProposalsCount)
	}
	if uint64(ledger.QueueHead)+uint64(ledger.QueueLength) > uint64(^uint32(0)) {
		return fmt.Errorf("%w: queue window out of range", ErrInvariantBroken)
	}
	if ledger.QueueLength > ledger.ProjectProposalsCount {
		return fmt.Errorf("%w: %d queued rounds for %d projects", ErrInvariantBroken, ledger.QueueLength, ledger.ProjectProposalsCount)
	}
	return nil
}

// CheckInvariants runs CheckLedger and also walks the member roster to
// match every energy against TotalEnergies.
func (s *State) CheckInvariants() error {
	if err := s.CheckLedger(); err != nil {
		return err
	}
	ledger := s.header.Ledger
	energies := uint64(0)
	for i := uint32(0); i < ledger.MembersCount; i++ {
		addr, err := s.MemberAt(i)
		if err != nil {
			return err
		}
		m, err := s.GetMember(addr)
		if err != nil {
			return err
		}
		if m == nil {
			return fmt.Errorf("%w: roster entry %s has no record", ErrInvariantBroken, addr)
		}
		if energies, err = checkedAdd(energies, m.Energy); err != nil {
			return fmt.Errorf("%w: energy sum overflows", ErrInvariantBroken)
		}
	}
	if energies != ledger.TotalEnergies {
		return fmt.Errorf("%w: members hold %d energies, total is %d", ErrInvariantBroken, energies, ledger.TotalEnergies)
	}
	return nil
}
