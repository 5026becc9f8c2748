package state

import (
	"fmt"

	"github.com/calehh/hac-dao/types"
)

func (s *State) IsMember(addr string) (bool, error) {
	m, err := s.GetMember(addr)
	if err != nil {
		return false, err
	}
	return m != nil && m.Energy > 0, nil
}

func (s *State) requireMember(addr string) (*types.Member, error) {
	if addr == "" {
		return nil, ErrSenderNotSet
	}
	m, err := s.GetMember(addr)
	if err != nil {
		return nil, err
	}
	if m == nil || m.Energy == 0 {
		return nil, ErrNotMember
	}
	return m, nil
}

// admitOrTopUp adds delta energy to addr, creating the record on first use.
// A new member always gets a bank account so rage-quit can pay into it.
func (s *State) admitOrTopUp(addr string, delta uint64) (isNew bool, err error) {
	m, err := s.GetMember(addr)
	if err != nil {
		return false, err
	}
	if m == nil {
		isNew = true
		m = &types.Member{}
		if err = s.Bank().DepositCreating(addr, 0); err != nil {
			return false, err
		}
		pos := s.header.Ledger.MembersCount
		count, err := nextIndex(pos)
		if err != nil {
			return false, err
		}
		if err = s.setRLP(fmt.Sprintf(KeyMemberRoster, pos), addr); err != nil {
			return false, err
		}
		s.header.Ledger.MembersCount = count
	}
	if m.Energy, err = checkedAdd(m.Energy, delta); err != nil {
		return false, err
	}
	total, err := checkedAdd(s.header.Ledger.TotalEnergies, delta)
	if err != nil {
		return false, err
	}
	s.header.Ledger.TotalEnergies = total
	return isNew, s.setMember(addr, m)
}

// Summon bootstraps the DAO. The caller becomes its first member.
func (s *State) Summon(sender string) (ev *types.EventSummon, err error) {
	err = s.atomic(func() error {
		if sender == "" {
			return ErrSenderNotSet
		}
		if s.header.Ledger.Summoner != "" {
			return ErrAlreadySummoned
		}
		if _, err := s.admitOrTopUp(sender, 1); err != nil {
			return err
		}
		s.header.Ledger.Summoner = sender
		s.header.Ledger.SummoningTime = s.header.Moment
		ev = &types.EventSummon{Summoner: sender}
		return nil
	})
	return
}

// ApplicantApprove sets the amount the sender allows proposals to take as deposit.
func (s *State) ApplicantApprove(sender string, value uint64) (ev *types.EventApproval, err error) {
	err = s.atomic(func() error {
		if sender == "" {
			return ErrSenderNotSet
		}
		if err := s.setRLP(fmt.Sprintf(KeyAllowance, sender), value); err != nil {
			return err
		}
		ev = &types.EventApproval{Account: sender, Value: value}
		return nil
	})
	return
}

func (s *State) Donate(sender string, value uint64) (ev *types.EventDonate, err error) {
	err = s.atomic(func() error {
		if sender == "" {
			return ErrSenderNotSet
		}
		if err := s.collect(sender, PoolFree, value); err != nil {
			return err
		}
		ev = &types.EventDonate{Account: sender, Value: value}
		return nil
	})
	return
}

// RageQuit burns energies of the sender and pays out its share of the free pool.
func (s *State) RageQuit(sender string, energies uint64) (ev *types.EventRageQuit, err error) {
	err = s.atomic(func() error {
		m, err := s.requireMember(sender)
		if err != nil {
			return err
		}
		if energies == 0 {
			return ErrZeroEnergies
		}
		if m.Energy < energies {
			return ErrEnergyNotEnough
		}
		// a member who never voted yes points at index 0, which may not exist yet
		if m.HighestIndexYesVote < s.header.Ledger.AccessProposalsCount {
			p, err := s.GetAccessProposal(m.HighestIndexYesVote)
			if err != nil {
				return err
			}
			if !p.Processed {
				return ErrPendingYesVote
			}
		}

		ledger := &s.header.Ledger
		redeem, err := mulDiv(ledger.Pools.Free, energies, ledger.TotalEnergies)
		if err != nil {
			return err
		}
		if ledger.TotalEnergies, err = checkedSub(ledger.TotalEnergies, energies); err != nil {
			return err
		}
		m.Energy -= energies
		if err = s.setMember(sender, m); err != nil {
			return err
		}
		if redeem > 0 {
			if err = s.payExisting(PoolFree, sender, redeem); err != nil {
				return err
			}
		}
		ev = &types.EventRageQuit{Member: sender, Energies: energies, Redeemed: redeem}
		return nil
	})
	return
}
