package state

import (
	"fmt"

	"github.com/calehh/hac-dao/types"
)

type AccessProposalArgs struct {
	Applicant         string
	Deposit           uint64
	EnergiesRequested uint64
	Detail            []byte
}

func (s *State) lastAccessStartingPeriod() (uint64, bool, error) {
	count := s.header.Ledger.AccessProposalsCount
	if count == 0 {
		return 0, false, nil
	}
	prev, err := s.GetAccessProposal(count - 1)
	if err != nil {
		return 0, false, err
	}
	return prev.StartingPeriod, true, nil
}

func (s *State) SubmitAccessProposal(sender string, args AccessProposalArgs) (ev *types.EventSubmitAccessProposal, err error) {
	err = s.atomic(func() error {
		if _, err := s.requireMember(sender); err != nil {
			return err
		}
		if args.Applicant == "" {
			return ErrApplicantNotSet
		}
		allowance, err := s.Allowance(args.Applicant)
		if err != nil {
			return err
		}
		if allowance < args.Deposit {
			return ErrAllowanceNotEnough
		}

		prev, hasPrev, err := s.lastAccessStartingPeriod()
		if err != nil {
			return err
		}
		ledger := &s.header.Ledger
		index := ledger.AccessProposalsCount
		count, err := nextIndex(index)
		if err != nil {
			return err
		}
		p := &types.AccessProposal{
			Index:             index,
			Proposer:          sender,
			Applicant:         args.Applicant,
			EnergiesRequested: args.EnergiesRequested,
			Mortgage:          s.header.Params.ProposalMortgage,
			Deposit:           args.Deposit,
			StartingPeriod:    s.nextStartingPeriod(prev, hasPrev),
			Detail:            args.Detail,
		}

		if err = s.collect(args.Applicant, PoolDeposit, args.Deposit); err != nil {
			return err
		}
		if err = s.setRLP(fmt.Sprintf(KeyAllowance, args.Applicant), allowance-args.Deposit); err != nil {
			return err
		}
		if err = s.collect(sender, PoolMortgage, p.Mortgage); err != nil {
			return err
		}
		if ledger.TotalEnergiesRequested, err = checkedAdd(ledger.TotalEnergiesRequested, args.EnergiesRequested); err != nil {
			return err
		}
		if err = s.setAccessProposal(p); err != nil {
			return err
		}
		ledger.AccessProposalsCount = count

		ev = &types.EventSubmitAccessProposal{
			Proposal:          p.Index,
			Proposer:          p.Proposer,
			Applicant:         p.Applicant,
			EnergiesRequested: p.EnergiesRequested,
			Deposit:           p.Deposit,
			StartingPeriod:    p.StartingPeriod,
		}
		return nil
	})
	return
}

func (s *State) SubmitAccessVote(sender string, index uint32, yes bool) (ev *types.EventAccessVote, err error) {
	err = s.atomic(func() error {
		p, err := s.GetAccessProposal(index)
		if err != nil {
			return err
		}
		if !s.inVotePeriod(p.StartingPeriod) {
			return ErrNotInVotingPeriod
		}
		if p.Aborted {
			return ErrProposalAborted
		}
		m, err := s.requireMember(sender)
		if err != nil {
			return err
		}
		_, voted, err := s.AccessVote(index, sender)
		if err != nil {
			return err
		}
		if voted {
			return ErrAlreadyVoted
		}

		if yes {
			if p.YesVotes, err = checkedAdd(p.YesVotes, m.Energy); err != nil {
				return err
			}
			if index > m.HighestIndexYesVote {
				m.HighestIndexYesVote = index
				if err = s.setMember(sender, m); err != nil {
					return err
				}
			}
		} else if p.NoVotes, err = checkedAdd(p.NoVotes, m.Energy); err != nil {
			return err
		}
		if err = s.setRLP(fmt.Sprintf(KeyAccessVote, index, sender), yes); err != nil {
			return err
		}
		if err = s.setAccessProposal(p); err != nil {
			return err
		}
		ev = &types.EventAccessVote{Voter: sender, Proposal: index, Yes: yes, Energy: m.Energy}
		return nil
	})
	return
}

// AbortAccess lets the applicant withdraw its proposal early in the voting
// window. The proposer's mortgage stays locked until settlement.
func (s *State) AbortAccess(sender string, index uint32) (ev *types.EventAccessAbort, err error) {
	err = s.atomic(func() error {
		p, err := s.GetAccessProposal(index)
		if err != nil {
			return err
		}
		if sender != p.Applicant {
			return ErrNotApplicant
		}
		if p.Aborted {
			return ErrProposalAborted
		}
		if p.Processed {
			return ErrProposalProcessed
		}
		if !s.inAbortWindow(p.StartingPeriod) {
			return ErrAbortWindowPassed
		}

		refund := p.Deposit
		p.Aborted = true
		p.Deposit = 0
		if refund > 0 {
			if err = settled(s.payExisting(PoolDeposit, p.Applicant, refund)); err != nil {
				return err
			}
		}
		if err = s.setAccessProposal(p); err != nil {
			return err
		}
		ev = &types.EventAccessAbort{Proposal: index, Refunded: refund}
		return nil
	})
	return
}

// settleAccess decides the oldest unprocessed access proposal once its
// voting window has elapsed. ok is false when nothing was due.
func (s *State) settleAccess() (events []types.Event, ok bool, err error) {
	ledger := &s.header.Ledger
	if ledger.ProcessedAccessProposalsCount >= ledger.AccessProposalsCount {
		return nil, false, nil
	}
	p, err := s.GetAccessProposal(ledger.ProcessedAccessProposalsCount)
	if err != nil {
		return nil, false, err
	}
	if !s.hasVotingPeriodExpired(p.StartingPeriod) {
		return nil, false, nil
	}

	p.Processed = true
	p.DidPass = p.YesVotes > p.NoVotes && !p.Aborted
	if ledger.TotalEnergiesRequested, err = checkedSub(ledger.TotalEnergiesRequested, p.EnergiesRequested); err != nil {
		return nil, false, settled(err)
	}

	if p.DidPass {
		isNew, err := s.admitOrTopUp(p.Applicant, p.EnergiesRequested)
		if err != nil {
			return nil, false, settled(err)
		}
		if isNew {
			events = append(events, &types.EventNewMember{Member: p.Applicant, Energies: p.EnergiesRequested})
		}
		if p.Deposit > 0 {
			if err = settled(s.move(PoolDeposit, PoolFree, p.Deposit)); err != nil {
				return nil, false, err
			}
		}
	} else if p.Deposit > 0 {
		if err = settled(s.payCreating(PoolDeposit, p.Applicant, p.Deposit)); err != nil {
			return nil, false, err
		}
	}
	if p.Mortgage > 0 {
		if err = settled(s.payCreating(PoolMortgage, p.Proposer, p.Mortgage)); err != nil {
			return nil, false, err
		}
	}
	if err = s.setAccessProposal(p); err != nil {
		return nil, false, err
	}
	ledger.ProcessedAccessProposalsCount++

	s.logger.Info("access proposal settled", "proposal", p.Index, "passed", p.DidPass, "yes", p.YesVotes, "no", p.NoVotes)
	events = append(events, &types.EventProcessAccessProposal{
		Proposal:          p.Index,
		Proposer:          p.Proposer,
		Applicant:         p.Applicant,
		Deposit:           p.Deposit,
		EnergiesRequested: p.EnergiesRequested,
		DidPass:           p.DidPass,
	})
	return events, true, nil
}
