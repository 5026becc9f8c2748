package state

import (
	"fmt"

	"github.com/calehh/hac-dao/types"
)

type ProjectProposalArgs struct {
	Applicant           string
	Milestone1Requested uint64
	Milestone2Requested uint64
	Milestone3Requested uint64
	Detail              []byte
}

// queueStartingPeriod computes a starting period behind the last entry still
// waiting in the project queue.
func (s *State) queueStartingPeriod() (uint64, error) {
	q := s.queue()
	if q.Len() == 0 {
		return s.nextStartingPeriod(0, false), nil
	}
	tail, err := q.Back()
	if err != nil {
		return 0, err
	}
	p, err := s.GetProjectProposal(tail)
	if err != nil {
		return 0, err
	}
	return s.nextStartingPeriod(p.StartingPeriod, true), nil
}

func (s *State) SubmitProjectProposal(sender string, args ProjectProposalArgs) (ev *types.EventSubmitProjectProposal, err error) {
	err = s.atomic(func() error {
		if _, err := s.requireMember(sender); err != nil {
			return err
		}
		if args.Applicant == "" {
			return ErrApplicantNotSet
		}
		start, err := s.queueStartingPeriod()
		if err != nil {
			return err
		}
		ledger := &s.header.Ledger
		index := ledger.ProjectProposalsCount
		count, err := nextIndex(index)
		if err != nil {
			return err
		}
		p := &types.ProjectProposal{
			Index:               index,
			Proposer:            sender,
			Applicant:           args.Applicant,
			Mortgage:            s.header.Params.ProposalMortgage,
			StartingPeriod:      start,
			Milestone1Requested: args.Milestone1Requested,
			Milestone2Requested: args.Milestone2Requested,
			Milestone3Requested: args.Milestone3Requested,
			Status:              types.ProjectStatusInitialization,
			Phase:               types.ProjectPhaseActive,
			Detail:              args.Detail,
		}
		if err = s.collect(sender, PoolMortgage, p.Mortgage); err != nil {
			return err
		}
		if err = s.setProjectProposal(p); err != nil {
			return err
		}
		ledger.ProjectProposalsCount = count
		if err = s.queue().Push(index); err != nil {
			return err
		}

		ev = &types.EventSubmitProjectProposal{
			Proposal:            p.Index,
			Proposer:            p.Proposer,
			Applicant:           p.Applicant,
			Milestone1Requested: p.Milestone1Requested,
			Milestone2Requested: p.Milestone2Requested,
			Milestone3Requested: p.Milestone3Requested,
			StartingPeriod:      p.StartingPeriod,
		}
		return nil
	})
	return
}

func (s *State) SubmitProjectVote(sender string, index uint32, yes bool) (ev *types.EventProjectVote, err error) {
	err = s.atomic(func() error {
		p, err := s.GetProjectProposal(index)
		if err != nil {
			return err
		}
		if !s.inVotePeriod(p.StartingPeriod) {
			return ErrNotInVotingPeriod
		}
		if !p.Active() {
			return ErrProjectInactive
		}
		m, err := s.requireMember(sender)
		if err != nil {
			return err
		}
		_, voted, err := s.ProjectVote(index, sender, p.Status, p.Round)
		if err != nil {
			return err
		}
		if voted {
			return ErrAlreadyVoted
		}
		if yes {
			p.YesVotes, err = checkedAdd(p.YesVotes, m.Energy)
		} else {
			p.NoVotes, err = checkedAdd(p.NoVotes, m.Energy)
		}
		if err != nil {
			return err
		}
		if err = s.setRLP(fmt.Sprintf(KeyProjectVote, index, sender, p.Status, p.Round), yes); err != nil {
			return err
		}
		if err = s.setProjectProposal(p); err != nil {
			return err
		}
		ev = &types.EventProjectVote{
			Voter:    sender,
			Proposal: index,
			Status:   p.Status,
			Round:    p.Round,
			Yes:      yes,
			Energy:   m.Energy,
		}
		return nil
	})
	return
}

// ForwardToMilestone opens the next voting round of a settled project: the
// next milestone if the last stage passed, another round of it otherwise.
func (s *State) ForwardToMilestone(sender string, index uint32) (ev *types.EventForwardToMilestone, err error) {
	err = s.atomic(func() error {
		if _, err := s.requireMember(sender); err != nil {
			return err
		}
		p, err := s.GetProjectProposal(index)
		if err != nil {
			return err
		}
		if !p.Processed {
			return ErrProjectNotProcessed
		}
		switch p.Phase {
		case types.ProjectPhaseCompleted:
			return ErrProjectDone
		case types.ProjectPhaseCancelled:
			return ErrProjectInactive
		}

		if p.StageDidPass {
			next, ok := p.Status.Next()
			if !ok {
				return ErrProjectDone
			}
			p.Status = next
			p.Round = 0
		} else {
			if p.Round, err = checkedAdd(p.Round, 1); err != nil {
				return err
			}
		}
		p.YesVotes = 0
		p.NoVotes = 0
		p.Processed = false
		p.StageDidPass = false
		if p.StartingPeriod, err = s.queueStartingPeriod(); err != nil {
			return err
		}
		if err = s.move(PoolFree, PoolGrantLocked, p.Requested(p.Status)); err != nil {
			return err
		}
		if err = s.setProjectProposal(p); err != nil {
			return err
		}
		if err = s.queue().Push(index); err != nil {
			return err
		}
		ev = &types.EventForwardToMilestone{
			Sender:         sender,
			Proposal:       index,
			Status:         p.Status,
			Round:          p.Round,
			StartingPeriod: p.StartingPeriod,
		}
		return nil
	})
	return
}

// AbortProject cancels an active project. A round still in the queue keeps
// its place and settles as failed; an idle project gets its mortgage back
// right away.
func (s *State) AbortProject(sender string, index uint32) (ev *types.EventProjectAbort, err error) {
	err = s.atomic(func() error {
		p, err := s.GetProjectProposal(index)
		if err != nil {
			return err
		}
		if sender != p.Applicant {
			return ErrNotApplicant
		}
		if !p.Active() {
			return ErrProjectInactive
		}
		if !p.Processed {
			if !s.inAbortWindow(p.StartingPeriod) {
				return ErrAbortWindowPassed
			}
		} else if p.Mortgage > 0 {
			if err = settled(s.payCreating(PoolMortgage, p.Proposer, p.Mortgage)); err != nil {
				return err
			}
		}
		p.Phase = types.ProjectPhaseCancelled
		if err = s.setProjectProposal(p); err != nil {
			return err
		}
		ev = &types.EventProjectAbort{Proposal: index, Status: p.Status, Round: p.Round}
		return nil
	})
	return
}

// settleProject decides the project round at the head of the queue once its
// voting window has elapsed.
func (s *State) settleProject() (events []types.Event, ok bool, err error) {
	q := s.queue()
	if q.Len() == 0 {
		return nil, false, nil
	}
	index, err := q.Front()
	if err != nil {
		return nil, false, err
	}
	p, err := s.GetProjectProposal(index)
	if err != nil {
		return nil, false, err
	}
	if !s.hasVotingPeriodExpired(p.StartingPeriod) {
		return nil, false, nil
	}

	p.Processed = true
	p.StageDidPass = p.YesVotes > p.NoVotes && p.Active()
	grant := p.Requested(p.Status)
	if p.StageDidPass {
		if err = settled(s.payCreating(PoolGrantLocked, p.Applicant, grant)); err != nil {
			return nil, false, err
		}
		if p.Status == types.ProjectStatusMilestone3 {
			p.Phase = types.ProjectPhaseCompleted
			if err = settled(s.payCreating(PoolMortgage, p.Proposer, p.Mortgage)); err != nil {
				return nil, false, err
			}
		}
	} else {
		if err = settled(s.move(PoolGrantLocked, PoolFree, grant)); err != nil {
			return nil, false, err
		}
		if p.Phase == types.ProjectPhaseCancelled {
			if err = settled(s.payCreating(PoolMortgage, p.Proposer, p.Mortgage)); err != nil {
				return nil, false, err
			}
		}
	}
	if err = s.setProjectProposal(p); err != nil {
		return nil, false, err
	}
	if _, err = q.Pop(); err != nil {
		return nil, false, err
	}

	s.logger.Info("project round settled", "proposal", p.Index, "status", p.Status, "round", p.Round, "passed", p.StageDidPass)
	events = append(events, &types.EventProcessProjectProposal{
		Proposal:  p.Index,
		Proposer:  p.Proposer,
		Applicant: p.Applicant,
		Status:    p.Status,
		Round:     p.Round,
		Passed:    p.StageDidPass,
		Grant:     grant,
		Phase:     p.Phase,
	})
	return events, true, nil
}
