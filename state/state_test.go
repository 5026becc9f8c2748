package state

import (
	"testing"

	"github.com/calehh/hac-dao/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/stretchr/testify/require"
)

const (
	alice = "A"
	bob   = "B"
	carol = "C"
)

var testParams = types.Params{
	PeriodDuration:     10,
	VotingPeriodLength: 3,
	AbortWindow:        1,
	ProposalMortgage:   2,
}

func newTestDB(t *testing.T) *StateDB {
	db, err := NewMemStateDB(cmtlog.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestState(t *testing.T, balances ...types.GenesisBalance) *State {
	st := newTestDB(t).NewState()
	st.SetChainId("dao-test")
	if balances == nil {
		balances = []types.GenesisBalance{
			{Address: alice, Amount: 100},
			{Address: bob, Amount: 50},
			{Address: carol, Amount: 100},
		}
	}
	require.NoError(t, st.InitGenesis(types.DAOGenesis{Params: testParams, Balances: balances}))
	return st
}

func atPeriod(st *State, period uint64) {
	st.SetMoment(period * st.Params().PeriodDuration)
}

func tick(t *testing.T, st *State) []types.Event {
	events, err := st.OnPeriodAdvance()
	require.NoError(t, err)
	require.NoError(t, st.CheckInvariants())
	return events
}

func balanceOf(t *testing.T, st *State, addr string) uint64 {
	v, err := st.Bank().Balance(addr)
	require.NoError(t, err)
	return v
}

func member(t *testing.T, st *State, addr string) *types.Member {
	m, err := st.GetMember(addr)
	require.NoError(t, err)
	require.NotNil(t, m)
	return m
}

func summon(t *testing.T, st *State) {
	ev, err := st.Summon(alice)
	require.NoError(t, err)
	require.Equal(t, alice, ev.Summoner)
}

func TestSummon(t *testing.T) {
	st := newTestState(t)
	atPeriod(st, 4)
	summon(t, st)

	m := member(t, st, alice)
	require.Equal(t, uint64(1), m.Energy)
	require.Equal(t, uint64(1), st.Ledger().TotalEnergies)
	require.Equal(t, alice, st.Ledger().Summoner)
	require.Equal(t, uint64(40), st.Ledger().SummoningTime)

	_, err := st.Summon(bob)
	require.ErrorIs(t, err, ErrAlreadySummoned)
	require.NoError(t, st.CheckInvariants())
}

func TestAccessProposalAdmitsApplicant(t *testing.T) {
	st := newTestState(t)
	summon(t, st)

	ev, err := st.SubmitAccessProposal(alice, AccessProposalArgs{Applicant: bob, EnergiesRequested: 5})
	require.NoError(t, err)
	require.Equal(t, uint32(0), ev.Proposal)
	require.Equal(t, uint64(0), ev.StartingPeriod)
	require.Equal(t, uint64(98), balanceOf(t, st, alice))
	require.Equal(t, uint64(2), st.Ledger().Pools.Mortgage)
	require.Equal(t, uint64(5), st.Ledger().TotalEnergiesRequested)

	vote, err := st.SubmitAccessVote(alice, 0, true)
	require.NoError(t, err)
	require.Equal(t, uint64(1), vote.Energy)

	atPeriod(st, 2)
	require.Empty(t, tick(t, st))

	atPeriod(st, 3)
	events := tick(t, st)
	require.Len(t, events, 2)
	require.Equal(t, &types.EventNewMember{Member: bob, Energies: 5}, events[0])

	p, err := st.GetAccessProposal(0)
	require.NoError(t, err)
	require.True(t, p.Processed)
	require.True(t, p.DidPass)
	require.Equal(t, uint64(5), member(t, st, bob).Energy)
	require.Equal(t, uint64(6), st.Ledger().TotalEnergies)
	require.Equal(t, uint64(0), st.Ledger().TotalEnergiesRequested)
	require.Equal(t, uint32(1), st.Ledger().ProcessedAccessProposalsCount)
	require.Equal(t, uint64(100), balanceOf(t, st, alice))
	require.Equal(t, uint64(0), st.Ledger().Pools.Mortgage)
	require.Equal(t, uint32(2), st.Ledger().MembersCount)
}

func TestAccessProposalDepositGoesToFreePool(t *testing.T) {
	st := newTestState(t)
	summon(t, st)
	_, err := st.ApplicantApprove(bob, 10)
	require.NoError(t, err)

	_, err = st.SubmitAccessProposal(alice, AccessProposalArgs{Applicant: bob, Deposit: 11, EnergiesRequested: 5})
	require.ErrorIs(t, err, ErrAllowanceNotEnough)

	_, err = st.SubmitAccessProposal(alice, AccessProposalArgs{Applicant: bob, Deposit: 10, EnergiesRequested: 5})
	require.NoError(t, err)
	require.Equal(t, uint64(40), balanceOf(t, st, bob))
	require.Equal(t, uint64(10), st.Ledger().Pools.Deposit)
	allowance, err := st.Allowance(bob)
	require.NoError(t, err)
	require.Equal(t, uint64(0), allowance)

	_, err = st.SubmitAccessVote(alice, 0, true)
	require.NoError(t, err)
	atPeriod(st, 3)
	tick(t, st)

	pools := st.Ledger().Pools
	require.Equal(t, uint64(10), pools.Free)
	require.Equal(t, uint64(0), pools.Deposit)
	require.Equal(t, uint64(40), balanceOf(t, st, bob))
}

func TestAccessProposalRejectedRefundsDeposit(t *testing.T) {
	st := newTestState(t)
	summon(t, st)
	_, err := st.ApplicantApprove(bob, 10)
	require.NoError(t, err)
	_, err = st.SubmitAccessProposal(alice, AccessProposalArgs{Applicant: bob, Deposit: 10, EnergiesRequested: 5})
	require.NoError(t, err)
	_, err = st.SubmitAccessVote(alice, 0, false)
	require.NoError(t, err)

	atPeriod(st, 3)
	events := tick(t, st)
	require.Len(t, events, 1)

	p, err := st.GetAccessProposal(0)
	require.NoError(t, err)
	require.True(t, p.Processed)
	require.False(t, p.DidPass)
	require.Equal(t, uint64(50), balanceOf(t, st, bob))
	require.Equal(t, uint64(0), st.Ledger().Pools.Deposit)
	require.Equal(t, uint64(1), st.Ledger().TotalEnergies)
	m, err := st.GetMember(bob)
	require.NoError(t, err)
	require.Nil(t, m)
}

func TestAccessStartingPeriodsIncrease(t *testing.T) {
	st := newTestState(t)
	summon(t, st)
	for i := uint64(0); i < 3; i++ {
		ev, err := st.SubmitAccessProposal(alice, AccessProposalArgs{Applicant: bob, EnergiesRequested: 1})
		require.NoError(t, err)
		require.Equal(t, i, ev.StartingPeriod)
	}
	atPeriod(st, 10)
	ev, err := st.SubmitAccessProposal(alice, AccessProposalArgs{Applicant: bob, EnergiesRequested: 1})
	require.NoError(t, err)
	require.Equal(t, uint64(10), ev.StartingPeriod)
}

func TestAccessSettlementIsFIFO(t *testing.T) {
	st := newTestState(t)
	summon(t, st)
	_, err := st.SubmitAccessProposal(alice, AccessProposalArgs{Applicant: bob, EnergiesRequested: 1})
	require.NoError(t, err)
	_, err = st.SubmitAccessProposal(alice, AccessProposalArgs{Applicant: carol, EnergiesRequested: 1})
	require.NoError(t, err)

	atPeriod(st, 10)
	events := tick(t, st)
	require.Len(t, events, 1)
	settled, ok := events[0].(*types.EventProcessAccessProposal)
	require.True(t, ok)
	require.Equal(t, uint32(0), settled.Proposal)

	p, err := st.GetAccessProposal(1)
	require.NoError(t, err)
	require.False(t, p.Processed)

	events = tick(t, st)
	require.Len(t, events, 1)
	require.Equal(t, uint32(1), events[0].(*types.EventProcessAccessProposal).Proposal)
	require.Empty(t, tick(t, st))
}

func TestAccessVoteRules(t *testing.T) {
	st := newTestState(t)
	summon(t, st)

	_, err := st.SubmitAccessVote(alice, 0, true)
	require.ErrorIs(t, err, ErrAccessProposalNoexists)

	_, err = st.SubmitAccessProposal(bob, AccessProposalArgs{Applicant: bob, EnergiesRequested: 1})
	require.ErrorIs(t, err, ErrNotMember)
	_, err = st.SubmitAccessProposal(alice, AccessProposalArgs{EnergiesRequested: 1})
	require.ErrorIs(t, err, ErrApplicantNotSet)

	atPeriod(st, 1)
	_, err = st.SubmitAccessProposal(alice, AccessProposalArgs{Applicant: bob, EnergiesRequested: 1})
	require.NoError(t, err)

	atPeriod(st, 0)
	_, err = st.SubmitAccessVote(alice, 0, true)
	require.ErrorIs(t, err, ErrNotInVotingPeriod)

	atPeriod(st, 1)
	_, err = st.SubmitAccessVote(carol, 0, true)
	require.ErrorIs(t, err, ErrNotMember)
	_, err = st.SubmitAccessVote(alice, 0, true)
	require.NoError(t, err)
	_, err = st.SubmitAccessVote(alice, 0, false)
	require.ErrorIs(t, err, ErrAlreadyVoted)

	atPeriod(st, 3)
	_, err = st.SubmitAccessVote(alice, 0, true)
	require.ErrorIs(t, err, ErrAlreadyVoted)

	atPeriod(st, 4)
	_, err = st.SubmitAccessVote(alice, 0, true)
	require.ErrorIs(t, err, ErrNotInVotingPeriod)

	p, err := st.GetAccessProposal(0)
	require.NoError(t, err)
	require.Equal(t, uint64(1), p.YesVotes)
	require.Equal(t, uint64(0), p.NoVotes)
}

func TestAbortAccess(t *testing.T) {
	st := newTestState(t)
	summon(t, st)
	_, err := st.ApplicantApprove(bob, 10)
	require.NoError(t, err)
	_, err = st.SubmitAccessProposal(alice, AccessProposalArgs{Applicant: bob, Deposit: 10, EnergiesRequested: 5})
	require.NoError(t, err)
	_, err = st.SubmitAccessVote(alice, 0, true)
	require.NoError(t, err)

	before, err := st.GetAccessProposal(0)
	require.NoError(t, err)
	ledger := st.Ledger()
	_, err = st.AbortAccess(carol, 0)
	require.ErrorIs(t, err, ErrNotApplicant)
	after, err := st.GetAccessProposal(0)
	require.NoError(t, err)
	require.Equal(t, before, after)
	require.Equal(t, ledger, st.Ledger())

	ev, err := st.AbortAccess(bob, 0)
	require.NoError(t, err)
	require.Equal(t, uint64(10), ev.Refunded)
	require.Equal(t, uint64(50), balanceOf(t, st, bob))
	require.Equal(t, uint64(0), st.Ledger().Pools.Deposit)
	require.Equal(t, uint64(2), st.Ledger().Pools.Mortgage)

	_, err = st.AbortAccess(bob, 0)
	require.ErrorIs(t, err, ErrProposalAborted)
	_, err = st.SubmitAccessVote(alice, 0, true)
	require.ErrorIs(t, err, ErrProposalAborted)

	atPeriod(st, 3)
	tick(t, st)
	p, err := st.GetAccessProposal(0)
	require.NoError(t, err)
	require.True(t, p.Processed)
	require.False(t, p.DidPass)
	require.Equal(t, uint64(100), balanceOf(t, st, alice))
	require.Equal(t, uint64(0), st.Ledger().Pools.Mortgage)
}

func TestAbortAccessWindow(t *testing.T) {
	st := newTestState(t)
	summon(t, st)
	_, err := st.SubmitAccessProposal(alice, AccessProposalArgs{Applicant: bob, EnergiesRequested: 5})
	require.NoError(t, err)

	atPeriod(st, 1)
	_, err = st.AbortAccess(bob, 0)
	require.ErrorIs(t, err, ErrAbortWindowPassed)
}

func TestRageQuit(t *testing.T) {
	st := newTestState(t)
	summon(t, st)
	_, err := st.SubmitAccessProposal(alice, AccessProposalArgs{Applicant: bob, EnergiesRequested: 5})
	require.NoError(t, err)
	_, err = st.SubmitAccessVote(alice, 0, true)
	require.NoError(t, err)
	atPeriod(st, 3)
	tick(t, st)

	_, err = st.Donate(alice, 60)
	require.NoError(t, err)
	require.Equal(t, uint64(60), st.Ledger().Pools.Free)

	_, err = st.RageQuit(bob, 0)
	require.ErrorIs(t, err, ErrZeroEnergies)
	_, err = st.RageQuit(bob, 6)
	require.ErrorIs(t, err, ErrEnergyNotEnough)
	_, err = st.RageQuit(carol, 1)
	require.ErrorIs(t, err, ErrNotMember)

	ev, err := st.RageQuit(bob, 3)
	require.NoError(t, err)
	require.Equal(t, uint64(30), ev.Redeemed)
	require.Equal(t, uint64(80), balanceOf(t, st, bob))
	require.Equal(t, uint64(30), st.Ledger().Pools.Free)
	require.Equal(t, uint64(3), st.Ledger().TotalEnergies)
	require.Equal(t, uint64(2), member(t, st, bob).Energy)
	require.NoError(t, st.CheckInvariants())
}

func TestRageQuitWithoutGenesisBalance(t *testing.T) {
	st := newTestState(t, types.GenesisBalance{Address: alice, Amount: 100})
	summon(t, st)
	_, err := st.SubmitAccessProposal(alice, AccessProposalArgs{Applicant: bob, EnergiesRequested: 5})
	require.NoError(t, err)
	_, err = st.SubmitAccessVote(alice, 0, true)
	require.NoError(t, err)
	atPeriod(st, 3)
	tick(t, st)

	exists, err := st.Bank().Exists(bob)
	require.NoError(t, err)
	require.True(t, exists)
	require.Equal(t, uint64(0), balanceOf(t, st, bob))

	_, err = st.Donate(alice, 60)
	require.NoError(t, err)
	ev, err := st.RageQuit(bob, 3)
	require.NoError(t, err)
	require.Equal(t, uint64(30), ev.Redeemed)
	require.Equal(t, uint64(30), balanceOf(t, st, bob))
	require.Equal(t, uint64(30), st.Ledger().Pools.Free)
	require.Equal(t, uint64(3), st.Ledger().TotalEnergies)
	require.NoError(t, st.CheckInvariants())
}

func TestAbortAccessDrainedApplicant(t *testing.T) {
	st := newTestState(t,
		types.GenesisBalance{Address: alice, Amount: 100},
		types.GenesisBalance{Address: bob, Amount: 10},
	)
	summon(t, st)
	_, err := st.ApplicantApprove(bob, 10)
	require.NoError(t, err)
	_, err = st.SubmitAccessProposal(alice, AccessProposalArgs{Applicant: bob, Deposit: 10, EnergiesRequested: 5})
	require.NoError(t, err)
	require.Equal(t, uint64(0), balanceOf(t, st, bob))

	ev, err := st.AbortAccess(bob, 0)
	require.NoError(t, err)
	require.Equal(t, uint64(10), ev.Refunded)
	require.Equal(t, uint64(10), balanceOf(t, st, bob))
	require.Equal(t, uint64(0), st.Ledger().Pools.Deposit)
	require.NoError(t, st.CheckInvariants())

	// no deposit, no refund: an applicant without any account can still abort
	_, err = st.SubmitAccessProposal(alice, AccessProposalArgs{Applicant: carol, EnergiesRequested: 1})
	require.NoError(t, err)
	ev, err = st.AbortAccess(carol, 1)
	require.NoError(t, err)
	require.Zero(t, ev.Refunded)
	require.NoError(t, st.CheckInvariants())
}

func TestRageQuitBlockedByPendingYesVote(t *testing.T) {
	st := newTestState(t)
	summon(t, st)
	_, err := st.SubmitAccessProposal(alice, AccessProposalArgs{Applicant: bob, EnergiesRequested: 5})
	require.NoError(t, err)
	_, err = st.SubmitAccessProposal(alice, AccessProposalArgs{Applicant: carol, EnergiesRequested: 5})
	require.NoError(t, err)

	atPeriod(st, 1)
	_, err = st.SubmitAccessVote(alice, 1, true)
	require.NoError(t, err)
	require.Equal(t, uint32(1), member(t, st, alice).HighestIndexYesVote)

	_, err = st.RageQuit(alice, 1)
	require.ErrorIs(t, err, ErrPendingYesVote)

	atPeriod(st, 4)
	tick(t, st)
	tick(t, st)
	_, err = st.RageQuit(alice, 1)
	require.NoError(t, err)
	require.NoError(t, st.CheckInvariants())
}

func TestFailedOperationLeavesNoTrace(t *testing.T) {
	st := newTestState(t,
		types.GenesisBalance{Address: alice, Amount: 1},
		types.GenesisBalance{Address: bob, Amount: 50},
	)
	summon(t, st)
	_, err := st.ApplicantApprove(bob, 5)
	require.NoError(t, err)
	ledger := st.Ledger()

	// the deposit is taken before the mortgage, which alice cannot pay
	_, err = st.SubmitAccessProposal(alice, AccessProposalArgs{Applicant: bob, Deposit: 5, EnergiesRequested: 1})
	require.ErrorIs(t, err, ErrInsufficientBalance)
	require.Equal(t, KindValidation, Kind(err))

	require.Equal(t, ledger, st.Ledger())
	require.Equal(t, uint64(50), balanceOf(t, st, bob))
	allowance, err := st.Allowance(bob)
	require.NoError(t, err)
	require.Equal(t, uint64(5), allowance)
	_, err = st.GetAccessProposal(0)
	require.ErrorIs(t, err, ErrAccessProposalNoexists)
	require.NoError(t, st.CheckInvariants())
}

func TestProjectMilestones(t *testing.T) {
	st := newTestState(t)
	summon(t, st)

	ev, err := st.SubmitProjectProposal(alice, ProjectProposalArgs{
		Applicant:           carol,
		Milestone1Requested: 10,
		Milestone2Requested: 20,
		Milestone3Requested: 30,
	})
	require.NoError(t, err)
	require.Equal(t, uint64(0), ev.StartingPeriod)
	_, err = st.SubmitProjectVote(alice, 0, true)
	require.NoError(t, err)
	_, err = st.SubmitProjectVote(alice, 0, true)
	require.ErrorIs(t, err, ErrAlreadyVoted)

	_, err = st.ForwardToMilestone(alice, 0)
	require.ErrorIs(t, err, ErrProjectNotProcessed)

	atPeriod(st, 3)
	events := tick(t, st)
	require.Len(t, events, 1)
	require.Equal(t, uint64(0), events[0].(*types.EventProcessProjectProposal).Grant)

	before, err := st.GetProjectProposal(0)
	require.NoError(t, err)
	require.True(t, before.StageDidPass)
	_, err = st.ForwardToMilestone(alice, 0)
	require.ErrorIs(t, err, ErrInsufficientFreePool)
	require.Equal(t, KindArithmetic, Kind(err))
	after, err := st.GetProjectProposal(0)
	require.NoError(t, err)
	require.Equal(t, before, after)
	entries, err := st.QueueEntries()
	require.NoError(t, err)
	require.Empty(t, entries)

	_, err = st.Donate(alice, 60)
	require.NoError(t, err)

	// milestone 1 passes
	fwd, err := st.ForwardToMilestone(alice, 0)
	require.NoError(t, err)
	require.Equal(t, types.ProjectStatusMilestone1, fwd.Status)
	require.Equal(t, uint64(3), fwd.StartingPeriod)
	require.Equal(t, uint64(10), st.Ledger().Pools.GrantLocked)
	require.Equal(t, uint64(50), st.Ledger().Pools.Free)
	_, err = st.SubmitProjectVote(alice, 0, true)
	require.NoError(t, err)
	atPeriod(st, 6)
	tick(t, st)
	require.Equal(t, uint64(110), balanceOf(t, st, carol))
	require.Equal(t, uint64(0), st.Ledger().Pools.GrantLocked)

	// milestone 2 fails once, then passes on retry
	fwd, err = st.ForwardToMilestone(alice, 0)
	require.NoError(t, err)
	require.Equal(t, types.ProjectStatusMilestone2, fwd.Status)
	require.Equal(t, uint64(0), fwd.Round)
	_, err = st.SubmitProjectVote(alice, 0, false)
	require.NoError(t, err)
	atPeriod(st, 9)
	tick(t, st)
	require.Equal(t, uint64(50), st.Ledger().Pools.Free)
	require.Equal(t, uint64(0), st.Ledger().Pools.GrantLocked)

	fwd, err = st.ForwardToMilestone(alice, 0)
	require.NoError(t, err)
	require.Equal(t, types.ProjectStatusMilestone2, fwd.Status)
	require.Equal(t, uint64(1), fwd.Round)
	_, err = st.SubmitProjectVote(alice, 0, true)
	require.NoError(t, err)
	atPeriod(st, 12)
	tick(t, st)
	require.Equal(t, uint64(130), balanceOf(t, st, carol))

	// milestone 3 completes the project
	fwd, err = st.ForwardToMilestone(alice, 0)
	require.NoError(t, err)
	require.Equal(t, types.ProjectStatusMilestone3, fwd.Status)
	require.Equal(t, uint64(0), st.Ledger().Pools.Free)
	_, err = st.SubmitProjectVote(alice, 0, true)
	require.NoError(t, err)
	atPeriod(st, 15)
	tick(t, st)

	p, err := st.GetProjectProposal(0)
	require.NoError(t, err)
	require.Equal(t, types.ProjectPhaseCompleted, p.Phase)
	require.Equal(t, uint64(160), balanceOf(t, st, carol))
	require.Equal(t, uint64(40), balanceOf(t, st, alice))
	require.Equal(t, types.Pools{}, st.Ledger().Pools)

	_, err = st.ForwardToMilestone(alice, 0)
	require.ErrorIs(t, err, ErrProjectDone)
	require.Equal(t, KindTerminal, Kind(err))
}

func TestProjectQueueOrder(t *testing.T) {
	st := newTestState(t)
	summon(t, st)
	for i := uint64(0); i < 2; i++ {
		ev, err := st.SubmitProjectProposal(alice, ProjectProposalArgs{Applicant: carol})
		require.NoError(t, err)
		require.Equal(t, i, ev.StartingPeriod)
	}
	entries, err := st.QueueEntries()
	require.NoError(t, err)
	require.Equal(t, []uint32{0, 1}, entries)

	atPeriod(st, 10)
	events := tick(t, st)
	require.Len(t, events, 1)
	require.Equal(t, uint32(0), events[0].(*types.EventProcessProjectProposal).Proposal)
	require.False(t, events[0].(*types.EventProcessProjectProposal).Passed)

	entries, err = st.QueueEntries()
	require.NoError(t, err)
	require.Equal(t, []uint32{1}, entries)

	// a retried round queues behind the tail
	fwd, err := st.ForwardToMilestone(alice, 0)
	require.NoError(t, err)
	require.Equal(t, uint64(10), fwd.StartingPeriod)
	require.Equal(t, types.ProjectStatusInitialization, fwd.Status)
	require.Equal(t, uint64(1), fwd.Round)
	entries, err = st.QueueEntries()
	require.NoError(t, err)
	require.Equal(t, []uint32{1, 0}, entries)
}

func TestAbortProject(t *testing.T) {
	st := newTestState(t)
	summon(t, st)
	_, err := st.SubmitProjectProposal(alice, ProjectProposalArgs{Applicant: carol, Milestone1Requested: 5})
	require.NoError(t, err)
	require.Equal(t, uint64(98), balanceOf(t, st, alice))

	_, err = st.AbortProject(alice, 0)
	require.ErrorIs(t, err, ErrNotApplicant)
	_, err = st.AbortProject(carol, 0)
	require.NoError(t, err)
	_, err = st.AbortProject(carol, 0)
	require.ErrorIs(t, err, ErrProjectInactive)
	_, err = st.SubmitProjectVote(alice, 0, true)
	require.ErrorIs(t, err, ErrProjectInactive)

	atPeriod(st, 3)
	events := tick(t, st)
	require.Len(t, events, 1)
	ev := events[0].(*types.EventProcessProjectProposal)
	require.False(t, ev.Passed)
	require.Equal(t, types.ProjectPhaseCancelled, ev.Phase)
	require.Equal(t, uint64(100), balanceOf(t, st, alice))

	_, err = st.ForwardToMilestone(alice, 0)
	require.ErrorIs(t, err, ErrProjectInactive)
}

func TestAbortIdleProjectRefundsMortgage(t *testing.T) {
	st := newTestState(t)
	summon(t, st)
	_, err := st.SubmitProjectProposal(alice, ProjectProposalArgs{Applicant: carol})
	require.NoError(t, err)
	atPeriod(st, 3)
	tick(t, st)
	require.Equal(t, uint64(98), balanceOf(t, st, alice))

	_, err = st.AbortProject(carol, 0)
	require.NoError(t, err)
	require.Equal(t, uint64(100), balanceOf(t, st, alice))
	require.Equal(t, uint64(0), st.Ledger().Pools.Mortgage)
	require.NoError(t, st.CheckInvariants())
}

func TestStateCommit(t *testing.T) {
	db := newTestDB(t)
	st := db.NewState()
	st.SetChainId("dao-test")
	require.NoError(t, st.InitGenesis(types.DAOGenesis{
		Params:   testParams,
		Balances: []types.GenesisBalance{{Address: alice, Amount: 100}},
	}))
	summon(t, st)

	h, err := st.Update()
	require.NoError(t, err)
	saved, err := db.SetState(st)
	require.NoError(t, err)
	require.Equal(t, h, saved)
	require.Equal(t, saved, db.State().Hash())

	next := db.NewState()
	require.Equal(t, uint64(1), next.Header().Height)
	require.Equal(t, uint64(1), member(t, next, alice).Energy)
	require.Equal(t, uint64(100), balanceOf(t, next, alice))

	members, height, err := db.Members()
	require.NoError(t, err)
	require.Equal(t, uint64(0), height)
	require.Equal(t, []MemberEntry{{Address: alice, Member: types.Member{Energy: 1}}}, members)
}

func TestCloneIsIndependent(t *testing.T) {
	st := newTestState(t)
	summon(t, st)
	branch := st.Clone()
	_, err := branch.Donate(alice, 10)
	require.NoError(t, err)
	require.Equal(t, uint64(10), branch.Ledger().Pools.Free)
	require.Equal(t, uint64(0), st.Ledger().Pools.Free)
	require.Equal(t, uint64(100), balanceOf(t, st, alice))
}

func TestCheckLedger(t *testing.T) {
	st := newTestState(t)
	summon(t, st)
	_, err := st.Donate(alice, 10)
	require.NoError(t, err)
	require.NoError(t, st.CheckLedger())
	require.NoError(t, st.CheckInvariants())

	// the roster walk is left to CheckInvariants
	st.header.Ledger.TotalEnergies = 7
	require.NoError(t, st.CheckLedger())
	require.ErrorIs(t, st.CheckInvariants(), ErrInvariantBroken)
	st.header.Ledger.TotalEnergies = 1

	st.header.Ledger.Pools.Free = 11
	require.ErrorIs(t, st.CheckLedger(), ErrInvariantBroken)
	require.ErrorIs(t, st.CheckInvariants(), ErrInvariantBroken)
	st.header.Ledger.Pools.Free = 10

	st.header.Ledger.QueueLength = 1
	require.ErrorIs(t, st.CheckLedger(), ErrInvariantBroken)
}
