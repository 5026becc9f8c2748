package types

import (
	"encoding/json"
	"testing"

	abci "github.com/cometbft/cometbft/abci/types"
	"github.com/stretchr/testify/require"
)

func TestDecodeEvents(t *testing.T) {
	access := &EventSubmitAccessProposal{Proposal: 3, Proposer: "A", Applicant: "B", EnergiesRequested: 5, Deposit: 20, StartingPeriod: 7}
	gotAccess, err := DecodeEventSubmitAccessProposal(access.Encode())
	require.NoError(t, err)
	require.Equal(t, access, gotAccess)

	process := &EventProcessProjectProposal{
		Proposal:  1,
		Proposer:  "A",
		Applicant: "C",
		Status:    ProjectStatusMilestone3,
		Round:     2,
		Passed:    true,
		Grant:     30,
		Phase:     ProjectPhaseCompleted,
	}
	gotProcess, err := DecodeEventProcessProjectProposal(process.Encode())
	require.NoError(t, err)
	require.Equal(t, process, gotProcess)

	vote := &EventProjectVote{Voter: "A", Proposal: 1, Status: ProjectStatusMilestone1, Round: 1, Yes: false, Energy: 4}
	gotVote, err := DecodeEventProjectVote(vote.Encode())
	require.NoError(t, err)
	require.Equal(t, vote, gotVote)
}

func TestDecodeEventBadAttribute(t *testing.T) {
	ev := abci.Event{
		Type: EventAccessVoteType,
		Attributes: []abci.EventAttribute{
			{Key: "proposal", Value: "x"},
			{Key: "yes", Value: "true"},
			{Key: "energy", Value: "1"},
		},
	}
	_, err := DecodeEventAccessVote(ev)
	require.Error(t, err)
}

func TestProjectStatusNext(t *testing.T) {
	s := ProjectStatusInitialization
	for _, want := range []ProjectStatus{ProjectStatusMilestone1, ProjectStatusMilestone2, ProjectStatusMilestone3} {
		next, ok := s.Next()
		require.True(t, ok)
		require.Equal(t, want, next)
		s = next
	}
	_, ok := s.Next()
	require.False(t, ok)
	require.Equal(t, "milestone3", s.String())
}

func TestProjectRequested(t *testing.T) {
	p := &ProjectProposal{Milestone1Requested: 10, Milestone2Requested: 20, Milestone3Requested: 30}
	require.Zero(t, p.Requested(ProjectStatusInitialization))
	require.Equal(t, uint64(20), p.Requested(ProjectStatusMilestone2))
	require.True(t, p.Active())
	p.Phase = ProjectPhaseCancelled
	require.False(t, p.Active())
}

func TestGenesisValidate(t *testing.T) {
	require.NoError(t, DefaultDAOGenesis().Validate())

	g := DefaultDAOGenesis()
	g.Params.PeriodDuration = 0
	require.Error(t, g.Validate())

	g = DefaultDAOGenesis()
	g.Balances = []GenesisBalance{{Address: "A", Amount: 1}, {Address: "A", Amount: 2}}
	require.Error(t, g.Validate())

	g.Balances = []GenesisBalance{{Amount: 1}}
	require.Error(t, g.Validate())
}

func TestGenesisDocAppState(t *testing.T) {
	gen := DefaultDAOGenesis()
	gen.Balances = append(gen.Balances, GenesisBalance{Address: "A", Amount: 100})
	dat, err := json.Marshal(gen)
	require.NoError(t, err)

	doc := &GenesisDoc{ChainID: "dao-test", AppState: dat}
	require.NoError(t, doc.ValidateAndComplete())
	require.Equal(t, int64(1), doc.InitialHeight)
	require.False(t, doc.GenesisTime.IsZero())

	doc.AppState = json.RawMessage(`{"params":{"period_duration":0,"voting_period_length":1}}`)
	require.Error(t, doc.ValidateAndComplete())

	doc = &GenesisDoc{}
	require.Error(t, doc.ValidateAndComplete())
}
