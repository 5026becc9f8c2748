package types

import "fmt"

type Member struct {
	Energy              uint64 `json:"energy"`
	HighestIndexYesVote uint32 `json:"highest_index_yes_vote"`
}

type AccessProposal struct {
	Index             uint32 `json:"index"`
	Proposer          string `json:"proposer"`
	Applicant         string `json:"applicant"`
	EnergiesRequested uint64 `json:"energies_requested"`
	Mortgage          uint64 `json:"mortgage"`
	Deposit           uint64 `json:"deposit"`
	StartingPeriod    uint64 `json:"starting_period"`
	YesVotes          uint64 `json:"yes_votes"`
	NoVotes           uint64 `json:"no_votes"`
	Processed         bool   `json:"processed"`
	DidPass           bool   `json:"did_pass"`
	Aborted           bool   `json:"aborted"`
	Detail            []byte `json:"detail"`
}

type ProjectStatus uint8

const (
	ProjectStatusInitialization ProjectStatus = 0
	ProjectStatusMilestone1     ProjectStatus = 1
	ProjectStatusMilestone2     ProjectStatus = 2
	ProjectStatusMilestone3     ProjectStatus = 3
)

func (s ProjectStatus) String() string {
	switch s {
	case ProjectStatusInitialization:
		return "initialization"
	case ProjectStatusMilestone1:
		return "milestone1"
	case ProjectStatusMilestone2:
		return "milestone2"
	case ProjectStatusMilestone3:
		return "milestone3"
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

// Next returns the milestone following s. ok is false at Milestone3.
func (s ProjectStatus) Next() (next ProjectStatus, ok bool) {
	if s >= ProjectStatusMilestone3 {
		return s, false
	}
	return s + 1, true
}

// ProjectPhase tells whether a project can still run voting rounds.
// Cancelled and Completed are terminal.
type ProjectPhase uint8

const (
	ProjectPhaseActive    ProjectPhase = 0
	ProjectPhaseCancelled ProjectPhase = 1
	ProjectPhaseCompleted ProjectPhase = 2
)

func (p ProjectPhase) String() string {
	switch p {
	case ProjectPhaseActive:
		return "active"
	case ProjectPhaseCancelled:
		return "cancelled"
	case ProjectPhaseCompleted:
		return "completed"
	}
	return fmt.Sprintf("phase(%d)", uint8(p))
}

type ProjectProposal struct {
	Index               uint32        `json:"index"`
	Proposer            string        `json:"proposer"`
	Applicant           string        `json:"applicant"`
	Mortgage            uint64        `json:"mortgage"`
	StartingPeriod      uint64        `json:"starting_period"`
	Milestone1Requested uint64        `json:"milestone_1_requested"`
	Milestone2Requested uint64        `json:"milestone_2_requested"`
	Milestone3Requested uint64        `json:"milestone_3_requested"`
	YesVotes            uint64        `json:"yes_votes"`
	NoVotes             uint64        `json:"no_votes"`
	Processed           bool          `json:"processed"`
	StageDidPass        bool          `json:"stage_did_pass"`
	Round               uint64        `json:"round"`
	Status              ProjectStatus `json:"status"`
	Phase               ProjectPhase  `json:"phase"`
	Detail              []byte        `json:"detail"`
}

// Requested returns the grant attached to a milestone. Initialization carries none.
func (p *ProjectProposal) Requested(status ProjectStatus) uint64 {
	switch status {
	case ProjectStatusMilestone1:
		return p.Milestone1Requested
	case ProjectStatusMilestone2:
		return p.Milestone2Requested
	case ProjectStatusMilestone3:
		return p.Milestone3Requested
	}
	return 0
}

func (p *ProjectProposal) Active() bool {
	return p.Phase == ProjectPhaseActive
}

// Pools are the four treasury balances.
type Pools struct {
	Free        uint64 `json:"free"`
	Mortgage    uint64 `json:"mortgage"`
	Deposit     uint64 `json:"deposit"`
	GrantLocked uint64 `json:"grant_locked"`
}

// Ledger holds the scalar cells of the DAO. Maps (members, proposals, votes,
// queue entries) live in the state tree under their own keys.
type Ledger struct {
	Pools                         Pools  `json:"pools"`
	TotalInflow                   uint64 `json:"total_inflow"`
	TotalEnergies                 uint64 `json:"total_energies"`
	TotalEnergiesRequested        uint64 `json:"total_energies_requested"`
	MembersCount                  uint32 `json:"members_count"`
	AccessProposalsCount          uint32 `json:"access_proposals_count"`
	ProcessedAccessProposalsCount uint32 `json:"processed_access_proposals_count"`
	ProjectProposalsCount         uint32 `json:"project_proposals_count"`
	QueueHead                     uint32 `json:"queue_head"`
	QueueLength                   uint32 `json:"queue_length"`
	Summoner                      string `json:"summoner"`
	SummoningTime                 uint64 `json:"summoning_time"`
}
