package types

import (
	"fmt"
	"strconv"

	abci "github.com/cometbft/cometbft/abci/types"
)

const (
	EventSummonType                 = "summon"
	EventApprovalType               = "approval"
	EventDonateType                 = "donate"
	EventSubmitAccessProposalType   = "submit_access_proposal"
	EventSubmitProjectProposalType  = "submit_project_proposal"
	EventForwardToMilestoneType     = "forward_to_milestone"
	EventAccessVoteType             = "access_vote"
	EventProjectVoteType            = "project_vote"
	EventAccessAbortType            = "access_abort"
	EventProjectAbortType           = "project_abort"
	EventRageQuitType               = "rage_quit"
	EventNewMemberType              = "new_member"
	EventProcessAccessProposalType  = "process_access_proposal"
	EventProcessProjectProposalType = "process_project_proposal"
)

// Event is anything the ledger reports back to the host.
type Event interface {
	Encode() abci.Event
}

func u64(v uint64) string { return strconv.FormatUint(v, 10) }
func u32(v uint32) string { return strconv.FormatUint(uint64(v), 10) }

func attributes(originEvent abci.Event) map[string]string {
	m := make(map[string]string, len(originEvent.Attributes))
	for _, v := range originEvent.Attributes {
		m[v.Key] = v.Value
	}
	return m
}

type attrReader struct {
	attrs map[string]string
	err   error
}

func (r *attrReader) u64(key string) uint64 {
	if r.err != nil {
		return 0
	}
	v, err := strconv.ParseUint(r.attrs[key], 10, 64)
	if err != nil {
		r.err = fmt.Errorf("attribute %s: %w", key, err)
	}
	return v
}

func (r *attrReader) u32(key string) uint32 {
	if r.err != nil {
		return 0
	}
	v, err := strconv.ParseUint(r.attrs[key], 10, 32)
	if err != nil {
		r.err = fmt.Errorf("attribute %s: %w", key, err)
	}
	return uint32(v)
}

func (r *attrReader) bool(key string) bool {
	if r.err != nil {
		return false
	}
	v, err := strconv.ParseBool(r.attrs[key])
	if err != nil {
		r.err = fmt.Errorf("attribute %s: %w", key, err)
	}
	return v
}

type EventSummon struct {
	Summoner string `json:"summoner"`
}

func (e *EventSummon) Encode() abci.Event {
	return abci.Event{
		Type: EventSummonType,
		Attributes: []abci.EventAttribute{
			{Key: "summoner", Value: e.Summoner, Index: true},
		},
	}
}

type EventApproval struct {
	Account string `json:"account"`
	Value   uint64 `json:"value"`
}

func (e *EventApproval) Encode() abci.Event {
	return abci.Event{
		Type: EventApprovalType,
		Attributes: []abci.EventAttribute{
			{Key: "account", Value: e.Account, Index: true},
			{Key: "value", Value: u64(e.Value), Index: false},
		},
	}
}

type EventDonate struct {
	Account string `json:"account"`
	Value   uint64 `json:"value"`
}

func (e *EventDonate) Encode() abci.Event {
	return abci.Event{
		Type: EventDonateType,
		Attributes: []abci.EventAttribute{
			{Key: "account", Value: e.Account, Index: true},
			{Key: "value", Value: u64(e.Value), Index: false},
		},
	}
}

type EventSubmitAccessProposal struct {
	Proposal          uint32 `json:"proposal"`
	Proposer          string `json:"proposer"`
	Applicant         string `json:"applicant"`
	EnergiesRequested uint64 `json:"energiesRequested"`
	Deposit           uint64 `json:"deposit"`
	StartingPeriod    uint64 `json:"startingPeriod"`
}

func (e *EventSubmitAccessProposal) Encode() abci.Event {
	return abci.Event{
		Type: EventSubmitAccessProposalType,
		Attributes: []abci.EventAttribute{
			{Key: "proposal", Value: u32(e.Proposal), Index: true},
			{Key: "proposer", Value: e.Proposer, Index: true},
			{Key: "applicant", Value: e.Applicant, Index: true},
			{Key: "energiesRequested", Value: u64(e.EnergiesRequested), Index: false},
			{Key: "deposit", Value: u64(e.Deposit), Index: false},
			{Key: "startingPeriod", Value: u64(e.StartingPeriod), Index: false},
		},
	}
}

func DecodeEventSubmitAccessProposal(originEvent abci.Event) (*EventSubmitAccessProposal, error) {
	r := attrReader{attrs: attributes(originEvent)}
	event := &EventSubmitAccessProposal{
		Proposal:          r.u32("proposal"),
		Proposer:          r.attrs["proposer"],
		Applicant:         r.attrs["applicant"],
		EnergiesRequested: r.u64("energiesRequested"),
		Deposit:           r.u64("deposit"),
		StartingPeriod:    r.u64("startingPeriod"),
	}
	return event, r.err
}

type EventSubmitProjectProposal struct {
	Proposal            uint32 `json:"proposal"`
	Proposer            string `json:"proposer"`
	Applicant           string `json:"applicant"`
	Milestone1Requested uint64 `json:"milestone1"`
	Milestone2Requested uint64 `json:"milestone2"`
	Milestone3Requested uint64 `json:"milestone3"`
	StartingPeriod      uint64 `json:"startingPeriod"`
}

func (e *EventSubmitProjectProposal) Encode() abci.Event {
	return abci.Event{
		Type: EventSubmitProjectProposalType,
		Attributes: []abci.EventAttribute{
			{Key: "proposal", Value: u32(e.Proposal), Index: true},
			{Key: "proposer", Value: e.Proposer, Index: true},
			{Key: "applicant", Value: e.Applicant, Index: true},
			{Key: "milestone1", Value: u64(e.Milestone1Requested), Index: false},
			{Key: "milestone2", Value: u64(e.Milestone2Requested), Index: false},
			{Key: "milestone3", Value: u64(e.Milestone3Requested), Index: false},
			{Key: "startingPeriod", Value: u64(e.StartingPeriod), Index: false},
		},
	}
}

func DecodeEventSubmitProjectProposal(originEvent abci.Event) (*EventSubmitProjectProposal, error) {
	r := attrReader{attrs: attributes(originEvent)}
	event := &EventSubmitProjectProposal{
		Proposal:            r.u32("proposal"),
		Proposer:            r.attrs["proposer"],
		Applicant:           r.attrs["applicant"],
		Milestone1Requested: r.u64("milestone1"),
		Milestone2Requested: r.u64("milestone2"),
		Milestone3Requested: r.u64("milestone3"),
		StartingPeriod:      r.u64("startingPeriod"),
	}
	return event, r.err
}

type EventForwardToMilestone struct {
	Sender         string        `json:"sender"`
	Proposal       uint32        `json:"proposal"`
	Status         ProjectStatus `json:"status"`
	Round          uint64        `json:"round"`
	StartingPeriod uint64        `json:"startingPeriod"`
}

func (e *EventForwardToMilestone) Encode() abci.Event {
	return abci.Event{
		Type: EventForwardToMilestoneType,
		Attributes: []abci.EventAttribute{
			{Key: "sender", Value: e.Sender, Index: false},
			{Key: "proposal", Value: u32(e.Proposal), Index: true},
			{Key: "status", Value: u64(uint64(e.Status)), Index: false},
			{Key: "round", Value: u64(e.Round), Index: false},
			{Key: "startingPeriod", Value: u64(e.StartingPeriod), Index: false},
		},
	}
}

func DecodeEventForwardToMilestone(originEvent abci.Event) (*EventForwardToMilestone, error) {
	r := attrReader{attrs: attributes(originEvent)}
	event := &EventForwardToMilestone{
		Sender:         r.attrs["sender"],
		Proposal:       r.u32("proposal"),
		Status:         ProjectStatus(r.u64("status")),
		Round:          r.u64("round"),
		StartingPeriod: r.u64("startingPeriod"),
	}
	return event, r.err
}

type EventAccessVote struct {
	Voter    string `json:"voter"`
	Proposal uint32 `json:"proposal"`
	Yes      bool   `json:"yes"`
	Energy   uint64 `json:"energy"`
}

func (e *EventAccessVote) Encode() abci.Event {
	return abci.Event{
		Type: EventAccessVoteType,
		Attributes: []abci.EventAttribute{
			{Key: "voter", Value: e.Voter, Index: true},
			{Key: "proposal", Value: u32(e.Proposal), Index: true},
			{Key: "yes", Value: strconv.FormatBool(e.Yes), Index: false},
			{Key: "energy", Value: u64(e.Energy), Index: false},
		},
	}
}

func DecodeEventAccessVote(originEvent abci.Event) (*EventAccessVote, error) {
	r := attrReader{attrs: attributes(originEvent)}
	event := &EventAccessVote{
		Voter:    r.attrs["voter"],
		Proposal: r.u32("proposal"),
		Yes:      r.bool("yes"),
		Energy:   r.u64("energy"),
	}
	return event, r.err
}

type EventProjectVote struct {
	Voter    string        `json:"voter"`
	Proposal uint32        `json:"proposal"`
	Status   ProjectStatus `json:"status"`
	Round    uint64        `json:"round"`
	Yes      bool          `json:"yes"`
	Energy   uint64        `json:"energy"`
}

func (e *EventProjectVote) Encode() abci.Event {
	return abci.Event{
		Type: EventProjectVoteType,
		Attributes: []abci.EventAttribute{
			{Key: "voter", Value: e.Voter, Index: true},
			{Key: "proposal", Value: u32(e.Proposal), Index: true},
			{Key: "status", Value: u64(uint64(e.Status)), Index: false},
			{Key: "round", Value: u64(e.Round), Index: false},
			{Key: "yes", Value: strconv.FormatBool(e.Yes), Index: false},
			{Key: "energy", Value: u64(e.Energy), Index: false},
		},
	}
}

func DecodeEventProjectVote(originEvent abci.Event) (*EventProjectVote, error) {
	r := attrReader{attrs: attributes(originEvent)}
	event := &EventProjectVote{
		Voter:    r.attrs["voter"],
		Proposal: r.u32("proposal"),
		Status:   ProjectStatus(r.u64("status")),
		Round:    r.u64("round"),
		Yes:      r.bool("yes"),
		Energy:   r.u64("energy"),
	}
	return event, r.err
}

type EventAccessAbort struct {
	Proposal uint32 `json:"proposal"`
	Refunded uint64 `json:"refunded"`
}

func (e *EventAccessAbort) Encode() abci.Event {
	return abci.Event{
		Type: EventAccessAbortType,
		Attributes: []abci.EventAttribute{
			{Key: "proposal", Value: u32(e.Proposal), Index: true},
			{Key: "refunded", Value: u64(e.Refunded), Index: false},
		},
	}
}

func DecodeEventAccessAbort(originEvent abci.Event) (*EventAccessAbort, error) {
	r := attrReader{attrs: attributes(originEvent)}
	event := &EventAccessAbort{
		Proposal: r.u32("proposal"),
		Refunded: r.u64("refunded"),
	}
	return event, r.err
}

type EventProjectAbort struct {
	Proposal uint32        `json:"proposal"`
	Status   ProjectStatus `json:"status"`
	Round    uint64        `json:"round"`
}

func (e *EventProjectAbort) Encode() abci.Event {
	return abci.Event{
		Type: EventProjectAbortType,
		Attributes: []abci.EventAttribute{
			{Key: "proposal", Value: u32(e.Proposal), Index: true},
			{Key: "status", Value: u64(uint64(e.Status)), Index: false},
			{Key: "round", Value: u64(e.Round), Index: false},
		},
	}
}

func DecodeEventProjectAbort(originEvent abci.Event) (*EventProjectAbort, error) {
	r := attrReader{attrs: attributes(originEvent)}
	event := &EventProjectAbort{
		Proposal: r.u32("proposal"),
		Status:   ProjectStatus(r.u64("status")),
		Round:    r.u64("round"),
	}
	return event, r.err
}

type EventRageQuit struct {
	Member   string `json:"member"`
	Energies uint64 `json:"energies"`
	Redeemed uint64 `json:"redeemed"`
}

func (e *EventRageQuit) Encode() abci.Event {
	return abci.Event{
		Type: EventRageQuitType,
		Attributes: []abci.EventAttribute{
			{Key: "member", Value: e.Member, Index: true},
			{Key: "energies", Value: u64(e.Energies), Index: false},
			{Key: "redeemed", Value: u64(e.Redeemed), Index: false},
		},
	}
}

type EventNewMember struct {
	Member   string `json:"member"`
	Energies uint64 `json:"energies"`
}

func (e *EventNewMember) Encode() abci.Event {
	return abci.Event{
		Type: EventNewMemberType,
		Attributes: []abci.EventAttribute{
			{Key: "member", Value: e.Member, Index: true},
			{Key: "energies", Value: u64(e.Energies), Index: false},
		},
	}
}

func DecodeEventNewMember(originEvent abci.Event) (*EventNewMember, error) {
	r := attrReader{attrs: attributes(originEvent)}
	event := &EventNewMember{
		Member:   r.attrs["member"],
		Energies: r.u64("energies"),
	}
	return event, r.err
}

type EventProcessAccessProposal struct {
	Proposal          uint32 `json:"proposal"`
	Proposer          string `json:"proposer"`
	Applicant         string `json:"applicant"`
	Deposit           uint64 `json:"deposit"`
	EnergiesRequested uint64 `json:"energiesRequested"`
	DidPass           bool   `json:"didPass"`
}

func (e *EventProcessAccessProposal) Encode() abci.Event {
	return abci.Event{
		Type: EventProcessAccessProposalType,
		Attributes: []abci.EventAttribute{
			{Key: "proposal", Value: u32(e.Proposal), Index: true},
			{Key: "proposer", Value: e.Proposer, Index: false},
			{Key: "applicant", Value: e.Applicant, Index: true},
			{Key: "deposit", Value: u64(e.Deposit), Index: false},
			{Key: "energiesRequested", Value: u64(e.EnergiesRequested), Index: false},
			{Key: "didPass", Value: strconv.FormatBool(e.DidPass), Index: false},
		},
	}
}

func DecodeEventProcessAccessProposal(originEvent abci.Event) (*EventProcessAccessProposal, error) {
	r := attrReader{attrs: attributes(originEvent)}
	event := &EventProcessAccessProposal{
		Proposal:          r.u32("proposal"),
		Proposer:          r.attrs["proposer"],
		Applicant:         r.attrs["applicant"],
		Deposit:           r.u64("deposit"),
		EnergiesRequested: r.u64("energiesRequested"),
		DidPass:           r.bool("didPass"),
	}
	return event, r.err
}

type EventProcessProjectProposal struct {
	Proposal  uint32        `json:"proposal"`
	Proposer  string        `json:"proposer"`
	Applicant string        `json:"applicant"`
	Status    ProjectStatus `json:"status"`
	Round     uint64        `json:"round"`
	Passed    bool          `json:"passed"`
	Grant     uint64        `json:"grant"`
	Phase     ProjectPhase  `json:"phase"`
}

func (e *EventProcessProjectProposal) Encode() abci.Event {
	return abci.Event{
		Type: EventProcessProjectProposalType,
		Attributes: []abci.EventAttribute{
			{Key: "proposal", Value: u32(e.Proposal), Index: true},
			{Key: "proposer", Value: e.Proposer, Index: false},
			{Key: "applicant", Value: e.Applicant, Index: true},
			{Key: "status", Value: u64(uint64(e.Status)), Index: false},
			{Key: "round", Value: u64(e.Round), Index: false},
			{Key: "passed", Value: strconv.FormatBool(e.Passed), Index: false},
			{Key: "grant", Value: u64(e.Grant), Index: false},
			{Key: "phase", Value: u64(uint64(e.Phase)), Index: false},
		},
	}
}

func DecodeEventProcessProjectProposal(originEvent abci.Event) (*EventProcessProjectProposal, error) {
	r := attrReader{attrs: attributes(originEvent)}
	event := &EventProcessProjectProposal{
		Proposal:  r.u32("proposal"),
		Proposer:  r.attrs["proposer"],
		Applicant: r.attrs["applicant"],
		Status:    ProjectStatus(r.u64("status")),
		Round:     r.u64("round"),
		Passed:    r.bool("passed"),
		Grant:     r.u64("grant"),
		Phase:     ProjectPhase(r.u64("phase")),
	}
	return event, r.err
}
