package indexer

// sqlite models

type Height struct {
	Id     uint64 `gorm:"primary_key" json:"id"`
	Height uint64 `json:"height"`
}

// AccessProposal rows are keyed by the ledger index in Proposal; Id is the
// sqlite row id.
type AccessProposal struct {
	Id                uint64 `gorm:"primary_key" json:"-"`
	Proposal          uint32 `gorm:"unique_index" json:"proposal"`
	Proposer          string `gorm:"index" json:"proposer"`
	Applicant         string `gorm:"index" json:"applicant"`
	EnergiesRequested uint64 `json:"energies_requested"`
	Deposit           uint64 `json:"deposit"`
	StartingPeriod    uint64 `json:"starting_period"`
	SubmitHeight      uint64 `json:"submit_height"`
	SettleHeight      uint64 `json:"settle_height"`
	Processed         bool   `json:"processed"`
	DidPass           bool   `json:"did_pass"`
	Aborted           bool   `json:"aborted"`
}

type ProjectProposal struct {
	Id                  uint64 `gorm:"primary_key" json:"-"`
	Proposal            uint32 `gorm:"unique_index" json:"proposal"`
	Proposer            string `gorm:"index" json:"proposer"`
	Applicant           string `gorm:"index" json:"applicant"`
	Milestone1Requested uint64 `json:"milestone_1_requested"`
	Milestone2Requested uint64 `json:"milestone_2_requested"`
	Milestone3Requested uint64 `json:"milestone_3_requested"`
	StartingPeriod      uint64 `json:"starting_period"`
	Status              uint8  `json:"status"`
	Round               uint64 `json:"round"`
	Phase               uint8  `json:"phase"`
	Granted             uint64 `json:"granted"`
	SubmitHeight        uint64 `json:"submit_height"`
}

// ProjectRound is one settled voting round of a project.
type ProjectRound struct {
	Id       uint64 `gorm:"primary_key" json:"id"`
	Proposal uint32 `gorm:"index" json:"proposal"`
	Status   uint8  `json:"status"`
	Round    uint64 `json:"round"`
	Passed   bool   `json:"passed"`
	Grant    uint64 `json:"grant"`
	Height   uint64 `json:"height"`
}

const (
	VoteKindAccess  = "access"
	VoteKindProject = "project"
)

type Vote struct {
	Id       uint64 `gorm:"primary_key" json:"id"`
	Kind     string `gorm:"index" json:"kind"`
	Proposal uint32 `gorm:"index" json:"proposal"`
	Voter    string `gorm:"index" json:"voter"`
	Status   uint8  `json:"status"`
	Round    uint64 `json:"round"`
	Yes      bool   `json:"yes"`
	Energy   uint64 `json:"energy"`
	Height   uint64 `json:"height"`
}
