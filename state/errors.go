package state

import "errors"

// ErrorKind classifies failures for diagnostics and ABCI result codes.
type ErrorKind uint32

const (
	KindUnknown    ErrorKind = 1
	KindValidation ErrorKind = 2
	KindArithmetic ErrorKind = 3
	KindTerminal   ErrorKind = 4
	KindInvariant  ErrorKind = 5
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindArithmetic:
		return "arithmetic"
	case KindTerminal:
		return "terminal"
	case KindInvariant:
		return "invariant"
	}
	return "unknown"
}

type daoError struct {
	kind ErrorKind
	msg  string
}

func (e *daoError) Error() string { return e.msg }

func validation(msg string) error { return &daoError{kind: KindValidation, msg: msg} }
func arithmetic(msg string) error { return &daoError{kind: KindArithmetic, msg: msg} }

var (
	ErrAlreadySummoned         = validation("dao has been summoned")
	ErrNotSummoned             = validation("dao has not been summoned")
	ErrSenderNotSet            = validation("sender is not set")
	ErrNotMember               = validation("sender is not a member")
	ErrMemberNoexists          = validation("member noexists")
	ErrApplicantNotSet         = validation("applicant is not set")
	ErrAllowanceNotEnough      = validation("allowance of the applicant is not enough")
	ErrAccessProposalNoexists  = validation("access proposal noexists")
	ErrProjectProposalNoexists = validation("project proposal noexists")
	ErrNotInVotingPeriod       = validation("not in voting period")
	ErrProposalAborted         = validation("proposal has been aborted")
	ErrProposalProcessed       = validation("proposal has been processed")
	ErrAlreadyVoted            = validation("already voted")
	ErrNotApplicant            = validation("sender is not the applicant")
	ErrAbortWindowPassed       = validation("abort window has passed")
	ErrProjectNotProcessed     = validation("project round is not processed")
	ErrProjectInactive         = validation("project is not active")
	ErrZeroEnergies            = validation("energies to burn must be positive")
	ErrEnergyNotEnough         = validation("energy is not enough")
	ErrPendingYesVote          = validation("highest proposal voted yes on is not processed")
	ErrInsufficientBalance     = validation("insufficient balance")
	ErrAccountNoexists         = validation("account noexists")
	ErrQueueEmpty              = validation("process queue is empty")
	ErrTxNonceInvalid          = validation("nonce invalid")
	ErrTxSigInvalid            = validation("signature invalid")

	ErrOverflow             = arithmetic("arithmetic overflow")
	ErrUnderflow            = arithmetic("arithmetic underflow")
	ErrInsufficientFreePool = arithmetic("free pool is insufficient")

	ErrProjectDone = &daoError{kind: KindTerminal, msg: "project is completely done"}

	ErrInvariantBroken = &daoError{kind: KindInvariant, msg: "ledger invariant broken"}
)

// Kind reports the kind of err, looking through wrapping.
func Kind(err error) ErrorKind {
	var de *daoError
	if errors.As(err, &de) {
		return de.kind
	}
	return KindUnknown
}
