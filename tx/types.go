package tx

import (
	"errors"
)

type DAOTxType uint8

const (
	DAOTxTypeUnknown         DAOTxType = 0
	DAOTxTypeSummon          DAOTxType = 1
	DAOTxTypeApprove         DAOTxType = 2
	DAOTxTypeDonate          DAOTxType = 3
	DAOTxTypeAccessProposal  DAOTxType = 4
	DAOTxTypeProjectProposal DAOTxType = 5
	DAOTxTypeForward         DAOTxType = 6
	DAOTxTypeAccessVote      DAOTxType = 7
	DAOTxTypeProjectVote     DAOTxType = 8
	DAOTxTypeAbortAccess     DAOTxType = 9
	DAOTxTypeAbortProject    DAOTxType = 10
	DAOTxTypeRageQuit        DAOTxType = 11
)

func (t DAOTxType) String() string {
	switch t {
	case DAOTxTypeSummon:
		return "summon"
	case DAOTxTypeApprove:
		return "approve"
	case DAOTxTypeDonate:
		return "donate"
	case DAOTxTypeAccessProposal:
		return "access_proposal"
	case DAOTxTypeProjectProposal:
		return "project_proposal"
	case DAOTxTypeForward:
		return "forward"
	case DAOTxTypeAccessVote:
		return "access_vote"
	case DAOTxTypeProjectVote:
		return "project_vote"
	case DAOTxTypeAbortAccess:
		return "abort_access"
	case DAOTxTypeAbortProject:
		return "abort_project"
	case DAOTxTypeRageQuit:
		return "rage_quit"
	}
	return "unknown"
}

const (
	DAOTxVersion0 uint8 = 0
)

var (
	ErrInvalidTx            = errors.New("invalid tx")
	ErrUnsupportedTxType    = errors.New("unsupported tx type")
	ErrUnmatchedTxType      = errors.New("unmatched tx type")
	ErrUnsupportedTxVersion = errors.New("unsupported tx version")
)
