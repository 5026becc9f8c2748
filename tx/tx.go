package tx

import (
	"encoding/json"
	"fmt"
)

// DAOTx is the signed envelope of every DAO call. Sig covers the JSON
// encoding of the envelope with Sig replaced by the chain id.
type DAOTx struct {
	Version uint8     `json:"version"`
	Type    DAOTxType `json:"type"`
	Nonce   uint64    `json:"nonce"`
	PubKey  []byte    `json:"pubKey"`
	Tx      any       `json:"tx"`
	Sig     [][]byte  `json:"sig"`
}

type SummonTx struct{}

type ApproveTx struct {
	Value uint64 `json:"value"`
}

type DonateTx struct {
	Value uint64 `json:"value"`
}

type AccessProposalTx struct {
	Applicant         string `json:"applicant"`
	Deposit           uint64 `json:"deposit"`
	EnergiesRequested uint64 `json:"energiesRequested"`
	Detail            []byte `json:"detail"`
}

type ProjectProposalTx struct {
	Applicant  string `json:"applicant"`
	Milestone1 uint64 `json:"milestone1"`
	Milestone2 uint64 `json:"milestone2"`
	Milestone3 uint64 `json:"milestone3"`
	Detail     []byte `json:"detail"`
}

type ForwardTx struct {
	Proposal uint32 `json:"proposal"`
}

type AccessVoteTx struct {
	Proposal uint32 `json:"proposal"`
	Yes      bool   `json:"yes"`
}

type ProjectVoteTx struct {
	Proposal uint32 `json:"proposal"`
	Yes      bool   `json:"yes"`
}

type AbortAccessTx struct {
	Proposal uint32 `json:"proposal"`
}

type AbortProjectTx struct {
	Proposal uint32 `json:"proposal"`
}

type RageQuitTx struct {
	Energies uint64 `json:"energies"`
}

type daoTxTmpl[Tx any] struct {
	Version uint8     `json:"version"`
	Type    DAOTxType `json:"type"`
	Nonce   uint64    `json:"nonce"`
	PubKey  []byte    `json:"pubKey"`
	Tx      Tx        `json:"tx"`
	Sig     [][]byte  `json:"sig"`
}

func (tx *DAOTx) SigData(ext []byte) (dat []byte, err error) {
	ntx := *tx
	ntx.Sig = [][]byte{ext}
	dat, err = json.Marshal(ntx)
	return
}

// TypeOf returns the tx type matching a payload.
func TypeOf(payload any) DAOTxType {
	switch payload.(type) {
	case *SummonTx:
		return DAOTxTypeSummon
	case *ApproveTx:
		return DAOTxTypeApprove
	case *DonateTx:
		return DAOTxTypeDonate
	case *AccessProposalTx:
		return DAOTxTypeAccessProposal
	case *ProjectProposalTx:
		return DAOTxTypeProjectProposal
	case *ForwardTx:
		return DAOTxTypeForward
	case *AccessVoteTx:
		return DAOTxTypeAccessVote
	case *ProjectVoteTx:
		return DAOTxTypeProjectVote
	case *AbortAccessTx:
		return DAOTxTypeAbortAccess
	case *AbortProjectTx:
		return DAOTxTypeAbortProject
	case *RageQuitTx:
		return DAOTxTypeRageQuit
	}
	return DAOTxTypeUnknown
}

func parseDAOTxType(dat []byte) DAOTxType {
	var tx struct {
		Type DAOTxType `json:"type"`
	}
	err := json.Unmarshal(dat, &tx)
	if err != nil {
		return DAOTxTypeUnknown
	}
	return tx.Type
}

func unmarshalDAOTx[Tx any](dat []byte) (btx *DAOTx, err error) {
	var txt daoTxTmpl[Tx]
	err = json.Unmarshal(dat, &txt)
	if err != nil {
		return
	}
	if txt.Version != DAOTxVersion0 {
		err = ErrUnsupportedTxVersion
		return
	}
	btx = new(DAOTx)
	btx.Version = txt.Version
	btx.Type = txt.Type
	btx.Nonce = txt.Nonce
	btx.PubKey = txt.PubKey
	btx.Tx = &txt.Tx
	btx.Sig = txt.Sig
	return
}

func UnmarshalDAOTx(dat []byte) (btx *DAOTx, err error) {
	tp := parseDAOTxType(dat)
	switch tp {
	case DAOTxTypeSummon:
		return unmarshalDAOTx[SummonTx](dat)
	case DAOTxTypeApprove:
		return unmarshalDAOTx[ApproveTx](dat)
	case DAOTxTypeDonate:
		return unmarshalDAOTx[DonateTx](dat)
	case DAOTxTypeAccessProposal:
		return unmarshalDAOTx[AccessProposalTx](dat)
	case DAOTxTypeProjectProposal:
		return unmarshalDAOTx[ProjectProposalTx](dat)
	case DAOTxTypeForward:
		return unmarshalDAOTx[ForwardTx](dat)
	case DAOTxTypeAccessVote:
		return unmarshalDAOTx[AccessVoteTx](dat)
	case DAOTxTypeProjectVote:
		return unmarshalDAOTx[ProjectVoteTx](dat)
	case DAOTxTypeAbortAccess:
		return unmarshalDAOTx[AbortAccessTx](dat)
	case DAOTxTypeAbortProject:
		return unmarshalDAOTx[AbortProjectTx](dat)
	case DAOTxTypeRageQuit:
		return unmarshalDAOTx[RageQuitTx](dat)
	default:
		err = fmt.Errorf("%w: %d", ErrUnsupportedTxType, tp)
	}
	return
}

func MarshalDAOTx(btx *DAOTx) (dat []byte, err error) {
	return json.Marshal(btx)
}

// NewDAOTx wraps a payload into an unsigned envelope.
func NewDAOTx(payload any, nonce uint64, pubKey []byte) *DAOTx {
	return &DAOTx{
		Version: DAOTxVersion0,
		Type:    TypeOf(payload),
		Nonce:   nonce,
		PubKey:  pubKey,
		Tx:      payload,
	}
}
