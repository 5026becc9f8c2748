package handler

import (
	"github.com/calehh/hac-dao/state"
	"github.com/calehh/hac-dao/tx"
	"github.com/calehh/hac-dao/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

type AccessTxHandler struct {
	baseHandler
}

func NewAccessTxHandler(logger cmtlog.Logger) (h *AccessTxHandler) {
	h = &AccessTxHandler{}
	h.logger = logger.With("module", "accessTx")
	h.apply = h.applyTx
	return
}

func (h *AccessTxHandler) applyTx(st *state.State, sender string, btx *tx.DAOTx) (types.Event, error) {
	switch btx.Type {
	case tx.DAOTxTypeAccessProposal:
		p, err := payload[tx.AccessProposalTx](btx)
		if err != nil {
			return nil, err
		}
		return event(st.SubmitAccessProposal(sender, state.AccessProposalArgs{
			Applicant:         p.Applicant,
			Deposit:           p.Deposit,
			EnergiesRequested: p.EnergiesRequested,
			Detail:            p.Detail,
		}))
	case tx.DAOTxTypeAccessVote:
		p, err := payload[tx.AccessVoteTx](btx)
		if err != nil {
			return nil, err
		}
		return event(st.SubmitAccessVote(sender, p.Proposal, p.Yes))
	case tx.DAOTxTypeAbortAccess:
		p, err := payload[tx.AbortAccessTx](btx)
		if err != nil {
			return nil, err
		}
		return event(st.AbortAccess(sender, p.Proposal))
	}
	return nil, tx.ErrUnmatchedTxType
}
