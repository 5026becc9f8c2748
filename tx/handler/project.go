package handler

import (
	"github.com/calehh/hac-dao/state"
	"github.com/calehh/hac-dao/tx"
	"github.com/calehh/hac-dao/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

type ProjectTxHandler struct {
	baseHandler
}

func NewProjectTxHandler(logger cmtlog.Logger) (h *ProjectTxHandler) {
	h = &ProjectTxHandler{}
	h.logger = logger.With("module", "projectTx")
	h.apply = h.applyTx
	return
}

func (h *ProjectTxHandler) applyTx(st *state.State, sender string, btx *tx.DAOTx) (types.Event, error) {
	switch btx.Type {
	case tx.DAOTxTypeProjectProposal:
		p, err := payload[tx.ProjectProposalTx](btx)
		if err != nil {
			return nil, err
		}
		return event(st.SubmitProjectProposal(sender, state.ProjectProposalArgs{
			Applicant:           p.Applicant,
			Milestone1Requested: p.Milestone1,
			Milestone2Requested: p.Milestone2,
			Milestone3Requested: p.Milestone3,
			Detail:              p.Detail,
		}))
	case tx.DAOTxTypeProjectVote:
		p, err := payload[tx.ProjectVoteTx](btx)
		if err != nil {
			return nil, err
		}
		return event(st.SubmitProjectVote(sender, p.Proposal, p.Yes))
	case tx.DAOTxTypeForward:
		p, err := payload[tx.ForwardTx](btx)
		if err != nil {
			return nil, err
		}
		return event(st.ForwardToMilestone(sender, p.Proposal))
	case tx.DAOTxTypeAbortProject:
		p, err := payload[tx.AbortProjectTx](btx)
		if err != nil {
			return nil, err
		}
		return event(st.AbortProject(sender, p.Proposal))
	}
	return nil, tx.ErrUnmatchedTxType
}
