package handler

import (
	"github.com/calehh/hac-dao/state"
	"github.com/calehh/hac-dao/tx"
	"github.com/calehh/hac-dao/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

type MemberTxHandler struct {
	baseHandler
}

func NewMemberTxHandler(logger cmtlog.Logger) (h *MemberTxHandler) {
	h = &MemberTxHandler{}
	h.logger = logger.With("module", "memberTx")
	h.apply = h.applyTx
	return
}

func (h *MemberTxHandler) applyTx(st *state.State, sender string, btx *tx.DAOTx) (types.Event, error) {
	switch btx.Type {
	case tx.DAOTxTypeSummon:
		return event(st.Summon(sender))
	case tx.DAOTxTypeApprove:
		p, err := payload[tx.ApproveTx](btx)
		if err != nil {
			return nil, err
		}
		return event(st.ApplicantApprove(sender, p.Value))
	case tx.DAOTxTypeDonate:
		p, err := payload[tx.DonateTx](btx)
		if err != nil {
			return nil, err
		}
		return event(st.Donate(sender, p.Value))
	case tx.DAOTxTypeRageQuit:
		p, err := payload[tx.RageQuitTx](btx)
		if err != nil {
			return nil, err
		}
		return event(st.RageQuit(sender, p.Energies))
	}
	return nil, tx.ErrUnmatchedTxType
}
