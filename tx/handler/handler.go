package handler

import (
	"context"
	"fmt"

	"github.com/calehh/hac-dao/state"
	"github.com/calehh/hac-dao/tx"
	"github.com/calehh/hac-dao/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

// TxHandler applies one family of DAO calls. sender is the address already
// authenticated from the tx envelope.
type TxHandler interface {
	Check(ctx context.Context, st *state.State, sender string, btx *tx.DAOTx) (res *abcitypes.ResponseCheckTx, err error)
	Prepare(ctx context.Context, st *state.State, sender string, btx *tx.DAOTx) (res *abcitypes.ExecTxResult, err error)
	Process(ctx context.Context, st *state.State, sender string, btx *tx.DAOTx) (res *abcitypes.ExecTxResult, err error)
}

type applyFunc func(st *state.State, sender string, btx *tx.DAOTx) (types.Event, error)

// baseHandler turns the outcome of a ledger call into an ABCI result. A
// rejected call is a failed tx, anything else aborts the block.
type baseHandler struct {
	logger cmtlog.Logger
	apply  applyFunc
}

func (h *baseHandler) handle(st *state.State, sender string, btx *tx.DAOTx) (res *abcitypes.ExecTxResult, err error) {
	res = &abcitypes.ExecTxResult{}
	event, err := h.apply(st, sender, btx)
	if err != nil {
		kind := state.Kind(err)
		if kind == state.KindUnknown || kind == state.KindInvariant {
			h.logger.Error("apply tx fail", "type", btx.Type, "sender", sender, "err", err)
			return nil, err
		}
		h.logger.Debug("tx rejected", "type", btx.Type, "sender", sender, "kind", kind, "err", err)
		res.Code = uint32(kind)
		res.Codespace = types.DAOModuleName
		res.Log = err.Error()
		return res, nil
	}
	h.logger.Debug("tx applied", "type", btx.Type, "sender", sender)
	if event != nil {
		res.Events = []abcitypes.Event{event.Encode()}
	}
	return
}

func (h *baseHandler) Check(ctx context.Context, st *state.State, sender string, btx *tx.DAOTx) (res *abcitypes.ResponseCheckTx, err error) {
	res = &abcitypes.ResponseCheckTx{Code: 0}
	result, err1 := h.handle(st.Clone(), sender, btx)
	if err1 != nil {
		h.logger.Info("CheckTx fail", "type", btx.Type, "err", err1)
		res.Code = uint32(state.KindUnknown)
		res.Log = err1.Error()
		return
	}
	res.Code = result.Code
	res.Codespace = result.Codespace
	res.Log = result.Log
	return
}

func (h *baseHandler) Prepare(ctx context.Context, st *state.State, sender string, btx *tx.DAOTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(st, sender, btx)
}

func (h *baseHandler) Process(ctx context.Context, st *state.State, sender string, btx *tx.DAOTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(st, sender, btx)
}

func payload[T any](btx *tx.DAOTx) (*T, error) {
	p, ok := btx.Tx.(*T)
	if !ok {
		return nil, fmt.Errorf("%w: %s carries %T", tx.ErrUnmatchedTxType, btx.Type, btx.Tx)
	}
	return p, nil
}

// event drops the typed nil a failed ledger call returns.
func event[E types.Event](ev E, err error) (types.Event, error) {
	if err != nil {
		return nil, err
	}
	return ev, nil
}

// Handlers returns the handler of every tx type.
func Handlers(logger cmtlog.Logger) map[tx.DAOTxType]TxHandler {
	member := NewMemberTxHandler(logger)
	access := NewAccessTxHandler(logger)
	project := NewProjectTxHandler(logger)
	return map[tx.DAOTxType]TxHandler{
		tx.DAOTxTypeSummon:          member,
		tx.DAOTxTypeApprove:         member,
		tx.DAOTxTypeDonate:          member,
		tx.DAOTxTypeRageQuit:        member,
		tx.DAOTxTypeAccessProposal:  access,
		tx.DAOTxTypeAccessVote:      access,
		tx.DAOTxTypeAbortAccess:     access,
		tx.DAOTxTypeProjectProposal: project,
		tx.DAOTxTypeProjectVote:     project,
		tx.DAOTxTypeForward:         project,
		tx.DAOTxTypeAbortProject:    project,
	}
}
