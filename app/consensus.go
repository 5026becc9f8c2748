package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/calehh/hac-dao/state"
	"github.com/calehh/hac-dao/tx"
	"github.com/calehh/hac-dao/tx/handler"
	abcitypes "github.com/cometbft/cometbft/abci/types"
)

var (
	ErrUnexpectedTxProcess = errors.New("unexpected tx process")
	ErrNoHandler           = errors.New("no handler for tx type")
)

// CodeInvalidTx marks txs that could not be decoded or authenticated.
const CodeInvalidTx uint32 = 100

func momentOf(t time.Time) uint64 {
	if t.Unix() < 0 {
		return 0
	}
	return uint64(t.Unix())
}

func (app *DAOApp) getState() (st *state.State) {
	st = app.db.NewState()
	return
}

// parseTx decodes txDat and authenticates it against st.
func (app *DAOApp) parseTx(st *state.State, txDat []byte, allowNonceGap bool) (btx *tx.DAOTx, sender string, h handler.TxHandler, err error) {
	btx, err = tx.UnmarshalDAOTx(txDat)
	if err != nil {
		return
	}
	var ok bool
	if h, ok = app.txHdlrs[btx.Type]; !ok {
		err = fmt.Errorf("%w: %s", ErrNoHandler, btx.Type)
		return
	}
	sender, err = st.Verify(btx, allowNonceGap)
	return
}

// beginBlock advances the ledger to the block time and runs the scheduler tick.
func (app *DAOApp) beginBlock(st *state.State, blkTime time.Time) ([]abcitypes.Event, error) {
	st.SetMoment(momentOf(blkTime))
	events, err := st.OnPeriodAdvance()
	if err != nil {
		app.logger.Error("period advance fail", "moment", st.Moment(), "err", err)
		return nil, err
	}
	res := make([]abcitypes.Event, 0, len(events))
	for _, ev := range events {
		res = append(res, ev.Encode())
	}
	if len(events) != 0 {
		app.logger.Debug("period advanced", "period", st.CurrentPeriod(), "events", len(events))
	}
	return res, nil
}

func (app *DAOApp) CheckTx(ctx context.Context, check *abcitypes.RequestCheckTx) (res *abcitypes.ResponseCheckTx, err error) {
	res = &abcitypes.ResponseCheckTx{Code: 0}
	st := app.db.State()
	btx, sender, h, err := app.parseTx(st, check.Tx, true)
	if err != nil {
		app.logger.Info("check tx parse fail", "err", err)
		res.Code = CodeInvalidTx
		res.Log = err.Error()
		err = nil
		return
	}
	app.logger.Debug("check tx", "type", btx.Type, "sender", sender)
	res, err = h.Check(ctx, st, sender, btx)
	if err != nil {
		app.logger.Error("check tx fail", "err", err)
		res = &abcitypes.ResponseCheckTx{Code: CodeInvalidTx, Log: err.Error()}
		err = nil
	}
	return
}

func (app *DAOApp) PrepareProposal(ctx context.Context, proposal *abcitypes.RequestPrepareProposal) (res *abcitypes.ResponsePrepareProposal, err error) {
	app.logger.Info("PrepareProposal", "height", proposal.Height, "txs", len(proposal.Txs))
	st := app.getState()
	if _, err = app.beginBlock(st, proposal.Time); err != nil {
		return nil, err
	}
	txs := make([][]byte, 0, len(proposal.Txs))
	var size int64
	for _, stx := range proposal.Txs {
		if size+int64(len(stx)) > proposal.MaxTxBytes {
			break
		}
		stTmp := st.Clone()
		btx, sender, h, err := app.parseTx(stTmp, stx, false)
		if err != nil {
			app.logger.Info("drop tx, parse fail", "err", err)
			continue
		}
		if err = stTmp.IncNonce(sender); err != nil {
			return nil, err
		}
		result, err := h.Prepare(ctx, stTmp, sender, btx)
		if err != nil {
			app.logger.Error("prepare tx fail", "type", btx.Type, "err", err)
			continue
		}
		if result.Code != 0 {
			app.logger.Info("drop tx, rejected", "type", btx.Type, "code", result.Code, "log", result.Log)
			continue
		}
		st = stTmp
		size += int64(len(stx))
		txs = append(txs, stx)
	}
	return &abcitypes.ResponsePrepareProposal{Txs: txs}, nil
}

// execute applies txs in order. A tx that fails authentication or is
// rejected by the ledger still occupies its slot with a non-zero code.
func (app *DAOApp) execute(ctx context.Context, st *state.State, txs [][]byte, strict bool) (res []*abcitypes.ExecTxResult, err error) {
	res = make([]*abcitypes.ExecTxResult, len(txs))
	for i, stx := range txs {
		btx, sender, h, err := app.parseTx(st, stx, false)
		if err != nil {
			if strict {
				return nil, err
			}
			app.logger.Info("invalid tx in block", "index", i, "err", err)
			res[i] = &abcitypes.ExecTxResult{Code: CodeInvalidTx, Log: err.Error()}
			continue
		}
		if err = st.IncNonce(sender); err != nil {
			return nil, err
		}
		result, err := h.Process(ctx, st, sender, btx)
		if err != nil {
			app.logger.Error("unexpected process tx fail", "type", btx.Type, "err", err)
			return nil, fmt.Errorf("%w: %v", ErrUnexpectedTxProcess, err)
		}
		res[i] = result
	}
	return
}

func (app *DAOApp) ProcessProposal(ctx context.Context, proposal *abcitypes.RequestProcessProposal) (res *abcitypes.ResponseProcessProposal, err error) {
	app.logger.Info("ProcessProposal", "height", proposal.Height, "txs", len(proposal.Txs))
	res = &abcitypes.ResponseProcessProposal{Status: abcitypes.ResponseProcessProposal_REJECT}
	st := app.getState()
	if _, err = app.beginBlock(st, proposal.Time); err != nil {
		return nil, err
	}
	_, err = app.execute(ctx, st, proposal.Txs, true)
	if err != nil {
		app.logger.Error("process fail", "err", err)
		return res, nil
	}
	res.Status = abcitypes.ResponseProcessProposal_ACCEPT
	app.logger.Info("proposal accepted", "height", proposal.Height)
	return res, nil
}

func (app *DAOApp) FinalizeBlock(ctx context.Context, req *abcitypes.RequestFinalizeBlock) (*abcitypes.ResponseFinalizeBlock, error) {
	app.logger.Info("FinalizeBlock", "height", req.Height, "txs", len(req.Txs))
	app.lastBlk.Set(req)
	st := app.getState()
	events, err := app.beginBlock(st, req.Time)
	if err != nil {
		return nil, err
	}
	res, err := app.execute(ctx, st, req.Txs, false)
	if err != nil {
		return nil, err
	}
	if err = st.CheckLedger(); err != nil {
		app.logger.Error("ledger invariant broken", "height", req.Height, "err", err)
		return nil, err
	}
	h, err := st.Update()
	if err != nil {
		app.logger.Error("state update hash fail", "err", err)
		return nil, err
	}
	app.st = st
	return &abcitypes.ResponseFinalizeBlock{
		TxResults: res,
		AppHash:   h.Bytes(),
		Events:    events,
	}, nil
}

func (app *DAOApp) Commit(ctx context.Context, commit *abcitypes.RequestCommit) (*abcitypes.ResponseCommit, error) {
	if app.st == nil {
		return nil, ErrUnexpectedTxProcess
	}
	_, err := app.db.SetState(app.st)
	if err != nil {
		return nil, err
	}
	app.st = nil
	app.logger.Info("Commit", "height", app.lastBlk.Height, "blockHash", app.lastBlk.Hash)
	return &abcitypes.ResponseCommit{}, nil
}
