package app

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/calehh/hac-dao/state"
	"github.com/calehh/hac-dao/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

const (
	CodeQueryFail     uint32 = 1
	CodeQueryNotFound uint32 = 404
)

func (app *DAOApp) Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	path := req.Path
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	q, ok := app.queriers[path]
	if !ok {
		res = &abcitypes.ResponseQuery{}
		res.Code = CodeQueryNotFound
		return
	}
	res, err = q.Query(ctx, req)
	return
}

type Querier interface {
	Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error)
}

type querierFunc func(data []byte) (value any, height uint64, err error)

// jsonQuerier answers a query with the JSON encoding of a ledger read.
type jsonQuerier struct {
	logger cmtlog.Logger
	read   querierFunc
}

func (q *jsonQuerier) Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	res = &abcitypes.ResponseQuery{}
	value, height, err := q.read(req.Data)
	if err != nil {
		q.logger.Debug("query fail", "path", req.Path, "err", err)
		res.Code = CodeQueryFail
		if errors.Is(err, state.ErrAccessProposalNoexists) || errors.Is(err, state.ErrProjectProposalNoexists) || errors.Is(err, state.ErrMemberNoexists) {
			res.Code = CodeQueryNotFound
		}
		res.Log = err.Error()
		return res, nil
	}
	res.Height = int64(height)
	res.Value, err = json.Marshal(value)
	return
}

func newJSONQuerier(logger cmtlog.Logger, path string, read querierFunc) *jsonQuerier {
	return &jsonQuerier{logger: logger.With("querier", path), read: read}
}

func parseIndex(data []byte) (uint32, error) {
	v, err := strconv.ParseUint(string(data), 10, 32)
	return uint32(v), err
}

// LedgerView is the scalar part of the ledger returned by /pools/.
type LedgerView struct {
	Height        uint64       `json:"height"`
	Moment        uint64       `json:"moment"`
	CurrentPeriod uint64       `json:"current_period"`
	Params        types.Params `json:"params"`
	Ledger        types.Ledger `json:"ledger"`
}

func NewLedgerQuerier(db *state.StateDB, logger cmtlog.Logger) Querier {
	return newJSONQuerier(logger, "pools", func([]byte) (any, uint64, error) {
		st := db.State()
		h := st.Header()
		return &LedgerView{
			Height:        h.Height,
			Moment:        h.Moment,
			CurrentPeriod: st.CurrentPeriod(),
			Params:        h.Params,
			Ledger:        h.Ledger,
		}, h.Height, nil
	})
}

// NewMemberQuerier returns one member for an address, or the whole roster
// when no address is given.
func NewMemberQuerier(db *state.StateDB, logger cmtlog.Logger) Querier {
	return newJSONQuerier(logger, "members", func(data []byte) (any, uint64, error) {
		if len(data) == 0 {
			return db.Members()
		}
		m, height, err := db.GetMember(string(data))
		if err != nil {
			return nil, 0, err
		}
		if m == nil {
			return nil, 0, state.ErrMemberNoexists
		}
		return m, height, nil
	})
}

func NewAccessQuerier(db *state.StateDB, logger cmtlog.Logger) Querier {
	return newJSONQuerier(logger, "access", func(data []byte) (any, uint64, error) {
		idx, err := parseIndex(data)
		if err != nil {
			return nil, 0, err
		}
		return db.GetAccessProposal(idx)
	})
}

func NewProjectQuerier(db *state.StateDB, logger cmtlog.Logger) Querier {
	return newJSONQuerier(logger, "project", func(data []byte) (any, uint64, error) {
		idx, err := parseIndex(data)
		if err != nil {
			return nil, 0, err
		}
		return db.GetProjectProposal(idx)
	})
}

func NewQueueQuerier(db *state.StateDB, logger cmtlog.Logger) Querier {
	return newJSONQuerier(logger, "queue", func([]byte) (any, uint64, error) {
		return db.GetQueue()
	})
}

type BalanceView struct {
	Address string `json:"address"`
	Balance uint64 `json:"balance"`
	Nonce   uint64 `json:"nonce"`
}

func NewBalanceQuerier(db *state.StateDB, logger cmtlog.Logger) Querier {
	return newJSONQuerier(logger, "balance", func(data []byte) (any, uint64, error) {
		addr := string(data)
		balance, nonce, height, err := db.GetBalance(addr)
		if err != nil {
			return nil, 0, err
		}
		return &BalanceView{Address: addr, Balance: balance, Nonce: nonce}, height, nil
	})
}
