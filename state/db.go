package state

import (
	"fmt"
	"sync"

	"github.com/calehh/hac-dao/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/cosmos/iavl"
	dbm "github.com/cosmos/iavl/db"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
)

type StateDB struct {
	mtx sync.RWMutex

	dir    string
	logger cmtlog.Logger
	db     *iavl.MutableTree

	state *State
}

func NewStateDB(dir string, logger cmtlog.Logger) (db *StateDB, err error) {
	logger = logger.With("module", "daodb")
	ldb, err := dbm.NewDB("dao", "goleveldb", dir)
	if err != nil {
		return nil, err
	}
	return openStateDB(ldb, dir, logger)
}

// NewMemStateDB keeps the tree in memory. Used by tests and tooling.
func NewMemStateDB(logger cmtlog.Logger) (*StateDB, error) {
	return openStateDB(dbm.NewMemDB(), "", logger.With("module", "daodb"))
}

func openStateDB(ldb dbm.DB, dir string, logger cmtlog.Logger) (db *StateDB, err error) {
	tdb := iavl.NewMutableTree(ldb, 128, true, newTreeLogger(logger))
	version, err := tdb.Load()
	if err != nil {
		return nil, err
	}
	logger.Info("load db success", "version", version)
	st := newState(tdb, logger)
	err = st.load()
	if err != nil {
		logger.Error("from daodb load fail", "err", err)
		return nil, err
	}
	st.dbVer = version
	db = &StateDB{
		dir:    dir,
		logger: logger,
		db:     tdb,
		state:  st,
	}
	return
}

func (db *StateDB) Close() (err error) {
	err = db.db.Close()
	return
}

func (db *StateDB) Header() (header *StateHeader) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	header = db.state.Header()
	return
}

func (db *StateDB) State() *State {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	return db.state
}

func (db *StateDB) NewState() (st *State) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	st = db.state.nextState()
	return
}

func (db *StateDB) SetState(st *State) (hash common.Hash, err error) {
	db.mtx.Lock()
	defer db.mtx.Unlock()
	hash, err = st.save()
	if err != nil {
		return
	}
	db.state = st
	return
}

func (db *StateDB) GetMember(addr string) (m *types.Member, height uint64, err error) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	m, err = db.state.GetMember(addr)
	height = db.state.header.Height
	return
}

func (db *StateDB) GetAccessProposal(index uint32) (p *types.AccessProposal, height uint64, err error) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	p, err = db.state.GetAccessProposal(index)
	height = db.state.header.Height
	return
}

func (db *StateDB) GetProjectProposal(index uint32) (p *types.ProjectProposal, height uint64, err error) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	p, err = db.state.GetProjectProposal(index)
	height = db.state.header.Height
	return
}

func (db *StateDB) GetBalance(addr string) (balance, nonce uint64, height uint64, err error) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	if balance, err = db.state.Bank().Balance(addr); err != nil {
		return
	}
	nonce, err = db.state.Nonce(addr)
	height = db.state.header.Height
	return
}

func (db *StateDB) GetQueue() (entries []uint32, height uint64, err error) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	entries, err = db.state.QueueEntries()
	height = db.state.header.Height
	return
}

type MemberEntry struct {
	Address string       `json:"address"`
	Member  types.Member `json:"member"`
}

// Members walks the roster in the committed tree in admission order.
func (db *StateDB) Members() (members []MemberEntry, height uint64, err error) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	prefix := []byte("mr/")
	it, err := db.db.Iterator(prefix, PrefixEndBytes(prefix), true)
	if err != nil {
		return nil, 0, err
	}
	defer it.Close()
	for ; it.Valid(); it.Next() {
		var addr string
		if err = rlp.DecodeBytes(it.Value(), &addr); err != nil {
			return nil, 0, err
		}
		m, err := db.state.GetMember(addr)
		if err != nil {
			return nil, 0, err
		}
		if m == nil {
			return nil, 0, fmt.Errorf("%w: roster entry %s has no record", ErrInvariantBroken, addr)
		}
		members = append(members, MemberEntry{Address: addr, Member: *m})
	}
	height = db.state.header.Height
	return members, height, it.Error()
}
