package state

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/calehh/hac-dao/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/cosmos/iavl"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/syndtr/goleveldb/leveldb"
)

var (
	KeyState           = "s"
	KeyMember          = "mb/%s"
	KeyMemberRoster    = "mr/%08x"
	KeyAccessProposal  = "ap/%08x"
	KeyProjectProposal = "pp/%08x"
	KeyQueueEntry      = "q/%08x"
	KeyAccessVote      = "va/%08x/%s"
	KeyProjectVote     = "vp/%08x/%s/%d/%d"
	KeyAllowance       = "al/%s"
	KeyBalance         = "b/%s"
	KeyNonce           = "n/%s"
)

type StateHeader struct {
	Height   uint64       `json:"height"`
	ChainId  string       `json:"chain_id"`
	Moment   uint64       `json:"moment"`
	Hash     []byte       `json:"hash"`
	RootHash []byte       `json:"root_hash"`
	Params   types.Params `json:"params"`
	Ledger   types.Ledger `json:"ledger"`
}

func (h *StateHeader) GetHash() []byte {
	if h == nil {
		return nil
	}
	return h.Hash
}

func (h *StateHeader) clone() *StateHeader {
	n := *h
	n.Hash = common.CopyBytes(h.Hash)
	n.RootHash = common.CopyBytes(h.RootHash)
	return &n
}

type journalEntry struct {
	key     string
	prev    []byte
	pending bool
}

// State is the DAO ledger for one block. Reads fall through to the tree,
// writes stay in pending until Update flushes them.
type State struct {
	logger cmtlog.Logger
	db     *iavl.MutableTree
	dbVer  int64

	header  *StateHeader
	pending map[string][]byte

	recording bool
	journal   []journalEntry
}

func newState(db *iavl.MutableTree, logger cmtlog.Logger) *State {
	return &State{
		logger:  logger,
		db:      db,
		dbVer:   0,
		header:  new(StateHeader),
		pending: make(map[string][]byte),
	}
}

func (s *State) nextState() *State {
	n := &State{
		logger:  s.logger,
		db:      s.db,
		dbVer:   s.dbVer,
		header:  s.header.clone(),
		pending: make(map[string][]byte),
	}
	if s.header.GetHash() != nil {
		n.header.Height = s.header.Height + 1
	}
	return n
}

// Clone returns an independent branch. Values in pending are never mutated
// in place, so sharing them is safe.
func (s *State) Clone() *State {
	n := &State{
		logger:  s.logger,
		db:      s.db,
		dbVer:   s.dbVer,
		header:  s.header.clone(),
		pending: make(map[string][]byte, len(s.pending)),
	}
	for k, v := range s.pending {
		n.pending[k] = v
	}
	return n
}

func (s *State) load() (err error) {
	val, err := s.db.Get([]byte(KeyState))
	if err != nil {
		if err == leveldb.ErrNotFound {
			return nil
		}
		return err
	}
	if val != nil {
		err = json.Unmarshal(val, s.header)
		if err != nil {
			return
		}
		h := s.db.Hash()
		if h != nil {
			s.calcHash(h, true)
		}
	}
	return
}

func (s *State) calcHash(rootHash []byte, update bool) (h common.Hash) {
	h = crypto.Keccak256Hash(rootHash)
	if update {
		s.header.RootHash = common.CopyBytes(rootHash)
		s.header.Hash = common.CopyBytes(h[:])
	}
	return
}

// Update flushes pending writes into the working tree and returns the
// resulting app hash. Keys are written in sorted order.
func (s *State) Update() (h common.Hash, err error) {
	var hash []byte
	defer func() {
		if hash == nil {
			s.db.Rollback()
		}
	}()
	var val []byte
	val, err = json.Marshal(s.header)
	if err != nil {
		return
	}
	_, err = s.db.Set([]byte(KeyState), val)
	if err != nil {
		return
	}

	keys := make([]string, 0, len(s.pending))
	for k := range s.pending {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		_, err = s.db.Set([]byte(k), s.pending[k])
		if err != nil {
			return
		}
	}
	hash = s.db.WorkingHash()
	h = s.calcHash(hash, false)
	s.pending = make(map[string][]byte)
	return
}

func (s *State) save() (h common.Hash, err error) {
	hash, ver, err := s.db.SaveVersion()
	if err != nil {
		return h, err
	}

	s.dbVer = ver
	h = s.calcHash(hash, true)

	return
}

func (s *State) get(key string) ([]byte, error) {
	if v, ok := s.pending[key]; ok {
		return v, nil
	}
	val, err := s.db.Get([]byte(key))
	if err != nil {
		if err == leveldb.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return val, nil
}

func (s *State) set(key string, val []byte) {
	if s.recording {
		prev, ok := s.pending[key]
		s.journal = append(s.journal, journalEntry{key: key, prev: prev, pending: ok})
	}
	s.pending[key] = val
}

func (s *State) getJSON(key string, v any) (found bool, err error) {
	val, err := s.get(key)
	if err != nil || val == nil {
		return false, err
	}
	if err = json.Unmarshal(val, v); err != nil {
		return false, err
	}
	return true, nil
}

func (s *State) setJSON(key string, v any) error {
	val, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.set(key, val)
	return nil
}

func (s *State) getRLP(key string, v any) (found bool, err error) {
	val, err := s.get(key)
	if err != nil || val == nil {
		return false, err
	}
	if err = rlp.DecodeBytes(val, v); err != nil {
		return false, err
	}
	return true, nil
}

func (s *State) setRLP(key string, v any) error {
	val, err := rlp.EncodeToBytes(v)
	if err != nil {
		return err
	}
	s.set(key, val)
	return nil
}

// atomic runs fn and discards every write it made if it fails.
func (s *State) atomic(fn func() error) error {
	if s.recording {
		return fn()
	}
	ledger := s.header.Ledger
	s.recording = true
	s.journal = s.journal[:0]
	defer func() {
		s.recording = false
		s.journal = s.journal[:0]
	}()
	err := fn()
	if err != nil {
		for i := len(s.journal) - 1; i >= 0; i-- {
			e := s.journal[i]
			if e.pending {
				s.pending[e.key] = e.prev
			} else {
				delete(s.pending, e.key)
			}
		}
		s.header.Ledger = ledger
	}
	return err
}

func (s *State) Header() *StateHeader {
	return s.header
}

func (s *State) Hash() (h common.Hash) {
	if s.header.Hash != nil {
		copy(h[:], s.header.Hash)
	}
	return
}

func (s *State) SetChainId(chainId string) {
	s.header.ChainId = chainId
}

// SetMoment records the host-supplied time of the block being executed.
func (s *State) SetMoment(moment uint64) {
	s.header.Moment = moment
}

func (s *State) Moment() uint64 {
	return s.header.Moment
}

func (s *State) Params() types.Params {
	return s.header.Params
}

func (s *State) Ledger() types.Ledger {
	return s.header.Ledger
}

// InitGenesis installs params and initial balances. It runs once, from InitChain.
func (s *State) InitGenesis(gen types.DAOGenesis) error {
	if err := gen.Validate(); err != nil {
		return err
	}
	return s.atomic(func() error {
		s.header.Params = gen.Params
		for _, b := range gen.Balances {
			if err := s.Bank().DepositCreating(b.Address, b.Amount); err != nil {
				return fmt.Errorf("genesis balance %s: %w", b.Address, err)
			}
		}
		return nil
	})
}

func (s *State) GetMember(addr string) (*types.Member, error) {
	m := new(types.Member)
	found, err := s.getJSON(fmt.Sprintf(KeyMember, addr), m)
	if err != nil || !found {
		return nil, err
	}
	return m, nil
}

func (s *State) setMember(addr string, m *types.Member) error {
	return s.setJSON(fmt.Sprintf(KeyMember, addr), m)
}

// MemberAt returns the address admitted at roster position i.
func (s *State) MemberAt(i uint32) (addr string, err error) {
	found, err := s.getRLP(fmt.Sprintf(KeyMemberRoster, i), &addr)
	if err != nil {
		return "", err
	}
	if !found {
		return "", ErrMemberNoexists
	}
	return addr, nil
}

func (s *State) GetAccessProposal(index uint32) (*types.AccessProposal, error) {
	if index >= s.header.Ledger.AccessProposalsCount {
		return nil, ErrAccessProposalNoexists
	}
	p := new(types.AccessProposal)
	found, err := s.getJSON(fmt.Sprintf(KeyAccessProposal, index), p)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: access proposal %d missing", ErrInvariantBroken, index)
	}
	return p, nil
}

func (s *State) setAccessProposal(p *types.AccessProposal) error {
	return s.setJSON(fmt.Sprintf(KeyAccessProposal, p.Index), p)
}

func (s *State) GetProjectProposal(index uint32) (*types.ProjectProposal, error) {
	if index >= s.header.Ledger.ProjectProposalsCount {
		return nil, ErrProjectProposalNoexists
	}
	p := new(types.ProjectProposal)
	found, err := s.getJSON(fmt.Sprintf(KeyProjectProposal, index), p)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: project proposal %d missing", ErrInvariantBroken, index)
	}
	return p, nil
}

func (s *State) setProjectProposal(p *types.ProjectProposal) error {
	return s.setJSON(fmt.Sprintf(KeyProjectProposal, p.Index), p)
}

// AccessVote returns the recorded vote of voter on an access proposal.
func (s *State) AccessVote(index uint32, voter string) (vote bool, voted bool, err error) {
	voted, err = s.getRLP(fmt.Sprintf(KeyAccessVote, index, voter), &vote)
	return
}

// ProjectVote returns the recorded vote of voter for one round of a project stage.
func (s *State) ProjectVote(index uint32, voter string, status types.ProjectStatus, round uint64) (vote bool, voted bool, err error) {
	voted, err = s.getRLP(fmt.Sprintf(KeyProjectVote, index, voter, status, round), &vote)
	return
}

func (s *State) Allowance(addr string) (value uint64, err error) {
	_, err = s.getRLP(fmt.Sprintf(KeyAllowance, addr), &value)
	return
}

func (s *State) queue() *ProjectQueue {
	return newProjectQueue(s, &s.header.Ledger.QueueHead, &s.header.Ledger.QueueLength)
}

// QueueEntries lists the project proposal indices waiting for settlement, head first.
func (s *State) QueueEntries() ([]uint32, error) {
	return s.queue().Entries()
}

// CurrentPeriod is the period of the block being executed.
func (s *State) CurrentPeriod() uint64 {
	if s.header.Params.PeriodDuration == 0 {
		return 0
	}
	return s.header.Moment / s.header.Params.PeriodDuration
}

func (s *State) votingEnds(startingPeriod uint64) uint64 {
	return saturatingAdd(startingPeriod, s.header.Params.VotingPeriodLength)
}

func (s *State) hasVotingPeriodExpired(startingPeriod uint64) bool {
	return s.CurrentPeriod() >= s.votingEnds(startingPeriod)
}

func (s *State) inVotePeriod(startingPeriod uint64) bool {
	return s.CurrentPeriod() >= startingPeriod && !s.hasVotingPeriodExpired(startingPeriod)
}

func (s *State) inAbortWindow(startingPeriod uint64) bool {
	return s.CurrentPeriod() < saturatingAdd(startingPeriod, s.header.Params.AbortWindow)
}

// nextStartingPeriod keeps starting periods strictly increasing behind prev.
func (s *State) nextStartingPeriod(prev uint64, hasPrev bool) uint64 {
	cur := s.CurrentPeriod()
	if !hasPrev {
		return cur
	}
	if after := saturatingAdd(prev, 1); after > cur {
		return after
	}
	return cur
}

func PrefixEndBytes(prefix []byte) []byte {
	if len(prefix) == 0 {
		return nil
	}

	end := make([]byte, len(prefix))
	copy(end, prefix)

	for {
		if end[len(end)-1] != byte(255) {
			end[len(end)-1]++
			break
		}

		end = end[:len(end)-1]

		if len(end) == 0 {
			end = nil
			break
		}
	}

	return end
}
