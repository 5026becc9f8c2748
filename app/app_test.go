package app

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/calehh/hac-dao/config"
	daocrypto "github.com/calehh/hac-dao/crypto"
	"github.com/calehh/hac-dao/state"
	"github.com/calehh/hac-dao/tx"
	"github.com/calehh/hac-dao/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	"github.com/cometbft/cometbft/crypto/ed25519"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/stretchr/testify/require"
)

const testChain = "dao-app-test"

var genesisTime = time.Unix(1_700_000_000, 0)

type testNode struct {
	t      *testing.T
	app    *DAOApp
	height int64
	now    time.Time
}

func newTestNode(t *testing.T, keys ...*daocrypto.PV) *testNode {
	cfg := config.DefaultDAOAppConfig(t.TempDir())
	app, err := NewDAOApp(cfg, cmtlog.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(app.Stop)

	gen := types.DefaultDAOGenesis()
	for _, k := range keys {
		gen.Balances = append(gen.Balances, types.GenesisBalance{Address: k.Address(), Amount: 1000})
	}
	appState, err := json.Marshal(gen)
	require.NoError(t, err)
	_, err = app.InitChain(context.Background(), &abcitypes.RequestInitChain{
		Time:          genesisTime,
		ChainId:       testChain,
		AppStateBytes: appState,
	})
	require.NoError(t, err)
	return &testNode{t: t, app: app, now: genesisTime}
}

func (n *testNode) signed(key *daocrypto.PV, payload any, nonce uint64) []byte {
	btx := tx.NewDAOTx(payload, nonce, nil)
	require.NoError(n.t, key.SignTx(btx, testChain))
	dat, err := tx.MarshalDAOTx(btx)
	require.NoError(n.t, err)
	return dat
}

// block runs one full height advancing block time by step.
func (n *testNode) block(step time.Duration, txs ...[]byte) *abcitypes.ResponseFinalizeBlock {
	ctx := context.Background()
	n.height++
	n.now = n.now.Add(step)
	proc, err := n.app.ProcessProposal(ctx, &abcitypes.RequestProcessProposal{Txs: txs, Height: n.height, Time: n.now})
	require.NoError(n.t, err)
	require.Equal(n.t, abcitypes.ResponseProcessProposal_ACCEPT, proc.Status)
	res, err := n.app.FinalizeBlock(ctx, &abcitypes.RequestFinalizeBlock{Txs: txs, Height: n.height, Time: n.now})
	require.NoError(n.t, err)
	_, err = n.app.Commit(ctx, &abcitypes.RequestCommit{})
	require.NoError(n.t, err)
	return res
}

func (n *testNode) query(path string, data string, v any) uint32 {
	res, err := n.app.Query(context.Background(), &abcitypes.RequestQuery{Path: path, Data: []byte(data)})
	require.NoError(n.t, err)
	if res.Code == 0 && v != nil {
		require.NoError(n.t, json.Unmarshal(res.Value, v))
	}
	return res.Code
}

func hasEvent(res *abcitypes.ResponseFinalizeBlock, typ string) bool {
	for _, ev := range res.Events {
		if ev.Type == typ {
			return true
		}
	}
	return false
}

func TestAccessProposalOverBlocks(t *testing.T) {
	alice := daocrypto.NewPV(ed25519.GenPrivKey())
	bob := daocrypto.NewPV(ed25519.GenPrivKey())
	n := newTestNode(t, alice, bob)
	period := time.Duration(types.DefaultParams().PeriodDuration) * time.Second

	res := n.block(time.Second,
		n.signed(alice, &tx.SummonTx{}, 0),
		n.signed(alice, &tx.AccessProposalTx{Applicant: bob.Address(), EnergiesRequested: 5}, 1),
		n.signed(alice, &tx.AccessVoteTx{Proposal: 0, Yes: true}, 2),
	)
	require.Len(t, res.TxResults, 3)
	for _, r := range res.TxResults {
		require.Equal(t, uint32(0), r.Code, r.Log)
	}

	var view LedgerView
	require.Equal(t, uint32(0), n.query("/pools", "", &view))
	require.Equal(t, uint64(1), view.Ledger.TotalEnergies)
	require.Equal(t, types.DefaultParams().ProposalMortgage, view.Ledger.Pools.Mortgage)

	// the window closes voting_period_length periods after the start
	res = n.block(period * time.Duration(types.DefaultParams().VotingPeriodLength))
	require.True(t, hasEvent(res, types.EventProcessAccessProposalType))
	require.True(t, hasEvent(res, types.EventNewMemberType))

	var m types.Member
	require.Equal(t, uint32(0), n.query("/members/", bob.Address(), &m))
	require.Equal(t, uint64(5), m.Energy)

	var members []state.MemberEntry
	require.Equal(t, uint32(0), n.query("/members/", "", &members))
	require.Len(t, members, 2)

	var p types.AccessProposal
	require.Equal(t, uint32(0), n.query("/access/", "0", &p))
	require.True(t, p.DidPass)
	require.Equal(t, CodeQueryNotFound, n.query("/access/", "1", nil))

	var bal BalanceView
	require.Equal(t, uint32(0), n.query("/balance/", alice.Address(), &bal))
	require.Equal(t, uint64(1000), bal.Balance)
	require.Equal(t, uint64(3), bal.Nonce)
}

func TestRejectedTxKeepsItsSlot(t *testing.T) {
	alice := daocrypto.NewPV(ed25519.GenPrivKey())
	n := newTestNode(t, alice)

	res := n.block(time.Second,
		n.signed(alice, &tx.SummonTx{}, 0),
		n.signed(alice, &tx.SummonTx{}, 1),
	)
	require.Equal(t, uint32(0), res.TxResults[0].Code)
	require.Equal(t, uint32(state.KindValidation), res.TxResults[1].Code)

	var bal BalanceView
	require.Equal(t, uint32(0), n.query("/balance/", alice.Address(), &bal))
	require.Equal(t, uint64(2), bal.Nonce)
}

func TestProcessProposalRejectsForgedTx(t *testing.T) {
	alice := daocrypto.NewPV(ed25519.GenPrivKey())
	mallory := daocrypto.NewPV(ed25519.GenPrivKey())
	n := newTestNode(t, alice)

	btx := tx.NewDAOTx(&tx.DonateTx{Value: 1}, 0, nil)
	require.NoError(t, mallory.SignTx(btx, testChain))
	btx.PubKey = alice.PublicKey()
	forged, err := tx.MarshalDAOTx(btx)
	require.NoError(t, err)

	res, err := n.app.ProcessProposal(context.Background(), &abcitypes.RequestProcessProposal{
		Txs:    [][]byte{forged},
		Height: 1,
		Time:   genesisTime.Add(time.Second),
	})
	require.NoError(t, err)
	require.Equal(t, abcitypes.ResponseProcessProposal_REJECT, res.Status)

	check, err := n.app.CheckTx(context.Background(), &abcitypes.RequestCheckTx{Tx: forged})
	require.NoError(t, err)
	require.Equal(t, CodeInvalidTx, check.Code)
}

func TestPrepareProposalDropsRejectedTxs(t *testing.T) {
	alice := daocrypto.NewPV(ed25519.GenPrivKey())
	bob := daocrypto.NewPV(ed25519.GenPrivKey())
	n := newTestNode(t, alice, bob)

	summon := n.signed(alice, &tx.SummonTx{}, 0)
	again := n.signed(bob, &tx.SummonTx{}, 0)
	donate := n.signed(alice, &tx.DonateTx{Value: 10}, 1)
	res, err := n.app.PrepareProposal(context.Background(), &abcitypes.RequestPrepareProposal{
		Txs:        [][]byte{summon, again, donate, []byte("garbage")},
		MaxTxBytes: 1 << 20,
		Height:     1,
		Time:       genesisTime.Add(time.Second),
	})
	require.NoError(t, err)
	require.Equal(t, [][]byte{summon, donate}, res.Txs)
}

func TestQueryUnknownPath(t *testing.T) {
	n := newTestNode(t)
	require.Equal(t, CodeQueryNotFound, n.query("/nothing/", "", nil))
	var queue []uint32
	require.Equal(t, uint32(0), n.query("/queue/", "", &queue))
	require.Empty(t, queue)
}
