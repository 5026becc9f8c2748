package indexer

import (
	"context"
	"errors"
	"time"

	"github.com/calehh/hac-dao/types"
	abci "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	comethttp "github.com/cometbft/cometbft/rpc/client/http"
)

// BlockSource gives the indexer committed heights and their events.
type BlockSource interface {
	LatestHeight(ctx context.Context) (int64, error)
	BlockEvents(ctx context.Context, height int64) ([]abci.Event, error)
}

type rpcSource struct {
	cli *comethttp.HTTP
}

func NewRPCSource(url string) (BlockSource, error) {
	cli, err := comethttp.New(url, "/websocket")
	if err != nil {
		return nil, err
	}
	return &rpcSource{cli: cli}, nil
}

func (s *rpcSource) LatestHeight(ctx context.Context) (int64, error) {
	st, err := s.cli.Status(ctx)
	if err != nil {
		return 0, err
	}
	return st.SyncInfo.LatestBlockHeight, nil
}

// BlockEvents returns events in execution order: the block events of the
// scheduler tick, which runs before any tx, then those of successful txs.
func (s *rpcSource) BlockEvents(ctx context.Context, height int64) ([]abci.Event, error) {
	res, err := s.cli.BlockResults(ctx, &height)
	if err != nil {
		return nil, err
	}
	return blockEvents(res.FinalizeBlockEvents, res.TxsResults), nil
}

func blockEvents(tick []abci.Event, txResults []*abci.ExecTxResult) []abci.Event {
	events := append([]abci.Event(nil), tick...)
	for _, r := range txResults {
		if r == nil || r.Code != 0 {
			continue
		}
		events = append(events, r.Events...)
	}
	return events
}

type ChainIndexer struct {
	logger        cmtlog.Logger
	store         Store
	src           BlockSource
	poll          time.Duration
	Height        int64
	eventHandlers map[string]eventHandler
}

func NewChainIndexer(logger cmtlog.Logger, store Store, src BlockSource, poll time.Duration) (*ChainIndexer, error) {
	h, err := store.LastHeight()
	if err != nil {
		return nil, err
	}
	c := &ChainIndexer{
		logger: logger.With("module", "indexer"),
		store:  store,
		src:    src,
		poll:   poll,
		Height: h + 1,
	}
	c.eventHandlers = map[string]eventHandler{
		types.EventSubmitAccessProposalType:   c.handleSubmitAccess,
		types.EventAccessVoteType:             c.handleAccessVote,
		types.EventAccessAbortType:            c.handleAccessAbort,
		types.EventProcessAccessProposalType:  c.handleProcessAccess,
		types.EventSubmitProjectProposalType:  c.handleSubmitProject,
		types.EventProjectVoteType:            c.handleProjectVote,
		types.EventForwardToMilestoneType:     c.handleForward,
		types.EventProjectAbortType:           c.handleProjectAbort,
		types.EventProcessProjectProposalType: c.handleProcessProject,
	}
	return c, nil
}

type eventHandler func(event abci.Event, height int64) error

func (c *ChainIndexer) handleEvent(event abci.Event, height int64) error {
	if h, ok := c.eventHandlers[event.Type]; ok {
		return h(event, height)
	}
	return nil
}

func (c *ChainIndexer) handleSubmitAccess(event abci.Event, height int64) error {
	ev, err := types.DecodeEventSubmitAccessProposal(event)
	if err != nil {
		return err
	}
	return c.store.SaveAccessProposal(&AccessProposal{
		Proposal:          ev.Proposal,
		Proposer:          ev.Proposer,
		Applicant:         ev.Applicant,
		EnergiesRequested: ev.EnergiesRequested,
		Deposit:           ev.Deposit,
		StartingPeriod:    ev.StartingPeriod,
		SubmitHeight:      uint64(height),
	})
}

func (c *ChainIndexer) handleAccessVote(event abci.Event, height int64) error {
	ev, err := types.DecodeEventAccessVote(event)
	if err != nil {
		return err
	}
	return c.store.SaveVote(&Vote{
		Kind:     VoteKindAccess,
		Proposal: ev.Proposal,
		Voter:    ev.Voter,
		Yes:      ev.Yes,
		Energy:   ev.Energy,
		Height:   uint64(height),
	})
}

func (c *ChainIndexer) handleAccessAbort(event abci.Event, height int64) error {
	ev, err := types.DecodeEventAccessAbort(event)
	if err != nil {
		return err
	}
	p, err := c.store.GetAccessProposal(ev.Proposal)
	if err != nil {
		return err
	}
	p.Aborted = true
	p.Deposit = 0
	return c.store.SaveAccessProposal(p)
}

func (c *ChainIndexer) handleProcessAccess(event abci.Event, height int64) error {
	ev, err := types.DecodeEventProcessAccessProposal(event)
	if err != nil {
		return err
	}
	p, err := c.store.GetAccessProposal(ev.Proposal)
	if err != nil {
		return err
	}
	p.Processed = true
	p.DidPass = ev.DidPass
	p.SettleHeight = uint64(height)
	return c.store.SaveAccessProposal(p)
}

func (c *ChainIndexer) handleSubmitProject(event abci.Event, height int64) error {
	ev, err := types.DecodeEventSubmitProjectProposal(event)
	if err != nil {
		return err
	}
	return c.store.SaveProjectProposal(&ProjectProposal{
		Proposal:            ev.Proposal,
		Proposer:            ev.Proposer,
		Applicant:           ev.Applicant,
		Milestone1Requested: ev.Milestone1Requested,
		Milestone2Requested: ev.Milestone2Requested,
		Milestone3Requested: ev.Milestone3Requested,
		StartingPeriod:      ev.StartingPeriod,
		Status:              uint8(types.ProjectStatusInitialization),
		Phase:               uint8(types.ProjectPhaseActive),
		SubmitHeight:        uint64(height),
	})
}

func (c *ChainIndexer) handleProjectVote(event abci.Event, height int64) error {
	ev, err := types.DecodeEventProjectVote(event)
	if err != nil {
		return err
	}
	return c.store.SaveVote(&Vote{
		Kind:     VoteKindProject,
		Proposal: ev.Proposal,
		Voter:    ev.Voter,
		Status:   uint8(ev.Status),
		Round:    ev.Round,
		Yes:      ev.Yes,
		Energy:   ev.Energy,
		Height:   uint64(height),
	})
}

func (c *ChainIndexer) handleForward(event abci.Event, height int64) error {
	ev, err := types.DecodeEventForwardToMilestone(event)
	if err != nil {
		return err
	}
	p, err := c.store.GetProjectProposal(ev.Proposal)
	if err != nil {
		return err
	}
	p.Status = uint8(ev.Status)
	p.Round = ev.Round
	p.StartingPeriod = ev.StartingPeriod
	return c.store.SaveProjectProposal(p)
}

func (c *ChainIndexer) handleProjectAbort(event abci.Event, height int64) error {
	ev, err := types.DecodeEventProjectAbort(event)
	if err != nil {
		return err
	}
	p, err := c.store.GetProjectProposal(ev.Proposal)
	if err != nil {
		return err
	}
	p.Phase = uint8(types.ProjectPhaseCancelled)
	return c.store.SaveProjectProposal(p)
}

func (c *ChainIndexer) handleProcessProject(event abci.Event, height int64) error {
	ev, err := types.DecodeEventProcessProjectProposal(event)
	if err != nil {
		return err
	}
	p, err := c.store.GetProjectProposal(ev.Proposal)
	if err != nil {
		return err
	}
	p.Phase = uint8(ev.Phase)
	if ev.Passed {
		p.Granted += ev.Grant
	}
	if err = c.store.SaveProjectProposal(p); err != nil {
		return err
	}
	return c.store.SaveProjectRound(&ProjectRound{
		Proposal: ev.Proposal,
		Status:   uint8(ev.Status),
		Round:    ev.Round,
		Passed:   ev.Passed,
		Grant:    ev.Grant,
		Height:   uint64(height),
	})
}

// Sync indexes every block up to the latest committed height.
func (c *ChainIndexer) Sync(ctx context.Context) error {
	latest, err := c.src.LatestHeight(ctx)
	if err != nil {
		return err
	}
	for c.Height <= latest {
		if err = ctx.Err(); err != nil {
			return err
		}
		events, err := c.src.BlockEvents(ctx, c.Height)
		if err != nil {
			return err
		}
		for _, event := range events {
			if err = c.handleEvent(event, c.Height); err != nil {
				if errors.Is(err, ErrNotFound) {
					c.logger.Error("event refers to unknown proposal", "height", c.Height, "type", event.Type)
					continue
				}
				return err
			}
		}
		if err = c.store.SaveHeight(c.Height); err != nil {
			return err
		}
		c.Height++
	}
	return nil
}

func (c *ChainIndexer) Start(ctx context.Context) {
	ticker := time.NewTicker(c.poll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.Sync(ctx); err != nil && !errors.Is(err, context.Canceled) {
				c.logger.Error("indexer sync fail", "height", c.Height, "err", err)
			}
		}
	}
}
