package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/cometbft/cometbft/crypto"
	cmtjson "github.com/cometbft/cometbft/libs/json"
	cmttypes "github.com/cometbft/cometbft/types"
)

type GenesisValidator struct {
	Address crypto.Address `json:"address"`
	PubKey  crypto.PubKey  `json:"pub_key"`
	Power   int64          `json:"power"`
	Name    string         `json:"name"`
}

// GenesisDoc defines the initial conditions for a CometBFT blockchain, in particular its validator set.
type GenesisDoc struct {
	GenesisTime     time.Time                 `json:"genesis_time"`
	ChainID         string                    `json:"chain_id"`
	InitialHeight   int64                     `json:"initial_height"`
	ConsensusParams *cmttypes.ConsensusParams `json:"consensus_params,omitempty"`
	Validators      []GenesisValidator        `json:"validators"`
	AppHash         []byte                    `json:"app_hash"`
	AppState        json.RawMessage           `json:"app_state"`
}

// SaveAs is a utility method for saving GenensisDoc as a JSON file.
func (genDoc *GenesisDoc) SaveAs(file string) error {
	genDocBytes, err := cmtjson.MarshalIndent(genDoc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(file, genDocBytes, 0o600)
}

func (ag *GenesisDoc) ValidateAndComplete() error {
	if ag.ChainID == "" {
		return errors.New("genesis doc must include non-empty chain_id")
	}

	if ag.InitialHeight < 0 {
		return fmt.Errorf("initial_height cannot be negative (got %v)", ag.InitialHeight)
	}

	if ag.InitialHeight == 0 {
		ag.InitialHeight = 1
	}

	if ag.GenesisTime.IsZero() {
		ag.GenesisTime = time.Now().Round(0).UTC()
	}

	if len(ag.AppState) != 0 {
		var dg DAOGenesis
		if err := json.Unmarshal(ag.AppState, &dg); err != nil {
			return fmt.Errorf("invalid app_state: %w", err)
		}
		if err := dg.Validate(); err != nil {
			return err
		}
	}

	return nil
}

func ExportGenesisFile(genesis *GenesisDoc, genFile string) error {
	if err := genesis.ValidateAndComplete(); err != nil {
		return err
	}
	return genesis.SaveAs(genFile)
}

const DAOModuleName = "dao"
const DefaultPower = 1000

// Params are fixed at InitChain and never change afterwards.
type Params struct {
	// PeriodDuration is the length of one period in seconds of block time.
	PeriodDuration     uint64 `json:"period_duration"`
	VotingPeriodLength uint64 `json:"voting_period_length"`
	AbortWindow        uint64 `json:"abort_window"`
	ProposalMortgage   uint64 `json:"proposal_mortgage"`
}

func DefaultParams() Params {
	return Params{
		PeriodDuration:     60,
		VotingPeriodLength: 5,
		AbortWindow:        2,
		ProposalMortgage:   10,
	}
}

func (p Params) Validate() error {
	if p.PeriodDuration == 0 {
		return errors.New("period_duration must be positive")
	}
	if p.VotingPeriodLength == 0 {
		return errors.New("voting_period_length must be positive")
	}
	return nil
}

type GenesisBalance struct {
	Address string `json:"address"`
	Amount  uint64 `json:"amount"`
}

// DAOGenesis is the app_state carried by the genesis file.
type DAOGenesis struct {
	Params   Params           `json:"params"`
	Balances []GenesisBalance `json:"balances"`
}

func DefaultDAOGenesis() DAOGenesis {
	return DAOGenesis{
		Params:   DefaultParams(),
		Balances: []GenesisBalance{},
	}
}

func (g DAOGenesis) Validate() error {
	if err := g.Params.Validate(); err != nil {
		return err
	}
	seen := make(map[string]bool, len(g.Balances))
	for _, b := range g.Balances {
		if b.Address == "" {
			return errors.New("genesis balance without address")
		}
		if seen[b.Address] {
			return fmt.Errorf("duplicate genesis balance for %s", b.Address)
		}
		seen[b.Address] = true
	}
	return nil
}
