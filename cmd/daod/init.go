package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/calehh/hac-dao/config"
	"github.com/calehh/hac-dao/types"
	cmttypes "github.com/cometbft/cometbft/types"
	"github.com/spf13/cobra"
)

type printInfo struct {
	Moniker    string          `json:"moniker" yaml:"moniker"`
	ChainID    string          `json:"chain_id" yaml:"chain_id"`
	NodeID     string          `json:"node_id" yaml:"node_id"`
	AppMessage json.RawMessage `json:"app_message" yaml:"app_message"`
}

func displayInfo(info printInfo) error {
	out, err := json.MarshalIndent(info, "", " ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(os.Stderr, "%s\n", out)
	return err
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize private validator, p2p, genesis, and application configuration files",
	Long:  `Initialize validators's and node's configuration files, and the DAO genesis state.`,
	Args:  cobra.ExactArgs(0),
	RunE:  initRun,
}

func init() {
	initCmd.Flags().BoolP(FlagOverwrite, "o", false, "overwrite the genesis.json file")
	initCmd.Flags().String(FlagChainID, "", "genesis file chain-id, if left blank will be randomly created")
	initCmd.Flags().String(FlagHome, "", "node home directory")
	initCmd.Flags().StringSlice(FlagBalance, nil, "genesis balance as address=amount, repeatable")
	initCmd.Flags().Uint64("fund", 1000, "genesis balance of the validator key")
	params := types.DefaultParams()
	initCmd.Flags().Uint64("period-duration", params.PeriodDuration, "seconds of block time per period")
	initCmd.Flags().Uint64("voting-period-length", params.VotingPeriodLength, "periods a proposal is open for votes")
	initCmd.Flags().Uint64("abort-window", params.AbortWindow, "periods an applicant may abort after the start")
	initCmd.Flags().Uint64("proposal-mortgage", params.ProposalMortgage, "mortgage taken from every proposer")
}

func parseBalances(entries []string) ([]types.GenesisBalance, error) {
	balances := make([]types.GenesisBalance, 0, len(entries))
	for _, entry := range entries {
		addr, amount, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("invalid balance %q, want address=amount", entry)
		}
		v, err := strconv.ParseUint(amount, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid balance %q: %w", entry, err)
		}
		balances = append(balances, types.GenesisBalance{Address: strings.ToUpper(addr), Amount: v})
	}
	return balances, nil
}

func initRun(cmd *cobra.Command, args []string) error {
	home, _ := cmd.Flags().GetString(FlagHome)
	chainID, _ := cmd.Flags().GetString(FlagChainID)
	overwrite, _ := cmd.Flags().GetBool(FlagOverwrite)
	entries, _ := cmd.Flags().GetStringSlice(FlagBalance)
	fund, _ := cmd.Flags().GetUint64("fund")

	if chainID == "" {
		chainID = fmt.Sprintf("test-chain-%v", rand.Uint64())
	}
	appConfig := config.DefaultConfig(home)

	genFile := appConfig.GenesisFile()
	if _, err := os.Stat(genFile); err == nil && !overwrite {
		return fmt.Errorf("genesis file %s already exists, use --%s to replace it", genFile, FlagOverwrite)
	}

	nodeID, pk, err := config.InitializeNodeValidatorFiles(appConfig, nil)
	if err != nil {
		return err
	}

	gen := types.DefaultDAOGenesis()
	gen.Params.PeriodDuration, _ = cmd.Flags().GetUint64("period-duration")
	gen.Params.VotingPeriodLength, _ = cmd.Flags().GetUint64("voting-period-length")
	gen.Params.AbortWindow, _ = cmd.Flags().GetUint64("abort-window")
	gen.Params.ProposalMortgage, _ = cmd.Flags().GetUint64("proposal-mortgage")
	if gen.Balances, err = parseBalances(entries); err != nil {
		return err
	}
	if fund > 0 {
		gen.Balances = append(gen.Balances, types.GenesisBalance{Address: pk.Address().String(), Amount: fund})
	}
	appState, err := json.Marshal(gen)
	if err != nil {
		return err
	}

	appGenesis := &types.GenesisDoc{
		GenesisTime:     time.Now(),
		ChainID:         chainID,
		ConsensusParams: cmttypes.DefaultConsensusParams(),
		InitialHeight:   1,
		Validators: []types.GenesisValidator{
			{Address: pk.Address(), PubKey: pk, Power: types.DefaultPower},
		},
		AppState: appState,
	}
	if err = types.ExportGenesisFile(appGenesis, genFile); err != nil {
		return fmt.Errorf("failed to export genesis file: %w", err)
	}
	if err = config.WriteConfigFile(filepath.Join(appConfig.RootDir, "config", "config.toml"), appConfig); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return displayInfo(printInfo{
		Moniker:    appConfig.Moniker,
		ChainID:    chainID,
		NodeID:     nodeID,
		AppMessage: appGenesis.AppState,
	})
}
