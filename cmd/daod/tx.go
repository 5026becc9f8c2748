package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/calehh/hac-dao/app"
	"github.com/calehh/hac-dao/crypto"
	"github.com/calehh/hac-dao/tx"
	"github.com/cometbft/cometbft/rpc/client/http"
	"github.com/spf13/cobra"
)

type txArguments struct {
	Url    string
	Skey   string
	Nonce  int64
	Detail string
	NoSend bool
}

var txArgs txArguments

var txCmd = &cobra.Command{
	Use:   "tx",
	Short: "Sign and broadcast a DAO call",
}

func init() {
	urlFlag(txCmd, &txArgs.Url)
	keyFlag(txCmd, &txArgs.Skey)
	txCmd.PersistentFlags().Int64VarP(&txArgs.Nonce, "nonce", "n", -1, "account nonce, queried from the node when negative")
	txCmd.PersistentFlags().BoolVarP(&txArgs.NoSend, "nosend", "", false, "print the signed transaction instead of sending it")

	accessProposalCmd.Flags().StringVar(&txArgs.Detail, "detail", "", "proposal detail")
	projectProposalCmd.Flags().StringVar(&txArgs.Detail, "detail", "", "proposal detail")

	txCmd.AddCommand(
		summonCmd,
		approveCmd,
		donateCmd,
		accessProposalCmd,
		projectProposalCmd,
		forwardCmd,
		accessVoteCmd,
		projectVoteCmd,
		abortAccessCmd,
		abortProjectCmd,
		rageQuitCmd,
	)
}

func parseU64(s string) (uint64, error) {
	return strconv.ParseUint(s, 10, 64)
}

func parseU32(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	return uint32(v), err
}

func parseVote(s string) (bool, error) {
	switch s {
	case "yes", "y", "true":
		return true, nil
	case "no", "n", "false":
		return false, nil
	}
	return false, fmt.Errorf("invalid vote %q, want yes or no", s)
}

// sendTx signs payload with the configured key and broadcasts it.
func sendTx(cmd *cobra.Command, payload any) error {
	cli, err := http.New(txArgs.Url, "/websocket")
	if err != nil {
		return fmt.Errorf("new client err: %w", err)
	}
	ctx := context.Background()
	gres, err := cli.Genesis(ctx)
	if err != nil {
		return fmt.Errorf("get chain genesis err: %w", err)
	}
	pv, err := crypto.LoadFilePV(txArgs.Skey)
	if err != nil {
		return err
	}

	nonce := uint64(txArgs.Nonce)
	if txArgs.Nonce < 0 {
		var bal app.BalanceView
		if err = queryJSON(ctx, cli, "/balance/", []byte(pv.Address()), &bal); err != nil {
			return fmt.Errorf("query nonce err: %w", err)
		}
		nonce = bal.Nonce
	}

	btx := tx.NewDAOTx(payload, nonce, nil)
	if err = pv.SignTx(btx, gres.Genesis.ChainID); err != nil {
		return fmt.Errorf("sign tx err: %w", err)
	}
	dat, err := tx.MarshalDAOTx(btx)
	if err != nil {
		return err
	}
	if txArgs.NoSend {
		cmd.Println(string(dat))
		return nil
	}
	res, err := cli.BroadcastTxSync(ctx, dat)
	if err != nil {
		return fmt.Errorf("broadcast tx err: %w", err)
	}
	out, _ := json.Marshal(res)
	cmd.Println(string(out))
	if res.Code != 0 {
		return fmt.Errorf("tx rejected with code %d: %s", res.Code, res.Log)
	}
	return nil
}

var summonCmd = &cobra.Command{
	Use:   "summon",
	Short: "Found the DAO and become its first member",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sendTx(cmd, &tx.SummonTx{})
	},
}

var approveCmd = &cobra.Command{
	Use:   "approve [value]",
	Short: "Set the allowance a proposal may take as deposit from you",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := parseU64(args[0])
		if err != nil {
			return err
		}
		return sendTx(cmd, &tx.ApproveTx{Value: v})
	},
}

var donateCmd = &cobra.Command{
	Use:   "donate [value]",
	Short: "Donate to the free pool",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := parseU64(args[0])
		if err != nil {
			return err
		}
		return sendTx(cmd, &tx.DonateTx{Value: v})
	},
}

var accessProposalCmd = &cobra.Command{
	Use:   "access-proposal [applicant] [deposit] [energies]",
	Short: "Propose admitting an applicant",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		deposit, err := parseU64(args[1])
		if err != nil {
			return err
		}
		energies, err := parseU64(args[2])
		if err != nil {
			return err
		}
		return sendTx(cmd, &tx.AccessProposalTx{
			Applicant:         args[0],
			Deposit:           deposit,
			EnergiesRequested: energies,
			Detail:            []byte(txArgs.Detail),
		})
	},
}

var projectProposalCmd = &cobra.Command{
	Use:   "project-proposal [applicant] [milestone1] [milestone2] [milestone3]",
	Short: "Propose a project funded in three milestones",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		var ms [3]uint64
		for i := range ms {
			v, err := parseU64(args[i+1])
			if err != nil {
				return err
			}
			ms[i] = v
		}
		return sendTx(cmd, &tx.ProjectProposalTx{
			Applicant:  args[0],
			Milestone1: ms[0],
			Milestone2: ms[1],
			Milestone3: ms[2],
			Detail:     []byte(txArgs.Detail),
		})
	},
}

func indexCmd(use, short string, build func(idx uint32) any) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [proposal]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := parseU32(args[0])
			if err != nil {
				return err
			}
			return sendTx(cmd, build(idx))
		},
	}
}

func voteCmd(use, short string, build func(idx uint32, yes bool) any) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [proposal] [yes|no]",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := parseU32(args[0])
			if err != nil {
				return err
			}
			yes, err := parseVote(args[1])
			if err != nil {
				return err
			}
			return sendTx(cmd, build(idx, yes))
		},
	}
}

var forwardCmd = indexCmd("forward", "Open the next voting round of a settled project", func(idx uint32) any {
	return &tx.ForwardTx{Proposal: idx}
})

var abortAccessCmd = indexCmd("abort-access", "Withdraw your access application", func(idx uint32) any {
	return &tx.AbortAccessTx{Proposal: idx}
})

var abortProjectCmd = indexCmd("abort-project", "Cancel your project", func(idx uint32) any {
	return &tx.AbortProjectTx{Proposal: idx}
})

var accessVoteCmd = voteCmd("access-vote", "Vote on an access proposal", func(idx uint32, yes bool) any {
	return &tx.AccessVoteTx{Proposal: idx, Yes: yes}
})

var projectVoteCmd = voteCmd("project-vote", "Vote on the current round of a project", func(idx uint32, yes bool) any {
	return &tx.ProjectVoteTx{Proposal: idx, Yes: yes}
})

var rageQuitCmd = &cobra.Command{
	Use:   "rage-quit [energies]",
	Short: "Burn energy for a share of the free pool",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := parseU64(args[0])
		if err != nil {
			return err
		}
		return sendTx(cmd, &tx.RageQuitTx{Energies: v})
	},
}
