package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cometbft/cometbft/rpc/client/http"
	"github.com/spf13/cobra"
)

var queryUrl string

var queryCmd = &cobra.Command{
	Use:     "query",
	Short:   "Read the DAO ledger from a node",
	Aliases: []string{"q"},
}

func init() {
	urlFlag(queryCmd, &queryUrl)
	queryCmd.AddCommand(
		queryPathCmd("pools", "Pools, totals and params", "/pools/", 0),
		queryPathCmd("members", "One member, or the roster without an address", "/members/", -1),
		queryPathCmd("access", "An access proposal by index", "/access/", 1),
		queryPathCmd("project", "A project proposal by index", "/project/", 1),
		queryPathCmd("queue", "Project proposals waiting for settlement", "/queue/", 0),
		queryPathCmd("balance", "Balance and nonce of an address", "/balance/", 1),
	)
}

func queryJSON(ctx context.Context, cli *http.HTTP, path string, data []byte, out any) error {
	res, err := cli.ABCIQuery(ctx, path, data)
	if err != nil {
		return err
	}
	if res.Response.Code != 0 {
		return fmt.Errorf("query %s fail with code %d: %s", path, res.Response.Code, res.Response.Log)
	}
	return json.Unmarshal(res.Response.Value, out)
}

// queryPathCmd builds a query command taking exactly nargs arguments, or at
// most one when nargs is negative.
func queryPathCmd(use, short, path string, nargs int) *cobra.Command {
	args := cobra.ExactArgs(nargs)
	if nargs < 0 {
		args = cobra.MaximumNArgs(1)
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := http.New(queryUrl, "/websocket")
			if err != nil {
				return err
			}
			var data []byte
			if len(args) > 0 {
				data = []byte(args[0])
			}
			var out json.RawMessage
			if err = queryJSON(context.Background(), cli, path, data, &out); err != nil {
				return err
			}
			pretty, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return err
			}
			cmd.Println(string(pretty))
			return nil
		},
	}
}
