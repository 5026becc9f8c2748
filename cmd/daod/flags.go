package main

import "github.com/spf13/cobra"

const (
	FlagHome      = "home"
	FlagChainID   = "chain-id"
	FlagOverwrite = "overwrite"
	FlagBalance   = "balance"
)

func urlFlag(cmd *cobra.Command, url *string) {
	cmd.PersistentFlags().StringVarP(url, "url", "u", "http://127.0.0.1:26657", "daod rpc url")
}

func keyFlag(cmd *cobra.Command, key *string) {
	cmd.PersistentFlags().StringVarP(key, "skeyPath", "s", "./config/priv_validator_key.json", "private key path")
}
