package cmd

import (
	"github.com/netrixframework/dtnroute/cmd/simulate"
	"github.com/netrixframework/dtnroute/config"
	"github.com/spf13/cobra"
)

// RootCmd returns the root cobra command of the routing tool
func RootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dtnroute",
		Short: "Tool to simulate and inspect next-hop decision engines for opportunistic networks",
	}
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.PersistentFlags().StringVarP(&config.ConfigPath, "config", "c", "config.json", "Config file path")
	cmd.AddCommand(simulate.SimulateCmd())
	cmd.AddCommand(simulate.DefaultsCmd())
	return cmd
}
