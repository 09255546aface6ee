package cmd

import (
	"fmt"
	"os"

	"github.com/dododb/dodo/cmd/kv"
	"github.com/dododb/dodo/cmd/pubsub"
	"github.com/dododb/dodo/cmd/serve"
	"github.com/spf13/cobra"
)

const (
	Version = "0.4.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "dodo",
		Short: "in-memory key-value store with webhooks",
		Long: fmt.Sprintf(`dodo (v%s)

An in-memory JSON key-value store with snapshot persistence,
key retention and webhook notifications on every update.`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of dodo",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("dodo v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(kv.KeyValueCommands)
	RootCmd.AddCommand(pubsub.PubSubCommands)
	RootCmd.AddCommand(versionCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
