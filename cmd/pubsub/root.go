package pubsub

import (
	"github.com/dododb/dodo/cmd/util"
	"github.com/dododb/dodo/rpc/client"
	"github.com/spf13/cobra"
)

var (
	rpcPubSub client.RPCPubSub

	// PubSubCommands represents the subscription command group
	PubSubCommands = &cobra.Command{
		Use:               "pubsub",
		Short:             "Manage webhook subscriptions",
		PersistentPreRunE: setupPubSubClient,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitEnv)

	// Add common RPC flags to the pubsub command
	util.SetupRPCClientFlags(PubSubCommands)

	// Add subcommands
	PubSubCommands.AddCommand(subscribeCmd)
	PubSubCommands.AddCommand(unsubscribeCmd)
	PubSubCommands.AddCommand(listCmd)
	PubSubCommands.AddCommand(listenCmd)
}

// setupPubSubClient initializes the RPC pub/sub client
func setupPubSubClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	var err error
	rpcPubSub, err = client.NewRPCPubSub(
		util.GetClientConfig(),
		util.GetTransport(),
	)
	return err
}
