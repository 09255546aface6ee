package serve

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dododb/dodo/cmd/util"
	"github.com/dododb/dodo/rpc/common"
	"github.com/dododb/dodo/rpc/server"
	"github.com/dododb/dodo/rpc/transport/http"
	"github.com/fsnotify/fsnotify"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var Logger = logger.GetLogger("rpc")

var (
	serveCmdConfig = &common.ServerConfig{}
	ServeCmd       = &cobra.Command{
		Use:     "serve",
		Short:   "Start the dodo server",
		Long:    `Start the dodo server with the specified configuration. The configuration can be set via command line flags, environment variables or a config file (--config). The format of the environment variables is DODO_<flag> (e.g. DODO_SNAPSHOT_INTERVAL=15)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(util.InitEnv)

	// add flags
	key := "config"
	ServeCmd.PersistentFlags().String(key, "", util.WrapString("Path of an optional config file (yaml, json or toml). Changes of the log level in this file are applied at runtime"))

	key = "endpoint"
	ServeCmd.PersistentFlags().String(key, "0.0.0.0:8080", util.WrapString("The address on which the API will listen"))

	key = "server-version"
	ServeCmd.PersistentFlags().String(key, "1.0.0", util.WrapString("The version reported by /system/version"))

	key = "snapshot-path"
	ServeCmd.PersistentFlags().String(key, "data/snapshot.json", util.WrapString("Path of the snapshot file"))

	key = "snapshot-interval"
	ServeCmd.PersistentFlags().Int64(key, 30, util.WrapString("Interval in seconds between two automatic snapshots"))

	key = "retention-seconds"
	ServeCmd.PersistentFlags().Int64(key, -1, util.WrapString("Maximum age in seconds of a key. Older keys are not loaded from the snapshot and removed by the cleanup. A negative value disables the retention"))

	key = "cleanup-interval"
	ServeCmd.PersistentFlags().Int64(key, 0, util.WrapString("Interval in seconds between two cleanup runs. Cleanup only runs if a retention is set and this value is positive"))

	key = "webhook-timeout"
	ServeCmd.PersistentFlags().Int64(key, 5, util.WrapString("Timeout in seconds of a single webhook delivery (0 = no timeout)"))

	key = "shutdown-timeout"
	ServeCmd.PersistentFlags().Int64(key, 10, util.WrapString("Time in seconds to wait for in-flight requests on shutdown"))

	key = "log-level"
	ServeCmd.PersistentFlags().String(key, "info", util.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))
}

// processConfig reads the configuration from the command line flags, environment variables
// and the config file and converts them to the server configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// read the config file if one is given
	if path := viper.GetString("config"); path != "" {
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	readConfig(serveCmdConfig)
	return serveCmdConfig.Validate()
}

// readConfig copies the current viper values into config
func readConfig(config *common.ServerConfig) {
	config.Endpoint = viper.GetString("endpoint")
	config.ServerVersion = viper.GetString("server-version")
	config.SnapshotPath = viper.GetString("snapshot-path")
	config.SnapshotIntervalSeconds = viper.GetInt64("snapshot-interval")
	config.RetentionSeconds = viper.GetInt64("retention-seconds")
	config.CleanupIntervalSeconds = viper.GetInt64("cleanup-interval")
	config.WebhookTimeoutSecond = viper.GetInt64("webhook-timeout")
	config.ShutdownTimeoutSecond = viper.GetInt64("shutdown-timeout")
	config.LogLevel = viper.GetString("log-level")
}

// watchConfig applies log level changes of the config file at runtime.
// All other settings require a restart.
func watchConfig() {
	if viper.ConfigFileUsed() == "" {
		return
	}

	viper.OnConfigChange(func(e fsnotify.Event) {
		level := viper.GetString("log-level")
		if err := common.SetLogLevel(level); err != nil {
			Logger.Warningf("config file %s changed, ignoring invalid log level: %v", e.Name, err)
			return
		}
		Logger.Infof("config file %s changed, log level is now %s", e.Name, level)
	})
	viper.WatchConfig()
}

// run starts the dodo server and blocks until SIGINT or SIGTERM is received
func run(_ *cobra.Command, _ []string) error {
	if err := common.InitLoggers(*serveCmdConfig); err != nil {
		return err
	}
	watchConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serv := server.NewRPCServer(
		*serveCmdConfig,
		http.NewHttpServerTransport(),
		nil,
		nil,
	)

	return serv.Serve(ctx)
}
