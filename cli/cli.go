// Package cli wires the lockedinctl command tree against a running daemon's
// operator endpoint.
package cli

import (
	"github.com/TheZeroSlave/zapsentry"
	"github.com/getsentry/sentry-go"
	"github.com/rachelyongies/Lockedin-sub005/cli/commands"
	"github.com/rachelyongies/Lockedin-sub005/pkg/rpcclient"
	"github.com/rachelyongies/Lockedin-sub005/pkg/util"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func Run(version string) error {
	var cmd = &cobra.Command{
		Use: "lockedinctl - operator CLI for the lockedin swap daemon",
		Run: func(c *cobra.Command, args []string) {
			c.HelpFunc()(c, args)
		},
		Version:           version,
		DisableAutoGenTag: true,
	}

	config, err := util.LoadConfig(util.DefaultConfigPath())
	if err != nil {
		return err
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	if config.Sentry != "" {
		client, err := sentry.NewClient(sentry.ClientOptions{Dsn: config.Sentry})
		if err != nil {
			return err
		}
		cfg := zapsentry.Configuration{
			Level: zapcore.ErrorLevel,
		}
		core, err := zapsentry.NewCore(cfg, zapsentry.NewSentryClientFromClient(client))
		if err != nil {
			return err
		}
		logger = zapsentry.AttachCoreToLogger(core, logger)
		defer logger.Sync()
	}

	rpcClient := rpcclient.NewClient(config.RPC.User, config.RPC.Pass, "http", config.RPC.Listen)

	cmd.AddCommand(commands.Health(rpcClient))
	cmd.AddCommand(commands.Addresses(rpcClient))
	cmd.AddCommand(commands.List(rpcClient))
	cmd.AddCommand(commands.Status(rpcClient))
	return cmd.Execute()
}
