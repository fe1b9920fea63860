package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/TheZeroSlave/zapsentry"
	"github.com/getsentry/sentry-go"
	"github.com/rachelyongies/Lockedin-sub005/pkg/lockedin"
	"github.com/rachelyongies/Lockedin-sub005/pkg/util"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	configPath := flag.String("config", "", "config file path, defaults to ~/.lockedin/config.json")
	flag.Parse()

	config, err := util.LoadConfig(*configPath)
	if err != nil {
		panic(err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	if config.Sentry != "" {
		client, err := sentry.NewClient(sentry.ClientOptions{Dsn: config.Sentry})
		if err != nil {
			panic(err)
		}
		core, err := zapsentry.NewCore(zapsentry.Configuration{
			Level: zapcore.ErrorLevel,
		}, zapsentry.NewSentryClientFromClient(client))
		if err != nil {
			panic(err)
		}
		logger = zapsentry.AttachCoreToLogger(core, logger)
	}
	defer logger.Sync()

	daemon, err := lockedin.New(config, logger)
	if err != nil {
		logger.Fatal("failed to assemble daemon", zap.Error(err))
	}
	if err := daemon.Start(); err != nil {
		logger.Fatal("failed to start daemon", zap.Error(err))
	}
	defer daemon.Stop()

	// waiting system signal
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGQUIT, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
}
