package main

import (
	"context"
	"errors"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/eelloooii/json-response-standard/pkg/config"
	pkgerrors "github.com/eelloooii/json-response-standard/pkg/errors"
	"github.com/eelloooii/json-response-standard/pkg/logger"
)

const serviceName = "jsonresponse"

var errConformanceFailed = errors.New("conformance suite failed")

// app holds what every subcommand needs once config is loaded.
type app struct {
	cfg  *config.Config
	logg *logger.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var logLevel string

	root := &cobra.Command{
		Use:           "jsonresponse",
		Short:         "Build and verify standard {status, message, data} JSON envelopes",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.bootstrap(cmd, logLevel)
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")

	root.AddCommand(newBuildCmd(a), newConformanceCmd(a))
	return root
}

func (a *app) bootstrap(cmd *cobra.Command, logLevel string) error {
	logg := logger.New(logger.Options{ServiceName: serviceName, Output: cmd.ErrOrStderr()})

	if err := godotenv.Load(); err != nil {
		logg.Debug(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		return err
	}
	if logLevel != "" {
		cfg.App.LogLevel = logLevel
	}

	a.cfg = cfg
	a.logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
		Output:      cmd.ErrOrStderr(),
	})
	return nil
}

func exitCode(err error) int {
	if typed := pkgerrors.As(err); typed != nil {
		return pkgerrors.MetadataFor(typed.Code()).ExitCode
	}
	return 1
}
