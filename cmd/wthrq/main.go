// Command wthrq answers forecast extremum queries read from stdin.
//
// Input is a short script:
//
//	TARGET NOMINATIM Bren Hall, Irvine, CA
//	WEATHER NWS
//	TEMPERATURE FEELS C 36 MIN
//	HUMIDITY 5 MAX
//	NO MORE QUERIES
//	REVERSE NOMINATIM
//
// Any source may be replaced by FILE <path> to read a saved response, and
// TARGET PLACES <name> resolves the target from the local gazetteer built by
// "wthrq import-places".
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/swelljoe/wthrq/internal/config"
	"github.com/swelljoe/wthrq/internal/console"
	"github.com/swelljoe/wthrq/internal/failure"
	"github.com/swelljoe/wthrq/internal/geocode"
	"github.com/swelljoe/wthrq/internal/logging"
	"github.com/swelljoe/wthrq/internal/remote"
	"github.com/swelljoe/wthrq/internal/weather"
)

const serviceName = "wthrq"

type options struct {
	envFile  string
	logLevel string
	delay    time.Duration
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		log, _ := logging.New(os.Stderr, serviceName, "error")
		log.Error().Err(err).Msg("wthrq failed")
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "wthrq",
		Short: "Answer forecast extremum queries for a place",
		Long: `wthrq reads a target, a forecast source, a list of queries and a reverse
geocoding source from stdin, and prints one line per query.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQueries(cmd, opts)
		},
	}

	root.PersistentFlags().StringVar(&opts.envFile, "env-file", "",
		"load environment variables from this file instead of ./.env")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "",
		"log level (trace, debug, info, warn, error); overrides LOG_LEVEL")
	root.Flags().DurationVar(&opts.delay, "delay", time.Second,
		"pause before every API request; overrides FETCH_DELAY")

	root.AddCommand(newImportPlacesCmd(opts))
	return root
}

// setup loads configuration, applies flag overrides and builds the logger.
func setup(cmd *cobra.Command, opts *options) (*config.Config, zerolog.Logger, error) {
	boot, _ := logging.New(cmd.ErrOrStderr(), serviceName, "warn")

	var envFiles []string
	if opts.envFile != "" {
		envFiles = append(envFiles, opts.envFile)
	}

	cfg, err := config.Load(boot, envFiles...)
	if err != nil {
		return nil, boot, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if flags.Changed("delay") {
		cfg.FetchDelay = opts.delay
	}
	if err := cfg.Validate(); err != nil {
		return nil, boot, err
	}

	log, err := logging.New(cmd.ErrOrStderr(), serviceName, cfg.LogLevel)
	if err != nil {
		return nil, boot, err
	}
	return cfg, log, nil
}

func runQueries(cmd *cobra.Command, opts *options) error {
	cfg, log, err := setup(cmd, opts)
	if err != nil {
		return err
	}

	script, err := console.ReadScript(cmd.InOrStdin())
	if err != nil {
		return err
	}

	client := remote.NewClient(remote.Options{
		UserAgent: cfg.UserAgent,
		Referer:   cfg.Referer,
		Timeout:   cfg.HTTPTimeout,
		Delay:     cfg.FetchDelay,
	}, log)

	session := console.NewSession(
		geocode.NewNominatim(client, cfg.NominatimBaseURL),
		weather.NewNWS(client, cfg.NWSBaseURL),
		cfg.DBPath,
		log,
	)

	out := cmd.OutOrStdout()
	lines, err := session.Run(cmd.Context(), script)
	if err != nil {
		if failure.Report(out, err) {
			log.Debug().Err(err).Msg("run failed")
			return nil
		}
		return err
	}

	for _, line := range lines {
		fmt.Fprintln(out, line)
	}
	return nil
}
