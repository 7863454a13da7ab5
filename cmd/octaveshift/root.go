package main

import (
	"strings"

	"github.com/leandrodaf/midi-octave-shifter/internal/logger"
	"github.com/leandrodaf/midi-octave-shifter/sdk/contracts"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var logLevel string

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:           "octaveshift",
	Short:         "Transpose a MIDI keyboard by octaves",
	Long:          `Route a MIDI input device to a synthesizer output port, shifting every note by a number of octaves.`,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
}

// newLogger builds the zap logger at the level requested on the command line.
func newLogger() (contracts.Logger, contracts.LogLevel, error) {
	level, err := parseLogLevel(logLevel)
	if err != nil {
		return nil, 0, err
	}
	log := logger.NewZapLogger()
	log.SetLevel(level)
	return log, level, nil
}

func parseLogLevel(s string) (contracts.LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return contracts.DebugLevel, nil
	case "", "info":
		return contracts.InfoLevel, nil
	case "warn", "warning":
		return contracts.WarnLevel, nil
	case "error":
		return contracts.ErrorLevel, nil
	default:
		return 0, errors.Errorf("unknown log level %q", s)
	}
}
