package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/openfroyo/froyo-merge/cmd/froyo-merge/commands"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Version information (set via ldflags during build)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

func main() {
	level := setupLogging(os.Getenv("LOG_LEVEL"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	info := commands.BuildInfo{Version: Version, Commit: Commit, BuildDate: BuildDate}
	if err := commands.Execute(ctx, info, level); err != nil {
		log.Error().Err(err).Msg("Command execution failed")
		os.Exit(1)
	}
}

// setupLogging points the global logger at stderr. A valid LOG_LEVEL sets its
// level and is returned so each command's telemetry logger follows it; an
// unset or unknown value keeps info and returns "".
func setupLogging(raw string) string {
	level, ok := logLevel(raw)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level)
	if !ok {
		return ""
	}
	return level.String()
}

// logLevel parses the levels the telemetry config accepts.
func logLevel(raw string) (zerolog.Level, bool) {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(raw)))
	if err != nil {
		return zerolog.InfoLevel, false
	}
	switch level {
	case zerolog.TraceLevel, zerolog.DebugLevel, zerolog.InfoLevel,
		zerolog.WarnLevel, zerolog.ErrorLevel, zerolog.FatalLevel:
		return level, true
	default:
		return zerolog.InfoLevel, false
	}
}
