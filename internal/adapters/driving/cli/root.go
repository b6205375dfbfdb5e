// Package cli implements the syllabusmatch command line with cobra.
package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/syllabusmatch/internal/core/ports/driving"
	"github.com/custodia-labs/syllabusmatch/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var verbose bool

// Services injected by main before Execute.
var (
	matchingService driving.MatchingService
	corpusService   driving.CorpusService
	settingsService driving.SettingsService
	metricsHandler  http.Handler
)

var rootCmd = &cobra.Command{
	Use:   "syllabusmatch",
	Short: "Match uploaded syllabi to existing course offerings",
	Long: `syllabusmatch reads a course syllabus, extracts its identity (course code,
title, term, year, university) and decides whether it belongs to a course
offering that is already known, should be confirmed by the student, or
starts a new one.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print matching steps to stderr")
}

// Services holds the driving ports the commands call.
type Services struct {
	Matching driving.MatchingService
	Corpus   driving.CorpusService
	Settings driving.SettingsService
	Metrics  http.Handler
}

// SetServices injects the services used by the commands.
func SetServices(s Services) {
	matchingService = s.Matching
	corpusService = s.Corpus
	settingsService = s.Settings
	metricsHandler = s.Metrics
}

// SetVersion overrides the reported version.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command. An interrupt cancels the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}
