package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/ArowuTest/ema-randomizer/internal/config"
	"github.com/ArowuTest/ema-randomizer/internal/models"
)

type runFlags struct {
	dryRun         bool
	abortOnInvalid bool
	boundScope     string
	maxAttempts    int
	mock           bool
}

func newRunCmd() *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Perform one assignment run over every participant",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := flags.apply(cmd, cfg); err != nil {
				return err
			}

			svc, _, cleanup, err := buildService(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			report, err := svc.Run(cmd.Context())
			if err != nil {
				return err
			}
			printReport(report)
			if len(report.Failures) > 0 {
				return fmt.Errorf("%d participant(s) failed validation", len(report.Failures))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "draw and log values without updating participants")
	cmd.Flags().BoolVar(&flags.abortOnInvalid, "abort-on-invalid", false, "stop the whole run at the first participant with an invalid category count")
	cmd.Flags().StringVar(&flags.boundScope, "bound-scope", "", "where the draw bound is read from: participant or category")
	cmd.Flags().IntVar(&flags.maxAttempts, "max-attempts", 0, "random picks tried before scanning for a free value")
	cmd.Flags().BoolVar(&flags.mock, "mock", false, "run against a generated in-memory participant directory")
	return cmd
}

// apply overrides configuration with flags the user set explicitly
func (f *runFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	if cmd.Flags().Changed("dry-run") {
		cfg.Randomizer.DryRun = f.dryRun
	}
	if cmd.Flags().Changed("abort-on-invalid") {
		cfg.Randomizer.AbortOnInvalid = f.abortOnInvalid
	}
	if cmd.Flags().Changed("bound-scope") {
		cfg.Randomizer.BoundScope = f.boundScope
	}
	if cmd.Flags().Changed("max-attempts") {
		cfg.Randomizer.MaxAttempts = f.maxAttempts
	}
	if cmd.Flags().Changed("mock") {
		cfg.MDH.MockAPI = f.mock
	}
	return cfg.Validate()
}

func printReport(report *models.RunReport) {
	log.Printf("Run %s: %d participants, %d processed, %d draws, %d resets, %d skipped categories",
		report.RunID, report.Participants, report.Processed, report.Draws, report.Resets, report.Skipped)
	for _, failure := range report.Failures {
		log.Printf("  participant %s: %s=%q: %s", failure.ParticipantID, failure.Field, failure.Value, failure.Message)
	}
}
