package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/angelmondragon/pdv-backend/internal/replay"
	"github.com/angelmondragon/pdv-backend/pkg/logger"
)

func newReplayCmd(verbose *bool) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "replay <scenario.yaml>...",
		Short: "Drive a terminal from recorded scan and key events",
		Long: `replay feeds each scenario file through a terminal backed by an in-memory
catalog, sale store and sequencer, then checks the scenario expectations.
The clock is virtual, so "after" delays only shape debounce decisions.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := replay.Options{Logger: logger.Nop()}
			if *verbose {
				opts.Logger = logger.New(logger.Options{ServiceName: "pdvctl", Output: os.Stderr})
			}

			var failures error
			for _, path := range args {
				if err := replayFile(cmd.Context(), cmd.OutOrStdout(), path, opts, asJSON); err != nil {
					failures = multierr.Append(failures, fmt.Errorf("%s: %w", path, err))
				}
			}
			return failures
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

func replayFile(ctx context.Context, out io.Writer, path string, opts replay.Options, asJSON bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	sc, err := replay.Load(path)
	if err != nil {
		return err
	}
	report, runErr := replay.Run(ctx, sc, opts)
	if asJSON {
		if err := writeJSONReport(out, report, runErr); err != nil {
			return err
		}
	} else {
		writeTextReport(out, report, runErr)
	}
	return runErr
}

func writeTextReport(out io.Writer, report replay.Report, runErr error) {
	fmt.Fprintf(out, "scenario: %s\n", report.Scenario)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tACTION\tAT\tLEVEL\tMESSAGE")
	for _, step := range report.Steps {
		level := string(step.Level)
		msg := step.Message
		switch {
		case step.Suppressed:
			level, msg = "-", "suppressed by debounce"
		case level == "":
			level = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", step.Index, step.Action, step.At.Format("15:04:05.000"), level, msg)
	}
	_ = tw.Flush()

	fmt.Fprintf(out, "final state: %s, cart total %s, sales committed %d\n",
		report.Final.State, report.Final.Cart.Total, len(report.Sales))
	for _, sale := range report.Sales {
		fmt.Fprintf(out, "  sale %d: %s via %s (%d lines)\n", sale.Number, sale.Total, sale.PaymentMethod, len(sale.Lines))
	}
	if runErr != nil {
		fmt.Fprintf(out, "FAIL: %v\n", runErr)
		return
	}
	fmt.Fprintln(out, "PASS")
}

type jsonStep struct {
	Index      int    `json:"index"`
	Action     string `json:"action"`
	Level      string `json:"level,omitempty"`
	Message    string `json:"message,omitempty"`
	Error      string `json:"error,omitempty"`
	Suppressed bool   `json:"suppressed,omitempty"`
}

type jsonReport struct {
	Scenario string     `json:"scenario"`
	Passed   bool       `json:"passed"`
	Failure  string     `json:"failure,omitempty"`
	Steps    []jsonStep `json:"steps"`
	Final    any        `json:"final"`
	Sales    any        `json:"sales"`
}

func writeJSONReport(out io.Writer, report replay.Report, runErr error) error {
	doc := jsonReport{
		Scenario: report.Scenario,
		Passed:   runErr == nil,
		Final:    report.Final,
		Sales:    report.Sales,
	}
	if runErr != nil {
		doc.Failure = runErr.Error()
	}
	for _, step := range report.Steps {
		js := jsonStep{
			Index:      step.Index,
			Action:     step.Action,
			Level:      string(step.Level),
			Message:    step.Message,
			Suppressed: step.Suppressed,
		}
		if step.Err != nil {
			js.Error = step.Err.Error()
		}
		doc.Steps = append(doc.Steps, js)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
