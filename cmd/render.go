package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"photomesh/internal/engine"
	"photomesh/internal/logging"
	"photomesh/internal/progress"
	"photomesh/internal/render"
	"photomesh/internal/tui"
	"photomesh/internal/validate"
)

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cfg.InputDir = args[0]
	cfg.OutputFile = args[1]

	consoleLevel := zap.NewAtomicLevel()
	logger, closeLog, err := logging.New(logging.Options{
		Verbose:      cfg.Verbose,
		LogFile:      cfg.LogPath(),
		ConsoleLevel: &consoleLevel,
	})
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer closeLog()
	logger = logger.With(zap.String("run_id", uuid.NewString()))

	req := cfg.Request()
	agg := &progress.Aggregator{}

	opts := []render.Option{
		render.WithValidator(validate.New(logger)),
		render.WithAggregator(agg),
	}
	if !cfg.Verbose && logging.IsTerminal(os.Stderr) {
		d := &progressDisplay{
			console: &consoleLevel,
			start: func() func() {
				return tui.Start(agg, req.Detail, os.Stderr).Stop
			},
		}
		opts = append(opts, render.WithStateHook(d.onState))
	}

	res := render.New(engine.NewProcess(cfg.Engine, logger), logger, opts...).Run(context.Background(), req)
	if res.ExitCode() != 0 {
		return errReported
	}

	fmt.Fprintln(cmd.ErrOrStderr(), runSummary(res).Render())
	fmt.Fprintln(cmd.OutOrStdout(), res.ModelPath)
	return nil
}

// progressDisplay owns the terminal while the orchestrator is rendering.
// Console logging below error level is held back for that window so log
// lines do not tear the redraw; the log file still receives everything.
type progressDisplay struct {
	console *zap.AtomicLevel
	start   func() (stop func())
	stop    func()
	restore zapcore.Level
}

func (d *progressDisplay) onState(s render.State) {
	switch {
	case s == render.Rendering && d.stop == nil:
		d.restore = d.console.Level()
		d.console.SetLevel(zapcore.ErrorLevel)
		d.stop = d.start()
	case s != render.Rendering && d.stop != nil:
		d.stop()
		d.stop = nil
		d.console.SetLevel(d.restore)
	}
}

func runSummary(res render.Result) tui.SummaryTable {
	table := tui.SummaryTable{Title: "Render"}
	if res.Report != nil {
		table = reportSummary(*res.Report)
		table.Title = "Render"
	} else {
		table.Rows = append(table.Rows, tui.SummaryRow{Label: "Input checks", Value: "skipped", Warn: true})
	}
	table.Rows = append(table.Rows,
		tui.SummaryRow{Label: "Elapsed", Value: res.Elapsed.Round(time.Second).String()},
		tui.SummaryRow{Label: "Model", Value: res.ModelPath},
	)
	return table
}

func reportSummary(r validate.Report) tui.SummaryTable {
	return tui.SummaryTable{
		Title: "Input checks",
		Rows: []tui.SummaryRow{
			{Label: "Images", Value: fmt.Sprintf("%d", r.Total)},
			{Label: "Readable", Value: fmt.Sprintf("%d", r.Checked)},
			{Label: "Unreadable", Value: fmt.Sprintf("%d", r.Unreadable), Warn: r.Unreadable > 0},
			{Label: "Below minimum short side", Value: fmt.Sprintf("%d", r.LowResolution), Warn: r.LowResolution > 0},
		},
		Notes: r.Warnings,
	}
}
