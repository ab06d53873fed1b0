package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"quiz-ocr-llm/src/boxes"
	"quiz-ocr-llm/src/config"
	"quiz-ocr-llm/src/eventloop"
	"quiz-ocr-llm/src/gui"
	"quiz-ocr-llm/src/logutil"
	"quiz-ocr-llm/src/runtimeinit"
	"quiz-ocr-llm/src/session"
	"quiz-ocr-llm/src/singleinstance"
)

var runLog = logutil.Module("main")

func newRunCmd(g *globalOptions, mode string) *cobra.Command {
	short := "Solve the question on screen each time the hotkey is pressed"
	if mode == config.ModeWatch {
		short = "After the hotkey is pressed, solve every new question as it appears"
	}
	return &cobra.Command{
		Use:   mode,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runSolver(ctx, cmd, g, mode)
		},
	}
}

func runSolver(ctx context.Context, cmd *cobra.Command, g *globalOptions, mode string) error {
	rt, err := runtimeinit.Bootstrap(ctx, runtimeinit.Options{
		LoadOptions:  g.loadOptions(),
		Verbose:      g.verbose,
		Ping:         true,
		WithOCR:      true,
		WithCapture:  true,
		ServeMetrics: true,
	})
	if err != nil {
		return err
	}
	defer rt.Close()
	cfg := rt.Config
	watch := mode == config.ModeWatch

	if cfg.InstancePort > 0 {
		guard, err := singleinstance.Acquire(ctx, cfg.InstancePort, mode)
		if err != nil {
			return err
		}
		defer guard.Release()
	}

	selectFn := selectorFunc(rt.Capturer, gui.NewSelector(), cfg.OptionCount, watch)
	regions, created, err := boxes.LoadOrCreate(ctx, cfg.BoxesFile, cfg.RegionCount(mode), selectFn)
	if err != nil {
		return err
	}
	if created {
		runLog.Info().Str("file", cfg.BoxesFile).Int("regions", len(regions)).Msg("calibration saved")
	}
	layout, err := boxes.Assign(regions, watch)
	if err != nil {
		return err
	}

	targets := session.MultiTarget{session.NewConsoleTarget(cmd.OutOrStdout())}
	if cfg.CopyToClipboard {
		targets = append(targets, session.ClipboardTarget{})
	}

	loop, err := eventloop.New(eventloop.Options{
		Mode:   mode,
		Layout: layout,
		Solver: &session.Solver{
			Capturer:          rt.Capturer,
			OCR:               rt.OCR,
			LLM:               rt.LLM,
			Metrics:           rt.Metrics,
			RequireAllOptions: watch,
			SaveCaptures:      cfg.SaveCaptures,
		},
		Target:       targets,
		Metrics:      rt.Metrics,
		PollInterval: cfg.PollInterval,
		StableReads:  cfg.StableReads,
		Deadline:     cfg.SolveDeadline,
	})
	if err != nil {
		return err
	}
	if err := loop.StartHotkey(ctx, cfg.Hotkey); err != nil {
		return err
	}

	if watch {
		fmt.Fprintf(cmd.OutOrStdout(), "Press %s to start watching for questions (again to pause). Ctrl+C quits.\n", cfg.Hotkey)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Press %s to solve the question on screen. Ctrl+C quits.\n", cfg.Hotkey)
	}

	if err := loop.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
