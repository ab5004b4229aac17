package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/derekprior/doubles/internal/config"
	"github.com/derekprior/doubles/internal/excel"
	"github.com/derekprior/doubles/internal/generator"
	"github.com/derekprior/doubles/internal/report"
	"github.com/derekprior/doubles/internal/schedule"
	"github.com/derekprior/doubles/internal/validator"
	"github.com/derekprior/doubles/internal/worker"
)

const defaultConfigFile = "doubles.yaml"

func resolveConfigPath(configFlag string) (string, error) {
	if configFlag != "" {
		return configFlag, nil
	}
	if _, err := os.Stat(defaultConfigFile); err == nil {
		return defaultConfigFile, nil
	}
	return "", fmt.Errorf("no config file found. Either create %s in the current directory or pass --config", defaultConfigFile)
}

func newLogger(level string, jsonOutput bool) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if jsonOutput {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts)), nil
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "doubles",
		Short: "Doubles round-robin schedule generator and checker",
	}

	var logLevel string
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	var initOutputPath string
	initCmd := &cobra.Command{
		Use:          "init",
		Short:        "Create a starter doubles.yaml in the current directory",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(initOutputPath)
		},
	}
	initCmd.Flags().StringVarP(&initOutputPath, "output", "o", defaultConfigFile, "Output path for the config file")

	scheduleCmd := &cobra.Command{
		Use:   "schedule",
		Short: "Generate and validate schedules",
	}

	var configFile string
	scheduleCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file (default: doubles.yaml in current directory)")

	var outputFile string
	var attempts int
	generateCmd := &cobra.Command{
		Use:          "generate",
		Short:        "Generate a schedule from a config file",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := resolveConfigPath(configFile)
			if err != nil {
				return err
			}
			logger, err := newLogger(logLevel, false)
			if err != nil {
				return err
			}
			return runGenerate(cmd.Context(), logger, configPath, outputFile, attempts)
		},
	}
	generateCmd.Flags().StringVarP(&outputFile, "output", "o", "schedule.xlsx", "Output file (.xlsx or .json)")
	generateCmd.Flags().IntVar(&attempts, "attempts", 0, "Independent generations to run, keeping the best (default: one per worker)")

	validateCmd := &cobra.Command{
		Use:          "validate <schedule.xlsx|schedule.json>",
		Short:        "Check a schedule for unmet pairs, double bookings and back-to-back rounds",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(args[0])
		},
	}

	var serveAddr string
	serveCmd := &cobra.Command{
		Use:          "serve",
		Short:        "Serve the validate and generate HTTP API",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := resolveConfigPath(configFile)
			if err != nil {
				return err
			}
			logger, err := newLogger(logLevel, true)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), logger, configPath, serveAddr)
		},
	}
	serveCmd.Flags().StringVar(&configFile, "config", "", "Path to config file (default: doubles.yaml in current directory)")
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: server.addr from config)")

	scheduleCmd.AddCommand(generateCmd, validateCmd)
	rootCmd.AddCommand(initCmd, scheduleCmd, serveCmd)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func runInit(outputPath string) error {
	if _, err := os.Stat(outputPath); err == nil {
		return fmt.Errorf("%s already exists; remove it first or use -o to write elsewhere", outputPath)
	}

	if err := os.WriteFile(outputPath, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Printf("✓ Created %s\n", outputPath)
	return nil
}

const configTemplate = `# Doubles Round-Robin Configuration
# =================================
# This file defines who plays and how big the schedule grid is.

# Roster groups. Players in the same group partner each other; a roster
# with a single group lets anyone partner anyone. Names must be unique
# across all groups.
#
# level:  1 (beginner) to 20 (strongest). Games between similar levels
#         are preferred.
# gender: male or female.
roster:
  - name: Club
    players:
      - { name: Alice, level: 12, gender: female }
      - { name: Bob, level: 10, gender: male }
      - { name: Carol, level: 8, gender: female }
      - { name: Dave, level: 11, gender: male }
      - { name: Erin, level: 9, gender: female }
      - { name: Frank, level: 13, gender: male }
      - { name: Grace, level: 7, gender: female }
      - { name: Heidi, level: 10, gender: female }

# Courts available in every round, and how many rounds to play.
courts: 2
rounds: 7

# Generator settings.
# "hill_climb" starts from a random deal and keeps the best of 'samples'
# random swaps per iteration until nothing improves.
# "shuffle" deals players at random with no optimisation.
# A non-zero seed makes runs reproducible.
generator:
  strategy: hill_climb
  iterations: 60
  samples: 10000
  seed: 0

# Number of generator workers. 'schedule generate' runs one attempt per
# worker by default and keeps the schedule with the fewest findings.
workers: 2

# HTTP API settings for 'doubles serve'.
server:
  addr: ":8080"
`

func runGenerate(ctx context.Context, logger *slog.Logger, configPath, outputPath string, attempts int) error {
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if attempts <= 0 {
		attempts = cfg.Workers
	}

	sup := worker.NewSupervisor(
		worker.FromStrategy(cfg.Generator.Strategy, generator.OptionsFromConfig(cfg.Generator)),
		cfg.Workers,
		logger,
	)
	if err := sup.Start(ctx); err != nil {
		return err
	}
	defer sup.Terminate()
	if err := sup.Ready(ctx); err != nil {
		return fmt.Errorf("starting workers: %w", err)
	}

	req := generator.Request{Roster: cfg.Teams(), Courts: cfg.Courts, Rounds: cfg.Rounds}
	fmt.Printf("Generating %d rounds on %d courts for %d players (%d attempts on %d workers, %s)...\n",
		cfg.Rounds, cfg.Courts, len(cfg.AllPlayers()), attempts, sup.Size(), cfg.Generator.Strategy)

	responses := make([]worker.Response, attempts)
	g, gctx := errgroup.WithContext(ctx)
	for i := range attempts {
		g.Go(func() error {
			resp, err := sup.Dispatch(gctx, req)
			responses[i] = resp
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("generating: %w", err)
	}

	best, result, err := bestResponse(responses)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Best of %d attempts from worker %d in %s\n\n", attempts, best.Worker, best.Elapsed.Round(time.Millisecond))

	s := best.Outcome.Result
	if _, err := report.Render(os.Stdout, result, s.Appearances()); err != nil {
		return err
	}

	if err := saveSchedule(outputPath, s, result); err != nil {
		return err
	}
	fmt.Printf("\n✓ Schedule saved to %s\n", outputPath)
	return nil
}

// bestResponse picks the successful response with the lowest penalty. If
// every attempt failed, the first failure message is returned.
func bestResponse(responses []worker.Response) (worker.Response, validator.Result, error) {
	var (
		best       worker.Response
		bestResult validator.Result
		found      bool
		firstErr   string
	)
	for _, resp := range responses {
		if !resp.Outcome.OK() {
			if firstErr == "" {
				firstErr = resp.Outcome.Message
			}
			continue
		}
		result := validator.Validate(resp.Outcome.Result)
		if !found || result.Penalty() < bestResult.Penalty() {
			best, bestResult, found = resp, result, true
		}
	}
	if !found {
		if firstErr == "" {
			firstErr = "no attempts were run"
		}
		return worker.Response{}, validator.Result{}, fmt.Errorf("generation failed: %s", firstErr)
	}
	return best, bestResult, nil
}

func runValidate(schedulePath string) error {
	s, err := loadSchedule(schedulePath)
	if err != nil {
		return err
	}

	summary, err := report.Render(os.Stdout, validator.Validate(s), s.Appearances())
	if err != nil {
		return err
	}
	if !summary.Clean() {
		return fmt.Errorf("%d errors, %d warnings found", summary.Errors, summary.Warnings)
	}
	return nil
}

func isExcel(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".xlsx")
}

// loadSchedule reads an .xlsx workbook or a JSON paste-format file.
func loadSchedule(path string) (schedule.Schedule, error) {
	if isExcel(path) {
		s, err := excel.ReadSchedule(path)
		if err != nil {
			return nil, fmt.Errorf("reading schedule: %w", err)
		}
		return s, nil
	}
	return schedule.LoadFile(path)
}

func saveSchedule(path string, s schedule.Schedule, result validator.Result) error {
	if !isExcel(path) {
		return s.SaveFile(path)
	}
	f, err := excel.Generate(s, result)
	if err != nil {
		return fmt.Errorf("generating Excel: %w", err)
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving file: %w", err)
	}
	return nil
}
