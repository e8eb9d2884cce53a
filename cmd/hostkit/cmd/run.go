package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/go-drift/hostkit/cmd/hostkit/internal/scenario"
)

var runCommand = &Command{
	Name:  "run",
	Short: "Run a lifecycle scenario",
	Long: `Build the scenario's element tree, execute its steps and print the final
state of every controller.

With --trace every connect, disconnect, destroy and context delivery is
printed as it happens, prefixed with the step index. Settings not given on
the command line are read from hostkit.yaml next to the scenario.`,
	Usage: "hostkit run <scenario.yaml> [flags]",
}

func init() {
	runCommand.Run = runScenario
	RegisterCommand(runCommand)
}

func runScenario(args []string) error {
	var (
		common        commonFlags
		trace         bool
		verbose       bool
		maxDrainTicks int
	)
	fs := pflag.NewFlagSet("run", pflag.ContinueOnError)
	common.add(fs)
	fs.BoolVar(&trace, "trace", false, "print lifecycle events as they happen")
	fs.BoolVar(&verbose, "verbose", false, "include stack traces in error reports")
	fs.IntVar(&maxDrainTicks, "max-drain-ticks", 0, "tick budget for drain steps")

	path, err := parseScenarioArgs(runCommand, fs, args)
	if err != nil {
		if errors.Is(err, errHelp) {
			return nil
		}
		return err
	}

	cfg, err := common.resolve(fs, path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if fs.Changed("trace") {
		cfg.Trace = trace
	}
	if fs.Changed("max-drain-ticks") {
		if maxDrainTicks <= 0 {
			return fmt.Errorf("--max-drain-ticks must be positive (got %d)", maxDrainTicks)
		}
		cfg.MaxDrainTicks = maxDrainTicks
	}

	logger := newLogger(stderr, cfg.Format, cfg.Level)
	restore := installLogger(logger, verbose)
	defer restore()

	s, err := scenario.Load(path)
	if err != nil {
		return err
	}

	opts := scenario.Options{
		Logger:        logger,
		MaxDrainTicks: cfg.MaxDrainTicks,
	}
	if cfg.Trace {
		opts.Trace = stdout
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := scenario.NewRunner(opts).Run(ctx, s)
	if err != nil {
		return err
	}

	if cfg.Trace {
		fmt.Fprintln(stdout)
	}
	scenario.WriteSummary(stdout, res)
	logger.Info("scenario passed", "name", s.Name, "steps", len(s.Steps), "events", len(res.Events))
	return nil
}
