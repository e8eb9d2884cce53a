package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/go-drift/hostkit/cmd/hostkit/internal/config"
)

// errHelp signals that help was printed and the command should stop.
var errHelp = errors.New("help requested")

// commonFlags are shared by run and validate.
type commonFlags struct {
	configDir string
	logLevel  string
	logFormat string
}

func (c *commonFlags) add(fs *pflag.FlagSet) {
	fs.StringVar(&c.configDir, "config-dir", "", "directory holding hostkit.yaml (default: the scenario's directory)")
	fs.StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn or error")
	fs.StringVar(&c.logFormat, "log-format", "", "log format: text or json")
}

// parseScenarioArgs parses args and returns the single scenario path.
func parseScenarioArgs(cmd *Command, fs *pflag.FlagSet, args []string) (string, error) {
	fs.SetOutput(stderr)
	fs.BoolP("help", "h", false, "show help")
	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			printCommandHelp(cmd, fs.FlagUsages())
			return "", errHelp
		}
		return "", err
	}
	if help, _ := fs.GetBool("help"); help {
		printCommandHelp(cmd, fs.FlagUsages())
		return "", errHelp
	}
	if fs.NArg() != 1 {
		return "", fmt.Errorf("expected exactly one scenario file\n\nUsage: %s", cmd.Usage)
	}
	return fs.Arg(0), nil
}

// resolve loads hostkit.yaml and applies flag overrides.
func (c *commonFlags) resolve(fs *pflag.FlagSet, scenarioPath string) (*config.Resolved, error) {
	dir := c.configDir
	if dir == "" {
		dir = filepath.Dir(scenarioPath)
	}
	cfg, err := config.LoadOptional(dir)
	if err != nil {
		return nil, err
	}
	if fs.Changed("log-level") {
		cfg.Log.Level = c.logLevel
	}
	if fs.Changed("log-format") {
		cfg.Log.Format = c.logFormat
	}
	return cfg.Resolve()
}
