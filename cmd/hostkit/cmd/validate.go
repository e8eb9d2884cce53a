package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/go-drift/hostkit/cmd/hostkit/internal/scenario"
)

var validateCommand = &Command{
	Name:  "validate",
	Short: "Check a scenario without running it",
	Long: `Parse a scenario file and check its element tags, controller IDs and step
references. Every problem found is reported, not only the first.`,
	Usage: "hostkit validate <scenario.yaml>",
}

func init() {
	validateCommand.Run = validateScenario
	RegisterCommand(validateCommand)
}

func validateScenario(args []string) error {
	fs := pflag.NewFlagSet("validate", pflag.ContinueOnError)
	path, err := parseScenarioArgs(validateCommand, fs, args)
	if err != nil {
		if errors.Is(err, errHelp) {
			return nil
		}
		return err
	}

	s, err := scenario.Load(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	fmt.Fprintf(stdout, "%s: ok (%d elements, %d steps)\n", path, countElements(s.Elements), len(s.Steps))
	return nil
}

func countElements(specs []scenario.ElementSpec) int {
	n := len(specs)
	for i := range specs {
		n += countElements(specs[i].Children)
	}
	return n
}
