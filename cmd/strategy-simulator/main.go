package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/iwvelando/strategy-simulator/internal/config"
	"github.com/iwvelando/strategy-simulator/internal/guidance"
	"github.com/iwvelando/strategy-simulator/internal/kpi"
	"github.com/iwvelando/strategy-simulator/internal/levers"
	"github.com/iwvelando/strategy-simulator/internal/optimizer"
	"github.com/iwvelando/strategy-simulator/internal/tutorial"
	"github.com/iwvelando/strategy-simulator/pkg/constants"
	"github.com/iwvelando/strategy-simulator/pkg/output"
	"github.com/iwvelando/strategy-simulator/pkg/validation"
	"go.uber.org/zap"
)

// assignments collects repeated -set name=value flags.
type assignments []string

func (a *assignments) String() string {
	return strings.Join(*a, ",")
}

func (a *assignments) Set(value string) error {
	*a = append(*a, value)
	return nil
}

// loadConfiguration reads the config file, falling back to the built-in
// defaults when the default file is absent.
func loadConfiguration(path string, explicit bool) (*config.Configuration, error) {
	if _, err := os.Stat(path); err != nil && errors.Is(err, fs.ErrNotExist) && !explicit {
		return config.LoadDefaults()
	}
	return config.LoadConfiguration(path)
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

// run executes the CLI and returns the process exit code. Every return path
// flushes the logger.
func run(args []string, stdout io.Writer) int {
	// Process command line flags first to get config location
	flags := flag.NewFlagSet("strategy-simulator", flag.ContinueOnError)
	var sets assignments
	configLocation := flags.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flags.String("output-format", "", "type of output override: pretty, csv, json")
	logLevel := flags.String("log-level", "", "log level override (debug, info, warn, error)")
	flags.Var(&sets, "set", "lever assignment name=value, applied in order (repeatable)")
	seek := flags.String("seek", "", "find the lever value that meets a goal, as lever:goal (goal is revenue or margin)")
	sensitivity := flags.Bool("sensitivity", false, "show the KPI change of one step up and down for every lever")
	stepIndex := flags.Int("step", -1, "show the tutorial step at this index (0-6)")
	strategy := flags.String("strategy", "", "strategy text sent with a guidance request")
	askGuidance := flags.Bool("guidance", false, "request guidance for -step and -strategy")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	explicitConfig := false
	flags.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			explicitConfig = true
		}
	})

	conf, err := loadConfiguration(*configLocation, explicitConfig)
	if err != nil {
		fmt.Fprintf(stdout, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		return 1
	}

	// Initialize logging based on config and CLI override
	logger, err := config.NewLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Fprintf(stdout, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		return 1
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}

	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Error(err.Error(),
			zap.String("op", "main"),
		)
		return 1
	}

	// Validate configuration and display any warnings
	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	model := conf.StartingModel()
	for _, assignment := range sets {
		name, value, err := levers.ParseAssignment(assignment)
		if err != nil {
			logger.Error("invalid lever assignment",
				zap.String("op", "main"),
				zap.String("assignment", assignment),
				zap.Error(err),
			)
			return 1
		}
		if err := model.SetLever(name, value); err != nil {
			logger.Error("failed to set lever",
				zap.String("op", "main"),
				zap.String("lever", string(name)),
				zap.Error(err),
			)
			return 1
		}
	}

	constantsTable := conf.Constants()
	runner := optimizer.NewRunner(logger, constantsTable, conf.Targets)

	if *seek != "" {
		leverName, goalName, found := strings.Cut(*seek, ":")
		if !found {
			goalName = string(optimizer.GoalRevenue)
		}
		name, err := levers.ParseName(leverName)
		if err != nil {
			logger.Error("invalid seek lever", zap.String("op", "main"), zap.Error(err))
			return 1
		}
		goal, err := optimizer.ParseGoal(goalName)
		if err != nil {
			logger.Error("invalid seek goal", zap.String("op", "main"), zap.Error(err))
			return 1
		}
		summary, err := runner.Seek(model, name, goal)
		if err != nil {
			logger.Error("optimizer execution failed", zap.String("op", "main"), zap.Error(err))
			return 1
		}
		if summary.Converged {
			_ = model.SetLever(name, summary.Value)
		}
		output.PrettySeek(stdout, summary)
		fmt.Fprintln(stdout)
	}

	report := kpi.Evaluate(model, constantsTable, conf.Targets)

	// Handle output.
	switch outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormat(stdout, report)
	case constants.OutputFormatCSV:
		err = output.CsvFormat(stdout, report)
	case constants.OutputFormatJSON:
		err = output.JSONFormat(stdout, report)
	}
	if err != nil {
		logger.Error("failed to write output", zap.String("op", "main"), zap.Error(err))
		return 1
	}

	if *sensitivity {
		fmt.Fprintln(stdout)
		output.PrettySensitivity(stdout, runner.Sensitivity(model))
	}

	if *stepIndex >= 0 || *askGuidance {
		index := *stepIndex
		if index < 0 {
			index = 0
		}
		step, err := tutorial.Lookup(index)
		if err != nil {
			logger.Error("invalid tutorial step", zap.String("op", "main"), zap.Int("step", index), zap.Error(err))
			return 1
		}
		fmt.Fprintf(stdout, "\n--- %s ---\n%s\n", step.Title, step.Description)

		if *askGuidance {
			client := guidance.NewClient(conf.GuidanceClientConfig(), logger)
			text, err := client.GenerateGuidance(context.Background(), step, *strategy)
			if err != nil {
				logger.Error("guidance request failed", zap.String("op", "main"), zap.Error(err))
				fmt.Fprintf(stdout, "\n%s\n", guidance.UserMessage)
				return 1
			}
			fmt.Fprintf(stdout, "\n%s\n", text)
		}
	}
	return 0
}
