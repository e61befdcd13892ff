// clinic is an interactive terminal client for a clinic appointment
// service. It signs the user in against the service's token endpoint,
// keeps the issued credentials in a local session file so a restart
// resumes the session, and presents the doctor directory with an
// appointment booking form.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/spec-kit/clinic-client/internal/api"
	"github.com/spec-kit/clinic-client/internal/config"
	"github.com/spec-kit/clinic-client/internal/observability"
	"github.com/spec-kit/clinic-client/internal/session"
	"github.com/spec-kit/clinic-client/internal/ui"
	"github.com/spec-kit/clinic-client/internal/workflow"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var apiURL string
	var sessionFile string
	var envFile string
	var logOutput string

	flagSet := pflag.NewFlagSet("clinic", pflag.ContinueOnError)
	flagSet.StringVar(&apiURL, "api-url", "", "base URL of the clinic API (default: CLINIC_API_BASE_URL)")
	flagSet.StringVar(&sessionFile, "session-file", "", "path to the persisted session file")
	flagSet.StringVar(&envFile, "env-file", "", "load environment settings from this file")
	flagSet.StringVar(&logOutput, "log-output", "", "write JSON log records to this file (the terminal stays clean)")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	cfg, err := config.Load(envFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	// Flags win over the environment.
	if apiURL != "" {
		cfg.API.BaseURL = apiURL
	}
	if sessionFile != "" {
		cfg.Session.FilePath = sessionFile
	}
	if logOutput != "" {
		cfg.Logger.OutputPath = logOutput
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	metrics := observability.NewMetrics()
	client, err := api.NewClient(api.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout(),
		Logger:  logger,
		Metrics: metrics,
	})
	if err != nil {
		return err
	}

	store := session.NewStore(cfg.Session.FilePath, logger)
	guard := session.NewGuard(store)
	directory := workflow.NewDirectory(client, store, logger)

	model := ui.New(ui.Deps{
		API:       client,
		Store:     store,
		Guard:     guard,
		Auth:      workflow.NewAuthWorkflow(client, store, logger),
		Directory: directory,
		Booking:   workflow.NewBookingWorkflow(client, store, directory, logger),
		Logger:    logger,
	})

	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err = program.Run()

	for _, sample := range metrics.Snapshot() {
		logger.Info("request totals",
			zap.String("endpoint", sample.Key),
			zap.Int64("count", sample.Count),
			zap.Duration("total_duration", sample.TotalDuration))
	}
	return err
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `Clinic appointment client — interactive terminal UI.

Signs in against the clinic API's token endpoint, then shows the
doctor directory and your scheduled appointments. A saved session is
resumed on startup until the access credential expires.

Usage:
  clinic [flags]

Flags:
%s`, flagSet.FlagUsages())
}
