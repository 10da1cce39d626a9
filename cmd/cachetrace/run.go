package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/sarchlab/cachetrace/cache"
	"github.com/sarchlab/cachetrace/config"
	"github.com/sarchlab/cachetrace/monitoring"
	"github.com/sarchlab/cachetrace/recording"
	"github.com/sarchlab/cachetrace/render"
	"github.com/sarchlab/cachetrace/sim"
	"github.com/sarchlab/cachetrace/trace"
)

var (
	configPath  string
	tracePath   string
	dbPath      string
	quiet       bool
	monitorFlag bool
	portNumber  int
	openBrowser bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation over a trace file",
	RunE:  runSimulation,

	SilenceUsage: true,
}

func init() {
	runCmd.Flags().StringVar(&configPath, "config", "",
		"cache configuration file, one level per line")
	runCmd.Flags().StringVar(&tracePath, "trace", "",
		"access trace file, `<op> <address>` per line")
	runCmd.Flags().StringVar(&dbPath, "db", "",
		"record the run into a SQLite database at this path")
	runCmd.Flags().BoolVar(&quiet, "quiet", false,
		"suppress the per-access event log")
	runCmd.Flags().BoolVar(&monitorFlag, "monitor", false,
		"serve the finished run over HTTP")
	runCmd.Flags().IntVar(&portNumber, "port", 0,
		"port for the report server, random when 0")
	runCmd.Flags().BoolVar(&openBrowser, "open", false,
		"open the report server URL in a browser")

	rootCmd.AddCommand(runCmd)
}

// applyEnvDefaults fills unset flags from the environment, typically loaded
// from a .env file.
func applyEnvDefaults() {
	if configPath == "" {
		configPath = os.Getenv("CACHETRACE_CONFIG")
	}
	if tracePath == "" {
		tracePath = os.Getenv("CACHETRACE_TRACE")
	}
	if dbPath == "" {
		dbPath = os.Getenv("CACHETRACE_DB")
	}
}

func runSimulation(cmd *cobra.Command, _ []string) error {
	_ = godotenv.Load()
	applyEnvDefaults()

	if configPath == "" || tracePath == "" {
		return fmt.Errorf("both --config and --trace are required")
	}

	configs, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	src, err := trace.OpenFile(tracePath)
	if err != nil {
		return fmt.Errorf("opening trace: %w", err)
	}
	defer src.Close()

	hierarchy := cache.NewHierarchy(configs)
	simulator := sim.NewSimulator(hierarchy)

	renderer := render.NewRenderer(cmd.OutOrStdout())
	if !quiet {
		simulator.AddHandler(renderer)
	}

	var eventRecorder *recording.EventRecorder
	if dbPath != "" {
		eventRecorder = recording.NewEventRecorder(recording.New(dbPath))
		simulator.AddHandler(eventRecorder)
	}

	report, err := simulator.Run(src)
	if err != nil {
		return fmt.Errorf("simulation aborted: %w", err)
	}

	if eventRecorder != nil {
		eventRecorder.RecordStats(report.Levels)
	}

	renderer.WriteSummary(report.Levels, report.MemoryAccesses)

	if monitorFlag {
		monitor := monitoring.NewMonitor().WithPortNumber(portNumber)
		if openBrowser {
			monitor = monitor.WithBrowser()
		}

		monitor.RegisterReport(report)
		for _, l := range hierarchy.Levels() {
			monitor.RegisterLevel(l)
		}

		return monitor.StartServer()
	}

	return nil
}
