package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/a64sim/a64sim/api"
	"github.com/a64sim/a64sim/config"
	"github.com/a64sim/a64sim/debugger"
	"github.com/a64sim/a64sim/loader"
	"github.com/a64sim/a64sim/vm"
)

// Version information - can be overridden at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		showHelp    = flag.Bool("help", false, "Show help information")
		configPath  = flag.String("config", "", "Config file path (default: platform config dir)")
		maxCycles   = flag.Uint64("max-cycles", 0, "Maximum CPU cycles before halt (0 = config default)")
		verboseMode = flag.Bool("verbose", false, "Verbose output")

		debugMode = flag.Bool("debug", false, "Start in debugger mode (CLI)")
		tuiMode   = flag.Bool("tui", false, "Use TUI (Text User Interface) debugger")

		apiServer = flag.Bool("api-server", false, "Start HTTP API server mode")
		apiPort   = flag.Int("port", 0, "API server port (0 = config default)")

		enableTrace = flag.Bool("trace", false, "Enable execution trace")
		traceFile   = flag.String("trace-file", "", "Trace output file (default from config)")
		enableStats = flag.Bool("stats", false, "Enable performance statistics")
		statsFile   = flag.String("stats-file", "", "Statistics output file (default from config)")
		statsFormat = flag.String("stats-format", "", "Statistics format (json, csv)")
	)

	flag.Parse()

	if *showVersion {
		fmt.Printf("a64sim emulator %s\n", Version)
		if Commit != "unknown" {
			fmt.Printf("Commit: %s\n", Commit)
		}
		os.Exit(0)
	}
	if *showHelp {
		printHelp()
		os.Exit(0)
	}

	// Load configuration, then let flags override it
	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFrom(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if *maxCycles != 0 {
		cfg.Execution.MaxCycles = *maxCycles
	}
	if *enableTrace {
		cfg.Execution.EnableTrace = true
	}
	if *enableStats {
		cfg.Execution.EnableStats = true
	}
	if *traceFile != "" {
		cfg.Trace.OutputFile = *traceFile
	}
	if *statsFile != "" {
		cfg.Statistics.OutputFile = *statsFile
	}
	if *statsFormat != "" {
		cfg.Statistics.Format = *statsFormat
	}
	if *apiPort != 0 {
		cfg.API.Port = *apiPort
	}

	// API server mode needs no binary argument
	if *apiServer {
		runAPIServer(cfg)
		return
	}

	if flag.NArg() < 1 {
		printHelp()
		os.Exit(1)
	}
	binFile := flag.Arg(0)
	outFile := ""
	if flag.NArg() > 1 {
		outFile = flag.Arg(1)
	}

	machine := vm.NewVM()
	machine.CycleLimit = cfg.Execution.MaxCycles

	if err := loader.LoadBinaryIntoVM(machine, binFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading binary: %v\n", err)
		os.Exit(1)
	}
	if *verboseMode {
		fmt.Printf("Loaded %d bytes from %s\n", machine.ImageEnd, binFile)
	}

	var traceWriter *os.File
	if cfg.Execution.EnableTrace {
		traceWriter, err = os.Create(cfg.Trace.OutputFile) // #nosec G304 -- user-specified trace output path
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating trace file: %v\n", err)
			os.Exit(1)
		}
		defer func() {
			if err := traceWriter.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close trace file: %v\n", err)
			}
		}()
		machine.ExecutionTrace = vm.NewExecutionTrace(traceWriter)
		machine.ExecutionTrace.MaxEntries = cfg.Trace.MaxEntries
	}
	if cfg.Execution.EnableStats {
		machine.Statistics = vm.NewPerformanceStatistics()
		machine.Statistics.Start()
	}

	// Debugger modes
	if *debugMode || *tuiMode {
		dbg := debugger.NewDebugger(machine)
		if *tuiMode {
			if err := debugger.RunTUI(dbg); err != nil {
				fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
				os.Exit(1)
			}
		} else {
			fmt.Println("a64sim debugger - type 'help' for commands")
			if err := debugger.RunCLI(dbg); err != nil {
				fmt.Fprintf(os.Stderr, "Debugger error: %v\n", err)
				os.Exit(1)
			}
		}
		return
	}

	// Direct execution mode
	if err := machine.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Runtime error: %v\n", err)
		os.Exit(1)
	}

	if machine.Statistics != nil {
		machine.Statistics.Stop()
	}
	if machine.ExecutionTrace != nil {
		if err := machine.ExecutionTrace.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "Error flushing trace: %v\n", err)
		}
	}
	if machine.Statistics != nil {
		if err := exportStatistics(machine.Statistics, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error exporting statistics: %v\n", err)
		}
		if *verboseMode {
			fmt.Println(machine.Statistics.String())
		}
	}

	// Final state dump to stdout or the optional output file
	out := os.Stdout
	if outFile != "" {
		out, err = os.Create(outFile) // #nosec G304 -- user-specified output path
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating output file: %v\n", err)
			os.Exit(1)
		}
		defer func() {
			if err := out.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close output file: %v\n", err)
			}
		}()
	}
	if err := machine.DumpState(out); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing state dump: %v\n", err)
		os.Exit(1)
	}
}

func exportStatistics(stats *vm.PerformanceStatistics, cfg *config.Config) error {
	f, err := os.Create(cfg.Statistics.OutputFile) // #nosec G304 -- user-specified stats output path
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	switch cfg.Statistics.Format {
	case "csv":
		return stats.ExportCSV(f)
	default:
		return stats.ExportJSON(f)
	}
}

func runAPIServer(cfg *config.Config) {
	server := api.NewServerWithVersion(cfg.API.Port, Version, Commit)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var shutdownOnce sync.Once
	performShutdown := func() {
		shutdownOnce.Do(func() {
			fmt.Println("\nShutting down API server...")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "Error during shutdown: %v\n", err)
				os.Exit(1)
			}
			fmt.Println("API server stopped")
			os.Exit(0)
		})
	}

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "API server error: %v\n", err)
			os.Exit(1)
		}
	}()

	<-sigChan
	performShutdown()
}

func printHelp() {
	fmt.Printf(`a64sim emulator %s

Usage: emulate [options] <input-binary> [<output-file>]
       emulate -api-server [-port N]

Runs a flat little-endian instruction image and prints the final
processor state to standard output, or to <output-file> if given.

Options:
  -help              Show this help message
  -version           Show version information
  -config FILE       Config file path
  -max-cycles N      Maximum CPU cycles before halt
  -verbose           Enable verbose output
  -debug             Start in debugger mode (CLI)
  -tui               Start in TUI debugger mode
  -api-server        Start HTTP API server mode (no binary required)
  -port N            API server port (used with -api-server)

Tracing & Statistics:
  -trace             Enable execution trace
  -trace-file FILE   Trace output file
  -stats             Enable performance statistics
  -stats-file FILE   Statistics output file
  -stats-format FMT  Statistics format: json, csv

Examples:
  emulate program.bin
  emulate program.bin state.out
  emulate -tui program.bin
  emulate -trace -stats program.bin
  emulate -api-server -port 3000
`, Version)
}
