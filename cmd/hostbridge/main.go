package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/wippyai/hostbridge"
	"github.com/wippyai/hostbridge/bridge"
	"github.com/wippyai/hostbridge/config"
	"github.com/wippyai/hostbridge/envelope"
	"github.com/wippyai/hostbridge/event"
	"github.com/wippyai/hostbridge/marshal"
	"github.com/wippyai/hostbridge/testbed"
	"github.com/wippyai/hostbridge/wasmhost"
)

func main() {
	var (
		configFile  = flag.String("config", "", "Path to YAML configuration file")
		wasmFile    = flag.String("wasm", "", "Run a guest module against the bridge instead of reading stdin")
		memoryPages = flag.Uint("memory-pages", 0, "Guest memory limit in 64KiB pages (0 for the wazero default)")
		verbose     = flag.Bool("v", false, "Log debug output to stderr")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	log, err := newLogger(*verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(*configFile, *wasmFile, uint32(*memoryPages), *interactive); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configFile, wasmFile string, memoryPages uint32, interactive bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	eng, err := newEngine(configFile)
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	switch {
	case interactive:
		return runInteractive(ctx, eng)
	case wasmFile != "":
		return runGuest(ctx, wasmhost.New(eng), wasmFile, memoryPages)
	default:
		return serve(ctx, eng, os.Stdin, os.Stdout, isTerminal(os.Stdin))
	}
}

// newLogger installs a logger on every bridge package. Without -v only
// warnings and errors reach stderr.
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	log, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	bridge.SetLogger(log.Named("bridge"))
	envelope.SetLogger(log.Named("envelope"))
	event.SetLogger(log.Named("event"))
	marshal.SetLogger(log.Named("marshal"))
	testbed.SetLogger(log.Named("testbed"))
	wasmhost.SetLogger(log.Named("wasmhost"))
	return log, nil
}

// newEngine builds an engine with the testbed types registered and the
// configuration file, if any, applied on top.
func newEngine(configFile string) (*bridge.Engine, error) {
	cfg := &config.Config{}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	app := &hostbridge.StaticContext{
		App:    &testbed.App{Name: "hostbridge"},
		Window: &testbed.Window{Title: "console"},
	}
	eng := bridge.New(app, cfg.Options()...)
	if err := testbed.Register(eng); err != nil {
		_ = eng.Close()
		return nil, fmt.Errorf("register testbed: %w", err)
	}
	if err := cfg.Apply(eng); err != nil {
		_ = eng.Close()
		return nil, err
	}
	return eng, nil
}
