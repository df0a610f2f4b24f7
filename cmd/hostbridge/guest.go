package main

import (
	"context"
	"fmt"
	"os"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/tetratelabs/wazero/sys"

	"github.com/wippyai/hostbridge/wasmhost"
)

// runGuest instantiates a WASI command module with the bridge host module
// available and runs its _start export to completion.
func runGuest(ctx context.Context, host *wasmhost.Host, wasmFile string, memoryPages uint32) error {
	data, err := os.ReadFile(wasmFile)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	runtimeCfg := wazero.NewRuntimeConfig().WithCloseOnContextDone(true)
	if memoryPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(memoryPages)
	}
	rt := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)
	defer func() { _ = rt.Close(ctx) }()

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		return fmt.Errorf("instantiate WASI: %w", err)
	}
	if _, err := host.Instantiate(ctx, rt); err != nil {
		return fmt.Errorf("instantiate host module: %w", err)
	}

	modCfg := wazero.NewModuleConfig().
		WithName("").
		WithArgs(wasmFile).
		WithStdin(os.Stdin).
		WithStdout(os.Stdout).
		WithStderr(os.Stderr)
	mod, err := rt.InstantiateWithConfig(ctx, data, modCfg)
	if err != nil {
		if exit, ok := err.(*sys.ExitError); ok && exit.ExitCode() == 0 {
			return nil
		}
		return fmt.Errorf("run guest: %w", err)
	}
	return mod.Close(ctx)
}
