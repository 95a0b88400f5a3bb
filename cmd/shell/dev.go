package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"go.uber.org/zap"

	"github.com/filipecabaco/ex-tauri-sub000/event"
	"github.com/filipecabaco/ex-tauri-sub000/host"
	"github.com/filipecabaco/ex-tauri-sub000/shellconfig"
)

// runSidecar runs the configured dev server until it exits or ctx is done,
// announcing its lifecycle on the event hub so connected webviews can react.
func runSidecar(ctx context.Context, cfg shellconfig.Config, disp *host.Dispatcher, logger *zap.Logger) error {
	cmd := exec.CommandContext(ctx, cfg.Dev.Command[0], cfg.Dev.Command[1:]...)
	cmd.Dir = cfg.Dev.Dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = os.Environ()
	for k, v := range cfg.Dev.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start dev server: %w", err)
	}

	logger.Info("dev server started",
		zap.Int("pid", cmd.Process.Pid),
		zap.Strings("command", cfg.Dev.Command))
	disp.Hub().Emit("shell://process-started", event.TargetAny(), map[string]any{
		"pid": cmd.Process.Pid,
		"url": cfg.Dev.URL,
	})

	err := cmd.Wait()
	code := cmd.ProcessState.ExitCode()
	disp.Hub().Emit("shell://process-exited", event.TargetAny(), map[string]any{
		"pid":  cmd.Process.Pid,
		"code": code,
	})

	if ctx.Err() != nil {
		logger.Info("dev server stopped", zap.Int("code", code))
		return nil
	}
	if err != nil {
		return fmt.Errorf("dev server exited: %w", err)
	}
	logger.Info("dev server exited", zap.Int("code", code))
	return nil
}
