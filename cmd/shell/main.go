// Command shell runs the bridge host of the desktop shell: it serves the
// websocket bridge the webview connects to and, in dev mode, supervises the
// sidecar development server.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/filipecabaco/ex-tauri-sub000/callback"
	"github.com/filipecabaco/ex-tauri-sub000/channel"
	"github.com/filipecabaco/ex-tauri-sub000/event"
	"github.com/filipecabaco/ex-tauri-sub000/host"
	"github.com/filipecabaco/ex-tauri-sub000/shellconfig"
	"github.com/filipecabaco/ex-tauri-sub000/transport"
)

var (
	configPath string
	verbose    bool
)

func main() {
	root := &cobra.Command{
		Use:           "shell",
		Short:         "Desktop shell bridge host",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "shell.yaml", "path to the shell configuration file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(serveCmd(), devCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the bridge socket and wait",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return runBridge(ctx, cfg, logger, nil)
		},
	}
}

func devCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dev",
		Short: "Serve the bridge socket and supervise the dev server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			if len(cfg.Dev.Command) == 0 {
				return fmt.Errorf("dev.command is not configured in %s", configPath)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return runBridge(ctx, cfg, logger, func(ctx context.Context, disp *host.Dispatcher) error {
				return runSidecar(ctx, cfg, disp, logger)
			})
		},
	}
}

// setup loads configuration and wires the logger into every bridge package.
func setup() (shellconfig.Config, *zap.Logger, error) {
	cfg, err := shellconfig.Load(configPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return shellconfig.Config{}, nil, err
		}
		cfg = shellconfig.Default()
	}

	var logger *zap.Logger
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return shellconfig.Config{}, nil, err
	}

	callback.SetLogger(logger.Named("callback"))
	channel.SetLogger(logger.Named("channel"))
	event.SetLogger(logger.Named("event"))
	host.SetLogger(logger.Named("host"))
	transport.SetLogger(logger.Named("transport"))

	return cfg, logger, nil
}

// runBridge serves the bridge socket until ctx is done, optionally running
// a supervised sidecar alongside it.
func runBridge(ctx context.Context, cfg shellconfig.Config, logger *zap.Logger, sidecar func(context.Context, *host.Dispatcher) error) error {
	disp := host.NewDispatcher()
	defer disp.Close()

	mux := http.NewServeMux()
	mux.Handle(cfg.Bridge.Path, transport.NewServer(disp))

	server := &http.Server{
		Addr:    cfg.Bridge.Addr,
		Handler: mux,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("bridge listening",
			zap.String("addr", cfg.Bridge.Addr),
			zap.String("path", cfg.Bridge.Path))
		disp.Hub().Emit("shell://ready", event.TargetAny(), map[string]any{
			"addr": cfg.Bridge.Addr,
		})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if sidecar != nil {
		g.Go(func() error {
			return sidecar(ctx, disp)
		})
	}

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return err
	}
	logger.Info("bridge stopped")
	return nil
}
