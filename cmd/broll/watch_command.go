package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"broll/internal/daemon"
	"broll/internal/logging"
	"broll/internal/notifications"
	"broll/internal/preflight"
	"broll/internal/queue"
	"broll/internal/workflow"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch the incoming directory and process videos as they arrive",
		RunE: func(cmd *cobra.Command, args []string) error {
			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			var failures []string
			for _, result := range preflight.RunAll(signalCtx, cfg) {
				if !result.Passed {
					failures = append(failures, fmt.Sprintf("%s: %s", result.Name, result.Detail))
				}
			}
			if len(failures) > 0 {
				for _, failure := range failures {
					fmt.Fprintln(cmd.ErrOrStderr(), "preflight:", failure)
				}
				return fmt.Errorf("%d preflight check(s) failed", len(failures))
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			pidPath := filepath.Join(cfg.Paths.LogDir, "brolld.pid")
			if err := writePIDFile(pidPath); err != nil {
				return fmt.Errorf("write pid file: %w", err)
			}
			defer os.Remove(pidPath)

			store, err := queue.Open(cfg)
			if err != nil {
				logger.Error("open queue store", logging.Error(err))
				return err
			}
			defer store.Close()

			mgr := workflow.NewManagerWithNotifier(cfg, store, logger, notifications.NewService(cfg))
			registerStages(mgr, cfg, store, logger)

			d, err := daemon.New(cfg, store, logger, mgr)
			if err != nil {
				return fmt.Errorf("create daemon: %w", err)
			}
			defer d.Close()

			if err := d.Start(signalCtx); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (Ctrl+C to stop)\n", cfg.Paths.IncomingDir)
			<-signalCtx.Done()
			logger.Info("broll daemon shutting down")
			d.Stop()
			return nil
		},
	}
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
