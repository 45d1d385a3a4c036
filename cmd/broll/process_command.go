package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"broll/internal/logging"
	"broll/internal/notifications"
	"broll/internal/queue"
	"broll/internal/workflow"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "process <path>",
		Short: "Run the full pipeline against one video and wait for it to finish",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			absPath, err := validateVideoPath(args[0])
			if err != nil {
				return err
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			store, err := queue.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			item, err := store.NewVideo(cmd.Context(), absPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Processing %s (item #%d)\n", filepath.Base(absPath), item.ID)

			mgr := workflow.NewManagerWithNotifier(cfg, store, logger, notifications.NewService(cfg))
			registerStages(mgr, cfg, store, logger)

			if err := mgr.ProcessOnce(cmd.Context()); err != nil {
				return err
			}

			final, err := store.GetByID(cmd.Context(), item.ID)
			if err != nil {
				return err
			}
			if final == nil {
				return fmt.Errorf("item #%d disappeared from the queue", item.ID)
			}

			switch final.Status {
			case queue.StatusCompleted:
				fmt.Fprintf(out, "Completed: %s\n", final.OutputFile)
			case queue.StatusReview:
				fmt.Fprintf(out, "Needs review: %s\n", final.ReviewReason)
				return fmt.Errorf("item #%d needs review", final.ID)
			case queue.StatusFailed:
				fmt.Fprintf(out, "Failed: %s\n", final.ErrorMessage)
				return fmt.Errorf("item #%d failed", final.ID)
			default:
				return fmt.Errorf("item #%d stopped in state %s", final.ID, final.Status)
			}
			return nil
		},
	}
}
