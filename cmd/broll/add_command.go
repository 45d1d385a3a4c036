package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"broll/internal/config"
	"broll/internal/queue"
	"broll/internal/workflow"
)

var videoFileExtensions = map[string]struct{}{
	".mp4":  {},
	".mov":  {},
	".mkv":  {},
	".avi":  {},
	".webm": {},
}

func validateVideoPath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("file does not exist: %s", absPath)
		}
		return "", fmt.Errorf("inspect file: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", absPath)
	}

	ext := strings.ToLower(filepath.Ext(info.Name()))
	if _, ok := videoFileExtensions[ext]; !ok {
		return "", fmt.Errorf("unsupported file extension %q", ext)
	}
	return absPath, nil
}

func newAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <path>",
		Short: "Add a video file to the processing queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			absPath, err := validateVideoPath(args[0])
			if err != nil {
				return err
			}

			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				if existing, err := store.FindBySource(cmd.Context(), absPath); err != nil {
					return err
				} else if existing != nil && !workflow.ItemFinished(existing) {
					fmt.Fprintf(cmd.OutOrStdout(), "Already queued as item #%d (%s)\n", existing.ID, existing.Status)
					return nil
				}

				item, err := store.NewVideo(cmd.Context(), absPath)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Queued %s as item #%d\n", filepath.Base(absPath), item.ID)
				return nil
			})
		},
	}
}
