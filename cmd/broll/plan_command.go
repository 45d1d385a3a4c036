package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"broll/internal/broll"
	"broll/internal/config"
	"broll/internal/queue"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	planCmd := &cobra.Command{
		Use:   "plan",
		Short: "Inspect insertion plans",
	}

	planCmd.AddCommand(newPlanShowCommand(ctx))
	return planCmd
}

func newPlanShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <itemID|path>",
		Short: "Show the insertion plan for a queue item or plan file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			planPath, err := resolvePlanPath(ctx, cmd, args[0])
			if err != nil {
				return err
			}

			plan, err := broll.Load(planPath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, sectionHeader(out, fmt.Sprintf("Plan: %s", planPath)))
			fmt.Fprintf(out, "Video duration: %.1fs  Events: %d  Fallbacks: %d\n",
				plan.VideoDuration, len(plan.Events), plan.FallbackCount)

			if len(plan.Events) == 0 {
				return nil
			}

			rows := make([][]string, 0, len(plan.Events))
			for i, event := range plan.Events {
				fetched := event.Image.LocalPath != ""
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					fmt.Sprintf("%.1fs", event.StartTime),
					fmt.Sprintf("%.1fs", event.End()),
					event.Keyword,
					event.Image.Provider,
					string(event.Effect),
					string(event.Position),
					yesNo(fetched),
				})
			}
			table := renderTable(
				[]string{"#", "Start", "End", "Keyword", "Provider", "Effect", "Position", "Fetched"},
				rows,
				[]columnAlignment{alignRight, alignRight, alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
			)
			fmt.Fprintln(out, table)
			return nil
		},
	}
}

func resolvePlanPath(ctx *commandContext, cmd *cobra.Command, arg string) (string, error) {
	if id, err := strconv.ParseInt(arg, 10, 64); err == nil {
		var planPath string
		err := ctx.withStore(func(_ *config.Config, store *queue.Store) error {
			item, err := store.GetByID(cmd.Context(), id)
			if err != nil {
				return err
			}
			if item == nil {
				return fmt.Errorf("item %d not found", id)
			}
			if item.PlanPath == "" {
				return fmt.Errorf("item %d has no plan yet (status %s)", id, item.Status)
			}
			planPath = item.PlanPath
			return nil
		})
		return planPath, err
	}

	if _, err := os.Stat(arg); err != nil {
		return "", fmt.Errorf("plan file %s: %w", arg, err)
	}
	return arg, nil
}
