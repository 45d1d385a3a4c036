package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"broll/internal/deps"
	"broll/internal/preflight"
)

func newProvidersCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "Show image provider credential status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			rows := [][]string{
				{"pexels", "keyword search", yesNo(strings.TrimSpace(cfg.Providers.PexelsAPIKey) != "")},
				{"pixabay", "keyword search", yesNo(strings.TrimSpace(cfg.Providers.PixabayAPIKey) != "")},
				{"unsplash", "keyword search (no key required)", "yes"},
				{"picsum", "placeholder fallback", "yes"},
			}
			table := renderTable(
				[]string{"Provider", "Role", "Configured"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			)
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, table)

			result := preflight.CheckProviders(cfg)
			fmt.Fprintln(out, result.Detail)
			return nil
		},
	}
}

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check external binary dependencies",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			statuses := preflight.CheckSystemDeps(cfg)
			rows := make([][]string, 0, len(statuses))
			for _, status := range statuses {
				state := "ok"
				if !status.Available {
					state = "missing"
				}
				rows = append(rows, []string{
					status.Name,
					status.Command,
					state,
					yesNo(status.Optional),
					status.Detail,
				})
			}
			table := renderTable(
				[]string{"Dependency", "Command", "Status", "Optional", "Detail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
			)
			fmt.Fprintln(cmd.OutOrStdout(), table)

			if missing := deps.MissingRequired(statuses); len(missing) > 0 {
				return fmt.Errorf("missing required dependencies: %s", strings.Join(missing, ", "))
			}
			return nil
		},
	}
}
