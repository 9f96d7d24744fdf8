package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"promotion/config"
	"promotion/service"

	"github.com/spf13/cobra"
)

func newAssignmentsCommand(ctx context.Context) *cobra.Command {
	assignmentsCmd := &cobra.Command{
		Use:   "assignments",
		Short: "Inspect stored assignments without connecting to Discord",
	}

	assignmentsCmd.AddCommand(&cobra.Command{
		Use:   "export",
		Short: "Print every guild's assignments as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOffline()
			if err != nil {
				return err
			}
			repo, closeRepo, err := openRepository(ctx, cfg, false)
			if err != nil {
				return err
			}
			defer closeRepo()

			return exportAssignments(ctx, repo, cmd.OutOrStdout())
		},
	})

	return assignmentsCmd
}

// exportAssignments writes the merged mapping of every stored guild to w
func exportAssignments(ctx context.Context, repo service.AssignmentRepository, w io.Writer) error {
	store := service.NewAssignmentStore(repo, nil)
	if err := store.Load(ctx); err != nil {
		return fmt.Errorf("failed to load assignments: %w", err)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "    ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(store.Snapshot())
}
