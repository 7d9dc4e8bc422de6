package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/reveal/pkg/pipeline"
	"github.com/matzehuels/reveal/pkg/store"
)

func (c *CLI) snapshotsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "snapshots",
		Aliases: []string{"snap"},
		Short:   "List and delete saved layout snapshots",
	}
	cmd.AddCommand(c.snapshotsListCommand())
	cmd.AddCommand(c.snapshotsDeleteCommand())
	return cmd
}

func (c *CLI) snapshotsListCommand() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "list [require-map.json | url]",
		Short: "List snapshots of a document, newest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var source string
			if len(args) == 1 {
				source = args[0]
			}
			return c.runSnapshotsList(cmd.Context(), source, all)
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "list snapshots of every document")
	return cmd
}

func (c *CLI) runSnapshotsList(ctx context.Context, source string, all bool) error {
	var docHash string
	if !all {
		_, hash, err := c.loader().Load(ctx, pipeline.Options{Source: source})
		if err != nil {
			return err
		}
		docHash = hash
	}

	st, err := c.newStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()
	snaps, err := st.List(ctx, docHash)
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		printInfo("No snapshots")
		return nil
	}
	printTable([]string{"id", "name", "created", "nodes"}, snapshotRows(snaps))
	return nil
}

func snapshotRows(snaps []*store.Snapshot) [][]string {
	rows := make([][]string, len(snaps))
	for i, s := range snaps {
		name := s.Name
		if name == "" {
			name = "—"
		}
		rows[i] = []string{
			s.ID,
			name,
			s.CreatedAt.Local().Format(time.DateTime),
			fmt.Sprint(len(s.Layout.Positions)),
		}
	}
	return rows
}

func (c *CLI) snapshotsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete snapshots",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := c.newStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()
			for _, id := range args {
				if err := st.Delete(ctx, id); err != nil {
					return err
				}
			}
			printSuccess("Deleted %d snapshots", len(args))
			return nil
		},
	}
}
