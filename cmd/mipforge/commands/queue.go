package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/neurosift/mipforge/internal/queue"
)

func (c *CLI) newQueueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and edit the rebuild queue",
	}
	cmd.AddCommand(c.newQueueListCmd(), c.newQueueAddCmd(), c.newQueueClearCmd())
	return cmd
}

func (c *CLI) newQueueListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List queued rebuild requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := c.cfg.Queue()
			items, err := q.List(cmd.Context())
			if err != nil {
				return err
			}
			stats, err := q.Stats(cmd.Context())
			if err != nil {
				return err
			}
			for _, req := range items {
				age := ""
				if req.EnqueuedAt > 0 {
					age = time.Unix(req.EnqueuedAt, 0).UTC().Format(time.RFC3339)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\tattempts=%d\t%s\n",
					req.Package, req.Version, req.BuildType, req.Attempts, age)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d request(s), oldest %ds\n", stats.Length, stats.OldestAge)
			return nil
		},
	}
}

func (c *CLI) newQueueAddCmd() *cobra.Command {
	var version string
	cmd := &cobra.Command{
		Use:   "add <package>",
		Short: "Enqueue a rebuild request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.cfg.Queue().Enqueue(cmd.Context(), queue.Request{
				Package:   args[0],
				Version:   version,
				BuildType: c.cfg.BuildType,
			})
		},
	}
	cmd.Flags().StringVar(&version, "version", "", "package version to record on the request")
	return cmd
}

func (c *CLI) newQueueClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Drop all queued rebuild requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.cfg.Queue().Clear(cmd.Context())
		},
	}
}
