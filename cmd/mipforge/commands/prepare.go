package commands

import (
	"github.com/spf13/cobra"

	"github.com/neurosift/mipforge/internal/pipeline"
)

func (c *CLI) newPrepareCmd() *cobra.Command {
	var fromQueue bool
	cmd := &cobra.Command{
		Use:   "prepare [packages...]",
		Short: "Acquire sources, resolve paths, and build prepared package dirs",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				c.cfg.Packages = args
			}
			p := pipeline.NewPreparer(c.cfg)
			if fromQueue {
				return p.RunFromQueue(cmd.Context(), c.cfg.Queue())
			}
			return p.Run(cmd.Context())
		},
	}
	cmd.Flags().BoolVar(&c.cfg.Force, "force", c.cfg.Force, "rebuild even when matching metadata is already published")
	cmd.Flags().IntVar(&c.cfg.Parallel, "parallel", c.cfg.Parallel, "number of packages to prepare concurrently")
	cmd.Flags().BoolVar(&fromQueue, "from-queue", false, "prepare the packages named by queued rebuild requests")
	return cmd
}
