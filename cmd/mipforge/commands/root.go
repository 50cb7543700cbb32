// Package commands implements the mipforge CLI command tree.
package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/neurosift/mipforge/internal/pipeline"
)

// CLI carries the pipeline config the commands run against. Defaults come
// from the environment; flags override.
type CLI struct {
	cfg     pipeline.Config
	rootCmd *cobra.Command
}

// New builds the command tree.
func New() *CLI {
	c := &CLI{cfg: pipeline.FromEnv()}
	c.rootCmd = &cobra.Command{
		Use:           "mipforge",
		Short:         "Build, bundle, and publish MATLAB packages",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	c.rootCmd.PersistentFlags().StringVar(&c.cfg.BuildType, "build-type", c.cfg.BuildType, "build type used to select build variants")
	c.rootCmd.PersistentFlags().StringVar(&c.cfg.PackagesDir, "packages-dir", c.cfg.PackagesDir, "directory holding package specifications")

	c.rootCmd.AddCommand(
		c.newPrepareCmd(),
		c.newBundleCmd(),
		c.newUploadCmd(),
		c.newIndexCmd(),
		c.newQueueCmd(),
	)
	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}
