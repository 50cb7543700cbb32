package commands

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/neurosift/mipforge/internal/pipeline"
)

func (c *CLI) newBundleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bundle",
		Short: "Zip prepared package dirs into .mhl artifacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			arts, err := pipeline.BundleAll(c.cfg.PreparedDir, c.cfg.BundledDir)
			if err != nil {
				return err
			}
			log.Printf("bundled %d artifact(s) into %s", len(arts), c.cfg.BundledDir)
			return nil
		},
	}
	cmd.Flags().StringVar(&c.cfg.BundledDir, "out", c.cfg.BundledDir, "output directory for .mhl artifacts")
	return cmd
}

func (c *CLI) newUploadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload bundled artifacts and metadata to the object store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.cfg.ObjectStore()
			if err != nil {
				return err
			}
			arts, err := pipeline.ScanBundled(c.cfg.BundledDir)
			if err != nil {
				return err
			}
			return pipeline.UploadAll(cmd.Context(), store, c.cfg.KeyPrefix, arts, c.cfg.DryRun)
		},
	}
	cmd.Flags().BoolVar(&c.cfg.DryRun, "dry-run", c.cfg.DryRun, "list what would be uploaded without writing")
	return cmd
}
