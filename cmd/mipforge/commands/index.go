package commands

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/neurosift/mipforge/internal/index"
)

func (c *CLI) newIndexCmd() *cobra.Command {
	var upload bool
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Assemble index.json and index.html from published metadata",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.cfg.ObjectStore()
			if err != nil {
				return err
			}
			a := &index.Assembler{Store: store, Prefix: c.cfg.KeyPrefix, BaseURL: c.cfg.BaseURL}
			idx, err := a.Assemble(cmd.Context())
			if err != nil {
				return err
			}
			if err := idx.WriteFiles(c.cfg.IndexDir); err != nil {
				return err
			}
			log.Printf("indexed %d package(s) into %s", idx.TotalPackages, c.cfg.IndexDir)
			if upload {
				return idx.Upload(cmd.Context(), store, c.cfg.KeyPrefix)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&c.cfg.IndexDir, "out", c.cfg.IndexDir, "output directory for index files")
	cmd.Flags().BoolVar(&upload, "upload", false, "also upload the index files to the object store")
	return cmd
}
