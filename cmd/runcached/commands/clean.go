package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *CLI) newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove expired cache entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := c.resolveConfig(cmd)
			if err != nil {
				return err
			}

			all, _ := cmd.Flags().GetBool("all")
			removed, err := c.components.App.Clean(cfg.CacheDir, all)
			if err != nil {
				return err
			}

			c.components.Logger.Info(fmt.Sprintf("removed %d cache entries", removed))
			return nil
		},
	}
	cmd.Flags().BoolP("all", "a", false, "Remove every entry, not just expired ones")
	return cmd
}
