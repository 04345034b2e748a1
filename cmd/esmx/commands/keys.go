package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys [dir]",
		Short: "List the artifact cache entries of the project governing a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := c.app.Keys(cmd.Context(), targetDir(args))
			if err != nil {
				return err
			}
			for _, key := range keys {
				cmd.Println(key)
			}
			return nil
		},
	}
}
