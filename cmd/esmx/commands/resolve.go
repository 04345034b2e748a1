package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/esmx/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// resolvedView is the YAML shape printed by the resolve command.
type resolvedView struct {
	Root         string         `yaml:"root"`
	VersionRange string         `yaml:"versionRange"`
	CachePath    string         `yaml:"cachePath"`
	Options      domain.Options `yaml:"options"`
}

func (c *CLI) newResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve [dir]",
		Short: "Resolve and print the project configuration governing a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")

			cfg, err := c.app.Resolve(cmd.Context(), targetDir(args), force)
			if err != nil {
				return err
			}
			if cfg == nil {
				return zerr.With(domain.ErrNoProject, "path", targetDir(args))
			}

			out, err := yaml.Marshal(resolvedView{
				Root:         cfg.RootPath,
				VersionRange: cfg.VersionRange,
				CachePath:    cfg.CachePath(),
				Options:      cfg.Options,
			})
			if err != nil {
				return zerr.Wrap(err, "cannot render configuration")
			}
			cmd.Print(string(out))
			return nil
		},
	}
	cmd.Flags().BoolP("force", "f", false, "Resolve a best-effort configuration even without an opt-in")
	return cmd
}
