package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/scormlens/pkg/config"
)

// configCommand creates the configuration command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the default configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.configPath
			if path == "" {
				var err error
				if path, err = config.DefaultPath(); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		Long: `Print the effective configuration: the configuration file merged over the
built-in defaults. Redirect the output to create a starting config file.`,
		Example: `  scormlens config show > "$(scormlens config path)"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.config.Write(cmd.OutOrStdout())
		},
	})

	return cmd
}
