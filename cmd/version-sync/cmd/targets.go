package cmd

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/version-sync/internal/config"
)

// attachTargetsCommand adds a `targets` subcommand listing the rewritten files.
func attachTargetsCommand(root *cobra.Command) {
	root.AddCommand(&cobra.Command{
		Use:   "targets",
		Short: "Print the files, patterns and templates the version is written to.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeTargets(cmd, config.Default(config.DefaultRoot))
		},
	})
}

// writeTargets encodes cfg as YAML to the command output.
func writeTargets(cmd *cobra.Command, cfg *config.Config) error {
	encoder := yaml.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent(2) //nolint:mnd // Two-space indentation.

	if err := encoder.Encode(cfg); err != nil {
		return err
	}

	return encoder.Close()
}
