package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/oshokin/version-sync/internal/config"
	"github.com/oshokin/version-sync/internal/logger"
	"github.com/oshokin/version-sync/internal/service/synchronizer"
	"github.com/oshokin/version-sync/internal/version"
)

var (
	// logLevel is the minimum level of log messages.
	logLevel string

	// errUnknownLogLevel is returned for an unsupported --log-level value.
	errUnknownLogLevel = errors.New("unknown log level")

	// rootCmd represents the base command for synchronizing the project version.
	rootCmd = &cobra.Command{
		Use:   "version-sync",
		Short: "Set a new version number in every versioned project file",
		Long: `Reads the current version number from Jypeli/Properties/AssemblyInfo.cs,
asks for a new one and writes it to the assembly info files, the MonoDevelop
add-in descriptors and the installer script.

Paths are relative to the parent of the working directory, so run the tool from
the bin directory of the repository. Enter an empty line to keep the current
version.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			level, ok := logger.ParseLogLevel(logLevel)
			if !ok {
				return fmt.Errorf("%w: %s", errUnknownLogLevel, logLevel)
			}

			logger.SetLevel(level)

			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Ctrl+C keeps its default behaviour and ends the process at the prompt.
			ctx := cmd.Context()

			cfg := config.Default(config.DefaultRoot)

			options := &synchronizer.Options{
				Config:     cfg,
				Input:      synchronizer.NewReaderLineSource(cmd.InOrStdin()),
				Output:     cmd.OutOrStdout(),
				MarkerPath: filepath.Join(cfg.Root, config.MarkerFilename),
			}

			result, err := synchronizer.Run(ctx, options)
			if err != nil {
				return err
			}

			if result.Err != nil {
				logger.WarnKV(ctx, "Some files were not updated", "error", result.Err)
			}

			return nil
		},
	}
)

// Execute runs the version-sync CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)
	attachTargetsCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(rootCmd.ErrOrStderr(), err)
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
}
