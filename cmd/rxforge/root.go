package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rootOptions are the global flags and the configuration they select.
type rootOptions struct {
	cfgFile string
	verbose bool
	v       *viper.Viper
}

// logLevel returns the level selected by --verbose.
func (o *rootOptions) logLevel() slog.Level {
	if o.verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// newRootCmd builds the command tree.
func newRootCmd() *cobra.Command {
	opts := &rootOptions{v: viper.New()}

	cmd := &cobra.Command{
		Use:   "rxforge",
		Short: "Build and validate e-prescription documents",
		Long: `rxforge builds e-prescription documents for the profile version that is
in force, and decodes and validates documents received from the
prescription service.

Profile versions are selected per family. An explicit --version wins over
the profiles.<family> setting in the config file (or RXFORGE_PROFILES_<FAMILY>
in the environment), which wins over the catalog default.`,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			setupLogging(cmd, opts)
			initConfig(opts)
		},
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default is $HOME/.rxforge.yaml)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")

	cmd.AddCommand(
		newProfilesCmd(opts),
		newValidateCmd(opts),
		newDecodeCmd(opts),
		newSampleCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// initConfig loads configuration from the config file and environment.
func initConfig(opts *rootOptions) {
	if opts.cfgFile != "" {
		opts.v.SetConfigFile(opts.cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			slog.Warn("failed to find home directory", "error", err)
		} else {
			opts.v.AddConfigPath(home)
		}
		opts.v.SetConfigType("yaml")
		opts.v.SetConfigName(".rxforge")
	}

	// RXFORGE_PROFILES_WORKFLOW overrides profiles.workflow
	opts.v.SetEnvPrefix("RXFORGE")
	opts.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	opts.v.AutomaticEnv()

	if err := opts.v.ReadInConfig(); err == nil {
		slog.Debug("using config file", "file", opts.v.ConfigFileUsed())
	}
}

func setupLogging(cmd *cobra.Command, opts *rootOptions) {
	// Using TextHandler for CLI friendliness
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: opts.logLevel(),
	}))
	slog.SetDefault(logger)
}
