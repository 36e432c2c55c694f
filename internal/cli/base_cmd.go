package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// The prefix for configuration keys inside environment.
	envPrefix = "ARENASIM"
	// The configuration key for config file name.
	keyConfig = "config"

	flagNameLogLevel = "log-level"
)

type (
	arenasimApp struct {
		baseCmd    *cobra.Command
		baseConfig *baseConfiguration
	}

	baseConfiguration struct {
		// Configuration file path, optional
		CfgFile string
		// Logging level, one of DEBUG, INFO, WARN, ERROR
		LogLevel string

		logger *slog.Logger
	}
)

// New creates a new arenasim application
func New() *arenasimApp {
	baseCmd, baseConfig := newBaseCmd()
	return &arenasimApp{baseCmd, baseConfig}
}

// Execute adds all child commands and runs the application
func (a *arenasimApp) Execute(ctx context.Context) error {
	a.baseCmd.AddCommand(newRunCmd(a.baseConfig))
	a.baseCmd.AddCommand(newVersionCmd())
	return a.baseCmd.ExecuteContext(ctx)
}

func newBaseCmd() (*cobra.Command, *baseConfiguration) {
	config := &baseConfiguration{}
	var baseCmd = &cobra.Command{
		Use:           "arenasim",
		Short:         "Word arena allocator simulator",
		Long:          `arenasim replays allocation workloads against a simulated word-addressed arena and reports the resulting free space.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initializeConfig(cmd, config); err != nil {
				return errors.Wrap(err, "failed to initialize configuration")
			}
			return nil
		},
	}
	baseCmd.PersistentFlags().StringVar(&config.CfgFile, keyConfig, "", "config file path (yaml, json or toml)")
	baseCmd.PersistentFlags().StringVar(&config.LogLevel, flagNameLogLevel, "WARN", "logging level, one of: DEBUG, INFO, WARN, ERROR")

	return baseCmd, config
}

func initializeConfig(cmd *cobra.Command, config *baseConfiguration) error {
	var errs error

	if err := config.initializeConfig(cmd); err != nil {
		errs = errors.CombineErrors(errs, errors.Wrap(err, "reading configuration"))
	}

	if err := config.initLogger(cmd.ErrOrStderr()); err != nil {
		errs = errors.CombineErrors(errs, errors.Wrap(err, "initializing logger"))
	}

	return errs
}

// initializeConfig reads in config file and ENV variables if set.
func (config *baseConfiguration) initializeConfig(cmd *cobra.Command) error {
	v := viper.New()

	if config.CfgFile != "" {
		v.SetConfigFile(config.CfgFile)
		if err := v.ReadInConfig(); err != nil {
			return err
		}
	}

	// Flags bind to environment variables prefixed with ARENASIM_, e.g. --word-size
	// binds to ARENASIM_WORD_SIZE
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if err := bindFlags(cmd, v); err != nil {
		return errors.Wrap(err, "binding flags")
	}

	return nil
}

// Bind each cobra flag to its associated viper configuration (config file and environment variable)
func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	var bindFlagErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Name == keyConfig {
			return
		}

		// Environment variables can't have dashes in them, so bind them to their equivalent
		// keys with underscores
		if strings.Contains(f.Name, "-") {
			envVarSuffix := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
			if err := v.BindEnv(f.Name, fmt.Sprintf("%s_%s", envPrefix, envVarSuffix)); err != nil {
				bindFlagErr = errors.CombineErrors(bindFlagErr, errors.Wrapf(err, "binding env to flag %q", f.Name))
				return
			}
		}

		// Apply the viper config value to the flag when the flag is not set and viper has a value
		if !f.Changed && v.IsSet(f.Name) {
			val := v.Get(f.Name)
			if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", val)); err != nil {
				bindFlagErr = errors.CombineErrors(bindFlagErr, errors.Wrapf(err, "setting flag %q value", f.Name))
				return
			}
		}
	})

	return bindFlagErr
}

func (config *baseConfiguration) initLogger(out io.Writer) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(config.LogLevel)); err != nil {
		return errors.Wrapf(err, "invalid %s", flagNameLogLevel)
	}

	config.logger = slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
	return nil
}

// Logger returns the configured logger, or one that discards everything if the
// configuration has not been initialized
func (config *baseConfiguration) Logger() *slog.Logger {
	if config.logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return config.logger
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}
