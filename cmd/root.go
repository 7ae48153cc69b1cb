package cmd

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/conneroisu/prosemark/internal/config"
	"github.com/conneroisu/prosemark/internal/logging"
)

var (
	cfgFile string

	// configFileUsed and initErr record what initConfig did, for commands
	// to report once they run.
	configFileUsed string
	initErr        error
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pmk",
	Short: "Plain-text novel outlining and drafting",
	Long: `pmk manages a prosemark project: a directory of markdown node files
organised by the outline in _binder.md.

Quick Start:
  pmk wc                          Count words across the whole binder
  pmk wc <node-id>                Count words in one subtree
  pmk wc --watch                  Re-count whenever a draft changes
  pmk version                     Show version information`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .prosemark.yml, can also use PMK_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
}

// initConfig loads .env, then points the global viper at the config file
// and the PMK_ environment. Errors are kept for the running command to
// report in its own output format.
func initConfig() {
	configFileUsed, initErr = "", nil

	if _, err := config.LoadDotEnv(); err != nil {
		initErr = err
		return
	}

	config.Configure(viper.GetViper(), cfgFile)
	configFileUsed, initErr = config.ReadInConfig(viper.GetViper())
}

// persistentFlagKeys maps root flags to configuration keys.
var persistentFlagKeys = map[string]string{
	"log-level":  "log.level",
	"log-format": "log.format",
}

// loadConfig binds the command's flags and decodes the configuration.
// Binding happens per run so that a viper.Reset between runs is harmless.
func loadConfig(cmd *cobra.Command, flagKeys map[string]string) (*config.Config, error) {
	if initErr != nil {
		return nil, initErr
	}

	bind := func(flags *pflag.FlagSet, keys map[string]string) error {
		for name, key := range keys {
			if flag := flags.Lookup(name); flag != nil {
				if err := viper.BindPFlag(key, flag); err != nil {
					return err
				}
			}
		}
		return nil
	}

	if err := bind(cmd.Flags(), persistentFlagKeys); err != nil {
		return nil, err
	}
	if err := bind(cmd.Flags(), flagKeys); err != nil {
		return nil, err
	}

	return config.Load()
}

// newLogger builds the command logger. Logs always go to w, never stdout.
func newLogger(ctx context.Context, cfg *config.Config, w io.Writer) (logging.Logger, error) {
	lc, err := cfg.Log.LoggerConfig()
	if err != nil {
		return nil, err
	}
	lc.Output = w

	logger := logging.NewLogger(lc)
	if configFileUsed != "" {
		logger.Debug(ctx, "Using config file", "path", configFileUsed)
	}
	return logger, nil
}
