package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/prosemark/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage pmk configuration",
	Long: `Inspect pmk configuration files and settings.

Examples:
  pmk config show                        # Show the resolved configuration
  pmk config validate                    # Validate the resolved configuration
  pmk config validate --file .prosemark.yml  # Validate a specific file`,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Long: `Validate the configuration pmk would use, or a single file with --file,
and list every problem found together with a suggested fix.`,
	Args: cobra.NoArgs,
	RunE: runConfigValidate,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Display the configuration after the config file, .env, PMK_* environment
variables and defaults have been applied, as YAML that pmk can read back.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configFile string

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configShowCmd)

	configValidateCmd.Flags().
		StringVarP(&configFile, "file", "f", "", "Configuration file to validate instead of the resolved configuration")
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	v := viper.GetViper()
	source := configFileUsed
	if configFile != "" {
		v = viper.New()
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read configuration file: %w", err)
		}
		source = configFile
	} else if initErr != nil {
		return initErr
	}

	cfg, err := config.Decode(v)
	if err != nil {
		return err
	}

	if source == "" {
		source = "defaults and environment"
	}
	fmt.Fprintf(out, "Validating configuration: %s\n", source)

	validation := config.ValidateConfigWithDetails(cfg)
	if validation.Valid {
		fmt.Fprintln(out, "Configuration is valid.")
		return nil
	}

	for _, ve := range validation.Errors {
		fmt.Fprintf(out, "  %s: %s\n", ve.Field, ve.Message)
		for _, s := range ve.Suggestions {
			fmt.Fprintf(out, "    hint: %s\n", s)
		}
	}

	return fmt.Errorf("configuration validation failed with %d errors", len(validation.Errors))
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}
