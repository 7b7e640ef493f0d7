package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vietdv277/s3du/internal/config"
	"github.com/vietdv277/s3du/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage persisted defaults",
	Long: `Inspect or change the defaults stored in the s3du config file.

Values in the file are used when neither a flag nor an S3DU_* environment
variable is given.

Keys: region, profile, backend, object_versions, unit, output, endpoint, concurrency

Examples:
  s3du config show
  s3du config set region eu-west-1
  s3du config set backend s3
  s3du config set region ""      # clear a key`,
}

var configShowCmd = &cobra.Command{
	Use:     "show",
	Short:   "Show the config file",
	Aliases: []string{"ls", "list"},
	Args:    cobra.NoArgs,
	RunE:    runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config: %s\n", ui.MutedStyle.Render(config.GetConfigPath()))
	fmt.Fprintln(out)

	for _, key := range config.Keys {
		value, err := cfg.Get(key)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  %-16s %s\n", key, formatUnset(value))
	}

	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	if err := config.SetValue(key, value); err != nil {
		return err
	}

	if value == "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", key)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
	}
	return nil
}
