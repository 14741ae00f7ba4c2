package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"pi-monitor/internal/configuration"

	"github.com/spf13/cobra"
)

// setConfigCmd represents the set-config command
var setConfigCmd = &cobra.Command{
	Use:   "set-config",
	Short: "Reads a JSON string, converts it to YAML, and saves it to configuration file",
	Long: `This command takes a JSON string as an argument, validates it, and writes the
configuration to the configuration file in YAML format. Restart 'run' to apply it.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		yamlData, err := configuration.JSONToYAML([]byte(args[0]))
		if err != nil {
			msg := fmt.Sprintf("Invalid configuration: %v", err)
			fmt.Fprintln(os.Stderr, msg)
			fmt.Printf(`"message":"%s"`, msg)
			os.Exit(ExitErrorConfig)
		}

		if err := os.MkdirAll(filepath.Dir(configuration.Config.ConfigFile), 0755); err != nil {
			fmt.Fprintf(os.Stderr, "failed to create directory: %v\n", err)
			os.Exit(1)
		}

		err = os.WriteFile(configuration.Config.ConfigFile, yamlData, 0600)
		if err != nil {
			msg := fmt.Sprintf("Error writing YAML file: %v", err)
			fmt.Fprintln(os.Stderr, msg)
			fmt.Printf(`"message":"%s"`, msg)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(setConfigCmd)
}
