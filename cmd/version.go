package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// VERSION is set at build time with -ldflags "-X pi-monitor/cmd.VERSION=..."
var VERSION = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(VERSION)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
