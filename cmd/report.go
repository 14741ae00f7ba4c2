package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"pi-monitor/internal/configuration"
	"pi-monitor/internal/incident"
	"pi-monitor/internal/models"
	"pi-monitor/internal/net/database"

	"github.com/spf13/cobra"
)

var (
	reportKind  string
	reportLimit int
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the notification delivery journal",
	Long: `Print a JSON report of recent notification attempts.

Without a kind flag, it reports every kind (alert, recovery, heartbeat, startup),
newest first, up to the limit.`,
	Run: func(cmd *cobra.Command, args []string) {
		if configuration.Config.DBFile == "" {
			models.Response{
				Message: "delivery journal is disabled",
			}.Print()
			os.Exit(ExitErrorConfig)
		}

		db, err := database.InitializeDatabase(configuration.Config.DBFile)
		if err != nil {
			models.Response{
				Message: "failed to initialize sqlite database",
			}.Print()
			os.Exit(ExitErrorConnection)
		}
		defer db.Close()

		deliveries, err := db.RecentDeliveries(incident.Kind(reportKind), reportLimit)
		if err != nil {
			models.Response{
				Message: "failed to query delivery journal",
			}.Print()
			os.Exit(ExitErrorConnection)
		}

		output, err := json.Marshal(deliveries)
		if err != nil {
			models.Response{
				Message: "Error while serializing output",
			}.Print()
			os.Exit(1)
		}

		fmt.Print(string(output))
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVarP(&reportKind, "kind", "k", "", "Only show deliveries of this kind")
	reportCmd.Flags().IntVarP(&reportLimit, "limit", "l", 100, "Maximum number of deliveries")
}
