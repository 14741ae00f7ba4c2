package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"pi-monitor/internal/configuration"
	"pi-monitor/pkg/log"

	"github.com/spf13/cobra"
)

// Constants for exit codes
const (
	ExitSuccess          = 0
	ExitErrorInvalidArgs = 1
	ExitErrorConnection  = 2
	ExitErrorConfig      = 3
)

var noTimeInLog bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pi-monitor",
	Short: "Watch HTTP endpoints from a Raspberry Pi and raise the alarm when they fail",
	Long: `A small uptime monitor for a Raspberry Pi.
It probes the servers listed in the configuration file, emails the recipients
when a server keeps failing, and drives the Pibrella light, buzzer and button.

Usage: pi-monitor [--config=path/to/config.yml] run`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log.InitLogger(configuration.Config.LogFile, noTimeInLog)
		log.SetLogLevel(configuration.Config.LogLevel)

		// Ensure config file is absolute
		if !filepath.IsAbs(configuration.Config.ConfigFile) {
			absPath, err := filepath.Abs(configuration.Config.ConfigFile)
			if err == nil {
				configuration.Config.ConfigFile = absPath
			}
		}

		return nil
	},
}

// loadConfig reads the monitor configuration and applies its log settings
// unless they were given on the command line.
func loadConfig(cmd *cobra.Command) (*configuration.MonitorConfig, error) {
	cfg, err := configuration.Load(configuration.Config.ConfigFile)
	if err != nil {
		return nil, err
	}

	if !cmd.Flags().Changed("log-file") && cfg.Log.File != "" {
		configuration.Config.LogFile = cfg.Log.File
		log.InitLogger(cfg.Log.File, noTimeInLog)
	}
	if !cmd.Flags().Changed("log-level") {
		configuration.Config.LogLevel = cfg.Log.Level
	}
	log.SetLogLevel(configuration.Config.LogLevel)

	if !cmd.Flags().Changed("database") {
		configuration.Config.DBFile = cfg.Database
	}

	return cfg, nil
}

// exitError carries the process exit code for a failed command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func withExitCode(code int, format string, args ...any) error {
	return &exitError{code: code, err: fmt.Errorf(format, args...)}
}

func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}
	return ExitErrorInvalidArgs
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(exitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configuration.Config.ConfigFile, "config", "c", configuration.CONFIG_PATH, "Path to configuration file")
	rootCmd.PersistentFlags().StringVarP(&configuration.Config.DBFile, "database", "", configuration.DB_PATH, "Path to delivery journal database, empty disables it")
	rootCmd.PersistentFlags().StringVar(&configuration.Config.LogFile, "log-file", "", "Append logs to this file")
	rootCmd.PersistentFlags().StringVar(&configuration.Config.LogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noTimeInLog, "no-time", false, "hide time in log")
}
