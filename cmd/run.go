package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pi-monitor/internal/api"
	"pi-monitor/internal/configuration"
	"pi-monitor/internal/heartbeat"
	"pi-monitor/internal/helper"
	"pi-monitor/internal/indicator"
	"pi-monitor/internal/monitor"
	"pi-monitor/internal/net"
	"pi-monitor/internal/net/database"
	"pi-monitor/internal/notify"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var journalRetention string

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Starts the continuous monitoring process for the configured servers",
	Long: `The 'run' command starts the monitoring service.
It loads servers from the configuration and probes them every interval,
mailing the recipients when a server fails max_fails times in a row.

Example:
  pi-monitor run --config /path/to/your/config.yml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return withExitCode(ExitErrorConfig, "error loading configuration: %w", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var db *database.Database
		if configuration.Config.DBFile != "" {
			db, err = database.InitializeDatabase(configuration.Config.DBFile)
			if err != nil {
				return withExitCode(ExitErrorConnection, "failed to initialize database: %w", err)
			}
			defer db.Close()

			cutoff := time.Now().Add(-helper.ParseDuration(journalRetention, "90d"))
			if pruned, err := db.PruneDeliveries(cutoff); err != nil {
				log.Warn().Err(err).Msg("failed to prune delivery journal")
			} else if pruned > 0 {
				log.Info().Int64("rows", pruned).Msg("pruned delivery journal")
			}
		}

		ip, err := helper.OutboundIP()
		if err != nil {
			log.Warn().Err(err).Msg("could not determine outbound ip")
			ip = "unknown"
		}

		dispatcher, err := newDispatcher(cfg, db, ip)
		if err != nil {
			return withExitCode(ExitErrorConfig, "error initializing notifier: %w", err)
		}

		alarm := newIndicator(cfg.Hardware)
		defer alarm.Close()

		endpoints := make([]*monitor.EndpointHealth, 0, len(cfg.Servers))
		for _, s := range cfg.Servers {
			endpoints = append(endpoints, monitor.NewEndpointHealth(s.Name, s.URL, s.Timeout, s.MaxFails, s.AssertString))
		}

		startup := ""
		if cfg.NotifyOnStart {
			startup = fmt.Sprintf("%s initialized on ip: %s", cfg.Mail.Subject, ip)
		}

		uptimeMonitor, err := monitor.NewMonitor(monitor.Options{
			Endpoints: endpoints,
			Prober: &net.NetworkConfig{
				FollowRedirects: cfg.Probe.FollowRedirects,
				SkipSSL:         cfg.Probe.InsecureSkipVerify,
			},
			Notify:    dispatcher,
			Indicator: alarm,
			Heartbeat: &heartbeat.Heartbeat{
				Path:    cfg.Heartbeat.File,
				Hours:   cfg.Heartbeat.Hours,
				Subject: cfg.Mail.Subject,
				Notify:  dispatcher,
			},
			Interval:       cfg.Interval,
			Subject:        cfg.Mail.Subject,
			NotifyRecovery: cfg.NotifyRecovery,
			StartupMessage: startup,
		})
		if err != nil {
			return withExitCode(ExitErrorConfig, "error initializing monitor: %w", err)
		}

		if cfg.API.Enabled {
			server := api.NewServer(api.ServerConfig{
				Bind: cfg.API.Bind,
				Port: cfg.API.Port,
			}, uptimeMonitor, db)

			go func() {
				if err := server.Start(); err != nil {
					log.Error().Err(err).Msg("api server stopped")
				}
			}()
			defer server.Shutdown()
		}

		return uptimeMonitor.Run(ctx)
	},
}

func newDispatcher(cfg *configuration.MonitorConfig, db *database.Database, ip string) (*notify.Dispatcher, error) {
	dispatcher := &notify.Dispatcher{Recipients: cfg.Recipients}

	if db != nil {
		dispatcher.Journal = db
	}

	if cfg.Mail.Server != "" {
		mailer, err := notify.NewSMTP(notify.SMTPConfig{
			Server:   cfg.Mail.Server,
			Port:     cfg.Mail.Port,
			User:     cfg.Mail.User,
			Password: cfg.Mail.Password,
			From:     cfg.Mail.From,
			TLS:      cfg.Mail.TLS,
		})
		if err != nil {
			return nil, err
		}
		dispatcher.Mailer = mailer
	} else {
		log.Warn().Msg("mail.server is not set, notifications will not be mailed")
	}

	if cfg.Webhook.URL != "" {
		dispatcher.Webhook = &notify.Webhook{
			URL:      cfg.Webhook.URL,
			Token:    cfg.Webhook.Token,
			ServerIP: ip,
		}
	}

	return dispatcher, nil
}

// newIndicator falls back to the console when the board is disabled or the
// GPIO pins cannot be opened.
func newIndicator(hw configuration.HardwareConfig) indicator.Indicator {
	if !hw.Enabled {
		return indicator.NewConsole()
	}

	board, err := indicator.NewPibrella(indicator.PibrellaConfig{
		ButtonPin: hw.ButtonPin,
		LightPin:  hw.LightPin,
		BuzzerPin: hw.BuzzerPin,
		BuzzHz:    hw.BuzzHz,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to open pibrella, using console indicator")
		return indicator.NewConsole()
	}

	return board
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&journalRetention, "retention", "90d", "Delete journal entries older than this at startup")
}
