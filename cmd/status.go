package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"pi-monitor/internal/incident"
	"pi-monitor/internal/monitor"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	statusAddr  string
	statusReset bool
)

var (
	green = lipgloss.Color("#10B981")
	red   = lipgloss.Color("#EF4444")
	amber = lipgloss.Color("#F59E0B")
	dim   = lipgloss.Color("#6B7280")

	bannerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	subtitleStyle  = lipgloss.NewStyle().Foreground(dim).Italic(true)
	headerStyle    = lipgloss.NewStyle().Bold(true).BorderBottom(true).BorderStyle(lipgloss.NormalBorder()).BorderForeground(dim)
	healthyStyle   = lipgloss.NewStyle().Foreground(green).Bold(true)
	unhealthyStyle = lipgloss.NewStyle().Foreground(red).Bold(true)
	pendingStyle   = lipgloss.NewStyle().Foreground(amber)
	dimStyle       = lipgloss.NewStyle().Foreground(dim)
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the live state of a running monitor",
	Long: `Query the local API of a running 'pi-monitor run' and print every
server's state. With --reset the alarm is cleared the same way the button does.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := &http.Client{Timeout: 5 * time.Second}
		base := strings.TrimRight(statusAddr, "/")

		if statusReset {
			resp, err := client.Post(base+"/api/pi-monitor/reset", "application/json", nil)
			if err != nil {
				return fmt.Errorf("failed to request reset: %w", err)
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusAccepted {
				return fmt.Errorf("reset rejected with status %d", resp.StatusCode)
			}
			fmt.Println(healthyStyle.Render("Reset requested"))
		}

		resp, err := client.Get(base + "/api/pi-monitor/status")
		if err != nil {
			return fmt.Errorf("failed to fetch status: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
		}

		var status monitor.Status
		if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
			return fmt.Errorf("failed to decode status: %w", err)
		}

		fmt.Print(renderStatus(status))
		return nil
	},
}

func renderStatus(status monitor.Status) string {
	var b strings.Builder

	alarm := healthyStyle.Render("alarm off")
	if status.AlarmOn {
		alarm = unhealthyStyle.Render("ALARM ON")
	}
	b.WriteString(bannerStyle.Render("PI MONITOR") + "  " + alarm)
	b.WriteString(subtitleStyle.Render(fmt.Sprintf("  %d server(s), every %s, %d cycle(s)", len(status.Endpoints), status.Interval, status.Cycles)))
	b.WriteString("\n\n")

	b.WriteString(headerStyle.Render(fmt.Sprintf("  %-2s %-20s %-6s %-20s %s", "", "SERVER", "FAILS", "LAST CHECKED", "STATUS")))
	b.WriteString("\n")

	for _, ep := range status.Endpoints {
		dot := dimStyle.Render("●")
		text := dimStyle.Render(ep.StatusText())
		switch {
		case ep.Status == incident.OK:
			dot = healthyStyle.Render("●")
			text = healthyStyle.Render(ep.StatusText())
		case ep.NotifiedFail || (ep.Status != incident.Unknown && ep.FailCount >= ep.MaxFails):
			dot = unhealthyStyle.Render("●")
			text = unhealthyStyle.Render(ep.StatusText())
		case ep.Status != incident.Unknown:
			dot = pendingStyle.Render("●")
			text = pendingStyle.Render(ep.StatusText())
		}

		checked := "never"
		if !ep.LastChecked.IsZero() {
			checked = ep.LastChecked.Local().Format("2006-01-02 15:04:05")
		}

		fmt.Fprintf(&b, "  %s  %-20s %-6s %-20s %s\n", dot, ep.Name, fmt.Sprintf("%d/%d", ep.FailCount, ep.MaxFails), checked, text)
	}

	if status.LastCycle != nil {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(fmt.Sprintf("last cycle %s at %s took %s",
			status.LastCycle.ID,
			status.LastCycle.StartedAt.Local().Format("15:04:05"),
			status.LastCycle.Duration.Round(time.Millisecond))))
		b.WriteString("\n")
	}

	return b.String()
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().StringVar(&statusAddr, "addr", "http://127.0.0.1:8000", "Address of the monitor API")
	statusCmd.Flags().BoolVar(&statusReset, "reset", false, "Clear the alarm before showing status")
}
