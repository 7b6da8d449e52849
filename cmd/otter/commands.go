package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/five82/otter/internal/app"
	"github.com/five82/otter/internal/engine"
	"github.com/five82/otter/internal/entity"
	"github.com/five82/otter/internal/health"
	"github.com/five82/otter/internal/settings"
)

type rootFlags struct {
	configPath string
	theme      string
	logLevel   string
}

func (f *rootFlags) options() app.Options {
	return app.Options{ConfigPath: f.configPath, Theme: f.theme, LogLevel: f.logLevel}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "otter",
		Short: "Home Assistant companion for the terminal",
		Long: `Otter watches a Home Assistant server: system health from CPU, memory
and disk sensors, pending core updates and a dashboard of pinned entities.

Run without a subcommand to start the terminal UI.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Run(cmd.Context(), flags.options())
		},
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default ~/.config/otter/config.toml)")
	root.PersistentFlags().StringVar(&flags.theme, "theme", "", "TUI theme (Nightfox, Kanagawa, Slate, Dayfox)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		&cobra.Command{
			Use:   "tui",
			Short: "Start the terminal UI",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return app.Run(cmd.Context(), flags.options())
			},
		},
		newStatusCmd(flags),
		newConnectCmd(flags),
		newServeCmd(flags),
		newPinCmd(flags, true),
		newPinCmd(flags, false),
		newToggleCmd(flags),
		newSettingsCmd(flags),
	)
	return root
}

// withRuntime opens the runtime for a one-shot command.
func withRuntime(flags *rootFlags, fn func(rt *app.Runtime) error) error {
	rt, err := app.Open(flags.options())
	if err != nil {
		return err
	}
	defer rt.Close()
	return fn(rt)
}

func newStatusCmd(flags *rootFlags) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Refresh once and print connection and health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(flags, func(rt *app.Runtime) error {
				rt.Engine.Refresh(cmd.Context())
				report := buildStatus(rt.Engine)
				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(report)
				}
				printStatus(cmd.OutOrStdout(), report)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

type statusReport struct {
	Connection string          `json:"connection"`
	Error      string          `json:"error,omitempty"`
	Location   string          `json:"location,omitempty"`
	Version    string          `json:"version,omitempty"`
	Health     health.Status   `json:"health"`
	Details    string          `json:"details,omitempty"`
	Readings   []statusReading `json:"readings"`
	Update     engine.Update   `json:"update"`
	MenuBar    string          `json:"menuBar,omitempty"`
}

type statusReading struct {
	Metric   string `json:"metric"`
	EntityID string `json:"entityId,omitempty"`
	Value    string `json:"value"`
}

func buildStatus(e *engine.Engine) statusReport {
	snap := e.Snapshot()
	thresholds := e.Settings().Thresholds
	readings := e.Readings()

	report := statusReport{
		Connection: snap.Connection.String(),
		Error:      snap.Connection.Message,
		Health:     e.Health(),
		Update:     e.Update(),
		MenuBar:    e.MenuBarLabel().Text,
		Readings:   make([]statusReading, 0, len(readings)),
	}
	if snap.Connection.IsError() {
		report.Connection = "error"
	}
	if snap.Config != nil {
		report.Location = snap.Config.LocationName
		report.Version = snap.Config.Version
	}
	if report.Health == health.Warning || report.Health == health.Critical {
		report.Details = health.Details(readings, thresholds)
	}
	for _, r := range readings {
		value := "--"
		if r.OK {
			unit := r.Unit
			if unit == "" {
				unit = "%"
			}
			value = fmt.Sprintf("%.0f%s", r.Value, unit)
		}
		report.Readings = append(report.Readings, statusReading{
			Metric:   r.Metric.String(),
			EntityID: r.EntityID,
			Value:    value,
		})
	}
	return report
}

func printStatus(w io.Writer, r statusReport) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Connection:\t%s\n", r.Connection)
	if r.Error != "" {
		fmt.Fprintf(tw, "Error:\t%s\n", r.Error)
	}
	if r.Location != "" {
		fmt.Fprintf(tw, "Server:\t%s (HA %s)\n", r.Location, r.Version)
	}
	fmt.Fprintf(tw, "Health:\t%s\n", r.Health)
	if r.Details != "" {
		fmt.Fprintf(tw, "Details:\t%s\n", r.Details)
	}
	for _, reading := range r.Readings {
		id := reading.EntityID
		if id == "" {
			id = "no sensor"
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", reading.Metric, reading.Value, id)
	}
	if r.Update.Available {
		fmt.Fprintf(tw, "Update:\t%s available (installed %s)\n", r.Update.Latest, r.Update.Installed)
	}
	if r.MenuBar != "" {
		fmt.Fprintf(tw, "Menu bar:\t%s\n", r.MenuBar)
	}
	_ = tw.Flush()
}

func newConnectCmd(flags *rootFlags) *cobra.Command {
	var url, token string
	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Test and save the server URL and access token",
		Long: `Connect tries the given URL and token. On success they are saved; on
failure the previous values are restored. Omitted flags keep the stored value.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(flags, func(rt *app.Runtime) error {
				if url == "" {
					url = rt.Settings.BaseURL()
				}
				if token == "" {
					token = rt.Engine.StoredToken()
				}
				msg, err := rt.Engine.TestConnection(cmd.Context(), url, token)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), msg)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "server URL, e.g. http://homeassistant.local:8123")
	cmd.Flags().StringVar(&token, "token", "", "long-lived access token")
	return cmd
}

func newServeCmd(flags *rootFlags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run headless with the local HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := flags.options()
			opts.Console = true
			return app.Serve(cmd.Context(), opts, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}

func newPinCmd(flags *rootFlags, pin bool) *cobra.Command {
	use, short := "pin <entity_id>", "Add an entity to the dashboard"
	if !pin {
		use, short = "unpin <entity_id>", "Remove an entity from the dashboard"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			return withRuntime(flags, func(rt *app.Runtime) error {
				if pin {
					return rt.Engine.AddToDashboard(id)
				}
				return rt.Engine.RemoveFromDashboard(id)
			})
		},
	}
}

func newToggleCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <entity_id>",
		Short: "Toggle an entity and print its new state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			if !strings.Contains(id, ".") {
				return fmt.Errorf("entity id %q must be domain.object_id", id)
			}
			return withRuntime(flags, func(rt *app.Runtime) error {
				if !rt.Settings.IsConfigured() {
					return errors.New("not configured: run otter connect first")
				}
				rt.Engine.ToggleEntity(cmd.Context(), id)
				if s, ok := entity.Find(rt.Engine.Snapshot().Entities, id); ok {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", s.FriendlyName(), s.DisplayState())
				}
				return nil
			})
		},
	}
}

func newSettingsCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Print the current settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(flags, func(rt *app.Runtime) error {
				printSettings(cmd.OutOrStdout(), rt.Engine.Settings())
				return nil
			})
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change a setting",
		Long: `Keys: interval, warning, critical, cpu-sensor, memory-sensor,
disk-sensor, appearance, notifications, launch-at-login, menubar-add,
menubar-remove. An empty sensor value restores auto-detection.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(flags, func(rt *app.Runtime) error {
				msg, err := applySetting(rt.Engine, args[0], strings.TrimSpace(args[1]))
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), msg)
				return nil
			})
		},
	})
	return cmd
}

func applySetting(e *engine.Engine, key, value string) (string, error) {
	switch key {
	case "interval":
		n, err := strconv.Atoi(value)
		if err != nil {
			return "", fmt.Errorf("interval: %q is not a number", value)
		}
		stored, err := e.SetRefreshInterval(n)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("refresh interval %ds", stored), nil

	case "warning", "critical":
		n, err := strconv.Atoi(value)
		if err != nil {
			return "", fmt.Errorf("%s: %q is not a number", key, value)
		}
		var t settings.Thresholds
		if key == "warning" {
			t, err = e.SetWarningThreshold(n)
		} else {
			t, err = e.SetCriticalThreshold(n)
		}
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("warning %d%%, critical %d%%", t.Warning, t.Critical), nil

	case "appearance":
		a := settings.ParseAppearance(value)
		if string(a) != strings.ToLower(value) {
			return "", errors.New("appearance must be auto, light or dark")
		}
		return "appearance " + string(a), e.SetAppearance(a)

	case "notifications", "launch-at-login":
		on, err := strconv.ParseBool(value)
		if err != nil {
			return "", fmt.Errorf("%s: %q is not true or false", key, value)
		}
		if key == "notifications" {
			err = e.SetNotificationsEnabled(on)
		} else {
			err = e.SetLaunchAtLogin(on)
		}
		return fmt.Sprintf("%s %t", key, on), err

	case "menubar-add":
		added, err := e.AddMenuBarSensor(value)
		if err != nil {
			return "", err
		}
		if !added {
			return "", fmt.Errorf("%s not added: already listed or %d sensors shown", value, settings.MaxMenuBarSensors)
		}
		return "menu bar: " + value + " added", nil

	case "menubar-remove":
		removed, err := e.RemoveMenuBarSensor(value)
		if err != nil {
			return "", err
		}
		if !removed {
			return "", fmt.Errorf("%s is not in the menu bar", value)
		}
		return "menu bar: " + value + " removed", nil
	}

	if sensor, ok := strings.CutSuffix(key, "-sensor"); ok {
		for _, metric := range entity.Metrics {
			if strings.EqualFold(metric.String(), sensor) {
				if err := e.SetMetricEntity(metric, value); err != nil {
					return "", err
				}
				if value == "" {
					value = "auto-detect"
				}
				return metric.String() + " sensor " + value, nil
			}
		}
	}
	return "", fmt.Errorf("unknown setting %q", key)
}

func printSettings(w io.Writer, v settings.Values) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	token := "not set"
	if v.HasToken {
		token = "set"
	}
	fmt.Fprintf(tw, "Server URL:\t%s\n", orDash(v.BaseURL))
	fmt.Fprintf(tw, "Access token:\t%s\n", token)
	fmt.Fprintf(tw, "Refresh interval:\t%ds\n", v.RefreshInterval)
	fmt.Fprintf(tw, "Thresholds:\twarning %d%%, critical %d%%\n", v.Thresholds.Warning, v.Thresholds.Critical)
	for _, metric := range entity.Metrics {
		id := v.Mapping.For(metric)
		if id == "" {
			id = "auto-detect"
		}
		fmt.Fprintf(tw, "%s sensor:\t%s\n", metric, id)
	}
	fmt.Fprintf(tw, "Appearance:\t%s\n", v.Appearance)
	fmt.Fprintf(tw, "Notifications:\t%t\n", v.NotificationsEnabled)
	fmt.Fprintf(tw, "Launch at login:\t%t\n", v.LaunchAtLogin)
	fmt.Fprintf(tw, "Menu bar:\t%s\n", orDash(strings.Join(v.MenuBarSensors, ", ")))
	pinned := make([]string, 0, len(v.Dashboard))
	for _, d := range v.Dashboard {
		pinned = append(pinned, d.EntityID)
	}
	fmt.Fprintf(tw, "Dashboard:\t%s\n", orDash(strings.Join(pinned, ", ")))
	_ = tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
