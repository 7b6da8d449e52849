// Package ui is Otter's terminal dashboard, built on Bubble Tea.
//
// The model never talks to Home Assistant itself. It subscribes to the
// engine's snapshot store, re-reads the view data after each change and sends
// commands (refresh, toggle, pin, test
// connection) back to the engine as tea.Cmds so network calls stay off the
// update loop. Notifications arrive on a channel fed by notify.Channel and
// show as a banner.
//
// Views:
//
//   - Dashboard: connection notice, CPU/memory/disk gauges with sparklines
//     of recent samples, the update card and pinned entities
//   - Entities: searchable, domain-filtered browser with toggle, pin and
//     menu bar actions
//   - Settings: connection, thresholds, sensor mapping, appearance,
//     notifications, launch at login and menu bar order
//   - Logs: tail of Otter's own log file
//
// Appearance maps to a light or dark theme; T cycles themes for the session.
package ui
