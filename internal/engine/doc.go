// Package engine keeps the local snapshot in sync with Home Assistant.
//
// # Refresh
//
// Refresh is the single entry point for fetching. It is called by the auto
// refresh timer, after a toggle, and on demand by the UI, CLI and API:
//
//	not configured      → disconnected, no request
//	connecting          → GET /api/config and GET /api/states in parallel
//	both succeed        → connected, snapshot replaced, transitions checked
//	either fails        → error(message), previous snapshot kept
//
// Overlapping refreshes are not serialised. The later one to finish wins.
//
// # Transitions
//
// After each successful refresh the engine compares health and update
// availability with the values it saw last time and notifies only on
// worsening health or a newly available update. The remembered values are
// updated whether or not a notification was sent.
//
// # Settings
//
// Reads come from Settings, which returns a copy. Writes go through the
// engine's setters so that side effects such as restarting the timer or
// registering the login item happen in one place.
package engine
