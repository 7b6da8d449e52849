// Package app is the composition root for Otter.
//
// Open loads the viper config, builds the zap logger, opens the settings
// store and wires the notification gate, the launch-at-login item and the
// engine together. Run and Serve are the two long-running front ends:
//
//	config.Load()        app config (TOML + OTTER_* env)
//	logging.New()        JSON log file, read back by the TUI logs view
//	prefs.Open()         TOML file or SQLite settings store
//	notify.NewGate()     log sink, TUI channel, optional NATS publisher
//	engine.New()         refresh cycle, health and update tracking
//	Runtime.Start()      first refresh, then auto refresh
//	ui.Run() / api.Serve()
//
// Refresh failures never stop the process: the engine records them in the
// snapshot and the next tick retries. Only configuration, logging and
// settings store failures are fatal.
package app
