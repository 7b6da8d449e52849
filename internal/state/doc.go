// Package state holds the observable Home Assistant snapshot shared by the
// sync engine and its consumers.
//
// # Overview
//
// The engine is the only writer. The TUI, the local API and the CLI read
// copies through Snapshot or receive them through Subscribe:
//
//	Writer (engine):               Readers:
//	┌─────────────────┐           ┌──────────────────┐
//	│ SetConnecting() │           │ Subscribe(fn)    │
//	│ Apply(...)      │──────────→│ Snapshot()       │
//	│ SetError(msg)   │  (mutex)  │ render / serve   │
//	└─────────────────┘           └──────────────────┘
//
// # Update Semantics
//
//	store.Apply(cfg, states, readings, now)
//	→ Config, Entities replaced
//	→ Connection = connected
//	→ LastUpdate = now, history gains one sample per parsed metric
//
//	store.SetError("HTTP error 401 (Unauthorized) from /api/states")
//	→ Config, Entities, LastUpdate unchanged
//	→ Connection = error(message)
//
// # Subscriptions
//
// Every mutation publishes a fresh copy to all listeners after the lock is
// released, in registration order, on the goroutine that mutated. A listener
// may call Snapshot but must not block for long; the TUI forwards into its
// program with Send.
//
// The zero Store is ready to use.
package state
