package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keybindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Tab        key.Binding
	ShiftTab   key.Binding
	Refresh    key.Binding
	Escape     key.Binding

	// View switching
	ViewDashboard key.Binding
	ViewEntities  key.Binding
	ViewSettings  key.Binding
	ViewLogs      key.Binding

	// Navigation
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding

	// Entity actions
	Toggle       key.Binding
	Pin          key.Binding
	MenuBar      key.Binding
	CycleDomain  key.Binding
	Search       key.Binding
	MoveUp       key.Binding
	MoveDown     key.Binding
	Remove       key.Binding
	TestConnect  key.Binding
	ToggleFollow key.Binding

	// Input
	Confirm key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Cycle views"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "Cycle views (reverse)"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Refresh now"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Back to dashboard"),
		),

		ViewDashboard: key.NewBinding(
			key.WithKeys("1", "d"),
			key.WithHelp("1/d", "Dashboard"),
		),
		ViewEntities: key.NewBinding(
			key.WithKeys("2", "b"),
			key.WithHelp("2/b", "Browse entities"),
		),
		ViewSettings: key.NewBinding(
			key.WithKeys("3", "s"),
			key.WithHelp("3/s", "Settings"),
		),
		ViewLogs: key.NewBinding(
			key.WithKeys("4", "l"),
			key.WithHelp("4/l", "Logs"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),

		Toggle: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "Toggle / edit"),
		),
		Pin: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "Pin/unpin"),
		),
		MenuBar: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "Menu bar sensor"),
		),
		CycleDomain: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "Cycle domain"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "Search"),
		),
		MoveUp: key.NewBinding(
			key.WithKeys("K"),
			key.WithHelp("K", "Move sensor up"),
		),
		MoveDown: key.NewBinding(
			key.WithKeys("J"),
			key.WithHelp("J", "Move sensor down"),
		),
		Remove: key.NewBinding(
			key.WithKeys("x", "delete"),
			key.WithHelp("x", "Remove"),
		),
		TestConnect: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Test connection"),
		),
		ToggleFollow: key.NewBinding(
			key.WithKeys("F"),
			key.WithHelp("F", "Toggle follow"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Confirm"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.ViewDashboard, k.ViewEntities, k.ViewSettings, k.ViewLogs, k.Escape},
		{k.Up, k.Down, k.Top, k.Bottom},
		{k.Toggle, k.Pin, k.MenuBar, k.CycleDomain, k.Search},
		{k.TestConnect, k.MoveUp, k.MoveDown, k.Remove, k.ToggleFollow},
		{k.Refresh, k.CycleTheme, k.Help, k.Quit},
	}
}
