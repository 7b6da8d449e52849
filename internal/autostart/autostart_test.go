package autostart

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestForOS_Paths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	home := "/home/ada"

	if got := ForOS("linux", home, "otter").Path; got != filepath.Join(home, ".config", "autostart", "otter.desktop") {
		t.Fatalf("linux path = %q", got)
	}
	if got := ForOS("darwin", home, "otter").Path; got != filepath.Join(home, "Library", "LaunchAgents", Label+".plist") {
		t.Fatalf("darwin path = %q", got)
	}

	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	if got := ForOS("linux", home, "otter").Path; got != filepath.Join("/xdg", "autostart", "otter.desktop") {
		t.Fatalf("linux XDG path = %q", got)
	}
}

func TestFile_EnableDisable(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	item := ForOS("linux", t.TempDir(), "/usr/local/bin/otter tui")

	enabled, err := item.Enabled()
	if err != nil || enabled {
		t.Fatalf("Enabled() = %v, %v; want false, nil", enabled, err)
	}

	if err := item.SetEnabled(true); err != nil {
		t.Fatalf("SetEnabled(true) returned error: %v", err)
	}
	data, err := os.ReadFile(item.Path)
	if err != nil {
		t.Fatalf("read desktop entry: %v", err)
	}
	if !strings.Contains(string(data), "Exec=/usr/local/bin/otter tui\n") {
		t.Fatalf("desktop entry = %q, want Exec line", data)
	}
	if enabled, _ := item.Enabled(); !enabled {
		t.Fatalf("Enabled() = false after enabling")
	}

	if err := item.SetEnabled(false); err != nil {
		t.Fatalf("SetEnabled(false) returned error: %v", err)
	}
	if err := item.SetEnabled(false); err != nil {
		t.Fatalf("second SetEnabled(false) returned error: %v", err)
	}
	if enabled, _ := item.Enabled(); enabled {
		t.Fatalf("Enabled() = true after disabling")
	}
}

func TestLaunchAgent_ProgramArguments(t *testing.T) {
	item := ForOS("darwin", t.TempDir(), "/Applications/Otter & Co/otter tui")
	body := string(item.Content)
	for _, want := range []string{
		"<string>" + Label + "</string>",
		"<string>/Applications/Otter</string>",
		"<string>&amp;</string>",
		"<string>tui</string>",
		"<key>RunAtLoad</key>",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("plist missing %q:\n%s", want, body)
		}
	}
}
