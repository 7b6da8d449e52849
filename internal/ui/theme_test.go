package ui

import (
	"testing"

	"github.com/five82/otter/internal/settings"
)

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	want := []string{"Nightfox", "Kanagawa", "Slate", "Dayfox"}
	if len(names) != len(want) {
		t.Fatalf("ThemeNames() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("ThemeNames() = %v, want %v", names, want)
		}
	}
}

func TestNextTheme(t *testing.T) {
	if got := NextTheme("Nightfox"); got != "Kanagawa" {
		t.Fatalf("NextTheme(Nightfox) = %q, want Kanagawa", got)
	}
	if got := NextTheme("Dayfox"); got != "Nightfox" {
		t.Fatalf("NextTheme(Dayfox) = %q, want Nightfox", got)
	}
	if got := NextTheme("Unknown"); got != "Nightfox" {
		t.Fatalf("NextTheme(Unknown) = %q, want Nightfox", got)
	}
}

func TestGetTheme_FallsBackToNightfox(t *testing.T) {
	if got := GetTheme("nope").Name; got != "Nightfox" {
		t.Fatalf("GetTheme(nope) = %q, want Nightfox", got)
	}
}

func TestThemeFor(t *testing.T) {
	tests := []struct {
		name         string
		appearance   settings.Appearance
		preferred    string
		darkTerminal bool
		want         string
	}{
		{"light ignores dark terminal", settings.AppearanceLight, "", true, "Dayfox"},
		{"light ignores dark preference", settings.AppearanceLight, "Slate", true, "Dayfox"},
		{"dark honours preference", settings.AppearanceDark, "Slate", false, "Slate"},
		{"dark rejects light preference", settings.AppearanceDark, "Dayfox", false, "Nightfox"},
		{"auto on dark terminal", settings.AppearanceAuto, "Kanagawa", true, "Kanagawa"},
		{"auto on light terminal", settings.AppearanceAuto, "Kanagawa", false, "Dayfox"},
		{"unknown preference", settings.AppearanceAuto, "Dracula", true, "Nightfox"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ThemeFor(tt.appearance, tt.preferred, tt.darkTerminal).Name; got != tt.want {
				t.Fatalf("ThemeFor() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStatusColors_CoverIndicators(t *testing.T) {
	for _, name := range ThemeNames() {
		th := GetTheme(name)
		for _, class := range []string{"healthy", "warning", "critical", "unknown", "error", "update", "positive", "inactive"} {
			if th.StatusColors[class] == "" {
				t.Errorf("%s: no color for %q", name, class)
			}
		}
	}
}
