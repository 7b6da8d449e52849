// Package autostart registers Otter to start when the user logs in.
//
// On Linux and other XDG desktops this is a .desktop file under
// ~/.config/autostart. On macOS it is a LaunchAgent plist under
// ~/Library/LaunchAgents. Presence of the file is the registration state.
package autostart

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Label identifies the login item.
const Label = "com.five82.otter"

// LoginItem is the launch-at-login capability.
type LoginItem interface {
	Enabled() (bool, error)
	SetEnabled(enabled bool) error
}

// File is a LoginItem backed by a single file.
type File struct {
	Path    string
	Content []byte
}

// New returns the login item for the current platform. executable is the
// command line that starts Otter.
func New(executable string) (*File, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}
	return ForOS(runtime.GOOS, home, executable), nil
}

// ForOS builds the login item for goos rooted at home.
func ForOS(goos, home, executable string) *File {
	if goos == "darwin" {
		return &File{
			Path:    filepath.Join(home, "Library", "LaunchAgents", Label+".plist"),
			Content: launchAgent(executable),
		}
	}
	dir := filepath.Join(home, ".config", "autostart")
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		dir = filepath.Join(xdg, "autostart")
	}
	return &File{
		Path:    filepath.Join(dir, "otter.desktop"),
		Content: desktopEntry(executable),
	}
}

// Enabled reports whether the item file exists.
func (f *File) Enabled() (bool, error) {
	_, err := os.Stat(f.Path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("stat %s: %w", f.Path, err)
	}
}

// SetEnabled writes or removes the item file. Both directions are
// idempotent.
func (f *File) SetEnabled(enabled bool) error {
	if !enabled {
		if err := os.Remove(f.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", f.Path, err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(f.Path), err)
	}
	if err := os.WriteFile(f.Path, f.Content, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", f.Path, err)
	}
	return nil
}

func desktopEntry(executable string) []byte {
	var b strings.Builder
	b.WriteString("[Desktop Entry]\n")
	b.WriteString("Type=Application\n")
	b.WriteString("Name=Otter\n")
	b.WriteString("Comment=Home Assistant companion\n")
	fmt.Fprintf(&b, "Exec=%s\n", executable)
	b.WriteString("Terminal=true\n")
	b.WriteString("X-GNOME-Autostart-enabled=true\n")
	return []byte(b.String())
}

func launchAgent(executable string) []byte {
	var args strings.Builder
	for _, field := range strings.Fields(executable) {
		fmt.Fprintf(&args, "\t\t<string>%s</string>\n", xmlEscape(field))
	}
	return []byte(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>Label</key>
	<string>` + Label + `</string>
	<key>ProgramArguments</key>
	<array>
` + args.String() + `	</array>
	<key>RunAtLoad</key>
	<true/>
</dict>
</plist>
`)
}

var xmlReplacer = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "'", "&apos;")

func xmlEscape(s string) string {
	return xmlReplacer.Replace(s)
}
