package console

import (
	"os"
	"runtime"

	"github.com/charmbracelet/lipgloss"
)

// Colors holds the console palette.
type Colors struct {
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Background lipgloss.Color
	Muted      lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
}

// IconSet maps a line kind to its prefix.
type IconSet map[string]string

// Theme bundles colors and icons used to render log lines.
type Theme struct {
	Colors Colors
	Icons  IconSet
}

// DefaultTheme returns the standard palette with icons suited to the current terminal.
func DefaultTheme() Theme {
	icons := emojiIcons
	if isLimitedTerminal() {
		icons = asciiIcons
	}
	return Theme{
		Colors: Colors{
			Primary:    lipgloss.Color("#3a6b4a"),
			Accent:     lipgloss.Color("#8fc279"),
			Background: lipgloss.Color("#f8f8f8"),
			Muted:      lipgloss.Color("#9ba8c0"),
			Success:    lipgloss.Color("#5dc796"),
			Warning:    lipgloss.Color("#e0a03a"),
			Error:      lipgloss.Color("#f04c56"),
		},
		Icons: icons,
	}
}

// Icon returns the prefix for kind, falling back to ASCII.
func (t Theme) Icon(kind string) string {
	if icon, ok := t.Icons[kind]; ok {
		return icon
	}
	return asciiIcons[kind]
}

func (t Theme) style(kind string) lipgloss.Style {
	base := lipgloss.NewStyle()
	switch kind {
	case KindSuccess:
		return base.Foreground(t.Colors.Success)
	case KindWarning:
		return base.Foreground(t.Colors.Warning)
	case KindError:
		return base.Foreground(t.Colors.Error).Bold(true)
	case KindTitle:
		return base.Foreground(t.Colors.Background).Background(t.Colors.Primary).Bold(true).Padding(0, 1)
	case KindDebug:
		return base.Foreground(t.Colors.Muted)
	default:
		return base
	}
}

// isLimitedTerminal detects environments where ASCII icons are preferable.
func isLimitedTerminal() bool {
	if os.Getenv("SSH_CLIENT") != "" || os.Getenv("SSH_TTY") != "" || os.Getenv("SSH_CONNECTION") != "" {
		return true
	}
	return runtime.GOOS == "windows"
}

var emojiIcons = IconSet{
	KindInfo:    " ",
	KindSuccess: "✅",
	KindWarning: "⚠️ ",
	KindError:   "❌",
	KindTitle:   "📺",
	KindDebug:   "··",
}

var asciiIcons = IconSet{
	KindInfo:    "  ",
	KindSuccess: "[v]",
	KindWarning: "[!]",
	KindError:   "[x]",
	KindTitle:   "[TV]",
	KindDebug:   "..",
}
