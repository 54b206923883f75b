package render

import "github.com/charmbracelet/lipgloss"

// Theme holds the styles of the terminal listing. Comment and Error are the
// two annotation display groups; the rest style the chrome around them.
type Theme struct {
	Name    string
	Accent  lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Comment lipgloss.Style
	Muted   lipgloss.Style
	Bold    lipgloss.Style
	Icons   ThemeIcons
}

// ThemeIcons are the glyphs used in headers and gutters.
type ThemeIcons struct {
	Pass   string
	Fail   string
	Info   string
	Gap    string
	Bullet string
}

var unicodeIcons = ThemeIcons{Pass: "✓", Fail: "✗", Info: "●", Gap: "⋮", Bullet: "·"}

// palette lists 256-color codes in Theme field order.
type palette struct {
	accent, success, error, comment, muted string
}

func fromPalette(name string, p palette, icons ThemeIcons) Theme {
	fg := func(c string) lipgloss.Style { return lipgloss.NewStyle().Foreground(lipgloss.Color(c)) }
	return Theme{
		Name:    name,
		Accent:  fg(p.accent),
		Success: fg(p.success),
		Error:   fg(p.error),
		Comment: fg(p.comment).Italic(true),
		Muted:   fg(p.muted),
		Bold:    lipgloss.NewStyle().Bold(true),
		Icons:   icons,
	}
}

// DefaultTheme colors annotations like editor virtual text: errors red,
// comments a soft green.
func DefaultTheme() Theme {
	return fromPalette("default", palette{accent: "39", success: "34", error: "196", comment: "108", muted: "242"}, unicodeIcons)
}

// DimTheme is a low-contrast variant for light-on-dark terminals that find
// the default too loud.
func DimTheme() Theme {
	icons := unicodeIcons
	icons.Info = "·"
	return fromPalette("dim", palette{accent: "75", success: "108", error: "167", comment: "179", muted: "245"}, icons)
}

// MonoTheme has no colors and only ASCII icons.
func MonoTheme() Theme {
	plain := lipgloss.NewStyle()
	return Theme{
		Name:    "mono",
		Accent:  plain,
		Success: plain,
		Error:   plain,
		Comment: plain,
		Muted:   plain,
		Bold:    lipgloss.NewStyle().Bold(true),
		Icons:   ThemeIcons{Pass: "+", Fail: "x", Info: "*", Gap: ":", Bullet: "-"},
	}
}

// ThemeByName returns a theme by name, defaulting to DefaultTheme.
func ThemeByName(name string) Theme {
	switch name {
	case "dim":
		return DimTheme()
	case "mono":
		return MonoTheme()
	default:
		return DefaultTheme()
	}
}
