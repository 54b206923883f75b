package main

import (
	"io"
	"os"

	"golang.org/x/term"

	"github.com/dkoosis/exnote/pkg/render"
)

// isTTYWriter reports whether w is a terminal.
func isTTYWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// termWidth returns the terminal width for w, defaulting to 80.
func termWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		if tw, _, err := term.GetSize(int(f.Fd())); err == nil && tw > 0 {
			return tw
		}
	}
	return 80
}

// resolveFormat picks terminal output for a TTY and llm output otherwise.
func resolveFormat(format string, w io.Writer) string {
	if format != "auto" {
		return format
	}
	if isTTYWriter(w) {
		return "terminal"
	}
	return "llm"
}

func selectTheme(name string, noColor bool) render.Theme {
	if noColor {
		return render.MonoTheme()
	}
	return render.ThemeByName(name)
}

func selectRenderer(mode, themeName string, noColor bool, context int, w io.Writer) render.Renderer {
	switch mode {
	case "json":
		return render.NewJSON()
	case "llm":
		return render.NewLLM()
	default:
		return render.NewTerminal(selectTheme(themeName, noColor), termWidth(w)).WithContext(context)
	}
}
