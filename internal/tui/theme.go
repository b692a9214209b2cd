package tui

import (
	"os"
	"strconv"
	"strings"

	"sakuga-cli/internal/model"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Colors must stay readable on light and dark terminals, so everything is an AdaptiveColor.
func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

var (
	colorMuted      lipgloss.TerminalColor = ac("240", "243")
	colorChromeFg   lipgloss.TerminalColor = ac("240", "245")
	colorSelectedBg lipgloss.TerminalColor = ac("#e9e9e9", "#262626")
	colorSelectedFg lipgloss.TerminalColor = ac("235", "255")
	colorTodayBg    lipgloss.TerminalColor = ac("#fff3c4", "#3a3520")
	colorWeekendBg  lipgloss.TerminalColor = ac("#f4f4f4", "#1f1f1f")
	colorAccent     lipgloss.TerminalColor = ac("27", "62")
	colorBarFg      lipgloss.TerminalColor = ac("255", "235")
	colorErrorFg    lipgloss.TerminalColor = ac("160", "203")
)

// Bar colors follow the usual production-board palette, one hue per process.
var kindColors = map[model.Kind]lipgloss.AdaptiveColor{
	model.KindStoryboard:  ac("#7b61c9", "#a08cf0"),
	model.KindLayout:      ac("#2f74c0", "#5fa0e6"),
	model.KindAnimation:   ac("#d0782a", "#f0a050"),
	model.KindBackground:  ac("#3b9c5a", "#62c482"),
	model.KindColoring:    ac("#c2416b", "#ec6f97"),
	model.KindCompositing: ac("#178f92", "#3fc1c4"),
	model.KindEditing:     ac("#6b6b6b", "#9a9a9a"),
}

func kindColor(k model.Kind) lipgloss.TerminalColor {
	if c, ok := kindColors[k]; ok {
		return c
	}
	return colorMuted
}

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
}

func styleTitle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
}

func styleChrome() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorChromeFg)
}

func styleGroupHeader() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true)
}

func styleSelected() lipgloss.Style {
	return lipgloss.NewStyle().Background(colorSelectedBg).Foreground(colorSelectedFg)
}

func styleBar(k model.Kind, active bool) lipgloss.Style {
	st := lipgloss.NewStyle().Background(kindColor(k)).Foreground(colorBarFg)
	if active {
		st = st.Bold(true).Underline(true)
	}
	return st
}

func styleError() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorErrorFg)
}

// applyColorProfilePreference sets Lip Gloss's color profile for the interactive TUI.
//
// termenv.EnvColorProfile honors CLICOLOR, which can disable colors in a TUI launched from
// scripts. Here only NO_COLOR turns colors off; otherwise follow the terminal.
func applyColorProfilePreference() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}

	profile := termenv.ColorProfile()

	// Trust TERM/COLORTERM when they claim more than the detector found.
	term := strings.ToLower(strings.TrimSpace(os.Getenv("TERM")))
	colorterm := strings.ToLower(strings.TrimSpace(os.Getenv("COLORTERM")))
	if strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit") {
		if profile != termenv.Ascii {
			profile = termenv.TrueColor
		}
	} else if strings.Contains(term, "256color") && (profile == termenv.Ascii || profile == termenv.ANSI) {
		profile = termenv.ANSI256
	}

	lipgloss.SetColorProfile(profile)
}

// applyThemePreference configures background detection.
//
// Priority:
// 1) SAKUGA_TUI_THEME=light|dark|auto
// 2) COLORFGBG heuristic ("fg;bg")
func applyThemePreference() {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("SAKUGA_TUI_THEME"))) {
	case "light":
		lipgloss.SetHasDarkBackground(false)
		return
	case "dark":
		lipgloss.SetHasDarkBackground(true)
		return
	}

	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil {
			lipgloss.SetHasDarkBackground(bg < 7)
		}
	}
}
