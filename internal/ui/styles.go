package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette.
var (
	ColorSuccess   = lipgloss.Color("#00D26A") // confirmed, connected
	ColorWarning   = lipgloss.Color("#FFB800") // mutating commands, prompts
	ColorError     = lipgloss.Color("#FF4444") // failures
	ColorInfo      = lipgloss.Color("#48CAE4") // hints, pending work
	ColorAddress   = lipgloss.Color("#00B4D8") // addresses, hashes
	ColorValue     = lipgloss.Color("#FFFFFF") // balances
	ColorMeta      = lipgloss.Color("#555555") // metadata
	ColorBorder    = lipgloss.Color("#1E3A5F")
	ColorChain     = lipgloss.Color("#9B5DE5") // chain names, titles
	ColorHighlight = lipgloss.Color("#F15BB5") // selected rows
)

// Base styles.
var (
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	StyleInfo    = lipgloss.NewStyle().Foreground(ColorInfo)
	StyleAddress = lipgloss.NewStyle().Foreground(ColorAddress)
	StyleValue   = lipgloss.NewStyle().Foreground(ColorValue).Bold(true)
	StyleMeta    = lipgloss.NewStyle().Foreground(ColorMeta)
	StyleChain   = lipgloss.NewStyle().Foreground(ColorChain).Bold(true)

	StyleBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	StyleHeader = lipgloss.NewStyle().
			Foreground(ColorHighlight).
			Bold(true).
			Underline(true)

	StyleSelected = lipgloss.NewStyle().
			Background(ColorHighlight).
			Foreground(lipgloss.Color("#000000")).
			Bold(true)

	StyleTitle = lipgloss.NewStyle().
			Foreground(ColorChain).
			Bold(true).
			MarginBottom(1)
)

// Banner returns the w3reg banner.
func Banner(version string) string {
	art := `
  ┬ ┬┌─┐┬─┐┌─┐┌─┐
  │││ ─┤├┬┘├┤ │ ┬
  └┴┘└─┘┴└─└─┘└─┘`
	tagline := StyleMeta.Render("  register · approve · transfer · burn   " + version)
	return StyleChain.Render(art) + "\n" + tagline + "\n"
}

// Success formats a success message.
func Success(msg string) string { return StyleSuccess.Render("✓ " + msg) }

// Warn formats a warning message.
func Warn(msg string) string { return StyleWarning.Render("⚠ " + msg) }

// Err formats an error message.
func Err(msg string) string { return StyleError.Render("✗ " + msg) }

// Info formats an informational message.
func Info(msg string) string { return StyleInfo.Render("ℹ " + msg) }

// Hint formats a suggestion for what to run next.
func Hint(msg string) string { return StyleMeta.Render("› " + msg) }

// Addr formats an address.
func Addr(a string) string { return StyleAddress.Render(a) }

// Val formats a value.
func Val(v string) string { return StyleValue.Render(v) }

// Meta formats metadata text.
func Meta(m string) string { return StyleMeta.Render(m) }

// ChainName formats a chain name.
func ChainName(c string) string { return StyleChain.Render(c) }

// Outcome styles a presented result line: failures red, everything else
// green.
func Outcome(text string) string {
	if IsFailure(text) {
		return Err(text)
	}
	return Success(text)
}

// IsFailure reports whether a presented line describes a failure.
func IsFailure(text string) bool {
	first, _, _ := strings.Cut(text, "\n")
	return strings.Contains(first, " failed [") || first == "no result"
}

// ConnectionStatus styles a connect-button label.
func ConnectionStatus(label string) string {
	switch {
	case strings.HasPrefix(label, "Connected"):
		return StyleSuccess.Render("● " + label)
	case strings.HasPrefix(label, "Connecting"):
		return StyleInfo.Render("◌ " + label)
	case strings.HasPrefix(label, "Connection Failed"), strings.HasPrefix(label, "Please install"):
		return StyleError.Render("● " + label)
	}
	return StyleMeta.Render("○ " + label)
}

// TruncateAddr shortens an address for display: 0x1234…5678.
func TruncateAddr(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}
