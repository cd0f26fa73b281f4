package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// palette matches the colours used across pimctx output.
var palette = struct {
	Primary, Secondary, Muted, Success, Warning, Error lipgloss.Color
}{
	Primary:   lipgloss.Color("#7C3AED"), // Purple
	Secondary: lipgloss.Color("#06B6D4"), // Cyan
	Muted:     lipgloss.Color("#6C7086"), // Medium gray
	Success:   lipgloss.Color("#A6E3A1"), // Green
	Warning:   lipgloss.Color("#F9E2AF"), // Yellow
	Error:     lipgloss.Color("#F38BA8"), // Red
}

// outputStyles holds the styles for one output stream.
type outputStyles struct {
	Title   lipgloss.Style
	Label   lipgloss.Style
	Score   lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Block   lipgloss.Style
}

// stylesFor returns coloured styles when w is a terminal and plain ones otherwise.
func stylesFor(w io.Writer) outputStyles {
	if !isTerminal(w) {
		plain := lipgloss.NewStyle()
		return outputStyles{
			Title: plain, Label: plain, Score: plain, Muted: plain,
			Success: plain, Warning: plain, Block: plain,
		}
	}
	return outputStyles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(palette.Primary),
		Label:   lipgloss.NewStyle().Bold(true).Foreground(palette.Secondary),
		Score:   lipgloss.NewStyle().Foreground(palette.Muted),
		Muted:   lipgloss.NewStyle().Foreground(palette.Muted),
		Success: lipgloss.NewStyle().Foreground(palette.Success),
		Warning: lipgloss.NewStyle().Foreground(palette.Warning),
		Block: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(palette.Primary).
			PaddingLeft(1),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
