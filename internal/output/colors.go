package output

import (
	"os"

	"github.com/charmbracelet/lipgloss"
)

// NoColor returns true if colored output should be disabled.
// Respects the NO_COLOR environment variable (https://no-color.org/).
func NoColor() bool {
	_, ok := os.LookupEnv("NO_COLOR")
	return ok
}

// Color definitions for consistent styling across the CLI.
var (
	ColorAdd     = lipgloss.Color("10") // bright green, resources being added
	ColorModify  = lipgloss.Color("11") // bright yellow, resources being modified
	ColorRemove  = lipgloss.Color("9")  // bright red, resources being removed
	ColorWarning = lipgloss.Color("#F39C12")
	ColorMuted   = lipgloss.Color("#95A5A6")
	ColorAccent  = lipgloss.Color("#9B59B6")
)

// Style presets shared by the change report and command output.
var (
	// StyleBold emphasizes identifying fields (action, logical id, scope).
	StyleBold = lipgloss.NewStyle().Bold(true)

	// StyleFaint de-emphasizes secondary fields (resource type, physical id).
	StyleFaint = lipgloss.NewStyle().Faint(true)

	// StyleTitle is for section headers.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)

	// StyleAdd colors an entire Add line in the change report.
	StyleAdd = lipgloss.NewStyle().Foreground(ColorAdd)

	// StyleModify colors an entire Modify line in the change report.
	StyleModify = lipgloss.NewStyle().Foreground(ColorModify)

	// StyleRemove colors an entire Remove line in the change report.
	StyleRemove = lipgloss.NewStyle().Foreground(ColorRemove)

	// StyleWarning is for warning indicators such as the replacement marker.
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning)

	// StyleMuted is for secondary/less important text.
	StyleMuted = lipgloss.NewStyle().Foreground(ColorMuted)
)
