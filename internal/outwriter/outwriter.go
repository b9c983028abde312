// Package outwriter has output and writer logic.
package outwriter

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/huangsam/dailyxp/internal/contract"
	"golang.org/x/term"
)

// Title column bounds for table output.
const (
	minTitleWidth = 15
	maxTitleWidth = 70
)

// LogScanHeader prints a concise, 2-line header before a scan.
func LogScanHeader(cfg *contract.Config) {
	repoName := filepath.Base(cfg.RepoPath)
	if repoName == "" || repoName == "." {
		repoName = "current"
	}
	fmt.Printf("🔎 Repo: %s (Operator: %s)\n", repoName, cfg.Name)
	start, end := cfg.DayWindow()
	fmt.Printf("📅 Day: %s → %s\n", start.Format("2006-01-02 15:04"), end.Format("2006-01-02 15:04"))
}

// getTerminalWidth returns the width override, the detected terminal width
// or 80 columns when neither is available.
func getTerminalWidth(cfg *contract.Config) int {
	if cfg.Width > 0 {
		return cfg.Width
	}
	detected, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detected <= 0 {
		return 80
	}
	return detected
}

// getMaxTableTitleWidth returns the room left for a title column once
// reserved columns take their share.
func getMaxTableTitleWidth(cfg *contract.Config, reserved int) int {
	available := getTerminalWidth(cfg) - reserved - 20 // borders and padding
	if available < minTitleWidth {
		return minTitleWidth
	}
	if available > maxTitleWidth {
		return maxTitleWidth
	}
	return available
}
