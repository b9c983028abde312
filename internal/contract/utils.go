package contract

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

// Color variables for grade labels in console output.
var (
	LegendaryColor = color.New(color.FgMagenta, color.Bold) // S+ and S
	HighColor      = color.New(color.FgGreen, color.Bold)   // A+ and A
	ModerateColor  = color.New(color.FgYellow)              // B
	LowColor       = color.New(color.FgCyan)                // C and D
)

// GetColorGrade returns a colored grade label for console output (table).
func GetColorGrade(grade string) string {
	switch grade {
	case "S+", "S":
		return LegendaryColor.Sprint(grade)
	case "A+", "A":
		return HighColor.Sprint(grade)
	case "B":
		return ModerateColor.Sprint(grade)
	default:
		return LowColor.Sprint(grade)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It returns os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// MatchGlob reports whether a slash-separated path matches pattern.
// Besides path.Match syntax, a "**" segment matches zero or more segments.
func MatchGlob(pattern, name string) bool {
	return matchSegments(strings.Split(pattern, "/"), strings.Split(name, "/"))
}

func matchSegments(pat, segs []string) bool {
	for len(pat) > 0 {
		if pat[0] == "**" {
			if len(pat) == 1 {
				return true
			}
			for i := 0; i <= len(segs); i++ {
				if matchSegments(pat[1:], segs[i:]) {
					return true
				}
			}
			return false
		}
		if len(segs) == 0 {
			return false
		}
		if ok, err := path.Match(pat[0], segs[0]); err != nil || !ok {
			return false
		}
		pat, segs = pat[1:], segs[1:]
	}
	return len(segs) == 0
}

// ShouldIgnore returns true if the given path matches any of the skip patterns.
// Patterns containing wildcards are matched with MatchGlob against the path and
// its base name. Patterns ending with '/' match any path segment sequence.
// Patterns starting with '_' or '.' match base-name prefixes and suffixes.
func ShouldIgnore(p string, patterns []string) bool {
	base := path.Base(p)
	for _, pat := range patterns {
		pat = strings.TrimSpace(pat)
		if pat == "" {
			continue
		}

		if strings.ContainsAny(pat, "*?[") {
			if MatchGlob(pat, p) || MatchGlob(pat, base) {
				return true
			}
			continue
		}

		switch {
		case strings.HasSuffix(pat, "/"):
			if strings.HasPrefix(p, pat) || strings.Contains(p, "/"+pat) {
				return true
			}
		case pat == "_":
			if strings.HasPrefix(base, "_") {
				return true
			}
		case strings.HasPrefix(pat, "."):
			if strings.HasSuffix(base, pat) {
				return true
			}
		case base == pat:
			return true
		}
	}
	return false
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for scan history.
func GetHistoryDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".dailyxp_history.db"
	}
	return filepath.Join(homeDir, ".dailyxp_history.db")
}

// ToSlashRel returns target relative to root with forward slashes.
func ToSlashRel(root, target string) (string, error) {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("path is outside repository: %s", target)
	}
	return filepath.ToSlash(rel), nil
}

// TruncatePath truncates a file path to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 to ensure there's space for both the "..." prefix and at least one character of content.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
