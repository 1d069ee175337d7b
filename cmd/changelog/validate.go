package main

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/cobra"
)

// Issue is a single problem found while validating the changelog
type Issue struct {
	Line    int
	Message string
}

func (i Issue) String() string {
	if i.Line > 0 {
		return fmt.Sprintf("Line %d: %s", i.Line, i.Message)
	}
	return i.Message
}

var (
	releaseDateRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	semverRegex      = regexp.MustCompile(`^\d+\.\d+\.\d+$`)
	changeTypes      = map[string]bool{
		"Added":      true,
		"Changed":    true,
		"Deprecated": true,
		"Removed":    true,
		"Fixed":      true,
		"Security":   true,
	}
)

// Validate checks a changelog against the Keep a Changelog conventions.
func Validate(source []byte) []Issue {
	var issues []Issue
	report := func(line int, format string, args ...interface{}) {
		issues = append(issues, Issue{Line: line, Message: fmt.Sprintf(format, args...)})
	}

	hasTitle := false
	hasUnreleased := false
	versions := map[string]bool{}

	for i, line := range strings.Split(string(source), "\n") {
		lineNum := i + 1
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(trimmed, "### "):
			changeType := strings.TrimPrefix(trimmed, "### ")
			if !changeTypes[changeType] {
				report(lineNum, "Invalid change type '%s'. Valid types: Added, Changed, Deprecated, Removed, Fixed, Security", changeType)
			}

		case strings.HasPrefix(trimmed, "## ["):
			end := strings.Index(trimmed, "]")
			if end <= 4 {
				continue
			}
			version := trimmed[4:end]

			if strings.EqualFold(version, "unreleased") {
				hasUnreleased = true
				continue
			}
			versions[version] = true

			if !semverRegex.MatchString(version) {
				report(lineNum, "Version '%s' should follow semantic versioning (X.Y.Z)", version)
			}

			rest := trimmed[end+1:]
			if !strings.Contains(rest, " - ") {
				report(lineNum, "Version '%s' is missing a release date", version)
				continue
			}
			date := strings.TrimSpace(rest[strings.Index(rest, " - ")+3:])
			if !releaseDateRegex.MatchString(date) {
				report(lineNum, "Date '%s' should be in ISO 8601 format (YYYY-MM-DD)", date)
			}

		case strings.HasPrefix(trimmed, "# "):
			hasTitle = true
			if !strings.Contains(strings.ToLower(trimmed), "changelog") {
				report(lineNum, "Title should contain 'Changelog'")
			}
		}
	}

	if !hasTitle {
		report(0, "Missing changelog title (# Changelog)")
	}
	if !hasUnreleased {
		report(0, "Missing [Unreleased] section")
	}

	if history, err := ParseHistory(source); err == nil {
		for version := range versions {
			if _, ok := history.Links[version]; !ok {
				report(0, "Missing link definition for version [%s]", version)
			}
		}
		if hasUnreleased {
			if _, ok := history.Links["Unreleased"]; !ok {
				report(0, "Missing link definition for [Unreleased]")
			}
		}
	}

	return issues
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a changelog follows Keep a Changelog spec",
	Long: `Validate that a changelog file follows the Keep a Changelog specification.

Checks include:
- File has a title (# Changelog)
- Has an [Unreleased] section
- Version entries use correct format: ## [X.Y.Z] - YYYY-MM-DD
- Dates are in ISO 8601 format (YYYY-MM-DD)
- Change types are valid (Added, Changed, Deprecated, Removed, Fixed, Security)
- Link definitions exist for all versions`,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")

		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("reading file: %w", err)
		}

		issues := Validate(content)
		if len(issues) == 0 {
			fmt.Println("✓ Changelog is valid")
			return nil
		}

		fmt.Printf("Found %d issue(s):\n\n", len(issues))
		for _, issue := range issues {
			fmt.Printf("  %s\n", issue)
		}

		os.Exit(1)
		return nil
	},
}

func init() {
	validateCmd.Flags().StringP("file", "f", "CHANGELOG.md", "Path to the changelog file")
	rootCmd.AddCommand(validateCmd)
}
