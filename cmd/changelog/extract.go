package main

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/cobra"
)

var linkDefLine = regexp.MustCompile(`(?m)^\[[^\]]+\]:\s+\S+\s*$`)

// stripLinkDefinitions drops trailing link definition lines from a release body
func stripLinkDefinitions(body string) string {
	var kept []string
	for _, line := range strings.Split(body, "\n") {
		if !linkDefLine.MatchString(line) {
			kept = append(kept, line)
		}
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

func loadHistory(file string) (*History, error) {
	content, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	history, err := ParseHistory(content)
	if err != nil {
		return nil, fmt.Errorf("parsing changelog: %w", err)
	}
	return history, nil
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract a version's changelog entry",
	Long:  `Extract the changelog content for a specific version, e.g. for release notes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		version, _ := cmd.Flags().GetString("version")

		history, err := loadHistory(file)
		if err != nil {
			return err
		}

		release := history.Find(version)
		if release == nil {
			return fmt.Errorf("version %s not found in changelog", version)
		}

		if release.Date != "" {
			fmt.Printf("## [%s] - %s\n\n", release.Version, release.Date)
		} else {
			fmt.Printf("## [%s]\n\n", release.Version)
		}

		fmt.Print(stripLinkDefinitions(release.Body))

		if url, ok := history.Links[release.Version]; ok {
			fmt.Printf("\n\n[%s]: %s\n", release.Version, url)
		}

		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all versions in the changelog",
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")

		history, err := loadHistory(file)
		if err != nil {
			return err
		}

		for _, release := range history.Releases {
			if release.Date != "" {
				fmt.Printf("%s (%s)\n", release.Version, release.Date)
			} else {
				fmt.Println(release.Version)
			}
		}

		return nil
	},
}

var latestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Print the most recent released version",
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")

		history, err := loadHistory(file)
		if err != nil {
			return err
		}

		release := history.Latest()
		if release == nil {
			return fmt.Errorf("no released versions found in changelog")
		}

		fmt.Println(release.Version)
		return nil
	},
}

func init() {
	extractCmd.Flags().StringP("file", "f", "CHANGELOG.md", "Path to the changelog file")
	extractCmd.Flags().StringP("version", "v", "", "Version to extract (with or without 'v' prefix)")
	_ = extractCmd.MarkFlagRequired("version")

	listCmd.Flags().StringP("file", "f", "CHANGELOG.md", "Path to the changelog file")
	latestCmd.Flags().StringP("file", "f", "CHANGELOG.md", "Path to the changelog file")

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(latestCmd)
}
