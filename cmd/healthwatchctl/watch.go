package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/healthwatch/pkg/config"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch [file]",
	Short: "Watch the configuration file and revalidate it when it changes",
	Long: `Watch the configuration file and reload it when it changes.

Each time the watched file is modified the configuration is reloaded and
validated, and the resulting set of monitored services is printed. Use this
while editing the configuration to catch mistakes before restarting the
server.

By default the standard config file location is watched
(/etc/healthwatch/healthwatch.yml or HEALTHWATCH_CONFIG_PATH).

Example:
  healthwatchctl watch
  healthwatchctl watch ./healthwatch.yml`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		filename := config.Get().ConfigFilePath()
		if len(args) > 0 {
			filename = args[0]
		}

		if err := watchConfig(filename); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to watch configuration: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func watchConfig(filename string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filename); err != nil {
		return fmt.Errorf("failed to watch file %s: %w", filename, err)
	}

	fmt.Printf("Watching %s for configuration changes\n", filename)

	// Handle signals for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
				fmt.Printf("[%s] File modified, reloading configuration...\n", time.Now().Format(time.RFC3339))

				if err := reloadAndValidate(); err != nil {
					fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "Watcher error: %v\n", err)
		case <-sigChan:
			fmt.Println("\nShutting down...")
			return nil
		}
	}
}

func reloadAndValidate() error {
	if err := config.Reload(); err != nil {
		return fmt.Errorf("failed to reload configuration: %w", err)
	}

	cfg := config.Get()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	names := cfg.ServiceNames()
	fmt.Printf("Configuration is valid. Monitored services: %s\n", strings.Join(names, ", "))
	return nil
}
