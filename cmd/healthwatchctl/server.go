package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/healthwatch/pkg/config"
	"github.com/doodlesbykumbi/healthwatch/pkg/db"
	"github.com/doodlesbykumbi/healthwatch/pkg/monitor"
	"github.com/doodlesbykumbi/healthwatch/pkg/server"
	"github.com/doodlesbykumbi/healthwatch/pkg/server/endpoints"
	storegorm "github.com/doodlesbykumbi/healthwatch/pkg/server/store/gorm"
)

func defaultBindAddress() string {
	if addr := os.Getenv("BIND_ADDRESS"); addr != "" {
		return addr
	}
	return "0.0.0.0"
}

func defaultPort() string {
	if port := os.Getenv("PORT"); port != "" {
		return port
	}
	return "8000"
}

func defaultPortInt() int {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			return p
		}
	}
	return 8000
}

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the Healthwatch application server",
	Long: `Run the Healthwatch application server.

To run the server requires the environment variable DATABASE_URL.

By default, database migrations are run on startup. Use --no-migrate to skip.
Use --no-monitor to serve the API without the background monitoring loop.`,
	Run: func(cmd *cobra.Command, args []string) {
		// Validate required environment variables first (fail fast)
		if os.Getenv("DATABASE_URL") == "" {
			fmt.Fprintln(os.Stderr, "DATABASE_URL environment variable is required")
			os.Exit(1)
		}

		// Run migrations unless --no-migrate is set
		noMigrate, _ := cmd.Flags().GetBool("no-migrate")
		if !noMigrate {
			log.Println("Running database migrations...")
			if err := runMigrations(); err != nil {
				fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
				os.Exit(1)
			}
		}

		cfg := config.Get()
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
			os.Exit(1)
		}

		database, err := db.Connect(db.Config{})
		if err != nil {
			fmt.Fprintln(os.Stderr, "Unable to connect to DB:", err)
			os.Exit(1)
		}

		metrics := monitor.NewMetrics()
		if err := metrics.Register(); err != nil {
			fmt.Fprintln(os.Stderr, "Unable to register metrics:", err)
			os.Exit(1)
		}

		mon := monitor.New(
			storegorm.NewResultsStore(database),
			storegorm.NewSummaryStore(database),
			cfg,
			metrics,
		)
		mon.SetServices(monitor.ServicesFromConfig(cfg))

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		noMonitor, _ := cmd.Flags().GetBool("no-monitor")
		if !noMonitor {
			go mon.Start(ctx)
		}

		host, _ := cmd.Flags().GetString("bind-address")
		port, _ := cmd.Flags().GetString("port")
		s := server.NewServer(database, cfg, mon, metrics, host, port)

		endpoints.RegisterAll(s)

		log.Printf("Running server at http://%s:%s...\n", host, port)
		log.Fatal(s.Start())
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringP("port", "p", defaultPort(), "server listen port")
	serverCmd.Flags().StringP("bind-address", "b", defaultBindAddress(), "server bind address")
	serverCmd.Flags().Bool("no-migrate", false, "skip running database migrations on start")
	serverCmd.Flags().Bool("no-monitor", false, "serve the API without the background monitoring loop")
}
