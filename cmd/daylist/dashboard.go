package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"daylist/internal/dashboard"
	"daylist/internal/logging"
	"daylist/internal/model"
	"daylist/internal/store"
	"daylist/internal/view"
)

var dashboardPort int

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	GroupID: "sync",
	Short:   "Start the real-time WebSocket dashboard",
	Long: `Start a WebSocket server that broadcasts your task activity.

Connected clients receive:
- task_update: a task was created, updated, or deleted
- list_update: a list was created, renamed, or deleted
- stats: aggregate counts (total, completed, important)

While the dashboard runs, the store is polled so that changes made from
other daylist sessions (or synced from the remote primary) are picked up.

Connect with a WebSocket client:
  ws://localhost:8080/ws`,
	Run: func(cmd *cobra.Command, args []string) {
		a := newApp()
		defer a.close()
		a.mustSignIn()

		logger := logging.New("dashboard", a.cfg.LogFile)

		port := dashboardPort
		if port == 0 {
			port = a.cfg.DashboardPort
		}

		server := dashboard.NewServer(&dashboard.Config{Port: port, Logger: logger})
		if err := server.Start(); err != nil {
			fatalf("failed to start dashboard: %v", err)
		}

		handler := dashboard.NewHandler(server, logger)

		c := view.New(view.Config{
			Gateway: a.store,
			Fetch: func(ctx context.Context, scope store.Scope) ([]model.Task, error) {
				return a.store.ListTasks(ctx, scope, nil)
			},
			Scope:    a.scope(),
			SignedIn: true,
			Logger:   logger,
			Notifier: handler,
		})
		defer c.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		c.Load(ctx)
		handler.Seed(c.Items())

		fmt.Printf("Dashboard started on http://localhost:%d\n", port)
		fmt.Printf("WebSocket endpoint: ws://%s/ws\n", server.Addr())
		fmt.Printf("Health check: http://%s/health\n", server.Addr())
		fmt.Println("\nPress Ctrl+C to stop...")

		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()

	poll:
		for {
			select {
			case <-ctx.Done():
				break poll
			case <-ticker.C:
				c.Reload(ctx)
				handler.Seed(c.Items())
			}
		}

		fmt.Println("\nShutting down dashboard...")
		if err := server.Stop(); err != nil {
			fatalf("error during shutdown: %v", err)
		}
		fmt.Println("Dashboard stopped")
	},
}

func init() {
	dashboardCmd.Flags().IntVarP(&dashboardPort, "port", "p", 0, "port to listen on (default from config)")
	rootCmd.AddCommand(dashboardCmd)
}
