package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"daylist/internal/inbox"
	"daylist/internal/logging"
	"daylist/internal/ui"
)

var inboxOnce bool

var inboxCmd = &cobra.Command{
	Use:     "inbox",
	GroupID: "sync",
	Short:   "Watch the inbox directory for dropped captures",
	Long: `Run the inbox daemon in the foreground.

Any JSON capture file dropped into the inbox directory becomes a task:

  echo '{"title": "Buy milk", "due": "tomorrow"}' > ~/.daylist/inbox/milk.json

Processed captures move to inbox/processed, invalid ones to inbox/rejected.
With --once, sweeps the directory a single time and exits.`,
	Run: func(cmd *cobra.Command, args []string) {
		a := newApp()
		defer a.close()
		a.mustSignIn()

		cfg := inbox.DefaultConfig()
		cfg.Logger = logging.New("inbox", a.cfg.LogFile)

		d, err := inbox.NewWithConfig(a.store, a.scope(), a.cfg.InboxDir, cfg)
		if err != nil {
			fatalf("failed to create inbox daemon: %v", err)
		}

		if inboxOnce {
			if err := os.MkdirAll(a.cfg.InboxDir, 0o755); err != nil {
				fatalf("failed to create inbox directory: %v", err)
			}
			if err := d.Sweep(); err != nil {
				fatalf("sweep failed: %v", err)
			}
			fmt.Printf("%s Inbox swept\n", ui.RenderPass("✓"))
			return
		}

		fmt.Printf("%s Watching %s\n", ui.RenderAccent("👀"), a.cfg.InboxDir)
		fmt.Printf("\nPress Ctrl+C to stop\n\n")

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := d.Start(ctx); err != nil {
			fatalf("inbox daemon stopped: %v", err)
		}
	},
}

func init() {
	inboxCmd.Flags().BoolVar(&inboxOnce, "once", false, "sweep once and exit")
	rootCmd.AddCommand(inboxCmd)
}
