package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"daylist/internal/export"
	"daylist/internal/ui"
)

var importDryRun bool

var exportCmd = &cobra.Command{
	Use:     "export <file>",
	GroupID: "sync",
	Short:   "Export your lists and tasks to a JSONL snapshot",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a := newApp()
		defer a.close()
		a.mustSignIn()

		count, err := export.Export(cmd.Context(), a.store, a.scope(), args[0])
		if err != nil {
			fatalf("export failed: %v", err)
		}
		fmt.Printf("%s Exported %d records to %s\n", ui.RenderPass("✓"), count, args[0])
	},
}

var importCmd = &cobra.Command{
	Use:     "import <file>",
	GroupID: "sync",
	Short:   "Import a JSONL snapshot into your account",
	Long: `Import a snapshot produced by 'daylist export'.

Tasks keep their snapshot IDs, so importing the same snapshot twice does
not duplicate them. Lists are recreated with fresh IDs and will duplicate
on repeat imports.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a := newApp()
		defer a.close()
		a.mustSignIn()

		result, err := export.Import(cmd.Context(), a.store, a.scope(), args[0],
			export.ImportOptions{DryRun: importDryRun})
		if err != nil {
			fatalf("import failed: %v", err)
		}

		verb := "Imported"
		if importDryRun {
			verb = "Would import"
		}
		fmt.Printf("%s %s %d lists and %d tasks\n",
			ui.RenderPass("✓"), verb, result.ListsImported, result.TasksImported)
		for _, e := range result.Errors {
			fmt.Printf("%s %s\n", ui.RenderWarn("⚠"), e)
		}
	},
}

var syncCmd = &cobra.Command{
	Use:     "sync",
	GroupID: "sync",
	Short:   "Sync the local replica with the remote primary",
	Run: func(cmd *cobra.Command, args []string) {
		a := newApp()
		defer a.close()

		if a.cfg.PrimaryURL == "" {
			fmt.Printf("%s No primary configured; the database is local only\n", ui.RenderWarn("⚠"))
			return
		}
		if err := a.store.Sync(); err != nil {
			fatalf("sync failed: %v", err)
		}
		fmt.Printf("%s Synced with %s\n", ui.RenderPass("✓"), a.cfg.PrimaryURL)
	},
}

func init() {
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "preview without writing")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(syncCmd)
}
