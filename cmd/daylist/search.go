package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"daylist/internal/search"
	"daylist/internal/ui"
)

var searchCmd = &cobra.Command{
	Use:     "search <query>",
	GroupID: "tasks",
	Short:   "Search tasks by title",
	Long: `Search your tasks by title substring, case-insensitively.

Results come newest first and show the parent list when the task has one.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a := newApp()
		defer a.close()
		a.mustSignIn()

		results, err := search.New(a.store).Search(cmd.Context(), a.scope(), args[0])
		if err != nil {
			fatalf("search failed: %v", err)
		}

		if len(results) == 0 {
			fmt.Println("No matches")
			return
		}
		for _, r := range results {
			fmt.Printf("%s  %s\n", r.Task.ID, ui.RenderSearchResult(r))
		}
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}
