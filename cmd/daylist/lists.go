package main

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"daylist/internal/model"
	"daylist/internal/store"
	"daylist/internal/ui"
)

var (
	listBackgroundType  string
	listBackgroundValue string
	listRmForce         bool
)

var listsCmd = &cobra.Command{
	Use:     "lists",
	GroupID: "lists",
	Short:   "Show and manage your lists",
	Run: func(cmd *cobra.Command, args []string) {
		a := newApp()
		defer a.close()
		a.mustSignIn()

		lists, err := a.store.ListLists(cmd.Context(), a.scope())
		if err != nil {
			fatalf("failed to load lists: %v", err)
		}

		if len(lists) == 0 {
			fmt.Println("No lists yet. Create one with 'daylist lists add <title>'")
			return
		}
		for _, l := range lists {
			fmt.Printf("%s  %s\n", l.ID, ui.RenderList(l))
		}
	},
}

var listsAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create a new list",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a := newApp()
		defer a.close()
		a.mustSignIn()

		draft := store.ListDraft{
			Title:           args[0],
			BackgroundType:  model.BackgroundType(listBackgroundType),
			BackgroundValue: listBackgroundValue,
		}
		list, err := a.store.CreateList(cmd.Context(), a.scope(), draft)
		if err != nil {
			fatalf("failed to create list: %v", err)
		}
		fmt.Printf("%s Created list %s (%s)\n", ui.RenderPass("✓"), list.Title, list.ID)
	},
}

var listsRenameCmd = &cobra.Command{
	Use:   "rename <list-id> <title>",
	Short: "Rename a list",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		a := newApp()
		defer a.close()
		a.mustSignIn()

		title := args[1]
		list, err := a.store.UpdateList(cmd.Context(), a.scope(), args[0], store.ListPatch{Title: &title})
		if err != nil {
			fatalf("failed to rename list: %v", err)
		}
		fmt.Printf("%s Renamed list to %s\n", ui.RenderPass("✓"), list.Title)
	},
}

var listsRmCmd = &cobra.Command{
	Use:   "rm <list-id>",
	Short: "Delete a list",
	Long: `Delete a list. Its tasks survive and move out of any list.

Asks for confirmation on a terminal unless --force is given.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a := newApp()
		defer a.close()
		a.mustSignIn()

		if !listRmForce && ui.IsTTY() {
			confirmed := false
			prompt := huh.NewConfirm().
				Title("Delete this list?").
				Description("Tasks in the list are kept and become unlisted.").
				Value(&confirmed)
			if err := prompt.Run(); err != nil {
				fatalf("cancelled: %v", err)
			}
			if !confirmed {
				fmt.Println("Aborted")
				return
			}
		}

		if err := a.store.DeleteList(cmd.Context(), a.scope(), args[0]); err != nil {
			fatalf("failed to delete list: %v", err)
		}
		fmt.Printf("%s Deleted list %s\n", ui.RenderPass("✓"), args[0])
	},
}

func init() {
	listsAddCmd.Flags().StringVar(&listBackgroundType, "background", "",
		"background kind: color, photo, or custom (default color)")
	listsAddCmd.Flags().StringVar(&listBackgroundValue, "background-value", "",
		"background payload, e.g. a color code")
	listsRmCmd.Flags().BoolVarP(&listRmForce, "force", "f", false, "skip confirmation")

	listsCmd.AddCommand(listsAddCmd)
	listsCmd.AddCommand(listsRenameCmd)
	listsCmd.AddCommand(listsRmCmd)
	rootCmd.AddCommand(listsCmd)
}
