package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"daylist/internal/due"
	"daylist/internal/model"
	"daylist/internal/store"
	"daylist/internal/ui"
)

var (
	dayListID    string
	addDue       string
	addListID    string
	addImportant bool
)

var dayCmd = &cobra.Command{
	Use:     "day",
	GroupID: "tasks",
	Short:   "Show your tasks",
	Long: `Show your tasks in creation order.

With --list, only that list's tasks are shown.`,
	Run: func(cmd *cobra.Command, args []string) {
		a := newApp()
		defer a.close()
		a.mustSignIn()

		var listID *string
		if dayListID != "" {
			listID = &dayListID
		}

		c := a.collection(cmd.Context(), func(ctx context.Context, scope store.Scope) ([]model.Task, error) {
			return a.store.ListTasks(ctx, scope, listID)
		})
		defer c.Close()

		printTasks(c.Items())
	},
}

var importantCmd = &cobra.Command{
	Use:     "important",
	GroupID: "tasks",
	Short:   "Show starred tasks, most recent first",
	Run: func(cmd *cobra.Command, args []string) {
		a := newApp()
		defer a.close()
		a.mustSignIn()

		c := a.collection(cmd.Context(), a.store.ListImportantTasks)
		defer c.Close()

		printTasks(c.Items())
	},
}

var addCmd = &cobra.Command{
	Use:     "add <title>",
	GroupID: "tasks",
	Short:   "Add a task",
	Long: `Add a task.

The --due flag accepts an ISO date ("2026-09-15") or natural language
("tomorrow", "next friday 9am").`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a := newApp()
		defer a.close()
		a.mustSignIn()

		draft := store.TaskDraft{Title: args[0], Important: addImportant}
		if addListID != "" {
			draft.ListID = &addListID
		}
		if addDue != "" {
			dueAt, err := due.Parse(addDue, time.Now())
			if err != nil {
				fatalf("could not understand due date %q", addDue)
			}
			draft.DueDate = &dueAt
		}

		c := a.collection(cmd.Context(), func(ctx context.Context, scope store.Scope) ([]model.Task, error) {
			return a.store.ListTasks(ctx, scope, nil)
		})
		defer c.Close()

		task, err := c.Create(cmd.Context(), draft)
		if err != nil {
			fatalf("failed to add task: %v", err)
		}
		fmt.Printf("%s Added %s (%s)\n", ui.RenderPass("✓"), task.Title, task.ID)
	},
}

var doneCmd = &cobra.Command{
	Use:     "done <task-id>",
	GroupID: "tasks",
	Short:   "Mark a task completed",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setTaskFlag(cmd.Context(), args[0], flagCompleted, true)
	},
}

var undoneCmd = &cobra.Command{
	Use:     "undone <task-id>",
	GroupID: "tasks",
	Short:   "Mark a task not completed",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setTaskFlag(cmd.Context(), args[0], flagCompleted, false)
	},
}

var starCmd = &cobra.Command{
	Use:     "star <task-id>",
	GroupID: "tasks",
	Short:   "Mark a task important",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setTaskFlag(cmd.Context(), args[0], flagImportant, true)
	},
}

var unstarCmd = &cobra.Command{
	Use:     "unstar <task-id>",
	GroupID: "tasks",
	Short:   "Remove a task's star",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setTaskFlag(cmd.Context(), args[0], flagImportant, false)
	},
}

var rmCmd = &cobra.Command{
	Use:     "rm <task-id>",
	GroupID: "tasks",
	Short:   "Delete a task",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a := newApp()
		defer a.close()
		a.mustSignIn()

		c := a.collection(cmd.Context(), func(ctx context.Context, scope store.Scope) ([]model.Task, error) {
			return a.store.ListTasks(ctx, scope, nil)
		})
		defer c.Close()

		if err := c.Delete(cmd.Context(), args[0]); err != nil {
			fatalf("failed to delete task: %v", err)
		}
		fmt.Printf("%s Deleted task %s\n", ui.RenderPass("✓"), args[0])
	},
}

type taskFlag int

const (
	flagCompleted taskFlag = iota
	flagImportant
)

// setTaskFlag drives a flag to the requested value through the collection's
// optimistic toggle. Already-correct flags are left alone.
func setTaskFlag(ctx context.Context, id string, flag taskFlag, want bool) {
	a := newApp()
	defer a.close()
	a.mustSignIn()

	c := a.collection(ctx, func(ctx context.Context, scope store.Scope) ([]model.Task, error) {
		return a.store.ListTasks(ctx, scope, nil)
	})
	defer c.Close()

	var current *model.Task
	for _, t := range c.Items() {
		if t.ID == id {
			current = &t
			break
		}
	}
	if current == nil {
		fatalf("task %s not found", id)
	}

	have := current.Completed
	toggle := c.ToggleCompleted
	noun := "completed"
	if flag == flagImportant {
		have = current.Important
		toggle = c.ToggleImportant
		noun = "important"
	}

	if have == want {
		fmt.Printf("Task already %s\n", stateWord(noun, want))
		return
	}
	if err := toggle(ctx, id); err != nil {
		fatalf("failed to update task: %v", err)
	}
	fmt.Printf("%s Marked %s %s\n", ui.RenderPass("✓"), current.Title, stateWord(noun, want))
}

func stateWord(noun string, set bool) string {
	if set {
		return noun
	}
	return "not " + noun
}

func printTasks(tasks []model.Task) {
	if len(tasks) == 0 {
		fmt.Println("Nothing here. Add a task with 'daylist add <title>'")
		return
	}
	for _, t := range tasks {
		fmt.Printf("%s  %s\n", t.ID, ui.RenderTask(t))
	}
}

func init() {
	dayCmd.Flags().StringVar(&dayListID, "list", "", "only show this list's tasks")

	addCmd.Flags().StringVar(&addDue, "due", "", "due date, ISO or natural language")
	addCmd.Flags().StringVar(&addListID, "list", "", "put the task in this list")
	addCmd.Flags().BoolVar(&addImportant, "important", false, "star the task")

	rootCmd.AddCommand(dayCmd)
	rootCmd.AddCommand(importantCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(undoneCmd)
	rootCmd.AddCommand(starCmd)
	rootCmd.AddCommand(unstarCmd)
	rootCmd.AddCommand(rmCmd)
}
