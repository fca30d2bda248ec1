package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"daylist/internal/account"
	"daylist/internal/ui"
)

var (
	loginID    string
	loginEmail string
)

var loginCmd = &cobra.Command{
	Use:     "login",
	GroupID: "account",
	Short:   "Sign in and provision the account",
	Long: `Sign in with your account identity.

The identity is issued by your auth provider (e.g. a Clerk user ID). On
first sign-in the account row is provisioned in the store; signing in
again with the same identity is a no-op.

Without flags, an interactive form prompts for the identity and email.`,
	Run: func(cmd *cobra.Command, args []string) {
		id := strings.TrimSpace(loginID)
		email := strings.TrimSpace(loginEmail)

		if id == "" && ui.IsTTY() {
			form := huh.NewForm(
				huh.NewGroup(
					huh.NewInput().
						Title("Account ID").
						Description("Your auth provider user ID").
						Value(&id),
					huh.NewInput().
						Title("Email").
						Value(&email),
				),
			)
			if err := form.Run(); err != nil {
				fatalf("login cancelled: %v", err)
			}
			id = strings.TrimSpace(id)
			email = strings.TrimSpace(email)
		}

		if id == "" {
			fatalf("account ID is required (use --id or run interactively)")
		}

		a := newApp()
		defer a.close()

		session, err := a.auth.SignIn(id, email)
		if err != nil {
			fatalf("failed to save session: %v", err)
		}

		p := account.New(a.store, a.logger)
		if p.Ensure(cmd.Context(), session.ExternalID, session.Email) {
			fmt.Printf("%s Signed in as %s\n", ui.RenderPass("✓"), session.ExternalID)
		} else {
			fmt.Printf("%s Signed in as %s (provisioning deferred, will retry on next run)\n",
				ui.RenderWarn("⚠"), session.ExternalID)
		}
	},
}

var logoutCmd = &cobra.Command{
	Use:     "logout",
	GroupID: "account",
	Short:   "Sign out and forget the local session",
	Run: func(cmd *cobra.Command, args []string) {
		a := newApp()
		defer a.close()

		if err := a.auth.SignOut(); err != nil {
			fatalf("failed to clear session: %v", err)
		}
		fmt.Printf("%s Signed out\n", ui.RenderPass("✓"))
	},
}

var whoamiCmd = &cobra.Command{
	Use:     "whoami",
	GroupID: "account",
	Short:   "Show the current session",
	Run: func(cmd *cobra.Command, args []string) {
		a := newApp()
		defer a.close()

		if !a.session.SignedIn {
			fmt.Println("Not signed in")
			return
		}
		fmt.Printf("Signed in as %s", a.session.ExternalID)
		if a.session.Email != "" {
			fmt.Printf(" <%s>", a.session.Email)
		}
		fmt.Println()
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginID, "id", "", "account identity from your auth provider")
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
}
