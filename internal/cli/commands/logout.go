package commands

import (
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

// NewLogoutCmd creates the logout command
func NewLogoutCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Log out of the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			return runLogout(e, force, promptConfirm)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Skip the confirmation prompt")

	return cmd
}

// promptConfirm asks the user to confirm the logout
func promptConfirm() (bool, error) {
	prompt := promptui.Select{
		Label: "Log out of your session?",
		Items: []string{"Yes, log out", "Cancel"},
	}

	idx, _, err := prompt.Run()
	if err != nil {
		return false, fmt.Errorf("prompt failed: %w", err)
	}
	return idx == 0, nil
}

// runLogout drives the confirmation handshake: the command subscribes as
// the mounted page would, requests the logout, and answers the request from
// the user's prompt choice. --force logs out directly without a request,
// which the service explicitly permits.
func runLogout(e *env, force bool, confirm func() (bool, error)) error {
	if !e.service.IsLoggedIn() {
		fmt.Println("Not logged in.")
		return nil
	}

	if force {
		e.service.ConfirmLogout()
		return finishLogout(e)
	}

	var decided bool
	unsubscribe := e.service.Subscribe(func(confirmRequested bool) {
		if !confirmRequested {
			// Cancellation signal: hide the dialog without acting
			fmt.Println("Logout cancelled.")
			return
		}

		ok, err := confirm()
		if err != nil || !ok {
			e.service.CancelLogout()
			return
		}
		decided = true
		e.service.ConfirmLogout()
	})
	defer unsubscribe()

	e.service.RequestLogout()

	if !decided {
		return nil
	}
	return finishLogout(e)
}

func finishLogout(e *env) error {
	// Drop the JWT alongside the cleared session
	if err := e.tokens.DeleteToken(e.api.BaseURL()); err != nil {
		fmt.Printf("Warning: failed to remove stored token: %v\n", err)
	}

	fmt.Println("✓ Logged out.")
	return nil
}
