package commands

import (
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/gros-dev/gros/internal/cli/auth"
	"github.com/gros-dev/gros/internal/cli/client"
	"github.com/gros-dev/gros/internal/cli/roles"
	"github.com/gros-dev/gros/internal/cli/session"
)

// NewLoginCmd creates the login command
func NewLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with a customer account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(email, password, false)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set GROS_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set GROS_PASSWORD, will prompt if not provided)")

	return cmd
}

// NewAdminLoginCmd creates the admin-login command
func NewAdminLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "admin-login",
		Short: "Log in with an administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(email, password, true)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set GROS_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set GROS_PASSWORD, will prompt if not provided)")

	return cmd
}

func runLogin(email, password string, admin bool) error {
	// Check for environment variables (useful for scripting)
	if email == "" {
		email = os.Getenv("GROS_EMAIL")
	}
	if password == "" {
		password = os.Getenv("GROS_PASSWORD")
	}

	if email == "" {
		return fmt.Errorf("email is required (use --email flag or GROS_EMAIL env var)")
	}

	// Prompt for password if not provided via flag or env var
	if password == "" {
		if term.IsTerminal(int(syscall.Stdin)) {
			fmt.Print("Password: ")
			bytePassword, err := term.ReadPassword(int(syscall.Stdin))
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			password = string(bytePassword)
			fmt.Println() // New line after password input
		} else {
			return fmt.Errorf("password is required in non-interactive mode (use --password flag or GROS_PASSWORD env var)")
		}
	}

	e, err := newEnv()
	if err != nil {
		return err
	}

	fmt.Printf("Logging in to %s...\n", e.api.BaseURL())

	var resp *client.LoginResponse
	if admin {
		resp, err = e.api.AdminLogin(email, password)
	} else {
		resp, err = e.api.Login(email, password)
	}
	if err != nil {
		return err
	}

	// Save token
	if err := e.tokens.SaveToken(e.api.BaseURL(), resp.Token); err != nil {
		return fmt.Errorf("failed to save authentication token: %w", err)
	}

	// Copy the login payload into the session, field by field
	e.service.SetLoginData(auth.LoginData{
		CustomerID:   resp.CustomerID,
		Email:        resp.Email,
		UserRole:     resp.UserRole,
		CustomerName: resp.CustomerName,
	})
	if resp.IsAdmin {
		// Legacy flag some admin flows still rely on
		e.store.Set(session.KeyIsAdmin, "true")
	}

	fmt.Println("✓ Login successful!")
	fmt.Printf("  User: %s (%s)\n", e.service.DisplayName(), resp.Email)
	fmt.Printf("  Dashboard: %s\n", roles.DashboardRoute(e.store))

	return nil
}
