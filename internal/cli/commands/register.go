package commands

import (
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// NewRegisterCmd creates the register command
func NewRegisterCmd() *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new customer account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegister(name, email, password)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password (will prompt if not provided)")

	return cmd
}

func runRegister(name, email, password string) error {
	if name == "" || email == "" {
		return fmt.Errorf("name and email are required")
	}

	if password == "" {
		if term.IsTerminal(int(syscall.Stdin)) {
			fmt.Print("Password: ")
			bytePassword, err := term.ReadPassword(int(syscall.Stdin))
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			password = string(bytePassword)
			fmt.Println()
		} else {
			fmt.Fprintln(os.Stderr, "password is required in non-interactive mode")
			return fmt.Errorf("password is required")
		}
	}

	e, err := newEnv()
	if err != nil {
		return err
	}

	resp, err := e.api.Register(name, email, password)
	if err != nil {
		return err
	}

	fmt.Println("✓ Account created!")
	fmt.Printf("  Customer ID: %d\n", resp.CustomerID)
	fmt.Printf("  Email: %s\n", resp.Email)
	fmt.Println("Run 'gros login' to sign in.")

	return nil
}
