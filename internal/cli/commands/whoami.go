package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gros-dev/gros/internal/cli/guard"
	"github.com/gros-dev/gros/internal/cli/roles"
)

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			return runWhoami(e)
		},
	}
}

func runWhoami(e *env) error {
	if err := e.requireRoute(guard.Route{Path: roles.ProfileRoute(e.store)}); err != nil {
		return err
	}

	id, _ := e.service.CustomerID()
	email, _ := e.service.Email()

	fmt.Printf("Name:  %s\n", e.service.DisplayName())
	fmt.Printf("Email: %s\n", email)
	fmt.Printf("ID:    %d\n", id)
	fmt.Printf("Role:  %s\n", roles.UserRole(e.store))

	return nil
}
