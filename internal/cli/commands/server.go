package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gros-dev/gros/internal/cli/userconfig"
)

// NewServerCmd creates the server command for configuring the backend URL
func NewServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server [url]",
		Short: "Show or set the storefront server URL",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				url, err := userconfig.GetServerURL()
				if err != nil {
					return err
				}
				fmt.Println(url)
				return nil
			}

			if err := userconfig.SetServerURL(args[0]); err != nil {
				return err
			}
			fmt.Printf("✓ Server set to %s\n", args[0])
			return nil
		},
	}

	return cmd
}
