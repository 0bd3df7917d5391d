package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gros-dev/gros/internal/cli/guard"
)

// NewCartCmd creates the cart command group
func NewCartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Manage your shopping cart",
	}

	cmd.AddCommand(newCartShowCmd())
	cmd.AddCommand(newCartAddCmd())
	cmd.AddCommand(newCartUpdateCmd())
	cmd.AddCommand(newCartRemoveCmd())

	return cmd
}

// cartEnv runs the guard for the cart page and resolves the customer id
func cartEnv() (*env, int64, error) {
	e, err := newEnv()
	if err != nil {
		return nil, 0, err
	}
	if err := e.requireRoute(guard.Route{Path: "/add-to-cart"}); err != nil {
		return nil, 0, err
	}

	id, ok := e.service.CustomerID()
	if !ok {
		// Surfaced as a user-facing message, not an internal error
		return nil, 0, fmt.Errorf("no customer id in session, please log in again")
	}
	return e, id, nil
}

func newCartShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show your cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, id, err := cartEnv()
			if err != nil {
				return err
			}

			cart, err := e.api.GetCart(id)
			if err != nil {
				return err
			}

			if len(cart.Items) == 0 {
				fmt.Println("Your cart is empty.")
				return nil
			}

			for _, item := range cart.Items {
				fmt.Printf("%-26s  %-30s  %8.2f  x%d\n", item.ID, item.ProductName, item.Price, item.Quantity)
			}
			fmt.Printf("\nTotal: %.2f\n", cart.Total)
			return nil
		},
	}
}

func newCartAddCmd() *cobra.Command {
	var quantity int

	cmd := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add a product to your cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, id, err := cartEnv()
			if err != nil {
				return err
			}

			item, err := e.api.AddToCart(id, args[0], quantity)
			if err != nil {
				return err
			}
			fmt.Printf("✓ Added %s x%d to cart.\n", item.ProductName, item.Quantity)
			return nil
		},
	}

	cmd.Flags().IntVar(&quantity, "quantity", 1, "Quantity to add")

	return cmd
}

func newCartUpdateCmd() *cobra.Command {
	var quantity int

	cmd := &cobra.Command{
		Use:   "update <item-id>",
		Short: "Change the quantity of a cart item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, _, err := cartEnv()
			if err != nil {
				return err
			}

			item, err := e.api.UpdateCartItem(args[0], quantity)
			if err != nil {
				return err
			}
			fmt.Printf("✓ %s is now x%d.\n", item.ProductName, item.Quantity)
			return nil
		},
	}

	cmd.Flags().IntVar(&quantity, "quantity", 1, "New quantity")
	cmd.MarkFlagRequired("quantity")

	return cmd
}

func newCartRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <item-id>",
		Short: "Remove an item from your cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, _, err := cartEnv()
			if err != nil {
				return err
			}

			if err := e.api.RemoveCartItem(args[0]); err != nil {
				return err
			}
			fmt.Println("✓ Item removed.")
			return nil
		},
	}
}
