package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gros-dev/gros/internal/cli/client"
	"github.com/gros-dev/gros/internal/cli/guard"
)

// NewOrdersCmd creates the orders command group
func NewOrdersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Place orders and view order history",
	}

	cmd.AddCommand(newOrdersPlaceCmd())
	cmd.AddCommand(newOrdersHistoryCmd())
	cmd.AddCommand(newOrdersListCmd())

	return cmd
}

func newOrdersPlaceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "place",
		Short: "Place an order from your cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			if err := e.requireRoute(guard.Route{Path: "/buy-now"}); err != nil {
				return err
			}

			id, ok := e.service.CustomerID()
			if !ok {
				return fmt.Errorf("no customer id in session, please log in again")
			}

			order, err := e.api.PlaceOrder(id)
			if err != nil {
				return err
			}

			fmt.Printf("✓ Order placed: %s\n", order.ID)
			printOrder(*order)
			return nil
		},
	}
}

func newOrdersHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show your past orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			if err := e.requireRoute(guard.Route{Path: "/user-order-history"}); err != nil {
				return err
			}

			id, ok := e.service.CustomerID()
			if !ok {
				return fmt.Errorf("no customer id in session, please log in again")
			}

			orders, err := e.api.OrderHistory(id)
			if err != nil {
				return err
			}

			if len(orders) == 0 {
				fmt.Println("No orders yet.")
				return nil
			}
			for _, order := range orders {
				printOrder(order)
			}
			return nil
		},
	}
}

func newOrdersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all orders (admin only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			if err := e.requireRoute(guard.Route{Path: "/admin-order-history", Role: "ADMIN"}); err != nil {
				return err
			}

			orders, err := e.api.ListOrders()
			if err != nil {
				return err
			}

			if len(orders) == 0 {
				fmt.Println("No orders found.")
				return nil
			}
			for _, order := range orders {
				fmt.Printf("customer %d:\n", order.CustomerID)
				printOrder(order)
			}
			return nil
		},
	}
}

func printOrder(order client.Order) {
	fmt.Printf("%s  %s  %.2f  (%s)\n", order.ID, order.PlacedAt.Format("2006-01-02 15:04"), order.Total, order.Status)
	for _, item := range order.Items {
		fmt.Printf("    %-30s  %8.2f  x%d\n", item.ProductName, item.Price, item.Quantity)
	}
}
