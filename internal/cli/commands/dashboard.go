package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gros-dev/gros/internal/cli/guard"
	"github.com/gros-dev/gros/internal/cli/roles"
)

// NewDashboardCmd creates the dashboard command
func NewDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Open the role-appropriate dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			return runDashboard(e)
		},
	}
}

func runDashboard(e *env) error {
	target := roles.DashboardRoute(e.store)

	route := guard.Route{Path: target}
	if target == roles.AdminDashboardRoute {
		route.RequiresAdmin = true
	}
	if err := e.requireRoute(route); err != nil {
		return err
	}

	fmt.Printf("Welcome, %s!\n", e.service.DisplayName())

	if roles.IsAdmin(e.store) {
		fmt.Println("\nAdmin dashboard:")
		printAdminSummary(e)
		return nil
	}

	fmt.Println("\nYour dashboard:")
	printCustomerSummary(e)
	return nil
}

func printAdminSummary(e *env) {
	orders, err := e.api.ListOrders()
	if err != nil {
		fmt.Printf("  (failed to load orders: %v)\n", err)
		return
	}
	customers, err := e.api.ListCustomers()
	if err != nil {
		fmt.Printf("  (failed to load customers: %v)\n", err)
		return
	}
	fmt.Printf("  Orders:    %d\n", len(orders))
	fmt.Printf("  Customers: %d\n", len(customers))
}

func printCustomerSummary(e *env) {
	id, ok := e.service.CustomerID()
	if !ok {
		// Missing identity is surfaced as a message, never thrown
		fmt.Println("  No customer id in session. Please log in again.")
		return
	}

	cart, err := e.api.GetCart(id)
	if err != nil {
		fmt.Printf("  (failed to load cart: %v)\n", err)
		return
	}
	orders, err := e.api.OrderHistory(id)
	if err != nil {
		fmt.Printf("  (failed to load orders: %v)\n", err)
		return
	}
	fmt.Printf("  Cart items:  %d\n", len(cart.Items))
	fmt.Printf("  Past orders: %d\n", len(orders))
}
