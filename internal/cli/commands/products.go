package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gros-dev/gros/internal/cli/client"
	"github.com/gros-dev/gros/internal/cli/guard"
)

// NewProductsCmd creates the products command group
func NewProductsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Browse and manage the product catalog",
	}

	cmd.AddCommand(newProductsListCmd())
	cmd.AddCommand(newProductsShowCmd())
	cmd.AddCommand(newProductsAddCmd())
	cmd.AddCommand(newProductsUpdateCmd())
	cmd.AddCommand(newProductsDeleteCmd())

	return cmd
}

func newProductsListCmd() *cobra.Command {
	var page, size int
	var query string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}

			// Browsing the catalog is public
			list, err := e.api.ListProducts(page, size, query)
			if err != nil {
				return err
			}

			if len(list.Products) == 0 {
				fmt.Println("No products found.")
				return nil
			}

			for _, p := range list.Products {
				fmt.Printf("%-26s  %-30s  %8.2f  stock %d\n", p.ID, p.Name, p.Price, p.Stock)
			}
			fmt.Printf("\nPage %d of %d products\n", list.Page, list.Total)
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&size, "size", 20, "Page size")
	cmd.Flags().StringVar(&query, "search", "", "Search query")

	return cmd
}

func newProductsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}

			p, err := e.api.GetProduct(args[0])
			if err != nil {
				return err
			}

			fmt.Printf("%s\n", p.Name)
			fmt.Printf("  ID:          %s\n", p.ID)
			fmt.Printf("  Price:       %.2f\n", p.Price)
			fmt.Printf("  Stock:       %d\n", p.Stock)
			fmt.Printf("  Description: %s\n", p.Description)
			return nil
		},
	}
}

func newProductsAddCmd() *cobra.Command {
	var req client.ProductRequest

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a product (admin only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			if err := e.requireRoute(guard.Route{Path: "/admin-dashboard/insert-product", RequiresAdmin: true}); err != nil {
				return err
			}

			p, err := e.api.CreateProduct(req)
			if err != nil {
				return err
			}
			fmt.Printf("✓ Product created: %s (%s)\n", p.Name, p.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "Product name")
	cmd.Flags().StringVar(&req.Description, "description", "", "Product description")
	cmd.Flags().Float64Var(&req.Price, "price", 0, "Unit price")
	cmd.Flags().IntVar(&req.Stock, "stock", 0, "Stock quantity")
	cmd.Flags().StringVar(&req.ImageURL, "image-url", "", "Image URL")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("price")

	return cmd
}

func newProductsUpdateCmd() *cobra.Command {
	var req client.ProductRequest

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a product (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			if err := e.requireRoute(guard.Route{Path: "/admin-dashboard/update-product", RequiresAdmin: true}); err != nil {
				return err
			}

			p, err := e.api.UpdateProduct(args[0], req)
			if err != nil {
				return err
			}
			fmt.Printf("✓ Product updated: %s\n", p.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "Product name")
	cmd.Flags().StringVar(&req.Description, "description", "", "Product description")
	cmd.Flags().Float64Var(&req.Price, "price", 0, "Unit price")
	cmd.Flags().IntVar(&req.Stock, "stock", 0, "Stock quantity")
	cmd.Flags().StringVar(&req.ImageURL, "image-url", "", "Image URL")

	return cmd
}

func newProductsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a product (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			if err := e.requireRoute(guard.Route{Path: "/admin-dashboard/products", RequiresAdmin: true}); err != nil {
				return err
			}

			if err := e.api.DeleteProduct(args[0]); err != nil {
				return err
			}
			fmt.Println("✓ Product deleted.")
			return nil
		},
	}
}
