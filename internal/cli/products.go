package cli

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fjod/go_cart/storefront/internal/view"
)

func newProductsCommand(rt *runtime) *cobra.Command {
	var category string
	var featured bool
	cmd := &cobra.Command{
		Use:   "products",
		Short: "List products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			query := url.Values{}
			if category != "" {
				query.Set("category", category)
			}
			if cmd.Flags().Changed("featured") {
				query.Set("featured", strconv.FormatBool(featured))
			}
			target := "/products"
			if len(query) > 0 {
				target += "?" + query.Encode()
			}

			page, err := rt.visit(cmd.Context(), target)
			if err != nil {
				return err
			}
			if page.Err != nil {
				return fmt.Errorf("failed to load products: %w", page.Err)
			}

			products := page.View.(*view.ProductList).Products()
			if len(products) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No products found")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tPRICE\tFEATURED")
			for _, p := range products {
				fmt.Fprintf(w, "%s\t%s\t%s\t$%s\t%t\n", p.ID, p.Name, p.Category, p.Price.StringFixed(2), p.Featured)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "shoes, clothing or accessories")
	cmd.Flags().BoolVar(&featured, "featured", false, "only featured (or, with =false, only non-featured) products")
	return cmd
}

func newProductCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "product <id>",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := rt.visit(cmd.Context(), "/products/"+url.PathEscape(args[0]))
			if err != nil {
				return err
			}
			if page.Err != nil {
				return fmt.Errorf("failed to load product: %w", page.Err)
			}

			p := page.View.(*view.ProductDetail).Product()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s  $%s\n", p.Name, p.Price.StringFixed(2))
			fmt.Fprintf(out, "%s\n\n", p.Description)
			fmt.Fprintf(out, "Category: %s\n", p.Category)
			fmt.Fprintf(out, "Sizes:    %s\n", strings.Join(p.Sizes, ", "))
			fmt.Fprintf(out, "Colors:   %s\n", strings.Join(p.Colors, ", "))
			fmt.Fprintf(out, "In stock: %d\n", p.Stock)
			return nil
		},
	}
}

func newSeedCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the sample catalogue into an empty server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			msg, err := rt.catalog.Seed(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
}
