package cli

import (
	"fmt"
	"io"
	"net/url"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/view"
)

func newCartCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			page, err := rt.visit(cmd.Context(), "/cart")
			if err != nil {
				return err
			}
			v := page.View.(*view.CartView)
			if v.Empty() {
				fmt.Fprintln(cmd.OutOrStdout(), "Your cart is empty")
				return nil
			}
			return printLines(cmd.OutOrStdout(), v.Lines(), v.Total())
		},
	}
	cmd.AddCommand(newCartAddCommand(rt), newCartRemoveCommand(rt))
	return cmd
}

func newCartAddCommand(rt *runtime) *cobra.Command {
	var size, color string
	var quantity int
	cmd := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add a product variant to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := rt.visit(cmd.Context(), "/products/"+url.PathEscape(args[0]))
			if err != nil {
				return err
			}
			if page.Err != nil {
				return fmt.Errorf("failed to load product: %w", page.Err)
			}

			detail := page.View.(*view.ProductDetail)
			if size != "" {
				if err := detail.SelectSize(size); err != nil {
					return fmt.Errorf("%w: %s", err, size)
				}
			}
			if color != "" {
				if err := detail.SelectColor(color); err != nil {
					return fmt.Errorf("%w: %s", err, color)
				}
			}
			if err := detail.SetQuantity(quantity); err != nil {
				return err
			}

			if err := report(cmd, detail.AddToCart(cmd.Context())); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cart: %d item(s)\n", rt.cart.ItemCount())
			return nil
		},
	}
	cmd.Flags().StringVar(&size, "size", "", "size to add")
	cmd.Flags().StringVar(&color, "color", "", "color to add")
	cmd.Flags().IntVar(&quantity, "qty", 1, "quantity to add")
	return cmd
}

func newCartRemoveCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <product-id>",
		Short: "Remove every line of a product from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := rt.visit(cmd.Context(), "/cart")
			if err != nil {
				return err
			}
			return report(cmd, page.View.(*view.CartView).Remove(cmd.Context(), args[0]))
		},
	}
}

func newCheckoutCommand(rt *runtime) *cobra.Command {
	var address string
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			page, err := rt.visit(cmd.Context(), "/checkout")
			if err != nil {
				return err
			}
			cartView, ok := page.View.(*view.CartView)
			if ok {
				// An empty cart sends checkout back to the cart page.
				return report(cmd, cartView.Checkout())
			}

			checkout := page.View.(*view.Checkout)
			if err := printLines(cmd.OutOrStdout(), checkout.Lines(), checkout.Total()); err != nil {
				return err
			}
			if err := report(cmd, checkout.PlaceOrder(cmd.Context(), address)); err != nil {
				return err
			}
			if order := checkout.Placed(); order != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Order %s: $%s, %s\n", order.ID, order.TotalAmount.StringFixed(2), order.Status)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&address, "address", "", "shipping address")
	return cmd
}

func newOrdersCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "orders",
		Short: "Show the order history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			page, err := rt.visit(cmd.Context(), "/orders")
			if err != nil {
				return err
			}
			if page.Err != nil {
				return fmt.Errorf("failed to load orders: %w", page.Err)
			}

			orders := page.View.(*view.OrderHistory).Orders()
			if len(orders) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No orders yet")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ORDER\tDATE\tITEMS\tTOTAL\tSTATUS")
			for _, o := range orders {
				fmt.Fprintf(w, "%s\t%s\t%d\t$%s\t%s\n",
					o.ID, o.CreatedAt.Format("2006-01-02"), domain.CountItems(o.Items), o.TotalAmount.StringFixed(2), o.Status)
			}
			return w.Flush()
		},
	}
}

func printLines(out io.Writer, lines []view.Line, total string) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRODUCT\tSIZE\tCOLOR\tQTY\tSUBTOTAL")
	for _, l := range lines {
		name := l.Item.ProductID
		if l.Product != nil {
			name = l.Product.Name
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t$%s\n", name, l.Item.Size, l.Item.Color, l.Item.Quantity, l.Subtotal.StringFixed(2))
	}
	fmt.Fprintf(w, "\t\t\tTotal\t$%s\n", total)
	return w.Flush()
}
