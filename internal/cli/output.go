package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/ordercloud/order/internal/service/models/order"
)

// renderOrder writes the detail view: the order's fields, its items and the
// actions its current status still allows.
func renderOrder(w io.Writer, o order.Order) {
	fmt.Fprintf(w, "Order #%d\n", o.ID)
	fmt.Fprintf(w, "  Account:  %s\n", o.AccountID)
	fmt.Fprintf(w, "  Status:   %s\n", o.Status)
	fmt.Fprintf(w, "  Total:    %s\n", o.TotalAmount.StringFixed(2))
	fmt.Fprintf(w, "  Address:  %s\n", o.ShippingAddress)
	if o.PaymentID != "" {
		fmt.Fprintf(w, "  Payment:  %s\n", o.PaymentID)
	}
	fmt.Fprintf(w, "  Created:  %s\n", o.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "  Updated:  %s\n", o.UpdatedAt.Format(time.RFC3339))

	fmt.Fprintln(w, "  Items:")
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "    PRODUCT\tQTY\tPRICE\tSUBTOTAL")
	for _, item := range o.Items {
		fmt.Fprintf(tw, "    %s\t%d\t%s\t%s\n",
			item.ProductID,
			item.Quantity,
			item.Price.StringFixed(2),
			item.Subtotal.StringFixed(2),
		)
	}
	tw.Flush()

	fmt.Fprintf(w, "  Actions:  %s\n", describeActions(o.Status))
}

// renderOrders writes the list view.
func renderOrders(w io.Writer, orders []order.Order) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tTOTAL\tITEMS\tCREATED")
	for _, o := range orders {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n",
			o.ID,
			o.Status,
			o.TotalAmount.StringFixed(2),
			len(o.Items),
			o.CreatedAt.Format(time.RFC3339),
		)
	}
	tw.Flush()
}

func describeActions(s order.Status) string {
	next := s.NextStatuses()
	if len(next) == 0 {
		return "none (terminal status)"
	}

	parts := make([]string, len(next))
	for i, ns := range next {
		parts[i] = ns.String()
	}

	return "advance to " + strings.Join(parts, ", ")
}
