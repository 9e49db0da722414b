package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/ordercloud/order/internal/service/models/order"
	"github.com/spf13/cobra"
)

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "get <order-id>",
		Short:         "Show one order",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid order id %q", args[0])
			}

			o, err := rootOpts.Store().Order(cmd.Context(), id)
			if err != nil {
				if errors.Is(err, order.ErrNotFound) {
					// Not-found gets its own view, not a generic error.
					fmt.Fprintf(cmd.OutOrStdout(), "Order not found: %d\n", id)

					return nil
				}

				return err
			}

			renderOrder(cmd.OutOrStdout(), o)

			return nil
		},
	}

	return cmd
}
