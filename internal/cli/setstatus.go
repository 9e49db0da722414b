package cli

import (
	"fmt"
	"strconv"

	"github.com/ordercloud/order/internal/service/models/order"
	"github.com/spf13/cobra"
)

// NewSetStatusCommand creates the set-status command.
func NewSetStatusCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-status <order-id> <status>",
		Short: "Advance an order to a new status",
		Long: `Advance an order along its lifecycle.

Only transitions allowed by the lifecycle table are offered; the server
validates them again.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid order id %q", args[0])
			}

			status, err := order.ParseStatus(args[1])
			if err != nil {
				return err
			}

			store := rootOpts.Store()

			current, err := store.Order(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !current.Status.CanTransitionTo(status) {
				return fmt.Errorf("order %d cannot move from %s to %s (allowed: %s)",
					id, current.Status, status, describeActions(current.Status))
			}

			updated, err := store.UpdateOrderStatus(cmd.Context(), id, status)
			if err != nil {
				return err
			}
			store.Flush()

			// The displayed status is whatever the server returned.
			fmt.Fprintf(cmd.OutOrStdout(), "Order %d is now %s.\n", updated.ID, updated.Status)

			return nil
		},
	}

	return cmd
}
