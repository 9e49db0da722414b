package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewCancelCommand creates the cancel command.
func NewCancelCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "cancel <order-id>",
		Short:         "Cancel an order",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid order id %q", args[0])
			}

			store := rootOpts.Store()

			// Cancellation is only offered while the lifecycle allows it.
			current, err := store.Order(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !current.Status.Cancellable() {
				return fmt.Errorf("order %d cannot be cancelled: status is %s", id, current.Status)
			}

			cancelled, err := store.CancelOrder(cmd.Context(), id)
			if err != nil {
				return err
			}
			store.Flush()

			fmt.Fprintf(cmd.OutOrStdout(), "Order %d cancelled (status %s).\n", cancelled.ID, cancelled.Status)

			return nil
		},
	}

	return cmd
}
