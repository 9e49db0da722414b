package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	AccountID string
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List an account's orders",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			orders, err := opts.Store().OrdersByAccount(cmd.Context(), opts.AccountID)
			if err != nil {
				return err
			}

			if len(orders) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No orders found for account: %s\n", opts.AccountID)

				return nil
			}

			renderOrders(cmd.OutOrStdout(), orders)

			return nil
		},
	}

	cmd.Flags().StringVar(&opts.AccountID, "account", "", "account id (required)")
	_ = cmd.MarkFlagRequired("account")

	return cmd
}
