package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ordercloud/order/internal/service/models/order"
	"github.com/ordercloud/order/internal/service/models/orderitem"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// CreateOptions holds flags for the create command.
type CreateOptions struct {
	*RootOptions
	AccountID       string
	ShippingAddress string
	PaymentMethod   string
	Items           []string
}

// NewCreateCommand creates the create command.
func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CreateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new order",
		Long: `Create a new order for an account.

Each --item takes the form productId:quantity:price.

Example:
  orderctl create --account acc-1 --address "1 Main St" --item p1:2:9.99`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.AccountID, "account", "", "owning account id")
	cmd.Flags().StringVar(&opts.ShippingAddress, "address", "", "shipping address")
	cmd.Flags().StringVar(&opts.PaymentMethod, "payment", "", "payment method")
	cmd.Flags().StringArrayVar(&opts.Items, "item", nil, "order item as productId:quantity:price (repeatable)")

	return cmd
}

func runCreate(opts *CreateOptions, cmd *cobra.Command) error {
	items := make([]orderitem.OrderItem, 0, len(opts.Items))
	for _, raw := range opts.Items {
		item, err := parseItem(raw)
		if err != nil {
			return err
		}
		items = append(items, item)
	}

	req := order.CreateOrderRequest{
		AccountID:       opts.AccountID,
		Items:           items,
		ShippingAddress: opts.ShippingAddress,
		PaymentMethod:   opts.PaymentMethod,
	}

	store := opts.Store()
	created, err := store.CreateOrder(cmd.Context(), req)
	if err != nil {
		var verrs order.ValidationErrors
		if errors.As(err, &verrs) {
			// Field-level messages, one per line.
			for _, fe := range verrs {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", fe.Field, fe.Message)
			}

			return errors.New("order was not created")
		}

		return err
	}
	store.Flush()

	fmt.Fprintf(cmd.OutOrStdout(), "Order created.\n\n")
	renderOrder(cmd.OutOrStdout(), created)

	return nil
}

// parseItem converts productId:quantity:price to an item.
func parseItem(raw string) (orderitem.OrderItem, error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 3 {
		return orderitem.OrderItem{}, fmt.Errorf("invalid item %q: expected productId:quantity:price", raw)
	}

	quantity, err := strconv.Atoi(parts[1])
	if err != nil {
		return orderitem.OrderItem{}, fmt.Errorf("invalid item %q: bad quantity: %v", raw, err)
	}

	price, err := decimal.NewFromString(parts[2])
	if err != nil {
		return orderitem.OrderItem{}, fmt.Errorf("invalid item %q: bad price: %v", raw, err)
	}

	return orderitem.OrderItem{
		ProductID: parts[0],
		Quantity:  quantity,
		Price:     price,
	}, nil
}
