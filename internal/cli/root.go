package cli

import (
	"github.com/ordercloud/order/internal/client"
	"github.com/ordercloud/order/internal/client/querycache"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	APIURL string

	// NewStore allows overriding store construction (for testing). If nil,
	// a store over a fresh cache and the configured API URL is used.
	NewStore func() *client.Store
}

// Store builds the order store the commands work against.
func (o *RootOptions) Store() *client.Store {
	if o.NewStore != nil {
		return o.NewStore()
	}

	api := client.NewClient()
	if o.APIURL != "" {
		api = client.NewClient(client.WithBaseURL(o.APIURL))
	}

	return client.NewStore(api, querycache.New())
}

// NewRootCommand creates the root command for the orderctl CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "orderctl",
		Short: "Manage orders from the command line",
		Long:  "orderctl creates, lists, inspects, cancels and advances orders against the order service.",
	}

	cmd.PersistentFlags().StringVar(&opts.APIURL, "api-url", "", "order API base URL (falls back to ORDER_API_URL, then "+client.DefaultBaseURL+")")

	cmd.AddCommand(NewCreateCommand(opts))
	cmd.AddCommand(NewGetCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewCancelCommand(opts))
	cmd.AddCommand(NewSetStatusCommand(opts))

	return cmd
}
