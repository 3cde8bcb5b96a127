package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/fivetwenty-io/webflow/pkg/webflow"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewInfoCommand creates the info command.
func NewInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Display token authorization info",
		Long:  "Display the authorization behind the configured API token",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, client webflow.Client) error {
				info, err := client.Info(ctx)
				if err != nil {
					return fmt.Errorf("failed to get API info: %w", describeError(err))
				}

				return render(cmd.OutOrStdout(), info, func(table *tablewriter.Table) error {
					table.Header("Property", "Value")

					_ = table.Append("ID", info.ID)
					_ = table.Append("Grant Type", orNotAvailable(info.GrantType))
					_ = table.Append("Status", orNotAvailable(info.Status))
					_ = table.Append("Rate Limit", strconv.Itoa(info.RateLimit))
					_ = table.Append("Created", formatTime(&info.CreatedOn))
					_ = table.Append("Last Used", formatTime(info.LastUsed))
					_ = table.Append("Sites", orNotAvailable(strings.Join(info.Sites, "\n")))
					_ = table.Append("Orgs", orNotAvailable(strings.Join(info.Orgs, "\n")))

					if info.Application != nil {
						_ = table.Append("Application", info.Application.Name)
					}

					return nil
				})
			})
		},
	}
}
