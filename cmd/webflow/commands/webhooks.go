package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/fivetwenty-io/webflow/pkg/webflow"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewWebhooksCommand creates the webhooks command group.
func NewWebhooksCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "webhooks",
		Aliases: []string{"webhook", "wh"},
		Short:   "Manage webhooks",
		Long:    "List, inspect, register, and remove site webhooks",
	}

	cmd.PersistentFlags().String("site", "", "site ID (defaults to the configured site)")

	cmd.AddCommand(newWebhooksListCommand())
	cmd.AddCommand(newWebhooksGetCommand())
	cmd.AddCommand(newWebhooksCreateCommand())
	cmd.AddCommand(newWebhooksDeleteCommand())

	return cmd
}

func newWebhooksListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List webhooks",
		Long:  "List the webhooks registered for a site",
		RunE: func(cmd *cobra.Command, args []string) error {
			site, err := siteID(cmd)
			if err != nil {
				return err
			}

			return withClient(cmd, func(ctx context.Context, client webflow.Client) error {
				webhooks, err := client.Webhooks().List(ctx, site)
				if err != nil {
					return fmt.Errorf("failed to list webhooks: %w", describeError(err))
				}

				return render(cmd.OutOrStdout(), webhooks, func(table *tablewriter.Table) error {
					table.Header("ID", "Trigger", "URL", "Last Used")

					for _, webhook := range webhooks {
						_ = table.Append(webhook.ID, string(webhook.TriggerType), webhook.URL, formatTime(webhook.LastUsed))
					}

					return nil
				})
			})
		},
	}
}

func newWebhooksGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get WEBHOOK_ID",
		Short: "Get webhook details",
		Long:  "Display detailed information about a specific webhook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			site, err := siteID(cmd)
			if err != nil {
				return err
			}

			return withClient(cmd, func(ctx context.Context, client webflow.Client) error {
				webhook, err := client.Webhooks().Get(ctx, site, args[0])
				if err != nil {
					return fmt.Errorf("failed to get webhook: %w", describeError(err))
				}

				return renderWebhook(cmd, webhook)
			})
		},
	}
}

func newWebhooksCreateCommand() *cobra.Command {
	var (
		triggerType string
		url         string
		filter      string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a webhook",
		Long:  "Register a webhook; --trigger defaults to form_submission and must be one of the supported trigger types",
		RunE: func(cmd *cobra.Command, args []string) error {
			site, err := siteID(cmd)
			if err != nil {
				return err
			}

			request := &webflow.WebhookCreateRequest{
				TriggerType: webflow.TriggerType(triggerType),
				URL:         url,
			}

			if filter != "" {
				var parsed any

				err := json.Unmarshal([]byte(filter), &parsed)
				if err != nil {
					parsed = filter
				}

				request.Filter = parsed
			}

			return withClient(cmd, func(ctx context.Context, client webflow.Client) error {
				webhook, err := client.Webhooks().Create(ctx, site, request)
				if err != nil {
					return fmt.Errorf("failed to create webhook: %w", describeError(err))
				}

				return renderWebhook(cmd, webhook)
			})
		},
	}

	cmd.Flags().StringVar(&triggerType, "trigger", "", "trigger type (form_submission, site_publish, ecomm_new_order, ...)")
	cmd.Flags().StringVar(&url, "url", "", "URL notified when the trigger fires")
	cmd.Flags().StringVar(&filter, "filter", "", "optional filter, as JSON or a plain string")
	_ = cmd.MarkFlagRequired("url")

	return cmd
}

func newWebhooksDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete WEBHOOK_ID",
		Short: "Remove a webhook",
		Long:  "Remove a webhook registration from a site",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			site, err := siteID(cmd)
			if err != nil {
				return err
			}

			return withClient(cmd, func(ctx context.Context, client webflow.Client) error {
				result, err := client.Webhooks().Remove(ctx, site, args[0])
				if err != nil {
					return fmt.Errorf("failed to delete webhook: %w", describeError(err))
				}

				return renderDeleted(cmd, result)
			})
		},
	}
}

func renderWebhook(cmd *cobra.Command, webhook *webflow.Webhook) error {
	return render(cmd.OutOrStdout(), webhook, func(table *tablewriter.Table) error {
		table.Header("Property", "Value")

		_ = table.Append("ID", webhook.ID)
		_ = table.Append("Trigger", string(webhook.TriggerType))
		_ = table.Append("Trigger ID", orNotAvailable(webhook.TriggerID))
		_ = table.Append("Site", orNotAvailable(webhook.Site))
		_ = table.Append("URL", webhook.URL)
		_ = table.Append("Created", formatTime(&webhook.CreatedOn))
		_ = table.Append("Last Used", formatTime(webhook.LastUsed))

		return nil
	})
}

func renderDeleted(cmd *cobra.Command, result *webflow.DeleteResult) error {
	return render(cmd.OutOrStdout(), result, func(table *tablewriter.Table) error {
		table.Header("Deleted")
		_ = table.Append(strconv.Itoa(result.Deleted))

		return nil
	})
}
