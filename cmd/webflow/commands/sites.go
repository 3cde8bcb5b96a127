package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/fivetwenty-io/webflow/pkg/webflow"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewSitesCommand creates the sites command group.
func NewSitesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sites",
		Aliases: []string{"site"},
		Short:   "Manage sites",
		Long:    "List and inspect Webflow sites, their domains, and publish them",
	}

	cmd.AddCommand(newSitesListCommand())
	cmd.AddCommand(newSitesGetCommand())
	cmd.AddCommand(newSitesDomainsCommand())
	cmd.AddCommand(newSitesPublishCommand())

	return cmd
}

func newSitesListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List sites",
		Long:  "List every site the API token can access",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, client webflow.Client) error {
				sites, err := client.Sites().List(ctx)
				if err != nil {
					return fmt.Errorf("failed to list sites: %w", describeError(err))
				}

				return render(cmd.OutOrStdout(), sites, func(table *tablewriter.Table) error {
					table.Header("ID", "Name", "Short Name", "Timezone", "Last Published")

					for _, site := range sites {
						_ = table.Append(site.ID, site.Name, site.ShortName, orNotAvailable(site.Timezone), formatTime(site.LastPublished))
					}

					return nil
				})
			})
		},
	}
}

func newSitesGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get SITE_ID",
		Short: "Get site details",
		Long:  "Display detailed information about a specific site",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, client webflow.Client) error {
				site, err := client.Sites().Get(ctx, args[0])
				if err != nil {
					return fmt.Errorf("failed to get site: %w", describeError(err))
				}

				return render(cmd.OutOrStdout(), site, func(table *tablewriter.Table) error {
					table.Header("Property", "Value")

					_ = table.Append("ID", site.ID)
					_ = table.Append("Name", site.Name)
					_ = table.Append("Short Name", site.ShortName)
					_ = table.Append("Timezone", orNotAvailable(site.Timezone))
					_ = table.Append("Database", orNotAvailable(site.Database))
					_ = table.Append("Preview URL", orNotAvailable(site.PreviewURL))
					_ = table.Append("Created", formatTime(&site.CreatedOn))
					_ = table.Append("Last Published", formatTime(site.LastPublished))

					return nil
				})
			})
		},
	}
}

func newSitesDomainsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "domains",
		Short: "List site domains",
		Long:  "List the custom domains attached to a site",
		RunE: func(cmd *cobra.Command, args []string) error {
			site, err := siteID(cmd)
			if err != nil {
				return err
			}

			return withClient(cmd, func(ctx context.Context, client webflow.Client) error {
				domains, err := client.Sites().Domains(ctx, site)
				if err != nil {
					return fmt.Errorf("failed to list domains: %w", describeError(err))
				}

				return render(cmd.OutOrStdout(), domains, func(table *tablewriter.Table) error {
					table.Header("ID", "Name")

					for _, domain := range domains {
						_ = table.Append(domain.ID, domain.Name)
					}

					return nil
				})
			})
		},
	}

	cmd.Flags().String("site", "", "site ID (defaults to the configured site)")

	return cmd
}

func newSitesPublishCommand() *cobra.Command {
	var domains []string

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish a site",
		Long:  "Queue a publish of the site to the given domains; without --domain only the webflow.io subdomain is published",
		RunE: func(cmd *cobra.Command, args []string) error {
			site, err := siteID(cmd)
			if err != nil {
				return err
			}

			return withClient(cmd, func(ctx context.Context, client webflow.Client) error {
				result, err := client.Sites().Publish(ctx, site, domains)
				if err != nil {
					return fmt.Errorf("failed to publish site: %w", describeError(err))
				}

				return render(cmd.OutOrStdout(), result, func(table *tablewriter.Table) error {
					table.Header("Site", "Queued")
					_ = table.Append(site, strconv.FormatBool(result.Queued))

					return nil
				})
			})
		},
	}

	cmd.Flags().String("site", "", "site ID (defaults to the configured site)")
	cmd.Flags().StringSliceVar(&domains, "domain", nil, "domain to publish to (repeatable)")

	return cmd
}
