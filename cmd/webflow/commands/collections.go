package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/fivetwenty-io/webflow/pkg/webflow"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewCollectionsCommand creates the collections command group.
func NewCollectionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "collections",
		Aliases: []string{"collection", "cols"},
		Short:   "Inspect collections",
		Long:    "List the collections of a site and show collection schemas",
	}

	cmd.AddCommand(newCollectionsListCommand())
	cmd.AddCommand(newCollectionsGetCommand())

	return cmd
}

func newCollectionsListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List collections",
		Long:  "List the collections of a site",
		RunE: func(cmd *cobra.Command, args []string) error {
			site, err := siteID(cmd)
			if err != nil {
				return err
			}

			return withClient(cmd, func(ctx context.Context, client webflow.Client) error {
				collections, err := client.Collections().List(ctx, site)
				if err != nil {
					return fmt.Errorf("failed to list collections: %w", describeError(err))
				}

				return render(cmd.OutOrStdout(), collections, func(table *tablewriter.Table) error {
					table.Header("ID", "Name", "Slug", "Singular Name", "Last Updated")

					for _, collection := range collections {
						_ = table.Append(collection.ID, collection.Name, collection.Slug,
							orNotAvailable(collection.SingularName), formatTime(collection.LastUpdated))
					}

					return nil
				})
			})
		},
	}

	cmd.Flags().String("site", "", "site ID (defaults to the configured site)")

	return cmd
}

func newCollectionsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get COLLECTION_ID",
		Short: "Get collection schema",
		Long:  "Display a collection and the fields of its schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, client webflow.Client) error {
				collection, err := client.Collections().Get(ctx, args[0])
				if err != nil {
					return fmt.Errorf("failed to get collection: %w", describeError(err))
				}

				return render(cmd.OutOrStdout(), collection, func(table *tablewriter.Table) error {
					table.Header("Slug", "Name", "Type", "Required", "Editable")

					for _, field := range collection.Fields {
						_ = table.Append(field.Slug, field.Name, field.Type,
							strconv.FormatBool(field.Required), strconv.FormatBool(field.Editable))
					}

					return nil
				})
			})
		},
	}
}
