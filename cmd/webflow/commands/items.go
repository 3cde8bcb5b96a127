package commands

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"sync"

	"github.com/fivetwenty-io/webflow/internal/constants"
	"github.com/fivetwenty-io/webflow/pkg/webflow"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewItemsCommand creates the items command group.
func NewItemsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "items",
		Aliases: []string{"item"},
		Short:   "Manage collection items",
		Long:    "List, fetch, create, update, and delete the items of a collection",
	}

	cmd.AddCommand(newItemsListCommand())
	cmd.AddCommand(newItemsAllCommand())
	cmd.AddCommand(newItemsGetCommand())
	cmd.AddCommand(newItemsWriteCommand("create COLLECTION_ID", "Create an item", 1))
	cmd.AddCommand(newItemsWriteCommand("update COLLECTION_ID ITEM_ID", "Replace an item", 2)) //nolint:mnd
	cmd.AddCommand(newItemsWriteCommand("patch COLLECTION_ID ITEM_ID", "Patch an item", 2))    //nolint:mnd
	cmd.AddCommand(newItemsDeleteCommand())
	cmd.AddCommand(newItemsFindOrCreateCommand())
	cmd.AddCommand(newItemsDumpCommand())

	return cmd
}

func newItemsListCommand() *cobra.Command {
	var offset, limit int

	cmd := &cobra.Command{
		Use:   "list COLLECTION_ID",
		Short: "List one page of items",
		Long:  "List one page of collection items; defaults to offset 0 and limit 100",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, client webflow.Client) error {
				page, err := client.Items().List(ctx, args[0], &webflow.ListOptions{Offset: offset, Limit: limit})
				if err != nil {
					return fmt.Errorf("failed to list items: %w", describeError(err))
				}

				return render(cmd.OutOrStdout(), page, func(table *tablewriter.Table) error {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Items %d-%d of %d\n", page.Offset, page.Offset+page.Count, page.Total)
					appendItems(table, page.Items)

					return nil
				})
			})
		},
	}

	cmd.Flags().IntVar(&offset, "offset", constants.DefaultItemsOffset, "items to skip")
	cmd.Flags().IntVar(&limit, "limit", constants.DefaultItemsLimit, "page size")

	return cmd
}

func newItemsAllCommand() *cobra.Command {
	var where string

	cmd := &cobra.Command{
		Use:   "all COLLECTION_ID",
		Short: "List every item",
		Long: "Fetch every page of a collection. --where keeps only items matching an expression, " +
			`for example --where '_draft == false && name startsWith "A"'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter *itemFilter

			if where != "" {
				compiled, err := compileItemFilter(where)
				if err != nil {
					return err
				}

				filter = compiled
			}

			return withClient(cmd, func(ctx context.Context, client webflow.Client) error {
				items, err := client.Items().All(ctx, args[0])
				if err != nil {
					return fmt.Errorf("failed to fetch items: %w", describeError(err))
				}

				if filter != nil {
					items = filter.Apply(items)
				}

				return renderItems(cmd, items)
			})
		},
	}

	cmd.Flags().StringVar(&where, "where", "", "filter expression evaluated against each item")

	return cmd
}

func newItemsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get COLLECTION_ID ITEM_ID",
		Short: "Get an item",
		Long:  "Display every field of a single item",
		Args:  cobra.ExactArgs(2), //nolint:mnd
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, client webflow.Client) error {
				item, err := client.Items().Get(ctx, args[0], args[1])
				if err != nil {
					return fmt.Errorf("failed to get item: %w", describeError(err))
				}

				return renderItem(cmd, item)
			})
		},
	}
}

// newItemsWriteCommand builds create, update, and patch, which differ only
// in arity and the client call.
func newItemsWriteCommand(use, short string, arity int) *cobra.Command {
	var (
		data  string
		pairs []string
		live  bool
	)

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(arity),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := parseFields(data, pairs)
			if err != nil {
				return err
			}

			if len(fields) == 0 && cmd.Name() != "create" {
				return ErrNoFieldsGiven
			}

			return withClient(cmd, func(ctx context.Context, client webflow.Client) error {
				var item webflow.Item

				switch cmd.Name() {
				case "create":
					item, err = client.Items().Create(ctx, args[0], fields, live)
				case "update":
					item, err = client.Items().Update(ctx, args[0], args[1], fields, live)
				default:
					item, err = client.Items().Patch(ctx, args[0], args[1], fields, live)
				}

				if err != nil {
					return fmt.Errorf("failed to %s item: %w", cmd.Name(), describeError(err))
				}

				return renderItem(cmd, item)
			})
		},
	}

	cmd.Long = short + ". Fields come from --data (a JSON object) and repeated --field key=value pairs; " +
		"create and update fill _archived and _draft with false unless given."
	cmd.Flags().StringVar(&data, "data", "", "item fields as a JSON object")
	cmd.Flags().StringArrayVar(&pairs, "field", nil, "field as key=value (repeatable, values parsed as JSON when possible)")
	cmd.Flags().BoolVar(&live, "live", false, "publish the change immediately")

	return cmd
}

func newItemsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete COLLECTION_ID ITEM_ID",
		Short: "Delete an item",
		Long:  "Remove an item from a collection",
		Args:  cobra.ExactArgs(2), //nolint:mnd
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, client webflow.Client) error {
				result, err := client.Items().Remove(ctx, args[0], args[1])
				if err != nil {
					return fmt.Errorf("failed to delete item: %w", describeError(err))
				}

				return renderDeleted(cmd, result)
			})
		},
	}
}

func newItemsFindOrCreateCommand() *cobra.Command {
	var (
		data  string
		pairs []string
	)

	cmd := &cobra.Command{
		Use:   "find-or-create COLLECTION_ID",
		Short: "Find an item by name or create it",
		Long:  "Return the first item whose name matches the name field case-insensitively, creating it from the given fields when none exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := parseFields(data, pairs)
			if err != nil {
				return err
			}

			return withClient(cmd, func(ctx context.Context, client webflow.Client) error {
				item, err := client.Items().FindOrCreateByName(ctx, args[0], fields)
				if err != nil {
					return fmt.Errorf("failed to find or create item: %w", describeError(err))
				}

				return renderItem(cmd, item)
			})
		},
	}

	cmd.Flags().StringVar(&data, "data", "", "item fields as a JSON object")
	cmd.Flags().StringArrayVar(&pairs, "field", nil, "field as key=value (repeatable); name is required")

	return cmd
}

func newItemsDumpCommand() *cobra.Command {
	var concurrency int

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Fetch every item of every collection",
		Long:  "Fetch all items of every collection of a site concurrently, keyed by collection slug",
		RunE: func(cmd *cobra.Command, args []string) error {
			site, err := siteID(cmd)
			if err != nil {
				return err
			}

			return withClient(cmd, func(ctx context.Context, client webflow.Client) error {
				dump, err := dumpSite(ctx, client, site, concurrency)
				if err != nil {
					return err
				}

				return render(cmd.OutOrStdout(), dump, func(table *tablewriter.Table) error {
					table.Header("Collection", "Items")

					for _, slug := range slices.Sorted(maps.Keys(dump)) {
						_ = table.Append(slug, strconv.Itoa(len(dump[slug])))
					}

					return nil
				})
			})
		},
	}

	cmd.Flags().String("site", "", "site ID (defaults to the configured site)")
	cmd.Flags().IntVar(&concurrency, "concurrency", constants.DefaultConcurrencyLimit, "collections fetched at once")

	return cmd
}

// dumpSite fetches every collection of site with at most limit collections
// in flight. The first failure cancels the rest.
func dumpSite(ctx context.Context, client webflow.Client, site string, limit int) (map[string][]webflow.Item, error) {
	collections, err := client.Collections().List(ctx, site)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", describeError(err))
	}

	var (
		mu   sync.Mutex
		dump = make(map[string][]webflow.Item, len(collections))
	)

	group, groupCtx := errgroup.WithContext(ctx)
	if limit > 0 {
		group.SetLimit(limit)
	}

	for _, collection := range collections {
		group.Go(func() error {
			items, err := client.Items().All(groupCtx, collection.ID)
			if err != nil {
				return fmt.Errorf("failed to fetch collection %s: %w", collection.Slug, describeError(err))
			}

			mu.Lock()
			dump[collection.Slug] = items
			mu.Unlock()

			return nil
		})
	}

	err = group.Wait()
	if err != nil {
		return nil, err
	}

	return dump, nil
}

func appendItems(table *tablewriter.Table, items []webflow.Item) {
	table.Header("ID", "Name", "Slug", "Draft", "Archived")

	for _, item := range items {
		_ = table.Append(item.ID(), item.Name(), orNotAvailable(item.Slug()),
			strconv.FormatBool(item.Draft()), strconv.FormatBool(item.Archived()))
	}
}

func renderItems(cmd *cobra.Command, items []webflow.Item) error {
	return render(cmd.OutOrStdout(), items, func(table *tablewriter.Table) error {
		appendItems(table, items)

		return nil
	})
}

func renderItem(cmd *cobra.Command, item webflow.Item) error {
	return render(cmd.OutOrStdout(), item, func(table *tablewriter.Table) error {
		table.Header("Field", "Value")

		for _, key := range slices.Sorted(maps.Keys(item)) {
			_ = table.Append(key, fmt.Sprint(item[key]))
		}

		return nil
	})
}
