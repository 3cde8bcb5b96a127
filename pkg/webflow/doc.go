// Package webflow provides types, interfaces, and helpers for working with the
// Webflow CMS Data API.
//
// # Overview
//
// The webflow package defines the domain types (Site, Collection, Item,
// Webhook) and the interfaces of the resource clients (SitesClient,
// CollectionsClient, ItemsClient, WebhooksClient). The wfclient package builds
// the concrete implementation from a Config. Most consumers import both:
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/webflow/pkg/webflow"
//	  "github.com/fivetwenty-io/webflow/pkg/wfclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := wfclient.NewWithToken(ctx, "token")
//	  if err != nil { log.Fatal(err) }
//
//	  sites, err := cli.Sites().List(ctx)
//	  if err != nil { log.Fatal(err) }
//	  _ = sites
//	}
//
// # Items and pagination
//
// Items().List returns one page. Items().All and FetchAllItems collect every
// page eagerly, using the limit and total of the first response. ItemIterator
// walks the same pages lazily:
//
//	it := webflow.NewItemIterator(ctx, cli.Items(), collectionID)
//	for it.HasNext() {
//	  item, err := it.Next()
//	  if err != nil { break }
//	  _ = item
//	}
//
// Item writes merge the caller's fields over ItemDefaults, so _archived and
// _draft are always sent.
//
// # Find or create
//
// Items().FindOrCreateByName loads a collection once per client, then answers
// name lookups from memory, creating missing items on demand. Names compare
// with ASCII case folding. Concurrent callers asking for the same missing
// name produce a single create. A shared Cache backend (memory, NATS KV or
// Redis) can warm the index across processes.
//
// # Errors
//
// A response body is an error when it is a JSON object carrying both a code
// and a msg (or message) field, whatever the HTTP status. Such bodies become
// an APIError whose message lists every problem on its own line. Other
// failures surface as ConfigurationError, InvalidArgumentError,
// MissingArgumentError, MalformedResponseError or TransportError, each
// matchable with errors.Is against the package sentinels.
//
// # Interceptors and caching
//
// InterceptorChain hooks into every request: logging, extra headers, metrics
// and client-side rate limiting are provided.
package webflow
