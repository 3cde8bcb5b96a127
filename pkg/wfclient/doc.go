// Package wfclient provides the primary entry point for constructing a
// Webflow CMS API client that implements the webflow.Client interface.
//
// It layers configuration, HTTP transport and the find-or-create item index
// on top of the resource interfaces and types defined in the webflow package.
//
// Quick start
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
//
//	  // Minimal: just a token.
//	  cli, err := wfclient.NewWithToken(ctx, "site-api-token")
//	  if err != nil { log.Fatal(err) }
//
//	  // Or share the item index through Redis and allow a few retries:
//	  cli, err = wfclient.New(ctx, &webflow.Config{
//	    Token:    "site-api-token",
//	    RetryMax: 3,
//	    Cache: webflow.NewCacheBuilder().
//	      WithType(webflow.CacheTypeRedis).
//	      WithRedisConfig(&webflow.RedisCacheConfig{Addr: "localhost:6379"}).
//	      Config(),
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  item, err := cli.Items().FindOrCreateByName(ctx, "collection-id", map[string]any{
//	    "name": "Acme",
//	    "slug": "acme",
//	  })
//	  if err != nil { log.Fatal(err) }
//	  _ = item
//	}
//
// Construction never touches the network. An empty token fails with a
// webflow.ConfigurationError; any other token is accepted as is.
package wfclient
