/*
Package walkclient builds ready-to-use walk clients.

It layers the retrying HTTP transport, request logging, per-endpoint metrics,
optional rate limiting and optional NATS event publishing on top of the
linkwalk package. Most applications should build a client here and start
walks from it.

# Quick start

	import (
	  "context"
	  "log"

	  "github.com/fivetwenty-io/linkwalk/pkg/linkwalk"
	  "github.com/fivetwenty-io/linkwalk/pkg/walkclient"
	)

	func example() {
	  ctx := context.Background()

	  cli, err := walkclient.New(ctx, &linkwalk.Config{
	    RootURI:   "api.example.com", // https:// is added
	    MediaType: "application/hal+json",
	    ProbeRoot: true,
	  })
	  if err != nil { log.Fatal(err) }
	  defer cli.Close()

	  res, err := cli.NewRequest().
	    Walk("orders").
	    WalkWithParams("find", linkwalk.Params{"id": "42"}).
	    Get(ctx).
	    Wait(ctx)
	  if err != nil { log.Fatal(err) }

	  log.Println(string(res.Response.Body))
	}

# Retries

Transient failures (connection errors, 429 and 5xx responses) are retried by
the transport according to Config.RetryMax, RetryWaitMin and RetryWaitMax. A
negative RetryMax disables retries. Walk steps themselves are never retried.

# Events

When Config.EventsURL is set every state transition of every walk is
published as JSON on "<EventsSubject>.<state>". Call Close to drain the
connection.
*/
package walkclient
