// Package linkwalk follows hypermedia links through an HTTP API.
//
// # Overview
//
// A walk starts at a root URI and consumes an ordered list of relation
// names. For each relation the current resource is fetched, the link for the
// relation is read from it (expanding URI templates when the link is
// templated) and becomes the next URI. When every relation has been consumed
// a terminal action (GET, POST, PUT, PATCH or DELETE) is performed against
// the final URI.
//
//	cli, err := linkwalk.New(linkwalk.WithTransport(transport))
//	if err != nil { log.Fatal(err) }
//
//	res, err := cli.From("https://api.example.com").
//	  NewRequest().
//	  Walk("orders").
//	  WalkWithParams("find", linkwalk.Params{"id": "123"}).
//	  Get(ctx).
//	  Wait(ctx)
//
// The pkg/walkclient package wires a retrying HTTP transport, logging and
// event publishing for the common case.
//
// # State machine
//
// Each walk runs an explicit state machine (Start, Fetching, Resolving,
// Finishing, Done, Failed) in its own goroutine. The first failure aborts the
// walk; no step is retried or replayed. Embedded resources (HAL "_embedded")
// satisfy a step without a request.
//
// # Errors
//
// Failures are reported as *TransportError, *ParseError,
// *RelationNotFoundError, *MalformedLinkError or *TerminalActionError.
// Helpers such as IsRelationNotFound and IsTerminalAction branch on them.
package linkwalk
