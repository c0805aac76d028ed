/*
Package asyncfetch is a middleware for action-dispatch pipelines that turns tagged call
actions into HTTP requests and lifecycle notifications.

# Concept

A call action is an envelope tagged with the CallAPI key. Its inner action carries a type
written as VERB_ENDPOINT_STEP, for instance LOAD_TODOS_REQUEST. The verb selects the HTTP
method, the endpoint selects the base URL and the step is always REQUEST when dispatched.

For every valid envelope the middleware forwards three things downstream, in order:

  - the inner action, unchanged, before the request is sent;
  - then either LOAD_TODOS_SUCCESS with the decoded response as "payload",
  - or LOAD_TODOS_FAILURE with the error message as "error".

Anything else, including envelopes that fail validation, is forwarded unchanged. Validation
problems are only reported through the logger.

# Usage

	mw := asyncfetch.New(domain.EndpointTable{"TODOS": "https://api.example.com/todos"},
		asyncfetch.WithLogLevel("warn"),
	)

	store := pipeline.NewStore(reducer, nil, pipeline.Plain(mw.Wrap))

	store.Dispatch(ctx, domain.Action{
		asyncfetch.CallAPI: domain.Action{"type": "LOAD_TODOS_REQUEST"},
		"params":           map[string]any{"page": 2},
	})

Dispatch blocks until the terminal notification has been forwarded. Run it in a goroutine
to keep several calls in flight.
*/
package asyncfetch
