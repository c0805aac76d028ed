/*
Package pipeline implements an action-dispatch pipeline: a store holding reducer state
and a chain of middlewares every dispatched action travels through.

The asyncfetch middleware is one stage of such a chain. The package also ships the
supporting stages an application usually wants around it: an action logger and a journal
that records every action reaching the reducers.

# Usage

	store := pipeline.NewStore(reducer, initial,
		pipeline.Plain(fetch.Wrap),
		pipeline.LoggerMiddleware(logger),
		pipeline.JournalMiddleware(journal, "todos", logger),
	)

	store.Dispatch(ctx, domain.Action{asyncfetch.CallAPI: domain.Action{"type": "LOAD_TODOS_REQUEST"}})
*/
package pipeline
