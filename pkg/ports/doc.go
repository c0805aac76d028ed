/*
Package ports defines the driven ports (interfaces) of the asyncfetch middleware.

These interfaces decouple the translation core from the network, the dispatch pipeline
and the storage used to journal dispatched actions.

# Key Interfaces

  - Fetcher: performs the network call for a validated envelope (net/http or in-memory).
  - Dispatch / Middleware: the shape of a pipeline stage and of the next stage it forwards to.
  - Journal: appends and lists dispatched actions (Redis or in-memory).
*/
package ports
