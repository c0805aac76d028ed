/*
Package observability turns call lifecycle events into metrics and structured log lines.

Both are exposed as domain.Hooks so they can be combined with domain.MultiHooks and handed
to the middleware.
*/
package observability
