/*
Package observability turns graph lifecycle hooks into metrics and logs.

Metrics registers prometheus collectors and exposes them as a
domain.LifecycleHooks value; LogHooks does the same for structured slog
output. Both are attached with domain.WithHooks or Graph.Observe.
*/
package observability
