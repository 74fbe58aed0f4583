/*
Package observability turns session lifecycle events into Prometheus metrics and
structured log lines. Both are plain domain.LifecycleHooks and can be combined with
LifecycleHooks.Merge.
*/
package observability
